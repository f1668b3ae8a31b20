package ports

import "github.com/reglet-dev/sumstring/domain/entities"

// ConfigParser parses raw bytes into a HostConfig.
type ConfigParser interface {
	// Parse unmarshals bytes into a HostConfig, starting from base.
	// Fields absent from data keep the value they have in base.
	Parse(data []byte, base entities.HostConfig) (*entities.HostConfig, error)
}
