// Package parser provides ConfigParser implementations.
package parser

import (
	"github.com/reglet-dev/sumstring/domain/entities"
	"github.com/reglet-dev/sumstring/domain/ports"
	"gopkg.in/yaml.v3"
)

// YamlConfigParser implements ConfigParser for YAML.
type YamlConfigParser struct{}

// NewYamlConfigParser creates a new YamlConfigParser.
func NewYamlConfigParser() ports.ConfigParser {
	return &YamlConfigParser{}
}

// Parse unmarshals YAML bytes over a copy of base.
func (p *YamlConfigParser) Parse(data []byte, base entities.HostConfig) (*entities.HostConfig, error) {
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
