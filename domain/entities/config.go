package entities

// HostConfig configures how the embedding host exposes the binding.
type HostConfig struct {
	// ModuleName is the host module guests import sum_as_string from.
	ModuleName string `yaml:"module_name" json:"module_name" validate:"required,max=64" jsonschema:"default=sumstring"`

	// OverflowPolicy is one of "error", "wrap" or "saturate". Empty means "error".
	OverflowPolicy string `yaml:"overflow_policy" json:"overflow_policy" validate:"omitempty,oneof=error wrap saturate" jsonschema:"enum=error,enum=wrap,enum=saturate"`

	// LogLevel is the minimum level logged by the host middleware. Empty means "info".
	LogLevel string `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`

	// MaxRequestSize limits guest request payloads, in bytes.
	MaxRequestSize uint32 `yaml:"max_request_size" json:"max_request_size" validate:"gt=0,lte=16777216"`

	// Metrics enables Prometheus instrumentation of host calls.
	Metrics bool `yaml:"metrics" json:"metrics"`
}
