package host

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/reglet-dev/sumstring/hostfuncs"
	"github.com/tetratelabs/wazero"
)

// ModuleOption configures a Module.
type ModuleOption func(*moduleOptions)

type moduleOptions struct {
	logger     *slog.Logger
	registerer prometheus.Registerer
	middleware []hostfuncs.Middleware
	validate   bool
}

func defaultModuleOptions() moduleOptions {
	return moduleOptions{
		registerer: prometheus.DefaultRegisterer,
		validate:   true,
	}
}

// WithLogger sets the logger for host calls. By default a text handler on
// stderr at the configured log level is used.
func WithLogger(logger *slog.Logger) ModuleOption {
	return func(o *moduleOptions) {
		o.logger = logger
	}
}

// WithMetricsRegisterer sets where call metrics are registered when metrics
// are enabled in the config (default: prometheus.DefaultRegisterer).
// A nil registerer keeps the default.
func WithMetricsRegisterer(reg prometheus.Registerer) ModuleOption {
	return func(o *moduleOptions) {
		if reg != nil {
			o.registerer = reg
		}
	}
}

// WithMiddleware appends middleware after the built-in chain.
func WithMiddleware(mw ...hostfuncs.Middleware) ModuleOption {
	return func(o *moduleOptions) {
		o.middleware = append(o.middleware, mw...)
	}
}

// WithoutPayloadValidation skips JSON schema validation of requests.
// Malformed payloads are still rejected by the JSON decoder.
func WithoutPayloadValidation() ModuleOption {
	return func(o *moduleOptions) {
		o.validate = false
	}
}

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithModule sets the host module the executor registers.
// Defaults to DefaultModule().
func WithModule(m *Module) Option {
	return func(e *Executor) {
		e.module = m
	}
}

// WithRuntimeConfig sets the wazero runtime configuration.
func WithRuntimeConfig(cfg wazero.RuntimeConfig) Option {
	return func(e *Executor) {
		e.runtimeConfig = cfg
	}
}
