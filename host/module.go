package host

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/reglet-dev/sumstring/application/validation"
	"github.com/reglet-dev/sumstring/config"
	"github.com/reglet-dev/sumstring/domain/entities"
	"github.com/reglet-dev/sumstring/hostfuncs"
	wazeroadapter "github.com/reglet-dev/sumstring/infrastructure/wazero"
	"github.com/reglet-dev/sumstring/wireformat"
	"github.com/tetratelabs/wazero"
)

// Module is the host function table for sum_as_string.
// It is immutable once built and safe for concurrent use.
type Module struct {
	cfg      config.HostConfig
	registry *hostfuncs.HandlerRegistry
	logger   *slog.Logger
}

// NewModule builds the function table described by cfg.
// The table holds exactly one callable, sum_as_string.
func NewModule(cfg config.HostConfig, opts ...ModuleOption) (*Module, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	overflow, err := config.OverflowPolicy(cfg)
	if err != nil {
		return nil, err
	}

	o := defaultModuleOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.SlogLevel(cfg)}))
	}

	middleware := []hostfuncs.Middleware{
		hostfuncs.PanicRecoveryMiddleware(),
		hostfuncs.LoggingMiddleware(logger),
	}
	if cfg.Metrics {
		m, err := hostfuncs.NewMetrics(o.registerer)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		middleware = append(middleware, hostfuncs.MetricsMiddleware(m))
	}
	if o.validate {
		v := validation.NewPayloadValidator()
		if err := v.Register(hostfuncs.SumAsStringName, hostfuncs.SumAsStringRequest{}); err != nil {
			return nil, err
		}
		middleware = append(middleware, validation.Middleware(v))
	}
	middleware = append(middleware, o.middleware...)

	registry, err := hostfuncs.NewRegistry(
		hostfuncs.WithMiddleware(middleware...),
		hostfuncs.WithBundle(hostfuncs.ArithmeticBundle(hostfuncs.WithOverflowPolicy(overflow))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build host function table: %w", err)
	}

	return &Module{cfg: cfg, registry: registry, logger: logger}, nil
}

// Register instantiates the host module in runtime. A runtime holds at most
// one module per name, so registering twice into the same runtime fails.
func (m *Module) Register(ctx context.Context, runtime wazero.Runtime) error {
	return wazeroadapter.RegisterWithRuntime(ctx, runtime, m.registry,
		wazeroadapter.WithModuleName(m.cfg.ModuleName),
		wazeroadapter.WithMaxRequestSize(m.cfg.MaxRequestSize),
		wazeroadapter.WithLogger(m.logger),
	)
}

// Name returns the host module name guests import from.
func (m *Module) Name() string {
	return m.cfg.ModuleName
}

// Config returns the configuration the module was built from.
func (m *Module) Config() config.HostConfig {
	return m.cfg
}

// Bindings returns the binding records of the table.
func (m *Module) Bindings() []entities.Binding {
	return m.registry.Bindings()
}

// Registry returns the underlying handler registry.
func (m *Module) Registry() *hostfuncs.HandlerRegistry {
	return m.registry
}

// Call invokes sum_as_string through the full middleware chain without a
// guest. The result is what a guest would receive.
func (m *Module) Call(ctx context.Context, a, b uint64) (string, error) {
	payload, err := json.Marshal(hostfuncs.SumAsStringRequest{A: a, B: b})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	resp, err := m.registry.Invoke(ctx, hostfuncs.SumAsStringName, payload)
	if err != nil {
		return "", err
	}
	return wireformat.DecodeSumResponse(resp)
}

var (
	defaultOnce   sync.Once
	defaultModule *Module
	defaultErr    error
)

// DefaultModule returns the process-wide Module built from config.Default().
// It is built on first use; later calls return the same table.
func DefaultModule() (*Module, error) {
	defaultOnce.Do(func() {
		defaultModule, defaultErr = NewModule(config.Default())
	})
	return defaultModule, defaultErr
}

// MustDefaultModule is like DefaultModule but panics if the table cannot be built.
func MustDefaultModule() *Module {
	m, err := DefaultModule()
	if err != nil {
		panic(fmt.Sprintf("sumstring: failed to load host module: %v", err))
	}
	return m
}
