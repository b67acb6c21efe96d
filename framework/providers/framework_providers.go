package providers

import (
	"log/slog"

	"github.com/km-arc/go-registry/framework/config"
	"github.com/km-arc/go-registry/framework/container"
	"github.com/km-arc/go-registry/framework/inspect"
	"github.com/km-arc/go-registry/framework/logging"
	"github.com/km-arc/go-registry/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration.
//
// Bound names:
//   - "config"        → *config.Config
//   - "configuration" → alias of "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	if err := app.Register("config", p.Config); err != nil {
		return err
	}
	return app.Alias("config", "configuration")
}

func (p *ConfigServiceProvider) Provides() []string { return []string{"config", "configuration"} }

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the application logger.
//
// Bound names:
//   - "logger" → *slog.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *slog.Logger
}

func (p *LoggingServiceProvider) Register(app *container.Container) error {
	return app.Register("logger", p.Logger)
}

func (p *LoggingServiceProvider) Provides() []string { return []string{"logger"} }

// ── InspectServiceProvider ────────────────────────────────────────────────────

// InspectServiceProvider registers the HTTP router serving the inspection
// endpoints. The router is deferred and only built on first resolution.
//
// Bound names:
//   - "router" → *routing.Router
type InspectServiceProvider struct {
	container.BaseProvider
}

func (p *InspectServiceProvider) Register(app *container.Container) error {
	d, err := container.NewDescriptor(container.TypeOf[*routing.Router](), func(c *container.Container, _ *container.Descriptor) (any, error) {
		logger, err := container.Resolve[*slog.Logger](c, "logger")
		if err != nil {
			return nil, err
		}
		r := routing.New()
		r.Group(func(g *routing.Router) {
			g.Middleware(logging.Middleware(logger))
			inspect.NewHandler(c).Routes(g)
		})
		return r, nil
	})
	if err != nil {
		return err
	}
	return app.Register("router", d)
}

func (p *InspectServiceProvider) Provides() []string { return []string{"router"} }
