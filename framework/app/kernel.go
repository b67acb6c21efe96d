package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/km-arc/go-registry/framework/config"
	"github.com/km-arc/go-registry/framework/container"
	"github.com/km-arc/go-registry/framework/logging"
	"github.com/km-arc/go-registry/framework/providers"
	"github.com/km-arc/go-registry/framework/routing"
)

// Version is the application version reported by registryctl.
const Version = "0.1.0"

// Application is the top-level application container.
// It embeds the Container and ProviderRegistry so user code can call
// app.Register(name, v), app.Resolve(), app.NamesForType() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
	Config    *config.Config
	Logger    *slog.Logger
}

// New loads configuration, builds the logger and container, attaches the
// type index and registers the framework providers. Logs go to logOut, or
// stderr when logOut is nil.
func New(logOut io.Writer, envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logOut == nil {
		logOut = os.Stderr
	}
	logger := logging.New(cfg.Log, logOut)

	c := container.New(
		container.WithLogger(logger),
		container.WithFactoryPrefix(cfg.Registry.FactoryPrefix),
		container.WithStrictTypes(cfg.Registry.StrictTypes),
	)
	c.AddInterceptor(container.NewTypeIndex())

	app := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		Config:    cfg,
		Logger:    logger,
	}

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: logger},
		&providers.InspectServiceProvider{},
	} {
		if err := app.Providers.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// RegisterProvider adds a ServiceProvider to the application.
func (a *Application) RegisterProvider(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	if err := a.Providers.Boot(); err != nil {
		return err
	}
	names := make([]string, 0, len(a.Providers.Providers()))
	for _, p := range a.Providers.Providers() {
		names = append(names, fmt.Sprintf("%T", p))
	}
	a.Logger.Debug("application booted", "providers", names)
	return nil
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() (*routing.Router, error) {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Run serves the inspection endpoints on APP_PORT until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.Config.App.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve boots the application (if needed) and serves the inspection
// endpoints on ln until ctx is cancelled. ln is closed on return.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			_ = ln.Close()
			return err
		}
	}
	router, err := a.Router()
	if err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("serving registry inspection",
			"app", a.Config.App.Name, "version", Version, "addr", ln.Addr().String(), "env", a.Config.App.Env)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
