package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vk/lamphost/internal/config"
	"github.com/vk/lamphost/internal/ctxlog"
	"github.com/vk/lamphost/internal/lifecycle"
	"github.com/vk/lamphost/internal/plugin"
	"github.com/vk/lamphost/internal/registry"
	"github.com/vk/lamphost/internal/relay"
)

// App encapsulates the host's dependencies, configuration, and lifecycle.
type App struct {
	ctx      context.Context
	logger   *slog.Logger
	config   *config.Config
	registry *registry.Registry
	engine   *lifecycle.Engine
	recorder *lifecycle.Recorder

	// mu serializes lifecycle transitions against snapshot reads from the
	// health server.
	mu         sync.Mutex
	loaded     bool
	relay      *relay.Client
	httpServer *http.Server
}

// New is the constructor for the host. Logs go to logW. Without managers the
// compiled-in plugins and the disk manager over cfg.PluginsPath are used.
func New(logW io.Writer, cfg *config.Config, managers ...plugin.Manager) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(managers) == 0 {
		managers = defaultManagers(cfg)
	}
	reg := registry.New(managers...)
	logger.Debug("Plugin managers registered.", "count", len(managers))

	a := &App{
		ctx:      ctx,
		logger:   logger,
		config:   cfg,
		registry: reg,
		recorder: &lifecycle.Recorder{},
		relay:    &relay.Client{},
	}
	a.engine = lifecycle.New(reg,
		lifecycle.WithReporter(a.recorder),
		lifecycle.WithReporter(lifecycle.ReporterFunc(a.forward)),
		lifecycle.WithMaxDepth(cfg.MaxDepth),
	)
	return a
}

// Context returns the context carrying the app logger.
func (a *App) Context() context.Context {
	return a.ctx
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Diagnostics returns every diagnostic reported so far.
func (a *App) Diagnostics() []lifecycle.Diagnostic {
	return a.recorder.Diagnostics()
}

// Snapshot returns the current plugin states.
func (a *App) Snapshot() []lifecycle.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.Snapshot()
}

func (a *App) forward(ctx context.Context, d lifecycle.Diagnostic) {
	a.relay.Report(ctx, d)
}

// load discovers plugins once per app.
func (a *App) load(ctx context.Context) {
	if a.loaded {
		return
	}
	a.loaded = true
	a.engine.LoadAll(ctx)
}
