package app

import (
	"context"
	"fmt"

	"github.com/vk/lamphost/internal/ctxlog"
	"github.com/vk/lamphost/internal/lifecycle"
	"github.com/vk/lamphost/internal/plugin"
	"github.com/vk/lamphost/internal/relay"
)

// Start connects the relay, brings every plugin up and starts the health
// server. Plugin failures are diagnostics, not errors; only a relay that is
// configured but unreachable fails Start.
func (a *App) Start(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Start method started.")

	client, err := relay.Connect(ctx, relay.Config{URL: a.config.RelayURL, Namespace: a.config.RelayNamespace})
	if err != nil {
		return fmt.Errorf("failed to start diagnostics relay: %w", err)
	}

	a.mu.Lock()
	a.relay = client
	a.load(ctx)
	a.engine.InitAll(ctx)
	a.engine.EnableAll(ctx)
	a.mu.Unlock()

	enabled := 0
	for _, s := range a.Snapshot() {
		if s.State == plugin.Enabled {
			enabled++
		}
	}
	a.logger.Info("🚀 Plugins started.", "enabled", enabled, "total", len(a.registry.Handles()))

	a.healthCheckServer()
	return nil
}

// Stop disables every plugin, then shuts the health server and relay down.
func (a *App) Stop(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	a.mu.Lock()
	a.engine.DisableAll(ctx)
	a.mu.Unlock()

	err := a.closeHealthCheckServer(ctx)

	a.mu.Lock()
	a.relay.Close()
	a.relay = &relay.Client{}
	a.mu.Unlock()

	a.logger.Info("🏁 Plugins stopped.")
	return err
}

// Run starts the host and blocks until ctx is done, then stops it.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	a.logger.Info("Shutdown requested.")
	return a.Stop(context.WithoutCancel(ctx))
}

// List discovers the plugins without initializing them and returns their
// states.
func (a *App) List(ctx context.Context) []lifecycle.Status {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.mu.Lock()
	a.load(ctx)
	a.mu.Unlock()
	return a.Snapshot()
}

// Check discovers the plugins and analyses them without running any
// callback. Manager failures from discovery come first.
func (a *App) Check(ctx context.Context) []lifecycle.Diagnostic {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.load(ctx)
	return append(a.recorder.ByKind(lifecycle.DiscoveryFailed), a.engine.Check(ctx)...)
}
