// Package app is the composition root: it initializes logging, the shared
// registries, and the fetch stack from resolved configuration, and owns
// their lifecycle.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/scrapeworks/discovery/internal/cache"
	"github.com/scrapeworks/discovery/internal/clients"
	"github.com/scrapeworks/discovery/internal/config"
	"github.com/scrapeworks/discovery/internal/fetch"
	"github.com/scrapeworks/discovery/internal/ratelimit"
	"github.com/scrapeworks/discovery/internal/registry"
)

// Application holds the process-wide dependencies shared by the CLI
// commands. It is created once at startup; Close releases its resources.
type Application struct {
	Config    config.Config
	Logger    *zerolog.Logger
	Cache     *cache.MemoryCache
	Limiter   ratelimit.RateLimiter
	Static    *fetch.Static
	Hybrid    *fetch.Hybrid
	Plugins   *registry.Registry
	Clients   *clients.Registry
	startTime time.Time
}

// Options adjusts application startup.
type Options struct {
	// ConfigPath is an explicit config file merged over the base layers.
	ConfigPath string
	// ClientName scopes config resolution to a client's layer.
	ClientName string
	// Verbose forces debug-level logging regardless of configuration.
	Verbose bool
	// PluginDir, when set, is scanned for plugin manifests at startup.
	PluginDir string
	// ClientDir, when set, is scanned for client packages at startup.
	ClientDir string
}

// New resolves configuration, configures logging, and builds the shared
// fetch stack and registries.
func New(ctx context.Context, opts Options) (*Application, error) {
	cfg, err := config.NewResolver("").Resolve(opts.ClientName, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config: %w", err)
	}

	logger := initLogger(cfg, opts.Verbose)

	memCache := cache.NewMemoryCache(64 << 20)
	limiter := ratelimit.NewDomainLimiter(
		cfg.GetFloat("rate_limit.max_requests_per_second", 2),
		5,
	)

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	static := fetch.NewStatic(memCache, limiter, httpClient, nil, 30*time.Second, "")
	hybrid := fetch.NewHybrid(static)

	if opts.PluginDir != "" {
		n := registry.Default.Discover(opts.PluginDir)
		logger.Debug().Int("plugins", n).Str("dir", opts.PluginDir).Msg("Plugin manifests scanned")
	}
	if opts.ClientDir != "" {
		n := clients.Default.Discover(opts.ClientDir)
		logger.Debug().Int("clients", n).Str("dir", opts.ClientDir).Msg("Client discovery complete")
	}

	app := &Application{
		Config:    cfg,
		Logger:    &logger,
		Cache:     memCache,
		Limiter:   limiter,
		Static:    static,
		Hybrid:    hybrid,
		Plugins:   registry.Default,
		Clients:   clients.Default,
		startTime: time.Now(),
	}
	logger.Debug().Msg("Application initialized")
	return app, nil
}

// Close releases application resources. Safe to call once at shutdown.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().
		Dur("uptime", time.Since(a.startTime)).
		Msg("Shutting down")
	if a.Cache != nil {
		a.Cache.Clear()
	}
	return nil
}

// Uptime reports how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}

// initLogger configures the global zerolog output and level from the
// logging.* config keys and returns a timestamped logger.
func initLogger(cfg config.Config, verbose bool) zerolog.Logger {
	level := zerolog.ErrorLevel
	switch cfg.GetString("logging.level", "info") {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = zerolog.NewConsoleWriter()
	if cfg.GetBool("logging.json", false) {
		w = os.Stderr
	}

	logger := log.Output(w).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
