// Package pipeline provides the base orchestrator concrete clients embed.
//
// A pipeline instance owns its Config and hook bus exclusively; neither is
// shared across instances. Construction resolves the layered configuration
// immediately; the embedding client is expected to wire its hooks and
// plugins in SetupPipeline before Run is first called (client factories do
// this before returning, so a created client is always ready).
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/scrapeworks/discovery/internal/config"
	"github.com/scrapeworks/discovery/internal/hooks"
	"github.com/scrapeworks/discovery/internal/plugin"
	"github.com/scrapeworks/discovery/internal/registry"
)

// Base carries the shared orchestration state for one client instance.
type Base struct {
	name     string
	cfg      config.Config
	bus      *hooks.Bus
	plugins  map[string]plugin.Plugin
	registry *registry.Registry
	log      zerolog.Logger
}

// Option adjusts construction of a Base.
type Option func(*options)

type options struct {
	registry *registry.Registry
	resolver *config.Resolver
}

// WithRegistry uses reg instead of the shared default plugin registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithResolver uses res instead of a resolver rooted at "config".
func WithResolver(res *config.Resolver) Option {
	return func(o *options) { o.resolver = res }
}

// New constructs a Base for clientName, resolving its layered configuration.
// configPath, when non-empty, is merged last with the highest precedence.
// A malformed file in any layer fails construction.
func New(clientName, configPath string, opts ...Option) (*Base, error) {
	o := options{
		registry: registry.Default,
		resolver: config.NewResolver(""),
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := o.resolver.Resolve(clientName, configPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", clientName, err)
	}

	return &Base{
		name:     clientName,
		cfg:      cfg,
		bus:      hooks.NewBus(),
		plugins:  make(map[string]plugin.Plugin),
		registry: o.registry,
		log:      log.With().Str("client", clientName).Logger(),
	}, nil
}

// ClientName returns the name this pipeline was constructed for.
func (b *Base) ClientName() string { return b.name }

// Config returns the pipeline's resolved configuration tree.
func (b *Base) Config() config.Config { return b.cfg }

// Logger returns the pipeline's client-scoped logger.
func (b *Base) Logger() *zerolog.Logger { return &b.log }

// RegisterHook appends a callback to the named extension point.
func (b *Base) RegisterHook(name string, h hooks.Hook) {
	b.bus.Register(name, h)
}

// RunHooks threads v through the callbacks registered under name in
// registration order. A callback error propagates unmodified.
func (b *Base) RunHooks(ctx context.Context, name string, v any) (any, error) {
	return b.bus.Run(ctx, name, v)
}

// ConfigValue returns the config value at a dot path, or def.
func (b *Base) ConfigValue(path string, def any) any {
	return b.cfg.Get(path, def)
}

// SetConfigValue stores a config value at a dot path.
func (b *Base) SetConfigValue(path string, v any) {
	b.cfg.Set(path, v)
}

// CreatePlugin constructs a registered plugin through the pipeline's
// registry, passing this pipeline as the owner.
func (b *Base) CreatePlugin(name string, typ plugin.Type, cfg config.Config) (plugin.Plugin, error) {
	inst, err := b.registry.CreateInstance(name, typ, b, cfg)
	if err != nil {
		return nil, err
	}
	b.plugins[name] = inst
	return inst, nil
}

// Plugin returns a plugin previously loaded into this pipeline.
func (b *Base) Plugin(name string) (plugin.Plugin, bool) {
	p, ok := b.plugins[name]
	return p, ok
}

// Plugins returns the names of plugins loaded into this pipeline.
func (b *Base) Plugins() []string {
	names := make([]string, 0, len(b.plugins))
	for name := range b.plugins {
		names = append(names, name)
	}
	return names
}

// Registry exposes the plugin registry this pipeline resolves from.
func (b *Base) Registry() *registry.Registry { return b.registry }
