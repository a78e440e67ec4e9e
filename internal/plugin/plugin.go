// Package plugin defines the contract every reusable plugin fulfills and the
// factory shapes the registry knows how to construct.
package plugin

import (
	"context"

	"github.com/scrapeworks/discovery/internal/config"
	"github.com/scrapeworks/discovery/internal/hooks"
)

// Type is the bucket a plugin registers under. The four buckets are
// independent namespaces: the same name may exist once per type.
type Type string

const (
	TypeGeneral  Type = "general"
	TypeStrategy Type = "strategy"
	TypeModule   Type = "module"
	TypeHook     Type = "hook"
)

// Plugin is the behavior contract for all plugin implementations.
type Plugin interface {
	// Setup runs once after construction, before any Process call.
	Setup() error

	// Process transforms data; it is the plugin's unit of work.
	Process(ctx context.Context, data any) (any, error)
}

// Pipeline is the view of the owning pipeline a plugin may depend on.
// Defined here rather than in the pipeline package so plugins and the
// registry need not import it.
type Pipeline interface {
	ClientName() string
	ConfigValue(path string, def any) any
	RegisterHook(name string, h hooks.Hook)
}

// CapabilityReporter is optionally implemented by plugins that decide
// capability support at runtime instead of declaring a static list.
type CapabilityReporter interface {
	Supports(capability string) bool
}

// Recognized factory shapes. The registry derives its construction strategy
// from which shape a factory has: a factory taking a Pipeline receives the
// owning pipeline and the config, a factory taking only a config receives
// the config (or an empty one), and a niladic factory receives nothing.
type (
	// PipelineFactory builds a plugin that needs its owning pipeline.
	PipelineFactory = func(p Pipeline, cfg config.Config) Plugin

	// ConfigFactory builds a plugin from configuration alone.
	ConfigFactory = func(cfg config.Config) Plugin

	// BareFactory builds a plugin with no inputs.
	BareFactory = func() Plugin
)
