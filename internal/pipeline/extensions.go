package pipeline

import (
	"fmt"

	"github.com/scrapeworks/discovery/internal/config"
	"github.com/scrapeworks/discovery/internal/plugin"
	"github.com/scrapeworks/discovery/internal/registry"
)

// Extension symbol areas. A named extension is looked up first in the
// process-wide extensions area, then in the client-specific plugins area.
const extensionsArea = "extensions."

func (b *Base) clientPluginsArea() string {
	return "clients." + b.name + ".plugins."
}

// LoadExtension resolves a named extension from the factory table, trying
// the process-wide extensions area and then this client's plugins area,
// constructs it with cfg, runs its Setup, and records it on the pipeline.
// When neither area resolves, the error names both attempted locations.
func (b *Base) LoadExtension(name string, cfg config.Config) (plugin.Plugin, error) {
	globalSym := extensionsArea + name
	clientSym := b.clientPluginsArea() + name

	factory, ok := registry.LookupFactory(globalSym)
	if !ok {
		factory, ok = registry.LookupFactory(clientSym)
	}
	if !ok {
		return nil, &ExtensionError{
			Name:      name,
			Attempted: []string{globalSym, clientSym},
		}
	}

	if cfg == nil {
		cfg = config.Config{}
	}

	var inst plugin.Plugin
	switch f := factory.(type) {
	case plugin.PipelineFactory:
		inst = f(b, cfg)
	case plugin.ConfigFactory:
		inst = f(cfg)
	case plugin.BareFactory:
		inst = f()
	default:
		return nil, fmt.Errorf("extension %s: unsupported factory shape %T", name, factory)
	}
	if inst == nil {
		return nil, fmt.Errorf("extension %s: factory returned nil", name)
	}

	if err := inst.Setup(); err != nil {
		return nil, fmt.Errorf("extension %s: setup: %w", name, err)
	}

	b.plugins[name] = inst
	return inst, nil
}

// ExtensionError reports an extension that resolved in none of the
// attempted locations.
type ExtensionError struct {
	Name      string
	Attempted []string
}

func (e *ExtensionError) Error() string {
	return fmt.Sprintf("failed to load extension %q: tried %v", e.Name, e.Attempted)
}
