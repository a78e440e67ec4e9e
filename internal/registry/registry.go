// Package registry implements the typed plugin registry: four independent
// buckets (general, strategy, module, hook) of named plugin factories with
// manifest discovery, dependency checking, instancing, and reload.
//
// Registries are process-wide mutable state meant to be populated during
// startup. They carry no internal locking; populate before starting
// concurrent work, or wrap access in your own synchronization.
package registry

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scrapeworks/discovery/internal/config"
	"github.com/scrapeworks/discovery/internal/plugin"
)

// Default is the conventionally-shared registry used at the composition
// root. Library code takes a *Registry explicitly; only the application
// entry points reach for Default.
var Default = New()

// Meta carries the descriptor fields supplied at registration time.
type Meta struct {
	Version      string
	Description  string
	Dependencies []string
	Capabilities []string
}

// Descriptor records one registered plugin. Uniqueness key is (type, name);
// re-registering the same key replaces the prior descriptor.
type Descriptor struct {
	Name         string
	Type         plugin.Type
	Factory      any // one of the plugin factory shapes
	Version      string
	Description  string
	Dependencies []string
	Capabilities []string
	Source       string // factory table symbol or manifest path
	RegisteredAt time.Time
}

// Stats summarizes the registry contents.
type Stats struct {
	Total            int
	ByType           map[plugin.Type]int
	InstancesCreated int
	WithDependencies int
}

// Registry stores plugin descriptors by type and name, plus the instance
// cache keyed "type:name".
type Registry struct {
	buckets   map[plugin.Type]map[string]*Descriptor
	instances map[string]plugin.Plugin
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		buckets: map[plugin.Type]map[string]*Descriptor{
			plugin.TypeGeneral:  {},
			plugin.TypeStrategy: {},
			plugin.TypeModule:   {},
			plugin.TypeHook:     {},
		},
		instances: make(map[string]plugin.Plugin),
	}
}

// bucket resolves the storage for a plugin type. Unknown types fall back to
// the general bucket so lookups and registrations stay symmetric.
func (r *Registry) bucket(typ plugin.Type) map[string]*Descriptor {
	if b, ok := r.buckets[typ]; ok {
		return b
	}
	return r.buckets[plugin.TypeGeneral]
}

// Register stores a plugin factory under (typ, name), overwriting any
// existing entry with the same key.
func (r *Registry) Register(name string, typ plugin.Type, factory any, meta Meta) {
	r.RegisterSource(name, typ, factory, meta, "")
}

// RegisterSource is Register with an explicit source identifier, used by
// manifest discovery and reload so the origin symbol survives replacement.
func (r *Registry) RegisterSource(name string, typ plugin.Type, factory any, meta Meta, source string) {
	r.bucket(typ)[name] = &Descriptor{
		Name:         name,
		Type:         typ,
		Factory:      factory,
		Version:      orDefault(meta.Version, "1.0"),
		Description:  meta.Description,
		Dependencies: meta.Dependencies,
		Capabilities: meta.Capabilities,
		Source:       source,
		RegisteredAt: time.Now(),
	}
	log.Debug().
		Str("plugin", name).
		Str("type", string(typ)).
		Msg("Plugin registered")
}

// Get returns the factory registered under (typ, name), or false.
func (r *Registry) Get(name string, typ plugin.Type) (any, bool) {
	d, ok := r.bucket(typ)[name]
	if !ok {
		return nil, false
	}
	return d.Factory, true
}

// Info returns the descriptor for (typ, name), or false.
func (r *Registry) Info(name string, typ plugin.Type) (*Descriptor, bool) {
	d, ok := r.bucket(typ)[name]
	return d, ok
}

// CreateInstance constructs the plugin registered under (typ, name). The
// construction strategy follows the factory's shape: a pipeline-taking
// factory receives p and cfg, a config-taking factory receives cfg, and a
// niladic factory receives nothing. A nil cfg is replaced by an empty one.
// The instance's Setup is run, and the instance is cached under "type:name"
// for later retrieval via Instance.
func (r *Registry) CreateInstance(name string, typ plugin.Type, p plugin.Pipeline, cfg config.Config) (plugin.Plugin, error) {
	factory, ok := r.Get(name, typ)
	if !ok {
		return nil, &LoadError{Name: name, Type: typ, Err: ErrNotRegistered}
	}
	if cfg == nil {
		cfg = config.Config{}
	}

	var inst plugin.Plugin
	switch f := factory.(type) {
	case plugin.PipelineFactory:
		inst = f(p, cfg)
	case plugin.ConfigFactory:
		inst = f(cfg)
	case plugin.BareFactory:
		inst = f()
	default:
		return nil, &LoadError{Name: name, Type: typ,
			Err: fmt.Errorf("unsupported factory shape %T", factory)}
	}
	if inst == nil {
		return nil, &LoadError{Name: name, Type: typ, Err: ErrNilInstance}
	}

	if err := inst.Setup(); err != nil {
		return nil, &LoadError{Name: name, Type: typ, Err: err}
	}

	r.instances[instanceKey(name, typ)] = inst
	return inst, nil
}

// Instance returns a previously created instance for (typ, name), or false.
func (r *Registry) Instance(name string, typ plugin.Type) (plugin.Plugin, bool) {
	inst, ok := r.instances[instanceKey(name, typ)]
	return inst, ok
}

// List returns the registered names per bucket. With a type argument only
// that bucket is included.
func (r *Registry) List(types ...plugin.Type) map[plugin.Type][]string {
	if len(types) == 0 {
		types = []plugin.Type{plugin.TypeGeneral, plugin.TypeStrategy, plugin.TypeModule, plugin.TypeHook}
	}
	out := make(map[plugin.Type][]string, len(types))
	for _, typ := range types {
		names := make([]string, 0, len(r.bucket(typ)))
		for name := range r.bucket(typ) {
			names = append(names, name)
		}
		out[typ] = names
	}
	return out
}

// CheckDependencies reports, for each dependency the plugin declares,
// whether a provider is present in this process. This is a presence check
// only: it says nothing about versions or compatibility. An unknown plugin
// yields a nil map.
func (r *Registry) CheckDependencies(name string, typ plugin.Type) map[string]bool {
	d, ok := r.Info(name, typ)
	if !ok {
		return nil
	}
	status := make(map[string]bool, len(d.Dependencies))
	for _, dep := range d.Dependencies {
		status[dep] = Available(dep) || r.isRegisteredName(dep)
	}
	return status
}

// isRegisteredName reports whether any bucket holds a plugin named dep.
func (r *Registry) isRegisteredName(dep string) bool {
	for _, b := range r.buckets {
		if _, ok := b[dep]; ok {
			return true
		}
	}
	return false
}

// ByCapability returns every registered plugin, across all buckets, that
// either declares capability in its descriptor or has a cached instance
// reporting support for it at runtime.
func (r *Registry) ByCapability(capability string) []*Descriptor {
	var matches []*Descriptor
	for _, typ := range []plugin.Type{plugin.TypeGeneral, plugin.TypeStrategy, plugin.TypeModule, plugin.TypeHook} {
		for _, d := range r.buckets[typ] {
			if d.declares(capability) || r.instanceSupports(d, capability) {
				matches = append(matches, d)
			}
		}
	}
	return matches
}

func (d *Descriptor) declares(capability string) bool {
	for _, c := range d.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

func (r *Registry) instanceSupports(d *Descriptor, capability string) bool {
	inst, ok := r.instances[instanceKey(d.Name, d.Type)]
	if !ok {
		return false
	}
	rep, ok := inst.(plugin.CapabilityReporter)
	return ok && rep.Supports(capability)
}

// Unregister removes (typ, name) and its cached instance. Returns whether
// an entry was removed.
func (r *Registry) Unregister(name string, typ plugin.Type) bool {
	b := r.bucket(typ)
	if _, ok := b[name]; !ok {
		return false
	}
	delete(b, name)
	delete(r.instances, instanceKey(name, typ))
	return true
}

// Reload re-resolves the plugin's factory from its recorded source symbol
// and re-registers it, preserving the prior metadata. The cached instance is
// dropped so the next CreateInstance uses the fresh factory.
func (r *Registry) Reload(name string, typ plugin.Type) error {
	d, ok := r.Info(name, typ)
	if !ok {
		return &LoadError{Name: name, Type: typ, Err: ErrNotRegistered}
	}
	if d.Source == "" {
		return &LoadError{Name: name, Type: typ, Err: ErrNoSource}
	}

	factory, ok := LookupFactory(d.Source)
	if !ok {
		return &LoadError{Name: name, Type: typ,
			Err: fmt.Errorf("source symbol %q not in factory table", d.Source)}
	}

	meta := Meta{
		Version:      d.Version,
		Description:  d.Description,
		Dependencies: d.Dependencies,
		Capabilities: d.Capabilities,
	}
	delete(r.instances, instanceKey(name, typ))
	r.RegisterSource(name, typ, factory, meta, d.Source)
	return nil
}

// Statistics returns counts by type, instances created, and how many
// registered plugins declare dependencies.
func (r *Registry) Statistics() Stats {
	s := Stats{ByType: make(map[plugin.Type]int, len(r.buckets))}
	for typ, b := range r.buckets {
		s.ByType[typ] = len(b)
		s.Total += len(b)
		for _, d := range b {
			if len(d.Dependencies) > 0 {
				s.WithDependencies++
			}
		}
	}
	s.InstancesCreated = len(r.instances)
	return s
}

func instanceKey(name string, typ plugin.Type) string {
	return string(typ) + ":" + name
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
