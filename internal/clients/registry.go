// Package clients implements the flat, process-wide registry of client
// implementations. Unlike plugins, clients share a single namespace: one
// name maps to one implementation.
//
// The registry is populated during startup, either by explicit Register
// calls from client packages' init functions or by name-pattern
// auto-discovery against the factory table. It carries no internal locking;
// populate before starting concurrent work.
package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Default is the conventionally-shared registry used at the composition
// root; one shared instance for the life of the process.
var Default = New()

// Client is the contract every client implementation fulfills: wire your
// hooks and plugins in SetupPipeline, do the work in Run.
type Client interface {
	SetupPipeline() error
	Run(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Recognized factory shapes. Create derives what to supply from the shape:
// clientName and configPath are passed positionally when the factory
// accepts them, and extra arguments are forwarded when it takes them.
type (
	// FullFactory receives the client name, config path, and extras.
	FullFactory = func(name, configPath string, extra map[string]any) (Client, error)

	// NamedFactory receives the client name and config path.
	NamedFactory = func(name, configPath string) (Client, error)

	// ConfigFactory receives only the config path.
	ConfigFactory = func(configPath string) (Client, error)

	// BareFactory receives nothing.
	BareFactory = func() (Client, error)
)

// Meta carries the descriptor fields supplied at registration time.
type Meta struct {
	Description  string
	Version      string
	Capabilities []string
}

// Descriptor records one registered client. Uniqueness key is the name.
type Descriptor struct {
	Name         string
	Factory      any // one of the client factory shapes
	Description  string
	Version      string
	Capabilities []string
	Source       string // factory table key the client was resolved from
	RegisteredAt time.Time
}

// Stats summarizes the registry contents.
type Stats struct {
	Total        int
	Names        []string
	Capabilities map[string]int
}

// Registry maps client names to their descriptors.
type Registry struct {
	clients map[string]*Descriptor
}

// New returns an empty client registry.
func New() *Registry {
	return &Registry{clients: make(map[string]*Descriptor)}
}

// Register stores a client factory under name, overwriting any prior entry.
func (r *Registry) Register(name string, factory any, meta Meta) {
	r.registerSource(name, factory, meta, "")
}

func (r *Registry) registerSource(name string, factory any, meta Meta, source string) {
	r.clients[name] = &Descriptor{
		Name:         name,
		Factory:      factory,
		Description:  meta.Description,
		Version:      orDefault(meta.Version, "1.0"),
		Capabilities: meta.Capabilities,
		Source:       source,
		RegisteredAt: time.Now(),
	}
	log.Debug().Str("client", name).Msg("Client registered")
}

// Get returns the factory for name. An unregistered name triggers one
// auto-discovery attempt before giving up.
func (r *Registry) Get(name string) (any, bool) {
	if d, ok := r.clients[name]; ok {
		return d.Factory, true
	}
	if r.autoLoad(name) {
		return r.clients[name].Factory, true
	}
	return nil, false
}

// Info returns the descriptor for name, attempting auto-discovery first.
func (r *Registry) Info(name string) (*Descriptor, bool) {
	if _, ok := r.clients[name]; !ok {
		r.autoLoad(name)
	}
	d, ok := r.clients[name]
	return d, ok
}

// List returns the registered client names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}

// Create resolves name and instantiates it, supplying the client name,
// configPath, and extra arguments according to the factory's shape. A name
// that cannot be resolved yields a *NotFoundError; a factory failure yields
// a *ConstructionError wrapping the cause.
func (r *Registry) Create(name, configPath string, extra map[string]any) (Client, error) {
	factory, ok := r.Get(name)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}

	var (
		c   Client
		err error
	)
	switch f := factory.(type) {
	case FullFactory:
		c, err = f(name, configPath, extra)
	case NamedFactory:
		c, err = f(name, configPath)
	case ConfigFactory:
		c, err = f(configPath)
	case BareFactory:
		c, err = f()
	default:
		err = fmt.Errorf("unsupported factory shape %T", factory)
	}
	if err != nil {
		return nil, &ConstructionError{Name: name, Err: err}
	}
	if c == nil {
		return nil, &ConstructionError{Name: name, Err: fmt.Errorf("factory returned nil client")}
	}
	return c, nil
}

// Unregister removes name. Returns whether an entry was removed.
func (r *Registry) Unregister(name string) bool {
	if _, ok := r.clients[name]; !ok {
		return false
	}
	delete(r.clients, name)
	return true
}

// ByCapability returns the names of clients declaring capability.
func (r *Registry) ByCapability(capability string) []string {
	var names []string
	for name, d := range r.clients {
		for _, c := range d.Capabilities {
			if c == capability {
				names = append(names, name)
				break
			}
		}
	}
	return names
}

// Reload re-resolves the client's factory from its recorded factory-table
// key, preserving the prior metadata. Clients registered directly (no
// source key) cannot be reloaded.
func (r *Registry) Reload(name string) error {
	d, ok := r.clients[name]
	if !ok {
		return &NotFoundError{Name: name}
	}
	if d.Source == "" {
		return fmt.Errorf("client %q has no reloadable source", name)
	}

	entry, ok := lookupFactory(d.Source)
	if !ok {
		return fmt.Errorf("client %q: source key %q not in factory table", name, d.Source)
	}

	meta := Meta{
		Description:  d.Description,
		Version:      d.Version,
		Capabilities: d.Capabilities,
	}
	r.registerSource(name, entry.factory, meta, d.Source)
	return nil
}

// Statistics returns the total count, names, and per-capability counts.
func (r *Registry) Statistics() Stats {
	s := Stats{
		Total:        len(r.clients),
		Names:        r.List(),
		Capabilities: make(map[string]int),
	}
	for _, d := range r.clients {
		for _, c := range d.Capabilities {
			s.Capabilities[c]++
		}
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
