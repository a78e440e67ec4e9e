// Package hooks implements named extension points on a pipeline.
//
// Callbacks registered under the same name run strictly in registration
// order, each receiving the fully-resolved output of the previous one. The
// bus never runs two callbacks for the same name concurrently and does not
// catch callback errors.
package hooks

import "context"

// Hook transforms an accumulator value at an extension point. A hook may
// block; the bus waits for it to return before advancing to the next one.
// Cancellation is not imposed by the bus: the context is passed through for
// callbacks that choose to honor it.
type Hook func(ctx context.Context, v any) (any, error)

// Bus holds the ordered callback lists for one pipeline instance.
// It is owned by a single pipeline and not safe for concurrent mutation.
type Bus struct {
	hooks map[string][]Hook
}

// NewBus returns an empty hook bus.
func NewBus() *Bus {
	return &Bus{hooks: make(map[string][]Hook)}
}

// Register appends a callback to the list for name. There is no implicit
// priority; execution order equals registration order.
func (b *Bus) Register(name string, h Hook) {
	b.hooks[name] = append(b.hooks[name], h)
}

// Run threads v through every callback registered under name. A name with
// zero registrations is a no-op passthrough. The first callback error aborts
// the chain and is returned unmodified.
func (b *Bus) Run(ctx context.Context, name string, v any) (any, error) {
	for _, h := range b.hooks[name] {
		var err error
		v, err = h(ctx, v)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Count returns the number of callbacks registered under name.
func (b *Bus) Count(name string) int {
	return len(b.hooks[name])
}

// Names returns every hook name with at least one registration.
func (b *Bus) Names() []string {
	names := make([]string, 0, len(b.hooks))
	for name := range b.hooks {
		names = append(names, name)
	}
	return names
}
