package registry

import (
	"errors"
	"fmt"

	"github.com/scrapeworks/discovery/internal/plugin"
)

var (
	// ErrNotRegistered means no descriptor exists under the requested key.
	ErrNotRegistered = errors.New("plugin not registered")

	// ErrNilInstance means a factory returned nil.
	ErrNilInstance = errors.New("factory returned nil plugin")

	// ErrNoSource means a reload was requested for a plugin registered
	// without a source symbol to re-resolve from.
	ErrNoSource = errors.New("plugin has no reloadable source")

	// ErrIncompleteManifest means a manifest is missing name or class.
	ErrIncompleteManifest = errors.New("manifest missing name or class")

	// ErrUnknownSymbol means a manifest names a factory symbol that is not
	// linked into this binary.
	ErrUnknownSymbol = errors.New("factory symbol not registered")
)

// LoadError wraps a failure to resolve, construct, or reload a named plugin.
type LoadError struct {
	Name string
	Type plugin.Type
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("plugin %s/%s: %v", e.Type, e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
