package clients

import "context"

// Validation is the outcome of a conformance check. Errors make the
// candidate unusable; warnings flag missing recommended surface.
type Validation struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Conformance is checked by the type system for anything that goes through
// Register or RegisterFactory, since factories return Client. The runtime
// checks below exist for candidates supplied as plain values, where
// compile-time checking is unavailable.

// setupOnly and runOnly split the Client contract so a candidate missing
// one method can be reported precisely.
type setupOnly interface {
	SetupPipeline() error
}

type runOnly interface {
	Run(ctx context.Context, args map[string]any) (map[string]any, error)
}

// defaultStrategyProvider is the recommended, not required, surface.
type defaultStrategyProvider interface {
	DefaultExtractionStrategy() string
}

// Validate duck-checks an arbitrary candidate value against the client
// contract: SetupPipeline and Run are required, DefaultExtractionStrategy
// is recommended.
func Validate(candidate any) Validation {
	var v Validation

	if candidate == nil {
		v.Errors = append(v.Errors, "candidate is nil")
		return v
	}
	if _, ok := candidate.(setupOnly); !ok {
		v.Errors = append(v.Errors, "missing required method: SetupPipeline")
	}
	if _, ok := candidate.(runOnly); !ok {
		v.Errors = append(v.Errors, "missing required method: Run")
	}
	if _, ok := candidate.(defaultStrategyProvider); !ok {
		v.Warnings = append(v.Warnings, "missing recommended method: DefaultExtractionStrategy")
	}

	v.Valid = len(v.Errors) == 0
	return v
}

// ValidateFactory checks a factory value: it must have a recognized shape,
// and a shape taking neither the client name nor a config path draws a
// warning since such clients cannot receive per-client configuration.
func ValidateFactory(factory any) Validation {
	var v Validation

	switch factory.(type) {
	case FullFactory, NamedFactory, ConfigFactory:
	case BareFactory:
		v.Warnings = append(v.Warnings, "factory accepts neither client name nor config path")
	case nil:
		v.Errors = append(v.Errors, "factory is nil")
	default:
		v.Errors = append(v.Errors, "unsupported factory shape")
	}

	v.Valid = len(v.Errors) == 0
	return v
}

// ValidateClient resolves name (auto-discovering if needed) and validates
// its factory, reporting "client not found" as an error when resolution
// fails.
func (r *Registry) ValidateClient(name string) Validation {
	factory, ok := r.Get(name)
	if !ok {
		return Validation{
			Valid:  false,
			Errors: []string{"client '" + name + "' not found"},
		}
	}
	return ValidateFactory(factory)
}
