package clients

import "fmt"

// NotFoundError means no registered or auto-discoverable client exists for
// the requested name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("client %q not found in registry", e.Name)
}

// ConstructionError means the resolved factory failed; Err is the original
// cause.
type ConstructionError struct {
	Name string
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("failed to create client %q: %v", e.Name, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }
