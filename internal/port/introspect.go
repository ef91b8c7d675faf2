package port

import "context"

// Inspector loads a module at call time and reads metadata from it directly,
// bypassing the vector index.
type Inspector interface {
	// Name identifies the implementation ("python", "gosource", "disabled").
	Name() string

	// ListCallables returns the names of the module's callable members.
	ListCallables(ctx context.Context, module string) ([]string, error)

	// Docstring returns the documentation of object in module. Nil means the
	// object carries no documentation; an empty string is returned as is.
	Docstring(ctx context.Context, module, object string) (*string, error)
}
