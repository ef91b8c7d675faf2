package introspect

import (
	"context"

	"github.com/arturoeanton/go-module-pack/internal/port"
)

// Disabled refuses every lookup. Used where dynamic loading is not wanted.
type Disabled struct{}

func (Disabled) Name() string { return ModeDisabled }

func (Disabled) ListCallables(context.Context, string) ([]string, error) {
	return nil, port.ErrIntrospectionDisabled
}

func (Disabled) Docstring(context.Context, string, string) (*string, error) {
	return nil, port.ErrIntrospectionDisabled
}
