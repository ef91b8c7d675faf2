// Package introspect implements port.Inspector: reading callables and
// docstrings from a module loaded at call time instead of from the index.
package introspect

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/arturoeanton/go-module-pack/internal/port"
)

// Modes accepted by New.
const (
	ModePython   = "python"
	ModeGoSource = "gosource"
	ModeDisabled = "disabled"
)

var (
	modulePattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
)

// Config selects an inspector implementation.
type Config struct {
	Mode      string
	PythonBin string // python mode
	Root      string // gosource: directory holding one sub-directory per module; python: prepended to PYTHONPATH
}

// New returns the inspector for cfg.Mode.
func New(cfg Config, logger *slog.Logger) (port.Inspector, error) {
	switch cfg.Mode {
	case "", ModePython:
		return NewPythonInspector(cfg.PythonBin, logger, WithPythonPath(cfg.Root)), nil
	case ModeGoSource:
		return NewGoSourceInspector(cfg.Root), nil
	case ModeDisabled:
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unsupported introspection mode: %s", cfg.Mode)
	}
}

func validateModule(module string) error {
	if !modulePattern.MatchString(module) {
		return fmt.Errorf("%w: invalid module name %q", port.ErrModuleLoad, module)
	}
	return nil
}

func validateObject(object string) error {
	if !identifierPattern.MatchString(object) {
		return fmt.Errorf("%w: invalid object name %q", port.ErrModuleLoad, object)
	}
	return nil
}
