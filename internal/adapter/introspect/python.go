package introspect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/arturoeanton/go-module-pack/internal/port"
)

// pythonScript imports argv[1] and writes one JSON line to the real stdout:
// the callable member names, the docstring of argv[2], or the failure. Output
// produced by the module itself goes to stderr.
const pythonScript = `
import functools, importlib, json, sys
out = sys.stdout
sys.stdout = sys.stderr
def reply(payload):
    out.write(json.dumps(payload) + "\n")
    out.flush()
try:
    mod = importlib.import_module(sys.argv[1])
    if len(sys.argv) > 2:
        obj = functools.reduce(getattr, sys.argv[2].split("."), mod)
        doc = obj.__doc__
        reply({"doc": doc if isinstance(doc, str) else None})
    else:
        reply({"callables": [n for n, o in vars(mod).items() if callable(o)]})
except (Exception, SystemExit) as e:
    reply({"error": str(e)})
`

// PythonOption configures a PythonInspector.
type PythonOption func(*PythonInspector)

// WithPythonPath prepends dir to the interpreter's PYTHONPATH.
func WithPythonPath(dir string) PythonOption {
	return func(p *PythonInspector) {
		if dir == "" {
			return
		}
		path := dir
		if cur := os.Getenv("PYTHONPATH"); cur != "" {
			path += string(os.PathListSeparator) + cur
		}
		p.env = append(os.Environ(), "PYTHONPATH="+path)
	}
}

// PythonInspector imports Python modules in a child interpreter.
type PythonInspector struct {
	bin    string
	env    []string
	logger *slog.Logger
}

// NewPythonInspector creates an inspector running bin (default "python3").
func NewPythonInspector(bin string, logger *slog.Logger, opts ...PythonOption) *PythonInspector {
	if bin == "" {
		bin = "python3"
	}
	p := &PythonInspector{bin: bin, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PythonInspector) Name() string { return ModePython }

type pythonReply struct {
	Error     string   `json:"error"`
	Doc       *string  `json:"doc"`
	Callables []string `json:"callables"`
}

// ListCallables returns every callable attribute of the module, in definition order.
func (p *PythonInspector) ListCallables(ctx context.Context, module string) ([]string, error) {
	if err := validateModule(module); err != nil {
		return nil, err
	}
	reply, err := p.run(ctx, module)
	if err != nil {
		return nil, err
	}
	return reply.Callables, nil
}

// Docstring returns obj.__doc__ of module.object, nil when it is None.
func (p *PythonInspector) Docstring(ctx context.Context, module, object string) (*string, error) {
	if err := validateModule(module); err != nil {
		return nil, err
	}
	if err := validateObject(object); err != nil {
		return nil, err
	}
	reply, err := p.run(ctx, module, object)
	if err != nil {
		return nil, err
	}
	return reply.Doc, nil
}

func (p *PythonInspector) run(ctx context.Context, args ...string) (*pythonReply, error) {
	cmd := exec.CommandContext(ctx, p.bin, append([]string{"-c", pythonScript}, args...)...)
	cmd.Env = p.env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		p.logger.Debug("python introspection failed", "args", args, "stderr", strings.TrimSpace(stderr.String()))
		return nil, fmt.Errorf("%w: run %s: %v", port.ErrModuleLoad, p.bin, err)
	}
	if stderr.Len() > 0 {
		p.logger.Debug("python module wrote output", "args", args, "stderr", strings.TrimSpace(stderr.String()))
	}

	var reply pythonReply
	if err := json.Unmarshal(lastLine(stdout.Bytes()), &reply); err != nil {
		return nil, fmt.Errorf("%w: decode interpreter output: %v", port.ErrModuleLoad, err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("%w: %s", port.ErrModuleLoad, reply.Error)
	}
	return &reply, nil
}

// lastLine returns the final non-blank line of out. The reply is always the
// last thing written, even when a native extension prints to fd 1 directly.
func lastLine(out []byte) []byte {
	out = bytes.TrimSpace(out)
	if i := bytes.LastIndexByte(out, '\n'); i >= 0 {
		out = bytes.TrimSpace(out[i+1:])
	}
	return out
}
