package introspect

import (
	"context"
	"fmt"
	"go/ast"
	"go/doc"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arturoeanton/go-module-pack/internal/port"
)

// GoSourceInspector reads Go packages from source. Module "a.b" maps to the
// directory {root}/a/b; test files are ignored.
type GoSourceInspector struct {
	root string
}

// NewGoSourceInspector creates an inspector rooted at root.
func NewGoSourceInspector(root string) *GoSourceInspector {
	return &GoSourceInspector{root: root}
}

func (g *GoSourceInspector) Name() string { return ModeGoSource }

// ListCallables returns top-level functions and declared types, sorted.
func (g *GoSourceInspector) ListCallables(ctx context.Context, module string) ([]string, error) {
	pkg, err := g.load(ctx, module)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, f := range pkg.Funcs {
		names = append(names, f.Name)
	}
	for _, t := range pkg.Types {
		names = append(names, t.Name)
		for _, f := range t.Funcs {
			names = append(names, f.Name)
		}
	}
	names = filterCallables(names)
	sort.Strings(names)
	return names, nil
}

// Docstring returns the doc comment of a function, type, method ("Type.Method"),
// constant or variable. Go has no empty doc comment, so an undocumented
// declaration yields nil.
func (g *GoSourceInspector) Docstring(ctx context.Context, module, object string) (*string, error) {
	if err := validateObject(object); err != nil {
		return nil, err
	}
	pkg, err := g.load(ctx, module)
	if err != nil {
		return nil, err
	}

	if doc, ok := lookupDoc(pkg, object); ok {
		doc = strings.TrimSpace(doc)
		if doc == "" {
			return nil, nil
		}
		return &doc, nil
	}
	return nil, fmt.Errorf("%w: module '%s' has no attribute '%s'", port.ErrModuleLoad, module, object)
}

func (g *GoSourceInspector) load(ctx context.Context, module string) (*doc.Package, error) {
	if err := validateModule(module); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(g.root, filepath.FromSlash(strings.ReplaceAll(module, ".", "/")))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: No module named '%s'", port.ErrModuleLoad, module)
	}

	fset := token.NewFileSet()
	var (
		files   []*ast.File
		pkgName string
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", port.ErrModuleLoad, name, err)
		}
		if pkgName == "" {
			pkgName = f.Name.Name
		}
		if f.Name.Name != pkgName {
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: No module named '%s'", port.ErrModuleLoad, module)
	}

	pkg, err := doc.NewFromFiles(fset, files, module, doc.AllDecls|doc.PreserveAST)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrModuleLoad, err)
	}
	return pkg, nil
}

func lookupDoc(pkg *doc.Package, object string) (string, bool) {
	typeName, member, isMember := strings.Cut(object, ".")

	for _, t := range pkg.Types {
		if t.Name != typeName {
			continue
		}
		if !isMember {
			return t.Doc, true
		}
		for _, m := range t.Methods {
			if m.Name == member {
				return m.Doc, true
			}
		}
		return "", false
	}
	if isMember {
		return "", false
	}

	for _, f := range pkg.Funcs {
		if f.Name == object {
			return f.Doc, true
		}
	}
	for _, t := range pkg.Types {
		for _, f := range t.Funcs {
			if f.Name == object {
				return f.Doc, true
			}
		}
	}
	groups := [][]*doc.Value{pkg.Consts, pkg.Vars}
	for _, t := range pkg.Types {
		groups = append(groups, t.Consts, t.Vars)
	}
	for _, values := range groups {
		for _, v := range values {
			if d, ok := valueDoc(v, object); ok {
				return d, true
			}
		}
	}
	return "", false
}

// valueDoc prefers the comment directly above object's declaration over the
// doc of the enclosing const or var block.
func valueDoc(v *doc.Value, object string) (string, bool) {
	for _, s := range v.Decl.Specs {
		vs, ok := s.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for _, n := range vs.Names {
			if n.Name != object {
				continue
			}
			if vs.Doc != nil {
				return vs.Doc.Text(), true
			}
			return v.Doc, true
		}
	}
	return "", false
}

func filterCallables(names []string) []string {
	out := names[:0]
	for _, n := range names {
		if n == "init" || n == "_" {
			continue
		}
		out = append(out, n)
	}
	return out
}
