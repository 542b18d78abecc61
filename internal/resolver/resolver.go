// Package resolver implements the module resolver (§4.4): a name→Module
// lookup the identifier/type resolver (internal/sema) calls into when it
// encounters an `import`, with its own cache and cycle detection so the
// semantic core never touches the filesystem directly.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nzslang/nzslc/internal/ast"
)

// ErrorKind classifies a ResolveError raised by this package (§7, the
// `ModuleError`/`IOError` family members relevant to import resolution).
type ErrorKind uint8

const (
	ErrModuleNotFound ErrorKind = iota
	ErrCircularImport
	ErrReadFailure
	ErrCompileFailure
)

// Error is the module-resolution error family member.
type Error struct {
	Kind       ErrorKind
	ModuleName string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("module %q: %s", e.ModuleName, e.Message)
}

// Resolver is the interface the identifier/type resolver depends on
// (§4.4 "Resolver is supplied to the identifier-type pass as an
// interface; the core does not read the filesystem itself").
type Resolver interface {
	Resolve(name string) (*ast.Module, error)
}

// CompileFunc turns source text into a fully parsed-and-resolved Module.
// It is supplied by pkg/compiler, which owns the full C3→C6 pipeline;
// this package only owns name→file lookup and caching, keeping
// internal/resolver free of an import-cycle-inducing dependency on
// internal/sema.
type CompileFunc func(source, fileName string) (*ast.Module, error)

// FilesystemResolver is the core's filesystem-backed Resolver (§6.5): it
// maps a dotted module name to a `.nzsl` file under one of its search
// roots, compiles it on first use, and serves every subsequent request
// for the same name from cache by shared reference.
type FilesystemResolver struct {
	roots   []string
	compile CompileFunc

	cache     map[string]*ast.Module
	resolving map[string]bool // names on the current resolution stack, for cycle detection
}

// NewFilesystemResolver builds a resolver that searches roots in order
// and compiles found files with compile.
func NewFilesystemResolver(roots []string, compile CompileFunc) *FilesystemResolver {
	return &FilesystemResolver{
		roots:     roots,
		compile:   compile,
		cache:     make(map[string]*ast.Module),
		resolving: make(map[string]bool),
	}
}

// Resolve implements Resolver. It is idempotent: resolving the same name
// twice returns the identical *ast.Module pointer (§6.5 "by-shared-reference").
func (r *FilesystemResolver) Resolve(name string) (*ast.Module, error) {
	if mod, ok := r.cache[name]; ok {
		return mod, nil
	}
	if r.resolving[name] {
		return nil, &Error{Kind: ErrCircularImport, ModuleName: name, Message: "import cycle detected"}
	}

	path, err := r.locate(name)
	if err != nil {
		return nil, err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: ErrReadFailure, ModuleName: name, Message: err.Error()}
	}

	r.resolving[name] = true
	defer delete(r.resolving, name)

	mod, err := r.compile(string(source), path)
	if err != nil {
		var rerr *Error
		if errors.As(err, &rerr) && rerr.Kind == ErrCircularImport {
			return nil, rerr
		}
		return nil, &Error{Kind: ErrCompileFailure, ModuleName: name, Message: err.Error()}
	}

	r.cache[name] = mod
	return mod, nil
}

// locate converts a dotted module name ("a.b.c") into "a/b/c.nzsl" and
// searches each root in registration order, mirroring the original
// compiler's RegisterDirectory search-root model (§6.5 "--module" dirs).
func (r *FilesystemResolver) locate(name string) (string, error) {
	rel := strings.ReplaceAll(name, ".", string(filepath.Separator)) + ".nzsl"
	for _, root := range r.roots {
		candidate := filepath.Join(root, rel)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", &Error{Kind: ErrModuleNotFound, ModuleName: name, Message: "no `" + rel + "` found under any --module root"}
}
