package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nzslang/nzslc/internal/ast"
)

func writeModule(t *testing.T, root, relPath, body string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func countingCompiler(calls *int) CompileFunc {
	return func(source, fileName string) (*ast.Module, error) {
		*calls++
		return &ast.Module{Root: &ast.MultiStmt{}, Metadata: ast.Metadata{ModuleName: fileName}}, nil
	}
}

func TestResolveFindsFileUnderRoot(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "math/utils.nzsl", "module math.utils;")

	var calls int
	r := NewFilesystemResolver([]string{root}, countingCompiler(&calls))

	mod, err := r.Resolve("math.utils")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mod == nil {
		t.Fatal("expected a resolved module")
	}
	if calls != 1 {
		t.Fatalf("got %d compiles want 1", calls)
	}
}

func TestResolveCachesByName(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "foo.nzsl", "module foo;")

	var calls int
	r := NewFilesystemResolver([]string{root}, countingCompiler(&calls))

	first, err := r.Resolve("foo")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Resolve("foo")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("expected the identical *ast.Module pointer on a second Resolve (by-shared-reference)")
	}
	if calls != 1 {
		t.Fatalf("got %d compiles want 1 (second call should hit cache)", calls)
	}
}

func TestResolveSearchesRootsInOrder(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeModule(t, rootB, "shared.nzsl", "module shared;")

	var calls int
	r := NewFilesystemResolver([]string{rootA, rootB}, countingCompiler(&calls))

	if _, err := r.Resolve("shared"); err != nil {
		t.Fatalf("expected the second root to satisfy the lookup, got error: %v", err)
	}
}

func TestResolveMissingModuleReportsNotFound(t *testing.T) {
	root := t.TempDir()
	var calls int
	r := NewFilesystemResolver([]string{root}, countingCompiler(&calls))

	_, err := r.Resolve("does.not.exist")
	if err == nil {
		t.Fatal("expected an error for a missing module")
	}
	rerr, ok := err.(*Error)
	if !ok || rerr.Kind != ErrModuleNotFound {
		t.Fatalf("got %v want *resolver.Error{Kind: ErrModuleNotFound}", err)
	}
}

func TestResolveDetectsCircularImport(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "a.nzsl", "module a;")

	var r *FilesystemResolver
	compile := func(source, fileName string) (*ast.Module, error) {
		// Simulate `a` importing itself mid-resolution.
		return r.Resolve("a")
	}
	r = NewFilesystemResolver([]string{root}, compile)

	_, err := r.Resolve("a")
	if err == nil {
		t.Fatal("expected a circular import error")
	}
	rerr, ok := err.(*Error)
	if !ok || rerr.Kind != ErrCircularImport {
		t.Fatalf("got %v want *resolver.Error{Kind: ErrCircularImport}", err)
	}
}

func TestResolveWrapsCompileFailure(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "broken.nzsl", "not valid nzsl")

	r := NewFilesystemResolver([]string{root}, func(source, fileName string) (*ast.Module, error) {
		return nil, os.ErrInvalid
	})
	_, err := r.Resolve("broken")
	if err == nil {
		t.Fatal("expected an error when the compile callback fails")
	}
	rerr, ok := err.(*Error)
	if !ok || rerr.Kind != ErrCompileFailure {
		t.Fatalf("got %v want *resolver.Error{Kind: ErrCompileFailure}", err)
	}
}
