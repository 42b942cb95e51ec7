package resolve_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Tol1/sass-loader/resolve"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFSResolver_ContextDirFirst(t *testing.T) {
	dir := t.TempDir()
	include := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.scss"), "// local\n")
	writeFile(t, filepath.Join(include, "a.scss"), "// include path\n")

	r := resolve.NewFSResolver("main.scss", []string{include}, nil, nil)

	p, err := r.ResolveSync(dir, "a.scss")
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join(dir, "a.scss") {
		t.Errorf("resolved %q, want the context dir copy", p)
	}
}

func TestFSResolver_IncludePathFallback(t *testing.T) {
	dir := t.TempDir()
	include := t.TempDir()
	writeFile(t, filepath.Join(include, "shared", "b.scss"), "// shared\n")

	r := resolve.NewFSResolver("main.scss", []string{include}, nil, nil)

	p, err := r.ResolveSync(dir, "shared/b.scss")
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join(include, "shared", "b.scss") {
		t.Errorf("resolved %q", p)
	}
}

func TestFSResolver_MissReportsNotExist(t *testing.T) {
	r := resolve.NewFSResolver("main.scss", nil, nil, nil)

	_, err := r.ResolveSync(t.TempDir(), "missing.scss")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got %v", err)
	}
}

func TestFSResolver_DirectoriesDoNotResolve(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "theme.scss"), 0755); err != nil {
		t.Fatal(err)
	}

	r := resolve.NewFSResolver("main.scss", nil, nil, nil)
	if _, err := r.ResolveSync(dir, "theme.scss"); err == nil {
		t.Error("a directory must not satisfy a file request")
	}
}

func TestFSResolver_DependencyDeduplicates(t *testing.T) {
	r := resolve.NewFSResolver("main.scss", nil, nil, nil)

	r.Dependency("/styles/_a.scss")
	r.Dependency("/styles/_b.scss")
	r.Dependency("/styles/_a.scss")

	deps := r.Dependencies()
	if len(deps) != 2 {
		t.Fatalf("dependencies = %v, want 2 distinct entries", deps)
	}
	if deps[0] != "/styles/_a.scss" || deps[1] != "/styles/_b.scss" {
		t.Errorf("dependencies = %v", deps)
	}
}

func TestFSResolver_AsyncDeliversSameResult(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "c.scss"), "// c\n")

	r := resolve.NewFSResolver("main.scss", nil, nil, nil)

	type outcome struct {
		path string
		err  error
	}
	ch := make(chan outcome, 1)
	r.Resolve(dir, "c.scss", func(path string, err error) {
		ch <- outcome{path, err}
	})

	o := <-ch
	if o.err != nil {
		t.Fatal(o.err)
	}
	if o.path != filepath.Join(dir, "c.scss") {
		t.Errorf("resolved %q", o.path)
	}
}
