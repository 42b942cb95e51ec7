package resolve_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Tol1/sass-loader/resolve"
	"github.com/Tol1/sass-loader/sass"
)

// fakeResolver resolves from a fixed request-to-path table and records
// every attempt and registration.
type fakeResolver struct {
	mu          sync.Mutex
	resolutions map[string]string
	attempts    []string
	deps        []string
}

func (f *fakeResolver) ResolveSync(contextDir, request string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, request)
	if p, ok := f.resolutions[request]; ok {
		return p, nil
	}
	return "", errors.New("not found: " + request)
}

func (f *fakeResolver) Resolve(contextDir, request string, done func(string, error)) {
	go func() {
		done(f.ResolveSync(contextDir, request))
	}()
}

func (f *fakeResolver) Dependency(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deps = append(f.deps, path)
}

func (f *fakeResolver) snapshot() (attempts, deps []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.attempts...), append([]string(nil), f.deps...)
}

func TestSync_FirstCandidateWins(t *testing.T) {
	r := &fakeResolver{resolutions: map[string]string{
		"foo.scss": "/styles/foo.scss",
	}}

	imp := resolve.Sync(r, "/styles", "foo.scss", nil)

	if imp.Inline() {
		t.Fatal("expected a file reference")
	}
	if imp.File() != "/styles/foo.scss" {
		t.Errorf("resolved path = %q", imp.File())
	}
	attempts, deps := r.snapshot()
	if len(attempts) != 1 {
		t.Errorf("expected a single resolver call, observed %v", attempts)
	}
	if len(deps) != 1 || deps[0] != "/styles/foo.scss" {
		t.Errorf("dependency registrations = %v", deps)
	}
}

func TestSync_AdvancesToPartial(t *testing.T) {
	r := &fakeResolver{resolutions: map[string]string{
		"_foo.scss": "/styles/_foo.scss",
	}}

	imp := resolve.Sync(r, "/styles", "foo.scss", nil)

	if imp.File() != "/styles/_foo.scss" {
		t.Errorf("resolved path = %q", imp.File())
	}
	attempts, _ := r.snapshot()
	want := []string{"foo.scss", "foo.css", "_foo.scss"}
	if len(attempts) != len(want) {
		t.Fatalf("attempts = %v, want %v", attempts, want)
	}
	for i := range want {
		if attempts[i] != want[i] {
			t.Errorf("attempt %d = %q, want %q", i, attempts[i], want[i])
		}
	}
}

func TestSync_ExhaustionFallsBackWithoutError(t *testing.T) {
	r := &fakeResolver{}

	imp := resolve.Sync(r, "/styles", "shared/foo.scss", nil)

	if imp.Inline() {
		t.Fatal("fallback must be a file reference")
	}
	if imp.File() != "shared/_foo.scss" {
		t.Errorf("fallback path = %q, want the last unresolved candidate", imp.File())
	}
	_, deps := r.snapshot()
	if len(deps) != 0 {
		t.Errorf("failed candidates must not register dependencies, got %v", deps)
	}
}

func TestSync_CSSBecomesInlineContent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "normalize.css")
	content := "html { box-sizing: border-box; }\n"
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	r := &fakeResolver{resolutions: map[string]string{
		"normalize.css": target,
	}}

	imp := resolve.Sync(r, dir, "normalize.css", nil)

	if !imp.Inline() {
		t.Fatal("expected inline content for a .css resolution")
	}
	if imp.Contents() != content {
		t.Errorf("inline content = %q, want the exact on-disk contents %q", imp.Contents(), content)
	}
}

func TestSync_CSSInlineStripsByteOrderMark(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "reset.css")
	if err := os.WriteFile(target, []byte("\xef\xbb\xbfa{color:red}"), 0644); err != nil {
		t.Fatal(err)
	}

	r := &fakeResolver{resolutions: map[string]string{
		"reset.css": target,
	}}

	imp := resolve.Sync(r, dir, "reset.css", nil)

	if !imp.Inline() {
		t.Fatal("expected inline content for a .css resolution")
	}
	if imp.Contents() != "a{color:red}" {
		t.Errorf("inline content = %q, want the contents without the byte order mark", imp.Contents())
	}
}

func TestSync_CSSInlineDecodesUTF16(t *testing.T) {
	content := "a{color:red}"
	raw := []byte{0xff, 0xfe} // UTF-16LE byte order mark
	for _, b := range []byte(content) {
		raw = append(raw, b, 0x00)
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "wide.css")
	if err := os.WriteFile(target, raw, 0644); err != nil {
		t.Fatal(err)
	}

	r := &fakeResolver{resolutions: map[string]string{
		"wide.css": target,
	}}

	imp := resolve.Sync(r, dir, "wide.css", nil)

	if !imp.Inline() {
		t.Fatal("expected inline content for a .css resolution")
	}
	if imp.Contents() != content {
		t.Errorf("inline content = %q, want UTF-8 decoded %q", imp.Contents(), content)
	}
}

func TestSync_UnreadableCSSDegradesToFileReference(t *testing.T) {
	r := &fakeResolver{resolutions: map[string]string{
		"gone.css": "/definitely/missing/gone.css",
	}}

	imp := resolve.Sync(r, "/styles", "gone.css", nil)

	if imp.Inline() {
		t.Fatal("unreadable inline content must degrade to a file reference")
	}
	if imp.File() != "/definitely/missing/gone.css" {
		t.Errorf("path = %q", imp.File())
	}
}

func TestAsync_MatchesSyncSemantics(t *testing.T) {
	r := &fakeResolver{resolutions: map[string]string{
		"_foo.scss": "/styles/_foo.scss",
	}}

	ch := make(chan sass.Import, 1)
	resolve.Async(r, "/styles", "foo.scss", nil, func(imp sass.Import) {
		ch <- imp
	})

	imp := <-ch
	if imp.File() != "/styles/_foo.scss" {
		t.Errorf("resolved path = %q", imp.File())
	}
	attempts, deps := r.snapshot()
	if len(attempts) != 3 {
		t.Errorf("attempts = %v", attempts)
	}
	if len(deps) != 1 {
		t.Errorf("dependency registrations = %v", deps)
	}
}

func TestAsync_ExhaustionDeliversFallback(t *testing.T) {
	r := &fakeResolver{}

	ch := make(chan sass.Import, 1)
	resolve.Async(r, "/styles", "foo.scss", nil, func(imp sass.Import) {
		ch <- imp
	})

	imp := <-ch
	if imp.Inline() || imp.File() != "_foo.scss" {
		t.Errorf("fallback = %+v, want file reference to _foo.scss", imp)
	}
}
