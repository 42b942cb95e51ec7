package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// FSResolver is a filesystem-backed Resolver used by the command line
// driver and tests. Requests are looked up relative to the requesting
// directory first, then in the configured include paths. Registered
// dependencies are kept in memory and, when a store is attached, persisted
// for incremental-rebuild decisions.
type FSResolver struct {
	source       string
	includePaths []string
	store        *DepStore
	log          *zap.Logger

	mu   sync.Mutex
	seen map[string]struct{}
	deps []string
}

// NewFSResolver creates a resolver for a single source file. source is the
// path dependency records are keyed under, store may be nil.
func NewFSResolver(source string, includePaths []string, store *DepStore, log *zap.Logger) *FSResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &FSResolver{
		source:       source,
		includePaths: includePaths,
		store:        store,
		log:          log.Named("resolver"),
		seen:         make(map[string]struct{}),
	}
}

// ResolveSync looks request up on disk and returns its absolute path.
func (r *FSResolver) ResolveSync(contextDir, request string) (string, error) {
	var dirs []string
	if filepath.IsAbs(request) {
		dirs = []string{""}
	} else {
		dirs = append([]string{contextDir}, r.includePaths...)
	}

	for _, dir := range dirs {
		p := request
		if dir != "" {
			p = filepath.Join(dir, request)
		}
		fi, err := os.Stat(p)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs, nil
		}
		return p, nil
	}
	return "", fmt.Errorf("cannot resolve %q from %q: %w", request, contextDir, os.ErrNotExist)
}

// Resolve is the non-blocking counterpart of ResolveSync.
func (r *FSResolver) Resolve(contextDir, request string, done func(path string, err error)) {
	go func() {
		p, err := r.ResolveSync(contextDir, request)
		done(p, err)
	}()
}

// Dependency registers path as a build dependency of the source file.
// Registering the same path twice is harmless.
func (r *FSResolver) Dependency(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[path]; ok {
		return
	}
	r.seen[path] = struct{}{}
	r.deps = append(r.deps, path)
	r.log.Debug("Dependency registered", zap.String("source", r.source), zap.String("path", path))

	if r.store != nil {
		if err := r.store.Record(r.source, path); err != nil {
			r.log.Warn("Unable to persist dependency", zap.String("path", path), zap.Error(err))
		}
	}
}

// Dependencies returns the registered dependencies sorted by path.
func (r *FSResolver) Dependencies() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.deps))
	copy(out, r.deps)
	sort.Strings(out)
	return out
}
