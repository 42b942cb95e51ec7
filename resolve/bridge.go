package resolve

import (
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Tol1/sass-loader/sass"
)

// Resolver is the contract the host build system provides. Resolve and
// ResolveSync turn a request issued from contextDir into an absolute path or
// an error; Dependency registers a successfully resolved path for
// incremental-rebuild tracking. Registration is additive and idempotent.
type Resolver interface {
	Resolve(contextDir, request string, done func(path string, err error))
	ResolveSync(contextDir, request string) (string, error)
	Dependency(path string)
}

// Sync walks the candidate list for url through the resolver, blocking on
// each attempt. It always produces an Import: when every candidate fails the
// last candidate's unresolved request is handed back as a file reference, so
// the actual failure surfaces later through the compiler's own read attempt.
// The importer protocol has no error channel, so neither does this.
func Sync(r Resolver, contextDir, url string, log *zap.Logger) sass.Import {
	if log == nil {
		log = zap.NewNop()
	}

	cands := Candidates(url)
	var errs error
	for _, c := range cands {
		p, err := r.ResolveSync(contextDir, c.Request)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		r.Dependency(p)
		log.Debug("Import resolved",
			zap.String("url", url), zap.String("path", p), zap.Stringer("kind", c.Kind))
		return classify(p, log)
	}

	fallback := cands[len(cands)-1].Request
	log.Debug("No import candidate resolved, deferring to compiler",
		zap.String("url", url), zap.String("fallback", fallback), zap.Error(errs))
	return classify(fallback, log)
}

// Async has the same semantics as Sync but drives the resolver through its
// non-blocking entry point. Candidates are still attempted strictly one
// after another and done is invoked exactly once with the final Import.
func Async(r Resolver, contextDir, url string, log *zap.Logger, done func(sass.Import)) {
	if log == nil {
		log = zap.NewNop()
	}

	cands := Candidates(url)
	go func() {
		type outcome struct {
			path string
			err  error
		}

		var errs error
		for _, c := range cands {
			ch := make(chan outcome, 1)
			r.Resolve(contextDir, c.Request, func(path string, err error) {
				ch <- outcome{path, err}
			})
			o := <-ch
			if o.err != nil {
				errs = multierr.Append(errs, o.err)
				continue
			}
			r.Dependency(o.path)
			log.Debug("Import resolved",
				zap.String("url", url), zap.String("path", o.path), zap.Stringer("kind", c.Kind))
			done(classify(o.path, log))
			return
		}

		fallback := cands[len(cands)-1].Request
		log.Debug("No import candidate resolved, deferring to compiler",
			zap.String("url", url), zap.String("fallback", fallback), zap.Error(errs))
		done(classify(fallback, log))
	}()
}

// classify decides how the compiler should consume the resolved (or
// fallback) path. Plain CSS is embedded as inline content so the compiler
// does not run it through its own importer chain again; everything else
// stays a file reference for the compiler to read. When inline content
// cannot be read the path degrades to a file reference and the failure is
// left to the compiler.
func classify(p string, log *zap.Logger) sass.Import {
	if !strings.HasSuffix(p, ".css") {
		return sass.FileImport(p)
	}
	text, err := readStylesheet(p)
	if err != nil {
		log.Debug("Unable to inline CSS import", zap.String("path", p), zap.Error(err))
		return sass.FileImport(p)
	}
	return sass.ContentsImport(text)
}

// readStylesheet reads a stylesheet normalizing it to plain UTF-8: a byte
// order mark switches decoding to the encoding it announces, BOM-less UTF-8
// passes through untouched.
func readStylesheet(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
