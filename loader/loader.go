// Package loader turns Sass/SCSS source text into CSS for a host build
// pipeline. It assembles compiler options, wires the import resolution
// bridge into the compiler's importer hook and reshapes the compiler's
// error and source-map output for the host.
package loader

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Tol1/sass-loader/resolve"
	"github.com/Tol1/sass-loader/sass"
)

// Options configure a single render invocation. They usually come from the
// host's per-resource option blob, see ParseQuery.
type Options struct {
	// IndentedSyntax selects the indented (.sass) dialect and with it the
	// default extension appended to bare import urls.
	IndentedSyntax bool
	// OutputStyle overrides the effective output style. When empty the
	// loader picks compressed for minification passes and nested
	// otherwise.
	OutputStyle string
	// SourceMap requests source map generation.
	SourceMap bool
	// Root is the base directory for absolute import urls.
	Root string
	// Precision is passed through to the compiler untouched.
	Precision int
}

// Result is a successful transform outcome.
type Result struct {
	Content []byte
	// SourceMap is the reshaped source map JSON, nil when the compiler
	// produced none or a trivial one.
	SourceMap []byte
}

// Loader drives the compiler for a host build pipeline.
type Loader struct {
	renderer sass.Renderer
	resolver resolve.Resolver
	log      *zap.Logger

	// Minimize mirrors the host's minification flag. Without an explicit
	// OutputStyle override it switches output to the compressed style.
	Minimize bool
	// OutputDir is the host's output directory, source map paths are
	// rewritten relative to it.
	OutputDir string
}

// New creates a loader on top of a render engine and a host resolver.
func New(renderer sass.Renderer, resolver resolve.Resolver, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		renderer: renderer,
		resolver: resolver,
		log:      log.Named("loader"),
	}
}

// RenderSync compiles content on the calling goroutine. The returned error,
// when non-nil, is always a formatted *sass.Error.
func (l *Loader) RenderSync(content, resourcePath string, opts Options) (*Result, error) {
	if strings.TrimSpace(content) == "" {
		l.log.Debug("Skipping empty source", zap.String("resource", resourcePath))
		return &Result{Content: []byte(content)}, nil
	}

	so := l.sassOptions(content, resourcePath, opts)
	imp := newImporter(l.resolver, resourcePath, opts, l.log)
	so.Importer = imp.importSync

	res, serr := l.renderer.RenderSync(so)
	if serr != nil {
		FormatError(serr, resourcePath)
		return nil, serr
	}
	return l.reshape(res, resourcePath), nil
}

// Render compiles content without blocking and delivers the outcome through
// done exactly once.
func (l *Loader) Render(content, resourcePath string, opts Options, done func(*Result, error)) {
	if strings.TrimSpace(content) == "" {
		l.log.Debug("Skipping empty source", zap.String("resource", resourcePath))
		done(&Result{Content: []byte(content)}, nil)
		return
	}

	so := l.sassOptions(content, resourcePath, opts)
	imp := newImporter(l.resolver, resourcePath, opts, l.log)
	so.AsyncImporter = imp.importAsync

	l.renderer.Render(so, func(res *sass.Result, serr *sass.Error) {
		if serr != nil {
			FormatError(serr, resourcePath)
			done(nil, serr)
			return
		}
		done(l.reshape(res, resourcePath), nil)
	})
}

func (l *Loader) sassOptions(content, resourcePath string, opts Options) sass.Options {
	style := opts.OutputStyle
	if style == "" {
		if l.Minimize {
			style = "compressed"
		} else {
			style = "nested"
		}
	}
	return sass.Options{
		Data:           content,
		IndentedSyntax: opts.IndentedSyntax,
		OutputStyle:    style,
		Precision:      opts.Precision,
		SourceMap:      opts.SourceMap,
		OutFile:        resourcePath,
	}
}

func (l *Loader) reshape(res *sass.Result, resourcePath string) *Result {
	return &Result{
		Content:   res.CSS,
		SourceMap: reshapeSourceMap(res.Map, resourcePath, l.OutputDir, l.log),
	}
}
