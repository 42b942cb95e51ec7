package loader

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Tol1/sass-loader/resolve"
	"github.com/Tol1/sass-loader/sass"
)

// importer adapts the compiler's importer calling convention to the
// resolver bridge. The blocking and non-blocking entry points are distinct,
// explicitly typed functions; the loader registers the one matching the
// invocation's own mode.
type importer struct {
	resolver     resolve.Resolver
	resourcePath string
	defaultExt   string
	root         string
	log          *zap.Logger
}

func newImporter(resolver resolve.Resolver, resourcePath string, opts Options, log *zap.Logger) *importer {
	ext := ".scss"
	if opts.IndentedSyntax {
		ext = ".sass"
	}
	return &importer{
		resolver:     resolver,
		resourcePath: resourcePath,
		defaultExt:   ext,
		root:         opts.Root,
		log:          log,
	}
}

func (im *importer) importSync(url, prev string) sass.Import {
	contextDir, request := im.normalize(url, prev)
	return resolve.Sync(im.resolver, contextDir, request, im.log)
}

func (im *importer) importAsync(url, prev string, done func(sass.Import)) {
	contextDir, request := im.normalize(url, prev)
	resolve.Async(im.resolver, contextDir, request, im.log, done)
}

var styleExts = []string{".scss", ".sass", ".css"}

func hasStyleExt(url string) bool {
	for _, ext := range styleExts {
		if strings.HasSuffix(url, ext) {
			return true
		}
	}
	return false
}

// normalize maps the compiler's view of an import site onto a resolver
// request: the root-document sentinel becomes the initiating resource, bare
// urls inherit an extension from their context (falling back to the dialect
// default), and absolute urls are re-rooted under the configured root.
func (im *importer) normalize(url, prev string) (contextDir, request string) {
	if prev == sass.Stdin || prev == "" {
		prev = im.resourcePath
	}
	contextDir = filepath.Dir(prev)

	if !hasStyleExt(url) {
		ext := filepath.Ext(prev)
		if ext == "" {
			ext = im.defaultExt
		}
		url += ext
	}

	if strings.HasPrefix(url, "/") && im.root != "" {
		url = filepath.Join(im.root, url)
	}
	return contextDir, url
}
