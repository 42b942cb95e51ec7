package sass

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Engine is the embedded reference renderer. It understands a subset of SCSS
// sufficient for build pipelines: plain CSS passes through token by token,
// @import statements are routed through the configured importer and spliced
// in place. It exists so the loader and the CLI can run without native
// compiler bindings; anything implementing Renderer can be used instead.
type Engine struct {
	log *zap.Logger
}

// NewEngine creates a new render engine.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log.Named("sass-engine")}
}

// RenderSync compiles opts.Data on the calling goroutine using the blocking
// importer.
func (e *Engine) RenderSync(opts Options) (*Result, *Error) {
	return e.render(opts, false)
}

// Render compiles opts.Data without blocking the caller and delivers the
// outcome through done exactly once. The non-blocking importer is preferred
// when both hooks are set.
func (e *Engine) Render(opts Options, done func(*Result, *Error)) {
	go func() {
		done(e.render(opts, true))
	}()
}

type compilation struct {
	opts  Options
	async bool

	out      strings.Builder
	sources  []string
	included []string
	stack    []string // files currently being expanded, guards import loops
}

func (e *Engine) render(opts Options, async bool) (*Result, *Error) {
	root := opts.File
	if root == "" {
		root = Stdin
	}

	c := &compilation{opts: opts, async: async}
	c.sources = append(c.sources, root)
	c.stack = append(c.stack, root)

	if serr := e.compileSource(c, opts.Data, root, opts.IndentedSyntax); serr != nil {
		e.log.Debug("Compilation failed",
			zap.String("file", serr.File), zap.Int("line", serr.Line), zap.Int("column", serr.Column))
		return nil, serr
	}

	text := c.out.String()
	switch opts.OutputStyle {
	case "compressed":
		text = compress(text)
	case "compact":
		text = compact(text)
	}

	res := &Result{CSS: []byte(text), IncludedFiles: c.included}
	if opts.SourceMap {
		res.Map = buildSourceMap(opts.OutFile, c.sources)
	}
	e.log.Debug("Compilation succeeded",
		zap.String("file", root), zap.Int("bytes", len(res.CSS)), zap.Int("includes", len(c.included)))
	return res, nil
}

func (e *Engine) compileSource(c *compilation, src, file string, indented bool) *Error {
	if indented {
		return e.compileIndented(c, src, file)
	}
	return e.compileSCSS(c, src, file)
}

// compileSCSS copies the token stream verbatim and intercepts @import
// statements. Brace balance is tracked so an unterminated block surfaces as
// a positioned compile error instead of silently truncated output.
func (e *Engine) compileSCSS(c *compilation, src, file string) *Error {
	input := parse.NewInputString(src)
	lexer := css.NewLexer(input)

	var braces []int // offsets of currently open blocks
	for {
		off := input.Offset()
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			if err := lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return compileError(src, file, off, "%s", err.Error())
			}
			if len(braces) > 0 {
				return compileError(src, file, braces[len(braces)-1], `unclosed block: expected "}"`)
			}
			return nil
		case css.BadStringToken, css.BadURLToken:
			return compileError(src, file, off, "invalid token %q", string(data))
		case css.LeftBraceToken:
			braces = append(braces, off)
			c.out.Write(data)
		case css.RightBraceToken:
			if len(braces) == 0 {
				return compileError(src, file, off, `unexpected "}"`)
			}
			braces = braces[:len(braces)-1]
			c.out.Write(data)
		case css.AtKeywordToken:
			if string(data) == "@import" {
				if serr := e.importStatement(c, lexer, src, file, off); serr != nil {
					return serr
				}
				continue
			}
			c.out.Write(data)
		default:
			c.out.Write(data)
		}
	}
}

// importStatement consumes tokens up to the terminating semicolon and either
// splices the imported content in place or, for plain CSS imports (url(...),
// remote references, media-qualified imports), reproduces the statement
// verbatim.
func (e *Engine) importStatement(c *compilation, lexer *css.Lexer, src, file string, off int) *Error {
	type token struct {
		tt   css.TokenType
		data []byte
	}

	var tokens []token
	for {
		tt, data := lexer.Next()
		if tt == css.SemicolonToken || tt == css.ErrorToken {
			break
		}
		tokens = append(tokens, token{tt, data})
	}

	var urls []string
	splice := true
	for _, t := range tokens {
		switch t.tt {
		case css.WhitespaceToken, css.CommentToken, css.CommaToken:
		case css.StringToken:
			urls = append(urls, unquote(string(t.data)))
		default:
			// url(...) or trailing media query, not ours to resolve
			splice = false
		}
	}
	for _, u := range urls {
		if isRemote(u) {
			splice = false
		}
	}

	if !splice || len(urls) == 0 {
		c.out.WriteString("@import")
		for _, t := range tokens {
			c.out.Write(t.data)
		}
		c.out.WriteByte(';')
		return nil
	}

	for _, u := range urls {
		if serr := e.importOne(c, u, src, file, off); serr != nil {
			return serr
		}
	}
	return nil
}

func (e *Engine) importOne(c *compilation, url, src, file string, off int) *Error {
	imp := c.resolveImport(url, file)

	if imp.Inline() {
		e.log.Debug("Inlining import", zap.String("url", url), zap.String("from", file))
		c.sources = append(c.sources, url)
		return e.compileSource(c, imp.Contents(), url, false)
	}

	path := imp.File()
	if slices.Contains(c.stack, path) {
		return compileError(src, file, off, "import loop detected: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// Deliberately shaped like the message native engines emit when
		// an import cannot be read from disk.
		cwd, _ := os.Getwd()
		return compileError(src, file, off, "File to import not found or unreadable: %s.\nCurrent dir: %s", url, cwd)
	}

	e.log.Debug("Expanding import", zap.String("url", url), zap.String("path", path))
	c.included = append(c.included, path)
	c.sources = append(c.sources, path)
	c.stack = append(c.stack, path)
	serr := e.compileSource(c, string(data), path, strings.HasSuffix(path, ".sass"))
	c.stack = c.stack[:len(c.stack)-1]
	return serr
}

// compileIndented handles the indented dialect line by line. Only @import
// lines are interpreted, everything else passes through.
func (e *Engine) compileIndented(c *compilation, src, file string) *Error {
	offset := 0
	for line := range strings.SplitSeq(src, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "@import "); ok {
			url := strings.Trim(strings.TrimSpace(rest), `"'`)
			if url != "" && !isRemote(url) && !strings.HasPrefix(url, "url(") {
				if serr := e.importOne(c, url, src, file, offset); serr != nil {
					return serr
				}
				offset += len(line) + 1
				continue
			}
		}
		c.out.WriteString(line)
		c.out.WriteByte('\n')
		offset += len(line) + 1
	}
	return nil
}

func (c *compilation) resolveImport(url, prev string) Import {
	if c.async && c.opts.AsyncImporter != nil {
		ch := make(chan Import, 1)
		c.opts.AsyncImporter(url, prev, func(im Import) { ch <- im })
		return <-ch
	}
	if c.opts.Importer != nil {
		return c.opts.Importer(url, prev)
	}
	if prev != Stdin {
		return FileImport(filepath.Join(filepath.Dir(prev), url))
	}
	return FileImport(url)
}

func compileError(src, file string, offset int, format string, args ...any) *Error {
	line, column, _ := parse.NewError(strings.NewReader(src), offset, format, args...).Position()
	return &Error{
		Status:  1,
		Message: fmt.Sprintf(format, args...),
		File:    file,
		Line:    line,
		Column:  column,
	}
}

func buildSourceMap(outFile string, sources []string) []byte {
	m := struct {
		Version  int      `json:"version"`
		File     string   `json:"file"`
		Sources  []string `json:"sources"`
		Names    []string `json:"names"`
		Mappings string   `json:"mappings"`
	}{Version: 3, File: outFile, Sources: sources, Names: []string{}}
	data, err := json.Marshal(m)
	if err != nil {
		// struct of plain strings, cannot happen
		return nil
	}
	return data
}

// compress produces the compressed output style: comments dropped,
// whitespace reduced to what separates adjacent words.
func compress(src string) string {
	input := parse.NewInputString(src)
	lexer := css.NewLexer(input)

	var b strings.Builder
	pending := false
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return strings.TrimSpace(b.String())
		case css.CommentToken:
			continue
		case css.WhitespaceToken:
			pending = b.Len() > 0
			continue
		}
		if pending && needsSpace(lastByte(&b), data[0]) {
			b.WriteByte(' ')
		}
		pending = false
		b.Write(data)
	}
}

// compact keeps one rule per line: whitespace runs collapse to a single
// space and every closing brace ends the line.
func compact(src string) string {
	input := parse.NewInputString(src)
	lexer := css.NewLexer(input)

	var b strings.Builder
	pending := false
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return strings.TrimSpace(b.String()) + "\n"
		case css.CommentToken:
			continue
		case css.WhitespaceToken:
			pending = b.Len() > 0 && lastByte(&b) != '\n'
			continue
		case css.RightBraceToken:
			if pending {
				b.WriteByte(' ')
				pending = false
			}
			b.Write(data)
			b.WriteByte('\n')
			continue
		}
		if pending {
			b.WriteByte(' ')
		}
		pending = false
		b.Write(data)
	}
}

const syntaxDelims = "{}();:,>+~"

func needsSpace(prev, next byte) bool {
	return !strings.ContainsRune(syntaxDelims, rune(prev)) && !strings.ContainsRune(syntaxDelims, rune(next))
}

func lastByte(b *strings.Builder) byte {
	s := b.String()
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

func isRemote(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "//")
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
