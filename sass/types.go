// Package sass defines the compiler boundary: rendering options, results,
// errors and the importer calling convention. The loader only depends on the
// Renderer interface, the embedded Engine is one implementation of it.
package sass

// Stdin is the file name the compiler reports for the root document when it
// was passed as text rather than read from a file.
const Stdin = "stdin"

// Import is the result of resolving a single @import reference. Exactly one
// of the two variants is set: inline content to be embedded directly, or a
// file path left for the compiler to read.
type Import struct {
	file     string
	contents string
	inline   bool
}

// FileImport returns an Import referencing a file by path. The compiler is
// expected to read it itself.
func FileImport(path string) Import {
	return Import{file: path}
}

// ContentsImport returns an Import carrying inline stylesheet text.
func ContentsImport(text string) Import {
	return Import{contents: text, inline: true}
}

// Inline reports whether the import carries inline content.
func (im Import) Inline() bool { return im.inline }

// File returns the referenced path. Empty for inline imports.
func (im Import) File() string { return im.file }

// Contents returns the inline stylesheet text. Empty for file references.
func (im Import) Contents() string { return im.contents }

// ImporterFunc is the blocking importer hook. It is called for every @import
// the compiler encounters and must always produce an Import - the protocol
// has no error channel.
type ImporterFunc func(url, prev string) Import

// AsyncImporterFunc is the non-blocking importer hook. The done continuation
// must be invoked exactly once with the final Import.
type AsyncImporterFunc func(url, prev string, done func(Import))

// Options control a single render invocation.
type Options struct {
	// Data is the source text of the root document.
	Data string
	// File is the path the root document came from, used in error
	// reporting. When empty errors reference Stdin.
	File string
	// IndentedSyntax selects the indented (.sass) dialect.
	IndentedSyntax bool
	// OutputStyle is one of nested, expanded, compact, compressed.
	// Unrecognized values fall back to nested.
	OutputStyle string
	// Precision is accepted for compatibility with other render engines
	// and passed through unused.
	Precision int
	// SourceMap requests source map generation.
	SourceMap bool
	// OutFile names the output the source map will describe.
	OutFile string
	// Importer resolves @import references in blocking mode.
	Importer ImporterFunc
	// AsyncImporter resolves @import references in non-blocking mode.
	// Render prefers it over Importer when both are set.
	AsyncImporter AsyncImporterFunc
}

// Result is a successful render outcome.
type Result struct {
	CSS []byte
	// Map is the raw source map JSON, empty when none was requested or
	// the map turned out trivial.
	Map []byte
	// IncludedFiles lists every file read while resolving imports.
	IncludedFiles []string
}

// Error describes a failed compilation.
type Error struct {
	Status  int
	Message string
	File    string
	Line    int
	Column  int
	// HideStack tells the host error reporter that the internal call
	// stack carries no useful information for the user.
	HideStack bool
}

func (e *Error) Error() string { return e.Message }

// Renderer is the contract the loader drives. Render delivers its outcome
// through the done callback exactly once, RenderSync returns it. Exactly one
// of Result and Error is non-nil.
type Renderer interface {
	Render(opts Options, done func(*Result, *Error))
	RenderSync(opts Options) (*Result, *Error)
}
