package sass_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Tol1/sass-loader/sass"
)

func TestEngine_PassthroughCSS(t *testing.T) {
	e := sass.NewEngine(nil)

	src := "a {\n  color: red;\n}\n"
	res, serr := e.RenderSync(sass.Options{Data: src})
	if serr != nil {
		t.Fatalf("unexpected error: %v", serr)
	}
	if string(res.CSS) != src {
		t.Errorf("expected output to match input,\ngot:  %q\nwant: %q", res.CSS, src)
	}
}

func TestEngine_InlineImport(t *testing.T) {
	e := sass.NewEngine(nil)

	var seenURL, seenPrev string
	opts := sass.Options{
		Data: `@import "colors";` + "\nb { color: blue; }\n",
		Importer: func(url, prev string) sass.Import {
			seenURL, seenPrev = url, prev
			return sass.ContentsImport("a { color: red; }\n")
		},
	}

	res, serr := e.RenderSync(opts)
	if serr != nil {
		t.Fatalf("unexpected error: %v", serr)
	}
	if seenURL != "colors" {
		t.Errorf("importer url = %q, want %q", seenURL, "colors")
	}
	if seenPrev != sass.Stdin {
		t.Errorf("importer prev = %q, want %q", seenPrev, sass.Stdin)
	}
	out := string(res.CSS)
	if !strings.Contains(out, "color: red") || !strings.Contains(out, "color: blue") {
		t.Errorf("imported content not spliced into output: %q", out)
	}
	if strings.Contains(out, "@import") {
		t.Errorf("resolved @import should not survive in output: %q", out)
	}
}

func TestEngine_FileImport(t *testing.T) {
	dir := t.TempDir()
	imported := filepath.Join(dir, "_part.scss")
	if err := os.WriteFile(imported, []byte("h1 { font-weight: bold; }\n"), 0644); err != nil {
		t.Fatal(err)
	}

	e := sass.NewEngine(nil)
	opts := sass.Options{
		Data: `@import "part";`,
		Importer: func(url, prev string) sass.Import {
			return sass.FileImport(imported)
		},
	}

	res, serr := e.RenderSync(opts)
	if serr != nil {
		t.Fatalf("unexpected error: %v", serr)
	}
	if !strings.Contains(string(res.CSS), "font-weight: bold") {
		t.Errorf("imported file content missing from output: %q", res.CSS)
	}
	if len(res.IncludedFiles) != 1 || res.IncludedFiles[0] != imported {
		t.Errorf("IncludedFiles = %v, want [%s]", res.IncludedFiles, imported)
	}
}

func TestEngine_MissingImport(t *testing.T) {
	e := sass.NewEngine(nil)
	opts := sass.Options{
		Data: "b { color: blue; }\n" + `@import "nope";`,
		Importer: func(url, prev string) sass.Import {
			return sass.FileImport("/does/not/exist/nope.scss")
		},
	}

	res, serr := e.RenderSync(opts)
	if serr == nil {
		t.Fatalf("expected error, got result %q", res.CSS)
	}
	if !strings.Contains(serr.Message, "File to import not found or unreadable: nope") {
		t.Errorf("unexpected message: %q", serr.Message)
	}
	if serr.File != sass.Stdin {
		t.Errorf("error file = %q, want %q", serr.File, sass.Stdin)
	}
	if serr.Line != 2 {
		t.Errorf("error line = %d, want 2", serr.Line)
	}
	if serr.Status != 1 {
		t.Errorf("error status = %d, want 1", serr.Status)
	}
}

func TestEngine_RemoteAndURLImportsPassThrough(t *testing.T) {
	e := sass.NewEngine(nil)
	src := `@import url("print.css");` + "\n" + `@import "https://example.com/site.css";` + "\n"
	opts := sass.Options{
		Data: src,
		Importer: func(url, prev string) sass.Import {
			t.Fatalf("importer must not be called for %q", url)
			return sass.Import{}
		},
	}

	res, serr := e.RenderSync(opts)
	if serr != nil {
		t.Fatalf("unexpected error: %v", serr)
	}
	out := string(res.CSS)
	if !strings.Contains(out, `url("print.css")`) || !strings.Contains(out, "https://example.com/site.css") {
		t.Errorf("plain CSS imports must survive verbatim: %q", out)
	}
}

func TestEngine_IndentedImport(t *testing.T) {
	dir := t.TempDir()
	imported := filepath.Join(dir, "_palette.sass")
	if err := os.WriteFile(imported, []byte("a\n  color: red\n"), 0644); err != nil {
		t.Fatal(err)
	}

	e := sass.NewEngine(nil)
	var seenURL, seenPrev string
	opts := sass.Options{
		Data:           "@import palette\nb\n  top: 0\n",
		IndentedSyntax: true,
		Importer: func(url, prev string) sass.Import {
			seenURL, seenPrev = url, prev
			return sass.FileImport(imported)
		},
	}

	res, serr := e.RenderSync(opts)
	if serr != nil {
		t.Fatalf("unexpected error: %v", serr)
	}
	if seenURL != "palette" {
		t.Errorf("importer url = %q, want %q", seenURL, "palette")
	}
	if seenPrev != sass.Stdin {
		t.Errorf("importer prev = %q, want %q", seenPrev, sass.Stdin)
	}
	out := string(res.CSS)
	if !strings.Contains(out, "color: red") {
		t.Errorf("imported content not spliced into output: %q", out)
	}
	if !strings.Contains(out, "b\n  top: 0\n") {
		t.Errorf("non-import lines must pass through verbatim: %q", out)
	}
	if strings.Contains(out, "@import") {
		t.Errorf("resolved @import should not survive in output: %q", out)
	}
	if len(res.IncludedFiles) != 1 || res.IncludedFiles[0] != imported {
		t.Errorf("IncludedFiles = %v, want [%s]", res.IncludedFiles, imported)
	}
}

func TestEngine_IndentedRemoteImportsPassThrough(t *testing.T) {
	e := sass.NewEngine(nil)
	src := "@import url(print.css)\n@import \"https://example.com/site.css\"\n"
	opts := sass.Options{
		Data:           src,
		IndentedSyntax: true,
		Importer: func(url, prev string) sass.Import {
			t.Fatalf("importer must not be called for %q", url)
			return sass.Import{}
		},
	}

	res, serr := e.RenderSync(opts)
	if serr != nil {
		t.Fatalf("unexpected error: %v", serr)
	}
	out := string(res.CSS)
	if !strings.Contains(out, "@import url(print.css)") || !strings.Contains(out, `@import "https://example.com/site.css"`) {
		t.Errorf("plain CSS imports must survive verbatim: %q", out)
	}
}

func TestEngine_UnclosedBlock(t *testing.T) {
	e := sass.NewEngine(nil)

	_, serr := e.RenderSync(sass.Options{Data: "a { color: red;\n"})
	if serr == nil {
		t.Fatal("expected error for unclosed block")
	}
	if serr.Line != 1 {
		t.Errorf("error line = %d, want 1", serr.Line)
	}
}

func TestEngine_CompressedStyle(t *testing.T) {
	e := sass.NewEngine(nil)

	src := "/* banner */\na {\n  color: red;\n  border: 1px solid black;\n}\n"
	res, serr := e.RenderSync(sass.Options{Data: src, OutputStyle: "compressed"})
	if serr != nil {
		t.Fatalf("unexpected error: %v", serr)
	}
	out := string(res.CSS)
	if strings.Contains(out, "banner") {
		t.Errorf("comments must be dropped: %q", out)
	}
	if strings.Contains(out, "\n") {
		t.Errorf("compressed output must be a single line: %q", out)
	}
	if !strings.Contains(out, "1px solid black") {
		t.Errorf("word separation lost: %q", out)
	}
}

func TestEngine_SourceMapSources(t *testing.T) {
	dir := t.TempDir()
	imported := filepath.Join(dir, "base.scss")
	if err := os.WriteFile(imported, []byte("p { margin: 0; }\n"), 0644); err != nil {
		t.Fatal(err)
	}

	e := sass.NewEngine(nil)
	opts := sass.Options{
		Data:      `@import "base";`,
		SourceMap: true,
		OutFile:   "out.css",
		Importer: func(url, prev string) sass.Import {
			return sass.FileImport(imported)
		},
	}

	res, serr := e.RenderSync(opts)
	if serr != nil {
		t.Fatalf("unexpected error: %v", serr)
	}
	var m struct {
		Version int      `json:"version"`
		File    string   `json:"file"`
		Sources []string `json:"sources"`
	}
	if err := json.Unmarshal(res.Map, &m); err != nil {
		t.Fatalf("invalid source map JSON: %v", err)
	}
	if m.Version != 3 {
		t.Errorf("map version = %d, want 3", m.Version)
	}
	if len(m.Sources) != 2 || m.Sources[0] != sass.Stdin || m.Sources[1] != imported {
		t.Errorf("map sources = %v", m.Sources)
	}
}

func TestEngine_AsyncRender(t *testing.T) {
	e := sass.NewEngine(nil)

	type outcome struct {
		res  *sass.Result
		serr *sass.Error
	}
	ch := make(chan outcome, 1)

	opts := sass.Options{
		Data: `@import "part";` + "\n",
		AsyncImporter: func(url, prev string, done func(sass.Import)) {
			go done(sass.ContentsImport("i { font-style: italic; }\n"))
		},
	}
	e.Render(opts, func(res *sass.Result, serr *sass.Error) {
		ch <- outcome{res, serr}
	})

	o := <-ch
	if o.serr != nil {
		t.Fatalf("unexpected error: %v", o.serr)
	}
	if !strings.Contains(string(o.res.CSS), "font-style: italic") {
		t.Errorf("async import not spliced: %q", o.res.CSS)
	}
}
