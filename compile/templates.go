package compile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"github.com/Tol1/sass-loader/config"
	"github.com/Tol1/sass-loader/state"
)

// Values is a struct that holds variables we make available for template
// expansion
type Values struct {
	Context    string
	Name       string // source base name without extension
	SourceFile string // source path as given on the command line
	Style      string // effective output style
	Minimized  bool
}

func expandTemplate(name config.TemplateFieldName, field, src, style string, env *state.LocalEnv) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Name:       strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		SourceFile: src,
		Style:      style,
		Minimized:  env.Cfg.Loader.Minimize,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
