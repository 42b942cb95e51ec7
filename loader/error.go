package loader

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Tol1/sass-loader/sass"
)

// currentDirHint matches the working-directory note some engines append to
// import failures. It is misleading once the file path has been corrected.
var currentDirHint = regexp.MustCompile(`\s*Current dir:[^\n]*`)

// FormatError rewrites a compile error in place into the form the host's
// error reporter should show a user: corrected file path, a source excerpt
// with a caret under the offending column, capitalized message text and a
// location trailer. The internal call stack is marked as noise.
func FormatError(serr *sass.Error, resourcePath string) {
	if serr.File == "" || serr.File == sass.Stdin {
		serr.File = resourcePath
	}

	msg := currentDirHint.ReplaceAllString(serr.Message, "")
	serr.Message = fileExcerpt(serr) + upperFirst(msg) + "\n" +
		fmt.Sprintf("      in %s (line %d, column %d)", serr.File, serr.Line, serr.Column)
	serr.HideStack = true
}

// fileExcerpt renders the offending line with a caret under the reported
// column. Any trouble reading the file yields an empty excerpt, never a new
// error.
func fileExcerpt(serr *sass.Error) string {
	data, err := os.ReadFile(serr.File)
	if err != nil {
		return ""
	}
	lines := strings.Split(string(data), "\n")
	if serr.Line < 1 || serr.Line > len(lines) {
		return ""
	}
	column := serr.Column
	if column < 1 {
		column = 1
	}
	return lines[serr.Line-1] + "\n" + strings.Repeat(" ", column-1) + "^\n"
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
