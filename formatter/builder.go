package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	"github.com/unix-beard/pgen/pattern"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	kindStyle    = color.New(color.FgYellow, color.Bold)
	nameStyle    = color.New(color.FgCyan, color.Bold)
	gutterStyle  = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
)

const diagnosticTemplate = `{{header .Kind .Name .Offset}}
{{- if ge .Offset 0 }}
{{snippet .Source}}
{{caretAndMessage .Offset .Message}}
{{- else }}
{{message .Message}}
{{- end }}
`

// Diagnostic is a compile failure of a single pattern, ready to be shown to
// a user or encoded as JSON.
type Diagnostic struct {
	Name    string `json:"name"`
	Source  string `json:"source"`
	Kind    string `json:"kind"`
	Offset  int    `json:"offset"`
	Message string `json:"message"`
}

// NewDiagnostic describes err, which occurred compiling src. Errors that
// are not *pattern.ParseError carry no offset.
func NewDiagnostic(name, src string, err error) Diagnostic {
	d := Diagnostic{
		Name:    name,
		Source:  src,
		Kind:    "error",
		Offset:  -1,
		Message: err.Error(),
	}

	var perr *pattern.ParseError
	if errors.As(err, &perr) {
		d.Kind = perr.Kind.String()
		d.Offset = perr.Pos
		d.Message = perr.Msg
	}
	return d
}

// FormatParseError renders err in a compiler-like layout with a caret under
// the offending character of src.
func FormatParseError(name, src string, err error) string {
	return NewDiagnostic(name, src, err).Format()
}

// Format renders the diagnostic.
func (d Diagnostic) Format() string {
	funcMap := template.FuncMap{
		"header":          header,
		"snippet":         snippet,
		"caretAndMessage": caretAndMessage,
		"message":         message,
	}

	tmpl := template.Must(template.New("diagnostic").Funcs(funcMap).Parse(diagnosticTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return fmt.Sprintf("Error formatting diagnostic: %v", err)
	}
	return buf.String()
}

// utils functions used in the text template

func header(kind string, name string, offset int) string {
	endString := errorStyle.Sprint("error: ")
	endString += kindStyle.Sprintf("%s\n", kind)
	endString += gutterStyle.Sprint(" --> ")
	if offset >= 0 {
		endString += nameStyle.Sprintf("%s:%d", name, offset)
	} else {
		endString += nameStyle.Sprint(name)
	}
	return endString
}

func snippet(src string) string {
	endString := gutterStyle.Sprint("  |\n")
	endString += gutterStyle.Sprint("  | ")
	endString += printable(src)
	return endString
}

func caretAndMessage(offset int, msg string) string {
	endString := gutterStyle.Sprint("  | ")
	endString += strings.Repeat(" ", offset)
	endString += messageStyle.Sprintf("^ %s", msg)
	return endString
}

func message(msg string) string {
	return gutterStyle.Sprint("  = ") + messageStyle.Sprint(msg)
}

// printable keeps the source on one line with one column per rune, so that
// rune offsets line up with the caret.
func printable(src string) string {
	var b strings.Builder
	for _, r := range src {
		if unicode.IsControl(r) {
			r = ' '
		}
		b.WriteRune(r)
	}
	return b.String()
}
