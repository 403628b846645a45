// Package diag collects the user-facing problems found during a compilation.
package diag

import (
	"fmt"
	"strings"
)

type Kind int

const (
	Lexical Kind = iota
	Syntax
	Semantic
	Warning
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntax:
		return "syntax error"
	case Semantic:
		return "semantic error"
	}
	return "warning"
}

type Diagnostic struct {
	Kind    Kind
	Line    int
	Column  int
	Message string
	Flag    string // warning name, warnings only
}

// String formats the diagnostic as "#line : kind , message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("#%d : %s , %s", d.Line, d.Kind, d.Message)
}

// List keeps diagnostics in the order they were recorded. The zero value is
// ready to use.
type List struct {
	items []Diagnostic
}

func New() *List { return &List{} }

func (l *List) Add(d Diagnostic) { l.items = append(l.items, d) }

func (l *List) Lexical(line int, lexeme, message string) {
	l.Add(Diagnostic{Kind: Lexical, Line: line, Message: fmt.Sprintf("(%s, %s)", lexeme, message)})
}

func (l *List) Syntax(line int, format string, args ...interface{}) {
	l.Add(Diagnostic{Kind: Syntax, Line: line, Message: fmt.Sprintf(format, args...)})
}

func (l *List) Semantic(line int, format string, args ...interface{}) {
	l.Add(Diagnostic{Kind: Semantic, Line: line, Message: fmt.Sprintf(format, args...)})
}

func (l *List) Warn(flag string, line, column int, format string, args ...interface{}) {
	l.Add(Diagnostic{Kind: Warning, Line: line, Column: column, Flag: flag, Message: fmt.Sprintf(format, args...)})
}

// All returns every diagnostic in the order it was recorded.
func (l *List) All() []Diagnostic {
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List) Of(kind Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range l.items {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

func (l *List) Count(kind Kind) int { return len(l.Of(kind)) }

func (l *List) Has(kind Kind) bool {
	for _, d := range l.items {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Lines renders the diagnostics of one kind, one per element.
func (l *List) Lines(kind Kind) []string {
	var out []string
	for _, d := range l.Of(kind) {
		out = append(out, d.String())
	}
	return out
}

// Report joins the diagnostics of one kind, or returns empty when there are none.
func (l *List) Report(kind Kind, empty string) string {
	lines := l.Lines(kind)
	if len(lines) == 0 {
		return empty + "\n"
	}
	return strings.Join(lines, "\n") + "\n"
}
