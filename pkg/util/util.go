package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/alizademhdi/C-minus-compiler/pkg/diag"
	"github.com/alizademhdi/C-minus-compiler/pkg/token"
)

// SourceFileRecord tracks the name and content of a single source file.
type SourceFileRecord struct {
	Name    string
	Content []rune
}

var sourceFiles []SourceFileRecord

// SetSourceFiles stores the source code for all input files for rich error messages
func SetSourceFiles(files []SourceFileRecord) {
	sourceFiles = files
}

type palette struct{ red, yellow, green, reset string }

func colors(stream *os.File) palette {
	if !term.IsTerminal(int(stream.Fd())) {
		return palette{}
	}
	return palette{"\033[31m", "\033[33m", "\033[32m", "\033[0m"}
}

func location(tok token.Token) string {
	name := "unknown"
	if tok.FileIndex >= 0 && tok.FileIndex < len(sourceFiles) {
		name = sourceFiles[tok.FileIndex].Name
	}
	if tok.Line == 0 {
		return name
	}
	return fmt.Sprintf("%s:%d:%d", name, tok.Line, tok.Column)
}

// sourceLine returns the text of a 1-based line.
func sourceLine(content []rune, line int) string {
	start := 0
	for i, r := range content {
		if line <= 1 {
			break
		}
		if r == '\n' {
			line--
			start = i + 1
		}
	}
	end := len(content)
	for i := start; i < len(content); i++ {
		if content[i] == '\n' {
			end = i
			break
		}
	}
	return string(content[start:end])
}

// printErrorLine prints the source line and a caret under the offending token.
func printErrorLine(w io.Writer, c palette, tok token.Token) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(sourceFiles) || tok.Line == 0 {
		return
	}
	fmt.Fprintf(w, "  %s\n", sourceLine(sourceFiles[tok.FileIndex].Content, tok.Line))
	if tok.Column < 1 {
		return
	}
	fmt.Fprintf(w, "  %s%s^", strings.Repeat(" ", tok.Column-1), c.green)
	if tok.Len > 1 {
		fmt.Fprint(w, strings.Repeat("~", tok.Len-1))
	}
	fmt.Fprintln(w, c.reset)
}

// Error prints a formatted error message and exits the program
func Error(tok token.Token, format string, args ...interface{}) {
	c := colors(os.Stderr)
	fmt.Fprintf(os.Stderr, "%s: %serror:%s ", location(tok), c.red, c.reset)
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	printErrorLine(os.Stderr, c, tok)
	os.Exit(1)
}

// Warn prints a warning diagnostic with its flag name and the source line.
func Warn(d diag.Diagnostic, fileIndex int) {
	c := colors(os.Stderr)
	tok := token.Token{FileIndex: fileIndex, Line: d.Line, Column: d.Column}
	fmt.Fprintf(os.Stderr, "%s: %swarning:%s %s [-W%s]\n", location(tok), c.yellow, c.reset, d.Message, d.Flag)
	printErrorLine(os.Stderr, c, tok)
}

// Info prints a progress line when verbose output is on.
func Info(verbose bool, format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "cminus: "+format+"\n", args...)
	}
}
