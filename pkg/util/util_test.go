package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alizademhdi/C-minus-compiler/pkg/token"
)

func TestSourceLine(t *testing.T) {
	content := []rune("int x;\nvoid main(void) {\n}\n")
	require.Equal(t, "int x;", sourceLine(content, 1))
	require.Equal(t, "void main(void) {", sourceLine(content, 2))
	require.Equal(t, "}", sourceLine(content, 3))
}

func TestPrintErrorLine(t *testing.T) {
	SetSourceFiles([]SourceFileRecord{{Name: "a.cm", Content: []rune("int x;\nx = 1 +;\n")}})
	defer SetSourceFiles(nil)

	var buf bytes.Buffer
	printErrorLine(&buf, palette{}, token.Token{Line: 2, Column: 7, Len: 1})
	require.Equal(t, "  x = 1 +;\n        ^\n", buf.String())

	require.Equal(t, "a.cm:2:7", location(token.Token{Line: 2, Column: 7}))
	require.Equal(t, "unknown", location(token.Token{FileIndex: 3}))
}
