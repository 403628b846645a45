package diag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListOrderAndReport(t *testing.T) {
	var l List
	require.Equal(t, "There is no syntax error.\n", l.Report(Syntax, "There is no syntax error."))

	l.Syntax(3, "illegal %s", "else")
	l.Semantic(4, "'%s' is not defined", "y")
	l.Lexical(5, "12ab", "Invalid number")
	l.Syntax(7, "missing %s", "expression")
	l.Warn("shadow", 8, 2, "'%s' shadows a global", "x")

	require.Equal(t, 5, len(l.All()))
	require.Equal(t, 2, l.Count(Syntax))
	require.True(t, l.Has(Lexical))
	require.False(t, New().Has(Semantic))

	require.Equal(t, []string{
		"#3 : syntax error , illegal else",
		"#7 : syntax error , missing expression",
	}, l.Lines(Syntax))
	require.Equal(t, "#4 : semantic error , 'y' is not defined\n", l.Report(Semantic, "The input program is semantically correct."))
	require.Equal(t, "#5 : lexical error , (12ab, Invalid number)", l.Of(Lexical)[0].String())

	w := l.Of(Warning)[0]
	require.Equal(t, "shadow", w.Flag)
	require.Equal(t, 2, w.Column)
}

func TestAllReturnsCopy(t *testing.T) {
	var l List
	l.Syntax(1, "Unexpected EOF")
	all := l.All()
	all[0].Message = "changed"
	require.Equal(t, "Unexpected EOF", l.All()[0].Message)
}
