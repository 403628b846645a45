package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/alizademhdi/C-minus-compiler/pkg/config"
	"github.com/alizademhdi/C-minus-compiler/pkg/diag"
	"github.com/alizademhdi/C-minus-compiler/pkg/token"
)

type lexed struct {
	Kind   token.Kind
	Lexeme string
	Line   int
}

func scanAll(t *testing.T, src string, cfg *config.Config) ([]lexed, *diag.List) {
	t.Helper()
	var diags diag.List
	l := NewLexer([]rune(src), 0, cfg, &diags)
	var out []lexed
	for i := 0; i < 1000; i++ {
		tok := l.Next()
		if tok.IsTrivia() {
			continue
		}
		out = append(out, lexed{tok.Kind, tok.Lexeme, tok.Line})
		if tok.Kind == token.EOF {
			return out, &diags
		}
	}
	t.Fatal("lexer did not reach end of input")
	return nil, nil
}

func TestTokens(t *testing.T) {
	src := "int x;\nvoid main(void) {\n  x = a[2] == 10 < 3;\n  output(x);\n}"
	got, diags := scanAll(t, src, config.NewConfig())
	require.Empty(t, diags.All())

	want := []lexed{
		{token.KEYWORD, "int", 1}, {token.ID, "x", 1}, {token.SYMBOL, ";", 1},
		{token.KEYWORD, "void", 2}, {token.ID, "main", 2}, {token.SYMBOL, "(", 2},
		{token.KEYWORD, "void", 2}, {token.SYMBOL, ")", 2}, {token.SYMBOL, "{", 2},
		{token.ID, "x", 3}, {token.SYMBOL, "=", 3}, {token.ID, "a", 3}, {token.SYMBOL, "[", 3},
		{token.NUM, "2", 3}, {token.SYMBOL, "]", 3}, {token.SYMBOL, "==", 3}, {token.NUM, "10", 3},
		{token.SYMBOL, "<", 3}, {token.NUM, "3", 3}, {token.SYMBOL, ";", 3},
		{token.KEYWORD, "output", 4}, {token.SYMBOL, "(", 4}, {token.ID, "x", 4},
		{token.SYMBOL, ")", 4}, {token.SYMBOL, ";", 4},
		{token.SYMBOL, "}", 5}, {token.EOF, "", 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestTriviaTokens(t *testing.T) {
	var diags diag.List
	l := NewLexer([]rune("a /* two\nlines */ // tail\nb"), 0, config.NewConfig(), &diags)
	var kinds []token.Kind
	for tok := l.Next(); tok.Kind != token.EOF; tok = l.Next() {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []token.Kind{
		token.ID, token.WHITESPACE, token.COMMENT, token.WHITESPACE, token.COMMENT, token.WHITESPACE, token.ID,
	}, kinds)
}

func TestLexicalErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		diags []string
		ids   int
	}{
		{"invalid input", "a @ b", []string{"#1 : lexical error , (@, Invalid input)"}, 2},
		{"invalid number", "x = 12ab;", []string{"#1 : lexical error , (12ab, Invalid number)"}, 1},
		{"unmatched comment", "x */ y", []string{"#1 : lexical error , (*/, Unmatched comment)"}, 2},
		{"unclosed comment", "x\n/* never closed", []string{"#2 : lexical error , (/* neve..., Unclosed comment)"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diags := scanAll(t, tt.src, config.NewConfig())
			require.Equal(t, tt.diags, diags.Lines(diag.Lexical))
			ids := 0
			for _, tok := range got {
				if tok.Kind == token.ID {
					ids++
				}
			}
			require.Equal(t, tt.ids, ids)
		})
	}
}

func TestFeatureToggles(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatOutput, false)
	cfg.SetFeature(config.FeatLineComments, false)

	got, _ := scanAll(t, "output // x", cfg)
	want := []lexed{
		{token.ID, "output", 1}, {token.SYMBOL, "/", 1}, {token.SYMBOL, "/", 1},
		{token.ID, "x", 1}, {token.EOF, "", 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token stream mismatch (-want +got):\n%s", diff)
	}
}
