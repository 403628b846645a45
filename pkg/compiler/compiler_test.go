package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/alizademhdi/C-minus-compiler/pkg/config"
	"github.com/alizademhdi/C-minus-compiler/pkg/diag"
	"github.com/alizademhdi/C-minus-compiler/pkg/ir"
	"github.com/alizademhdi/C-minus-compiler/pkg/parser"
	"github.com/alizademhdi/C-minus-compiler/pkg/symtab"
)

func compile(t *testing.T, src string) *Result {
	t.Helper()
	res, err := Compile([]rune(src), 0, config.NewConfig(), nil)
	require.NoError(t, err)
	return res
}

func listing(r *Result) []string {
	var out []string
	for _, in := range r.Code.Instructions() {
		out = append(out, in.String())
	}
	return out
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		code     []string
		semantic []string
	}{
		{
			name: "straight line",
			src:  "void main(void) { int x; x = 1 + 2; }",
			code: []string{"ASSIGN #0 104", "ASSIGN #1 5000", "ASSIGN #2 5004", "ADD 5000 5004 5008", "ASSIGN 5008 104"},
		},
		{
			name: "while with break",
			src:  "void main(void) { int x; while (x < 10) { break; } }",
			code: []string{"ASSIGN #0 104", "ASSIGN #10 5000", "LT 104 5000 5004", "JPF 5004 6", "JP 6", "JP 1"},
		},
		{
			name: "switch chain",
			src:  "void main(void) { int x; switch (x) { case 1: x = 2; break; case 2: x = 3; default: x = 4; } }",
			code: []string{
				"ASSIGN #0 104",
				"EQ 104 #1 5000", "JPF 5000 5", "ASSIGN #2 104", "JP 9",
				"EQ 104 #2 5004", "JPF 5004 8", "ASSIGN #3 104",
				"ASSIGN #4 104",
			},
		},
		{
			name: "array store",
			src:  "void main(void) { int a[5]; a[2] = 7; }",
			code: []string{"ASSIGN #0 104", "MULT #2 #4 5000", "ADD #104 5000 5000", "ASSIGN #7 @5000"},
		},
		{
			name: "argument count mismatch",
			src:  "int f(int a, int b) { return a + b; }\nvoid main(void) { int x; x = f(1, 2, 3); output(x); }",
			code: []string{"ADD 104 108 5000", "ASSIGN #0 116", "ASSIGN 100 116", "PRINT 116"},
			semantic: []string{
				"#2 : semantic error , mismatch in numbers of arguments of 'f' : expected 2 , got 3",
			},
		},
		{
			name: "if without else",
			src:  "void main(void) { int x; if (x == 0) x = 1; endif output(x); }",
			code: []string{"ASSIGN #0 104", "ASSIGN #0 5000", "EQ 104 5000 5004", "JPF 5004 5", "ASSIGN #1 104", "PRINT 104"},
		},
		{
			name: "break outside loop and undefined name",
			src:  "void main(void) {\n  break;\n  y = 1;\n}",
			code: []string{"ASSIGN #1 5000"},
			semantic: []string{
				"#2 : semantic error , no 'while' or 'switch' found for 'break'",
				"#3 : semantic error , 'y' is not defined",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, tt.src)
			require.True(t, res.Accepted)
			require.Empty(t, res.Diags.Lines(diag.Syntax))
			if diff := cmp.Diff(tt.code, listing(res)); diff != "" {
				t.Errorf("listing mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.semantic, res.Diags.Lines(diag.Semantic)); diff != "" {
				t.Errorf("semantic errors mismatch (-want +got):\n%s", diff)
			}
			require.Empty(t, res.Code.Pending())
			require.Equal(t, len(tt.semantic) == 0, res.Generated())
		})
	}
}

func TestAddressesAreUnique(t *testing.T) {
	res := compile(t, "int g[3];\nint f(int a[], int n) { int i; i = a[n] * 2; return i; }\nvoid main(void) { int b; b = f(g, 1) / 2; }")
	require.Empty(t, res.Diags.All())

	seen := make(map[int]string)
	for _, sym := range res.Symbols.Symbols() {
		prev, dup := seen[sym.Address]
		require.False(t, dup, "%s and %s share address %d", prev, sym.Lexeme, sym.Address)
		seen[sym.Address] = sym.Lexeme
		require.Less(t, sym.Address, 5000)
	}
	for _, in := range res.Code.Instructions() {
		for _, a := range in.Args {
			if a.Mode == ir.ModeDirect && a.Value >= 5000 {
				_, clash := seen[a.Value]
				require.False(t, clash)
			}
		}
	}

	g, err := res.Symbols.Resolve("g")
	require.NoError(t, err)
	require.Equal(t, symtab.RoleArray, g.Role)
	require.Equal(t, 3, g.Size)
	f, err := res.Symbols.Resolve("f")
	require.NoError(t, err)
	require.Equal(t, symtab.RoleFunc, f.Role)
	require.Len(t, f.Params, 2)
	// g takes 100 and three more words; f follows.
	require.Equal(t, 116, f.Address)
}

func TestRecoveryKeepsGenerating(t *testing.T) {
	res := compile(t, "void main(void) { int a; a = 2 + ) 3; }")
	require.True(t, res.Accepted)
	require.False(t, res.Suspended)
	require.Equal(t, 4, res.Diags.Count(diag.Syntax))
	require.Equal(t, 3, res.Temps)
	require.Equal(t, []string{"ASSIGN #0 104", "ASSIGN #2 5000", "ASSIGN #3 5004", "ADD 5000 5004 5008", "ASSIGN 5008 104"}, listing(res))
	require.False(t, res.Generated())
}

func TestDesyncSuspendsGeneration(t *testing.T) {
	res := compile(t, "int x\nvoid main(void) { x = 1; }")
	require.True(t, res.Accepted)
	require.True(t, res.Suspended)
	require.Equal(t, []string{
		"#2 : syntax error , illegal void",
		"#2 : syntax error , discarded main from input",
		"#2 : syntax error , missing FUNC",
	}, res.Diags.Lines(diag.Syntax))
	require.Equal(t, []string{"ASSIGN #1 100"}, listing(res))
}

func TestUnexpectedEOF(t *testing.T) {
	res, err := Compile([]rune("void main(void) {\n  int x;\n"), 0, config.NewConfig(), nil)
	require.True(t, errors.Is(err, parser.ErrUnexpectedEOF), "got %v", err)
	require.False(t, res.Accepted)
	require.Equal(t, []string{
		"#3 : syntax error , illegal $",
		"#3 : syntax error , Unexpected EOF",
	}, res.Diags.Lines(diag.Syntax))
}

func TestDataRegion(t *testing.T) {
	res := compile(t, "void main(void) { int a[50]; int b[50]; int c[100]; a[49] = 1; c[99] = a[49]; output(c[99]); }")
	require.Empty(t, res.Diags.All())
	require.True(t, res.Generated())

	small := config.NewConfig()
	small.TempBase = 120
	tests := []struct {
		name     string
		src      string
		cfg      *config.Config
		semantic []string
	}{
		{
			name:     "array past the temporaries",
			src:      "int a[10];\nint b;",
			cfg:      small,
			semantic: []string{"#1 : semantic error , data region exhausted for 'a'", "#2 : semantic error , data region exhausted for 'b'"},
		},
		{
			name:     "size that wraps when scaled",
			src:      "int a[4611686018427387904];\nint b;",
			cfg:      config.NewConfig(),
			semantic: []string{"#1 : semantic error , data region exhausted for 'a'", "#2 : semantic error , data region exhausted for 'b'"},
		},
		{
			name:     "size that does not parse",
			src:      "int a[99999999999999999999];",
			cfg:      config.NewConfig(),
			semantic: []string{"#1 : semantic error , integer literal '99999999999999999999' is out of range"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compile([]rune(tt.src), 0, tt.cfg, nil)
			require.NoError(t, err)
			require.True(t, res.Accepted)
			require.Equal(t, tt.semantic, res.Diags.Lines(diag.Semantic))
			require.False(t, res.Generated())

			seen := map[int]string{}
			for _, sym := range res.Symbols.Symbols() {
				prev, dup := seen[sym.Address]
				require.False(t, dup, "%s and %s share address %d", prev, sym.Lexeme, sym.Address)
				seen[sym.Address] = sym.Lexeme
				require.GreaterOrEqual(t, sym.Address, 0)
			}
		})
	}
}

func TestInvalidLayout(t *testing.T) {
	cfg := config.NewConfig()
	cfg.TempBase = cfg.DataBase
	_, err := Compile([]rune("int a;"), 0, cfg, nil)
	require.Error(t, err)
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	res := compile(t, "void main(void) { int x; x = 3; output(x); }")
	require.NoError(t, res.WriteFiles(dir, ir.FormatTuple))

	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return string(data)
	}
	require.Equal(t, "There is no syntax error.\n", read(SyntaxErrorsFile))
	require.Equal(t, "There is no lexical error.\n", read(LexicalErrorsFile))
	require.Equal(t, "The input program is semantically correct.\n", read(SemanticErrorsFile))
	require.Equal(t, "0\t(ASSIGN, #0, 104, )\n1\t(ASSIGN, #3, 104, )\n2\t(PRINT, 104, , )\n", read(OutputFile))
	require.True(t, strings.HasPrefix(read(ParseTreeFile), "program\n├── declaration_list\n"))
	require.True(t, strings.HasSuffix(read(ParseTreeFile), "└── $\n"))

	bad := compile(t, "void main(void) { int x; x = 1 @ 2; y = 2; }")
	files, err := bad.Files(ir.FormatPlain)
	require.NoError(t, err)
	require.Equal(t, "#1 : lexical error , (@, Invalid input)\n", string(files[LexicalErrorsFile]))
	require.Equal(t, "The code has not been generated.\n", string(files[OutputFile]))
}

func TestFixtures(t *testing.T) {
	tests := []struct {
		file      string
		generated bool
		syntax    bool
		lexical   []string
		semantic  []string
	}{
		{file: "straight_line.cm", generated: true},
		{file: "arrays.cm", generated: true},
		{file: "switch.cm", generated: true},
		{file: "while_break.cm", generated: true},
		{
			file:     "arity.cm",
			semantic: []string{"#7 : semantic error , mismatch in numbers of arguments of 'f' : expected 2 , got 3"},
		},
		{
			file:   "lexical.cm",
			syntax: true,
			lexical: []string{
				"#3 : lexical error , (@, Invalid input)",
				"#4 : lexical error , (/* unte..., Unclosed comment)",
			},
		},
		{file: "recovery.cm", syntax: true},
		{file: "unexpected_eof.cm", syntax: true},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join("..", "..", "tests", tt.file))
			require.NoError(t, err)
			res, err := Compile([]rune(string(src)), 0, config.NewConfig(), nil)
			if err != nil {
				require.True(t, errors.Is(err, parser.ErrUnexpectedEOF), "got %v", err)
			}
			require.NotNil(t, res)

			require.Equal(t, tt.syntax, res.Diags.Has(diag.Syntax), "syntax errors: %v", res.Diags.Lines(diag.Syntax))
			if diff := cmp.Diff(tt.lexical, res.Diags.Lines(diag.Lexical)); diff != "" {
				t.Errorf("lexical errors mismatch (-want +got):\n%s", diff)
			}
			if !tt.syntax {
				require.True(t, res.Accepted)
				if diff := cmp.Diff(tt.semantic, res.Diags.Lines(diag.Semantic)); diff != "" {
					t.Errorf("semantic errors mismatch (-want +got):\n%s", diff)
				}
			}
			require.Equal(t, tt.generated, res.Generated())

			files, err := res.Files(ir.FormatPlain)
			require.NoError(t, err)
			require.Len(t, files, 5)
			if !tt.generated {
				require.Equal(t, "The code has not been generated.\n", string(files[OutputFile]))
			} else {
				require.NotEqual(t, "The code has not been generated.\n", string(files[OutputFile]))
			}
		})
	}
}
