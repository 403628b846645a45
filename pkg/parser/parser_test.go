package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/alizademhdi/C-minus-compiler/pkg/ast"
	"github.com/alizademhdi/C-minus-compiler/pkg/config"
	"github.com/alizademhdi/C-minus-compiler/pkg/diag"
	"github.com/alizademhdi/C-minus-compiler/pkg/grammar"
	"github.com/alizademhdi/C-minus-compiler/pkg/lalr"
	"github.com/alizademhdi/C-minus-compiler/pkg/lexer"
	"github.com/alizademhdi/C-minus-compiler/pkg/token"
)

type reduction struct {
	P         grammar.Production
	Lookahead string
}

type recorder struct {
	seen []reduction
	fail grammar.Production
}

func (r *recorder) Reduce(p grammar.Production, lookahead token.Token) error {
	r.seen = append(r.seen, reduction{p, lookahead.Terminal()})
	if p == r.fail {
		return errors.New("action failed")
	}
	return nil
}

func parse(t *testing.T, src string, actions Actions) (*Result, *diag.List, error) {
	t.Helper()
	diags := diag.New()
	l := lexer.NewLexer([]rune(src), 0, config.NewConfig(), diags)
	p := NewParser(lalr.Default(), grammar.CMinus(), l, actions, diags)
	res, err := p.Parse()
	return res, diags, err
}

func TestParseTree(t *testing.T) {
	rec := &recorder{fail: grammar.NumProductions}
	res, diags, err := parse(t, "int x; /* trivia */\n", rec)
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.Empty(t, diags.All())

	want := `program
├── declaration_list
│   └── declaration
│       └── var_declaration
│           ├── type_specifier
│           │   ├── PTYPE
│           │   │   └── epsilon
│           │   └── (KEYWORD, int)
│           ├── PID
│           │   └── epsilon
│           ├── (ID, x)
│           ├── VAR_DEC
│           │   └── epsilon
│           └── (SYMBOL, ;)
└── $
`
	if diff := cmp.Diff(want, res.Tree.String()); diff != "" {
		t.Errorf("parse tree mismatch (-want +got):\n%s", diff)
	}

	wantReductions := []reduction{
		{grammar.MarkPType, "int"},
		{grammar.TypeInt, "ID"},
		{grammar.MarkPID, "ID"},
		{grammar.MarkVarDec, ";"},
		{grammar.VarDecl, "$"},
		{grammar.DeclVar, "$"},
		{grammar.DeclListOne, "$"},
		{grammar.Program, "$"},
	}
	if diff := cmp.Diff(wantReductions, rec.seen); diff != "" {
		t.Errorf("reductions mismatch (-want +got):\n%s", diff)
	}

	root := res.Tree.Node(res.Tree.Root)
	require.Equal(t, ast.Symbol, root.Type)
	require.Equal(t, ast.None, root.Parent)
	for _, c := range root.Children {
		require.Equal(t, res.Tree.Root, res.Tree.Node(c).Parent)
	}
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		accepted bool
		diags    []string
	}{
		{
			name:     "operator without operand",
			src:      "void main(void) { int a; a = 2 + ) 3; }\n",
			accepted: true,
			diags: []string{
				"#1 : syntax error , illegal )",
				"#1 : syntax error , discarded (SYMBOL, +) from stack",
				"#1 : syntax error , discarded P_OP from stack",
				"#1 : syntax error , missing addop",
			},
		},
		{
			name: "missing expression runs into end of input",
			src:  "void main(void) {\n  int x;\n  x = ;\n}\n",
			diags: []string{
				"#3 : syntax error , illegal ;",
				"#4 : syntax error , discarded } from input",
				"#5 : syntax error , Unexpected EOF",
			},
		},
		{
			name: "end of input is itself illegal",
			src:  "void main(void) {\n  int x;\n",
			diags: []string{
				"#3 : syntax error , illegal $",
				"#3 : syntax error , Unexpected EOF",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, diags, err := parse(t, tt.src, nil)
			require.Equal(t, tt.accepted, res.Accepted)
			if tt.accepted {
				require.NoError(t, err)
			} else {
				require.True(t, errors.Is(err, ErrUnexpectedEOF), "got %v", err)
				require.Equal(t, ast.None, res.Tree.Root)
			}
			if diff := cmp.Diff(tt.diags, diags.Lines(diag.Syntax)); diff != "" {
				t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMissingNodeHasNoChildren(t *testing.T) {
	res, _, err := parse(t, "void main(void) { int a; a = 2 + ) 3; }", nil)
	require.NoError(t, err)
	found := false
	for _, n := range res.Tree.Nodes {
		if n.Label == "addop" {
			found = true
			require.Empty(t, n.Children)
		}
	}
	require.True(t, found)
}

func TestActionErrorStopsParse(t *testing.T) {
	rec := &recorder{fail: grammar.MarkVarDec}
	res, _, err := parse(t, "int x;", rec)
	require.EqualError(t, err, "action failed")
	require.False(t, res.Accepted)
}

func TestMalformedTableFailsCleanly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, lalr.Default().Encode(&buf))
	var fingerprint string
	for _, line := range strings.Split(buf.String(), "\n") {
		if v, ok := strings.CutPrefix(line, "fingerprint: "); ok {
			fingerprint = v
		}
	}
	g := grammar.CMinus()

	_, err := lalr.Decode(strings.NewReader("fingerprint: "+fingerprint+"\nstates: []\n"), g)
	require.True(t, errors.Is(err, lalr.ErrMalformed), "got %v", err)

	// Reducing the type marker leaves state 0 without a goto on PTYPE.
	table, err := lalr.Decode(strings.NewReader("fingerprint: "+fingerprint+
		"\nstates:\n  - int: reduce_"+fmt.Sprint(int(grammar.MarkPType))+"\n    program: goto_1\n  - $: accept\n"), g)
	require.NoError(t, err)

	diags := diag.New()
	l := lexer.NewLexer([]rune("int x;"), 0, config.NewConfig(), diags)
	_, err = NewParser(table, g, l, nil, diags).Parse()
	require.True(t, errors.Is(err, lalr.ErrMalformed), "got %v", err)
}
