package lalr

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/alizademhdi/C-minus-compiler/pkg/grammar"
)

func exprGrammar() *grammar.Grammar {
	return grammar.New([]grammar.Rule{
		{LHS: grammar.Start, RHS: []string{"e"}},
		{LHS: "e", RHS: []string{"e", "+", "t"}},
		{LHS: "e", RHS: []string{"t"}},
		{LHS: "t", RHS: []string{"NUM"}},
		{LHS: "t", RHS: []string{"(", "e", ")"}},
	})
}

// accepts runs the bare automaton over input and reports whether it reaches accept.
func accepts(t *testing.T, tbl *Table, g *grammar.Grammar, input ...string) bool {
	t.Helper()
	input = append(input, grammar.End)
	states := []int{0}
	for steps := 0; steps < 1000; steps++ {
		a, ok := tbl.Lookup(states[len(states)-1], input[0])
		if !ok {
			return false
		}
		switch a.Kind {
		case Shift:
			states = append(states, a.Target)
			input = input[1:]
		case Reduce:
			r := g.Rules[a.Target]
			states = states[:len(states)-len(r.RHS)]
			next, ok := tbl.Lookup(states[len(states)-1], r.LHS)
			require.True(t, ok, "missing goto on %s", r.LHS)
			require.Equal(t, Goto, next.Kind)
			states = append(states, next.Target)
		case Accept:
			return true
		default:
			t.Fatalf("unexpected action %v", a)
		}
	}
	t.Fatal("automaton did not terminate")
	return false
}

func TestBuildExpressionGrammar(t *testing.T) {
	g := exprGrammar()
	tbl, err := Build(g)
	require.NoError(t, err)
	require.Equal(t, g.Fingerprint(), tbl.Fingerprint)

	require.True(t, accepts(t, tbl, g, "NUM"))
	require.True(t, accepts(t, tbl, g, "NUM", "+", "(", "NUM", "+", "NUM", ")"))
	require.False(t, accepts(t, tbl, g, "NUM", "+"))
	require.False(t, accepts(t, tbl, g, "(", "NUM"))

	require.Equal(t, []string{grammar.End, ")", "+"}, tbl.Follow("e"))
	require.Equal(t, []string{"e", "t"}, tbl.Gotos(0))
}

func TestBuildConflict(t *testing.T) {
	g := grammar.New([]grammar.Rule{
		{LHS: grammar.Start, RHS: []string{"e"}},
		{LHS: "e", RHS: []string{"e", "+", "e"}},
		{LHS: "e", RHS: []string{"NUM"}},
	})
	_, err := Build(g)
	require.True(t, errors.Is(err, ErrConflict), "got %v", err)
	require.Contains(t, err.Error(), "on +")
}

func TestDefaultTable(t *testing.T) {
	tbl := Default()
	require.Same(t, tbl, Default())
	require.Equal(t, 146, tbl.NumStates())

	a, ok := tbl.Lookup(0, "void")
	require.True(t, ok)
	require.Equal(t, Shift, a.Kind)
	a, ok = tbl.Lookup(0, "int")
	require.True(t, ok)
	require.Equal(t, Action{Reduce, int(grammar.MarkPType)}, a)

	_, ok = tbl.Lookup(0, "ID")
	require.False(t, ok)
	_, ok = tbl.Lookup(-1, "int")
	require.False(t, ok)

	require.Equal(t, []string{"PTYPE", "declaration", "declaration_list", "fun_declaration", "program", "type_specifier", "var_declaration"}, tbl.Gotos(0))
	require.True(t, tbl.HasGoto(0))
	require.Equal(t, []string{"ID"}, tbl.Follow("type_specifier"))
	require.Equal(t, []string{"(", "ID", "NUM", "output"}, tbl.Follow("relop"))
	require.True(t, tbl.InFollow("program", grammar.End))
}

func TestEncodeDecode(t *testing.T) {
	g := exprGrammar()
	tbl, err := Build(g)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tbl.Encode(&buf))
	require.Contains(t, buf.String(), "grammar: c-minus")

	got, err := Decode(bytes.NewReader(buf.Bytes()), g)
	require.NoError(t, err)
	if diff := cmp.Diff(tbl, got, cmp.AllowUnexported(Table{})); diff != "" {
		t.Errorf("decoded table mismatch (-want +got):\n%s", diff)
	}

	_, err = Decode(bytes.NewReader(buf.Bytes()), grammar.CMinus())
	require.True(t, errors.Is(err, ErrStale), "got %v", err)
}

func TestDecodeMalformed(t *testing.T) {
	g := exprGrammar()
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "states: [unterminated"},
		{"bad fingerprint", "fingerprint: zz\n"},
		{"bad action", "fingerprint: " + hexFingerprint(g) + "\nstates:\n  - NUM: jump_3\n"},
		{"state out of range", "fingerprint: " + hexFingerprint(g) + "\nstates:\n  - NUM: shift_9\n"},
		{"rule out of range", "fingerprint: " + hexFingerprint(g) + "\nstates:\n  - NUM: reduce_40\n"},
		{"no states", "fingerprint: " + hexFingerprint(g) + "\nstates: []\n"},
		{"goto on a terminal", "fingerprint: " + hexFingerprint(g) + "\nstates:\n  - NUM: goto_0\n"},
		{"shift on a nonterminal", "fingerprint: " + hexFingerprint(g) + "\nstates:\n  - e: shift_0\n"},
		{"nothing accepts", "fingerprint: " + hexFingerprint(g) + "\nstates:\n  - e: goto_0\n    NUM: shift_0\n"},
		{"start state without goto", "fingerprint: " + hexFingerprint(g) + "\nstates:\n  - $: accept\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.yaml), g)
			require.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func hexFingerprint(g *grammar.Grammar) string {
	var buf bytes.Buffer
	tbl := &Table{Fingerprint: g.Fingerprint()}
	if err := tbl.Encode(&buf); err != nil {
		panic(err)
	}
	for _, line := range strings.Split(buf.String(), "\n") {
		if v, ok := strings.CutPrefix(line, "fingerprint: "); ok {
			return v
		}
	}
	return ""
}

func TestParseAction(t *testing.T) {
	for _, a := range []Action{{Shift, 4}, {Reduce, 12}, {Goto, 7}, {Kind: Accept}} {
		got, err := ParseAction(a.String())
		require.NoError(t, err)
		require.Equal(t, a, got)
	}
	for _, bad := range []string{"", "shift", "shift_x", "reduce_-1", "jump_2"} {
		_, err := ParseAction(bad)
		require.True(t, errors.Is(err, ErrMalformed), bad)
	}
}
