// Package lalr holds the parse table the driver consumes: per-state actions
// and gotos plus the follow sets used by error recovery.
package lalr

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/alizademhdi/C-minus-compiler/pkg/grammar"
)

var (
	ErrConflict  = errors.New("grammar is not LALR(1)")
	ErrStale     = errors.New("parse table does not match the grammar")
	ErrMalformed = errors.New("malformed parse table")
)

type ActionKind int

const (
	Error ActionKind = iota
	Shift
	Reduce
	Goto
	Accept
)

type Action struct {
	Kind   ActionKind
	Target int // next state for shift and goto, rule index for reduce
}

// String uses the notation of the table file: shift_4, reduce_12, goto_7, accept.
func (a Action) String() string {
	switch a.Kind {
	case Shift:
		return "shift_" + strconv.Itoa(a.Target)
	case Reduce:
		return "reduce_" + strconv.Itoa(a.Target)
	case Goto:
		return "goto_" + strconv.Itoa(a.Target)
	case Accept:
		return "accept"
	}
	return "error"
}

func ParseAction(s string) (Action, error) {
	if s == "accept" {
		return Action{Kind: Accept}, nil
	}
	kind, num, ok := strings.Cut(s, "_")
	if !ok {
		return Action{}, fmt.Errorf("%w: action '%s'", ErrMalformed, s)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return Action{}, fmt.Errorf("%w: action '%s'", ErrMalformed, s)
	}
	switch kind {
	case "shift":
		return Action{Shift, n}, nil
	case "reduce":
		return Action{Reduce, n}, nil
	case "goto":
		return Action{Goto, n}, nil
	}
	return Action{}, fmt.Errorf("%w: action '%s'", ErrMalformed, s)
}

type Table struct {
	Fingerprint uint64
	rows        []map[string]Action
	follow      map[string]map[string]bool
}

func (t *Table) NumStates() int { return len(t.rows) }

// Lookup returns the action for a terminal or the goto for a nonterminal.
func (t *Table) Lookup(state int, sym string) (Action, bool) {
	if state < 0 || state >= len(t.rows) {
		return Action{}, false
	}
	a, ok := t.rows[state][sym]
	return a, ok
}

func (t *Table) HasGoto(state int) bool {
	if state < 0 || state >= len(t.rows) {
		return false
	}
	for _, a := range t.rows[state] {
		if a.Kind == Goto {
			return true
		}
	}
	return false
}

// Gotos lists the nonterminals with a goto from state in byte order, the
// order in which recovery tries them.
func (t *Table) Gotos(state int) []string {
	if state < 0 || state >= len(t.rows) {
		return nil
	}
	var out []string
	for sym, a := range t.rows[state] {
		if a.Kind == Goto {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

func (t *Table) InFollow(nonterminal, terminal string) bool {
	return t.follow[nonterminal][terminal]
}

func (t *Table) Follow(nonterminal string) []string {
	var out []string
	for term := range t.follow[nonterminal] {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

type tableFile struct {
	Grammar     string              `yaml:"grammar"`
	Fingerprint string              `yaml:"fingerprint"`
	Follow      map[string][]string `yaml:"follow"`
	States      []map[string]string `yaml:"states"`
}

// Encode writes the table as YAML.
func (t *Table) Encode(w io.Writer) error {
	f := tableFile{
		Grammar:     "c-minus",
		Fingerprint: strconv.FormatUint(t.Fingerprint, 16),
		Follow:      make(map[string][]string, len(t.follow)),
		States:      make([]map[string]string, len(t.rows)),
	}
	for nt := range t.follow {
		f.Follow[nt] = t.Follow(nt)
	}
	for i, row := range t.rows {
		f.States[i] = make(map[string]string, len(row))
		for sym, a := range row {
			f.States[i][sym] = a.String()
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("encoding parse table: %w", err)
	}
	return enc.Close()
}

// Decode reads a table written by Encode and checks it belongs to g.
func Decode(r io.Reader, g *grammar.Grammar) (*Table, error) {
	var f tableFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	fp, err := strconv.ParseUint(f.Fingerprint, 16, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: fingerprint '%s'", ErrMalformed, f.Fingerprint)
	}
	if fp != g.Fingerprint() {
		return nil, fmt.Errorf("%w: table %x, grammar %x", ErrStale, fp, g.Fingerprint())
	}

	if len(f.States) == 0 {
		return nil, fmt.Errorf("%w: no states", ErrMalformed)
	}

	t := &Table{Fingerprint: fp, rows: make([]map[string]Action, len(f.States)), follow: make(map[string]map[string]bool)}
	accepts := false
	for i, row := range f.States {
		t.rows[i] = make(map[string]Action, len(row))
		for sym, text := range row {
			a, err := ParseAction(text)
			if err != nil {
				return nil, fmt.Errorf("state %d, symbol %s: %w", i, sym, err)
			}
			if err := t.check(g, a); err != nil {
				return nil, fmt.Errorf("state %d, symbol %s: %w", i, sym, err)
			}
			if g.IsNonterminal(sym) != (a.Kind == Goto) {
				return nil, fmt.Errorf("state %d, symbol %s: %w: %s on the wrong kind of symbol", i, sym, ErrMalformed, a)
			}
			accepts = accepts || a.Kind == Accept
			t.rows[i][sym] = a
		}
	}
	if !accepts {
		return nil, fmt.Errorf("%w: no state accepts", ErrMalformed)
	}
	if !t.HasGoto(0) {
		return nil, fmt.Errorf("%w: start state has no goto", ErrMalformed)
	}
	for nt, terms := range f.Follow {
		t.follow[nt] = make(map[string]bool, len(terms))
		for _, term := range terms {
			t.follow[nt][term] = true
		}
	}
	return t, nil
}

func (t *Table) check(g *grammar.Grammar, a Action) error {
	switch a.Kind {
	case Shift, Goto:
		if a.Target >= len(t.rows) {
			return fmt.Errorf("%w: state %d out of range", ErrMalformed, a.Target)
		}
	case Reduce:
		if a.Target >= len(g.Rules) {
			return fmt.Errorf("%w: rule %d out of range", ErrMalformed, a.Target)
		}
	}
	return nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the C-minus table, built on first use.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Build(grammar.CMinus())
		if err != nil {
			panic(fmt.Sprintf("lalr: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}
