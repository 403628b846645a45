package lalr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alizademhdi/C-minus-compiler/pkg/grammar"
)

// item is a rule with a dot position.
type item struct{ rule, dot int }

type set map[string]bool

func (s set) addAll(o set) bool {
	grew := false
	for k := range o {
		if !s[k] {
			s[k] = true
			grew = true
		}
	}
	return grew
}

type builder struct {
	g        *grammar.Grammar
	nullable set
	first    map[string]set
	follow   map[string]set

	kernels [][]item
	index   map[string]int
	trans   []map[string]int
	closure [][]item
	la      []map[item]set
}

// Build constructs the LALR(1) table of g: the LR(0) automaton first, then
// lookaheads propagated through closures and transitions until nothing
// changes. Rule 0 must be the augmented start rule.
func Build(g *grammar.Grammar) (*Table, error) {
	b := &builder{g: g, nullable: set{}, first: map[string]set{}, follow: map[string]set{}, index: map[string]int{}}
	b.computeFirst()
	b.computeFollow()
	b.buildStates()
	b.propagate()
	return b.table()
}

func (b *builder) computeFirst() {
	for _, nt := range b.g.Nonterminals {
		b.first[nt] = set{}
	}
	for changed := true; changed; {
		changed = false
		for _, r := range b.g.Rules {
			allNullable := true
			for _, sym := range r.RHS {
				if b.g.IsNonterminal(sym) {
					changed = b.first[r.LHS].addAll(b.first[sym]) || changed
				} else {
					changed = b.first[r.LHS].addAll(set{sym: true}) || changed
				}
				if !b.nullable[sym] {
					allNullable = false
					break
				}
			}
			if allNullable && !b.nullable[r.LHS] {
				b.nullable[r.LHS] = true
				changed = true
			}
		}
	}
}

// firstOf returns FIRST of a symbol sequence and whether it derives epsilon.
func (b *builder) firstOf(seq []string) (set, bool) {
	out := set{}
	for _, sym := range seq {
		if !b.g.IsNonterminal(sym) {
			out[sym] = true
			return out, false
		}
		out.addAll(b.first[sym])
		if !b.nullable[sym] {
			return out, false
		}
	}
	return out, true
}

func (b *builder) computeFollow() {
	for _, nt := range b.g.Nonterminals {
		b.follow[nt] = set{}
	}
	b.follow[grammar.Start][grammar.End] = true
	for changed := true; changed; {
		changed = false
		for _, r := range b.g.Rules {
			for i, sym := range r.RHS {
				if !b.g.IsNonterminal(sym) {
					continue
				}
				rest, nullable := b.firstOf(r.RHS[i+1:])
				if nullable {
					rest.addAll(b.follow[r.LHS])
				}
				changed = b.follow[sym].addAll(rest) || changed
			}
		}
	}
}

func (b *builder) next(it item) (string, bool) {
	rhs := b.g.Rules[it.rule].RHS
	if it.dot >= len(rhs) {
		return "", false
	}
	return rhs[it.dot], true
}

func (b *builder) closure0(kernel []item) []item {
	out := append([]item(nil), kernel...)
	seen := make(map[item]bool, len(kernel))
	for _, it := range kernel {
		seen[it] = true
	}
	for k := 0; k < len(out); k++ {
		sym, ok := b.next(out[k])
		if !ok || !b.g.IsNonterminal(sym) {
			continue
		}
		for _, r := range b.g.RulesFor(sym) {
			it := item{r, 0}
			if !seen[it] {
				seen[it] = true
				out = append(out, it)
			}
		}
	}
	return out
}

func kernelKey(kernel []item) string {
	var sb strings.Builder
	for _, it := range kernel {
		sb.WriteString(strconv.Itoa(it.rule))
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(it.dot))
		sb.WriteByte(' ')
	}
	return sb.String()
}

// buildStates explores LR(0) kernels breadth first. Transitions leave each
// state in symbol order (terminals, then nonterminals) so state numbers are
// stable for a given grammar.
func (b *builder) buildStates() {
	order := make(map[string]int)
	for i, sym := range append(append([]string(nil), b.g.Terminals...), b.g.Nonterminals...) {
		order[sym] = i
	}

	start := []item{{0, 0}}
	b.kernels = append(b.kernels, start)
	b.index[kernelKey(start)] = 0
	for i := 0; i < len(b.kernels); i++ {
		items := b.closure0(b.kernels[i])
		b.closure = append(b.closure, items)
		b.trans = append(b.trans, map[string]int{})

		var syms []string
		seen := set{}
		for _, it := range items {
			if sym, ok := b.next(it); ok && !seen[sym] {
				seen[sym] = true
				syms = append(syms, sym)
			}
		}
		sort.Slice(syms, func(x, y int) bool { return order[syms[x]] < order[syms[y]] })

		for _, sym := range syms {
			var kernel []item
			for _, it := range items {
				if s, ok := b.next(it); ok && s == sym {
					kernel = append(kernel, item{it.rule, it.dot + 1})
				}
			}
			sort.Slice(kernel, func(x, y int) bool {
				if kernel[x].rule != kernel[y].rule {
					return kernel[x].rule < kernel[y].rule
				}
				return kernel[x].dot < kernel[y].dot
			})
			key := kernelKey(kernel)
			target, ok := b.index[key]
			if !ok {
				target = len(b.kernels)
				b.index[key] = target
				b.kernels = append(b.kernels, kernel)
			}
			b.trans[i][sym] = target
		}
	}
}

func (b *builder) propagate() {
	b.la = make([]map[item]set, len(b.kernels))
	for i, items := range b.closure {
		b.la[i] = make(map[item]set, len(items))
		for _, it := range items {
			b.la[i][it] = set{}
		}
	}
	b.la[0][item{0, 0}][grammar.End] = true

	for changed := true; changed; {
		changed = false
		for si, items := range b.closure {
			la := b.la[si]
			for inner := true; inner; {
				inner = false
				for _, it := range items {
					sym, ok := b.next(it)
					if !ok || !b.g.IsNonterminal(sym) {
						continue
					}
					add, nullable := b.firstOf(b.g.Rules[it.rule].RHS[it.dot+1:])
					if nullable {
						add.addAll(la[it])
					}
					for _, r := range b.g.RulesFor(sym) {
						if la[item{r, 0}].addAll(add) {
							inner = true
							changed = true
						}
					}
				}
			}
			for _, it := range items {
				sym, ok := b.next(it)
				if !ok {
					continue
				}
				target := b.la[b.trans[si][sym]]
				if target[item{it.rule, it.dot + 1}].addAll(la[it]) {
					changed = true
				}
			}
		}
	}
}

func (b *builder) table() (*Table, error) {
	t := &Table{
		Fingerprint: b.g.Fingerprint(),
		rows:        make([]map[string]Action, len(b.kernels)),
		follow:      make(map[string]map[string]bool, len(b.follow)),
	}
	for nt, f := range b.follow {
		t.follow[nt] = f
	}

	var conflicts []string
	put := func(state int, sym string, a Action) {
		if prev, ok := t.rows[state][sym]; ok && prev != a {
			conflicts = append(conflicts, fmt.Sprintf("state %d on %s: %s vs %s", state, sym, prev, a))
			return
		}
		t.rows[state][sym] = a
	}

	for si, items := range b.closure {
		t.rows[si] = map[string]Action{}
		for _, it := range items {
			if _, ok := b.next(it); ok {
				continue
			}
			terms := make([]string, 0, len(b.la[si][it]))
			for term := range b.la[si][it] {
				terms = append(terms, term)
			}
			sort.Strings(terms)
			for _, term := range terms {
				if it.rule == 0 {
					put(si, term, Action{Kind: Accept})
				} else {
					put(si, term, Action{Reduce, it.rule})
				}
			}
		}
		syms := make([]string, 0, len(b.trans[si]))
		for sym := range b.trans[si] {
			syms = append(syms, sym)
		}
		sort.Strings(syms)
		for _, sym := range syms {
			target := b.trans[si][sym]
			if b.g.IsNonterminal(sym) {
				put(si, sym, Action{Goto, target})
			} else {
				put(si, sym, Action{Shift, target})
			}
		}
	}
	if len(conflicts) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrConflict, strings.Join(conflicts, "; "))
	}
	return t, nil
}
