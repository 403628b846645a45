// Package grammar holds the C-minus grammar. Semantic actions hang off
// epsilon marker nonterminals (PID, SAVE, ...) so every action runs on a
// reduction and the driver needs no mid-rule hooks.
package grammar

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	Start   = "$accept"
	End     = "$"
	Epsilon = "epsilon"
)

type Rule struct {
	LHS string
	RHS []string
}

func (r Rule) String() string {
	if len(r.RHS) == 0 {
		return r.LHS + " -> " + Epsilon
	}
	return r.LHS + " -> " + strings.Join(r.RHS, " ")
}

// Grammar is a rule list plus the symbol orderings derived from it.
// Nonterminals appear in order of first definition, terminals in order of
// first use, followed by the end marker.
type Grammar struct {
	Rules        []Rule
	Terminals    []string
	Nonterminals []string
	isNonterm    map[string]bool
	byLHS        map[string][]int
}

// New builds a grammar whose rule 0 must be the augmented start rule.
func New(rules []Rule) *Grammar {
	g := &Grammar{
		Rules:     rules,
		isNonterm: make(map[string]bool),
		byLHS:     make(map[string][]int),
	}
	for i, r := range rules {
		if !g.isNonterm[r.LHS] {
			g.isNonterm[r.LHS] = true
			g.Nonterminals = append(g.Nonterminals, r.LHS)
		}
		g.byLHS[r.LHS] = append(g.byLHS[r.LHS], i)
	}
	seen := make(map[string]bool)
	for _, r := range rules {
		for _, sym := range r.RHS {
			if !g.isNonterm[sym] && !seen[sym] {
				seen[sym] = true
				g.Terminals = append(g.Terminals, sym)
			}
		}
	}
	g.Terminals = append(g.Terminals, End)
	return g
}

func (g *Grammar) IsNonterminal(sym string) bool { return g.isNonterm[sym] }

// RulesFor lists the indices of the rules defining lhs.
func (g *Grammar) RulesFor(lhs string) []int { return g.byLHS[lhs] }

// Fingerprint identifies the rule list; a parse table built for a different
// grammar carries a different value.
func (g *Grammar) Fingerprint() uint64 {
	h := xxhash.New()
	for _, r := range g.Rules {
		h.WriteString(r.String())
		h.WriteString("\n")
	}
	return h.Sum64()
}

var cminus = New(rules[:])

// CMinus returns the C-minus grammar.
func CMinus() *Grammar { return cminus }
