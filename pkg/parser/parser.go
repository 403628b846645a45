// Package parser drives the LALR(1) automaton over the token stream,
// running a semantic action on every reduction and recovering from syntax
// errors in panic mode.
package parser

import (
	"errors"
	"fmt"

	"github.com/alizademhdi/C-minus-compiler/pkg/ast"
	"github.com/alizademhdi/C-minus-compiler/pkg/diag"
	"github.com/alizademhdi/C-minus-compiler/pkg/grammar"
	"github.com/alizademhdi/C-minus-compiler/pkg/lalr"
	"github.com/alizademhdi/C-minus-compiler/pkg/token"
)

// ErrUnexpectedEOF ends a parse whose recovery ran out of input.
var ErrUnexpectedEOF = errors.New("unexpected end of input")

// Scanner yields tokens one at a time; whitespace and comments are skipped
// by the parser.
type Scanner interface {
	Next() token.Token
}

// Actions receives every reduction before the parse tree is restructured.
// lookahead is the token the parser holds at that moment.
type Actions interface {
	Reduce(p grammar.Production, lookahead token.Token) error
}

type Result struct {
	Tree     *ast.Tree
	Accepted bool
}

// Parser holds the state for the parsing process
type Parser struct {
	table   *lalr.Table
	grammar *grammar.Grammar
	scanner Scanner
	actions Actions
	diags   *diag.List

	tree    *ast.Tree
	states  []int
	nodes   []int // nodes[i] sits between states[i] and states[i+1]
	current token.Token
}

// NewParser creates a parser for g driven by table. actions may be nil.
func NewParser(table *lalr.Table, g *grammar.Grammar, scanner Scanner, actions Actions, diags *diag.List) *Parser {
	return &Parser{
		table:   table,
		grammar: g,
		scanner: scanner,
		actions: actions,
		diags:   diags,
		tree:    ast.NewTree(),
		states:  []int{0},
	}
}

func (p *Parser) advance() {
	for {
		tok := p.scanner.Next()
		if !tok.IsTrivia() {
			p.current = tok
			return
		}
	}
}

func (p *Parser) top() int { return p.states[len(p.states)-1] }

func (p *Parser) push(node, state int) {
	p.nodes = append(p.nodes, node)
	p.states = append(p.states, state)
}

func (p *Parser) pop() int {
	node := p.nodes[len(p.nodes)-1]
	p.nodes = p.nodes[:len(p.nodes)-1]
	p.states = p.states[:len(p.states)-1]
	return node
}

// Parse runs to accept or to a fatal error. Syntax errors that recovery
// gets past are only recorded in the diagnostics list.
func (p *Parser) Parse() (*Result, error) {
	p.advance()
	for {
		a, ok := p.table.Lookup(p.top(), p.current.Terminal())
		if !ok {
			if err := p.recover(); err != nil {
				return &Result{Tree: p.tree}, err
			}
			continue
		}
		switch a.Kind {
		case lalr.Shift:
			p.push(p.tree.NewLeaf(p.current), a.Target)
			p.advance()
		case lalr.Reduce:
			if err := p.reduce(grammar.Production(a.Target)); err != nil {
				return &Result{Tree: p.tree}, err
			}
		case lalr.Accept:
			if len(p.nodes) == 0 {
				return &Result{Tree: p.tree}, fmt.Errorf("%w: accept on an empty stack", lalr.ErrMalformed)
			}
			p.tree.Accept(p.nodes[len(p.nodes)-1])
			return &Result{Tree: p.tree, Accepted: true}, nil
		default:
			return &Result{Tree: p.tree}, fmt.Errorf("%w: %s on terminal %s in state %d", lalr.ErrMalformed, a, p.current.Terminal(), p.top())
		}
	}
}

func (p *Parser) reduce(prod grammar.Production) error {
	if int(prod) >= len(p.grammar.Rules) {
		return fmt.Errorf("%w: no rule %d", lalr.ErrMalformed, int(prod))
	}
	rule := p.grammar.Rules[prod]
	if len(rule.RHS) > len(p.nodes) {
		return fmt.Errorf("%w: reducing %s with %d symbols on the stack", lalr.ErrMalformed, prod, len(p.nodes))
	}
	if p.actions != nil {
		if err := p.actions.Reduce(prod, p.current); err != nil {
			return err
		}
	}
	children := make([]int, len(rule.RHS))
	for i := len(children) - 1; i >= 0; i-- {
		children[i] = p.pop()
	}
	node := p.tree.NewSymbol(rule.LHS, children...)

	next, ok := p.table.Lookup(p.top(), rule.LHS)
	if !ok || next.Kind != lalr.Goto {
		return fmt.Errorf("%w: no goto on %s from state %d", lalr.ErrMalformed, rule.LHS, p.top())
	}
	p.push(node, next.Target)
	return nil
}

// recover skips the offending token, unwinds the stack to a state that can
// resume some nonterminal, discards input until that nonterminal may be
// followed by the current token, and then pretends it was parsed. No
// semantic action runs for the invented nonterminal.
func (p *Parser) recover() error {
	bad := p.current
	p.diags.Syntax(bad.Line, "illegal %s", bad.Terminal())
	if bad.Kind == token.EOF {
		p.diags.Syntax(bad.Line, "Unexpected EOF")
		return ErrUnexpectedEOF
	}
	p.advance()

	for !p.table.HasGoto(p.top()) {
		if len(p.nodes) == 0 {
			return fmt.Errorf("%w: no state on the stack can resume after an error", lalr.ErrMalformed)
		}
		node := p.pop()
		p.diags.Syntax(p.current.Line, "discarded %s from stack", p.tree.Node(node).Label)
	}

	for {
		if nt, ok := p.resumable(); ok {
			p.diags.Syntax(p.current.Line, "missing %s", nt)
			next, _ := p.table.Lookup(p.top(), nt)
			p.push(p.tree.NewMissing(nt), next.Target)
			return nil
		}
		if p.current.Kind == token.EOF {
			p.diags.Syntax(p.current.Line, "Unexpected EOF")
			return ErrUnexpectedEOF
		}
		p.diags.Syntax(p.current.Line, "discarded %s from input", p.current.Lexeme)
		p.advance()
	}
}

// resumable picks the first goto of the top state, in byte order, whose
// follow set contains the current token.
func (p *Parser) resumable() (string, bool) {
	term := p.current.Terminal()
	for _, nt := range p.table.Gotos(p.top()) {
		if p.table.InFollow(nt, term) {
			return nt, true
		}
	}
	return "", false
}
