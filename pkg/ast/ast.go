// Package ast defines the concrete syntax tree the parser builds. Nodes live
// in one arena and refer to each other by index.
package ast

import (
	"bufio"
	"io"
	"strings"

	"github.com/alizademhdi/C-minus-compiler/pkg/grammar"
	"github.com/alizademhdi/C-minus-compiler/pkg/token"
)

// NodeType defines the kind of a node in the tree
type NodeType int

const (
	Symbol  NodeType = iota // a reduced or synthesized grammar symbol
	Leaf                    // a shifted token
	Epsilon                 // the only child of an empty reduction
	End                     // the end marker attached on accept
)

// None is the index of a missing node.
const None = -1

type Node struct {
	Type     NodeType
	Label    string
	Tok      token.Token
	Parent   int
	Children []int
}

type Tree struct {
	Nodes []Node
	Root  int
}

func NewTree() *Tree { return &Tree{Root: None} }

func (t *Tree) newNode(nodeType NodeType, label string, tok token.Token, children ...int) int {
	id := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Type: nodeType, Label: label, Tok: tok, Parent: None, Children: children})
	for _, c := range children {
		t.Nodes[c].Parent = id
	}
	return id
}

// NewLeaf records a shifted token, labelled "(KIND, lexeme)".
func (t *Tree) NewLeaf(tok token.Token) int {
	return t.newNode(Leaf, tok.String(), tok)
}

// NewSymbol records a grammar symbol and adopts children in order. An
// empty reduction gets a single epsilon child.
func (t *Tree) NewSymbol(label string, children ...int) int {
	if len(children) == 0 {
		eps := t.newNode(Epsilon, grammar.Epsilon, token.Token{})
		return t.newNode(Symbol, label, token.Token{}, eps)
	}
	return t.newNode(Symbol, label, token.Token{}, children...)
}

// NewMissing records a nonterminal invented by error recovery; it has no
// children at all.
func (t *Tree) NewMissing(label string) int {
	return t.newNode(Symbol, label, token.Token{})
}

// Accept makes root the root of the tree and appends the end marker to it.
func (t *Tree) Accept(root int) {
	end := t.newNode(End, grammar.End, token.Token{})
	t.Nodes[end].Parent = root
	t.Nodes[root].Children = append(t.Nodes[root].Children, end)
	t.Root = root
}

func (t *Tree) Node(id int) *Node { return &t.Nodes[id] }

// Render writes the tree one node per line, children indented under their
// parent with box-drawing guides.
func (t *Tree) Render(w io.Writer) error {
	if t.Root == None {
		return nil
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(t.Nodes[t.Root].Label)
	bw.WriteByte('\n')
	t.renderChildren(bw, t.Root, "")
	return bw.Flush()
}

func (t *Tree) renderChildren(bw *bufio.Writer, id int, indent string) {
	children := t.Nodes[id].Children
	for i, c := range children {
		branch, fill := "├── ", "│   "
		if i == len(children)-1 {
			branch, fill = "└── ", "    "
		}
		bw.WriteString(indent)
		bw.WriteString(branch)
		bw.WriteString(t.Nodes[c].Label)
		bw.WriteByte('\n')
		t.renderChildren(bw, c, indent+fill)
	}
}

func (t *Tree) String() string {
	var sb strings.Builder
	t.Render(&sb)
	return sb.String()
}
