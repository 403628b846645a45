// Package symtab keeps the scoped mapping from identifiers to storage.
//
// Storage is a flat, word-addressed data region: every declaration takes the
// next free word and nothing is ever handed back, so an address identifies
// exactly one symbol for the whole compilation.
package symtab

import (
	"errors"
	"fmt"
)

var (
	ErrUndeclared = errors.New("undeclared identifier")
	ErrOverflow   = errors.New("data region exhausted")
	ErrNoScope    = errors.New("no open scope")
)

type Role int

const (
	RoleNone Role = iota
	RoleVar
	RoleArray
	RoleParam
	RoleFunc
)

func (r Role) String() string {
	switch r {
	case RoleVar:
		return "var"
	case RoleArray:
		return "array"
	case RoleParam:
		return "param"
	case RoleFunc:
		return "func"
	}
	return "none"
}

type Type int

const (
	TypeInt Type = iota
	TypeVoid
)

func (t Type) String() string {
	if t == TypeVoid {
		return "void"
	}
	return "int"
}

type Symbol struct {
	Lexeme     string
	Address    int
	Role       Role
	Type       Type
	Size       int   // element count, arrays only
	Params     []int // parameter addresses in declaration order, functions only
	ArrayParam bool
	Depth      int
	Line       int
}

type Table struct {
	visible []*Symbol
	all     []*Symbol
	byAddr  map[int]*Symbol
	markers []int
	next    int
	word    int
	limit   int
}

// New creates a table allocating words of size word from base up to, but
// not including, limit.
func New(base, word, limit int) *Table {
	return &Table{
		byAddr: make(map[int]*Symbol),
		next:   base,
		word:   word,
		limit:  limit,
	}
}

// Resolve finds the innermost reachable symbol named lexeme.
func (t *Table) Resolve(lexeme string) (*Symbol, error) {
	for i := len(t.visible) - 1; i >= 0; i-- {
		if t.visible[i].Lexeme == lexeme {
			return t.visible[i], nil
		}
	}
	return nil, fmt.Errorf("%w: '%s'", ErrUndeclared, lexeme)
}

// LookupLocal finds lexeme among the symbols of the innermost scope only.
func (t *Table) LookupLocal(lexeme string) (*Symbol, bool) {
	start := 0
	if n := len(t.markers); n > 0 {
		start = t.markers[n-1]
	}
	for i := len(t.visible) - 1; i >= start; i-- {
		if t.visible[i].Lexeme == lexeme {
			return t.visible[i], true
		}
	}
	return nil, false
}

func (t *Table) Declare(lexeme string, typ Type, line int) (*Symbol, error) {
	if t.limit-t.next < t.word {
		return nil, fmt.Errorf("%w: no room for '%s' below %d", ErrOverflow, lexeme, t.limit)
	}
	sym := t.add(lexeme, typ, line, t.next)
	t.next += t.word
	return sym, nil
}

// Bind declares lexeme at addr without taking any data space. Names that no
// longer fit in the data region are bound to storage found elsewhere.
func (t *Table) Bind(lexeme string, typ Type, line, addr int) *Symbol {
	return t.add(lexeme, typ, line, addr)
}

func (t *Table) add(lexeme string, typ Type, line, addr int) *Symbol {
	sym := &Symbol{Lexeme: lexeme, Address: addr, Type: typ, Depth: len(t.markers), Line: line}
	t.visible = append(t.visible, sym)
	t.all = append(t.all, sym)
	t.byAddr[addr] = sym
	return sym
}

// ReserveExtra skips count words past the last declaration. When they do not
// fit, the rest of the region is given up so nothing declared later can
// land inside the range the caller asked for.
func (t *Table) ReserveExtra(count int) error {
	if count < 0 || count > (t.limit-t.next)/t.word {
		t.next = t.limit
		return fmt.Errorf("%w: cannot reserve %d words", ErrOverflow, count)
	}
	t.next += count * t.word
	return nil
}

func (t *Table) OpenScope() {
	t.markers = append(t.markers, len(t.visible))
}

// CloseScope hides every symbol declared since the matching OpenScope.
// Their addresses stay taken.
func (t *Table) CloseScope() error {
	n := len(t.markers)
	if n == 0 {
		return ErrNoScope
	}
	t.visible = t.visible[:t.markers[n-1]]
	t.markers = t.markers[:n-1]
	return nil
}

func (t *Table) Depth() int { return len(t.markers) }

// ByAddress finds any symbol ever declared at addr, reachable or not.
func (t *Table) ByAddress(addr int) (*Symbol, bool) {
	sym, ok := t.byAddr[addr]
	return sym, ok
}

// Symbols returns every declared symbol in declaration order.
func (t *Table) Symbols() []*Symbol {
	out := make([]*Symbol, len(t.all))
	copy(out, t.all)
	return out
}

// NextAddress is the address the next declaration will receive.
func (t *Table) NextAddress() int { return t.next }
