package codegen

import (
	"fmt"
	"strings"

	"github.com/alizademhdi/C-minus-compiler/pkg/ir"
	"github.com/alizademhdi/C-minus-compiler/pkg/symtab"
)

type Kind int

const (
	KindAddress   Kind = iota // N is a storage address
	KindIndirect              // N holds the address of the cell
	KindImmediate             // N is a constant
	KindOperator              // Op is a pending binary operator
	KindSize                  // N is an array length
	KindJump                  // N is an instruction index
	KindType                  // Type of the declaration in progress
)

var kindNames = [...]string{
	KindAddress:   "address",
	KindIndirect:  "indirect",
	KindImmediate: "immediate",
	KindOperator:  "operator",
	KindSize:      "size",
	KindJump:      "jump",
	KindType:      "type",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

var operandKinds = []Kind{KindAddress, KindIndirect, KindImmediate}

// Value is one cell of the semantic stack.
type Value struct {
	Kind Kind
	N    int
	Op   ir.Op
	Type symtab.Type
	// Literal is set on immediates pushed straight from the source and
	// cleared once anything consumes them. Line and Column locate it.
	Literal      bool
	Line, Column int
}

func Address(addr int) Value { return Value{Kind: KindAddress, N: addr} }
func Jump(idx int) Value     { return Value{Kind: KindJump, N: idx} }

// Operand converts an address, indirect or immediate value to an instruction operand.
func (v Value) Operand() ir.Operand {
	switch v.Kind {
	case KindAddress:
		return ir.Direct(v.N)
	case KindIndirect:
		return ir.Indirect(v.N)
	case KindImmediate:
		return ir.Immediate(v.N)
	}
	return ir.Operand{}
}

func (v Value) String() string {
	switch v.Kind {
	case KindOperator:
		return "operator " + v.Op.String()
	case KindType:
		return "type " + v.Type.String()
	}
	return fmt.Sprintf("%s %d", v.Kind, v.N)
}

type Stack struct {
	values []Value
}

func (s *Stack) Push(v Value) { s.values = append(s.values, v) }

func (s *Stack) Len() int { return len(s.values) }

// Peek returns the top value if its kind is one of kinds; no kinds accepts any.
func (s *Stack) Peek(kinds ...Kind) (Value, error) {
	if len(s.values) == 0 {
		return Value{}, fmt.Errorf("%w: semantic stack is empty, expected %s", ErrInternal, describe(kinds))
	}
	top := s.values[len(s.values)-1]
	if len(kinds) == 0 {
		return top, nil
	}
	for _, k := range kinds {
		if top.Kind == k {
			return top, nil
		}
	}
	return Value{}, fmt.Errorf("%w: expected %s on the semantic stack, found %s", ErrInternal, describe(kinds), top)
}

func (s *Stack) Pop(kinds ...Kind) (Value, error) {
	v, err := s.Peek(kinds...)
	if err != nil {
		return Value{}, err
	}
	s.values = s.values[:len(s.values)-1]
	return v, nil
}

// Values returns the stack bottom first.
func (s *Stack) Values() []Value {
	out := make([]Value, len(s.values))
	copy(out, s.values)
	return out
}

func describe(kinds []Kind) string {
	if len(kinds) == 0 {
		return "a value"
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, " or ")
}
