package ir

import (
	"fmt"
	"strings"
)

type Op int

const (
	OpNone Op = iota
	OpAssign
	OpAdd
	OpSub
	OpMult
	OpDiv
	OpLt
	OpEq
	OpJp
	OpJpf
	OpPrint
)

var opNames = [...]string{
	OpNone:   "",
	OpAssign: "ASSIGN",
	OpAdd:    "ADD",
	OpSub:    "SUB",
	OpMult:   "MULT",
	OpDiv:    "DIV",
	OpLt:     "LT",
	OpEq:     "EQ",
	OpJp:     "JP",
	OpJpf:    "JPF",
	OpPrint:  "PRINT",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// OpForSymbol maps an operator lexeme to its opcode.
func OpForSymbol(sym string) (Op, bool) {
	switch sym {
	case "+":
		return OpAdd, true
	case "-":
		return OpSub, true
	case "*":
		return OpMult, true
	case "/":
		return OpDiv, true
	case "<":
		return OpLt, true
	case "==":
		return OpEq, true
	}
	return OpNone, false
}

type Mode int

const (
	ModeNone      Mode = iota
	ModeDirect         // n: the cell at address n
	ModeImmediate      // #n: the constant n
	ModeIndirect       // @n: the cell whose address is stored at n
)

type Operand struct {
	Mode  Mode
	Value int
}

func Direct(addr int) Operand   { return Operand{ModeDirect, addr} }
func Immediate(n int) Operand   { return Operand{ModeImmediate, n} }
func Indirect(addr int) Operand { return Operand{ModeIndirect, addr} }
func (o Operand) IsEmpty() bool { return o.Mode == ModeNone }

func (o Operand) String() string {
	switch o.Mode {
	case ModeDirect:
		return fmt.Sprintf("%d", o.Value)
	case ModeImmediate:
		return fmt.Sprintf("#%d", o.Value)
	case ModeIndirect:
		return fmt.Sprintf("@%d", o.Value)
	}
	return ""
}

type Instruction struct {
	Op   Op
	Args [3]Operand
}

func NewInstruction(op Op, args ...Operand) Instruction {
	if len(args) > 3 {
		panic(fmt.Sprintf("ir: %s takes at most 3 operands, got %d", op, len(args)))
	}
	in := Instruction{Op: op}
	copy(in.Args[:], args)
	return in
}

// IsPlaceholder reports whether the slot is still waiting for its patch.
func (in Instruction) IsPlaceholder() bool { return in.Op == OpNone }

// String renders the instruction as "OPCODE op1 op2 op3", omitting empty operands.
func (in Instruction) String() string {
	parts := []string{in.Op.String()}
	for _, a := range in.Args {
		if !a.IsEmpty() {
			parts = append(parts, a.String())
		}
	}
	return strings.Join(parts, " ")
}

// Tuple renders the instruction as "(OPCODE, op1, op2, op3)", keeping empty slots.
func (in Instruction) Tuple() string {
	return fmt.Sprintf("(%s, %s, %s, %s)", in.Op, in.Args[0], in.Args[1], in.Args[2])
}

type Format int

const (
	FormatPlain Format = iota
	FormatTuple
)

func ParseFormat(name string) (Format, error) {
	switch name {
	case "plain", "":
		return FormatPlain, nil
	case "tuple":
		return FormatTuple, nil
	}
	return FormatPlain, fmt.Errorf("unknown listing format '%s'. Supported: 'plain', 'tuple'", name)
}
