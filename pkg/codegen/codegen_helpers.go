package codegen

import (
	"errors"
	"fmt"

	"github.com/alizademhdi/C-minus-compiler/pkg/config"
	"github.com/alizademhdi/C-minus-compiler/pkg/ir"
	"github.com/alizademhdi/C-minus-compiler/pkg/symtab"
	"github.com/alizademhdi/C-minus-compiler/pkg/token"
)

func (ctx *Context) emit(op ir.Op, args ...ir.Operand) int {
	return ctx.code.Append(ir.NewInstruction(op, args...))
}

func (ctx *Context) patch(idx int, op ir.Op, args ...ir.Operand) error {
	if err := ctx.code.Patch(idx, ir.NewInstruction(op, args...)); err != nil {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return nil
}

func (ctx *Context) symbolAt(addr int) (*symtab.Symbol, error) {
	sym, ok := ctx.symbols.ByAddress(addr)
	if !ok {
		return nil, fmt.Errorf("%w: no symbol at address %d", ErrInternal, addr)
	}
	return sym, nil
}

// identifier declares the name when a type is waiting on the stack and
// resolves it otherwise. An undefined name gets a temporary so the
// expression around it still has an operand.
func (ctx *Context) identifier(tok token.Token) error {
	if top, err := ctx.stack.Peek(KindType); err == nil {
		ctx.stack.Pop()
		return ctx.declare(tok, top.Type)
	}
	sym, err := ctx.symbols.Resolve(tok.Lexeme)
	if err != nil {
		ctx.diags.Semantic(tok.Line, "'%s' is not defined", tok.Lexeme)
		ctx.stack.Push(Address(ctx.temps.New().Value))
		return nil
	}
	ctx.stack.Push(Address(sym.Address))
	return nil
}

func (ctx *Context) declare(tok token.Token, typ symtab.Type) error {
	if prev, ok := ctx.symbols.LookupLocal(tok.Lexeme); ok {
		ctx.warn(config.WarnRedeclare, tok.Line, tok.Column, "'%s' redeclared, previous declaration on line %d", tok.Lexeme, prev.Line)
	} else if ctx.symbols.Depth() > 0 {
		if outer, err := ctx.symbols.Resolve(tok.Lexeme); err == nil && outer.Depth == 0 {
			ctx.warn(config.WarnShadow, tok.Line, tok.Column, "'%s' shadows the global declared on line %d", tok.Lexeme, outer.Line)
		}
	}
	sym, err := ctx.symbols.Declare(tok.Lexeme, typ, tok.Line)
	if errors.Is(err, symtab.ErrOverflow) {
		// The program is rejected; a temporary keeps the name usable
		// without sharing storage with anything else.
		ctx.diags.Semantic(tok.Line, "data region exhausted for '%s'", tok.Lexeme)
		sym = ctx.symbols.Bind(tok.Lexeme, typ, tok.Line, ctx.temps.New().Value)
	} else if err != nil {
		return err
	}
	ctx.stack.Push(Address(sym.Address))
	return nil
}

func (ctx *Context) checkNotVoid(sym *symtab.Symbol) {
	if sym.Type == symtab.TypeVoid {
		ctx.diags.Semantic(sym.Line, "illegal type of void for '%s'", sym.Lexeme)
	}
}

func (ctx *Context) declareVar() error {
	v, err := ctx.stack.Pop(KindAddress)
	if err != nil {
		return err
	}
	sym, err := ctx.symbolAt(v.N)
	if err != nil {
		return err
	}
	ctx.emit(ir.OpAssign, ir.Immediate(0), ir.Direct(v.N))
	sym.Role = symtab.RoleVar
	ctx.checkNotVoid(sym)
	return nil
}

func (ctx *Context) declareArray() error {
	size, err := ctx.stack.Pop(KindSize)
	if err != nil {
		return err
	}
	v, err := ctx.stack.Pop(KindAddress)
	if err != nil {
		return err
	}
	sym, err := ctx.symbolAt(v.N)
	if err != nil {
		return err
	}
	ctx.emit(ir.OpAssign, ir.Immediate(0), ir.Direct(v.N))
	// A name bound to a temporary has already been reported.
	if !ctx.temps.Owns(sym.Address) {
		if err := ctx.symbols.ReserveExtra(size.N); errors.Is(err, symtab.ErrOverflow) {
			ctx.diags.Semantic(sym.Line, "data region exhausted for '%s'", sym.Lexeme)
		} else if err != nil {
			return err
		}
	}
	sym.Role = symtab.RoleArray
	sym.Size = size.N
	ctx.checkNotVoid(sym)
	return nil
}

func (ctx *Context) beginFunction() error {
	v, err := ctx.stack.Peek(KindAddress)
	if err != nil {
		return err
	}
	sym, err := ctx.symbolAt(v.N)
	if err != nil {
		return err
	}
	sym.Role = symtab.RoleFunc
	ctx.symbols.OpenScope()
	return nil
}

// param registers the parameter on top of the stack with the function
// below it.
func (ctx *Context) param(array bool) error {
	v, err := ctx.stack.Pop(KindAddress)
	if err != nil {
		return err
	}
	p, err := ctx.symbolAt(v.N)
	if err != nil {
		return err
	}
	f, err := ctx.stack.Peek(KindAddress)
	if err != nil {
		return err
	}
	fn, err := ctx.symbolAt(f.N)
	if err != nil {
		return err
	}
	p.Role = symtab.RoleParam
	p.ArrayParam = array
	ctx.checkNotVoid(p)
	fn.Params = append(fn.Params, p.Address)
	return nil
}

func (ctx *Context) endFunction() error {
	if err := ctx.symbols.CloseScope(); err != nil {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
	_, err := ctx.stack.Pop(KindAddress)
	return err
}

// materialize copies an immediate into a fresh temporary.
func (ctx *Context) materialize(v Value) ir.Operand {
	if v.Kind != KindImmediate {
		return v.Operand()
	}
	t := ctx.temps.New()
	ctx.emit(ir.OpAssign, v.Operand(), t)
	return t
}

func (ctx *Context) binary() error {
	right, err := ctx.stack.Pop(operandKinds...)
	if err != nil {
		return err
	}
	op, err := ctx.stack.Pop(KindOperator)
	if err != nil {
		return err
	}
	left, err := ctx.stack.Pop(operandKinds...)
	if err != nil {
		return err
	}
	l := ctx.materialize(left)
	r := ctx.materialize(right)
	t := ctx.temps.New()
	ctx.emit(op.Op, l, r, t)
	ctx.stack.Push(Address(t.Value))
	return nil
}

func (ctx *Context) assign() error {
	v, err := ctx.stack.Pop(operandKinds...)
	if err != nil {
		return err
	}
	dst, err := ctx.stack.Pop(KindAddress, KindIndirect)
	if err != nil {
		return err
	}
	ctx.emit(ir.OpAssign, v.Operand(), dst.Operand())
	v.Literal = false
	ctx.stack.Push(v)
	return nil
}

// index computes the address of an array cell into a temporary. A local
// array's cells start at its own address; an array parameter holds the
// address of the caller's array.
func (ctx *Context) index() error {
	idx, err := ctx.stack.Pop(operandKinds...)
	if err != nil {
		return err
	}
	base, err := ctx.stack.Pop(KindAddress)
	if err != nil {
		return err
	}
	t := ctx.temps.New()
	ctx.emit(ir.OpMult, idx.Operand(), ir.Immediate(ctx.wordSize), t)
	start := ir.Immediate(base.N)
	if sym, ok := ctx.symbols.ByAddress(base.N); ok && sym.ArrayParam {
		start = ir.Direct(base.N)
	}
	ctx.emit(ir.OpAdd, start, t, t)
	ctx.stack.Push(Value{Kind: KindIndirect, N: t.Value})
	return nil
}

func (ctx *Context) endIf() error {
	jpf, err := ctx.stack.Pop(KindJump)
	if err != nil {
		return err
	}
	cond, err := ctx.stack.Pop(operandKinds...)
	if err != nil {
		return err
	}
	return ctx.patch(jpf.N, ir.OpJpf, cond.Operand(), ir.Direct(ctx.code.NextIndex()))
}

// elseJump closes the then branch: its JPF skips past the JP reserved here,
// which in turn skips the else branch.
func (ctx *Context) elseJump() error {
	jpf, err := ctx.stack.Pop(KindJump)
	if err != nil {
		return err
	}
	cond, err := ctx.stack.Pop(operandKinds...)
	if err != nil {
		return err
	}
	if err := ctx.patch(jpf.N, ir.OpJpf, cond.Operand(), ir.Direct(ctx.code.NextIndex()+1)); err != nil {
		return err
	}
	ctx.stack.Push(Jump(ctx.code.Reserve()))
	return nil
}

func (ctx *Context) endIfElse() error {
	jp, err := ctx.stack.Pop(KindJump)
	if err != nil {
		return err
	}
	return ctx.patch(jp.N, ir.OpJp, ir.Direct(ctx.code.NextIndex()))
}

func (ctx *Context) endWhile() error {
	jpf, err := ctx.stack.Pop(KindJump)
	if err != nil {
		return err
	}
	cond, err := ctx.stack.Pop(operandKinds...)
	if err != nil {
		return err
	}
	header, err := ctx.stack.Pop(KindJump)
	if err != nil {
		return err
	}
	ctx.emit(ir.OpJp, ir.Direct(header.N))
	end := ctx.code.NextIndex()
	if err := ctx.patch(jpf.N, ir.OpJpf, cond.Operand(), ir.Direct(end)); err != nil {
		return err
	}
	return ctx.closeBreaks(end)
}

func (ctx *Context) closeBreaks(target int) error {
	jumps, err := ctx.breaks.Pop()
	if err != nil {
		return err
	}
	for _, idx := range jumps {
		if err := ctx.patch(idx, ir.OpJp, ir.Direct(target)); err != nil {
			return err
		}
	}
	return nil
}

// endCase fills the test reserved by CASE_SAVE: compare the switch subject
// with the case value and jump to whatever follows the case body when they
// differ.
func (ctx *Context) endCase() error {
	test, err := ctx.stack.Pop(KindJump)
	if err != nil {
		return err
	}
	value, err := ctx.stack.Pop(operandKinds...)
	if err != nil {
		return err
	}
	subject, err := ctx.stack.Peek(operandKinds...)
	if err != nil {
		return err
	}
	t := ctx.temps.New()
	if err := ctx.patch(test.N, ir.OpEq, subject.Operand(), value.Operand(), t); err != nil {
		return err
	}
	return ctx.patch(test.N+1, ir.OpJpf, t, ir.Direct(ctx.code.NextIndex()))
}

func (ctx *Context) endSwitch() error {
	if _, err := ctx.stack.Pop(operandKinds...); err != nil {
		return err
	}
	return ctx.closeBreaks(ctx.code.NextIndex())
}

func (ctx *Context) beginCall(tok token.Token) error {
	v, err := ctx.stack.Peek(KindAddress)
	if err != nil {
		return err
	}
	frame := callFrame{line: tok.Line}
	if sym, ok := ctx.symbols.ByAddress(v.N); ok {
		frame.name = sym.Lexeme
		if sym.Role == symtab.RoleFunc {
			frame.callee = sym
			frame.arity = len(sym.Params)
		} else {
			ctx.diags.Semantic(tok.Line, "'%s' is not a function", sym.Lexeme)
		}
	}
	ctx.calls = append(ctx.calls, frame)
	return nil
}

// endCall checks the argument count and pops the arguments, returning them
// in source order. The callee stays on the stack as the value of the call.
func (ctx *Context) endCall() ([]Value, error) {
	n := len(ctx.calls)
	if n == 0 {
		return nil, fmt.Errorf("%w: no call in progress", ErrInternal)
	}
	frame := ctx.calls[n-1]
	ctx.calls = ctx.calls[:n-1]
	if (frame.callee != nil || frame.builtin) && frame.args != frame.arity {
		ctx.diags.Semantic(frame.line, "mismatch in numbers of arguments of '%s' : expected %d , got %d",
			frame.name, frame.arity, frame.args)
	}
	args := make([]Value, frame.args)
	for i := frame.args - 1; i >= 0; i-- {
		v, err := ctx.stack.Pop(operandKinds...)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (ctx *Context) endOutput() error {
	args, err := ctx.endCall()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		ctx.stack.Push(Address(ctx.temps.New().Value))
		return nil
	}
	v := args[0]
	ctx.emit(ir.OpPrint, v.Operand())
	v.Literal = false
	ctx.stack.Push(v)
	return nil
}
