// Package codegen runs the semantic action of every reduction, turning the
// parse into three-address code as it happens.
package codegen

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alizademhdi/C-minus-compiler/pkg/config"
	"github.com/alizademhdi/C-minus-compiler/pkg/diag"
	"github.com/alizademhdi/C-minus-compiler/pkg/grammar"
	"github.com/alizademhdi/C-minus-compiler/pkg/ir"
	"github.com/alizademhdi/C-minus-compiler/pkg/symtab"
	"github.com/alizademhdi/C-minus-compiler/pkg/token"
)

// ErrInternal marks a broken invariant of the generator itself, as opposed
// to a problem in the program being compiled.
var ErrInternal = errors.New("internal compiler error")

type callFrame struct {
	callee  *symtab.Symbol // nil for the builtin and for undefined names
	name    string
	arity   int
	args    int
	line    int
	builtin bool
}

// Context is the state of one compilation.
type Context struct {
	code    *ir.Store
	temps   *ir.Temps
	symbols *symtab.Table
	stack   Stack
	breaks  Breaks
	calls   []callFrame

	wordSize  int
	cfg       *config.Config
	diags     *diag.List
	suspended bool
}

func NewContext(cfg *config.Config, diags *diag.List) *Context {
	return &Context{
		code:     ir.NewStore(),
		temps:    ir.NewTemps(cfg.TempBase, cfg.WordSize),
		symbols:  symtab.New(cfg.DataBase, cfg.WordSize, cfg.TempBase),
		wordSize: cfg.WordSize,
		cfg:      cfg,
		diags:    diags,
	}
}

func (ctx *Context) Code() *ir.Store        { return ctx.code }
func (ctx *Context) Symbols() *symtab.Table { return ctx.symbols }
func (ctx *Context) Temps() *ir.Temps       { return ctx.temps }
func (ctx *Context) Stack() []Value         { return ctx.stack.Values() }

// Suspended reports whether code generation stopped following the parse
// because syntax recovery left the semantic stack out of step.
func (ctx *Context) Suspended() bool { return ctx.suspended }

// Reduce runs the action of production p. lookahead is the token the parser
// holds at the reduction; markers take their lexeme from it.
//
// A failure is fatal only for a syntactically clean program; after a syntax
// error it suspends code generation for the rest of the parse.
func (ctx *Context) Reduce(p grammar.Production, lookahead token.Token) error {
	if ctx.suspended {
		return nil
	}
	err := ctx.reduce(p, lookahead)
	if err == nil {
		return nil
	}
	if ctx.diags.Has(diag.Syntax) {
		ctx.suspended = true
		return nil
	}
	return fmt.Errorf("reducing %s: %w", p, err)
}

func (ctx *Context) reduce(p grammar.Production, tok token.Token) error {
	switch p {
	case grammar.Accept, grammar.Program, grammar.DeclListMore, grammar.DeclListOne,
		grammar.DeclVar, grammar.DeclFun, grammar.VarDecl, grammar.ArrayDecl, grammar.TypeInt,
		grammar.ParamsList, grammar.ParamsVoid, grammar.ParamListMore, grammar.ParamListOne,
		grammar.CompoundStmt, grammar.LocalDeclsMore, grammar.LocalDeclsEmpty,
		grammar.StmtListMore, grammar.StmtListEmpty, grammar.StmtExpr, grammar.StmtCompound,
		grammar.StmtSelection, grammar.StmtIteration, grammar.StmtReturn, grammar.StmtSwitch,
		grammar.BreakStmt, grammar.EmptyStmt, grammar.ReturnVoid,
		grammar.CaseStmtsMore, grammar.CaseStmtsEmpty, grammar.DefaultStmt, grammar.DefaultEmpty,
		grammar.SimpleExpr, grammar.VarScalar, grammar.RelSingle,
		grammar.RelopLess, grammar.RelopEqual, grammar.AddSingle, grammar.AddopPlus, grammar.AddopMinus,
		grammar.MulSingle, grammar.MulopTimes, grammar.MulopDivide,
		grammar.FactorParen, grammar.FactorVar, grammar.FactorCall, grammar.FactorNum, grammar.FactorOutput,
		grammar.ArgsList, grammar.ArgsEmpty:
		return nil

	// declarations
	case grammar.MarkPType:
		ctx.stack.Push(Value{Kind: KindType, Type: symtab.TypeInt})
		return nil
	case grammar.TypeVoid:
		ctx.stack.Push(Value{Kind: KindType, Type: symtab.TypeVoid})
		return nil
	case grammar.MarkPID:
		return ctx.identifier(tok)
	case grammar.MarkVarDec:
		return ctx.declareVar()
	case grammar.MarkPSize:
		ctx.stack.Push(Value{Kind: KindSize, N: ctx.number(tok)})
		return nil
	case grammar.MarkArrayDec:
		return ctx.declareArray()
	case grammar.MarkFunc:
		return ctx.beginFunction()
	case grammar.ParamScalar, grammar.ParamArray:
		return ctx.param(p == grammar.ParamArray)
	case grammar.FunDecl:
		return ctx.endFunction()

	// expressions
	case grammar.MarkPNum:
		ctx.stack.Push(Value{Kind: KindImmediate, N: ctx.number(tok), Literal: true, Line: tok.Line, Column: tok.Column})
		return nil
	case grammar.MarkPOp:
		op, ok := ir.OpForSymbol(tok.Lexeme)
		if !ok {
			return fmt.Errorf("%w: '%s' is not an operator", ErrInternal, tok.Lexeme)
		}
		ctx.stack.Push(Value{Kind: KindOperator, Op: op})
		return nil
	case grammar.RelExpr, grammar.AddExpr, grammar.MulExpr:
		return ctx.binary()
	case grammar.AssignExpr:
		return ctx.assign()
	case grammar.VarIndexed:
		return ctx.index()
	case grammar.ExprStmt:
		v, err := ctx.stack.Pop(operandKinds...)
		if err != nil {
			return err
		}
		if v.Kind == KindImmediate && v.Literal {
			ctx.warn(config.WarnUnusedValue, v.Line, v.Column, "value %d of expression statement is not used", v.N)
		}
		return nil
	case grammar.ReturnExpr:
		_, err := ctx.stack.Pop(operandKinds...)
		return err

	// control flow
	case grammar.MarkSave:
		ctx.stack.Push(Jump(ctx.code.Reserve()))
		return nil
	case grammar.IfStmt:
		return ctx.endIf()
	case grammar.MarkJpfSave:
		return ctx.elseJump()
	case grammar.IfElseStmt:
		return ctx.endIfElse()
	case grammar.MarkLabelWhile:
		ctx.breaks.Push()
		ctx.stack.Push(Jump(ctx.code.NextIndex()))
		return nil
	case grammar.WhileStmt:
		return ctx.endWhile()
	case grammar.MarkBreakJP:
		if ctx.breaks.Depth() == 0 {
			ctx.diags.Semantic(tok.Line, "no 'while' or 'switch' found for 'break'")
			return nil
		}
		return ctx.breaks.Add(ctx.code.Reserve())
	case grammar.MarkLabelSwitch:
		ctx.breaks.Push()
		return nil
	case grammar.MarkCaseSave:
		idx := ctx.code.Reserve()
		ctx.code.Reserve()
		ctx.stack.Push(Jump(idx))
		return nil
	case grammar.CaseStmt:
		return ctx.endCase()
	case grammar.SwitchStmt:
		return ctx.endSwitch()

	// calls
	case grammar.MarkCallBegin:
		return ctx.beginCall(tok)
	case grammar.MarkOutputBegin:
		ctx.calls = append(ctx.calls, callFrame{name: "output", arity: 1, line: tok.Line, builtin: true})
		return nil
	case grammar.ArgListMore, grammar.ArgListOne:
		if len(ctx.calls) == 0 {
			return fmt.Errorf("%w: argument outside a call", ErrInternal)
		}
		ctx.calls[len(ctx.calls)-1].args++
		return nil
	case grammar.Call:
		_, err := ctx.endCall()
		return err
	case grammar.OutputCall:
		return ctx.endOutput()
	}
	return fmt.Errorf("%w: no action for production %d", ErrInternal, int(p))
}

// Finish checks that a syntactically clean compilation left nothing open:
// every reserved slot patched, no break frame, call or stack value remaining.
func (ctx *Context) Finish() error {
	if ctx.suspended || ctx.diags.Has(diag.Syntax) {
		return nil
	}
	if pending := ctx.code.Pending(); len(pending) > 0 {
		return fmt.Errorf("%w: instructions %v were never patched", ErrInternal, pending)
	}
	if n := ctx.breaks.Depth(); n > 0 {
		return fmt.Errorf("%w: %d break frames left open", ErrInternal, n)
	}
	if n := len(ctx.calls); n > 0 {
		return fmt.Errorf("%w: %d calls left open", ErrInternal, n)
	}
	if n := ctx.stack.Len(); n > 0 {
		return fmt.Errorf("%w: %d values left on the semantic stack", ErrInternal, n)
	}
	return nil
}

// number parses the lexeme of a NUM token; a literal that does not fit is
// reported and replaced by zero.
func (ctx *Context) number(tok token.Token) int {
	n, err := strconv.Atoi(tok.Lexeme)
	if err != nil {
		ctx.diags.Semantic(tok.Line, "integer literal '%s' is out of range", tok.Lexeme)
		return 0
	}
	return n
}

func (ctx *Context) warn(w config.Warning, line, column int, format string, args ...interface{}) {
	if !ctx.cfg.IsWarningEnabled(w) {
		return
	}
	ctx.diags.Warn(ctx.cfg.Warnings[w].Name, line, column, format, args...)
}
