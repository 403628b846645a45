// Package compiler wires scanner, parser and code generator into one pass
// and writes its artifacts.
package compiler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alizademhdi/C-minus-compiler/pkg/ast"
	"github.com/alizademhdi/C-minus-compiler/pkg/codegen"
	"github.com/alizademhdi/C-minus-compiler/pkg/config"
	"github.com/alizademhdi/C-minus-compiler/pkg/diag"
	"github.com/alizademhdi/C-minus-compiler/pkg/grammar"
	"github.com/alizademhdi/C-minus-compiler/pkg/ir"
	"github.com/alizademhdi/C-minus-compiler/pkg/lalr"
	"github.com/alizademhdi/C-minus-compiler/pkg/lexer"
	"github.com/alizademhdi/C-minus-compiler/pkg/parser"
	"github.com/alizademhdi/C-minus-compiler/pkg/symtab"
)

// Output file names, relative to the output directory.
const (
	ParseTreeFile      = "parse_tree.txt"
	SyntaxErrorsFile   = "syntax_errors.txt"
	LexicalErrorsFile  = "lexical_errors.txt"
	SemanticErrorsFile = "semantic_errors.txt"
	OutputFile         = "output.txt"
)

const (
	noSyntaxErrors   = "There is no syntax error."
	noLexicalErrors  = "There is no lexical error."
	noSemanticErrors = "The input program is semantically correct."
	notGenerated     = "The code has not been generated."
)

type Result struct {
	Tree      *ast.Tree
	Code      *ir.Store
	Symbols   *symtab.Table
	Diags     *diag.List
	Temps     int // temporaries handed out
	Accepted  bool
	Suspended bool
}

// Generated reports whether the program compiled cleanly enough for its
// code to be emitted.
func (r *Result) Generated() bool {
	return !r.Diags.Has(diag.Syntax) && !r.Diags.Has(diag.Semantic)
}

// Compile runs one pass over src. A nil table means the built-in C-minus
// table. The result is filled in as far as compilation got even when err is
// non-nil; err is reserved for fatal conditions (unexpected end of input
// during recovery or an internal error).
func Compile(src []rune, fileIndex int, cfg *config.Config, table *lalr.Table) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if table == nil {
		table = lalr.Default()
	}

	diags := diag.New()
	l := lexer.NewLexer(src, fileIndex, cfg, diags)
	ctx := codegen.NewContext(cfg, diags)
	p := parser.NewParser(table, grammar.CMinus(), l, ctx, diags)
	parsed, err := p.Parse()

	res := &Result{
		Tree:      parsed.Tree,
		Code:      ctx.Code(),
		Symbols:   ctx.Symbols(),
		Diags:     diags,
		Temps:     ctx.Temps().Count(),
		Accepted:  parsed.Accepted,
		Suspended: ctx.Suspended(),
	}
	if err != nil {
		return res, err
	}
	return res, ctx.Finish()
}

// Files renders every artifact keyed by its file name.
func (r *Result) Files(format ir.Format) (map[string][]byte, error) {
	var tree, code bytes.Buffer
	if err := r.Tree.Render(&tree); err != nil {
		return nil, err
	}
	if r.Generated() {
		if err := r.Code.WriteListing(&code, format); err != nil {
			return nil, err
		}
	} else {
		code.WriteString(notGenerated + "\n")
	}
	return map[string][]byte{
		ParseTreeFile:      tree.Bytes(),
		SyntaxErrorsFile:   []byte(r.Diags.Report(diag.Syntax, noSyntaxErrors)),
		LexicalErrorsFile:  []byte(r.Diags.Report(diag.Lexical, noLexicalErrors)),
		SemanticErrorsFile: []byte(r.Diags.Report(diag.Semantic, noSemanticErrors)),
		OutputFile:         code.Bytes(),
	}, nil
}

// WriteFiles writes every artifact into dir, creating it if needed.
func (r *Result) WriteFiles(dir string, format ir.Format) error {
	files, err := r.Files(format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}
