package main

import (
	"errors"
	"os"

	"github.com/alizademhdi/C-minus-compiler/pkg/cli"
	"github.com/alizademhdi/C-minus-compiler/pkg/compiler"
	"github.com/alizademhdi/C-minus-compiler/pkg/config"
	"github.com/alizademhdi/C-minus-compiler/pkg/diag"
	"github.com/alizademhdi/C-minus-compiler/pkg/grammar"
	"github.com/alizademhdi/C-minus-compiler/pkg/ir"
	"github.com/alizademhdi/C-minus-compiler/pkg/lalr"
	"github.com/alizademhdi/C-minus-compiler/pkg/parser"
	"github.com/alizademhdi/C-minus-compiler/pkg/token"
	"github.com/alizademhdi/C-minus-compiler/pkg/util"
)

func main() {
	app := cli.NewApp("cminus")
	app.Synopsis = "[options] <input.cm>"
	app.Description = "A single-pass compiler for C-minus. Parses with an LALR(1) table, recovers from syntax errors in panic mode and emits backpatched three-address code."
	app.Authors = []string{"alizademhdi"}
	app.Repository = "<https://github.com/alizademhdi/C-minus-compiler>"

	var (
		outDir    string
		format    string
		dumpTable string
		tableFile string
		verbose   bool
	)

	cfg := config.NewConfig()
	fs := app.FlagSet
	fs.String(&outDir, "output-dir", "o", ".", "Write the output files into <dir>.", "dir")
	fs.String(&format, "format", "", "plain", "Listing format of output.txt (plain, tuple).", "format")
	fs.String(&dumpTable, "dump-table", "", "", "Write the parse table as YAML to <file> and exit.", "file")
	fs.String(&tableFile, "table", "", "", "Load the parse table from <file> instead of building it.", "file")
	fs.Int(&cfg.DataBase, "data-base", "", cfg.DataBase, "First address of program variables.", "addr")
	fs.Int(&cfg.TempBase, "temp-base", "", cfg.TempBase, "First address of compiler temporaries.", "addr")
	fs.Bool(&verbose, "verbose", "v", false, "Report each compilation phase on stderr.")
	flags := cfg.SetupFlagGroups(fs)

	app.Action = func(inputFiles []string) error {
		flags.Apply(cfg)
		if err := cfg.Validate(); err != nil {
			util.Error(token.Token{FileIndex: -1}, "%v", err)
		}
		listingFormat, err := ir.ParseFormat(format)
		if err != nil {
			util.Error(token.Token{FileIndex: -1}, "%v", err)
		}

		if dumpTable != "" {
			util.Info(verbose, "building parse table")
			if err := writeTable(dumpTable, lalr.Default()); err != nil {
				util.Error(token.Token{FileIndex: -1}, "could not write parse table: %v", err)
			}
			return nil
		}
		if len(inputFiles) != 1 {
			util.Error(token.Token{FileIndex: -1}, "expected exactly one input file, got %d", len(inputFiles))
		}

		table := lalr.Default()
		if tableFile != "" {
			util.Info(verbose, "loading parse table from %s", tableFile)
			table = readTable(tableFile)
		}

		util.Info(verbose, "parse table has %d states", table.NumStates())

		path := inputFiles[0]
		content, err := os.ReadFile(path)
		if err != nil {
			util.Error(token.Token{FileIndex: -1}, "could not read file '%s': %v", path, err)
		}
		source := []rune(string(content))
		util.SetSourceFiles([]util.SourceFileRecord{{Name: path, Content: source}})

		util.Info(verbose, "compiling %s", path)
		res, err := compiler.Compile(source, 0, cfg, table)
		switch {
		case res == nil:
			util.Error(token.Token{FileIndex: -1}, "%v", err)
		case errors.Is(err, parser.ErrUnexpectedEOF):
			util.Info(verbose, "parsing stopped at end of input")
		case err != nil:
			util.Error(token.Token{FileIndex: -1}, "%v", err)
		}
		if res.Suspended {
			util.Info(verbose, "code generation suspended after a syntax error")
		}
		for _, w := range res.Diags.Of(diag.Warning) {
			util.Warn(w, 0)
		}

		util.Info(verbose, "%d syntax, %d lexical, %d semantic errors; %d instructions, %d temporaries",
			res.Diags.Count(diag.Syntax), res.Diags.Count(diag.Lexical), res.Diags.Count(diag.Semantic), res.Code.Len(), res.Temps)
		util.Info(verbose, "writing output files to %s", outDir)
		if err := res.WriteFiles(outDir, listingFormat); err != nil {
			util.Error(token.Token{FileIndex: -1}, "%v", err)
		}
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

func writeTable(path string, table *lalr.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := table.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readTable(path string) *lalr.Table {
	f, err := os.Open(path)
	if err != nil {
		util.Error(token.Token{FileIndex: -1}, "could not open parse table '%s': %v", path, err)
	}
	defer f.Close()
	table, err := lalr.Decode(f, grammar.CMinus())
	if err != nil {
		util.Error(token.Token{FileIndex: -1}, "parse table '%s': %v", path, err)
	}
	return table
}
