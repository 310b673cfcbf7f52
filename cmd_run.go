package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"
	"github.com/xvr-lang/xvr/compiler"
	"github.com/xvr-lang/xvr/interp"
	"github.com/xvr-lang/xvr/lexer"
	"github.com/xvr-lang/xvr/parser"
)

// runCmd implements the "run" subcommand: lex, parse, compile, and execute
// a single source file start to finish. A ".xb" argument instead decodes
// and runs an already-compiled image (spec.md §6 "recognized bytecode
// extension .xb"); -c/-o compile a source file to one instead of running it
// (spec.md §6 "-c/--compile FILE, -o/--output FILE").
type runCmd struct {
	compileOnly bool
	outFile     string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute Xvr code from a source or bytecode file" }
func (*runCmd) Usage() string {
	return `run <file.xvr|file.xb>:
  Execute Xvr source, or a previously compiled bytecode image.

run -c <file.xvr>:
  Compile to a bytecode image instead of running it.
`
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.compileOnly, "c", false, "compile to a bytecode image (.xb) instead of running")
	f.StringVar(&r.outFile, "o", "", "bytecode image output path (with -c; defaults to the input name with .xb)")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	if strings.HasSuffix(filename, ".xb") {
		if r.compileOnly {
			fmt.Fprintf(os.Stderr, "💥 -c expects a .xvr source file, not a bytecode image\n")
			return subcommands.ExitUsageError
		}
		in := interp.New()
		if err := in.RunImage(data); err != nil {
			fmt.Fprintf(os.Stderr, "💥 %s\n", err.Error())
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	if !r.compileOnly {
		in := interp.New()
		if err := in.RunSource(string(data)); err != nil {
			fmt.Fprintf(os.Stderr, "💥 %s\n", err.Error())
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	tokens := lexer.New(string(data)).Scan()
	program := parser.FromTokens(tokens).ParseProgram()
	bc, err := compiler.Compile(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Compilation error:\n\t%v\n", err)
		return subcommands.ExitFailure
	}
	image, err := bc.Encode()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to collate bytecode image: %v\n", err)
		return subcommands.ExitFailure
	}
	out := r.outFile
	if out == "" {
		out = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".xb"
	}
	if err := os.WriteFile(out, image, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to write %s: %v\n", out, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
