package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/xvr-lang/xvr/compiler"
	"github.com/xvr-lang/xvr/lexer"
	"github.com/xvr-lang/xvr/parser"
)

// disasmCmd implements the "disasm" subcommand: print a bytecode image's
// human-readable instruction listing, the same inspection role the
// teacher's separate emit/dump-bytecode commands served. Accepts either a
// ".xvr" source file (compiled first) or an already-compiled ".xb" image
// (spec.md §6's bytecode wire format, decoded via compiler.Decode).
type disasmCmd struct {
	outFile string
}

func (*disasmCmd) Name() string     { return "disasm" }
func (*disasmCmd) Synopsis() string { return "Print a source or bytecode file's disassembled listing" }
func (*disasmCmd) Usage() string {
	return `disasm <file.xvr|file.xb>:
  Compile (or decode) Xvr code and print the disassembled bytecode.
`
}
func (cmd *disasmCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.outFile, "o", "", "write the listing to this file instead of stdout")
}

func (cmd *disasmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	var bc compiler.Bytecode
	if strings.HasSuffix(args[0], ".xb") {
		bc, err = compiler.Decode(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 Failed to decode bytecode image:\n\t%v\n", err)
			return subcommands.ExitFailure
		}
	} else {
		tokens := lexer.New(string(data)).Scan()
		program := parser.FromTokens(tokens).ParseProgram()
		bc, err = compiler.Compile(program)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 Compilation error:\n\t%v\n", err)
			return subcommands.ExitFailure
		}
	}

	listing := compiler.Disassemble(bc)
	if cmd.outFile == "" {
		fmt.Print(listing)
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(cmd.outFile, []byte(listing), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to write %s: %v\n", cmd.outFile, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
