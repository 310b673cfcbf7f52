package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&disasmCmd{}, "")

	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Println("\nWelcome to Xvr!")
		runRepl(os.Stdin, os.Stdout, false)
		return
	}

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
