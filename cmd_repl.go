package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
	"github.com/xvr-lang/xvr/ast"
	"github.com/xvr-lang/xvr/interp"
	"github.com/xvr-lang/xvr/lexer"
	"github.com/xvr-lang/xvr/parser"
	"github.com/xvr-lang/xvr/token"
)

// replCmd implements the "repl" subcommand: a line-buffered interactive
// session that lexes, parses, and runs each complete statement against one
// persistent Interpreter, so declarations made on one line are visible to
// the next.
type replCmd struct {
	dumpAST bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive Xvr REPL session" }
func (*replCmd) Usage() string {
	return `repl:
  Start interactive REPL session.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.dumpAST, "dumpAST", false, "print each statement's parsed AST as JSON before running it")
}

// lineReader is the minimal surface runRepl needs to fetch one line at a
// time, satisfied both by a readline.Instance (interactive stdin, with
// history and editing) and by a bufio.Scanner wrapper (any other reader,
// notably in tests).
type lineReader interface {
	readLine() (string, bool)
}

type readlineSource struct{ rl *readline.Instance }

func (s readlineSource) readLine() (string, bool) {
	line, err := s.rl.Readline()
	if err != nil {
		return "", false
	}
	return line, true
}

type scannerSource struct{ sc *bufio.Scanner }

func (s scannerSource) readLine() (string, bool) {
	if !s.sc.Scan() {
		return "", false
	}
	return s.sc.Text(), true
}

func runRepl(in io.Reader, out io.Writer, dumpAST bool) {
	interpreter := interp.New()
	var buffer strings.Builder

	var src lineReader
	var rl *readline.Instance
	if in == io.Reader(os.Stdin) {
		instance, err := readline.NewEx(&readline.Config{Stdout: out})
		if err == nil {
			rl = instance
			defer rl.Close()
			src = readlineSource{rl}
		}
	}
	if src == nil {
		src = scannerSource{bufio.NewScanner(in)}
	}

	for {
		prompt := ">>> "
		if buffer.Len() > 0 {
			prompt = "... "
		}
		if rl != nil {
			rl.SetPrompt(prompt)
		} else {
			fmt.Fprint(out, prompt)
		}

		line, ok := src.readLine()
		if !ok {
			return
		}
		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			os.Exit(0)
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		tokens := lexer.New(source).Scan()
		if !isInputReady(tokens) {
			continue
		}

		program := parser.FromTokens(tokens).ParseProgram()
		if errs := collectParseErrors(program); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, e)
			}
			buffer.Reset()
			continue
		}

		if dumpAST {
			dumped, err := parser.PrintASTJSON(program)
			if err != nil {
				fmt.Fprintf(os.Stderr, "💥 %s\n", err.Error())
			} else {
				fmt.Fprintln(out, dumped)
			}
		}

		if err := interpreter.RunSource(source); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		buffer.Reset()
	}
}

// isInputReady reports whether tokens forms a complete statement: braces
// must balance and the last non-EOF token must not be one that obviously
// expects more to follow. Used to let the REPL accept multi-line function
// and block bodies instead of erroring on the first unmatched '{'.
func isInputReady(tokens []token.Token) bool {
	braceBalance := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LCUR:
			braceBalance++
		case token.RCUR:
			braceBalance--
		}
	}
	if braceBalance > 0 {
		return false
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true
	}

	switch last.TokenType {
	case token.ASSIGN, token.LCUR, token.IF, token.ELSE,
		token.WHILE, token.FOR, token.FUNC, token.VAR, token.CONST,
		token.AND_AND, token.OR_OR:
		return false
	}
	return true
}

func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].TokenType != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}

// collectParseErrors walks a parsed program for the ast.ErrorStmt nodes the
// parser's panic-mode recovery leaves behind in place of malformed
// statements.
func collectParseErrors(program []ast.Stmt) []string {
	var out []string
	for _, stmt := range program {
		if es, ok := stmt.(ast.ErrorStmt); ok {
			out = append(out, fmt.Sprintf("syntax error: line %d: %s", es.Line, es.Message))
		}
	}
	return out
}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\nWelcome to Xvr!")
	runRepl(os.Stdin, os.Stdout, r.dumpAST)
	return subcommands.ExitSuccess
}
