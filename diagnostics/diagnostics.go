// Package diagnostics provides the default, color-wrapped print/assert/error
// callbacks an Interpreter installs at init (spec.md §4.6 "init(interpreter)
// installs default print/assert/error output callbacks"), grounded on the
// parser package's own use of github.com/fatih/color for its AST dump.
package diagnostics

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	errorColor  = color.New(color.FgRed)
	assertColor = color.New(color.FgRed, color.Bold)
)

// DefaultPrint writes s to stdout followed by a newline, the PRINT opcode's
// default sink.
func DefaultPrint(s string) {
	fmt.Println(s)
}

// DefaultAssert writes a failed assertion's message to stderr in bold red.
func DefaultAssert(message string) {
	assertColor.Fprintln(os.Stderr, "assertion failed: "+message)
}

// DefaultError writes err to stderr in red, the sink for every runtime and
// fatal error class (spec.md §7 "routed to the installed error callback
// (default: standard error, red ANSI color)").
func DefaultError(err error) {
	errorColor.Fprintln(os.Stderr, err.Error())
}
