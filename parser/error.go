package parser

import "fmt"

// SyntaxError is the typed error the parser raises on a malformed
// construct. Column tracking was dropped along with Token.Column
// (spec.md's diagnostics are line-based); Line alone is enough to locate
// the offending statement for the default error callback.
type SyntaxError struct {
	Line    int32
	Message string
}

func CreateSyntaxError(line int32, message string) SyntaxError {
	return SyntaxError{Line: line, Message: message}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: line %d: %s", e.Line, e.Message)
}
