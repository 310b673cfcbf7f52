package compiler

import "fmt"

// SemanticError is raised for a compile-time problem with otherwise
// syntactically valid source: break/continue outside a loop, an invalid
// assignment target, an unknown operator or type annotation, or a parse
// error node reaching the compiler. Undeclared and redeclared names are
// not checked here; the interpreter reports them at run time.
type SemanticError struct {
	Line    int32
	Message string
}

func (e SemanticError) Error() string {
	return fmt.Sprintf("compile error: line %d: %s", e.Line, e.Message)
}

// LimitError is raised when an image would exceed one of the compiler's
// fixed capacity limits (spec.md §4.5 "Limits"): at most 2^16 entries in
// the literal pool, 2^16 bytes per function sub-image, 2^16 functions.
type LimitError struct {
	Message string
}

func (e LimitError) Error() string {
	return fmt.Sprintf("compile error: %s", e.Message)
}
