// Package compiler turns a parsed Xvr program into a bytecode image the
// interp package can execute (spec.md §4.5). code.go defines the opcode
// catalog, instruction encoding, and the in-memory bytecode image shape;
// compiler.go walks the AST and emits instructions against it.
package compiler

import (
	"encoding/binary"
	"fmt"

	"github.com/xvr-lang/xvr/value"
)

// Opcode is one instruction in a compiled code section.
type Opcode byte

const (
	OP_PASS Opcode = iota
	OP_ASSERT
	OP_PRINT
	OP_LITERAL
	OP_LITERAL_LONG
	OP_LITERAL_RAW
	OP_NEGATE
	OP_ADDITION
	OP_SUBTRACTION
	OP_MULTIPLICATION
	OP_DIVISION
	OP_MODULO
	OP_VAR_ADDITION_ASSIGN
	OP_VAR_SUBTRACTION_ASSIGN
	OP_VAR_MULTIPLICATION_ASSIGN
	OP_VAR_DIVISION_ASSIGN
	OP_VAR_MODULO_ASSIGN
	OP_GROUPING_BEGIN
	OP_GROUPING_END
	OP_SCOPE_BEGIN
	OP_SCOPE_END
	OP_VAR_DECL
	OP_VAR_DECL_LONG
	OP_FN_DECL
	OP_FN_DECL_LONG
	OP_VAR_ASSIGN
	OP_TYPE_CAST
	OP_TYPE_OF
	OP_COMPARE_EQUAL
	OP_NOT_EQUAL
	OP_LESS
	OP_LESS_EQUAL
	OP_GREATER
	OP_GREATER_EQUAL
	OP_INVERT
	OP_AND
	OP_OR
	OP_JUMP
	OP_IF_FALSE_JUMP
	OP_FN_CALL
	OP_DOT
	OP_FN_RETURN
	OP_POP_STACK
	OP_IMPORT
	OP_INDEX
	OP_INDEX_ASSIGN
	OP_INDEX_ASSIGN_INTERMEDIATE

	// OP_ARRAY_BUILD/OP_DICT_BUILD pop a fixed count of stack values (for
	// a dict, key/value pairs back to back) and push one assembled
	// container. Every array/dict literal compiles through these two
	// opcodes, constant or not ([1, 2] as well as [x, f()]); no literal
	// container is folded into the literal pool.
	OP_ARRAY_BUILD
	OP_DICT_BUILD

	// OP_FOREACH_BEGIN/OP_FOREACH_NEXT/OP_FOREACH_END drive the foreach
	// loop. BEGIN pops the collection and pushes an iterator frame onto
	// the interpreter's (Go-side) foreach stack, keyed off the key/value
	// identifier literals and whether the source used the "(k, v in d)"
	// form. NEXT advances it: exhausted jumps to its operand and pops the
	// frame itself; otherwise it binds key/value in the current scope and
	// falls through to the body. END pops the frame unconditionally, for
	// the early-exit path a break takes around NEXT's own cleanup.
	OP_FOREACH_BEGIN
	OP_FOREACH_NEXT
	OP_FOREACH_END
)

// Index-assignment qualifiers: the one-byte operand of OP_INDEX_ASSIGN,
// selecting plain overwrite vs. a compound read-combine-store.
const (
	IndexAssignPlain byte = iota
	IndexAssignAdd
	IndexAssignSub
	IndexAssignMul
	IndexAssignDiv
	IndexAssignMod
)

// OpCodeDefinition names an opcode and the byte-width of each of its
// operands, mirroring the teacher's disassembler-friendly shape.
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*OpCodeDefinition{
	OP_PASS:                      {"PASS", nil},
	OP_ASSERT:                    {"ASSERT", nil},
	OP_PRINT:                     {"PRINT", nil},
	OP_LITERAL:                   {"LITERAL", []int{1}},
	OP_LITERAL_LONG:              {"LITERAL_LONG", []int{2}},
	OP_LITERAL_RAW:               {"LITERAL_RAW", nil},
	OP_NEGATE:                    {"NEGATE", nil},
	OP_ADDITION:                  {"ADDITION", nil},
	OP_SUBTRACTION:               {"SUBTRACTION", nil},
	OP_MULTIPLICATION:            {"MULTIPLICATION", nil},
	OP_DIVISION:                  {"DIVISION", nil},
	OP_MODULO:                    {"MODULO", nil},
	OP_VAR_ADDITION_ASSIGN:       {"VAR_ADDITION_ASSIGN", nil},
	OP_VAR_SUBTRACTION_ASSIGN:    {"VAR_SUBTRACTION_ASSIGN", nil},
	OP_VAR_MULTIPLICATION_ASSIGN: {"VAR_MULTIPLICATION_ASSIGN", nil},
	OP_VAR_DIVISION_ASSIGN:       {"VAR_DIVISION_ASSIGN", nil},
	OP_VAR_MODULO_ASSIGN:         {"VAR_MODULO_ASSIGN", nil},
	OP_GROUPING_BEGIN:            {"GROUPING_BEGIN", nil},
	OP_GROUPING_END:              {"GROUPING_END", nil},
	OP_SCOPE_BEGIN:               {"SCOPE_BEGIN", nil},
	OP_SCOPE_END:                 {"SCOPE_END", nil},
	OP_VAR_DECL:                  {"VAR_DECL", []int{1}},
	OP_VAR_DECL_LONG:             {"VAR_DECL_LONG", []int{2}},
	OP_FN_DECL:                   {"FN_DECL", []int{1}},
	OP_FN_DECL_LONG:              {"FN_DECL_LONG", []int{2}},
	// VAR_ASSIGN and its compound siblings pop the new value then the
	// target identifier, store the result in scope, and push the stored
	// value back so assignment can be used as an expression
	// ("x = (y = 2);").
	OP_VAR_ASSIGN: {"VAR_ASSIGN", nil},
	OP_TYPE_CAST:                 {"TYPE_CAST", nil},
	OP_TYPE_OF:                   {"TYPE_OF", nil},
	OP_COMPARE_EQUAL:             {"COMPARE_EQUAL", nil},
	OP_NOT_EQUAL:                 {"NOT_EQUAL", nil},
	OP_LESS:                      {"LESS", nil},
	OP_LESS_EQUAL:                {"LESS_EQUAL", nil},
	OP_GREATER:                   {"GREATER", nil},
	OP_GREATER_EQUAL:             {"GREATER_EQUAL", nil},
	OP_INVERT:                    {"INVERT", nil},
	OP_AND:                       {"AND", nil},
	OP_OR:                        {"OR", nil},
	OP_JUMP:                      {"JUMP", []int{2}},
	OP_IF_FALSE_JUMP:             {"IF_FALSE_JUMP", []int{2}},
	OP_FN_CALL:                   {"FN_CALL", []int{1}},
	OP_DOT:                       {"DOT", nil},
	OP_FN_RETURN:                 {"FN_RETURN", nil},
	OP_POP_STACK:                 {"POP_STACK", nil},
	OP_IMPORT:                    {"IMPORT", nil},
	OP_INDEX:                     {"INDEX", nil},
	OP_INDEX_ASSIGN:              {"INDEX_ASSIGN", []int{1}},
	OP_INDEX_ASSIGN_INTERMEDIATE: {"INDEX_ASSIGN_INTERMEDIATE", nil},
	OP_ARRAY_BUILD:               {"ARRAY_BUILD", []int{2}},
	OP_DICT_BUILD:                {"DICT_BUILD", []int{2}},
	OP_FOREACH_BEGIN:             {"FOREACH_BEGIN", []int{1, 1, 1}},
	OP_FOREACH_NEXT:              {"FOREACH_NEXT", []int{2}},
	OP_FOREACH_END:               {"FOREACH_END", nil},
}

// Get looks up an opcode's definition.
func Get(op Opcode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("opcode %d undefined", op)
	}
	return def, nil
}

// MakeInstruction encodes op and its operands (big-endian) into a byte
// slice ready to append to a code section.
func MakeInstruction(op Opcode, operands ...int) ([]byte, error) {
	def, err := Get(op)
	if err != nil {
		return nil, err
	}
	length := 1
	for _, w := range def.OperandWidths {
		length += w
	}
	instr := make([]byte, length)
	instr[0] = byte(op)
	offset := 1
	for i, width := range def.OperandWidths {
		switch width {
		case 1:
			instr[offset] = byte(operands[i])
		case 2:
			binary.BigEndian.PutUint16(instr[offset:], uint16(operands[i]))
		}
		offset += width
	}
	return instr, nil
}

// ReadOperand decodes the operand of width bytes starting at offset.
func ReadOperand(code []byte, offset, width int) int {
	switch width {
	case 1:
		return int(code[offset])
	case 2:
		return int(binary.BigEndian.Uint16(code[offset:]))
	}
	return 0
}

// FunctionProto is one entry of a bytecode image's function section: the
// compiled sub-image for a single FnDecl plus the metadata the interpreter
// needs to construct a value.Function at FN_DECL time (spec.md §4.5
// "Function declarations recursively run a child compiler").
type FunctionProto struct {
	Name          string
	ParamNames    []string
	ParamTypes    []value.Type
	HasRestParam  bool
	RestParamName string
	ReturnTypes   []value.Type
	Code          []byte
}

// Bytecode is the compiled image: a literal pool, a function section, and
// a top-level code section (spec.md §4.5 "Internal state" / §6 "Bytecode
// image format").
type Bytecode struct {
	Literals  []value.Value
	Functions []FunctionProto
	Code      []byte
	Exports   []string
}
