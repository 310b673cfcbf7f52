package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders bc as a human-readable instruction listing: the top
// level code section first, then one section per entry of the function
// table, each instruction prefixed with its byte offset and any pool-index
// operand annotated with the literal or function it names. This supersedes
// the teacher's per-opcode DiassembleBytecode switch — the generic
// OpCodeDefinition table here already carries each opcode's operand widths,
// so one disassemble loop covers every instruction instead of one case per
// opcode family.
func Disassemble(bc Bytecode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "; %d literal(s), %d function(s)\n", len(bc.Literals), len(bc.Functions))
	b.WriteString("section <top-level>\n")
	disassembleSection(&b, bc, bc.Code)
	for i, fn := range bc.Functions {
		fmt.Fprintf(&b, "\nsection %s (function #%d, %d param(s))\n", fn.Name, i, len(fn.ParamNames))
		disassembleSection(&b, bc, fn.Code)
	}
	return b.String()
}

func disassembleSection(b *strings.Builder, bc Bytecode, code []byte) {
	ip := 0
	for ip < len(code) {
		op := Opcode(code[ip])
		def, err := Get(op)
		if err != nil {
			fmt.Fprintf(b, "%04d ERROR %s\n", ip, err.Error())
			ip++
			continue
		}
		operands := make([]int, len(def.OperandWidths))
		offset := ip + 1
		for i, w := range def.OperandWidths {
			operands[i] = ReadOperand(code, offset, w)
			offset += w
		}
		fmt.Fprintf(b, "%04d %-28s", ip, def.Name)
		for i, v := range operands {
			fmt.Fprintf(b, " %d", v)
			b.WriteString(annotation(bc, op, i, v))
		}
		b.WriteString("\n")
		ip = offset
	}
}

// annotation decorates a pool-index operand with the literal, function, or
// jump target it refers to, so a reader doesn't have to cross-reference the
// literal pool or function table by hand.
func annotation(bc Bytecode, op Opcode, operandIndex, operand int) string {
	switch op {
	case OP_LITERAL, OP_LITERAL_LONG, OP_VAR_DECL, OP_VAR_DECL_LONG:
		if operand >= 0 && operand < len(bc.Literals) {
			return fmt.Sprintf(" (%s)", bc.Literals[operand].PrettyPrint())
		}
	case OP_FN_DECL, OP_FN_DECL_LONG:
		if operand >= 0 && operand < len(bc.Functions) {
			return fmt.Sprintf(" (%s)", bc.Functions[operand].Name)
		}
	case OP_JUMP, OP_IF_FALSE_JUMP, OP_FOREACH_NEXT:
		return " (target)"
	case OP_FOREACH_BEGIN:
		if operandIndex < 2 {
			if operand >= 0 && operand < len(bc.Literals) {
				return fmt.Sprintf(" (%s)", bc.Literals[operand].PrettyPrint())
			}
		}
	}
	return ""
}
