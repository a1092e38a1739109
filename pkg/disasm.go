package ketchup

import (
	"fmt"
	"strconv"
	"strings"
)

// Disassemble lists a program one instruction per line. Function bodies
// pushed by the program follow it, each under its own header, in the order
// they appear.
func Disassemble(p Program) string {
	var sb strings.Builder
	disassemble(&sb, "main", p)

	return sb.String()
}

func disassemble(sb *strings.Builder, label string, p Program) {
	fmt.Fprintf(sb, "%s:\n", label)

	var nested []Function
	for i, op := range p {
		fmt.Fprintf(sb, "%04d %s\n", i, formatOp(op))

		if push, ok := op.(Push); ok {
			if fn, ok := push.Value.(Function); ok {
				nested = append(nested, fn)
			}
		}
	}

	for i, fn := range nested {
		sb.WriteString("\n")
		disassemble(sb, fmt.Sprintf("%s.%d(%s)", label, i, strings.Join(fn.Params, ", ")), fn.Body)
	}
}

func formatOp(op Op) string {
	switch op := op.(type) {
	case Push:
		return fmt.Sprintf("%s %s", op.Opcode(), formatValue(op.Value))
	case JumpUnless:
		return fmt.Sprintf("%s %+d", op.Opcode(), int32(op))
	case JumpIf:
		return fmt.Sprintf("%s %+d", op.Opcode(), int32(op))
	case Jump:
		return fmt.Sprintf("%s %+d", op.Opcode(), int32(op))
	case Name:
		return fmt.Sprintf("%s %s", op.Opcode(), string(op))
	case nil:
		return "<nil>"
	default:
		return op.Opcode().String()
	}
}

func formatValue(v Value) string {
	switch v := v.(type) {
	case StringLiteral:
		return strconv.Quote(string(v))
	case CharLiteral:
		return strconv.QuoteRune(rune(v))
	case Function:
		return fmt.Sprintf("<function/%d>", len(v.Params))
	case Native:
		return fmt.Sprintf("<native %s>", v.Name)
	case nil:
		return "<none>"
	default:
		return v.String()
	}
}
