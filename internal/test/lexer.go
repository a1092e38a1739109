package test

import (
	"math/rand"
	"strings"
)

// validTokens lexes without errors in any order; entries are separated by ';'.
const validTokens = "f;fib;if;else;var;pass;yes;nah;(;);{;};,;~;\"this is a string\";\"this is a longer string containing a bunch of text: Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.\";\"escapes \\n\\t\\\\ inside\";\"\";r\"raw \\ string\";'k';'\\n';+;-;*;/;=;==;!=;<;>;<=;>=;123;321;0x1F;0b101;3.25;.5;//comment\n;\n"

func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

func GetRandomTokensWithSep(size int, sep string) string {
	valid := strings.Split(validTokens, ";")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, sep)
}

// GetRandomProgram returns size lines of straight-line code that parses and
// compiles in either block mode.
func GetRandomProgram(size int) string {
	names := []string{"a", "b", "c", "total"}
	ops := []string{"+", "-", "*", "=="}

	var sb strings.Builder
	for i := 0; i < size; i++ {
		name := names[rand.Intn(len(names))]
		switch rand.Intn(3) {
		case 0:
			sb.WriteString("var " + name + " = " + randomOperand() + "\n")
		case 1:
			sb.WriteString(name + " = " + randomOperand() + " " + ops[rand.Intn(len(ops))] + " " + randomOperand() + "\n")
		default:
			sb.WriteString("var " + name + " = (" + randomOperand() + " " + ops[rand.Intn(len(ops))] + " " + randomOperand() + ")\n")
		}
	}

	return sb.String()
}

func randomOperand() string {
	operands := []string{"1", "2", "42", "0x10", "7"}
	return operands[rand.Intn(len(operands))]
}
