package ketchup

import (
	"fmt"
	"io"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

func defineNatives(s *Scope, out io.Writer) {
	defineNative(s, "puts", func(args []Value) Value {
		msg := joinValues(args)
		fmt.Fprint(out, msg)
		return StringLiteral(msg)
	})

	defineNative(s, "putsln", func(args []Value) Value {
		msg := joinValues(args)
		fmt.Fprintln(out, msg)
		return StringLiteral(msg)
	})

	defineNative(s, "angry", func(args []Value) Value {
		panic(joinValues(args))
	})
}

func defineNative(s *Scope, name string, fn func(args []Value) Value) {
	s.Set(name, Native{Name: name, Fn: fn})
}

func joinValues(args []Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}

	return strings.Join(parts, " ")
}

func defineBuiltins(b *LLVMIRBuilder) {
	printf := b.mod.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr))
	printf.Sig.Variadic = true

	defineBuiltinFunc(b, "puts", builtinPrint(printf, "%lld"))
	defineBuiltinFunc(b, "putsln", builtinPrint(printf, "%lld\n"))
}

type funcDefinition = func(mod *ir.Module, name string) *ir.Func

func defineBuiltinFunc(b *LLVMIRBuilder, name string, definition funcDefinition) {
	f := definition(b.mod, name)
	f.SetName(name)
	b.values.Set(name, f)
}

// builtinPrint returns a definition of an i64 -> i64 function printing its
// argument with printf and passing it through.
func builtinPrint(printf *ir.Func, layout string) funcDefinition {
	return func(mod *ir.Module, name string) *ir.Func {
		f := mod.NewFunc("", types.I64, ir.NewParam("v", types.I64))
		b := f.NewBlock("")

		zero := constant.NewInt(types.I32, 0)

		format := constant.NewCharArrayFromString(layout + "\x00")
		formatGlob := mod.NewGlobalDef("._"+name+"_fmt", format)

		fmtAddr := constant.NewGetElementPtr(format.Typ, formatGlob, zero, zero)

		b.NewCall(printf, fmtAddr, f.Params[0])
		b.NewRet(f.Params[0])

		return f
	}
}
