package ketchup

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

type ValueLookup struct {
	vals map[string]value.Value
}

func NewValueLookup() *ValueLookup {
	return &ValueLookup{
		vals: make(map[string]value.Value),
	}
}

func (l *ValueLookup) Inherit(t2 *ValueLookup) {
	for k, v := range t2.vals {
		l.Set(k, v)
	}
}

func (l *ValueLookup) Get(id string) (value.Value, bool) {
	val, ok := l.vals[id]
	return val, ok
}

func (l *ValueLookup) Set(id string, val value.Value) {
	l.vals[id] = val
}

type IRGenerator interface {
	Do() (IR, error)
}

type IR interface {
	fmt.Stringer
}

// lowerError carries a lowering failure up through the builder; Do recovers it.
type lowerError struct {
	err error
}

// LLVMIRBuilder lowers the integer subset of the language. Every value is an
// i64; comparisons produce 0 or 1. Operands keep the machine's order, so
// a - b lowers to b - a.
type LLVMIRBuilder struct {
	mod    *ir.Module
	fn     *ir.Func
	block  *ir.Block
	values *ValueLookup
}

func NewLLVMIRBuilder() *LLVMIRBuilder {
	builder := &LLVMIRBuilder{
		mod:    ir.NewModule(),
		values: NewValueLookup(),
	}

	defineBuiltins(builder)
	return builder
}

func (b *LLVMIRBuilder) unsupported(format string, args ...interface{}) {
	panic(&lowerError{err: fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))})
}

// main collects top level statements into an i32 main function.
func (b *LLVMIRBuilder) main(stmts []Stmt) {
	b.fn = b.mod.NewFunc("main", types.I32)
	b.block = b.fn.NewBlock("")

	b.statements(stmts)

	if b.block.Term == nil {
		b.block.NewRet(constant.NewInt(types.I32, 0))
	}
}

func (b *LLVMIRBuilder) function(expr *FuncDecl) {
	if expr.Name == "" {
		b.unsupported("anonymous function")
	}

	params := make([]*ir.Param, len(expr.Params))
	for i, name := range expr.Params {
		params[i] = ir.NewParam(name, types.I64)
	}

	f := b.mod.NewFunc(expr.Name, types.I64, params...)
	b.values.Set(expr.Name, f)

	prevFn, prevBlock := b.fn, b.block
	b.fn, b.block = f, f.NewBlock("")

	prevVals := b.values
	b.values = NewValueLookup()
	b.values.Inherit(prevVals)

	for i, name := range expr.Params {
		b.values.Set(name, params[i])
	}

	defer func() {
		b.fn, b.block = prevFn, prevBlock
		b.values = prevVals
	}()

	b.statements(expr.Body)

	if b.block.Term == nil {
		b.block.NewRet(constant.NewInt(types.I64, 0))
	}
}

// statements stops at the first statement that terminates the block.
func (b *LLVMIRBuilder) statements(stmts []Stmt) {
	for _, stmt := range stmts {
		if b.block.Term != nil {
			return
		}

		b.statement(stmt)
	}
}

func (b *LLVMIRBuilder) statement(stmt Stmt) {
	switch s := stmt.(type) {
	case *ExprStmt:
		switch e := s.Expr.(type) {
		case *FuncDecl:
			b.function(e)
		case *ReturnExpr:
			b.ret(e)
		default:
			_, ins := b.recursiveLoad(e)
			b.block.Insts = append(b.block.Insts, ins...)
		}
	case *BlockStmt:
		b.statements(s.Body)
	case *VariableDecl:
		b.bind(s.Name, s.Value)
	case *Assignment:
		b.bind(s.Name, s.Value)
	default:
		b.unsupported("statement %T", stmt)
	}
}

func (b *LLVMIRBuilder) bind(name string, expr Expr) {
	v, ins := b.recursiveLoad(expr)
	b.block.Insts = append(b.block.Insts, ins...)
	b.values.Set(name, v)
}

func (b *LLVMIRBuilder) ret(expr *ReturnExpr) {
	var v value.Value = constant.NewInt(types.I64, 0)
	if expr.Value != nil {
		var ins []ir.Instruction
		v, ins = b.recursiveLoad(expr.Value)
		b.block.Insts = append(b.block.Insts, ins...)
	}

	if b.fn.Sig.RetType == types.I32 {
		v = b.block.NewTrunc(v, types.I32)
	}

	b.block.NewRet(v)
}

func (b *LLVMIRBuilder) recursiveLoad(expr Expr) (value.Value, []ir.Instruction) {
	switch e := expr.(type) {
	case *LiteralExpr:
		return b.loadLiteral(e)
	case *BinaryExpr:
		return b.binaryExpression(e)
	case *Identifier:
		v, ok := b.values.Get(e.Name)
		if !ok {
			b.unsupported("unbound name %s", e.Name)
		}

		if _, isFunc := v.(*ir.Func); isFunc {
			b.unsupported("function %s used as a value", e.Name)
		}

		return v, []ir.Instruction{}
	case *FuncCall:
		return b.functionCall(e)
	default:
		b.unsupported("expression %T", expr)
		return nil, nil // Unreachable
	}
}

var comparePredicates = map[BinaryOp]enum.IPred{
	BinaryEquals:        enum.IPredEQ,
	BinaryNotEquals:     enum.IPredNE,
	BinaryLess:          enum.IPredSLT,
	BinaryGreater:       enum.IPredSGT,
	BinaryLessEquals:    enum.IPredSLE,
	BinaryGreaterEquals: enum.IPredSGE,
}

func (b *LLVMIRBuilder) binaryExpression(expr *BinaryExpr) (value.Value, []ir.Instruction) {
	v1, i1 := b.recursiveLoad(expr.Right)
	v2, i2 := b.recursiveLoad(expr.Left)
	ins := append(i1, i2...)

	switch expr.Operation {
	case BinaryAddition:
		op := ir.NewAdd(v1, v2)
		return op, append(ins, op)
	case BinarySubtraction:
		op := ir.NewSub(v1, v2)
		return op, append(ins, op)
	case BinaryMultiplication:
		op := ir.NewMul(v1, v2)
		return op, append(ins, op)
	case BinaryDivision:
		op := ir.NewSDiv(v1, v2)
		return op, append(ins, op)
	}

	pred, ok := comparePredicates[expr.Operation]
	if !ok {
		b.unsupported("operator %s", expr.Operation)
	}

	cmp := ir.NewICmp(pred, v1, v2)
	ext := ir.NewZExt(cmp, types.I64)

	return ext, append(ins, cmp, ext)
}

func (b *LLVMIRBuilder) loadLiteral(expr *LiteralExpr) (value.Value, []ir.Instruction) {
	switch v := expr.Value.(type) {
	case IntLiteral:
		return constant.NewInt(types.I64, int64(v)), []ir.Instruction{}
	case BoolLiteral:
		if v {
			return constant.NewInt(types.I64, 1), []ir.Instruction{}
		}

		return constant.NewInt(types.I64, 0), []ir.Instruction{}
	default:
		b.unsupported("literal %s", formatValue(expr.Value))
		return nil, nil // Unreachable
	}
}

// functionCall pads missing arguments with zero and drops extra ones, the
// way the machine binds parameters.
func (b *LLVMIRBuilder) functionCall(expr *FuncCall) (value.Value, []ir.Instruction) {
	if len(expr.Args) == 0 {
		b.unsupported("call without a callee")
	}

	callee, ok := expr.Args[0].(*Identifier)
	if !ok {
		b.unsupported("call of %T", expr.Args[0])
	}

	v, ok := b.values.Get(callee.Name)
	if !ok {
		b.unsupported("call of unbound name %s", callee.Name)
	}

	f, ok := v.(*ir.Func)
	if !ok {
		b.unsupported("call of non-function %s", callee.Name)
	}

	var ins []ir.Instruction
	var callVals []value.Value
	for _, arg := range expr.Args[1:] {
		argVal, argIns := b.recursiveLoad(arg)

		ins = append(ins, argIns...)
		callVals = append(callVals, argVal)
	}

	for len(callVals) < len(f.Params) {
		callVals = append(callVals, constant.NewInt(types.I64, 0))
	}

	call := ir.NewCall(f, callVals[:len(f.Params)]...)
	return call, append(ins, call)
}

type LLVMGenerator struct {
	stmts []Stmt
}

func NewLLVMGenerator(stmts []Stmt) *LLVMGenerator {
	return &LLVMGenerator{
		stmts: stmts,
	}
}

func (g LLVMGenerator) Do() (res IR, err error) {
	defer func() {
		if r := recover(); r != nil {
			lerr, ok := r.(*lowerError)
			if !ok {
				panic(r)
			}

			res, err = nil, lerr.err
		}
	}()

	builder := NewLLVMIRBuilder()
	builder.main(g.stmts)

	return builder.mod, nil
}
