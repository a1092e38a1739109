package ketchup

import "fmt"

// Opcode tags every instruction.
type Opcode byte

const (
	OpValue Opcode = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpEquals
	OpNEquals
	OpLt
	OpGt
	OpLtEquals
	OpGtEquals
	OpReturn
	OpDefine
	OpCall
	OpJumpUnless
	OpJumpIf
	OpJump
	OpName
)

var opcodeNames = map[Opcode]string{
	OpValue:      "VALUE",
	OpAdd:        "ADD",
	OpSub:        "SUB",
	OpMul:        "MUL",
	OpDiv:        "DIV",
	OpEquals:     "EQ",
	OpNEquals:    "NE",
	OpLt:         "LT",
	OpGt:         "GT",
	OpLtEquals:   "LE",
	OpGtEquals:   "GE",
	OpReturn:     "RETURN",
	OpDefine:     "DEFINE",
	OpCall:       "CALL",
	OpJumpUnless: "JUMP_UNLESS",
	OpJumpIf:     "JUMP_IF",
	OpJump:       "JUMP",
	OpName:       "NAME",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}

	return fmt.Sprintf("Opcode(%d)", byte(o))
}

// Op is a single instruction. The concrete types are Push, Simple,
// JumpUnless, JumpIf, Jump and Name.
type Op interface {
	Opcode() Opcode
}

// Program is a compiled instruction sequence. It is never modified after the
// compiler returns it.
type Program []Op

// Push pushes a literal value.
type Push struct {
	Value Value
}

// Simple is an instruction without operands.
type Simple Opcode

const (
	Add      = Simple(OpAdd)
	Sub      = Simple(OpSub)
	Mul      = Simple(OpMul)
	Div      = Simple(OpDiv)
	Equals   = Simple(OpEquals)
	NEquals  = Simple(OpNEquals)
	Lt       = Simple(OpLt)
	Gt       = Simple(OpGt)
	LtEquals = Simple(OpLtEquals)
	GtEquals = Simple(OpGtEquals)
	Return   = Simple(OpReturn)
	Define   = Simple(OpDefine)
	Call     = Simple(OpCall)
)

// Jump offsets are added to the address of the jump instruction itself.
type (
	JumpUnless int32
	JumpIf     int32
	Jump       int32
)

// Name pushes the value bound to a name in the scope.
type Name string

func (Push) Opcode() Opcode       { return OpValue }
func (s Simple) Opcode() Opcode   { return Opcode(s) }
func (JumpUnless) Opcode() Opcode { return OpJumpUnless }
func (JumpIf) Opcode() Opcode     { return OpJumpIf }
func (Jump) Opcode() Opcode       { return OpJump }
func (Name) Opcode() Opcode       { return OpName }

var binaryOpcodes = map[BinaryOp]Simple{
	BinaryAddition:       Add,
	BinarySubtraction:    Sub,
	BinaryMultiplication: Mul,
	BinaryDivision:       Div,
	BinaryEquals:         Equals,
	BinaryNotEquals:      NEquals,
	BinaryLess:           Lt,
	BinaryGreater:        Gt,
	BinaryLessEquals:     LtEquals,
	BinaryGreaterEquals:  GtEquals,
}
