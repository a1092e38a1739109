package ketchup

import (
	"errors"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
)

const programVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ketchup: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type valueKind byte

const (
	kindNil valueKind = iota
	kindInt
	kindFloat
	kindString
	kindChar
	kindBool
	kindFunction
)

type wireProgram struct {
	Version byte     `cbor:"1,keyasint"`
	Ops     []wireOp `cbor:"2,keyasint"`
}

type wireOp struct {
	Code   Opcode     `cbor:"1,keyasint"`
	Value  *wireValue `cbor:"2,keyasint,omitempty"`
	Offset int32      `cbor:"3,keyasint,omitempty"`
	Name   string     `cbor:"4,keyasint,omitempty"`
}

// Floats travel as their IEEE bits so the sign of zero and NaN survive.
type wireValue struct {
	Kind   valueKind `cbor:"1,keyasint"`
	Int    int64     `cbor:"2,keyasint,omitempty"`
	Float  uint64    `cbor:"3,keyasint,omitempty"`
	Str    string    `cbor:"4,keyasint,omitempty"`
	Bool   bool      `cbor:"5,keyasint,omitempty"`
	Params []string  `cbor:"6,keyasint,omitempty"`
	Body   []wireOp  `cbor:"7,keyasint,omitempty"`
}

// EncodeProgram serializes a program to canonical CBOR. Programs holding
// Native values cannot be encoded.
func EncodeProgram(p Program) ([]byte, error) {
	ops, err := encodeOps(p)
	if err != nil {
		return nil, err
	}

	return cborEncMode.Marshal(&wireProgram{Version: programVersion, Ops: ops})
}

func DecodeProgram(data []byte) (Program, error) {
	var w wireProgram
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("ketchup: unmarshal program: %w", err)
	}

	if w.Version != programVersion {
		return nil, fmt.Errorf("ketchup: unsupported program version %d", w.Version)
	}

	return decodeOps(w.Ops)
}

func encodeOps(p Program) ([]wireOp, error) {
	ops := make([]wireOp, 0, len(p))
	for _, op := range p {
		w := wireOp{Code: op.Opcode()}

		switch op := op.(type) {
		case Push:
			v, err := encodeValue(op.Value)
			if err != nil {
				return nil, err
			}
			w.Value = v
		case JumpUnless:
			w.Offset = int32(op)
		case JumpIf:
			w.Offset = int32(op)
		case Jump:
			w.Offset = int32(op)
		case Name:
			w.Name = string(op)
		}

		ops = append(ops, w)
	}

	return ops, nil
}

func encodeValue(v Value) (*wireValue, error) {
	switch v := v.(type) {
	case Nil:
		return &wireValue{Kind: kindNil}, nil
	case IntLiteral:
		return &wireValue{Kind: kindInt, Int: int64(v)}, nil
	case FloatLiteral:
		return &wireValue{Kind: kindFloat, Float: math.Float64bits(float64(v))}, nil
	case StringLiteral:
		return &wireValue{Kind: kindString, Str: string(v)}, nil
	case CharLiteral:
		return &wireValue{Kind: kindChar, Int: int64(v)}, nil
	case BoolLiteral:
		return &wireValue{Kind: kindBool, Bool: bool(v)}, nil
	case Function:
		body, err := encodeOps(v.Body)
		if err != nil {
			return nil, err
		}

		return &wireValue{Kind: kindFunction, Params: v.Params, Body: body}, nil
	case Native:
		return nil, fmt.Errorf("%w: %s", ErrNativeEncoding, v.Name)
	default:
		return nil, fmt.Errorf("ketchup: cannot encode %T", v)
	}
}

var errMissingValue = errors.New("ketchup: VALUE instruction without a value")

func decodeOps(ops []wireOp) (Program, error) {
	if len(ops) == 0 {
		return nil, nil
	}

	p := make(Program, 0, len(ops))
	for i, w := range ops {
		switch w.Code {
		case OpValue:
			if w.Value == nil {
				return nil, fmt.Errorf("%w at %04d", errMissingValue, i)
			}

			v, err := decodeValue(w.Value)
			if err != nil {
				return nil, err
			}
			p = append(p, Push{Value: v})
		case OpJumpUnless:
			p = append(p, JumpUnless(w.Offset))
		case OpJumpIf:
			p = append(p, JumpIf(w.Offset))
		case OpJump:
			p = append(p, Jump(w.Offset))
		case OpName:
			p = append(p, Name(w.Name))
		case OpAdd, OpSub, OpMul, OpDiv, OpEquals, OpNEquals, OpLt, OpGt,
			OpLtEquals, OpGtEquals, OpReturn, OpDefine, OpCall:
			p = append(p, Simple(w.Code))
		default:
			return nil, fmt.Errorf("ketchup: unknown opcode %d at %04d", byte(w.Code), i)
		}
	}

	return p, nil
}

func decodeValue(w *wireValue) (Value, error) {
	switch w.Kind {
	case kindNil:
		return Nil{}, nil
	case kindInt:
		return IntLiteral(w.Int), nil
	case kindFloat:
		return FloatLiteral(math.Float64frombits(w.Float)), nil
	case kindString:
		return StringLiteral(w.Str), nil
	case kindChar:
		return CharLiteral(rune(w.Int)), nil
	case kindBool:
		return BoolLiteral(w.Bool), nil
	case kindFunction:
		body, err := decodeOps(w.Body)
		if err != nil {
			return nil, err
		}

		return Function{Params: w.Params, Body: body}, nil
	default:
		return nil, fmt.Errorf("ketchup: unknown value kind %d", w.Kind)
	}
}
