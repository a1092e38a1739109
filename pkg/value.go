package ketchup

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidOperation is returned for arithmetic on incompatible values.
var ErrInvalidOperation = errors.New("invalid operation")

// Value is a runtime value. Implementations are immutable and the set is
// closed to the types declared in this file.
type Value interface {
	String() string
	isValue()
}

// Object is a callable value: a Native or an interpreted Function.
type Object interface {
	Value
	isObject()
}

type (
	IntLiteral    int64
	FloatLiteral  float64
	StringLiteral string
	CharLiteral   rune
	BoolLiteral   bool
	Nil           struct{}
)

// Native is a host function exposed to scripts.
type Native struct {
	Name string
	Fn   func(args []Value) Value
}

// Function is a compiled function literal. It carries no environment; free
// names resolve against the shared scope at call time.
type Function struct {
	Params []string
	Body   Program
}

func (IntLiteral) isValue()    {}
func (FloatLiteral) isValue()  {}
func (StringLiteral) isValue() {}
func (CharLiteral) isValue()   {}
func (BoolLiteral) isValue()   {}
func (Nil) isValue()           {}
func (Native) isValue()        {}
func (Function) isValue()      {}

func (Native) isObject()   {}
func (Function) isObject() {}

func (v IntLiteral) String() string {
	return strconv.FormatInt(int64(v), 10)
}

func (v FloatLiteral) String() string {
	f := float64(v)
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (v StringLiteral) String() string {
	return string(v)
}

func (v CharLiteral) String() string {
	return string(v)
}

func (v BoolLiteral) String() string {
	return strconv.FormatBool(bool(v))
}

func (Nil) String() string {
	return "nil"
}

func (Native) String() string {
	return "[object]"
}

func (Function) String() string {
	return "[object]"
}

// Truthy reports how a value behaves as a jump condition.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case IntLiteral:
		return v != 0
	case FloatLiteral:
		return v != 0
	case StringLiteral:
		return len(v) > 0
	case BoolLiteral:
		return bool(v)
	case CharLiteral, Native, Function:
		return true
	default:
		return false
	}
}

func AddValues(a, b Value) (Value, error) {
	switch x := a.(type) {
	case StringLiteral:
		switch y := b.(type) {
		case StringLiteral:
			return x + y, nil
		case CharLiteral:
			return x + StringLiteral(y.String()), nil
		}
	case CharLiteral:
		if y, ok := b.(CharLiteral); ok {
			return StringLiteral(string(x) + string(y)), nil
		}
	}

	return arithmetic(a, b,
		func(x, y int64) int64 { return x + y },
		func(x, y float64) float64 { return x + y })
}

func SubValues(a, b Value) (Value, error) {
	return arithmetic(a, b,
		func(x, y int64) int64 { return x - y },
		func(x, y float64) float64 { return x - y })
}

func MulValues(a, b Value) (Value, error) {
	return arithmetic(a, b,
		func(x, y int64) int64 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// DivValues traps on integer division by zero exactly like Go does; float division
// follows IEEE 754.
func DivValues(a, b Value) (Value, error) {
	return arithmetic(a, b,
		func(x, y int64) int64 { return x / y },
		func(x, y float64) float64 { return x / y })
}

func arithmetic(a, b Value, ints func(x, y int64) int64, floats func(x, y float64) float64) (Value, error) {
	switch x := a.(type) {
	case IntLiteral:
		switch y := b.(type) {
		case IntLiteral:
			return IntLiteral(ints(int64(x), int64(y))), nil
		case FloatLiteral:
			return FloatLiteral(floats(float64(x), float64(y))), nil
		}
	case FloatLiteral:
		switch y := b.(type) {
		case IntLiteral:
			return FloatLiteral(floats(float64(x), float64(y))), nil
		case FloatLiteral:
			return FloatLiteral(floats(float64(x), float64(y))), nil
		}
	}

	return nil, ErrInvalidOperation
}

// Equal compares two values. Numbers compare across Int and Float; equal
// numbers must also agree on the sign bit, and two NaNs are equal.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case IntLiteral:
		switch y := b.(type) {
		case IntLiteral:
			return x == y
		case FloatLiteral:
			return floatEqual(float64(x), float64(y))
		}
	case FloatLiteral:
		switch y := b.(type) {
		case IntLiteral:
			return floatEqual(float64(x), float64(y))
		case FloatLiteral:
			return floatEqual(float64(x), float64(y))
		}
	case BoolLiteral:
		y, ok := b.(BoolLiteral)
		return ok && x == y
	case StringLiteral:
		y, ok := b.(StringLiteral)
		return ok && x == y
	case Nil:
		_, ok := b.(Nil)
		return ok
	}

	return false
}

func floatEqual(a, b float64) bool {
	if a == b {
		return math.Signbit(a) == math.Signbit(b)
	}

	return math.IsNaN(a) && math.IsNaN(b)
}

// Compare orders two values, returning -1, 0 or 1. Only numbers, bools and
// strings are ordered; ok is false for any other pair. Values that are not
// Equal and not less than each other order as greater, NaN included.
func Compare(a, b Value) (int, bool) {
	if _, isNil := a.(Nil); isNil {
		return 0, false
	}

	if Equal(a, b) {
		return 0, true
	}

	var less bool
	switch x := a.(type) {
	case IntLiteral:
		switch y := b.(type) {
		case IntLiteral:
			less = x < y
		case FloatLiteral:
			less = float64(x) < float64(y)
		default:
			return 0, false
		}
	case FloatLiteral:
		switch y := b.(type) {
		case IntLiteral:
			less = float64(x) < float64(y)
		case FloatLiteral:
			less = x < y
		default:
			return 0, false
		}
	case BoolLiteral:
		y, ok := b.(BoolLiteral)
		if !ok {
			return 0, false
		}
		less = !bool(x) && bool(y)
	case StringLiteral:
		y, ok := b.(StringLiteral)
		if !ok {
			return 0, false
		}
		less = strings.Compare(string(x), string(y)) < 0
	default:
		return 0, false
	}

	if less {
		return -1, true
	}

	return 1, true
}
