package ketchup

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileSource(t *testing.T, src string) Program {
	t.Helper()

	i := NewInterpreter(Options{})
	p, err := i.CompileFromReader(strings.NewReader(src), "testing")
	require.NoError(t, err)

	return p
}

func TestEncodeProgram(t *testing.T) {
	p := compileSource(t, `f fib(n, x, y)
  if 1 < n
    pass x
  else
    pass fib(1 - n, y, y + x)
fib(10, 0, 1)
`)

	data, err := EncodeProgram(p)
	require.NoError(t, err)

	decoded, err := DecodeProgram(data)
	require.NoError(t, err)
	assert.Equal(t, p, decoded)

	again, err := EncodeProgram(decoded)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestEncodeValues(t *testing.T) {
	p := Program{
		Push{Nil{}},
		Push{IntLiteral(-3)},
		Push{StringLiteral("")},
		Push{CharLiteral('λ')},
		Push{BoolLiteral(false)},
		Push{Function{}},
		JumpIf(-2),
		Jump(0),
		Name("x"),
		Call,
	}

	data, err := EncodeProgram(p)
	require.NoError(t, err)

	decoded, err := DecodeProgram(data)
	require.NoError(t, err)
	assert.Equal(t, p, decoded)
}

func TestEncodeFloats(t *testing.T) {
	negZero := math.Copysign(0, -1)

	data, err := EncodeProgram(Program{
		Push{FloatLiteral(negZero)},
		Push{FloatLiteral(math.NaN())},
		Push{FloatLiteral(math.Inf(1))},
	})
	require.NoError(t, err)

	decoded, err := DecodeProgram(data)
	require.NoError(t, err)
	require.Len(t, decoded, 3)

	f := float64(decoded[0].(Push).Value.(FloatLiteral))
	assert.True(t, math.Signbit(f))
	assert.Equal(t, 0.0, f)

	assert.True(t, math.IsNaN(float64(decoded[1].(Push).Value.(FloatLiteral))))
	assert.True(t, math.IsInf(float64(decoded[2].(Push).Value.(FloatLiteral)), 1))
}

func TestEncodeNative(t *testing.T) {
	_, err := EncodeProgram(Program{Push{Native{Name: "puts"}}})
	assert.True(t, errors.Is(err, ErrNativeEncoding))

	nested := Function{Body: Program{Push{Native{Name: "puts"}}}}
	_, err = EncodeProgram(Program{Push{nested}})
	assert.True(t, errors.Is(err, ErrNativeEncoding))
}

func TestDecodeProgramErrors(t *testing.T) {
	_, err := DecodeProgram([]byte("not cbor"))
	assert.Error(t, err)

	data, err := cborEncMode.Marshal(&wireProgram{Version: programVersion + 1})
	require.NoError(t, err)

	_, err = DecodeProgram(data)
	assert.ErrorContains(t, err, "unsupported program version")

	data, err = cborEncMode.Marshal(&wireProgram{Version: programVersion, Ops: []wireOp{{Code: OpValue}}})
	require.NoError(t, err)

	_, err = DecodeProgram(data)
	assert.True(t, errors.Is(err, errMissingValue))

	data, err = cborEncMode.Marshal(&wireProgram{Version: programVersion, Ops: []wireOp{{Code: Opcode(200)}}})
	require.NoError(t, err)

	_, err = DecodeProgram(data)
	assert.ErrorContains(t, err, "unknown opcode")
}
