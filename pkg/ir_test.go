package ketchup

import (
	"errors"
	"strings"
	"testing"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueLookup(t *testing.T) {
	vals := NewValueLookup()

	val1 := constant.NewInt(types.I64, 1)
	val2 := constant.NewInt(types.I64, 2)

	vals.Set("id1", val1)
	vals.Set("id2", val2)

	v, ok := vals.Get("id1")
	assert.True(t, ok)
	assert.Equal(t, val1, v)

	v, ok = vals.Get("id2")
	assert.True(t, ok)
	assert.Equal(t, val2, v)

	_, ok = vals.Get("id3")
	assert.False(t, ok)
}

func TestValueLookupInherit(t *testing.T) {
	vals1 := NewValueLookup()

	val1 := constant.NewInt(types.I64, 1)
	val2 := constant.NewInt(types.I64, 2)

	vals1.Set("id1", val1)
	vals1.Set("id2", val2)

	vals2 := NewValueLookup()

	val3 := constant.NewInt(types.I64, 3)
	val4 := constant.NewInt(types.I64, 4)

	vals2.Set("id1", val3)
	vals2.Set("id4", val4)

	vals1.Inherit(vals2)

	for name, expect := range map[string]*constant.Int{"id1": val3, "id2": val2, "id4": val4} {
		v, ok := vals1.Get(name)
		assert.True(t, ok, name)
		assert.Equal(t, expect, v, name)
	}
}

func lowerSource(t *testing.T, src string) (string, error) {
	t.Helper()

	stmts, err := NewParser(NewLexerFromReader(strings.NewReader(src), "testing")).Run()
	require.NoError(t, err)

	res, err := NewLLVMGenerator(stmts).Do()
	if err != nil {
		return "", err
	}

	return res.String(), nil
}

func TestLLVMGenerator(t *testing.T) {
	out, err := lowerSource(t, `f add(a, b) { pass a + b }
var n = add(1, 2)
putsln(n < 4)`)
	require.NoError(t, err)

	expect := []string{
		"define i64 @add(i64 %a, i64 %b)",
		"add i64 %b, %a",
		"define i32 @main()",
		"call i64 @add(i64 1, i64 2)",
		"icmp slt i64 4, ",
		"zext i1",
		"call i64 @putsln(",
		"ret i32 0",
		"declare i32 @printf(",
	}

	for _, e := range expect {
		assert.Contains(t, out, e)
	}
}

func TestLLVMGeneratorPadsArguments(t *testing.T) {
	out, err := lowerSource(t, `f second(a, b) { pass b }
second(7)`)
	require.NoError(t, err)

	assert.Contains(t, out, "call i64 @second(i64 7, i64 0)")
}

func TestLLVMGeneratorReturnFromMain(t *testing.T) {
	out, err := lowerSource(t, `pass 3`)
	require.NoError(t, err)

	assert.Contains(t, out, "trunc i64 3 to i32")
}

func TestLLVMGeneratorUnsupported(t *testing.T) {
	cases := []string{
		`"text"`,
		`if yes { 1 }`,
		`x`,
		`f (a) { pass a }`,
		`var g = f add(a) { pass a }`,
	}

	for _, c := range cases {
		_, err := lowerSource(t, c)
		assert.True(t, errors.Is(err, ErrUnsupported), c)
	}
}
