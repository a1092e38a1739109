package ketchup

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	cases := []struct {
		a, b   Value
		expect bool
	}{
		{IntLiteral(1), IntLiteral(1), true},
		{IntLiteral(1), FloatLiteral(1), true},
		{FloatLiteral(2.5), FloatLiteral(2.5), true},
		{FloatLiteral(0), FloatLiteral(math.Copysign(0, -1)), false},
		{FloatLiteral(math.NaN()), FloatLiteral(math.NaN()), true},
		{StringLiteral("a"), StringLiteral("a"), true},
		{StringLiteral("1"), IntLiteral(1), false},
		{BoolLiteral(true), BoolLiteral(true), true},
		{BoolLiteral(true), IntLiteral(1), false},
		{Nil{}, Nil{}, true},
		{Nil{}, BoolLiteral(false), false},
		{CharLiteral('a'), CharLiteral('a'), false},
	}

	for _, c := range cases {
		assert.Equal(t, c.expect, Equal(c.a, c.b), "%s == %s", formatValue(c.a), formatValue(c.b))
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b    Value
		expect  int
		ordered bool
	}{
		{IntLiteral(1), IntLiteral(2), -1, true},
		{IntLiteral(2), FloatLiteral(1.5), 1, true},
		{FloatLiteral(1), IntLiteral(1), 0, true},
		{BoolLiteral(false), BoolLiteral(true), -1, true},
		{StringLiteral("b"), StringLiteral("a"), 1, true},
		{FloatLiteral(math.NaN()), IntLiteral(1), 1, true},
		{StringLiteral("a"), IntLiteral(1), 0, false},
		{Nil{}, Nil{}, 0, false},
		{Nil{}, IntLiteral(1), 0, false},
	}

	for _, c := range cases {
		got, ok := Compare(c.a, c.b)

		assert.Equal(t, c.ordered, ok, "%s <=> %s", formatValue(c.a), formatValue(c.b))
		assert.Equal(t, c.expect, got, "%s <=> %s", formatValue(c.a), formatValue(c.b))
	}
}

func TestArithmetic(t *testing.T) {
	cases := []struct {
		name   string
		fn     func(a, b Value) (Value, error)
		a, b   Value
		expect Value
	}{
		{"int add", AddValues, IntLiteral(2), IntLiteral(3), IntLiteral(5)},
		{"float add", AddValues, FloatLiteral(0.5), IntLiteral(1), FloatLiteral(1.5)},
		{"concat", AddValues, StringLiteral("ket"), StringLiteral("chup"), StringLiteral("ketchup")},
		{"string and char", AddValues, StringLiteral("o"), CharLiteral('k'), StringLiteral("ok")},
		{"chars", AddValues, CharLiteral('o'), CharLiteral('k'), StringLiteral("ok")},
		{"sub", SubValues, IntLiteral(2), IntLiteral(5), IntLiteral(-3)},
		{"mul", MulValues, IntLiteral(4), FloatLiteral(0.25), FloatLiteral(1)},
		{"int div truncates", DivValues, IntLiteral(7), IntLiteral(2), IntLiteral(3)},
		{"float div", DivValues, IntLiteral(7), FloatLiteral(2), FloatLiteral(3.5)},
	}

	for _, c := range cases {
		v, err := c.fn(c.a, c.b)
		require.NoError(t, err, c.name)

		assert.Equal(t, c.expect, v, c.name)
	}
}

func TestArithmeticInvalid(t *testing.T) {
	cases := []struct {
		fn   func(a, b Value) (Value, error)
		a, b Value
	}{
		{AddValues, StringLiteral("a"), IntLiteral(1)},
		{AddValues, CharLiteral('a'), StringLiteral("b")},
		{SubValues, StringLiteral("a"), StringLiteral("b")},
		{MulValues, BoolLiteral(true), IntLiteral(2)},
		{DivValues, Nil{}, IntLiteral(1)},
	}

	for _, c := range cases {
		_, err := c.fn(c.a, c.b)
		assert.True(t, errors.Is(err, ErrInvalidOperation), "%s, %s", formatValue(c.a), formatValue(c.b))
	}
}

func TestValueString(t *testing.T) {
	cases := []struct {
		value  Value
		expect string
	}{
		{IntLiteral(-12), "-12"},
		{FloatLiteral(1), "1"},
		{FloatLiteral(0.1), "0.1"},
		{FloatLiteral(math.Inf(1)), "inf"},
		{FloatLiteral(math.Inf(-1)), "-inf"},
		{FloatLiteral(math.NaN()), "NaN"},
		{StringLiteral("plain"), "plain"},
		{CharLiteral('x'), "x"},
		{BoolLiteral(false), "false"},
		{Nil{}, "nil"},
		{Function{}, "[object]"},
		{Native{Name: "puts"}, "[object]"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expect, c.value.String())
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		value  Value
		expect bool
	}{
		{IntLiteral(0), false},
		{IntLiteral(3), true},
		{FloatLiteral(0), false},
		{FloatLiteral(0.5), true},
		{StringLiteral(""), false},
		{StringLiteral("x"), true},
		{BoolLiteral(true), true},
		{BoolLiteral(false), false},
		{Nil{}, false},
		{CharLiteral('a'), true},
		{Function{}, true},
	}

	for _, c := range cases {
		assert.Equal(t, c.expect, Truthy(c.value), formatValue(c.value))
	}
}
