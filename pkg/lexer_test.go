package ketchup

import (
	"strings"
	"testing"

	"github.com/nilq/ketchup/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// significant drops whitespace and positions so cases only spell out kinds
// and values.
func significant(toks []Token) []Token {
	var out []Token
	for _, tok := range toks {
		if tok.Typ == TokenWhitespace {
			continue
		}

		tok.Pos = Position{}
		out = append(out, tok)
	}

	return out
}

func TestLexer(t *testing.T) {
	cases := []struct {
		data   string
		fail   bool
		expect []Token
	}{
		{
			"f fib(a) { pass a }",
			false,
			[]Token{
				{Typ: TokenKeyword, Value: "f"},
				{Typ: TokenIdentifier, Value: "fib"},
				{Typ: TokenSymbol, Value: "("},
				{Typ: TokenIdentifier, Value: "a"},
				{Typ: TokenSymbol, Value: ")"},
				{Typ: TokenSymbol, Value: "{"},
				{Typ: TokenKeyword, Value: "pass"},
				{Typ: TokenIdentifier, Value: "a"},
				{Typ: TokenSymbol, Value: "}"},
			},
		},
		{
			"var x = 0x1F + 0b101 - 3.25 * .5",
			false,
			[]Token{
				{Typ: TokenKeyword, Value: "var"},
				{Typ: TokenIdentifier, Value: "x"},
				{Typ: TokenOperator, Value: "="},
				{Typ: TokenInt, Value: "0x1F"},
				{Typ: TokenOperator, Value: "+"},
				{Typ: TokenInt, Value: "0b101"},
				{Typ: TokenOperator, Value: "-"},
				{Typ: TokenFloat, Value: "3.25"},
				{Typ: TokenOperator, Value: "*"},
				{Typ: TokenFloat, Value: ".5"},
			},
		},
		{
			"a == b != c <= d >= e < g > h / i",
			false,
			[]Token{
				{Typ: TokenIdentifier, Value: "a"},
				{Typ: TokenOperator, Value: "=="},
				{Typ: TokenIdentifier, Value: "b"},
				{Typ: TokenOperator, Value: "!="},
				{Typ: TokenIdentifier, Value: "c"},
				{Typ: TokenOperator, Value: "<="},
				{Typ: TokenIdentifier, Value: "d"},
				{Typ: TokenOperator, Value: ">="},
				{Typ: TokenIdentifier, Value: "e"},
				{Typ: TokenOperator, Value: "<"},
				{Typ: TokenIdentifier, Value: "g"},
				{Typ: TokenOperator, Value: ">"},
				{Typ: TokenIdentifier, Value: "h"},
				{Typ: TokenOperator, Value: "/"},
				{Typ: TokenIdentifier, Value: "i"},
			},
		},
		{
			`"tab\there" r"raw\n" 'x' '\''`,
			false,
			[]Token{
				{Typ: TokenString, Value: "tab\there"},
				{Typ: TokenString, Value: `raw\n`},
				{Typ: TokenChar, Value: "x"},
				{Typ: TokenChar, Value: "'"},
			},
		},
		{
			"yes nah yesterday",
			false,
			[]Token{
				{Typ: TokenBool, Value: "yes"},
				{Typ: TokenBool, Value: "nah"},
				{Typ: TokenIdentifier, Value: "yesterday"},
			},
		},
		{
			"// this is a comment\nx~",
			false,
			[]Token{
				{Typ: TokenIdentifier, Value: "x"},
				{Typ: TokenSymbol, Value: "~"},
			},
		},
		{
			"únicódeShouldBeVàlid = 1",
			false,
			[]Token{
				{Typ: TokenIdentifier, Value: "únicódeShouldBeVàlid"},
				{Typ: TokenOperator, Value: "="},
				{Typ: TokenInt, Value: "1"},
			},
		},
		{
			"\"\"",
			false,
			[]Token{
				{Typ: TokenString, Value: ""},
			},
		},
		{
			"\"unclosed string",
			true,
			nil,
		},
		{
			"\"bad \\q escape\"",
			true,
			nil,
		},
		{
			"'ab'",
			true,
			nil,
		},
		{
			"0x",
			true,
			nil,
		},
		{
			"@",
			true,
			nil,
		},
	}

	for _, c := range cases {
		l := NewLexerFromReader(strings.NewReader(c.data), "testing")

		toks, err := l.RunBlocking()
		if c.fail {
			assert.Error(t, err, c.data)
		} else {
			assert.NoError(t, err, c.data)
		}

		assert.Equal(t, c.expect, significant(toks), c.data)
	}
}

func TestLexerPositions(t *testing.T) {
	l := NewLexerFromReader(strings.NewReader("x\n  y = 'z'"), "testing")

	toks, err := l.RunBlocking()
	require.NoError(t, err)

	var got []Position
	for _, tok := range toks {
		if tok.Typ != TokenWhitespace {
			got = append(got, tok.Pos)
		}
	}

	assert.Equal(t, []Position{{1, 1}, {2, 3}, {2, 5}, {2, 7}}, got)
}

func TestLexerGetAfterClose(t *testing.T) {
	l := NewLexerFromReader(strings.NewReader("x"), "testing")
	go l.Do()

	assert.Equal(t, TokenIdentifier, l.Get().Typ)
	assert.Equal(t, TokenEOF, l.Get().Typ)
	assert.Equal(t, TokenEOF, l.Get().Typ)
	assert.Equal(t, "testing", l.GetFilename())
}

func TestLexerRandomTokens(t *testing.T) {
	l := NewLexerFromReader(strings.NewReader(test.GetRandomTokens(500)), "testing")

	_, err := l.RunBlocking()
	assert.NoError(t, err)
}

// Use a package-level variable to avoid compiler optimisation
var benchResult []Token

func benchmarkLexer(size int, b *testing.B) {
	for n := 0; n < b.N; n++ {
		// Setup
		b.StopTimer()
		data := test.GetRandomTokens(size)
		l := NewLexerFromReader(strings.NewReader(data), "bench")

		var err error
		b.StartTimer()

		benchResult, err = l.RunBlocking()
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLexer100(b *testing.B) {
	benchmarkLexer(100, b)
}

func BenchmarkLexer1000(b *testing.B) {
	benchmarkLexer(1000, b)
}

func BenchmarkLexer10000(b *testing.B) {
	benchmarkLexer(10000, b)
}

func BenchmarkLexer100000(b *testing.B) {
	benchmarkLexer(100000, b)
}
