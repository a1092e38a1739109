package ketchup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func groupedValues(src string) ([]string, Token) {
	g := NewBlockGrouper(NewLexerFromReader(strings.NewReader(src), "testing"))
	go g.Do()

	var values []string
	for {
		tok := g.Get()
		if !tok.isValid() {
			return values, tok
		}

		values = append(values, tok.Value)
	}
}

func TestBlockGrouper(t *testing.T) {
	cases := []struct {
		data   string
		fail   bool
		expect []string
	}{
		{
			"x = 1\ny = 2\n",
			false,
			[]string{"x", "=", "1", "y", "=", "2"},
		},
		{
			"if a\n  b\nc",
			false,
			[]string{"if", "a", "{", "b", "}", "c"},
		},
		{
			"f g(x)\n  if x\n    pass 1\n  pass 2\n",
			false,
			[]string{"f", "g", "(", "x", ")", "{", "if", "x", "{", "pass", "1", "}", "pass", "2", "}"},
		},
		{
			"if a\n  b\nelse\n  c",
			false,
			[]string{"if", "a", "{", "b", "}", "else", "{", "c", "}"},
		},
		{
			"puts(1,\n     2)\nx",
			false,
			[]string{"puts", "(", "1", ",", "2", ")", "x"},
		},
		{
			"  indented\n  same",
			false,
			[]string{"indented", "same"},
		},
		{
			"if a\n    b\n  c",
			true,
			[]string{"if", "a", "{", "b", "}"},
		},
		{
			"x = \"unclosed",
			true,
			[]string{"x", "="},
		},
	}

	for _, c := range cases {
		values, last := groupedValues(c.data)

		if c.fail {
			assert.Equal(t, TokenError, last.Typ, c.data)
		} else {
			assert.Equal(t, TokenEOF, last.Typ, c.data)
		}

		assert.Equal(t, c.expect, values, c.data)
	}
}

func TestGroupBlocksClosesAtEOF(t *testing.T) {
	toks := []Token{
		{Typ: TokenKeyword, Value: "if", Pos: Position{1, 1}},
		{Typ: TokenIdentifier, Value: "a", Pos: Position{1, 4}},
		{Typ: TokenIdentifier, Value: "b", Pos: Position{2, 3}},
	}

	out := GroupBlocks(toks)

	var values []string
	for _, tok := range out {
		values = append(values, tok.Value)
	}

	assert.Equal(t, []string{"if", "a", "{", "b", "}", ""}, values)
	assert.Equal(t, TokenEOF, out[len(out)-1].Typ)
}
