package ketchup

import "fmt"

// BlockGrouper turns indentation into explicit '{' and '}' symbols so the
// parser only ever sees brace-delimited blocks. A line indented deeper than
// the current block opens a new one; a shallower line closes blocks until its
// column matches an open block. Lines that start inside parentheses or
// brackets continue the previous line and never open or close blocks.
type BlockGrouper struct {
	tokenizer Tokenizer
	output    chan Token
}

func NewBlockGrouper(tokenizer Tokenizer) *BlockGrouper {
	return &BlockGrouper{
		tokenizer: tokenizer,
		output:    make(chan Token),
	}
}

func (g *BlockGrouper) GetFilename() string {
	return g.tokenizer.GetFilename()
}

func (g *BlockGrouper) Get() Token {
	tok, ok := <-g.output
	if !ok {
		return Token{Typ: TokenEOF}
	}

	return tok
}

func (g *BlockGrouper) Do() {
	go g.tokenizer.Do()

	var toks []Token
	for {
		tok := g.tokenizer.Get()
		if tok.Typ == TokenWhitespace {
			continue
		}

		toks = append(toks, tok)
		if !tok.isValid() {
			break
		}
	}

	for _, tok := range GroupBlocks(toks) {
		g.output <- tok
	}

	close(g.output)
}

// GroupBlocks inserts block delimiters into a whitespace-free token sequence.
// The sequence should end with TokenEOF or TokenError; a missing terminator is
// treated as EOF.
func GroupBlocks(toks []Token) []Token {
	var (
		out      []Token
		levels   []int
		nesting  int
		prevLine int
	)

	brace := func(symbol string, pos Position) {
		out = append(out, Token{Typ: TokenSymbol, Value: symbol, Pos: pos})
	}

	for _, tok := range toks {
		if !tok.isValid() {
			for ; len(levels) > 1; levels = levels[:len(levels)-1] {
				brace("}", tok.Pos)
			}

			return append(out, tok)
		}

		switch {
		case len(levels) == 0:
			levels = append(levels, tok.Pos.Column)
		case tok.Pos.Line != prevLine && nesting == 0:
			col := tok.Pos.Column
			if col > levels[len(levels)-1] {
				brace("{", tok.Pos)
				levels = append(levels, col)
				break
			}

			for len(levels) > 1 && col < levels[len(levels)-1] {
				levels = levels[:len(levels)-1]
				brace("}", tok.Pos)
			}

			if col != levels[len(levels)-1] {
				return append(out, Token{
					Typ:   TokenError,
					Value: fmt.Sprintf("inconsistent indentation at column %d", col),
					Pos:   tok.Pos,
				})
			}
		}

		out = append(out, tok)
		prevLine = tok.Pos.Line

		if tok.Typ == TokenSymbol {
			switch tok.Value {
			case "(", "[":
				nesting++
			case ")", "]":
				if nesting > 0 {
					nesting--
				}
			}
		}
	}

	var end Position
	if len(out) > 0 {
		end = out[len(out)-1].Pos
	}

	for ; len(levels) > 1; levels = levels[:len(levels)-1] {
		brace("}", end)
	}

	return append(out, Token{Typ: TokenEOF, Pos: end})
}
