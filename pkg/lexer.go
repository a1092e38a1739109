package ketchup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

type TokenType uint64
type stateFunc func(l *Lexer) stateFunc

const EOF rune = 0

const (
	TokenError TokenType = iota
	TokenEOF
	TokenInt
	TokenFloat
	TokenString
	TokenChar
	TokenBool
	TokenIdentifier
	TokenOperator
	TokenSymbol
	TokenKeyword
	TokenWhitespace
)

var tokenNames = map[TokenType]string{
	TokenError:      "Error",
	TokenEOF:        "EOF",
	TokenInt:        "Int",
	TokenFloat:      "Float",
	TokenString:     "String",
	TokenChar:       "Char",
	TokenBool:       "Bool",
	TokenIdentifier: "Identifier",
	TokenOperator:   "Operator",
	TokenSymbol:     "Symbol",
	TokenKeyword:    "Keyword",
	TokenWhitespace: "Whitespace",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}

	return fmt.Sprintf("TokenType(%d)", uint64(t))
}

var keywordTable = map[string]bool{
	"f":    true,
	"if":   true,
	"else": true,
	"var":  true,
	"pass": true,
}

var boolTable = map[string]bool{
	"yes": true,
	"nah": true,
}

var operatorTable = map[string]bool{
	"+":  true,
	"-":  true,
	"*":  true,
	"/":  true,
	"=":  true,
	"==": true,
	"!=": true,
	"<":  true,
	">":  true,
	"<=": true,
	">=": true,
}

var symbolTable = map[rune]bool{
	'(': true,
	')': true,
	'[': true,
	']': true,
	',': true,
	'.': true,
	':': true,
	'!': true,
	'{': true,
	'}': true,
	'~': true,
}

type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Typ   TokenType
	Value string
	Pos   Position
}

func (t Token) isValid() bool {
	return t.Typ != TokenEOF && t.Typ != TokenError
}

func (t Token) is(typ TokenType, value string) bool {
	return t.Typ == typ && t.Value == value
}

// Tokenizer is the source of tokens consumed by the parser. Do produces the
// tokens and may run on its own goroutine; Get blocks until the next token is
// available and returns TokenEOF once the stream is exhausted.
type Tokenizer interface {
	Do()
	Get() Token
	GetFilename() string
}

type Lexer struct {
	filename string
	reader   *bufio.Reader
	done     chan Token

	pos   Position
	start Position
}

func NewLexerFromReader(reader io.Reader, filename string) *Lexer {
	return &Lexer{
		filename: filename,
		reader:   bufio.NewReader(reader),
		done:     make(chan Token),
		pos:      Position{Line: 1, Column: 1},
	}
}

func (l *Lexer) GetFilename() string {
	return l.filename
}

func (l *Lexer) Do() {
	for state := defaultState; state != nil; {
		state = state(l)
	}

	close(l.done)
}

func (l *Lexer) Get() Token {
	tok, ok := <-l.done
	if !ok {
		return Token{Typ: TokenEOF, Pos: l.pos}
	}

	return tok
}

// RunBlocking lexes the whole input and returns every token before EOF.
func (l *Lexer) RunBlocking() ([]Token, error) {
	go l.Do()

	var tokens []Token
	for {
		t := l.Get()
		switch t.Typ {
		case TokenEOF:
			return tokens, nil
		case TokenError:
			return nil, errors.New(t.Value)
		}

		tokens = append(tokens, t)
	}
}

func defaultState(l *Lexer) stateFunc {
	l.start = l.pos

	switch r := l.peek(); {
	case r == EOF:
		return l.emitValue(TokenEOF, "")
	case unicode.IsSpace(r):
		return whitespaceState
	case isDigit(r):
		return numberState
	case r == '.':
		return dotState
	case r == '"':
		return stringState
	case r == '\'':
		return charState
	case unicode.IsLetter(r) || r == '_':
		return identifierState
	default:
		return operatorState
	}
}

func whitespaceState(l *Lexer) stateFunc {
	var ws strings.Builder
	for r := l.peek(); r != EOF && unicode.IsSpace(r); r = l.peek() {
		ws.WriteRune(l.next())
	}

	return l.emitValue(TokenWhitespace, ws.String())
}

func numberState(l *Lexer) stateFunc {
	var num strings.Builder

	if r := l.next(); r == '0' {
		num.WriteRune(r)

		switch p := l.peek(); p {
		case 'x', 'X':
			num.WriteRune(l.next())
			return l.radixDigits(&num, isHexDigit)
		case 'b', 'B':
			num.WriteRune(l.next())
			return l.radixDigits(&num, func(r rune) bool { return r == '0' || r == '1' })
		}
	} else {
		num.WriteRune(r)
	}

	for r := l.peek(); isDigit(r); r = l.peek() {
		num.WriteRune(l.next())
	}

	if l.peek() != '.' {
		return l.emitValue(TokenInt, num.String())
	}

	num.WriteRune(l.next()) // Skip the dot
	for r := l.peek(); isDigit(r); r = l.peek() {
		num.WriteRune(l.next())
	}

	return l.emitValue(TokenFloat, num.String())
}

func (l *Lexer) radixDigits(num *strings.Builder, valid func(rune) bool) stateFunc {
	prefix := num.Len()
	for r := l.peek(); valid(r); r = l.peek() {
		num.WriteRune(l.next())
	}

	if num.Len() == prefix {
		return l.errorf("malformed number literal '%s'", num.String())
	}

	return l.emitValue(TokenInt, num.String())
}

func dotState(l *Lexer) stateFunc {
	l.next() // Skip the dot

	if !isDigit(l.peek()) {
		return l.emitValue(TokenSymbol, ".")
	}

	var num strings.Builder
	num.WriteRune('.')
	for r := l.peek(); isDigit(r); r = l.peek() {
		num.WriteRune(l.next())
	}

	return l.emitValue(TokenFloat, num.String())
}

func stringState(l *Lexer) stateFunc {
	l.next() // Skip the leading double-quote

	var str strings.Builder
	for r := l.next(); r != '"'; r = l.next() {
		if r == EOF {
			return l.errorf("unclosed string: %s", str.String())
		}

		if r == '\\' {
			esc, ok := l.escape()
			if !ok {
				return l.errorf("invalid escape in string: %s", str.String())
			}

			r = esc
		}

		str.WriteRune(r)
	}

	return l.emitValue(TokenString, str.String())
}

func rawStringState(l *Lexer) stateFunc {
	l.next() // Skip the leading double-quote

	var str strings.Builder
	for r := l.next(); r != '"'; r = l.next() {
		if r == EOF {
			return l.errorf("unclosed raw string: %s", str.String())
		}

		str.WriteRune(r)
	}

	return l.emitValue(TokenString, str.String())
}

func charState(l *Lexer) stateFunc {
	l.next() // Skip the leading quote

	r := l.next()
	switch r {
	case EOF, '\'':
		return l.errorf("empty character literal")
	case '\\':
		esc, ok := l.escape()
		if !ok {
			return l.errorf("invalid escape in character literal")
		}

		r = esc
	}

	if l.next() != '\'' {
		return l.errorf("unclosed character literal")
	}

	return l.emitValue(TokenChar, string(r))
}

func (l *Lexer) escape() (rune, bool) {
	switch l.next() {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	case '\\':
		return '\\', true
	case '"':
		return '"', true
	case '\'':
		return '\'', true
	default:
		return utf8.RuneError, false
	}
}

func identifierState(l *Lexer) stateFunc {
	var id strings.Builder
	for r := l.peek(); unicode.IsLetter(r) || isDigit(r) || r == '_'; r = l.peek() {
		id.WriteRune(l.next())
	}

	word := id.String()
	switch {
	case word == "r" && l.peek() == '"':
		return rawStringState
	case boolTable[word]:
		return l.emitValue(TokenBool, word)
	case keywordTable[word]:
		return l.emitValue(TokenKeyword, word)
	}

	return l.emitValue(TokenIdentifier, word)
}

func operatorState(l *Lexer) stateFunc {
	r := l.next()

	switch r {
	case '=', '!', '<', '>': // Some operators can be two runes
		if l.peek() == '=' {
			l.next()
			return l.emitValue(TokenOperator, string(r)+"=")
		}
	case '/':
		if l.peek() == '/' {
			l.next()
			return lineCommentState
		}
	}

	if operatorTable[string(r)] {
		return l.emitValue(TokenOperator, string(r))
	}

	if symbolTable[r] {
		return l.emitValue(TokenSymbol, string(r))
	}

	return l.errorf("invalid symbol '%c'", r)
}

// Comments reach the parser as whitespace and are filtered with it.
func lineCommentState(l *Lexer) stateFunc {
	var comment strings.Builder
	comment.WriteString("//")
	for r := l.peek(); r != '\n' && r != EOF; r = l.peek() {
		comment.WriteRune(l.next())
	}

	return l.emitValue(TokenWhitespace, comment.String())
}

func (l *Lexer) errorf(format string, args ...interface{}) stateFunc {
	l.done <- Token{
		Typ:   TokenError,
		Value: fmt.Sprintf(format, args...),
		Pos:   l.start,
	}

	return nil
}

func (l *Lexer) emitValue(t TokenType, val string) stateFunc {
	l.done <- Token{
		Typ:   t,
		Value: val,
		Pos:   l.start,
	}

	if t == TokenEOF {
		return nil
	}

	return defaultState
}

func (l *Lexer) peek() rune {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		return EOF
	}

	_ = l.reader.UnreadRune()

	return r
}

func (l *Lexer) next() rune {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		if err == io.EOF {
			return EOF
		}

		return utf8.RuneError
	}

	if r == '\n' {
		l.pos.Line++
		l.pos.Column = 1
	} else {
		l.pos.Column++
	}

	return r
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}
