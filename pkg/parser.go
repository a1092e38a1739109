package ketchup

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type SyntacticAnalyzer interface {
	Run() ([]Stmt, error)
	GetFilename() string
}

// Parser builds statements from a token stream. Any syntax error aborts the
// whole parse; no partial tree is returned.
//
// Every parsing method starts with the cursor on the first token of its
// construct and leaves it on the last one.
type Parser struct {
	filename  string
	tokenizer Tokenizer
	tokens    []Token
	pos       int
}

func NewParser(tokenizer Tokenizer) *Parser {
	return &Parser{
		tokenizer: tokenizer,
		filename:  tokenizer.GetFilename(),
	}
}

func (p *Parser) GetFilename() string {
	return p.filename
}

func (p *Parser) Run() (stmts []Stmt, err error) {
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}

			stmts, err = nil, perr
		}
	}()

	p.tokens = p.collect()
	p.pos = 0

	for p.current().Typ != TokenEOF {
		stmts = append(stmts, p.statement())
		p.next()
	}

	logger("parser").Debugf("parsed %d statements from %s", len(stmts), p.filename)
	return stmts, nil
}

// collect drains the tokenizer, dropping whitespace and keeping the EOF
// sentinel.
func (p *Parser) collect() []Token {
	go p.tokenizer.Do()

	var toks []Token
	for {
		tok := p.tokenizer.Get()
		switch tok.Typ {
		case TokenWhitespace:
			continue
		case TokenError:
			p.errorf(tok.Pos, "%s", tok.Value)
		}

		toks = append(toks, tok)
		if tok.Typ == TokenEOF {
			return toks
		}
	}
}

func (p *Parser) current() Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}

	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) next() bool {
	if p.pos+1 < len(p.tokens) {
		p.pos++
		return true
	}

	return false
}

// advance moves to the next token, failing at the end of input.
func (p *Parser) advance(expected string) Token {
	p.next()

	tok := p.current()
	if tok.Typ == TokenEOF {
		p.errorf(tok.Pos, "unexpected end of input, expected %s", expected)
	}

	return tok
}

func (p *Parser) expect(typ TokenType, value string) Token {
	tok := p.advance(fmt.Sprintf("'%s'", value))
	if !tok.is(typ, value) {
		p.errorf(tok.Pos, "expected '%s', found '%s'", value, tok.Value)
	}

	return tok
}

func (p *Parser) errorf(pos Position, format string, args ...interface{}) {
	panic(&ParseError{
		Filename: p.filename,
		Pos:      pos,
		Msg:      fmt.Sprintf(format, args...),
	})
}

func (p *Parser) statement() Stmt {
	switch tok := p.current(); {
	case tok.is(TokenKeyword, "var"):
		return p.variableDecl()
	case tok.is(TokenKeyword, "if"):
		return p.ifStmt()
	case tok.is(TokenSymbol, "{"):
		return &BlockStmt{Body: p.block()}
	case tok.Typ == TokenIdentifier && p.peek().is(TokenOperator, "="):
		return p.assignment()
	default:
		return &ExprStmt{Expr: p.expr()}
	}
}

func (p *Parser) variableDecl() Stmt {
	name := p.advance("variable name")
	if name.Typ != TokenIdentifier {
		p.errorf(name.Pos, "expected variable name, found '%s'", name.Value)
	}

	p.expect(TokenOperator, "=")
	p.advance("expression")

	return &VariableDecl{
		Name:  name.Value,
		Value: p.expr(),
	}
}

func (p *Parser) assignment() Stmt {
	name := p.current()

	p.next() // Skip =
	p.advance("expression")

	return &Assignment{
		Name:  name.Value,
		Value: p.expr(),
	}
}

func (p *Parser) ifStmt() Stmt {
	p.advance("condition")
	cond := p.expr()

	p.expect(TokenSymbol, "{")
	body := p.block()

	if !p.peek().is(TokenKeyword, "else") {
		return &IfStmt{Cond: cond, Body: body}
	}

	p.next() // Skip else

	var elseBody []Stmt
	switch tok := p.advance("'{' or 'if'"); {
	case tok.is(TokenKeyword, "if"):
		elseBody = []Stmt{p.ifStmt()}
	case tok.is(TokenSymbol, "{"):
		elseBody = p.block()
	default:
		p.errorf(tok.Pos, "expected '{' or 'if' after else, found '%s'", tok.Value)
	}

	return &IfElseStmt{Cond: cond, Body: body, Else: elseBody}
}

// block parses statements up to the matching '}'. The cursor starts on '{'.
func (p *Parser) block() []Stmt {
	body := []Stmt{}
	for p.advance("'}'"); !p.current().is(TokenSymbol, "}"); p.advance("'}'") {
		body = append(body, p.statement())
	}

	return body
}

func (p *Parser) expr() Expr {
	e := p.atom()

	if p.peek().Typ == TokenOperator {
		p.next()
		return p.operation(e)
	}

	return e
}

func (p *Parser) atom() Expr {
	switch tok := p.current(); tok.Typ {
	case TokenInt:
		return &LiteralExpr{Value: p.intLiteral(tok)}
	case TokenFloat:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.errorf(tok.Pos, "invalid float literal '%s'", tok.Value)
		}

		return &LiteralExpr{Value: FloatLiteral(v)}
	case TokenBool:
		return &LiteralExpr{Value: BoolLiteral(tok.Value == "yes")}
	case TokenString:
		return &LiteralExpr{Value: StringLiteral(tok.Value)}
	case TokenChar:
		r, _ := utf8.DecodeRuneInString(tok.Value)
		return &LiteralExpr{Value: CharLiteral(r)}
	case TokenIdentifier:
		return p.postfix(&Identifier{Name: tok.Value}, true)
	case TokenKeyword:
		switch tok.Value {
		case "f":
			return p.funcDecl()
		case "pass":
			return p.returnExpr()
		}
	case TokenSymbol:
		if tok.Value == "(" {
			p.advance("expression")
			e := p.expr()
			p.expect(TokenSymbol, ")")

			return p.postfix(e, false)
		}
	}

	tok := p.current()
	p.errorf(tok.Pos, "unexpected %s '%s'", tok.Typ, tok.Value)
	return nil // Unreachable
}

func (p *Parser) intLiteral(tok Token) Value {
	base := 10
	if lower := strings.ToLower(tok.Value); strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0b") {
		base = 0
	}

	v, err := strconv.ParseInt(tok.Value, base, 64)
	if err != nil {
		p.errorf(tok.Pos, "invalid integer literal '%s'", tok.Value)
	}

	return IntLiteral(v)
}

// postfix handles call syntax after a primary. After an identifier only a
// call, a separator or a block delimiter may follow.
func (p *Parser) postfix(e Expr, strict bool) Expr {
	for {
		tok := p.peek()
		if tok.Typ != TokenSymbol {
			return e
		}

		switch tok.Value {
		case "(":
			p.next()
			e = p.call(e)
		case "~":
			p.next()
			e = &FuncCall{Args: []Expr{e}}
		case ",", ")", "{", "}":
			return e
		default:
			if strict {
				p.errorf(tok.Pos, "unexpected symbol '%s'", tok.Value)
			}

			return e
		}
	}
}

// call gathers arguments up to ')'. The cursor starts on '('.
func (p *Parser) call(callee Expr) Expr {
	args := []Expr{callee}

	for p.advance("')'"); !p.current().is(TokenSymbol, ")"); {
		args = append(args, p.expr())

		switch tok := p.advance("')'"); {
		case tok.is(TokenSymbol, ","):
			p.advance("')'")
		case tok.is(TokenSymbol, ")"):
		default:
			p.errorf(tok.Pos, "expected ',' or ')' in call, found '%s'", tok.Value)
		}
	}

	return &FuncCall{Args: args}
}

func (p *Parser) funcDecl() Expr {
	fn := &FuncDecl{}

	tok := p.advance("'('")
	if tok.Typ == TokenIdentifier {
		fn.Name = tok.Value
		tok = p.advance("'('")
	}

	if !tok.is(TokenSymbol, "(") {
		p.errorf(tok.Pos, "expected '(' in function literal, found '%s'", tok.Value)
	}

	for p.advance("')'"); !p.current().is(TokenSymbol, ")"); {
		param := p.current()
		if param.Typ != TokenIdentifier {
			p.errorf(param.Pos, "expected parameter name, found '%s'", param.Value)
		}

		fn.Params = append(fn.Params, param.Value)

		switch tok := p.advance("')'"); {
		case tok.is(TokenSymbol, ","):
			p.advance("')'")
		case tok.is(TokenSymbol, ")"):
		default:
			p.errorf(tok.Pos, "expected ',' or ')' in parameters, found '%s'", tok.Value)
		}
	}

	if p.peek().is(TokenSymbol, "{") {
		p.next()
		fn.Body = p.block()
	}

	return fn
}

// returnExpr only takes an operand that starts on the same line as pass.
func (p *Parser) returnExpr() Expr {
	ret := &ReturnExpr{}

	if tok := p.peek(); tok.Pos.Line == p.current().Pos.Line && startsExpr(tok) {
		p.next()
		ret.Value = p.expr()
	}

	return ret
}

func startsExpr(tok Token) bool {
	switch tok.Typ {
	case TokenInt, TokenFloat, TokenString, TokenChar, TokenBool, TokenIdentifier:
		return true
	case TokenSymbol:
		return tok.Value == "("
	case TokenKeyword:
		return tok.Value == "f"
	}

	return false
}

// operation climbs precedence with an expression stack and an operator stack.
// The cursor starts on the first operator. An incoming operator that does not
// bind tighter than the top of the stack folds it first, so equal ranks
// associate to the left.
func (p *Parser) operation(left Expr) Expr {
	exprs := []Expr{left}
	var ops []BinaryOp

	for {
		tok := p.current()
		op, rank, ok := LookupBinaryOp(tok.Value)
		if !ok {
			p.errorf(tok.Pos, "unknown operator '%s'", tok.Value)
		}

		for len(ops) > 0 && rank >= ops[len(ops)-1].Rank() {
			exprs, ops = fold(exprs, ops)
		}

		ops = append(ops, op)

		p.advance("operand")
		exprs = append(exprs, p.atom())

		if p.peek().Typ != TokenOperator {
			break
		}

		p.next()
	}

	for len(ops) > 0 {
		exprs, ops = fold(exprs, ops)
	}

	return exprs[0]
}

func fold(exprs []Expr, ops []BinaryOp) ([]Expr, []BinaryOp) {
	n := len(exprs)
	exprs[n-2] = &BinaryExpr{
		Operation: ops[len(ops)-1],
		Left:      exprs[n-2],
		Right:     exprs[n-1],
	}

	return exprs[:n-1], ops[:len(ops)-1]
}
