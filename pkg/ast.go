package ketchup

// Expr is implemented by every expression node. The set is closed: only the
// types in this file satisfy it.
type Expr interface {
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	stmtNode()
}

type LiteralExpr struct {
	Value Value
}

type Identifier struct {
	Name string
}

type BinaryExpr struct {
	Operation BinaryOp
	Left      Expr
	Right     Expr
}

// FuncCall holds the callee as its first argument.
type FuncCall struct {
	Args []Expr
}

// FuncDecl is a function literal. An empty Name makes it anonymous and a nil
// Body makes it bodyless.
type FuncDecl struct {
	Name   string
	Params []string
	Body   []Stmt
}

type ReturnExpr struct {
	Value Expr
}

func (*LiteralExpr) exprNode() {}
func (*Identifier) exprNode()  {}
func (*BinaryExpr) exprNode()  {}
func (*FuncCall) exprNode()    {}
func (*FuncDecl) exprNode()    {}
func (*ReturnExpr) exprNode()  {}

type ExprStmt struct {
	Expr Expr
}

type BlockStmt struct {
	Body []Stmt
}

type VariableDecl struct {
	Name  string
	Value Expr
}

type Assignment struct {
	Name  string
	Value Expr
}

type IfStmt struct {
	Cond Expr
	Body []Stmt
}

type IfElseStmt struct {
	Cond Expr
	Body []Stmt
	Else []Stmt
}

func (*ExprStmt) stmtNode()     {}
func (*BlockStmt) stmtNode()    {}
func (*VariableDecl) stmtNode() {}
func (*Assignment) stmtNode()   {}
func (*IfStmt) stmtNode()       {}
func (*IfElseStmt) stmtNode()   {}

type BinaryOp string

const (
	BinaryMultiplication BinaryOp = "*"
	BinaryDivision       BinaryOp = "/"
	BinaryAddition       BinaryOp = "+"
	BinarySubtraction    BinaryOp = "-"
	BinaryEquals         BinaryOp = "=="
	BinaryNotEquals      BinaryOp = "!="
	BinaryLess           BinaryOp = "<"
	BinaryGreater        BinaryOp = ">"
	BinaryLessEquals     BinaryOp = "<="
	BinaryGreaterEquals  BinaryOp = ">="
)

// Lower ranks bind tighter.
var binaryRanks = map[BinaryOp]int{
	BinaryMultiplication: 1,
	BinaryDivision:       1,
	BinaryAddition:       2,
	BinarySubtraction:    2,
	BinaryEquals:         3,
	BinaryNotEquals:      3,
	BinaryLess:           4,
	BinaryGreater:        4,
	BinaryLessEquals:     4,
	BinaryGreaterEquals:  4,
}

// LookupBinaryOp resolves an operator symbol and its precedence rank.
func LookupBinaryOp(symbol string) (BinaryOp, int, bool) {
	op := BinaryOp(symbol)
	rank, ok := binaryRanks[op]
	return op, rank, ok
}

func (op BinaryOp) Rank() int {
	return binaryRanks[op]
}
