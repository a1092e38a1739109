package ketchup

import "fmt"

// Compiler lowers statements to a Program. Operands of a binary expression
// are emitted right first, so the left operand ends up on top of the stack.
type Compiler struct {
	code Program
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

func (c *Compiler) Compile(stmts []Stmt) (Program, error) {
	c.code = nil

	if err := c.statements(stmts); err != nil {
		return nil, err
	}

	logger("compiler").Debugf("compiled %d statements into %d instructions", len(stmts), len(c.code))
	return c.code, nil
}

func (c *Compiler) emit(ops ...Op) {
	c.code = append(c.code, ops...)
}

func (c *Compiler) statements(stmts []Stmt) error {
	for _, stmt := range stmts {
		if err := c.statement(stmt); err != nil {
			return err
		}
	}

	return nil
}

func (c *Compiler) statement(stmt Stmt) error {
	switch s := stmt.(type) {
	case *ExprStmt:
		return c.expression(s.Expr)
	case *BlockStmt:
		return c.statements(s.Body)
	case *VariableDecl:
		return c.define(s.Name, s.Value)
	case *Assignment:
		return c.define(s.Name, s.Value)
	case *IfStmt:
		cond, body, err := c.branch(s.Cond, s.Body)
		if err != nil {
			return err
		}

		c.emit(cond...)
		c.emit(JumpUnless(len(body) + 1))
		c.emit(body...)
		c.emit(cond...)

		return nil
	case *IfElseStmt:
		cond, body, err := c.branch(s.Cond, s.Body)
		if err != nil {
			return err
		}

		elseBody, err := compileNested(s.Else)
		if err != nil {
			return err
		}

		c.emit(cond...)
		c.emit(JumpUnless(len(body) + 1))
		c.emit(body...)
		c.emit(cond...)
		c.emit(JumpIf(len(elseBody) + 1))
		c.emit(elseBody...)

		return nil
	case nil:
		return &CompileError{Msg: "missing statement"}
	default:
		return &CompileError{Node: stmt, Msg: "unsupported statement"}
	}
}

func (c *Compiler) define(name string, value Expr) error {
	if err := c.expression(value); err != nil {
		return err
	}

	c.emit(Push{Value: StringLiteral(name)}, Define)
	return nil
}

// branch compiles a condition and the body it guards into separate programs,
// since the jump offsets depend on their lengths.
func (c *Compiler) branch(cond Expr, body []Stmt) (Program, Program, error) {
	condCode := &Compiler{}
	if err := condCode.expression(cond); err != nil {
		return nil, nil, err
	}

	bodyCode, err := compileNested(body)
	if err != nil {
		return nil, nil, err
	}

	return condCode.code, bodyCode, nil
}

func compileNested(stmts []Stmt) (Program, error) {
	nested := &Compiler{}
	if err := nested.statements(stmts); err != nil {
		return nil, err
	}

	return nested.code, nil
}

func (c *Compiler) expression(expr Expr) error {
	switch e := expr.(type) {
	case *LiteralExpr:
		if e.Value == nil {
			return &CompileError{Node: e, Msg: "literal without a value"}
		}

		c.emit(Push{Value: e.Value})
	case *Identifier:
		c.emit(Name(e.Name))
	case *BinaryExpr:
		op, ok := binaryOpcodes[e.Operation]
		if !ok {
			return &CompileError{Node: e, Msg: fmt.Sprintf("unknown operator '%s'", e.Operation)}
		}

		if err := c.expression(e.Right); err != nil {
			return err
		}

		if err := c.expression(e.Left); err != nil {
			return err
		}

		c.emit(op)
	case *FuncCall:
		if len(e.Args) == 0 {
			return &CompileError{Node: e, Msg: "call without a callee"}
		}

		for _, arg := range e.Args {
			if err := c.expression(arg); err != nil {
				return err
			}
		}

		c.emit(Push{Value: IntLiteral(len(e.Args) - 1)}, Call)
	case *FuncDecl:
		return c.function(e)
	case *ReturnExpr:
		if e.Value == nil {
			c.emit(Push{Value: Nil{}})
		} else if err := c.expression(e.Value); err != nil {
			return err
		}

		c.emit(Return)
	case nil:
		return &CompileError{Msg: "missing expression"}
	default:
		return &CompileError{Node: expr, Msg: "unsupported expression"}
	}

	return nil
}

func (c *Compiler) function(decl *FuncDecl) error {
	body := Program{Push{Value: Nil{}}}
	if decl.Body != nil {
		var err error
		if body, err = compileNested(decl.Body); err != nil {
			return err
		}
	}

	c.emit(Push{Value: Function{Params: decl.Params, Body: body}})

	if decl.Name != "" {
		c.emit(Push{Value: StringLiteral(decl.Name)}, Define)
	}

	return nil
}
