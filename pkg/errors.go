package ketchup

import (
	"errors"
	"fmt"
)

var (
	ErrUnbound        = errors.New("unbound name")
	ErrCallDepth      = errors.New("call depth exceeded")
	ErrUnsupported    = errors.New("unsupported construct")
	ErrNativeEncoding = errors.New("native functions cannot be encoded")
)

type ParseError struct {
	Filename string
	Pos      Position
	Msg      string
}

func (e *ParseError) Error() string {
	return e.String()
}

func (e *ParseError) String() string {
	if e.Filename == "" {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}

	return fmt.Sprintf("%s:%s: %s", e.Filename, e.Pos, e.Msg)
}

type CompileError struct {
	Node interface{}
	Msg  string
}

func (e *CompileError) Error() string {
	return e.String()
}

func (e *CompileError) String() string {
	return fmt.Sprintf("compile error: %s (%T)", e.Msg, e.Node)
}

// RuntimeError is a recoverable failure reported by the machine, such as
// arithmetic on incompatible values.
type RuntimeError struct {
	Pointer int
	Op      Op
	Err     error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at %04d %s: %s", e.Pointer, e.Op.Opcode(), e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Fault is the panic value for conditions a correct compiler never produces:
// stack underflow, a non-string Define target, calling a non-function or
// ordering unordered values.
type Fault struct {
	Pointer int
	Op      Op
	Reason  string
}

func (f *Fault) Error() string {
	if f.Op == nil {
		return fmt.Sprintf("fault at %04d: %s", f.Pointer, f.Reason)
	}

	return fmt.Sprintf("fault at %04d %s: %s", f.Pointer, f.Op.Opcode(), f.Reason)
}
