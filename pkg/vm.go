package ketchup

import (
	"fmt"
	"strings"

	"github.com/tliron/commonlog"
)

// UnboundPolicy decides what a Name instruction does when the name has no
// binding.
type UnboundPolicy int

const (
	// UnboundSkip pushes nothing, leaving the stack as it was.
	UnboundSkip UnboundPolicy = iota
	UnboundNil
	UnboundError
)

var unboundPolicyNames = map[UnboundPolicy]string{
	UnboundSkip:  "skip",
	UnboundNil:   "nil",
	UnboundError: "error",
}

func (p UnboundPolicy) String() string {
	if name, ok := unboundPolicyNames[p]; ok {
		return name
	}

	return fmt.Sprintf("UnboundPolicy(%d)", int(p))
}

func ParseUnboundPolicy(s string) (UnboundPolicy, error) {
	for policy, name := range unboundPolicyNames {
		if strings.EqualFold(s, name) {
			return policy, nil
		}
	}

	return UnboundSkip, fmt.Errorf("unknown unbound policy %q", s)
}

type MachineOptions struct {
	Unbound UnboundPolicy

	// MaxDepth limits nested calls; zero means no limit.
	MaxDepth int

	// Logger receives an instruction trace at debug level.
	Logger commonlog.Logger
}

// Machine executes one Program. Every call to an interpreted function runs
// on a fresh Machine sharing the caller's Scope.
type Machine struct {
	program Program
	opts    MachineOptions
	depth   int

	stack   []Value
	pointer int
	running bool
}

func NewMachine(program Program, opts MachineOptions) *Machine {
	if opts.Logger == nil {
		opts.Logger = logger("vm")
	}

	return &Machine{
		program: program,
		opts:    opts,
	}
}

// Run executes the program against scope and returns the value left on top
// of the stack, or nil if the stack is empty.
func (m *Machine) Run(scope *Scope) (Value, error) {
	m.stack = m.stack[:0]
	m.pointer = 0
	m.running = true

	trace := m.opts.Logger.AllowLevel(commonlog.Debug)

	for m.running && m.pointer < len(m.program) {
		if m.pointer < 0 {
			m.fault("jump before start of program")
		}

		op := m.program[m.pointer]
		if trace {
			m.opts.Logger.Debugf("%04d %-20s depth=%d stack=%d", m.pointer, formatOp(op), m.depth, len(m.stack))
		}

		switch op := op.(type) {
		case Push:
			m.push(op.Value)
		case Simple:
			if err := m.simple(op, scope); err != nil {
				return nil, err
			}
		case JumpUnless:
			if !Truthy(m.pop()) {
				m.pointer += int(op)
				continue
			}
		case JumpIf:
			if Truthy(m.pop()) {
				m.pointer += int(op)
				continue
			}
		case Jump:
			m.pointer += int(op)
			continue
		case Name:
			if err := m.name(string(op), scope); err != nil {
				return nil, err
			}
		default:
			m.fault("unknown instruction")
		}

		m.pointer++
	}

	if len(m.stack) == 0 {
		return nil, nil
	}

	return m.stack[len(m.stack)-1], nil
}

func (m *Machine) simple(op Simple, scope *Scope) error {
	switch op {
	case Add, Sub, Mul, Div:
		return m.arithmetic(op)
	case Equals, NEquals:
		b, a := m.pop(), m.pop()
		m.push(BoolLiteral(Equal(a, b) == (op == Equals)))
	case Lt, Gt, LtEquals, GtEquals:
		m.compare(op)
	case Return:
		m.running = false
	case Define:
		name, ok := m.pop().(StringLiteral)
		if !ok {
			m.fault("define target is not a string")
		}

		scope.Set(string(name), m.pop())
	case Call:
		return m.call(scope)
	default:
		m.fault("unknown instruction")
	}

	return nil
}

var arithmeticOps = map[Simple]func(a, b Value) (Value, error){
	Add: AddValues,
	Sub: SubValues,
	Mul: MulValues,
	Div: DivValues,
}

func (m *Machine) arithmetic(op Simple) error {
	b, a := m.pop(), m.pop()

	v, err := arithmeticOps[op](a, b)
	if err != nil {
		return m.errorf(err)
	}

	m.push(v)
	return nil
}

func (m *Machine) compare(op Simple) {
	b, a := m.pop(), m.pop()

	c, ok := Compare(a, b)
	if !ok {
		m.fault(fmt.Sprintf("cannot order %s and %s", a, b))
	}

	var result bool
	switch op {
	case Lt:
		result = c < 0
	case Gt:
		result = c > 0
	case LtEquals:
		result = c <= 0
	case GtEquals:
		result = c >= 0
	}

	m.push(BoolLiteral(result))
}

func (m *Machine) name(name string, scope *Scope) error {
	if v, ok := scope.Get(name); ok {
		m.push(v)
		return nil
	}

	switch m.opts.Unbound {
	case UnboundNil:
		m.push(Nil{})
	case UnboundError:
		return m.errorf(fmt.Errorf("%w: %s", ErrUnbound, name))
	}

	return nil
}

func (m *Machine) call(scope *Scope) error {
	count, ok := m.pop().(IntLiteral)
	if !ok || count < 0 {
		m.fault("argument count is not a non-negative integer")
	}

	args := make([]Value, count)
	for i := len(args) - 1; i >= 0; i-- {
		args[i] = m.pop()
	}

	switch callee := m.pop().(type) {
	case Function:
		if m.opts.MaxDepth > 0 && m.depth >= m.opts.MaxDepth {
			return m.errorf(fmt.Errorf("%w: limit is %d", ErrCallDepth, m.opts.MaxDepth))
		}

		for i, param := range callee.Params {
			if i < len(args) {
				scope.Set(param, args[i])
			} else {
				scope.Set(param, Nil{})
			}
		}

		nested := NewMachine(callee.Body, m.opts)
		nested.depth = m.depth + 1

		result, err := nested.Run(scope)
		if err != nil {
			return err
		}

		if result != nil {
			m.push(result)
		}
	case Native:
		result := callee.Fn(args)
		if result == nil {
			result = Nil{}
		}

		m.push(result)
	default:
		m.fault(fmt.Sprintf("invalid call of %s", callee))
	}

	return nil
}

func (m *Machine) push(v Value) {
	m.stack = append(m.stack, v)
}

func (m *Machine) pop() Value {
	if len(m.stack) == 0 {
		m.fault("stack underflow")
	}

	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]

	return v
}

func (m *Machine) errorf(err error) error {
	return &RuntimeError{
		Pointer: m.pointer,
		Op:      m.program[m.pointer],
		Err:     err,
	}
}

func (m *Machine) fault(reason string) {
	f := &Fault{Pointer: m.pointer, Reason: reason}
	if m.pointer >= 0 && m.pointer < len(m.program) {
		f.Op = m.program[m.pointer]
	}

	panic(f)
}
