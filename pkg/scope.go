package ketchup

import (
	"io"
	"sort"
)

// Scope is the single flat namespace shared by a script and every function it
// calls. A function call binds its parameters here too, so assignments inside
// a callee are visible to the caller once it returns.
type Scope struct {
	vals map[string]Value
}

func NewScope() *Scope {
	return &Scope{
		vals: make(map[string]Value),
	}
}

// NewGlobalScope returns a scope with the builtin natives registered, writing
// their output to out.
func NewGlobalScope(out io.Writer) *Scope {
	s := NewScope()
	defineNatives(s, out)

	return s
}

func (s *Scope) Get(name string) (Value, bool) {
	val, ok := s.vals[name]
	return val, ok
}

func (s *Scope) Set(name string, val Value) {
	s.vals[name] = val
}

// Inherit copies every binding of other into s, overwriting on conflict.
func (s *Scope) Inherit(other *Scope) {
	for k, v := range other.vals {
		s.Set(k, v)
	}
}

func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.vals))
	for k := range s.vals {
		names = append(names, k)
	}

	sort.Strings(names)
	return names
}
