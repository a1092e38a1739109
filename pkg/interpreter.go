package ketchup

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

// BlockMode selects how blocks are delimited in source text.
type BlockMode int

const (
	// BlocksIndent derives blocks from indentation.
	BlocksIndent BlockMode = iota
	// BlocksBraces expects explicit '{' and '}'.
	BlocksBraces
)

var blockModeNames = map[BlockMode]string{
	BlocksIndent: "indent",
	BlocksBraces: "braces",
}

func (m BlockMode) String() string {
	if name, ok := blockModeNames[m]; ok {
		return name
	}

	return fmt.Sprintf("BlockMode(%d)", int(m))
}

func ParseBlockMode(s string) (BlockMode, error) {
	for mode, name := range blockModeNames {
		if strings.EqualFold(s, name) {
			return mode, nil
		}
	}

	return BlocksIndent, fmt.Errorf("unknown block mode %q", s)
}

// ProgramCache stores compiled programs by a key derived from their source.
type ProgramCache interface {
	Get(key string) (Program, bool, error)
	Put(key string, p Program) error
}

type Options struct {
	Blocks  BlockMode
	Machine MachineOptions

	// Out receives the output of the builtin natives; nil means stdout.
	Out io.Writer

	Cache ProgramCache
}

// Interpreter runs source text against one Scope that lives as long as the
// interpreter, so definitions carry over between calls to Exec.
type Interpreter struct {
	id    uuid.UUID
	opts  Options
	scope *Scope
	log   commonlog.Logger
}

func NewInterpreter(opts Options) *Interpreter {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	id := uuid.New()
	if opts.Machine.Logger == nil {
		opts.Machine.Logger = commonlog.NewKeyValueLogger(logger("vm"), "interpreter", id.String())
	}

	return &Interpreter{
		id:    id,
		opts:  opts,
		scope: NewGlobalScope(opts.Out),
		log:   commonlog.NewKeyValueLogger(logger("interpreter"), "interpreter", id.String()),
	}
}

func (i *Interpreter) ID() uuid.UUID {
	return i.id
}

func (i *Interpreter) Scope() *Scope {
	return i.scope
}

func (i *Interpreter) tokenizer(r io.Reader, name string) Tokenizer {
	lexer := NewLexerFromReader(r, name)
	if i.opts.Blocks == BlocksBraces {
		return lexer
	}

	return NewBlockGrouper(lexer)
}

func (i *Interpreter) analyzer(r io.Reader, name string) SyntacticAnalyzer {
	return NewParser(i.tokenizer(r, name))
}

func (i *Interpreter) Parse(r io.Reader, name string) ([]Stmt, error) {
	a := i.analyzer(r, name)

	stmts, err := a.Run()
	if err != nil {
		i.log.Debugf("parsing %s failed: %s", a.GetFilename(), err)
		return nil, err
	}

	return stmts, nil
}

func (i *Interpreter) Compile(filename string) (Program, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return i.CompileFromReader(f, filename)
}

func (i *Interpreter) CompileFromReader(r io.Reader, name string) (Program, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	key := i.cacheKey(src)
	if i.opts.Cache != nil {
		p, ok, err := i.opts.Cache.Get(key)
		switch {
		case err != nil:
			i.log.Warningf("program cache lookup failed: %s", err)
		case ok:
			i.log.Debugf("program cache hit for %s", name)
			return p, nil
		}
	}

	stmts, err := i.Parse(bytes.NewReader(src), name)
	if err != nil {
		return nil, err
	}

	p, err := NewCompiler().Compile(stmts)
	if err != nil {
		return nil, err
	}

	if i.opts.Cache != nil {
		if err := i.opts.Cache.Put(key, p); err != nil {
			i.log.Warningf("program cache store failed: %s", err)
		}
	}

	return p, nil
}

func (i *Interpreter) cacheKey(src []byte) string {
	h := sha256.New()
	h.Write([]byte(i.opts.Blocks.String()))
	h.Write([]byte{0})
	h.Write(src)

	return hex.EncodeToString(h.Sum(nil))
}

// Run executes a compiled program in the interpreter's scope.
func (i *Interpreter) Run(p Program) (Value, error) {
	return NewMachine(p, i.opts.Machine).Run(i.scope)
}

func (i *Interpreter) Exec(r io.Reader, name string) (Value, error) {
	p, err := i.CompileFromReader(r, name)
	if err != nil {
		return nil, err
	}

	return i.Run(p)
}

func (i *Interpreter) ExecFile(path string) (Value, error) {
	p, err := i.Compile(path)
	if err != nil {
		return nil, err
	}

	i.log.Infof("running %s", path)
	return i.Run(p)
}
