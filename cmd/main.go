package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/nilq/ketchup/internal/cache"
	"github.com/nilq/ketchup/internal/config"
	ketchup "github.com/nilq/ketchup/pkg"
)

func main() {
	interactive := flag.Bool("i", false, "Start interactive REPL")
	disasm := flag.Bool("disasm", false, "Print the compiled program instead of running it")
	emitLLVM := flag.Bool("emit-llvm", false, "Print LLVM IR for the program instead of running it")
	configPath := flag.String("config", "", "Configuration file (default: nearest ketchup.toml or ketchup.yaml)")
	verbosity := flag.Int("v", -1, "Log verbosity (overrides config)")
	useCache := flag.Bool("use-cache", false, "Cache compiled programs in the default location")
	cachePath := flag.String("cache", "", "Compiled program cache database (overrides config)")
	blocks := flag.String("blocks", "", "Block syntax: indent or braces (overrides config)")
	unbound := flag.String("unbound", "", "Unbound names: skip, nil or error (overrides config)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ketchup [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a ketchup script, or starts a REPL when no file is given.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  ketchup fib.ketchup             # Run a script\n")
		fmt.Fprintf(os.Stderr, "  ketchup -disasm fib.ketchup     # Show its bytecode\n")
		fmt.Fprintf(os.Stderr, "  ketchup -blocks braces -i       # REPL with brace-delimited blocks\n")
	}
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *verbosity >= 0 {
		cfg.Log.Verbosity = *verbosity
	}
	if *useCache {
		cfg.Cache.Enabled = true
	}
	if *cachePath != "" {
		cfg.Cache.Path = *cachePath
	}
	if *blocks != "" {
		cfg.Runtime.Blocks = *blocks
	}
	if *unbound != "" {
		cfg.Runtime.Unbound = *unbound
	}

	var logPath *string
	if cfg.Log.File != "" {
		logPath = &cfg.Log.File
	}
	commonlog.Configure(cfg.Log.Verbosity, logPath)

	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Cache.Active() {
		store, err := cache.OpenOrDefault(cfg.Cache.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening cache: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		opts.Cache = store
	}

	interp := ketchup.NewInterpreter(opts)
	commonlog.GetLogger("ketchup").Debugf("interpreter %s started with %s blocks", interp.ID(), opts.Blocks)

	paths := flag.Args()
	if len(paths) == 0 || *interactive {
		for _, path := range paths {
			if !runFile(interp, path, *disasm, *emitLLVM) {
				os.Exit(1)
			}
		}

		runREPL(interp, cfg.Repl.Prompt)
		return
	}

	if len(paths) > 1 {
		flag.Usage()
		os.Exit(2)
	}

	if !runFile(interp, paths[0], *disasm, *emitLLVM) {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	cfg, err := config.FindAndLoad(".")
	if err != nil {
		return nil, err
	}

	if cfg == nil {
		cfg = config.Default()
	}

	return cfg, nil
}

func runFile(interp *ketchup.Interpreter, path string, disasm, emitLLVM bool) bool {
	switch {
	case emitLLVM:
		f, err := os.Open(path)
		if err != nil {
			printError(err)
			return false
		}
		defer f.Close()

		stmts, err := interp.Parse(f, path)
		if err != nil {
			printError(err)
			return false
		}

		mod, err := ketchup.NewLLVMGenerator(stmts).Do()
		if err != nil {
			printError(err)
			return false
		}

		fmt.Println(mod)
		return true
	case disasm:
		p, err := interp.Compile(path)
		if err != nil {
			printError(err)
			return false
		}

		fmt.Print(ketchup.Disassemble(p))
		return true
	default:
		return run(func() (ketchup.Value, error) {
			return interp.ExecFile(path)
		}) == nil
	}
}

// run reports errors and machine faults, returning whichever occurred.
func run(exec func() (ketchup.Value, error)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fault, ok := r.(*ketchup.Fault)
			if !ok {
				panic(r)
			}

			printError(fault)
			err = fault
		}
	}()

	if _, err = exec(); err != nil {
		printError(err)
	}

	return err
}

func runREPL(interp *ketchup.Interpreter, prompt string) {
	tty := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if tty {
		fmt.Println("ketchup REPL (type 'exit' to quit, an empty line ends a block)")
	}

	scanner := bufio.NewScanner(os.Stdin)
	lineBuffer := strings.Builder{}

	for {
		if tty {
			if lineBuffer.Len() == 0 {
				fmt.Print(prompt)
			} else {
				fmt.Print(".. ")
			}
		}

		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		if lineBuffer.Len() == 0 && (line == "exit" || line == "quit") {
			break
		}

		// Empty line executes accumulated input
		if line == "" {
			if lineBuffer.Len() > 0 {
				evalAndPrint(interp, lineBuffer.String())
				lineBuffer.Reset()
			}
			continue
		}

		first := lineBuffer.Len() == 0
		lineBuffer.WriteString(line)
		lineBuffer.WriteString("\n")

		if first && !opensBlock(line) {
			evalAndPrint(interp, lineBuffer.String())
			lineBuffer.Reset()
		}
	}

	if lineBuffer.Len() > 0 {
		evalAndPrint(interp, lineBuffer.String())
	}
}

// opensBlock reports whether a line starts a construct that continues on the
// following lines.
func opensBlock(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range []string{"if ", "else", "f "} {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}

	return strings.HasSuffix(trimmed, "{")
}

func evalAndPrint(interp *ketchup.Interpreter, input string) {
	var result ketchup.Value
	err := run(func() (ketchup.Value, error) {
		v, err := interp.Exec(strings.NewReader(input), "<repl>")
		result = v
		return v, err
	})

	if err == nil && result != nil {
		fmt.Println(result)
	}
}

func printError(err error) {
	switch e := err.(type) {
	case *ketchup.ParseError:
		fmt.Fprintln(os.Stderr, "Syntax error:", e.Msg, "at", e.Pos)
	case *ketchup.CompileError:
		fmt.Fprintln(os.Stderr, "Compile error:", e.Msg)
	case *ketchup.RuntimeError:
		fmt.Fprintln(os.Stderr, "Runtime error:", e.Err, "at", fmt.Sprintf("%04d", e.Pointer))
	case *ketchup.Fault:
		fmt.Fprintln(os.Stderr, "Fault:", e.Reason, "at", fmt.Sprintf("%04d", e.Pointer))
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
}
