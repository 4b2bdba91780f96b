package runtime

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"ecp/internal/ast"
	"ecp/internal/parser"
	"ecp/internal/span"
)

// ============================================================
// Control flow signals
// ============================================================

// Signal represents a control flow signal from statement execution.
type Signal int

const (
	SigNormal   Signal = iota
	SigReturn          // RETURN from a subroutine
	SigBreak           // BREAK out of a loop
	SigContinue        // CONTINUE with the next iteration
)

// ControlFlow carries a control flow signal and the RETURN value.
type ControlFlow struct {
	Signal Signal
	Value  Value
}

var flowNormal = ControlFlow{Signal: SigNormal}

// DefaultMaxDepth is the default limit on nested subroutine calls.
const DefaultMaxDepth = 1000

// ============================================================
// Interpreter
// ============================================================

// origin identifies the source text currently executing, for diagnostics.
type origin struct {
	name string
	text string
}

// Interpreter walks the AST and executes it against a persistent root scope.
type Interpreter struct {
	root  *Scope
	scope *Scope

	out    io.Writer
	in     *bufio.Reader
	dir    string
	name   string
	search []string
	stdlib fs.FS
	exts   map[string]Extension

	preload  []string
	prepared bool
	observer Observer
	maxDepth int
	depth    int
	rng      *rand.Rand

	origin    origin
	importing []string // module files being imported, outermost first
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput sets the writer OUTPUT prints to. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithInput sets the reader USERINPUT and INPUT read lines from.
func WithInput(r io.Reader) Option {
	return func(i *Interpreter) { i.in = bufio.NewReader(r) }
}

// WithSearchPath appends directories searched by IMPORT.
func WithSearchPath(dirs ...string) Option {
	return func(i *Interpreter) { i.search = append(i.search, dirs...) }
}

// WithDir sets the directory relative imports are resolved against first.
// Empty means the working directory.
func WithDir(dir string) Option {
	return func(i *Interpreter) { i.dir = dir }
}

// WithName sets the file name reported in diagnostics.
func WithName(name string) Option {
	return func(i *Interpreter) { i.name = name }
}

// WithObserver installs a callback fired after every binding write.
func WithObserver(fn Observer) Option {
	return func(i *Interpreter) { i.observer = fn }
}

// WithMaxDepth limits nested subroutine calls.
func WithMaxDepth(n int) Option {
	return func(i *Interpreter) {
		if n > 0 {
			i.maxDepth = n
		}
	}
}

// WithSeed makes RANDOM_INT deterministic.
func WithSeed(seed int64) Option {
	return func(i *Interpreter) {
		i.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	}
}

// WithExtension registers an extension module for this interpreter only.
func WithExtension(name string, ext Extension) Option {
	return func(i *Interpreter) { i.exts[name] = ext }
}

// WithStdlib sets the file system searched for modules after the search path.
func WithStdlib(fsys fs.FS) Option {
	return func(i *Interpreter) { i.stdlib = fsys }
}

// WithPreload binds the named extension modules into the root scope before
// the first program runs, as if each had been imported.
func WithPreload(names ...string) Option {
	return func(i *Interpreter) { i.preload = append(i.preload, names...) }
}

// NewInterpreter creates an interpreter whose root scope holds the builtins.
func NewInterpreter(opts ...Option) *Interpreter {
	i := &Interpreter{
		out:      os.Stdout,
		in:       bufio.NewReader(os.Stdin),
		exts:     make(map[string]Extension),
		maxDepth: DefaultMaxDepth,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.root = NewScope("global", nil)
	i.installBuiltins(i.root)
	i.root.SetObserver(i.observer)
	i.scope = i.root
	return i
}

// Root returns the root scope, which persists across runs.
func (i *Interpreter) Root() *Scope { return i.root }

// Output returns the writer OUTPUT prints to.
func (i *Interpreter) Output() io.Writer { return i.out }

// prepare binds the preloaded extensions once.
func (i *Interpreter) prepare() error {
	if i.prepared {
		return nil
	}
	i.prepared = true
	for _, name := range i.preload {
		mod, ok, err := i.loadExtension(name)
		if err != nil {
			return fmt.Errorf("preload %s: %w", name, err)
		}
		if !ok {
			return fmt.Errorf("preload %s: no such extension module", name)
		}
		i.root.Define(name, mod, false)
	}
	return nil
}

// Run executes a program in the root scope and returns that scope. A
// RETURN, BREAK or CONTINUE reaching the top level ends the program.
func (i *Interpreter) Run(prog *ast.Compound) (*Scope, error) {
	if err := i.prepare(); err != nil {
		return i.root, err
	}
	i.scope = i.root
	if _, err := i.execBlock(prog); err != nil {
		return i.root, err
	}
	return i.root, nil
}

// RunSource parses and runs source text.
func (i *Interpreter) RunSource(source string) (*Scope, error) {
	prog, err := parser.Parse(source, i.name)
	if err != nil {
		return i.root, err
	}
	i.origin = origin{name: i.name, text: source}
	return i.Run(prog)
}

// RunFile runs the program in path. Imports are resolved against the file's
// directory unless WithDir said otherwise.
func (i *Interpreter) RunFile(path string) (*Scope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return i.root, fmt.Errorf("read %s: %w", path, err)
	}
	if i.dir == "" {
		i.dir = filepath.Dir(path)
	}
	if i.name == "" {
		i.name = path
	}
	if abs, err := filepath.Abs(path); err == nil {
		i.importing = append(i.importing[:0], abs)
	}
	return i.RunSource(string(data))
}

// Call invokes a callable value with already evaluated arguments. It is the
// entry point for extensions that call back into ECP code.
func (i *Interpreter) Call(callee Value, args ...Value) (Value, error) {
	return i.callValue(callee, args, span.Span{})
}

// readLine reads one line of input without its line ending. Reading past the
// end of input is an error only when nothing was read.
func (i *Interpreter) readLine(s span.Span) (Value, error) {
	line, err := i.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return nil, i.errorf(CodeEOF, s, "EOF when reading a line")
		}
		return nil, i.errorf(CodeNative, s, "reading input: %s", err)
	}
	return StringVal(strings.TrimRight(line, "\r\n")), nil
}
