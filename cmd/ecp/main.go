// Command ecp is the CLI entry point for the ECP pseudocode interpreter.
//
// Usage:
//
//	ecp run    <file>             Run a source file
//	ecp <file>                    Same as run
//	ecp tokens <file> [--json]    Print tokens
//	ecp parse  <file>             Print AST as JSON
//	ecp repl                      Start interactive REPL
//
// --trace prints every variable write to stderr.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ecp/internal/ast"
	"ecp/internal/config"
	"ecp/internal/diag"
	"ecp/internal/lexer"
	"ecp/internal/parser"
	"ecp/internal/runtime"
	"ecp/internal/stdlib"

	_ "ecp/internal/ext/crypto"
	_ "ecp/internal/ext/locale"
	_ "ecp/internal/ext/math"
	_ "ecp/internal/ext/system"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// cli carries the streams and flags of one invocation.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	json   bool
	trace  bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	var positional []string
	for _, arg := range args {
		switch arg {
		case "--json":
			c.json = true
		case "--trace":
			c.trace = true
		case "-h", "--help":
			c.usage()
			return exitOK
		default:
			if strings.HasPrefix(arg, "--") {
				fmt.Fprintf(stderr, "error: unknown flag '%s'\n", arg)
				c.usage()
				return exitUsage
			}
			positional = append(positional, arg)
		}
	}
	if len(positional) == 0 {
		c.usage()
		return exitUsage
	}

	command := positional[0]
	switch command {
	case "tokens", "parse":
		if len(positional) < 2 {
			fmt.Fprintln(stderr, "error: missing file argument")
			return exitUsage
		}
		source, ok := c.readFile(positional[1])
		if !ok {
			return exitError
		}
		if command == "tokens" {
			return c.cmdTokens(source, positional[1])
		}
		return c.cmdParse(source, positional[1])
	case "run":
		if len(positional) < 2 {
			fmt.Fprintln(stderr, "error: missing file argument")
			return exitUsage
		}
		return c.cmdRun(positional[1])
	case "repl":
		return c.cmdRepl()
	default:
		if strings.HasSuffix(command, ".ecp") {
			return c.cmdRun(command)
		}
		fmt.Fprintf(stderr, "error: unknown command '%s'\n", command)
		c.usage()
		return exitUsage
	}
}

func (c *cli) usage() {
	fmt.Fprintln(c.stderr, "Usage:")
	fmt.Fprintln(c.stderr, "  ecp run    <file> [--trace]      Run a source file")
	fmt.Fprintln(c.stderr, "  ecp <file.ecp>                   Same as run")
	fmt.Fprintln(c.stderr, "  ecp tokens <file> [--json]       Tokenize and print tokens")
	fmt.Fprintln(c.stderr, "  ecp parse  <file>                Parse and print AST (JSON)")
	fmt.Fprintln(c.stderr, "  ecp repl   [--trace]             Start interactive REPL")
}

func (c *cli) readFile(filename string) (string, bool) {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(c.stderr, "error: cannot read file %s: %v\n", filename, err)
		return "", false
	}
	return string(source), true
}

// ---- tokens command ----

func (c *cli) cmdTokens(source, filename string) int {
	l := lexer.New(source, filename)
	tokens, err := l.Tokenize()
	diags := l.Warnings()
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		diags = append(diags, lexErr.Diagnostic)
	} else if err != nil {
		fmt.Fprintf(c.stderr, "error: %v\n", err)
		return exitError
	}

	if c.json {
		if err := printTokensJSON(c.stdout, tokens, diags); err != nil {
			fmt.Fprintf(c.stderr, "error: JSON encoding failed: %v\n", err)
			return exitError
		}
	} else {
		printTokensText(c.stdout, tokens)
		printDiagsText(c.stderr, diags)
	}

	if lexErr != nil {
		return exitError
	}
	return exitOK
}

// ---- parse command ----

func (c *cli) cmdParse(source, filename string) int {
	prog, err := parser.Parse(source, filename)
	output := map[string]interface{}{}
	var diags []diag.Diagnostic
	if err != nil {
		d, ok := diagnosticOf(err)
		if !ok {
			fmt.Fprintf(c.stderr, "error: %v\n", err)
			return exitError
		}
		diags = append(diags, d)
	} else {
		output["ast"] = ast.NodeToMap(prog)
	}
	output["diagnostics"] = diagsToSlice(diags)
	if err := printJSON(c.stdout, output); err != nil {
		fmt.Fprintf(c.stderr, "error: JSON encoding failed: %v\n", err)
		return exitError
	}

	if len(diags) > 0 {
		return exitError
	}
	return exitOK
}

// ---- run command ----

func (c *cli) cmdRun(filename string) int {
	if _, err := os.Stat(filename); err != nil {
		fmt.Fprintf(c.stderr, "error: cannot read file %s: %v\n", filename, err)
		return exitError
	}
	interp, err := c.newInterpreter(filepath.Dir(filename), c.stdout,
		runtime.WithInput(c.stdin),
		runtime.WithName(filename),
	)
	if err != nil {
		fmt.Fprintf(c.stderr, "error: %v\n", err)
		return exitError
	}
	if _, err := interp.RunFile(filename); err != nil {
		printError(c.stderr, err)
		return exitError
	}
	return exitOK
}

// newInterpreter builds an interpreter configured from ecp.yml, .env and the
// environment found for dir.
func (c *cli) newInterpreter(dir string, out io.Writer, extra ...runtime.Option) (*runtime.Interpreter, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	opts := append(cfg.Options(),
		runtime.WithOutput(out),
		runtime.WithDir(dir),
		runtime.WithStdlib(stdlib.FS),
	)
	if c.trace || cfg.Trace {
		opts = append(opts, runtime.WithObserver(traceTo(c.stderr)))
	}
	return runtime.NewInterpreter(append(opts, extra...)...), nil
}

// traceTo reports every binding write on w.
func traceTo(w io.Writer) runtime.Observer {
	return func(name string, v runtime.Value) {
		fmt.Fprintf(w, "trace: %s = %s\n", name, runtime.Repr(v))
	}
}

// diagnosticOf extracts the diagnostic carried by a lexer, parser or
// runtime error.
func diagnosticOf(err error) (diag.Diagnostic, bool) {
	var re *runtime.RuntimeError
	if errors.As(err, &re) {
		return re.Diagnostic, true
	}
	var pe *parser.Error
	if errors.As(err, &pe) {
		return pe.Diagnostic, true
	}
	var le *lexer.Error
	if errors.As(err, &le) {
		return le.Diagnostic, true
	}
	return diag.Diagnostic{}, false
}

// printError writes err with its source line and caret when it carries a
// diagnostic. A failed import is followed by the error inside the module.
func printError(w io.Writer, err error) {
	d, ok := diagnosticOf(err)
	if !ok {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	fmt.Fprintln(w, d.Render())

	var re *runtime.RuntimeError
	if errors.As(err, &re) && re.Code == runtime.CodeImport && re.Cause != nil {
		fmt.Fprintln(w, "caused by:")
		printError(w, re.Cause)
	}
}
