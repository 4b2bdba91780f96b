package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"ecp/internal/lexer"
	"ecp/internal/runtime"
	"ecp/internal/token"
)

// ---- ANSI colors ----

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

const (
	promptMain = colorGreen + "ecp> " + colorReset
	promptMore = colorGray + "...  " + colorReset
)

// ---- repl command ----

func (c *cli) cmdRepl() int {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".ecp_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            promptMain,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(c.stderr, "readline init failed: %v\n", err)
		return exitError
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s%sECP REPL%s %s(type 'exit' or Ctrl+D to quit)%s\n\n",
		colorBold, colorCyan, colorReset, colorGray, colorReset)

	interp, err := c.newInterpreter(".", rl.Stdout(),
		runtime.WithInput(c.stdin),
		runtime.WithName("<repl>"),
	)
	if err != nil {
		fmt.Fprintf(rl.Stderr(), "%serror: %v%s\n", colorRed, err, colorReset)
		return exitError
	}

	var accumulated strings.Builder
	for {
		if accumulated.Len() > 0 {
			rl.SetPrompt(promptMore)
		} else {
			rl.SetPrompt(promptMain)
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if accumulated.Len() > 0 {
					accumulated.Reset()
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s(use 'exit' or Ctrl+D to quit)%s\n", colorGray, colorReset)
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(rl.Stdout())
			}
			return exitOK
		}

		if accumulated.Len() == 0 && strings.TrimSpace(line) == "exit" {
			return exitOK
		}

		accumulated.WriteString(line)
		accumulated.WriteString("\n")
		source := accumulated.String()
		if blockDepth(source) > 0 {
			continue
		}
		accumulated.Reset()

		if strings.TrimSpace(source) == "" {
			continue
		}

		if _, err := interp.RunSource(source); err != nil {
			var b strings.Builder
			printError(&b, err)
			fmt.Fprintf(rl.Stderr(), "%s%s%s", colorRed, b.String(), colorReset)
		}
	}
}

// blockDepth reports how many blocks opened in source are still waiting for
// their terminator. ELSE IF continues the enclosing IF and REPEAT is closed
// by UNTIL. Source that does not lex is treated as complete so the error can
// be reported.
func blockDepth(source string) int {
	tokens, err := lexer.Lex(source)
	if err != nil {
		return 0
	}
	depth := 0
	prev := token.NEWLINE
	for _, tok := range tokens {
		switch tok.Kind {
		case token.KW_IF:
			if prev != token.KW_ELSE {
				depth++
			}
		case token.KW_SUBROUTINE, token.KW_WHILE, token.KW_REPEAT, token.KW_FOR,
			token.KW_RECORD, token.KW_TRY, token.KW_CLASS:
			depth++
		case token.KW_END, token.KW_ENDSUBROUTINE, token.KW_ENDIF, token.KW_ENDWHILE,
			token.KW_ENDFOR, token.KW_ENDRECORD, token.KW_ENDTRY, token.KW_ENDCLASS,
			token.KW_UNTIL:
			depth--
		}
		prev = tok.Kind
	}
	return depth
}
