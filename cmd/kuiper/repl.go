package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/grailbio/base/log"

	"github.com/kuiper-lang/kuiper/kuiper"
)

// runRepl reads expressions interactively and evaluates each one against
// the fixed set of inputs declared on the command line, echoing either the
// JSON result or the compile/run error. ":q" (or ":quit") and ":to_string" are the only
// special commands; everything else is treated as an expression.
func runRepl(names []string, values []kuiper.Value, opts kuiper.Options) {
	rl, err := readline.New("kuiper> ")
	if err != nil {
		log.Error.Printf("kuiper: repl: %v", err)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Error.Printf("kuiper: repl: %v", err)
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ":q" || line == ":quit" {
			return
		}
		evalReplLine(line, names, values, opts)
	}
}

func evalReplLine(line string, names []string, values []kuiper.Value, opts kuiper.Options) {
	showSource := false
	if rest := strings.TrimPrefix(line, ":to_string "); rest != line {
		line = rest
		showSource = true
	}
	ce, err := kuiper.Compile(line, names, opts)
	if err != nil {
		fmt.Println(err)
		return
	}
	if showSource {
		fmt.Println(ce.ToString())
		return
	}
	out, err := ce.RunJSON(values)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(out)
}
