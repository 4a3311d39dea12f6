// Command kuiper compiles and runs a Kuiper expression against JSON inputs,
// either once from the command line or interactively in a REPL. It is a
// thin external consumer of the kuiper package (spec.md §1 scopes the CLI
// itself out of the language's own Non-goals, as a collaborating tool
// rather than part of the language).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/must"
	"github.com/spf13/pflag"

	"github.com/kuiper-lang/kuiper/kuiper"
)

// config holds user defaults loaded from ~/.kuiperrc.toml, overridable by
// flags on each invocation.
type config struct {
	MaxMacroExpansions     int `toml:"max_macro_expansions"`
	OptimizerOperationLimit int `toml:"optimizer_operation_limit"`
}

func loadConfig() config {
	cfg := config{}
	home, err := os.UserHomeDir()
	if err != nil {
		return cfg
	}
	path := filepath.Join(home, ".kuiperrc.toml")
	if _, err := os.Stat(path); err != nil {
		return cfg
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		log.Error.Printf("kuiper: ignoring malformed config %s: %v", path, err)
		return config{}
	}
	return cfg
}

var (
	flagInputs   = pflag.StringArrayP("input", "i", nil, "name=path.json, repeatable; declares one expression input")
	flagExpr     = pflag.StringP("expr", "e", "", "expression source text (takes priority over a source file argument)")
	flagRepl     = pflag.Bool("repl", false, "start an interactive read-eval-print loop instead of running once")
	flagMaxMacro = pflag.Int("max-macro-expansions", 0, "override the macro expansion limit (0 = default)")
	flagOptLimit = pflag.Int("optimizer-operation-limit", 0, "override the optimizer operation limit (0 = default)")
)

func main() {
	pflag.Parse()
	cfg := loadConfig()
	opts := kuiper.DefaultOptions()
	if cfg.MaxMacroExpansions > 0 {
		opts.MaxMacroExpansions = cfg.MaxMacroExpansions
	}
	if cfg.OptimizerOperationLimit > 0 {
		opts.OptimizerOperationLimit = cfg.OptimizerOperationLimit
	}
	if *flagMaxMacro > 0 {
		opts.MaxMacroExpansions = *flagMaxMacro
	}
	if *flagOptLimit > 0 {
		opts.OptimizerOperationLimit = *flagOptLimit
	}

	names, values, err := parseInputFlags(*flagInputs)
	if err != nil {
		log.Error.Printf("kuiper: %v", err)
		os.Exit(1)
	}

	if *flagRepl {
		must.Truef(*flagExpr == "" && len(pflag.Args()) == 0,
			"--repl cannot be combined with -e or a source file argument")
		runRepl(names, values, opts)
		return
	}

	source, err := readSource(*flagExpr, pflag.Args())
	if err != nil {
		log.Error.Printf("kuiper: %v", err)
		os.Exit(1)
	}
	out, err := compileAndRunJSON(source, names, values, opts)
	if err != nil {
		log.Error.Printf("kuiper: %v", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

// readSource returns the expression text: -e takes priority, otherwise the
// first positional argument is read as a source file.
func readSource(exprFlag string, args []string) (string, error) {
	if exprFlag != "" {
		return exprFlag, nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("no expression given: pass -e or a source file")
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(b), nil
}

// parseInputFlags turns "name=path.json" flags into parallel name/value
// slices, reading and parsing each referenced file as JSON.
func parseInputFlags(specs []string) ([]string, []kuiper.Value, error) {
	names := make([]string, len(specs))
	values := make([]kuiper.Value, len(specs))
	for i, spec := range specs {
		name, path, ok := splitOnce(spec, '=')
		if !ok {
			return nil, nil, fmt.Errorf("--input %q: expected name=path.json", spec)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("--input %s: %w", name, err)
		}
		v, err := jsonBytesToValue(b)
		if err != nil {
			return nil, nil, fmt.Errorf("--input %s: %w", name, err)
		}
		names[i] = name
		values[i] = v
	}
	return names, values, nil
}

func splitOnce(s string, sep byte) (before, after string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

func jsonBytesToValue(b []byte) (kuiper.Value, error) {
	return kuiper.ValueFromJSON(b)
}

func compileAndRunJSON(source string, names []string, values []kuiper.Value, opts kuiper.Options) (string, error) {
	ce, err := kuiper.Compile(source, names, opts)
	if err != nil {
		return "", err
	}
	return ce.RunJSON(values)
}
