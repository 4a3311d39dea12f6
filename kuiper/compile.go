package kuiper

import (
	"sync"

	"github.com/google/uuid"
)

// compile.go is the package's public API (spec.md §5): Compile parses,
// macro-expands, lowers, and optimizes source text once; the resulting
// CompiledExpression can then be run against many different input vectors
// without repeating any of that work. The handle/dispose vocabulary of
// spec §5 exists to support a C ABI binding, which is out of scope here
// (spec §1's Non-goals); a native Go caller just holds the
// *CompiledExpression directly, so Dispose only exists for symmetry with
// bindings built on top of this package later and to let a long-lived
// server evict an expression from the process-wide handle table below.
type Options struct {
	// MaxMacroExpansions bounds total macro-substitution steps during
	// expansion (spec §4.3). Zero means DefaultOptions' value.
	MaxMacroExpansions int
	// OptimizerOperationLimit bounds the evaluator operations each single
	// constant-fold attempt may spend (spec §4.5); an attempt that runs out
	// leaves its subtree unfolded. Zero means DefaultOptions' value.
	OptimizerOperationLimit int
}

// DefaultOptions returns the documented default limits (spec.md §9).
func DefaultOptions() Options {
	return Options{MaxMacroExpansions: 20, OptimizerOperationLimit: 100000}
}

func (o Options) withDefaults() Options {
	if o.MaxMacroExpansions == 0 {
		o.MaxMacroExpansions = 20
	}
	if o.OptimizerOperationLimit == 0 {
		o.OptimizerOperationLimit = 100000
	}
	return o
}

// CompiledExpression is the result of a successful Compile: a resolved,
// optimized exec tree plus enough of the original AST to render it back to
// source text (ToString).
type CompiledExpression struct {
	id         string
	source     string
	inputNames []string
	expanded   ASTNode
	tree       execNode
}

// ID returns the handle identifying ce in the process-wide registry
// (resolved by Lookup, released by Dispose).
func (ce *CompiledExpression) ID() string { return ce.id }

var (
	registryMu sync.Mutex
	registry   = map[string]*CompiledExpression{}
)

// Compile parses and lowers source against the declared input names. Each
// name in inputNames becomes a top-level identifier available to the
// expression, resolved to a fixed slot index (spec §4.4).
func Compile(source string, inputNames []string, opts Options) (ce *CompiledExpression, err error) {
	defer recoverAs(&err, func(ke *kuiperError) error {
		return &CompileError{Kind: ke.Kind, Message: ke.Message, Span: ke.Span, HasSpan: ke.Span != NoSpan}
	})
	opts = opts.withDefaults()

	prog := parseProgram([]byte(source))
	expanded := expandMacros(prog, opts.MaxMacroExpansions)
	tree := buildExecTree(expanded, inputNames)
	tree = optimizeTree(tree, opts.OptimizerOperationLimit)

	ce = &CompiledExpression{
		id:         uuid.NewString(),
		source:     source,
		inputNames: append([]string(nil), inputNames...),
		expanded:   expanded,
		tree:       tree,
	}
	registryMu.Lock()
	registry[ce.id] = ce
	registryMu.Unlock()
	return ce, nil
}

// Run evaluates ce against inputs, which must have the same length and
// order as the inputNames passed to Compile.
func (ce *CompiledExpression) Run(inputs []Value) (result Value, err error) {
	defer recoverAs(&err, func(ke *kuiperError) error {
		return &RuntimeError{Kind: ke.Kind, Message: ke.Message, Span: ke.Span, HasSpan: ke.Span != NoSpan}
	})
	if len(inputs) != len(ce.inputNames) {
		raise(NameResolutionError, NoSpan, "run: expected %d input(s), got %d", len(ce.inputNames), len(inputs))
	}
	ev := newEvaluator(inputs)
	result = ev.eval(ce.tree)
	return result, nil
}

// RunJSON evaluates ce and renders the result as JSON text, the form the
// spec's run() operation returns.
func (ce *CompiledExpression) RunJSON(inputs []Value) (string, error) {
	v, err := ce.Run(inputs)
	if err != nil {
		return "", err
	}
	return valueToJSON(v)
}

// ToString renders ce back to Kuiper source text (spec §5), reflecting the
// macro-expanded form rather than the original source (macro uses are
// substitution, not preserved structure).
func (ce *CompiledExpression) ToString() string {
	return ce.expanded.String()
}

// Dispose removes ce from the process-wide handle registry. ce itself
// remains valid for any caller still holding the pointer; Dispose only
// affects lookups by ID.
func (ce *CompiledExpression) Dispose() {
	registryMu.Lock()
	delete(registry, ce.id)
	registryMu.Unlock()
}

// Lookup resolves a handle returned by CompiledExpression.ID back to its
// CompiledExpression, for callers (a binding, a server) that only keep the
// string form.
func Lookup(id string) (*CompiledExpression, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	ce, ok := registry[id]
	return ce, ok
}
