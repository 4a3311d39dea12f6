package kuiper

// catalog.go holds the built-in function registry (spec.md §4.6). Each
// entry pairs a name with its arity (fixed or variadic-with-min), an
// optional required trailing lambda arity, a determinism flag consulted by
// the optimizer (optimize.go), and an evaluator closure.
//
// Grounded on gql/func.go's FormalArg/FuncCallback design, simplified to
// one uniform signature, with the entries kept in a map keyed by name:
// every builtin receives the evaluator plus its
// *unevaluated* argument exec-nodes, and decides for itself which to
// evaluate: ordinary builtins evaluate everything immediately, while builtins
// that take a callback (map, filter, reduce, ...) evaluate only their
// non-lambda arguments and invoke the lambda node themselves via
// evaluator.callLambda.
type builtinFunc func(ev *evaluator, span Span, args []execNode) Value

type builtinEntry struct {
	name string
	// minArgs/maxArgs bound the positional arity. maxArgs == -1 means
	// unbounded (variadic).
	minArgs, maxArgs int
	// lambdaArg, when >= 0, names the (0-based) argument position that
	// must be a Lambda, and lambdaArity is the arity that lambda must have.
	lambdaArg   int
	lambdaArity int
	// deterministic is consulted by the optimizer (optimize.go) and by the
	// exec-tree builder's bottom-up determinism propagation (spec §4.5,
	// §9).
	deterministic bool
	fn            builtinFunc
}

var catalog = map[string]*builtinEntry{}

// registerBuiltin installs a catalog entry. Called from init() in each
// builtins_*.go file, mirroring gql/func.go's RegisterBuiltinFunc.
func registerBuiltin(name string, minArgs, maxArgs int, deterministic bool, fn builtinFunc) *builtinEntry {
	e := &builtinEntry{name: name, minArgs: minArgs, maxArgs: maxArgs, lambdaArg: -1, deterministic: deterministic, fn: fn}
	catalog[name] = e
	return e
}

// withLambdaArg marks argument position idx as requiring a Lambda of the
// given arity (spec §4.4 "lambda-expectation"). Returns e for chaining.
func (e *builtinEntry) withLambdaArg(idx, arity int) *builtinEntry {
	e.lambdaArg = idx
	e.lambdaArity = arity
	return e
}

func lookupBuiltin(name string) (*builtinEntry, bool) {
	e, ok := catalog[name]
	return e, ok
}
