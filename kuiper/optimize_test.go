package kuiper

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func buildOk(t *testing.T, src string, inputNames []string) execNode {
	t.Helper()
	prog := parseProgram([]byte(src))
	expanded := expandMacros(prog, 20)
	return buildExecTree(expanded, inputNames)
}

func TestOptimizeFoldsConstantArithmetic(t *testing.T) {
	tree := buildOk(t, "1 + 2 * 3", nil)
	folded := optimizeTree(tree, 100000)
	c, ok := folded.(*ecConstant)
	expect.True(t, ok)
	expect.EQ(t, int64(7), c.val.Int())
}

func TestOptimizeDoesNotFoldNonDeterministicSubtree(t *testing.T) {
	tree := buildOk(t, "input + 1", []string{"input"})
	folded := optimizeTree(tree, 100000)
	_, ok := folded.(*ecConstant)
	expect.False(t, ok)
	bin, ok := folded.(*ecBinary)
	expect.True(t, ok)
	_, lhsIsSlot := bin.lhs.(*ecSlotRef)
	expect.True(t, lhsIsSlot)
}

func TestOptimizeFoldsInsideLambdaBodyButNotTheCallItself(t *testing.T) {
	// map's call itself is non-deterministic (depends on the runtime array),
	// but the constant subexpression inside the lambda body still folds.
	tree := buildOk(t, "map(input, x => x + (1 + 1))", []string{"input"})
	folded := optimizeTree(tree, 100000)
	call, ok := folded.(*ecCall)
	expect.True(t, ok)
	lam, ok := call.args[1].(*ecLambda)
	expect.True(t, ok)
	bin := lam.body.(*ecBinary)
	c, ok := bin.rhs.(*ecConstant)
	expect.True(t, ok)
	expect.EQ(t, int64(2), c.val.Int())
}

func TestOptimizeStopsAtOperationLimit(t *testing.T) {
	// With a zero-operation budget, nothing folds even though the whole tree
	// is deterministic.
	tree := buildOk(t, "1 + 2", nil)
	folded := optimizeTree(tree, 0)
	_, ok := folded.(*ecConstant)
	expect.False(t, ok)
}

func TestOptimizeFoldsDeterministicBuiltinCall(t *testing.T) {
	// now() is deterministic=false (time-dependent), so it's never a
	// candidate for folding in the first place; digest() of a constant
	// string, however, is deterministic and should fold cleanly.
	tree := buildOk(t, `digest("md5", "abc")`, nil)
	folded := optimizeTree(tree, 100000)
	_, ok := folded.(*ecConstant)
	expect.True(t, ok)
}

func TestOptimizeFoldsDeeplyNestedConstantExpression(t *testing.T) {
	// Bottom-up folding collapses each nesting level to a single ecConstant
	// before its parent is attempted, so a deeply nested but still constant
	// expression folds under a small per-attempt budget: no single tryFold
	// call ever has to re-walk the whole original depth.
	deep := buildOk(t, "((((1+1)+1)+1)+1)+1", nil)
	folded := optimizeTree(deep, 3)
	c, ok := folded.(*ecConstant)
	expect.True(t, ok)
	expect.EQ(t, int64(6), c.val.Int())
}

// TestBoundedEvaluatorBudgetIsSharedAcrossLambdaCalls exercises the
// optimizer's operation counter (spec §4.5) directly at the evaluator
// level, since optimizeTree's bottom-up folding never hands tryFold a
// subtree deep enough to exhaust a small budget on its own (every child is
// pre-folded to a single ecConstant first). The counter itself, though, is
// a genuine per-eval-call budget shared by pointer across callLambda's
// inner evaluators (eval.go's opBudget) rather than a per-subtree one: a
// handful of lambda invocations sharing one evaluator's budget must
// eventually exhaust it, each invocation picking up where the last left
// off instead of getting a fresh allowance.
func TestBoundedEvaluatorBudgetIsSharedAcrossLambdaCalls(t *testing.T) {
	// x => x + 1: one ecBinary + one ecSlotRef + one ecConstant, 3 eval()
	// calls per invocation.
	lam := &ecLambda{
		arity:      1,
		paramStart: 0,
		body: &ecBinary{
			op:  opAdd,
			lhs: &ecSlotRef{index: 0},
			rhs: &ecConstant{val: NewInt(1)},
			det: true,
		},
	}

	ev := newBoundedEvaluator(nil, 7)
	for i := 0; i < 2; i++ {
		v := ev.callLambda(lam, []Value{NewInt(int64(i))})
		expect.EQ(t, int64(i+1), v.Int())
	}
	// 2 calls at 3 ops/call leave a budget of 7 with 1 operation of slack,
	// not enough for a 3rd call: if each call got its own fresh budget of
	// 7 instead of sharing one, this would succeed.
	kind := recoverKind(t, func() { ev.callLambda(lam, []Value{NewInt(2)}) })
	expect.EQ(t, OptimizerOperationLimit, kind)
}

func TestOptimizePropagatesErrorsThatAlwaysFail(t *testing.T) {
	// A constant-folded division by zero is a guaranteed failure, so it must
	// surface as a genuine error from optimizeTree rather than being left
	// unfolded.
	tree := buildOk(t, "1 / 0", nil)
	kind := recoverKind(t, func() { optimizeTree(tree, 100000) })
	expect.EQ(t, DivideByZero, kind)
}
