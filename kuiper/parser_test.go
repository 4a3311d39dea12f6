package kuiper

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func parseOk(t *testing.T, src string) ASTNode {
	t.Helper()
	return parseProgram([]byte(src)).Expr
}

func TestParserPrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3), not (1 + 2) * 3.
	expr := parseOk(t, "1 + 2 * 3").(*ASTBinaryOp)
	expect.EQ(t, opAdd, expr.Op)
	rhs := expr.RHS.(*ASTBinaryOp)
	expect.EQ(t, opMul, rhs.Op)
}

func TestParserBinaryOpSpanCoversOnlyTheOperator(t *testing.T) {
	// "1 / input": the OpSpan must cover just the "/" token (span [2,3)),
	// not the whole expression, so a division-by-zero diagnostic can point
	// at the operator (spec §8 scenario 5).
	expr := parseOk(t, "1 / input").(*ASTBinaryOp)
	expect.EQ(t, opDiv, expr.Op)
	expect.EQ(t, 2, expr.OpSpan.Start)
	expect.EQ(t, 3, expr.OpSpan.End)
}

func TestParserMethodCallCalleeSpanExcludesReceiver(t *testing.T) {
	// `"test".notafunc()`: CalleeSpan covers "notafunc()" (span [7,17)),
	// not the string receiver (spec §8 scenario 4).
	expr := parseOk(t, `"test".notafunc()`).(*ASTCall)
	expect.EQ(t, "notafunc", expr.Callee)
	expect.EQ(t, 7, expr.CalleeSpan.Start)
	expect.EQ(t, 17, expr.CalleeSpan.End)
}

func TestParserComparisonBindsTighterThanEquality(t *testing.T) {
	expr := parseOk(t, "1 < 2 == true").(*ASTBinaryOp)
	expect.EQ(t, opEq, expr.Op)
	lhs := expr.LHS.(*ASTBinaryOp)
	expect.EQ(t, opLt, lhs.Op)
}

func TestParserAndOrPrecedence(t *testing.T) {
	expr := parseOk(t, "true || false && true").(*ASTBinaryOp)
	expect.EQ(t, opOrOr, expr.Op)
	rhs := expr.RHS.(*ASTBinaryOp)
	expect.EQ(t, opAndAnd, rhs.Op)
}

func TestParserUnaryRightAssociative(t *testing.T) {
	expr := parseOk(t, "!!true").(*ASTUnaryOp)
	expect.EQ(t, opNot, expr.Op)
	inner := expr.Expr.(*ASTUnaryOp)
	expect.EQ(t, opNot, inner.Op)
}

func TestParserSelectorChainCollapses(t *testing.T) {
	sel := parseOk(t, "a.b[0].c").(*ASTSelector)
	expect.EQ(t, 3, len(sel.Steps))
	expect.True(t, sel.Steps[0].IsField)
	expect.EQ(t, "b", sel.Steps[0].Field)
	expect.False(t, sel.Steps[1].IsField)
	expect.True(t, sel.Steps[2].IsField)
	expect.EQ(t, "c", sel.Steps[2].Field)
}

func TestParserMethodCallDesugarsToCallWithRecv(t *testing.T) {
	call := parseOk(t, "x.upper()").(*ASTCall)
	expect.EQ(t, "upper", call.Callee)
	expect.True(t, call.IsMethod)
	_, ok := call.Recv.(*ASTIdent)
	expect.True(t, ok)
}

func TestParserLambdaDisambiguation(t *testing.T) {
	single := parseOk(t, "x => x + 1").(*ASTLambda)
	expect.EQ(t, []string{"x"}, single.Params)

	multi := parseOk(t, "(a, b) => a + b").(*ASTLambda)
	expect.EQ(t, []string{"a", "b"}, multi.Params)

	zero := parseOk(t, "() => 1").(*ASTLambda)
	expect.EQ(t, 0, len(zero.Params))

	paren := parseOk(t, "(1 + 2)").(*ASTParen)
	_, ok := paren.Expr.(*ASTBinaryOp)
	expect.True(t, ok)
}

func TestParserIfExpr(t *testing.T) {
	ifExpr := parseOk(t, "if(true, 1, 2)").(*ASTIf)
	expect.True(t, ifExpr.Cond.(*ASTBool).Val)
	expect.EQ(t, int64(1), ifExpr.Then.(*ASTNumber).I)
	expect.EQ(t, int64(2), ifExpr.Else.(*ASTNumber).I)

	noElse := parseOk(t, "if(true, 1)").(*ASTIf)
	expect.True(t, noElse.Else == nil)
}

func TestParserIsExpr(t *testing.T) {
	isExpr := parseOk(t, `x is "string"`).(*ASTIsType)
	expect.EQ(t, "string", isExpr.TypeName)
}

func TestParserObjectLiteralKeyForms(t *testing.T) {
	obj := parseOk(t, `{a: 1, "b": 2, [c]: 3}`).(*ASTObject)
	expect.EQ(t, 3, len(obj.Fields))
	key0 := obj.Fields[0].Key.(*ASTString)
	expect.EQ(t, "a", key0.Segs[0].Text)
	_, ok := obj.Fields[2].Key.(*ASTIdent)
	expect.True(t, ok)
}

func TestParserArrayLiteral(t *testing.T) {
	arr := parseOk(t, "[1, 2, 3]").(*ASTArray)
	expect.EQ(t, 3, len(arr.Elems))
}

func TestParserMacroDefAndUse(t *testing.T) {
	prog := parseProgram([]byte(`#double := x => x * 2; double(21)`))
	expect.EQ(t, 1, len(prog.Macros))
	expect.EQ(t, "double", prog.Macros[0].Name)
	use := prog.Expr.(*ASTMacroUse)
	expect.EQ(t, "double", use.Name)
	expect.EQ(t, 1, len(use.Args))
}

func TestParserUnexpectedTrailingTokenIsParseError(t *testing.T) {
	kind := recoverKind(t, func() { parseProgram([]byte("1 2")) })
	expect.EQ(t, ParseError, kind)
}

func TestParserUndeclaredMacroNameIsPlainCall(t *testing.T) {
	// foo(1) where foo was never declared with "#foo :=" parses as an
	// ordinary ASTCall, not ASTMacroUse; the call is resolved (and may fail)
	// later, against the builtin catalog.
	call := parseOk(t, "foo(1)").(*ASTCall)
	expect.EQ(t, "foo", call.Callee)
}
