package kuiper

import (
	"strconv"
	"strings"
)

// ASTNode is the common interface of every parse-tree node (spec.md §3).
// Mirrors the shape of gql/ast.go's ASTNode, minus the hash/eval methods
// gql/ast.go needs for its own distributed dedup and tree-walking
// interpreter: Kuiper lowers the AST into an exec tree (exectree.go) before
// either of those concerns apply, so the AST itself only needs to carry
// structure, span, and a debug/round-trip rendering.
type ASTNode interface {
	Span() Span
	String() string
}

type binOpKind int

const (
	opAdd binOpKind = iota
	opSub
	opMul
	opDiv
	opMod
	opEq
	opNeq
	opGe
	opLe
	opGt
	opLt
	opAndAnd
	opOrOr
)

type unOpKind int

const (
	opNeg unOpKind = iota
	opNot
)

// ASTNull, ASTBool, ASTNumber are literal nodes.
type ASTNull struct{ span Span }
type ASTBool struct {
	span Span
	Val  bool
}
type ASTNumber struct {
	span    Span
	IsFloat bool
	I       int64
	F       float64
}

func (n *ASTNull) Span() Span   { return n.span }
func (n *ASTNull) String() string { return "null" }

func (n *ASTBool) Span() Span { return n.span }
func (n *ASTBool) String() string {
	if n.Val {
		return "true"
	}
	return "false"
}

func (n *ASTNumber) Span() Span { return n.span }
func (n *ASTNumber) String() string {
	if n.IsFloat {
		return strconv.FormatFloat(n.F, 'g', -1, 64)
	}
	return strconv.FormatInt(n.I, 10)
}

// ASTStringSegment is either a literal run or an embedded sub-expression,
// the unfolded form of string interpolation (spec §3).
type ASTStringSegment struct {
	Literal bool
	Text    string
	Expr    ASTNode
}

// ASTString is a (possibly interpolated) string literal.
type ASTString struct {
	span Span
	Segs []ASTStringSegment
}

func (n *ASTString) Span() Span { return n.span }
func (n *ASTString) String() string {
	var b strings.Builder
	b.WriteByte('"')
	for _, s := range n.Segs {
		if s.Literal {
			b.WriteString(s.Text)
		} else {
			b.WriteByte('{')
			b.WriteString(s.Expr.String())
			b.WriteByte('}')
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ASTArray is an array literal.
type ASTArray struct {
	span Span
	Elems []ASTNode
}

func (n *ASTArray) Span() Span { return n.span }
func (n *ASTArray) String() string {
	parts := make([]string, len(n.Elems))
	for i, e := range n.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ASTObjectField is one key:value pair of an object literal. Key may be a
// computed expression (spec §3).
type ASTObjectField struct {
	Key   ASTNode
	Value ASTNode
}

// ASTObject is an object literal.
type ASTObject struct {
	span   Span
	Fields []ASTObjectField
}

func (n *ASTObject) Span() Span { return n.span }
func (n *ASTObject) String() string {
	parts := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		parts[i] = f.Key.String() + ": " + f.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ASTIdent is a bare identifier: an input name, a lambda parameter, or (in
// function-call position) a built-in/macro name.
type ASTIdent struct {
	span Span
	Name string
}

func (n *ASTIdent) Span() Span     { return n.span }
func (n *ASTIdent) String() string { return n.Name }

// SelectorStep is one .field or [expr] step in a selector chain.
type SelectorStep struct {
	span   Span
	Field  string  // set when this is a .field step
	Index  ASTNode // set when this is a [expr] step
	IsField bool
}

// ASTSelector is a base expression followed by a chain of field/index steps
// (spec §3). A run of `.field`/`[expr]` collapses into a single node.
type ASTSelector struct {
	span  Span
	Base  ASTNode
	Steps []SelectorStep
}

func (n *ASTSelector) Span() Span { return n.span }
func (n *ASTSelector) String() string {
	var b strings.Builder
	b.WriteString(n.Base.String())
	for _, s := range n.Steps {
		if s.IsField {
			b.WriteByte('.')
			b.WriteString(s.Field)
		} else {
			b.WriteByte('[')
			b.WriteString(s.Index.String())
			b.WriteByte(']')
		}
	}
	return b.String()
}

// ASTBinaryOp is a binary operator expression.
type ASTBinaryOp struct {
	span     Span
	OpSpan   Span
	Op       binOpKind
	OpText   string
	LHS, RHS ASTNode
}

func (n *ASTBinaryOp) Span() Span { return n.span }
func (n *ASTBinaryOp) String() string {
	return n.LHS.String() + " " + n.OpText + " " + n.RHS.String()
}

// ASTUnaryOp is a prefix operator expression (`!` or `-`).
type ASTUnaryOp struct {
	span   Span
	Op     unOpKind
	OpText string
	Expr   ASTNode
}

func (n *ASTUnaryOp) Span() Span { return n.span }
func (n *ASTUnaryOp) String() string {
	return n.OpText + n.Expr.String()
}

// ASTIsType is the `x is "type"` runtime-type predicate.
type ASTIsType struct {
	span     Span
	Expr     ASTNode
	TypeName string
}

func (n *ASTIsType) Span() Span { return n.span }
func (n *ASTIsType) String() string {
	return n.Expr.String() + " is " + strconv.Quote(n.TypeName)
}

// ASTCall is a function call: callee name plus positional args. Method-call
// sugar (`x.f(args)`) is rewritten to this form during parsing (spec §4.2
// notes the sugar; spec §4.4 does the Call(f,[x,...]) desugar at exec-tree
// build time instead). Kuiper keeps the AST shape uniform and defers the
// desugar to build.go so the AST faithfully mirrors source syntax for
// to_string rendering.
type ASTCall struct {
	span Span
	// CalleeSpan covers just the callee name and parens (x.f(args) not the
	// receiver x), so that a name-resolution or arity diagnostic can point
	// at the function being called rather than the whole expression.
	CalleeSpan Span
	Callee     string
	Args       []ASTNode
	IsMethod   bool // true if written as x.f(args)
	Recv       ASTNode // set when IsMethod
}

func (n *ASTCall) Span() Span { return n.span }
func (n *ASTCall) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	if n.IsMethod {
		return n.Recv.String() + "." + n.Callee + "(" + strings.Join(parts, ", ") + ")"
	}
	return n.Callee + "(" + strings.Join(parts, ", ") + ")"
}

// ASTLambda is `(p1, ...) => body` or the bare-parameter form `p => body`.
type ASTLambda struct {
	span   Span
	Params []string
	Body   ASTNode
}

func (n *ASTLambda) Span() Span { return n.span }
func (n *ASTLambda) String() string {
	return "(" + strings.Join(n.Params, ", ") + ") => " + n.Body.String()
}

// ASTIf is `if(cond, then[, else])`.
type ASTIf struct {
	span       Span
	Cond, Then ASTNode
	Else       ASTNode // nil if omitted
}

func (n *ASTIf) Span() Span { return n.span }
func (n *ASTIf) String() string {
	if n.Else == nil {
		return "if(" + n.Cond.String() + ", " + n.Then.String() + ")"
	}
	return "if(" + n.Cond.String() + ", " + n.Then.String() + ", " + n.Else.String() + ")"
}

// ASTMacroDef is `#name := (params) => body;`.
type ASTMacroDef struct {
	span   Span
	Name   string
	Params []string
	Body   ASTNode
}

func (n *ASTMacroDef) Span() Span { return n.span }
func (n *ASTMacroDef) String() string {
	return "#" + n.Name + " := (" + strings.Join(n.Params, ", ") + ") => " + n.Body.String() + ";"
}

// ASTMacroUse is a call-syntax use of a macro name. The parser produces it
// instead of ASTCall when the callee names a macro declared with
// `#name :=` before that point; the macro expander replaces it with the
// macro body (spec §4.3).
type ASTMacroUse struct {
	span Span
	Name string
	Args []ASTNode
}

func (n *ASTMacroUse) Span() Span { return n.span }
func (n *ASTMacroUse) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return n.Name + "(" + strings.Join(parts, ", ") + ")"
}

// ASTParen preserves an explicit parenthesization for faithful to_string
// rendering; it carries no independent semantics.
type ASTParen struct {
	span Span
	Expr ASTNode
}

func (n *ASTParen) Span() Span     { return n.span }
func (n *ASTParen) String() string { return "(" + n.Expr.String() + ")" }

// Program is the top-level parse result: macro definitions followed by a
// single expression (spec §4.2).
type Program struct {
	Macros []*ASTMacroDef
	Expr   ASTNode
}
