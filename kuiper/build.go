package kuiper

import "strconv"

// build.go lowers a macro-expanded AST into an exec tree (spec.md §4.4):
// identifiers resolve to static slot indices, method-call sugar collapses
// into Call nodes, selector chains collapse into a single Select node, and
// every built-in name is resolved against the catalog (catalog.go) once so
// evaluation never has to do string lookups. Determinism (spec §4.5) is
// propagated bottom-up as each node is built, the same way gql/optimizer.go
// computes its "pure" flag while constructing the plan tree.

// scope is a lexical frame of name -> slot-index bindings, chained to its
// enclosing frame. The root scope binds the declared input names to slots
// 0..n-1; each nested lambda pushes a frame binding its own parameters to
// the slots immediately following whatever was in scope at that point.
type scope struct {
	parent *scope
	binds  map[string]int
}

func (s *scope) lookup(name string) (int, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if idx, ok := sc.binds[name]; ok {
			return idx, true
		}
	}
	return 0, false
}

// builder carries the running slot-depth count across a single build pass.
// depth is the number of slots visible at the current point in the tree,
// i.e. where the next nested lambda's parameters would start.
type builder struct {
	depth int
}

var typeNames = map[string]bool{
	"null": true, "bool": true, "int": true, "float": true,
	"number": true, "string": true, "array": true, "object": true,
}

// buildExecTree lowers expr (the macro-expanded body of a Program) into an
// exec tree resolved against inputNames.
func buildExecTree(expr ASTNode, inputNames []string) execNode {
	root := &scope{binds: map[string]int{}}
	for i, name := range inputNames {
		root.binds[name] = i
	}
	b := &builder{depth: len(inputNames)}
	return b.build(expr, root)
}

func (b *builder) build(n ASTNode, sc *scope) execNode {
	switch n := n.(type) {
	case *ASTNull:
		return &ecConstant{span: n.span, val: Null}
	case *ASTBool:
		return &ecConstant{span: n.span, val: NewBool(n.Val)}
	case *ASTNumber:
		if n.IsFloat {
			return &ecConstant{span: n.span, val: NewFloat(n.F)}
		}
		return &ecConstant{span: n.span, val: NewInt(n.I)}
	case *ASTString:
		return b.buildString(n, sc)
	case *ASTArray:
		return b.buildArray(n, sc)
	case *ASTObject:
		return b.buildObject(n, sc)
	case *ASTIdent:
		return b.buildIdent(n, sc)
	case *ASTSelector:
		return b.buildSelector(n, sc)
	case *ASTBinaryOp:
		lhs := b.build(n.LHS, sc)
		rhs := b.build(n.RHS, sc)
		return &ecBinary{span: n.span, opSpan: n.OpSpan, op: n.Op, opText: n.OpText, lhs: lhs, rhs: rhs,
			det: deterministic(lhs) && deterministic(rhs)}
	case *ASTUnaryOp:
		e := b.build(n.Expr, sc)
		return &ecUnary{span: n.span, op: n.Op, expr: e, det: deterministic(e)}
	case *ASTIsType:
		if !typeNames[n.TypeName] {
			raise(TypeMismatch, n.span, "unknown type name %q in is-expression", n.TypeName)
		}
		e := b.build(n.Expr, sc)
		return &ecIsType{span: n.span, expr: e, typeName: n.TypeName, det: deterministic(e)}
	case *ASTCall:
		return b.buildCall(n, sc)
	case *ASTLambda:
		return b.buildLambda(n, sc)
	case *ASTIf:
		cond := b.build(n.Cond, sc)
		then := b.build(n.Then, sc)
		det := deterministic(cond) && deterministic(then)
		var els execNode
		if n.Else != nil {
			els = b.build(n.Else, sc)
			det = det && deterministic(els)
		}
		return &ecIf{span: n.span, cond: cond, then: then, els_: els, det: det}
	case *ASTParen:
		return b.build(n.Expr, sc)
	case *ASTMacroUse:
		// The macro expander (macro.go) runs before build and removes every
		// ASTMacroUse from the tree; reaching one here is an internal bug.
		raise(NameResolutionError, n.span, "internal: unexpanded macro use %q reached exec-tree builder", n.Name)
	}
	raise(NameResolutionError, n.Span(), "internal: unsupported AST node %T", n)
	return nil
}

func (b *builder) buildIdent(n *ASTIdent, sc *scope) execNode {
	if idx, ok := sc.lookup(n.Name); ok {
		return &ecSlotRef{span: n.span, index: idx, name: n.Name}
	}
	raise(NameResolutionError, n.span, "undefined name %q", n.Name)
	return nil
}

func (b *builder) buildString(n *ASTString, sc *scope) execNode {
	segs := make([]ecStringSegment, len(n.Segs))
	det := true
	for i, s := range n.Segs {
		if s.Literal {
			segs[i] = ecStringSegment{literal: true, text: s.Text}
			continue
		}
		e := b.build(s.Expr, sc)
		segs[i] = ecStringSegment{expr: e}
		det = det && deterministic(e)
	}
	return &ecStringBuild{span: n.span, segs: segs, det: det}
}

func (b *builder) buildArray(n *ASTArray, sc *scope) execNode {
	entries := make([]execNode, len(n.Elems))
	det := true
	for i, e := range n.Elems {
		entries[i] = b.build(e, sc)
		det = det && deterministic(entries[i])
	}
	return &ecArrayBuild{span: n.span, entries: entries, det: det}
}

func (b *builder) buildObject(n *ASTObject, sc *scope) execNode {
	entries := make([]ecObjectEntry, len(n.Fields))
	det := true
	for i, f := range n.Fields {
		key := b.build(f.Key, sc)
		val := b.build(f.Value, sc)
		entries[i] = ecObjectEntry{key: key, value: val}
		det = det && deterministic(key) && deterministic(val)
	}
	return &ecObjectBuild{span: n.span, entries: entries, det: det}
}

// buildSelector collapses a run of .field/[expr] steps into a single
// ecSelect node, per spec §4.4 ("a run of .field/[expr] collapses into a
// single node").
func (b *builder) buildSelector(n *ASTSelector, sc *scope) execNode {
	base := b.build(n.Base, sc)
	steps := make([]ecSelectStep, len(n.Steps))
	det := deterministic(base)
	for i, s := range n.Steps {
		if s.IsField {
			steps[i] = ecSelectStep{isField: true, field: s.Field, span: s.span}
			continue
		}
		idx := b.build(s.Index, sc)
		steps[i] = ecSelectStep{isField: false, index: idx, span: s.span}
		det = det && deterministic(idx)
	}
	return &ecSelect{span: n.span, base: base, steps: steps, det: det}
}

// buildCall resolves a call against the built-in catalog, desugaring
// method-call syntax (x.f(args)) into Call(f, [x, args...]) per spec §4.4.
func (b *builder) buildCall(n *ASTCall, sc *scope) execNode {
	entry, ok := lookupBuiltin(n.Callee)
	if !ok {
		raise(NameResolutionError, n.CalleeSpan, "Unrecognized function: %s", n.Callee)
	}
	var astArgs []ASTNode
	if n.IsMethod {
		astArgs = make([]ASTNode, 0, len(n.Args)+1)
		astArgs = append(astArgs, n.Recv)
		astArgs = append(astArgs, n.Args...)
	} else {
		astArgs = n.Args
	}
	if len(astArgs) < entry.minArgs || (entry.maxArgs >= 0 && len(astArgs) > entry.maxArgs) {
		raise(ArityError, n.span, "%q expects %s argument(s), got %d", n.Callee, arityDesc(entry), len(astArgs))
	}
	args := make([]execNode, len(astArgs))
	det := entry.deterministic
	for i, a := range astArgs {
		if i == entry.lambdaArg {
			lam, ok := a.(*ASTLambda)
			if !ok {
				raise(TypeMismatch, a.Span(), "%q expects a lambda argument at position %d", n.Callee, i+1)
			}
			if len(lam.Params) != entry.lambdaArity {
				raise(ArityError, lam.span, "%q expects a lambda of arity %d at position %d, got %d", n.Callee, entry.lambdaArity, i+1, len(lam.Params))
			}
			args[i] = b.buildLambda(lam, sc)
			// A lambda argument's own purity doesn't make the call
			// non-deterministic by itself; only the builtin's own flag and
			// its non-lambda arguments matter (the lambda is re-evaluated
			// per element regardless of when the call happens).
			continue
		}
		args[i] = b.build(a, sc)
		det = det && deterministic(args[i])
	}
	return &ecCall{span: n.span, builtin: entry, args: args, det: det}
}

func (b *builder) buildLambda(n *ASTLambda, sc *scope) execNode {
	paramStart := b.depth
	binds := make(map[string]int, len(n.Params))
	for i, p := range n.Params {
		binds[p] = paramStart + i
	}
	inner := &scope{parent: sc, binds: binds}
	b.depth += len(n.Params)
	body := b.build(n.Body, inner)
	b.depth -= len(n.Params)
	return &ecLambda{span: n.span, arity: len(n.Params), paramStart: paramStart, body: body, det: false}
}

func arityDesc(e *builtinEntry) string {
	if e.maxArgs < 0 {
		if e.minArgs == 0 {
			return "any number of"
		}
		return "at least " + strconv.Itoa(e.minArgs)
	}
	if e.minArgs == e.maxArgs {
		return "exactly " + strconv.Itoa(e.minArgs)
	}
	return "between " + strconv.Itoa(e.minArgs) + " and " + strconv.Itoa(e.maxArgs)
}
