package kuiper

// offsetSpans shifts every span in the subtree rooted at n by offset. It is
// used once, when a string-interpolation segment (spec §4.1) is parsed by
// re-entering the parser on a substring: the sub-parse's spans start at 0
// and must be translated back into the coordinates of the original source.
//
// This walk mirrors the shape of gql/ast_util.go's astTypes.add: a type
// switch over every AST node variant, recursing into children.
func offsetSpans(n ASTNode, offset int) ASTNode {
	shift := func(s Span) Span { return Span{s.Start + offset, s.End + offset} }
	switch n := n.(type) {
	case *ASTNull:
		n.span = shift(n.span)
	case *ASTBool:
		n.span = shift(n.span)
	case *ASTNumber:
		n.span = shift(n.span)
	case *ASTString:
		n.span = shift(n.span)
		for i := range n.Segs {
			if !n.Segs[i].Literal {
				n.Segs[i].Expr = offsetSpans(n.Segs[i].Expr, offset)
			}
		}
	case *ASTArray:
		n.span = shift(n.span)
		for i := range n.Elems {
			n.Elems[i] = offsetSpans(n.Elems[i], offset)
		}
	case *ASTObject:
		n.span = shift(n.span)
		for i := range n.Fields {
			n.Fields[i].Key = offsetSpans(n.Fields[i].Key, offset)
			n.Fields[i].Value = offsetSpans(n.Fields[i].Value, offset)
		}
	case *ASTIdent:
		n.span = shift(n.span)
	case *ASTSelector:
		n.span = shift(n.span)
		n.Base = offsetSpans(n.Base, offset)
		for i := range n.Steps {
			n.Steps[i].span = shift(n.Steps[i].span)
			if !n.Steps[i].IsField {
				n.Steps[i].Index = offsetSpans(n.Steps[i].Index, offset)
			}
		}
	case *ASTBinaryOp:
		n.span = shift(n.span)
		n.OpSpan = shift(n.OpSpan)
		n.LHS = offsetSpans(n.LHS, offset)
		n.RHS = offsetSpans(n.RHS, offset)
	case *ASTUnaryOp:
		n.span = shift(n.span)
		n.Expr = offsetSpans(n.Expr, offset)
	case *ASTIsType:
		n.span = shift(n.span)
		n.Expr = offsetSpans(n.Expr, offset)
	case *ASTCall:
		n.span = shift(n.span)
		n.CalleeSpan = shift(n.CalleeSpan)
		if n.IsMethod {
			n.Recv = offsetSpans(n.Recv, offset)
		}
		for i := range n.Args {
			n.Args[i] = offsetSpans(n.Args[i], offset)
		}
	case *ASTMacroUse:
		n.span = shift(n.span)
		for i := range n.Args {
			n.Args[i] = offsetSpans(n.Args[i], offset)
		}
	case *ASTLambda:
		n.span = shift(n.span)
		n.Body = offsetSpans(n.Body, offset)
	case *ASTIf:
		n.span = shift(n.span)
		n.Cond = offsetSpans(n.Cond, offset)
		n.Then = offsetSpans(n.Then, offset)
		if n.Else != nil {
			n.Else = offsetSpans(n.Else, offset)
		}
	case *ASTParen:
		n.span = shift(n.span)
		n.Expr = offsetSpans(n.Expr, offset)
	}
	return n
}

// walkChildren calls visit on every direct child expression of n. It is
// used by the macro expander (macro.go) to recurse generically without
// repeating the type switch; the exec-tree builder (build.go) has its own.
func walkChildren(n ASTNode, visit func(ASTNode) ASTNode) ASTNode {
	switch n := n.(type) {
	case *ASTString:
		for i := range n.Segs {
			if !n.Segs[i].Literal {
				n.Segs[i].Expr = visit(n.Segs[i].Expr)
			}
		}
	case *ASTArray:
		for i := range n.Elems {
			n.Elems[i] = visit(n.Elems[i])
		}
	case *ASTObject:
		for i := range n.Fields {
			n.Fields[i].Key = visit(n.Fields[i].Key)
			n.Fields[i].Value = visit(n.Fields[i].Value)
		}
	case *ASTSelector:
		n.Base = visit(n.Base)
		for i := range n.Steps {
			if !n.Steps[i].IsField {
				n.Steps[i].Index = visit(n.Steps[i].Index)
			}
		}
	case *ASTBinaryOp:
		n.LHS = visit(n.LHS)
		n.RHS = visit(n.RHS)
	case *ASTUnaryOp:
		n.Expr = visit(n.Expr)
	case *ASTIsType:
		n.Expr = visit(n.Expr)
	case *ASTCall:
		if n.IsMethod {
			n.Recv = visit(n.Recv)
		}
		for i := range n.Args {
			n.Args[i] = visit(n.Args[i])
		}
	case *ASTMacroUse:
		for i := range n.Args {
			n.Args[i] = visit(n.Args[i])
		}
	case *ASTLambda:
		n.Body = visit(n.Body)
	case *ASTIf:
		n.Cond = visit(n.Cond)
		n.Then = visit(n.Then)
		if n.Else != nil {
			n.Else = visit(n.Else)
		}
	case *ASTParen:
		n.Expr = visit(n.Expr)
	}
	return n
}
