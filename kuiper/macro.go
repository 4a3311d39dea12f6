package kuiper

// macro.go implements the macro expander (spec.md §4.3): `#name :=
// (params) => body;` definitions are rewritten into their bodies at each
// use site, bounded by a recursion limit, since macros are pure
// substitution rather than closures (spec §9 Design Notes).

type macroDef struct {
	params []string
	body   ASTNode
}

type macroExpander struct {
	defs  map[string]macroDef
	count int
	limit int
}

// expandMacros expands every macro use in prog.Expr and returns the
// resulting macro-free AST.
func expandMacros(prog *Program, limit int) ASTNode {
	e := &macroExpander{defs: map[string]macroDef{}, limit: limit}
	for _, m := range prog.Macros {
		e.defs[m.Name] = macroDef{params: m.Params, body: m.Body}
	}
	return e.expand(prog.Expr)
}

func (e *macroExpander) expand(n ASTNode) ASTNode {
	use, ok := n.(*ASTMacroUse)
	if !ok {
		return walkChildren(n, e.expand)
	}
	def, ok := e.defs[use.Name]
	if !ok {
		// The parser only ever produces ASTMacroUse for names already
		// declared as macros (see parseIdentOrLambdaOrCall), so this
		// indicates an internal inconsistency rather than user error.
		raise(NameResolutionError, use.span, "undefined macro %q", use.Name)
	}
	if len(use.Args) != len(def.params) {
		raise(ArityError, use.span, "macro %q expects %d argument(s), got %d", use.Name, len(def.params), len(use.Args))
	}
	e.count++
	if e.count > e.limit {
		raise(MacroExpansionLimit, use.span, "macro expansion limit (%d) exceeded while expanding %q", e.limit, use.Name)
	}
	subst := make(map[string]ASTNode, len(def.params))
	for i, pname := range def.params {
		subst[pname] = e.expand(use.Args[i])
	}
	body := substituteParams(def.body, subst)
	return e.expand(body)
}

// substituteParams deep-clones body, replacing every ASTIdent whose name is
// a key of subst with a fresh clone of the bound argument. Cloning (rather
// than sharing node pointers across substitution sites) keeps the result a
// proper tree, since the same macro body may be substituted at multiple use
// sites or the same parameter may appear more than once in the body.
func substituteParams(body ASTNode, subst map[string]ASTNode) ASTNode {
	if id, ok := body.(*ASTIdent); ok {
		if arg, ok := subst[id.Name]; ok {
			return substituteParams(arg, nil)
		}
		return cloneNode(id)
	}
	clone := cloneNode(body)
	return walkChildren(clone, func(child ASTNode) ASTNode {
		return substituteParams(child, subst)
	})
}

// cloneNode returns a shallow copy of n's top-level struct (children are
// cloned separately by whatever walk calls cloneNode, e.g. substituteParams
// above via walkChildren).
func cloneNode(n ASTNode) ASTNode {
	switch n := n.(type) {
	case *ASTNull:
		c := *n
		return &c
	case *ASTBool:
		c := *n
		return &c
	case *ASTNumber:
		c := *n
		return &c
	case *ASTString:
		c := *n
		c.Segs = append([]ASTStringSegment(nil), n.Segs...)
		return &c
	case *ASTArray:
		c := *n
		c.Elems = append([]ASTNode(nil), n.Elems...)
		return &c
	case *ASTObject:
		c := *n
		c.Fields = append([]ASTObjectField(nil), n.Fields...)
		return &c
	case *ASTIdent:
		c := *n
		return &c
	case *ASTSelector:
		c := *n
		c.Steps = append([]SelectorStep(nil), n.Steps...)
		return &c
	case *ASTBinaryOp:
		c := *n
		return &c
	case *ASTUnaryOp:
		c := *n
		return &c
	case *ASTIsType:
		c := *n
		return &c
	case *ASTCall:
		c := *n
		c.Args = append([]ASTNode(nil), n.Args...)
		return &c
	case *ASTMacroUse:
		c := *n
		c.Args = append([]ASTNode(nil), n.Args...)
		return &c
	case *ASTLambda:
		c := *n
		c.Params = append([]string(nil), n.Params...)
		return &c
	case *ASTIf:
		c := *n
		return &c
	case *ASTParen:
		c := *n
		return &c
	default:
		return n
	}
}
