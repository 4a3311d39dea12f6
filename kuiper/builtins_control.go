package kuiper

// builtins_control.go registers the control-flow built-ins of spec.md
// §4.6 that aren't already syntax (unlike `if(cond, then, else)`, which the
// parser turns directly into an ASTIf/ecIf node). Every argument here is
// evaluated lazily and in order, so only the branch actually selected is
// ever evaluated.

func init() {
	registerBuiltin("case", 2, -1, true, builtinCase)
	registerBuiltin("coalesce", 1, -1, true, builtinCoalesce)
	registerBuiltin("if_value", 3, 3, true, builtinIfValue)
}

// builtinCase evaluates (cond, value) pairs in order and returns the value
// of the first cond that is truthy. A trailing unpaired argument is the
// default returned when no cond matches; without one, an unmatched case is
// Null.
func builtinCase(ev *evaluator, span Span, args []execNode) Value {
	i := 0
	for ; i+1 < len(args); i += 2 {
		if ev.eval(args[i]).Truthy() {
			return ev.eval(args[i+1])
		}
	}
	if i < len(args) {
		return ev.eval(args[i])
	}
	return Null
}

// builtinCoalesce returns the first argument that doesn't evaluate to Null.
func builtinCoalesce(ev *evaluator, span Span, args []execNode) Value {
	for _, a := range args {
		v := ev.eval(a)
		if v.Type() != NullType {
			return v
		}
	}
	return Null
}

// builtinIfValue returns whenNotNull if value isn't Null, else whenNull.
func builtinIfValue(ev *evaluator, span Span, args []execNode) Value {
	v := ev.eval(args[0])
	if v.Type() != NullType {
		return ev.eval(args[1])
	}
	return ev.eval(args[2])
}
