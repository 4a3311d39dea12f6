package kuiper

import "math"

// eval.go is the tree-walking evaluator (spec.md §4.7). Per spec §9's
// design note, it carries no dynamic scope chain or call-frame stack like
// gql/eval.go's bindings: every identifier has already been resolved to a
// static slot index by build.go, so the evaluator only needs a flat,
// growable slot vector. A lambda invocation copies the slots visible at its
// definition point plus its argument values into a fresh vector (via
// append into a new backing array, never in place) so that evaluating the
// same compiled expression concurrently against different inputs, or
// re-entering a lambda recursively through a builtin like reduce, can never
// observe another call's bindings.
type evaluator struct {
	slots []Value
	// budget is non-nil only for an evaluator driving the optimizer's
	// constant-folding (spec §4.5): it bounds the total number of eval
	// calls across the whole fold attempt, including any lambda bodies
	// invoked along the way, so a pathological constant subtree can't make
	// compilation itself expensive. A real Run() evaluator leaves it nil
	// and never raises OptimizerOperationLimit.
	budget *opBudget
}

// opBudget is shared (by pointer) between an evaluator and every inner
// evaluator callLambda spawns from it, so the limit bounds the whole
// fold attempt rather than resetting at each lambda call.
type opBudget struct {
	remaining int
}

func newEvaluator(slots []Value) *evaluator {
	return &evaluator{slots: slots}
}

// newBoundedEvaluator is used only by the optimizer (optimize.go), per
// spec §4.5: "the optimizer runs the evaluator with an empty input vector
// and a bounded operation counter."
func newBoundedEvaluator(slots []Value, limit int) *evaluator {
	return &evaluator{slots: slots, budget: &opBudget{remaining: limit}}
}

func (ev *evaluator) eval(n execNode) Value {
	if ev.budget != nil {
		ev.budget.remaining--
		if ev.budget.remaining < 0 {
			raise(OptimizerOperationLimit, n.Span(), "optimizer operation limit exceeded")
		}
	}
	switch n := n.(type) {
	case *ecConstant:
		return n.val
	case *ecSlotRef:
		return ev.slots[n.index]
	case *ecSelect:
		return ev.evalSelect(n)
	case *ecStringBuild:
		return ev.evalStringBuild(n)
	case *ecBinary:
		return ev.evalBinary(n)
	case *ecUnary:
		return ev.evalUnary(n)
	case *ecIsType:
		return ev.evalIsType(n)
	case *ecCall:
		return n.builtin.fn(ev, n.span, n.args)
	case *ecLambda:
		raise(TypeMismatch, n.span, "a lambda cannot be used as a value")
	case *ecIf:
		if ev.eval(n.cond).Truthy() {
			return ev.eval(n.then)
		}
		if n.els_ != nil {
			return ev.eval(n.els_)
		}
		return Null
	case *ecObjectBuild:
		return ev.evalObjectBuild(n)
	case *ecArrayBuild:
		return ev.evalArrayBuild(n)
	}
	raise(NameResolutionError, n.Span(), "internal: unsupported exec node %T", n)
	return Null
}

// callLambda invokes lam with the given already-evaluated arguments. It is
// called by builtins that take a callback (map, filter, reduce, ...); the
// builtin decides when and how many times to invoke it, and with what
// arguments, per spec §4.6.
func (ev *evaluator) callLambda(lam *ecLambda, args []Value) Value {
	if len(args) != lam.arity {
		raise(ArityError, lam.span, "lambda expects %d argument(s), got %d", lam.arity, len(args))
	}
	newSlots := make([]Value, lam.paramStart, lam.paramStart+len(args))
	copy(newSlots, ev.slots[:lam.paramStart])
	newSlots = append(newSlots, args...)
	inner := &evaluator{slots: newSlots, budget: ev.budget}
	return inner.eval(lam.body)
}

// evalSelect walks a chain of field/index steps. A missing object field, a
// missing object key, or an out-of-range array/string index yields Null
// rather than raising (spec §4.4, §4.7), so that coalesce(obj.maybe, default)
// can fall through instead of aborting the whole evaluation. Only a step
// applied to a type that doesn't support it at all (TypeMismatch) aborts.
func (ev *evaluator) evalSelect(n *ecSelect) Value {
	cur := ev.eval(n.base)
	for _, step := range n.steps {
		if step.isField {
			if cur.Type() != ObjectType {
				raise(TypeMismatch, step.span, "cannot select field %q on %v", step.field, cur.Type())
			}
			v, ok := cur.Object().Get(step.field)
			if !ok {
				return Null
			}
			cur = v
			continue
		}
		idx := ev.eval(step.index)
		switch cur.Type() {
		case ArrayType:
			i, ok := asIndex(idx)
			if !ok {
				raise(TypeMismatch, step.span, "array index must be an integer, got %v", idx.Type())
			}
			arr := cur.Array()
			if i < 0 {
				i += len(arr)
			}
			if i < 0 || i >= len(arr) {
				return Null
			}
			cur = arr[i]
		case ObjectType:
			if idx.Type() != StringType {
				raise(TypeMismatch, step.span, "object index must be a string, got %v", idx.Type())
			}
			v, ok := cur.Object().Get(idx.Str())
			if !ok {
				return Null
			}
			cur = v
		case StringType:
			i, ok := asIndex(idx)
			if !ok {
				raise(TypeMismatch, step.span, "string index must be an integer, got %v", idx.Type())
			}
			runes := []rune(cur.Str())
			if i < 0 {
				i += len(runes)
			}
			if i < 0 || i >= len(runes) {
				return Null
			}
			cur = NewString(string(runes[i]))
		default:
			raise(TypeMismatch, step.span, "cannot index into %v", cur.Type())
		}
	}
	return cur
}

func asIndex(v Value) (int, bool) {
	if v.Type() != IntType {
		return 0, false
	}
	return int(v.Int()), true
}

func (ev *evaluator) evalStringBuild(n *ecStringBuild) Value {
	var buf []byte
	for _, s := range n.segs {
		if s.literal {
			buf = append(buf, s.text...)
			continue
		}
		v := ev.eval(s.expr)
		buf = append(buf, renderInterpolated(v)...)
	}
	return NewString(string(buf))
}

// renderInterpolated renders v for embedding into a string literal: a
// String segment contributes its raw text (no quoting), everything else
// renders the same as the debug/to_string form.
func renderInterpolated(v Value) string {
	if v.Type() == StringType {
		return v.Str()
	}
	return v.String()
}

func (ev *evaluator) evalUnary(n *ecUnary) Value {
	v := ev.eval(n.expr)
	switch n.op {
	case opNeg:
		switch v.Type() {
		case IntType:
			if v.Int() == math.MinInt64 {
				raise(NumericOverflow, n.span, "negation of %d overflows int64", v.Int())
			}
			return NewInt(-v.Int())
		case FloatType:
			return NewFloat(-v.Float())
		default:
			raise(TypeMismatch, n.span, "unary - requires a number, got %v", v.Type())
		}
	case opNot:
		return NewBool(!v.Truthy())
	}
	raise(NameResolutionError, n.span, "internal: unknown unary operator")
	return Null
}

func (ev *evaluator) evalIsType(n *ecIsType) Value {
	v := ev.eval(n.expr)
	switch n.typeName {
	case "number":
		return NewBool(v.Type() == IntType || v.Type() == FloatType)
	default:
		return NewBool(v.Type().String() == n.typeName)
	}
}

func (ev *evaluator) evalBinary(n *ecBinary) Value {
	switch n.op {
	case opAndAnd:
		l := ev.eval(n.lhs)
		if !l.Truthy() {
			return False
		}
		r := ev.eval(n.rhs)
		return NewBool(r.Truthy())
	case opOrOr:
		l := ev.eval(n.lhs)
		if l.Truthy() {
			return True
		}
		r := ev.eval(n.rhs)
		return NewBool(r.Truthy())
	}
	lhs := ev.eval(n.lhs)
	rhs := ev.eval(n.rhs)
	switch n.op {
	case opEq:
		return NewBool(Equal(lhs, rhs))
	case opNeq:
		return NewBool(!Equal(lhs, rhs))
	case opGe, opLe, opGt, opLt:
		return evalRelational(n.opSpan, n.op, lhs, rhs)
	case opAdd:
		if lhs.Type() == StringType && rhs.Type() == StringType {
			return NewString(lhs.Str() + rhs.Str())
		}
		return evalArith(n.opSpan, opAdd, lhs, rhs)
	case opSub, opMul, opDiv, opMod:
		return evalArith(n.opSpan, n.op, lhs, rhs)
	}
	raise(NameResolutionError, n.span, "internal: unknown binary operator")
	return Null
}

func evalRelational(span Span, op binOpKind, lhs, rhs Value) Value {
	var cmp int
	switch {
	case lhs.Type().numeric() && rhs.Type().numeric():
		lf, rf := lhs.AsFloat(), rhs.AsFloat()
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		default:
			cmp = 0
		}
	case lhs.Type() == StringType && rhs.Type() == StringType:
		switch {
		case lhs.Str() < rhs.Str():
			cmp = -1
		case lhs.Str() > rhs.Str():
			cmp = 1
		default:
			cmp = 0
		}
	default:
		raise(TypeMismatch, span, "cannot compare %v with %v", lhs.Type(), rhs.Type())
	}
	switch op {
	case opLt:
		return NewBool(cmp < 0)
	case opLe:
		return NewBool(cmp <= 0)
	case opGt:
		return NewBool(cmp > 0)
	case opGe:
		return NewBool(cmp >= 0)
	}
	return Null
}

// evalArith implements spec §4.7's numeric coercion rules: Integer op
// Integer stays Integer (checked for overflow); any Float operand promotes
// the whole operation to Float; a zero divisor is DivideByZero regardless
// of type; a Float result that is NaN or +-Inf is NumericDomain.
func evalArith(span Span, op binOpKind, lhs, rhs Value) Value {
	if !lhs.Type().numeric() {
		raise(TypeMismatch, span, "arithmetic requires a number, got %v", lhs.Type())
	}
	if !rhs.Type().numeric() {
		raise(TypeMismatch, span, "arithmetic requires a number, got %v", rhs.Type())
	}
	if lhs.Type() == IntType && rhs.Type() == IntType {
		a, b := lhs.Int(), rhs.Int()
		switch op {
		case opAdd:
			return NewInt(checkedAddInt(span, a, b))
		case opSub:
			return NewInt(checkedSubInt(span, a, b))
		case opMul:
			return NewInt(checkedMulInt(span, a, b))
		case opDiv:
			if b == 0 {
				raise(DivideByZero, span, "Divide by zero")
			}
			return NewInt(a / b)
		case opMod:
			if b == 0 {
				raise(DivideByZero, span, "Divide by zero")
			}
			return NewInt(a % b)
		}
	}
	a, b := lhs.AsFloat(), rhs.AsFloat()
	var r float64
	switch op {
	case opAdd:
		r = a + b
	case opSub:
		r = a - b
	case opMul:
		r = a * b
	case opDiv:
		if b == 0 {
			raise(DivideByZero, span, "Divide by zero")
		}
		r = a / b
	case opMod:
		if b == 0 {
			raise(DivideByZero, span, "Divide by zero")
		}
		r = math.Mod(a, b)
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		raise(NumericDomain, span, "arithmetic produced a non-finite result")
	}
	return NewFloat(r)
}

func checkedAddInt(span Span, a, b int64) int64 {
	r := a + b
	if (b > 0 && r < a) || (b < 0 && r > a) {
		raise(NumericOverflow, span, "integer addition overflow: %d + %d", a, b)
	}
	return r
}

func checkedSubInt(span Span, a, b int64) int64 {
	r := a - b
	if (b < 0 && r < a) || (b > 0 && r > a) {
		raise(NumericOverflow, span, "integer subtraction overflow: %d - %d", a, b)
	}
	return r
}

func checkedMulInt(span Span, a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	r := a * b
	if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		raise(NumericOverflow, span, "integer multiplication overflow: %d * %d", a, b)
	}
	return r
}

func (ev *evaluator) evalObjectBuild(n *ecObjectBuild) Value {
	obj := NewObject()
	for _, e := range n.entries {
		k := ev.eval(e.key)
		if k.Type() != StringType {
			raise(TypeMismatch, n.span, "object key must be a string, got %v", k.Type())
		}
		obj.Set(k.Str(), ev.eval(e.value))
	}
	return NewObjectValue(obj)
}

func (ev *evaluator) evalArrayBuild(n *ecArrayBuild) Value {
	vals := make([]Value, len(n.entries))
	for i, e := range n.entries {
		vals[i] = ev.eval(e)
	}
	return NewArray(vals)
}
