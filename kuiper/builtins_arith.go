package kuiper

import "math"

// builtins_arith.go registers the numeric built-ins of spec.md §4.6: the
// transcendental/rounding functions that have no dedicated operator syntax.
// All are pure functions of their numeric arguments, so every entry here is
// deterministic.

func init() {
	registerBuiltin("abs", 1, 1, true, builtinAbs)
	registerBuiltin("pow", 2, 2, true, builtin2Float("pow", math.Pow))
	registerBuiltin("sqrt", 1, 1, true, builtin1Float("sqrt", math.Sqrt))
	registerBuiltin("exp", 1, 1, true, builtin1Float("exp", math.Exp))
	registerBuiltin("log", 1, 1, true, builtin1Float("log", math.Log))
	registerBuiltin("log10", 1, 1, true, builtin1Float("log10", math.Log10))
	registerBuiltin("sin", 1, 1, true, builtin1Float("sin", math.Sin))
	registerBuiltin("cos", 1, 1, true, builtin1Float("cos", math.Cos))
	registerBuiltin("tan", 1, 1, true, builtin1Float("tan", math.Tan))
	registerBuiltin("atan2", 2, 2, true, builtin2Float("atan2", math.Atan2))
	registerBuiltin("floor", 1, 1, true, builtin1Float("floor", math.Floor))
	registerBuiltin("ceil", 1, 1, true, builtin1Float("ceil", math.Ceil))
	registerBuiltin("round", 1, 1, true, builtin1Float("round", math.Round))
}

func argNumber(span Span, who string, v Value) float64 {
	if !v.Type().numeric() {
		raise(TypeMismatch, span, "%s: expected a number, got %v", who, v.Type())
	}
	return v.AsFloat()
}

func checkFinite(span Span, who string, r float64) Value {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		raise(NumericDomain, span, "%s produced a non-finite result", who)
	}
	return NewFloat(r)
}

func builtin1Float(name string, f func(float64) float64) builtinFunc {
	return func(ev *evaluator, span Span, args []execNode) Value {
		x := argNumber(span, name, ev.eval(args[0]))
		return checkFinite(span, name, f(x))
	}
}

func builtin2Float(name string, f func(float64, float64) float64) builtinFunc {
	return func(ev *evaluator, span Span, args []execNode) Value {
		x := argNumber(span, name, ev.eval(args[0]))
		y := argNumber(span, name, ev.eval(args[1]))
		return checkFinite(span, name, f(x, y))
	}
}

func builtinAbs(ev *evaluator, span Span, args []execNode) Value {
	v := ev.eval(args[0])
	switch v.Type() {
	case IntType:
		n := v.Int()
		if n == math.MinInt64 {
			raise(NumericOverflow, span, "abs(%d) overflows int64", n)
		}
		if n < 0 {
			n = -n
		}
		return NewInt(n)
	case FloatType:
		return NewFloat(math.Abs(v.Float()))
	default:
		raise(TypeMismatch, span, "abs: expected a number, got %v", v.Type())
		return Null
	}
}
