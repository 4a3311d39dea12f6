package kuiper

import (
	"math"
	"strconv"
)

// builtins_convert.go registers the explicit type-conversion built-ins of
// spec.md §4.6. The try_* variants return Null instead of raising
// ConversionError, for callers that would rather branch on the result than
// handle an error.

func init() {
	registerBuiltin("int", 1, 1, true, builtinInt(false))
	registerBuiltin("try_int", 1, 1, true, builtinInt(true))
	registerBuiltin("float", 1, 1, true, builtinFloat(false))
	registerBuiltin("try_float", 1, 1, true, builtinFloat(true))
	registerBuiltin("bool", 1, 1, true, builtinBool(false))
	registerBuiltin("try_bool", 1, 1, true, builtinBool(true))
	registerBuiltin("string", 1, 1, true, builtinString)
}

func builtinInt(lenient bool) builtinFunc {
	return func(ev *evaluator, span Span, args []execNode) Value {
		v := ev.eval(args[0])
		switch v.Type() {
		case IntType:
			return v
		case FloatType:
			return NewInt(int64(v.Float()))
		case StringType:
			n, err := strconv.ParseInt(v.Str(), 10, 64)
			if err != nil {
				if lenient {
					return Null
				}
				raise(ConversionError, span, "cannot convert %q to int", v.Str())
			}
			return NewInt(n)
		default:
			if lenient {
				return Null
			}
			raise(ConversionError, span, "cannot convert %v to int", v.Type())
			return Null
		}
	}
}

func builtinFloat(lenient bool) builtinFunc {
	return func(ev *evaluator, span Span, args []execNode) Value {
		v := ev.eval(args[0])
		switch v.Type() {
		case FloatType:
			return v
		case IntType:
			return NewFloat(float64(v.Int()))
		case StringType:
			f, err := strconv.ParseFloat(v.Str(), 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				if lenient {
					return Null
				}
				raise(ConversionError, span, "cannot convert %q to float", v.Str())
			}
			return NewFloat(f)
		default:
			if lenient {
				return Null
			}
			raise(ConversionError, span, "cannot convert %v to float", v.Type())
			return Null
		}
	}
}

func builtinBool(lenient bool) builtinFunc {
	return func(ev *evaluator, span Span, args []execNode) Value {
		v := ev.eval(args[0])
		switch v.Type() {
		case BoolType:
			return v
		case StringType:
			b, err := strconv.ParseBool(v.Str())
			if err != nil {
				if lenient {
					return Null
				}
				raise(ConversionError, span, "cannot convert %q to bool", v.Str())
			}
			return NewBool(b)
		default:
			if lenient {
				return Null
			}
			raise(ConversionError, span, "cannot convert %v to bool", v.Type())
			return Null
		}
	}
}

// builtinString renders v as text: String passes through unquoted, every
// other type renders the same form to_string uses for literals.
func builtinString(ev *evaluator, span Span, args []execNode) Value {
	v := ev.eval(args[0])
	if v.Type() == StringType {
		return v
	}
	return NewString(v.String())
}
