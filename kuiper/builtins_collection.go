package kuiper

import (
	"math"
	"strings"
)

// builtins_collection.go registers the array/object built-ins of
// spec.md §4.6. Lambda-taking builtins (map, filter, reduce, ...) receive
// their callback argument unevaluated (as an *ecLambda exec node) and drive
// it themselves via evaluator.callLambda, per catalog.go's uniform-signature
// design.

func init() {
	registerBuiltin("map", 2, 2, false, builtinMap).withLambdaArg(1, 1)
	registerBuiltin("flatmap", 2, 2, false, builtinFlatmap).withLambdaArg(1, 1)
	registerBuiltin("filter", 2, 2, false, builtinFilter).withLambdaArg(1, 1)
	registerBuiltin("reduce", 3, 3, false, builtinReduce).withLambdaArg(2, 2)
	registerBuiltin("zip", 2, 2, true, builtinZip)
	registerBuiltin("chunk", 2, 2, true, builtinChunk)
	registerBuiltin("slice", 2, 3, true, builtinSlice)
	registerBuiltin("tail", 1, 2, true, builtinTail)
	registerBuiltin("pairs", 1, 1, true, builtinPairs)
	registerBuiltin("to_object", 1, 1, true, builtinToObject)
	registerBuiltin("distinct_by", 2, 2, false, builtinDistinctBy).withLambdaArg(1, 1)
	registerBuiltin("select", 2, 2, true, builtinSelect)
	registerBuiltin("except", 2, 2, true, builtinExcept)
	// join is an alias of string_join (spec §9 Open Question: "join" is
	// defined only over arrays of strings, not as a relational join).
	registerBuiltin("join", 2, 2, true, builtinStringJoin)
	registerBuiltin("length", 1, 1, true, builtinLength)
	registerBuiltin("sum", 1, 1, true, builtinSum)
	registerBuiltin("min", 1, 1, true, builtinMin)
	registerBuiltin("max", 1, 1, true, builtinMax)
	registerBuiltin("all", 2, 2, false, builtinAll).withLambdaArg(1, 1)
	registerBuiltin("any", 2, 2, false, builtinAny).withLambdaArg(1, 1)
	registerBuiltin("contains", 2, 2, true, builtinContains)
}

func asLambdaNode(n execNode) *ecLambda {
	lam, ok := n.(*ecLambda)
	if !ok {
		panic("internal: expected lambda exec node")
	}
	return lam
}

func builtinMap(ev *evaluator, span Span, args []execNode) Value {
	arr := argArray(span, "map", ev.eval(args[0]))
	lam := asLambdaNode(args[1])
	out := make([]Value, len(arr))
	for i, e := range arr {
		out[i] = ev.callLambda(lam, []Value{e})
	}
	return NewArray(out)
}

func builtinFlatmap(ev *evaluator, span Span, args []execNode) Value {
	arr := argArray(span, "flatmap", ev.eval(args[0]))
	lam := asLambdaNode(args[1])
	var out []Value
	for _, e := range arr {
		r := ev.callLambda(lam, []Value{e})
		out = append(out, argArray(span, "flatmap", r)...)
	}
	return NewArray(out)
}

func builtinFilter(ev *evaluator, span Span, args []execNode) Value {
	arr := argArray(span, "filter", ev.eval(args[0]))
	lam := asLambdaNode(args[1])
	var out []Value
	for _, e := range arr {
		if ev.callLambda(lam, []Value{e}).Truthy() {
			out = append(out, e)
		}
	}
	return NewArray(out)
}

func builtinReduce(ev *evaluator, span Span, args []execNode) Value {
	arr := argArray(span, "reduce", ev.eval(args[0]))
	acc := ev.eval(args[1])
	lam := asLambdaNode(args[2])
	for _, e := range arr {
		acc = ev.callLambda(lam, []Value{acc, e})
	}
	return acc
}

func builtinZip(ev *evaluator, span Span, args []execNode) Value {
	a := argArray(span, "zip", ev.eval(args[0]))
	b := argArray(span, "zip", ev.eval(args[1]))
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		out[i] = NewArray([]Value{a[i], b[i]})
	}
	return NewArray(out)
}

func builtinChunk(ev *evaluator, span Span, args []execNode) Value {
	arr := argArray(span, "chunk", ev.eval(args[0]))
	size := argIndex(span, "chunk", ev.eval(args[1]))
	if size <= 0 {
		raise(TypeMismatch, span, "chunk: size must be positive, got %d", size)
	}
	var out []Value
	for i := 0; i < len(arr); i += size {
		end := i + size
		if end > len(arr) {
			end = len(arr)
		}
		chunk := make([]Value, end-i)
		copy(chunk, arr[i:end])
		out = append(out, NewArray(chunk))
	}
	return NewArray(out)
}

func builtinSlice(ev *evaluator, span Span, args []execNode) Value {
	arr := argArray(span, "slice", ev.eval(args[0]))
	start := argIndex(span, "slice", ev.eval(args[1]))
	if start < 0 {
		start += len(arr)
	}
	end := len(arr)
	if len(args) == 3 {
		end = argIndex(span, "slice", ev.eval(args[2]))
		if end < 0 {
			end += len(arr)
		}
	}
	if start < 0 || start > len(arr) || end < start || end > len(arr) {
		raise(NameResolutionError, span, "slice range [%d:%d] out of bounds (length %d)", start, end, len(arr))
	}
	out := make([]Value, end-start)
	copy(out, arr[start:end])
	return NewArray(out)
}

func builtinTail(ev *evaluator, span Span, args []execNode) Value {
	arr := argArray(span, "tail", ev.eval(args[0]))
	n := 1
	if len(args) == 2 {
		n = argIndex(span, "tail", ev.eval(args[1]))
	}
	if n < 0 || n > len(arr) {
		raise(NameResolutionError, span, "tail: count %d out of bounds (length %d)", n, len(arr))
	}
	out := make([]Value, len(arr)-n)
	copy(out, arr[n:])
	return NewArray(out)
}

func builtinPairs(ev *evaluator, span Span, args []execNode) Value {
	v := ev.eval(args[0])
	if v.Type() != ObjectType {
		raise(TypeMismatch, span, "pairs: expected an object, got %v", v.Type())
	}
	obj := v.Object()
	out := make([]Value, obj.Len())
	for i := 0; i < obj.Len(); i++ {
		out[i] = NewArray([]Value{NewString(obj.Key(i)), obj.Value(i)})
	}
	return NewArray(out)
}

func builtinToObject(ev *evaluator, span Span, args []execNode) Value {
	arr := argArray(span, "to_object", ev.eval(args[0]))
	obj := NewObject()
	for _, pair := range arr {
		p := argArray(span, "to_object", pair)
		if len(p) != 2 {
			raise(TypeMismatch, span, "to_object: expected [key, value] pairs, got length %d", len(p))
		}
		if p[0].Type() != StringType {
			raise(TypeMismatch, span, "to_object: key must be a string, got %v", p[0].Type())
		}
		obj.Set(p[0].Str(), p[1])
	}
	return NewObjectValue(obj)
}

func builtinDistinctBy(ev *evaluator, span Span, args []execNode) Value {
	arr := argArray(span, "distinct_by", ev.eval(args[0]))
	lam := asLambdaNode(args[1])
	var out []Value
	var seen []Value
	for _, e := range arr {
		key := ev.callLambda(lam, []Value{e})
		dup := false
		for _, s := range seen {
			if Equal(s, key) {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, key)
			out = append(out, e)
		}
	}
	return NewArray(out)
}

func projectObject(span Span, who string, ev *evaluator, args []execNode, keep bool) Value {
	v := ev.eval(args[0])
	if v.Type() != ObjectType {
		raise(TypeMismatch, span, "%s: expected an object, got %v", who, v.Type())
	}
	keysArr := argArray(span, who, ev.eval(args[1]))
	keys := make(map[string]bool, len(keysArr))
	for _, k := range keysArr {
		if k.Type() != StringType {
			raise(TypeMismatch, span, "%s: key list must contain only strings", who)
		}
		keys[k.Str()] = true
	}
	src := v.Object()
	out := NewObject()
	for i := 0; i < src.Len(); i++ {
		k := src.Key(i)
		if keys[k] == keep {
			out.Set(k, src.Value(i))
		}
	}
	return NewObjectValue(out)
}

func builtinSelect(ev *evaluator, span Span, args []execNode) Value {
	return projectObject(span, "select", ev, args, true)
}

func builtinExcept(ev *evaluator, span Span, args []execNode) Value {
	return projectObject(span, "except", ev, args, false)
}

func builtinLength(ev *evaluator, span Span, args []execNode) Value {
	v := ev.eval(args[0])
	switch v.Type() {
	case StringType:
		return NewInt(int64(len([]rune(v.Str()))))
	case ArrayType:
		return NewInt(int64(len(v.Array())))
	case ObjectType:
		return NewInt(int64(v.Object().Len()))
	default:
		raise(TypeMismatch, span, "length: expected a string, array, or object, got %v", v.Type())
		return Null
	}
}

func builtinSum(ev *evaluator, span Span, args []execNode) Value {
	arr := argArray(span, "sum", ev.eval(args[0]))
	allInt := true
	var isum int64
	var fsum float64
	for _, e := range arr {
		if !e.Type().numeric() {
			raise(TypeMismatch, span, "sum: expected a number, got %v", e.Type())
		}
		if e.Type() == IntType && allInt {
			isum = checkedAddInt(span, isum, e.Int())
		} else {
			allInt = false
		}
		fsum += e.AsFloat()
	}
	if allInt {
		return NewInt(isum)
	}
	if math.IsNaN(fsum) || math.IsInf(fsum, 0) {
		raise(NumericDomain, span, "sum produced a non-finite result")
	}
	return NewFloat(fsum)
}

func builtinMin(ev *evaluator, span Span, args []execNode) Value {
	return extremum(span, "min", argArray(span, "min", ev.eval(args[0])), -1)
}

func builtinMax(ev *evaluator, span Span, args []execNode) Value {
	return extremum(span, "max", argArray(span, "max", ev.eval(args[0])), 1)
}

func extremum(span Span, who string, arr []Value, want int) Value {
	if len(arr) == 0 {
		raise(NameResolutionError, span, "%s: empty array", who)
	}
	best := arr[0]
	for _, e := range arr[1:] {
		cmp := evalRelational(span, opLt, e, best)
		if cmp.Truthy() == (want < 0) {
			best = e
		}
	}
	return best
}

func builtinAll(ev *evaluator, span Span, args []execNode) Value {
	arr := argArray(span, "all", ev.eval(args[0]))
	lam := asLambdaNode(args[1])
	for _, e := range arr {
		if !ev.callLambda(lam, []Value{e}).Truthy() {
			return False
		}
	}
	return True
}

func builtinAny(ev *evaluator, span Span, args []execNode) Value {
	arr := argArray(span, "any", ev.eval(args[0]))
	lam := asLambdaNode(args[1])
	for _, e := range arr {
		if ev.callLambda(lam, []Value{e}).Truthy() {
			return True
		}
	}
	return False
}

func builtinContains(ev *evaluator, span Span, args []execNode) Value {
	v := ev.eval(args[0])
	needle := ev.eval(args[1])
	switch v.Type() {
	case ArrayType:
		for _, e := range v.Array() {
			if Equal(e, needle) {
				return True
			}
		}
		return False
	case StringType:
		if needle.Type() != StringType {
			raise(TypeMismatch, span, "contains: expected a string, got %v", needle.Type())
		}
		return NewBool(strings.Contains(v.Str(), needle.Str()))
	default:
		raise(TypeMismatch, span, "contains: expected an array or string, got %v", v.Type())
		return Null
	}
}
