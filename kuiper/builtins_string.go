package kuiper

import "strings"

// builtins_string.go registers the string built-ins of spec.md §4.6. All
// indexing is rune-based, not byte-based, since Kuiper strings are
// user-facing JSON text and a byte offset into multi-byte UTF-8 would split
// a character.

func init() {
	registerBuiltin("concat", 0, -1, true, builtinConcat)
	registerBuiltin("split", 2, 2, true, builtinSplit)
	registerBuiltin("substring", 2, 3, true, builtinSubstring)
	registerBuiltin("chars", 1, 1, true, builtinChars)
	registerBuiltin("replace", 3, 3, true, builtinReplace)
	registerBuiltin("trim_whitespace", 1, 1, true, builtinTrimWhitespace)
	registerBuiltin("lower", 1, 1, true, builtinLower)
	registerBuiltin("upper", 1, 1, true, builtinUpper)
	registerBuiltin("string_join", 2, 2, true, builtinStringJoin)
	registerBuiltin("starts_with", 2, 2, true, builtinStartsWith)
	registerBuiltin("ends_with", 2, 2, true, builtinEndsWith)
	registerBuiltin("translate", 3, 3, true, builtinTranslate)
}

func argString(span Span, who string, v Value) string {
	if v.Type() != StringType {
		raise(TypeMismatch, span, "%s: expected a string, got %v", who, v.Type())
	}
	return v.Str()
}

func builtinConcat(ev *evaluator, span Span, args []execNode) Value {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(argString(span, "concat", ev.eval(a)))
	}
	return NewString(b.String())
}

func builtinSplit(ev *evaluator, span Span, args []execNode) Value {
	s := argString(span, "split", ev.eval(args[0]))
	sep := argString(span, "split", ev.eval(args[1]))
	var parts []string
	if sep == "" {
		parts = strings.Split(s, "")
	} else {
		parts = strings.Split(s, sep)
	}
	out := make([]Value, len(parts))
	for i, p := range parts {
		out[i] = NewString(p)
	}
	return NewArray(out)
}

func builtinSubstring(ev *evaluator, span Span, args []execNode) Value {
	s := argString(span, "substring", ev.eval(args[0]))
	runes := []rune(s)
	start := argIndex(span, "substring", ev.eval(args[1]))
	if start < 0 {
		start += len(runes)
	}
	end := len(runes)
	if len(args) == 3 {
		n := argIndex(span, "substring", ev.eval(args[2]))
		end = start + n
	}
	if start < 0 || start > len(runes) || end < start || end > len(runes) {
		raise(NameResolutionError, span, "substring range [%d:%d] out of bounds (length %d)", start, end, len(runes))
	}
	return NewString(string(runes[start:end]))
}

func builtinChars(ev *evaluator, span Span, args []execNode) Value {
	s := argString(span, "chars", ev.eval(args[0]))
	runes := []rune(s)
	out := make([]Value, len(runes))
	for i, r := range runes {
		out[i] = NewString(string(r))
	}
	return NewArray(out)
}

func builtinReplace(ev *evaluator, span Span, args []execNode) Value {
	s := argString(span, "replace", ev.eval(args[0]))
	old := argString(span, "replace", ev.eval(args[1]))
	newS := argString(span, "replace", ev.eval(args[2]))
	return NewString(strings.ReplaceAll(s, old, newS))
}

func builtinTrimWhitespace(ev *evaluator, span Span, args []execNode) Value {
	return NewString(strings.TrimSpace(argString(span, "trim_whitespace", ev.eval(args[0]))))
}

func builtinLower(ev *evaluator, span Span, args []execNode) Value {
	return NewString(strings.ToLower(argString(span, "lower", ev.eval(args[0]))))
}

func builtinUpper(ev *evaluator, span Span, args []execNode) Value {
	return NewString(strings.ToUpper(argString(span, "upper", ev.eval(args[0]))))
}

func builtinStringJoin(ev *evaluator, span Span, args []execNode) Value {
	arr := argArray(span, "string_join", ev.eval(args[0]))
	sep := argString(span, "string_join", ev.eval(args[1]))
	parts := make([]string, len(arr))
	for i, v := range arr {
		parts[i] = argString(span, "string_join", v)
	}
	return NewString(strings.Join(parts, sep))
}

func builtinStartsWith(ev *evaluator, span Span, args []execNode) Value {
	s := argString(span, "starts_with", ev.eval(args[0]))
	prefix := argString(span, "starts_with", ev.eval(args[1]))
	return NewBool(strings.HasPrefix(s, prefix))
}

func builtinEndsWith(ev *evaluator, span Span, args []execNode) Value {
	s := argString(span, "ends_with", ev.eval(args[0]))
	suffix := argString(span, "ends_with", ev.eval(args[1]))
	return NewBool(strings.HasSuffix(s, suffix))
}

// builtinTranslate implements a tr-style character transliteration: each
// rune of from is replaced by the rune at the same position of to; from and
// to must have equal rune length.
func builtinTranslate(ev *evaluator, span Span, args []execNode) Value {
	s := argString(span, "translate", ev.eval(args[0]))
	from := []rune(argString(span, "translate", ev.eval(args[1])))
	to := []rune(argString(span, "translate", ev.eval(args[2])))
	if len(from) != len(to) {
		raise(TypeMismatch, span, "translate: from and to must have the same length (%d vs %d)", len(from), len(to))
	}
	table := make(map[rune]rune, len(from))
	for i, r := range from {
		table[r] = to[i]
	}
	return NewString(strings.Map(func(r rune) rune {
		if m, ok := table[r]; ok {
			return m
		}
		return r
	}, s))
}

func argIndex(span Span, who string, v Value) int {
	if v.Type() != IntType {
		raise(TypeMismatch, span, "%s: expected an integer, got %v", who, v.Type())
	}
	return int(v.Int())
}

func argArray(span Span, who string, v Value) []Value {
	if v.Type() != ArrayType {
		raise(TypeMismatch, span, "%s: expected an array, got %v", who, v.Type())
	}
	return v.Array()
}
