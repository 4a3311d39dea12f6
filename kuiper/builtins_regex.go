package kuiper

import "regexp"

// builtins_regex.go registers the regular-expression built-ins of
// spec.md §4.6, backed by the standard library's RE2 engine. An invalid
// pattern raises RegexError rather than ConversionError or TypeMismatch,
// since the string itself is well-typed but not a valid regular expression.

func init() {
	registerBuiltin("regex_is_match", 2, 2, true, builtinRegexIsMatch)
	registerBuiltin("regex_first_match", 2, 2, true, builtinRegexFirstMatch)
	registerBuiltin("regex_first_captures", 2, 2, true, builtinRegexFirstCaptures)
	registerBuiltin("regex_all_matches", 2, 2, true, builtinRegexAllMatches)
	registerBuiltin("regex_all_captures", 2, 2, true, builtinRegexAllCaptures)
	registerBuiltin("regex_replace", 3, 3, true, builtinRegexReplace(false))
	registerBuiltin("regex_replace_all", 3, 3, true, builtinRegexReplace(true))
}

func compileRegex(span Span, pattern string) *regexp.Regexp {
	re, err := regexp.Compile(pattern)
	if err != nil {
		raise(RegexError, span, "invalid regular expression %q: %v", pattern, err)
	}
	return re
}

func builtinRegexIsMatch(ev *evaluator, span Span, args []execNode) Value {
	s := argString(span, "regex_is_match", ev.eval(args[0]))
	re := compileRegex(span, argString(span, "regex_is_match", ev.eval(args[1])))
	return NewBool(re.MatchString(s))
}

func builtinRegexFirstMatch(ev *evaluator, span Span, args []execNode) Value {
	s := argString(span, "regex_first_match", ev.eval(args[0]))
	re := compileRegex(span, argString(span, "regex_first_match", ev.eval(args[1])))
	m := re.FindString(s)
	if m == "" && !re.MatchString(s) {
		return Null
	}
	return NewString(m)
}

func builtinRegexFirstCaptures(ev *evaluator, span Span, args []execNode) Value {
	s := argString(span, "regex_first_captures", ev.eval(args[0]))
	re := compileRegex(span, argString(span, "regex_first_captures", ev.eval(args[1])))
	m := re.FindStringSubmatch(s)
	if m == nil {
		return Null
	}
	out := make([]Value, len(m)-1)
	for i, g := range m[1:] {
		out[i] = NewString(g)
	}
	return NewArray(out)
}

func builtinRegexAllMatches(ev *evaluator, span Span, args []execNode) Value {
	s := argString(span, "regex_all_matches", ev.eval(args[0]))
	re := compileRegex(span, argString(span, "regex_all_matches", ev.eval(args[1])))
	ms := re.FindAllString(s, -1)
	out := make([]Value, len(ms))
	for i, m := range ms {
		out[i] = NewString(m)
	}
	return NewArray(out)
}

func builtinRegexAllCaptures(ev *evaluator, span Span, args []execNode) Value {
	s := argString(span, "regex_all_captures", ev.eval(args[0]))
	re := compileRegex(span, argString(span, "regex_all_captures", ev.eval(args[1])))
	ms := re.FindAllStringSubmatch(s, -1)
	out := make([]Value, len(ms))
	for i, m := range ms {
		groups := make([]Value, len(m)-1)
		for j, g := range m[1:] {
			groups[j] = NewString(g)
		}
		out[i] = NewArray(groups)
	}
	return NewArray(out)
}

func builtinRegexReplace(all bool) builtinFunc {
	return func(ev *evaluator, span Span, args []execNode) Value {
		who := "regex_replace"
		if all {
			who = "regex_replace_all"
		}
		s := argString(span, who, ev.eval(args[0]))
		re := compileRegex(span, argString(span, who, ev.eval(args[1])))
		repl := argString(span, who, ev.eval(args[2]))
		if all {
			return NewString(re.ReplaceAllString(s, repl))
		}
		loc := re.FindStringIndex(s)
		if loc == nil {
			return NewString(s)
		}
		replaced := re.ReplaceAllString(s[loc[0]:loc[1]], repl)
		return NewString(s[:loc[0]] + replaced + s[loc[1]:])
	}
}
