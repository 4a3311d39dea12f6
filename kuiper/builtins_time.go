package kuiper

import "time"

// builtins_time.go registers the time built-ins of spec.md §4.6. Layouts
// are Go reference-time layout strings (e.g. "2006-01-02T15:04:05Z07:00"),
// the same convention the standard library's time package uses, rather
// than introducing a second strftime-style mini-language.

func init() {
	registerBuiltin("now", 0, 0, false, builtinNow)
	registerBuiltin("format_timestamp", 2, 2, true, builtinFormatTimestamp)
	registerBuiltin("to_unix_timestamp", 2, 2, true, builtinToUnixTimestamp)
}

func builtinNow(ev *evaluator, span Span, args []execNode) Value {
	return NewInt(time.Now().Unix())
}

func builtinFormatTimestamp(ev *evaluator, span Span, args []execNode) Value {
	ts := ev.eval(args[0])
	if !ts.Type().numeric() {
		raise(TypeMismatch, span, "format_timestamp: expected a number, got %v", ts.Type())
	}
	layout := argString(span, "format_timestamp", ev.eval(args[1]))
	t := time.Unix(int64(ts.AsFloat()), 0).UTC()
	return NewString(t.Format(layout))
}

func builtinToUnixTimestamp(ev *evaluator, span Span, args []execNode) Value {
	s := argString(span, "to_unix_timestamp", ev.eval(args[0]))
	layout := argString(span, "to_unix_timestamp", ev.eval(args[1]))
	t, err := time.Parse(layout, s)
	if err != nil {
		raise(TimestampError, span, "cannot parse %q with layout %q: %v", s, layout, err)
	}
	return NewInt(t.Unix())
}
