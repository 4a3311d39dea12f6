package kuiper

import (
	"bytes"
	"encoding/json"
	"io"
)

// builtins_json.go registers parse_json(), spec.md §4.6's built-in for
// turning an embedded JSON string back into a Value, for inputs that carry
// JSON-within-JSON (an escaped payload field, a log line, ...).

func init() {
	registerBuiltin("parse_json", 1, 1, true, builtinParseJSON)
}

func builtinParseJSON(ev *evaluator, span Span, args []execNode) Value {
	s := argString(span, "parse_json", ev.eval(args[0]))
	v, err := decodeJSON(bytes.NewReader([]byte(s)), span)
	if err != nil {
		if ke, ok := err.(*kuiperError); ok {
			panic(ke)
		}
		raise(ConversionError, span, "parse_json: %v", err)
	}
	return v
}

// ValueFromJSON parses raw JSON text into a Value. Objects are decoded with
// a token-by-token walk rather than through map[string]interface{}, so that
// an Object's key order matches the order keys appeared in the source text
// (spec §3's insertion-order invariant applies to parsed inputs too, not
// just to values built by Kuiper source). It is exported for embedders such
// as cmd/kuiper that need to build inputs from JSON text without going
// through a compiled expression's parse_json builtin.
func ValueFromJSON(raw []byte) (Value, error) {
	return decodeJSON(bytes.NewReader(raw), NoSpan)
}

func decodeJSON(r io.Reader, span Span) (v Value, err error) {
	defer recoverAs(&err, func(ke *kuiperError) error { return ke })
	dec := json.NewDecoder(r)
	dec.UseNumber()
	tok, derr := dec.Token()
	if derr != nil {
		return Null, derr
	}
	v = decodeJSONValue(dec, span, tok)
	return v, nil
}

// decodeJSONValue converts the already-read token tok (and, for '[' and
// '{' delimiters, the rest of that value's tokens) into a Value. It is
// called recursively by decodeJSONArray/decodeJSONObject for each element.
func decodeJSONValue(dec *json.Decoder, span Span, tok json.Token) Value {
	switch t := tok.(type) {
	case nil:
		return Null
	case bool:
		return NewBool(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return NewInt(i)
		}
		f, err := t.Float64()
		if err != nil {
			raise(ConversionError, span, "parse_json: invalid number %q", t.String())
		}
		return NewFloat(f)
	case string:
		return NewString(t)
	case json.Delim:
		switch t {
		case '[':
			return decodeJSONArray(dec, span)
		case '{':
			return decodeJSONObject(dec, span)
		}
	}
	raise(ConversionError, span, "parse_json: unsupported JSON token %v", tok)
	return Null
}

func decodeJSONArray(dec *json.Decoder, span Span) Value {
	var out []Value
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			raise(ConversionError, span, "parse_json: %v", err)
		}
		out = append(out, decodeJSONValue(dec, span, tok))
	}
	if _, err := dec.Token(); err != nil { // consume the closing ']'
		raise(ConversionError, span, "parse_json: %v", err)
	}
	return NewArray(out)
}

func decodeJSONObject(dec *json.Decoder, span Span) Value {
	obj := NewObject()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			raise(ConversionError, span, "parse_json: %v", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			raise(ConversionError, span, "parse_json: object key %v is not a string", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			raise(ConversionError, span, "parse_json: %v", err)
		}
		obj.Set(key, decodeJSONValue(dec, span, valTok))
	}
	if _, err := dec.Token(); err != nil { // consume the closing '}'
		raise(ConversionError, span, "parse_json: %v", err)
	}
	return NewObjectValue(obj)
}
