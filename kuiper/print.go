package kuiper

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// print.go renders a Value as JSON text, the form CompiledExpression.RunJSON
// returns (spec §5). It walks the Value directly rather than going through
// encoding/json.Marshal on a generic map, since Go's map marshaling sorts
// keys alphabetically and would silently break Object's insertion-order
// guarantee (spec §3).
func valueToJSON(v Value) (string, error) {
	var buf bytes.Buffer
	writeJSON(&buf, v)
	return buf.String(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) {
	switch v.Type() {
	case NullType:
		buf.WriteString("null")
	case BoolType:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case IntType:
		buf.WriteString(strconv.FormatInt(v.Int(), 10))
	case FloatType:
		// Non-finite floats never reach here: arithmetic that would produce
		// one raises NumericDomain before a Value is ever constructed
		// (eval.go's evalArith, builtins_arith.go's checkFinite), and
		// float()/try_float() reject text such as "NaN" or "Inf".
		b, _ := json.Marshal(v.Float())
		buf.Write(b)
	case StringType:
		b, _ := json.Marshal(v.Str())
		buf.Write(b)
	case ArrayType:
		buf.WriteByte('[')
		for i, e := range v.Array() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSON(buf, e)
		}
		buf.WriteByte(']')
	case ObjectType:
		obj := v.Object()
		buf.WriteByte('{')
		for i := 0; i < obj.Len(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, _ := json.Marshal(obj.Key(i))
			buf.Write(k)
			buf.WriteByte(':')
			writeJSON(buf, obj.Value(i))
		}
		buf.WriteByte('}')
	}
}
