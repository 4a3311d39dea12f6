package kuiper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kuiper-lang/kuiper/internal/symbol"
)

// Value is the sole runtime data type of Kuiper: a tagged union that is
// structurally JSON (spec.md §3). A table query engine scanning millions
// of rows might pack scalars into an unsafe.Pointer/uint64 pair to avoid
// allocation, but Kuiper values are built and discarded once per
// evaluation, so a plain tagged struct is the more idiomatic and
// auditable choice here. There is no hot scan loop to optimize for.
type Value struct {
	typ ValueType
	b   bool
	i   int64
	f   float64
	s   string
	arr []Value
	obj *Object
}

// Object is an insertion-ordered string-keyed map, as required by spec §3
// ("Object (insertion-ordered mapping from String key to Value)").
type Object struct {
	keys  []string
	vals  []Value
	index map[string]int
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{index: map[string]int{}}
}

// Len returns the number of entries.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Set inserts or overwrites key with value. A repeated key keeps its first
// insertion position but the last written value (spec §4.7, ObjectBuild).
// key is interned: object construction runs once per evaluated row in a
// typical caller (e.g. mapped over an input array), and most rows share
// the same field names, so canonicalizing the key string here lets those
// repeats share one allocation instead of each carrying its own copy.
func (o *Object) Set(key string, v Value) {
	key = symbol.Intern(key)
	if i, ok := o.index[key]; ok {
		o.vals[i] = v
		return
	}
	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
}

// Get looks up key, returning (value, true) or (Null, false).
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Null, false
	}
	if i, ok := o.index[key]; ok {
		return o.vals[i], true
	}
	return Null, false
}

// Key returns the i'th key in insertion order.
func (o *Object) Key(i int) string { return o.keys[i] }

// Value returns the i'th value in insertion order.
func (o *Object) Value(i int) Value { return o.vals[i] }

// Clone returns a shallow copy safe for independent mutation of entries.
func (o *Object) Clone() *Object {
	n := NewObject()
	if o == nil {
		return n
	}
	for i, k := range o.keys {
		n.Set(k, o.vals[i])
	}
	return n
}

var (
	// Null is the singleton null value.
	Null = Value{typ: NullType}
	// True and False are the boolean singletons.
	True  = Value{typ: BoolType, b: true}
	False = Value{typ: BoolType, b: false}
)

// NewBool creates a Bool value.
func NewBool(v bool) Value {
	if v {
		return True
	}
	return False
}

// NewInt creates an Integer value.
func NewInt(v int64) Value { return Value{typ: IntType, i: v} }

// NewFloat creates a Float value.
func NewFloat(v float64) Value { return Value{typ: FloatType, f: v} }

// NewString creates a String value.
func NewString(v string) Value { return Value{typ: StringType, s: v} }

// NewArray creates an Array value from a slice, taking ownership of it.
func NewArray(v []Value) Value { return Value{typ: ArrayType, arr: v} }

// NewObjectValue wraps an *Object as a Value.
func NewObjectValue(o *Object) Value { return Value{typ: ObjectType, obj: o} }

// Type reports the runtime tag of v.
func (v Value) Type() ValueType { return v.typ }

// Bool extracts the boolean payload. REQUIRES: v.Type() == BoolType.
func (v Value) Bool() bool {
	if v.typ != BoolType {
		panic(fmt.Sprintf("internal: Bool() on %v", v.typ))
	}
	return v.b
}

// Int extracts the integer payload. REQUIRES: v.Type() == IntType.
func (v Value) Int() int64 {
	if v.typ != IntType {
		panic(fmt.Sprintf("internal: Int() on %v", v.typ))
	}
	return v.i
}

// Float extracts the float payload. REQUIRES: v.Type() == FloatType.
func (v Value) Float() float64 {
	if v.typ != FloatType {
		panic(fmt.Sprintf("internal: Float() on %v", v.typ))
	}
	return v.f
}

// Str extracts the string payload. REQUIRES: v.Type() == StringType.
func (v Value) Str() string {
	if v.typ != StringType {
		panic(fmt.Sprintf("internal: Str() on %v", v.typ))
	}
	return v.s
}

// Array extracts the array payload. REQUIRES: v.Type() == ArrayType.
func (v Value) Array() []Value {
	if v.typ != ArrayType {
		panic(fmt.Sprintf("internal: Array() on %v", v.typ))
	}
	return v.arr
}

// Object extracts the object payload. REQUIRES: v.Type() == ObjectType.
func (v Value) Object() *Object {
	if v.typ != ObjectType {
		panic(fmt.Sprintf("internal: Object() on %v", v.typ))
	}
	return v.obj
}

// AsFloat returns the value as a float64, promoting Integer. REQUIRES a
// numeric type.
func (v Value) AsFloat() float64 {
	if v.typ == IntType {
		return float64(v.i)
	}
	return v.f
}

// Truthy implements spec §4.7's truthiness law: false, null, 0, "", [], {}
// are falsy; everything else is truthy.
func (v Value) Truthy() bool {
	switch v.typ {
	case NullType:
		return false
	case BoolType:
		return v.b
	case IntType:
		return v.i != 0
	case FloatType:
		return v.f != 0
	case StringType:
		return v.s != ""
	case ArrayType:
		return len(v.arr) != 0
	case ObjectType:
		return v.obj.Len() != 0
	default:
		return false
	}
}

// Equal implements structural equality over the Value domain, used by the
// `==`/`!=` builtins.
func Equal(x, y Value) bool {
	if x.typ != y.typ {
		if x.typ.numeric() && y.typ.numeric() {
			return x.AsFloat() == y.AsFloat()
		}
		return false
	}
	switch x.typ {
	case NullType:
		return true
	case BoolType:
		return x.b == y.b
	case IntType:
		return x.i == y.i
	case FloatType:
		return x.f == y.f
	case StringType:
		return x.s == y.s
	case ArrayType:
		if len(x.arr) != len(y.arr) {
			return false
		}
		for i := range x.arr {
			if !Equal(x.arr[i], y.arr[i]) {
				return false
			}
		}
		return true
	case ObjectType:
		if x.obj.Len() != y.obj.Len() {
			return false
		}
		for i := 0; i < x.obj.Len(); i++ {
			yv, ok := y.obj.Get(x.obj.Key(i))
			if !ok || !Equal(x.obj.Value(i), yv) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders v as Kuiper/JSON-like source text, used for debug logging
// and error messages (cf. gql's ASTNode.String()).
func (v Value) String() string {
	var buf strings.Builder
	writeValue(&buf, v)
	return buf.String()
}

func writeValue(buf *strings.Builder, v Value) {
	switch v.typ {
	case NullType:
		buf.WriteString("null")
	case BoolType:
		buf.WriteString(strconv.FormatBool(v.b))
	case IntType:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case FloatType:
		buf.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case StringType:
		buf.WriteString(strconv.Quote(v.s))
	case ArrayType:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeValue(buf, e)
		}
		buf.WriteByte(']')
	case ObjectType:
		buf.WriteByte('{')
		for i := 0; i < v.obj.Len(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Quote(v.obj.Key(i)))
			buf.WriteByte(':')
			writeValue(buf, v.obj.Value(i))
		}
		buf.WriteByte('}')
	default:
		buf.WriteString("<invalid>")
	}
}
