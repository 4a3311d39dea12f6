package kuiper

// ValueType identifies the runtime tag of a Value.
type ValueType byte

const (
	// InvalidType is the zero value; it is never produced by evaluation.
	InvalidType ValueType = iota
	NullType
	BoolType
	IntType
	FloatType
	StringType
	ArrayType
	ObjectType
)

func (t ValueType) String() string {
	switch t {
	case NullType:
		return "null"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case StringType:
		return "string"
	case ArrayType:
		return "array"
	case ObjectType:
		return "object"
	default:
		return "invalid"
	}
}

// numeric reports whether the type participates in arithmetic promotion.
func (t ValueType) numeric() bool { return t == IntType || t == FloatType }
