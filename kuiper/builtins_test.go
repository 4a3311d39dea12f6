package kuiper_test

import (
	"testing"

	"github.com/grailbio/testutil/expect"

	"github.com/kuiper-lang/kuiper/kuiper"
	"github.com/kuiper-lang/kuiper/kuipertest"
)

func TestBuiltinStringOps(t *testing.T) {
	expect.EQ(t, `"HELLO"`, kuipertest.EvalJSON(t, `upper("hello")`, nil, nil))
	expect.EQ(t, `"hello"`, kuipertest.EvalJSON(t, `lower("HELLO")`, nil, nil))
	expect.EQ(t, `["a","b","c"]`, kuipertest.EvalJSON(t, `split("a,b,c", ",")`, nil, nil))
	expect.EQ(t, `"ell"`, kuipertest.EvalJSON(t, `substring("hello", 1, 3)`, nil, nil))
	expect.EQ(t, `true`, kuipertest.EvalJSON(t, `starts_with("hello", "he")`, nil, nil))
	expect.EQ(t, `"a-b-c"`, kuipertest.EvalJSON(t, `string_join(["a","b","c"], "-")`, nil, nil))
	expect.EQ(t, `"a-b-c"`, kuipertest.EvalJSON(t, `join(["a","b","c"], "-")`, nil, nil))
}

func TestBuiltinCollectionOps(t *testing.T) {
	expect.EQ(t, `6`, kuipertest.EvalJSON(t, `sum([1,2,3])`, nil, nil))
	expect.EQ(t, `1`, kuipertest.EvalJSON(t, `min([3,1,2])`, nil, nil))
	expect.EQ(t, `3`, kuipertest.EvalJSON(t, `max([3,1,2])`, nil, nil))
	expect.EQ(t, `true`, kuipertest.EvalJSON(t, `all([2,4,6], x => x % 2 == 0)`, nil, nil))
	expect.EQ(t, `false`, kuipertest.EvalJSON(t, `any([1,3,5], x => x % 2 == 0)`, nil, nil))
	expect.EQ(t, `[1,3]`, kuipertest.EvalJSON(t, `filter([1,2,3,4], x => x % 2 == 1)`, nil, nil))
	expect.EQ(t, `10`, kuipertest.EvalJSON(t, `reduce([1,2,3,4], 0, (acc, x) => acc + x)`, nil, nil))
	expect.EQ(t, `[[1,"a"],[2,"b"]]`, kuipertest.EvalJSON(t, `zip([1,2],["a","b"])`, nil, nil))
	expect.EQ(t, `[[1,2],[3,4],[5]]`, kuipertest.EvalJSON(t, `chunk([1,2,3,4,5], 2)`, nil, nil))
}

func TestBuiltinSelectExceptPreserveOrder(t *testing.T) {
	obj := kuiper.NewObject()
	obj.Set("a", kuiper.NewInt(1))
	obj.Set("b", kuiper.NewInt(2))
	obj.Set("c", kuiper.NewInt(3))
	out := kuipertest.EvalJSON(t, `select(input, ["a","c"])`, []string{"input"}, []kuiper.Value{kuiper.NewObjectValue(obj)})
	expect.EQ(t, `{"a":1,"c":3}`, out)
	out = kuipertest.EvalJSON(t, `except(input, ["b"])`, []string{"input"}, []kuiper.Value{kuiper.NewObjectValue(obj)})
	expect.EQ(t, `{"a":1,"c":3}`, out)
}

func TestBuiltinConvertOps(t *testing.T) {
	expect.EQ(t, `42`, kuipertest.EvalJSON(t, `int("42")`, nil, nil))
	expect.EQ(t, `null`, kuipertest.EvalJSON(t, `try_int("nope")`, nil, nil))
	expect.EQ(t, `4.5`, kuipertest.EvalJSON(t, `float("4.5")`, nil, nil))
	expect.EQ(t, `true`, kuipertest.EvalJSON(t, `bool("true")`, nil, nil))
	expect.EQ(t, `"3"`, kuipertest.EvalJSON(t, `string(3)`, nil, nil))
	// int("nope") is a constant expression, so the conversion failure is
	// caught by the optimizer's speculative fold and surfaces at compile
	// time rather than at run time (spec §4.5).
	kuipertest.ExpectCompileError(t, `int("nope")`, nil, kuiper.ConversionError)
}

func TestBuiltinControlOps(t *testing.T) {
	expect.EQ(t, `"big"`, kuipertest.EvalJSON(t, `case(5 > 10, "huge", 5 > 1, "big", "small")`, nil, nil))
	expect.EQ(t, `"small"`, kuipertest.EvalJSON(t, `case(5 > 10, "huge", 5 > 100, "big", "small")`, nil, nil))
	expect.EQ(t, `1`, kuipertest.EvalJSON(t, `coalesce(null, null, 1, 2)`, nil, nil))
	expect.EQ(t, `"present"`, kuipertest.EvalJSON(t, `if_value(1, "present", "absent")`, nil, nil))
	expect.EQ(t, `"absent"`, kuipertest.EvalJSON(t, `if_value(null, "present", "absent")`, nil, nil))
}

func TestBuiltinRegexOps(t *testing.T) {
	expect.EQ(t, `true`, kuipertest.EvalJSON(t, `regex_is_match("hello123", "[0-9]+")`, nil, nil))
	expect.EQ(t, `"123"`, kuipertest.EvalJSON(t, `regex_first_match("hello123", "[0-9]+")`, nil, nil))
	expect.EQ(t, `"helloX"`, kuipertest.EvalJSON(t, `regex_replace("hello123", "[0-9]+", "X")`, nil, nil))
}

func TestBuiltinDigest(t *testing.T) {
	out := kuipertest.EvalJSON(t, `digest("md5", "abc")`, nil, nil)
	expect.EQ(t, `"900150983cd24fb0d6963f7d28e17f72"`, out)
}

func TestBuiltinParseJSON(t *testing.T) {
	out := kuipertest.EvalJSON(t, `parse_json("[1,2,3]")`, nil, nil)
	expect.EQ(t, `[1,2,3]`, out)
}

func TestBuiltinParseJSONPreservesObjectKeyOrder(t *testing.T) {
	// parse_json must not reorder object keys (e.g. alphabetically, as a
	// map[string]interface{}-based decode would): the source order "z", "a",
	// "m" must survive round-tripping back out as JSON.
	out := kuipertest.EvalJSON(t, `parse_json("{\"z\": 1, \"a\": 2, \"m\": 3}")`, nil, nil)
	expect.EQ(t, `{"z":1,"a":2,"m":3}`, out)
}

func TestBuiltinArityErrorsSurfaceAsCompileErrors(t *testing.T) {
	kuipertest.ExpectCompileError(t, `upper("a", "b")`, nil, kuiper.ArityError)
	kuipertest.ExpectCompileError(t, `map([1,2,3])`, nil, kuiper.ArityError)
}

func TestBuiltinLambdaArgTypeMismatchIsCompileError(t *testing.T) {
	kuipertest.ExpectCompileError(t, `map([1,2,3], 1)`, nil, kuiper.TypeMismatch)
}
