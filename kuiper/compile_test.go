package kuiper_test

import (
	"testing"

	"github.com/grailbio/testutil/expect"

	"github.com/kuiper-lang/kuiper/kuiper"
	"github.com/kuiper-lang/kuiper/kuipertest"
)

func TestCompileAndRunJSONArithmetic(t *testing.T) {
	out := kuipertest.EvalJSON(t, "1 + 1", nil, nil)
	expect.EQ(t, "2", out)
}

func TestCompileAndRunThreeDeclaredInputs(t *testing.T) {
	ce, err := kuiper.Compile("in1 + in2 + in3", []string{"in1", "in2", "in3"}, kuiper.DefaultOptions())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out, err := ce.RunJSON([]kuiper.Value{kuiper.NewInt(1), kuiper.NewInt(2), kuiper.NewInt(3)})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	expect.EQ(t, "6", out)
}

func TestCompileSelectorPlusLiteral(t *testing.T) {
	obj := kuiper.NewObject()
	obj.Set("value", kuiper.NewInt(27))
	out := kuipertest.EvalJSON(t, "input.value + 15", []string{"input"}, []kuiper.Value{kuiper.NewObjectValue(obj)})
	expect.EQ(t, "42", out)
}

func TestCompileMapOverArrayLiteralWithInputSelector(t *testing.T) {
	obj := kuiper.NewObject()
	obj.Set("test", kuiper.NewInt(2))
	out := kuipertest.EvalJSON(t, "[0,1,2,3].map(a => a + input.test)", []string{"input"}, []kuiper.Value{kuiper.NewObjectValue(obj)})
	expect.EQ(t, "[2,3,4,5]", out)
}

func TestCompileUndefinedFunctionIsCompileError(t *testing.T) {
	ce := kuipertest.ExpectCompileError(t, `"test".notafunc()`, nil, kuiper.NameResolutionError)
	expect.True(t, ce.HasSpan)
	expect.EQ(t, "Unrecognized function: notafunc", ce.Message)
	expect.EQ(t, 7, ce.Span.Start)
	expect.EQ(t, 17, ce.Span.End)
}

func TestRunDivideByZeroIsRuntimeError(t *testing.T) {
	re := kuipertest.ExpectRuntimeError(t, "1 / input", []string{"input"}, []kuiper.Value{kuiper.NewInt(0)}, kuiper.DivideByZero)
	expect.True(t, re.HasSpan)
	expect.EQ(t, "Divide by zero", re.Message)
	expect.EQ(t, 2, re.Span.Start)
	expect.EQ(t, 3, re.Span.End)
}

func TestCompileWithInputsAndMapLambda(t *testing.T) {
	arr := kuiper.NewArray([]kuiper.Value{kuiper.NewInt(1), kuiper.NewInt(2), kuiper.NewInt(3)})
	out := kuipertest.EvalJSON(t, "map(input, x => x * 10)", []string{"input"}, []kuiper.Value{arr})
	expect.EQ(t, "[10,20,30]", out)
}

func TestRunRejectsWrongInputCount(t *testing.T) {
	ce, err := kuiper.Compile("input", []string{"input"}, kuiper.DefaultOptions())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_, err = ce.Run(nil)
	if err == nil {
		t.Fatalf("expected an error for a missing input")
	}
	re, ok := err.(*kuiper.RuntimeError)
	expect.True(t, ok)
	expect.EQ(t, kuiper.NameResolutionError, re.Kind)
}

func TestCompiledExpressionToStringRendersMacroExpandedForm(t *testing.T) {
	ce, err := kuiper.Compile(`#double := x => x * 2; double(21)`, nil, kuiper.DefaultOptions())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	expect.EQ(t, "21 * 2", ce.ToString())
}

func TestCompiledExpressionRegistryLookupAndDispose(t *testing.T) {
	ce, err := kuiper.Compile("1", nil, kuiper.DefaultOptions())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got, ok := kuiper.Lookup(ce.ID())
	expect.True(t, ok)
	expect.True(t, got == ce)
	ce.Dispose()
	_, ok = kuiper.Lookup(ce.ID())
	expect.False(t, ok)
}

func TestMacroExpansionLimitSurfacesAsCompileError(t *testing.T) {
	opts := kuiper.DefaultOptions()
	opts.MaxMacroExpansions = 2
	_, err := kuiper.Compile(`#loop := x => loop(x); loop(1)`, nil, opts)
	if err == nil {
		t.Fatalf("expected a macro expansion limit error")
	}
	ce, ok := err.(*kuiper.CompileError)
	expect.True(t, ok)
	expect.EQ(t, kuiper.MacroExpansionLimit, ce.Kind)
}

func TestValueFromJSONPreservesObjectKeyOrder(t *testing.T) {
	v, err := kuiper.ValueFromJSON([]byte(`{"z": 1, "a": 2, "m": 3}`))
	if err != nil {
		t.Fatalf("ValueFromJSON: %v", err)
	}
	ce, err := kuiper.Compile("input", []string{"input"}, kuiper.DefaultOptions())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out, err := ce.RunJSON([]kuiper.Value{v})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	expect.EQ(t, `{"z":1,"a":2,"m":3}`, out)
}
