// Package kuipertest provides helpers shared by kuiper's package tests,
// mirroring the role gqltest played for gql's own test suite: one place
// to turn "compile and run, failing the test on error" into a single call
// instead of repeating the Compile/Run/error-check boilerplate in every
// test file.
package kuipertest

import (
	"testing"

	"github.com/kuiper-lang/kuiper/kuiper"
)

// Eval compiles source against inputNames and runs it with inputs,
// failing t immediately if either step errors.
func Eval(t *testing.T, source string, inputNames []string, inputs []kuiper.Value) kuiper.Value {
	t.Helper()
	ce, err := kuiper.Compile(source, inputNames, kuiper.DefaultOptions())
	if err != nil {
		t.Fatalf("compile(%q): %v", source, err)
	}
	v, err := ce.Run(inputs)
	if err != nil {
		t.Fatalf("run(%q): %v", source, err)
	}
	return v
}

// EvalJSON is Eval followed by JSON rendering, for tests that want to
// assert on the same text form run() returns at the public API boundary.
func EvalJSON(t *testing.T, source string, inputNames []string, inputs []kuiper.Value) string {
	t.Helper()
	ce, err := kuiper.Compile(source, inputNames, kuiper.DefaultOptions())
	if err != nil {
		t.Fatalf("compile(%q): %v", source, err)
	}
	s, err := ce.RunJSON(inputs)
	if err != nil {
		t.Fatalf("run(%q): %v", source, err)
	}
	return s
}

// ExpectCompileError compiles source and asserts it fails with the given
// error kind, returning the error for further inspection (span, message).
func ExpectCompileError(t *testing.T, source string, inputNames []string, wantKind kuiper.ErrorKind) *kuiper.CompileError {
	t.Helper()
	_, err := kuiper.Compile(source, inputNames, kuiper.DefaultOptions())
	if err == nil {
		t.Fatalf("compile(%q): expected error %v, got none", source, wantKind)
	}
	ce, ok := err.(*kuiper.CompileError)
	if !ok {
		t.Fatalf("compile(%q): expected *kuiper.CompileError, got %T", source, err)
	}
	if ce.Kind != wantKind {
		t.Fatalf("compile(%q): expected error kind %v, got %v (%v)", source, wantKind, ce.Kind, ce)
	}
	return ce
}

// ExpectRuntimeError compiles and runs source, asserting the run fails
// with the given error kind.
func ExpectRuntimeError(t *testing.T, source string, inputNames []string, inputs []kuiper.Value, wantKind kuiper.ErrorKind) *kuiper.RuntimeError {
	t.Helper()
	ce, err := kuiper.Compile(source, inputNames, kuiper.DefaultOptions())
	if err != nil {
		t.Fatalf("compile(%q): %v", source, err)
	}
	_, err = ce.Run(inputs)
	if err == nil {
		t.Fatalf("run(%q): expected error %v, got none", source, wantKind)
	}
	re, ok := err.(*kuiper.RuntimeError)
	if !ok {
		t.Fatalf("run(%q): expected *kuiper.RuntimeError, got %T", source, err)
	}
	if re.Kind != wantKind {
		t.Fatalf("run(%q): expected error kind %v, got %v (%v)", source, wantKind, re.Kind, re)
	}
	return re
}
