package kuiper

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// ErrorKind enumerates the observable error taxonomy of spec.md §7.
type ErrorKind int

const (
	_ ErrorKind = iota
	LexError
	ParseError
	MacroExpansionLimit
	NameResolutionError
	ArityError
	TypeMismatch
	NumericOverflow
	DivideByZero
	NumericDomain
	SourceMissingError
	RegexError
	TimestampError
	ConversionError
	OptimizerOperationLimit
)

func (k ErrorKind) String() string {
	switch k {
	case LexError:
		return "LexError"
	case ParseError:
		return "ParseError"
	case MacroExpansionLimit:
		return "MacroExpansionLimit"
	case NameResolutionError:
		return "NameResolutionError"
	case ArityError:
		return "ArityError"
	case TypeMismatch:
		return "TypeMismatch"
	case NumericOverflow:
		return "NumericOverflow"
	case DivideByZero:
		return "DivideByZero"
	case NumericDomain:
		return "NumericDomain"
	case SourceMissingError:
		return "SourceMissingError"
	case RegexError:
		return "RegexError"
	case TimestampError:
		return "TimestampError"
	case ConversionError:
		return "ConversionError"
	case OptimizerOperationLimit:
		return "OptimizerOperationLimit"
	default:
		return "UnknownError"
	}
}

// kuiperError is the internal panic payload raised throughout compilation
// and evaluation (mirrors gql/panic.go's approach of using panic/recover
// rather than threading `error` through every recursive call). It is
// recovered at the package's public API boundary (Compile, Run) and turned
// into a CompileError or RuntimeError.
type kuiperError struct {
	Kind    ErrorKind
	Span    Span
	Message string
}

func (e *kuiperError) Error() string {
	if e.Span == NoSpan {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

// raise panics with a *kuiperError, to be recovered by recoverAs. Named after
// gql/log.go's Panicf, which panics with a span-prefixed string instead of a
// typed value; Kuiper needs the typed Kind to survive to the public API, so
// the payload is a struct rather than a bare string.
func raise(kind ErrorKind, span Span, format string, args ...interface{}) {
	panic(&kuiperError{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)})
}

// CompileError is returned by Compile when source text fails to become a
// CompiledExpression.
type CompileError struct {
	Kind    ErrorKind
	Message string
	Span    Span
	HasSpan bool
}

func (e *CompileError) Error() string {
	if e.HasSpan {
		return fmt.Sprintf("%s %s: %s", e.Kind, e.Span, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// RuntimeError is returned by Run when evaluation fails.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Span    Span
	HasSpan bool
}

func (e *RuntimeError) Error() string {
	if e.HasSpan {
		return fmt.Sprintf("%s %s: %s", e.Kind, e.Span, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// recoverAs is deferred by a public entry point; if that function is
// panicking with a *kuiperError, it recovers and converts it into *err via
// build. Any other panic (a programmer bug, not a user-facing
// error) propagates unchanged, matching gql.Recover's contract that only
// recognized failures are turned into values.
func recoverAs(err *error, build func(*kuiperError) error) {
	if r := recover(); r != nil {
		ke, ok := r.(*kuiperError)
		if !ok {
			if e, ok := r.(error); ok {
				log.Errorf("kuiper: %v", wrapInternal("unexpected panic", e))
			} else {
				log.Errorf("kuiper: unexpected panic: %v", r)
			}
			panic(r)
		}
		*err = build(ke)
	}
}

// wrapInternal turns an unexpected internal Go error (not part of the
// taxonomy) into a GRAIL-style wrapped error for logging, matching
// gql/panic.go's use of github.com/grailbio/base/errors. Used by recoverAs
// to add context before logging a panic that escaped the known ErrorKind
// taxonomy, ahead of re-panicking it.
func wrapInternal(context string, err error) error {
	return errors.E(context, err)
}
