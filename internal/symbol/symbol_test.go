package symbol_test

import (
	"testing"

	"github.com/grailbio/testutil/expect"

	"github.com/kuiper-lang/kuiper/internal/symbol"
)

func TestInternReturnsSharedString(t *testing.T) {
	a := symbol.Intern("fieldName")
	b := symbol.Intern("fieldName")
	expect.EQ(t, a, b)
}

func TestInternDistinctStringsStayDistinct(t *testing.T) {
	a := symbol.Intern("one")
	b := symbol.Intern("two")
	expect.False(t, a == b)
}
