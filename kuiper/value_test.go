package kuiper

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestTruthinessLaw(t *testing.T) {
	falsy := []Value{Null, False, NewInt(0), NewFloat(0), NewString(""), NewArray(nil), NewObjectValue(NewObject())}
	for _, v := range falsy {
		expect.False(t, v.Truthy())
	}
	truthy := []Value{True, NewInt(1), NewFloat(0.5), NewString("x"), NewArray([]Value{Null})}
	for _, v := range truthy {
		expect.True(t, v.Truthy())
	}
	obj := NewObject()
	obj.Set("a", NewInt(1))
	expect.True(t, NewObjectValue(obj).Truthy())
}

func TestEqualCrossNumericType(t *testing.T) {
	expect.True(t, Equal(NewInt(2), NewFloat(2.0)))
	expect.False(t, Equal(NewInt(2), NewFloat(2.5)))
	expect.False(t, Equal(NewInt(2), NewString("2")))
}

func TestEqualStructural(t *testing.T) {
	a := NewArray([]Value{NewInt(1), NewString("x")})
	b := NewArray([]Value{NewInt(1), NewString("x")})
	c := NewArray([]Value{NewInt(1), NewString("y")})
	expect.True(t, Equal(a, b))
	expect.False(t, Equal(a, c))

	o1 := NewObject()
	o1.Set("a", NewInt(1))
	o1.Set("b", NewInt(2))
	o2 := NewObject()
	o2.Set("b", NewInt(2))
	o2.Set("a", NewInt(1))
	// Equal is order-independent (field order is an insertion/rendering
	// concern, not part of object identity).
	expect.True(t, Equal(NewObjectValue(o1), NewObjectValue(o2)))
}

func TestObjectPreservesInsertionOrderAndLastWriteWins(t *testing.T) {
	o := NewObject()
	o.Set("z", NewInt(1))
	o.Set("a", NewInt(2))
	o.Set("z", NewInt(3))
	expect.EQ(t, 2, o.Len())
	expect.EQ(t, "z", o.Key(0))
	expect.EQ(t, "a", o.Key(1))
	v, ok := o.Get("z")
	expect.True(t, ok)
	expect.EQ(t, int64(3), v.Int())
}

func TestObjectCloneIsIndependent(t *testing.T) {
	o := NewObject()
	o.Set("a", NewInt(1))
	c := o.Clone()
	c.Set("a", NewInt(2))
	v, _ := o.Get("a")
	expect.EQ(t, int64(1), v.Int())
}
