package pcode

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestOpCodeValues(t *testing.T) {
	// the numeric values are part of the wire encoding and must not drift
	assert.Equal(t, OpCode(1), Copy)
	assert.Equal(t, OpCode(10), Return)
	assert.Equal(t, OpCode(20), IntSub)
	assert.Equal(t, OpCode(30), IntRight)
	assert.Equal(t, OpCode(40), BoolOr)
	assert.Equal(t, OpCode(46), FloatNaN)
	assert.Equal(t, OpCode(60), MultiEqual)
	assert.Equal(t, OpCode(72), PopCount)
}

func TestOpCodeIsValid(t *testing.T) {
	assert.True(t, Copy.IsValid())
	assert.True(t, PopCount.IsValid())
	assert.False(t, OpCode(0).IsValid())
	assert.False(t, OpCode(45).IsValid())
	assert.False(t, maxOpCode.IsValid())
}

func TestOpCodeString(t *testing.T) {
	assert.Equal(t, "INT_ADD", IntAdd.String())
	assert.Equal(t, "CBRANCH", CBranch.String())
	assert.Equal(t, "OP(99)", OpCode(99).String())
}
