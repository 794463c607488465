// Package pcode defines the low-level operation representation that machine
// instructions decode into, and structured records of a decode session.
package pcode

import "fmt"

// OpCode identifies a single pcode operation. The numeric values are
// stable and part of the wire encoding.
type OpCode uint32

const (
	Copy OpCode = iota + 1 // 1
	Load
	Store
	Branch
	CBranch
	BranchInd
	Call
	CallInd
	CallOther
	Return // 10

	IntEqual
	IntNotEqual
	IntSLess
	IntSLessEqual
	IntLess
	IntLessEqual
	IntZExt
	IntSExt
	IntAdd
	IntSub // 20
	IntCarry
	IntSCarry
	IntSBorrow
	Int2Comp
	IntNegate
	IntXor
	IntAnd
	IntOr
	IntLeft
	IntRight // 30
	IntSRight
	IntMult
	IntDiv
	IntSDiv
	IntRem
	IntSRem

	BoolNegate
	BoolXor
	BoolAnd
	BoolOr // 40

	FloatEqual
	FloatNotEqual
	FloatLess
	FloatLessEqual
	_ // 45 unused
	FloatNaN
	FloatAdd
	FloatDiv
	FloatMult
	FloatSub // 50
	FloatNeg
	FloatAbs
	FloatSqrt
	FloatInt2Float
	FloatFloat2Float
	FloatTrunc
	FloatCeil
	FloatFloor
	FloatRound

	MultiEqual // 60
	Indirect
	Piece
	SubPiece
	Cast
	PtrAdd
	PtrSub
	SegmentOp
	CPoolRef
	New
	Insert // 70
	Extract
	PopCount

	maxOpCode
)

var opcodeNames = map[OpCode]string{
	Copy:             "COPY",
	Load:             "LOAD",
	Store:            "STORE",
	Branch:           "BRANCH",
	CBranch:          "CBRANCH",
	BranchInd:        "BRANCHIND",
	Call:             "CALL",
	CallInd:          "CALLIND",
	CallOther:        "CALLOTHER",
	Return:           "RETURN",
	IntEqual:         "INT_EQUAL",
	IntNotEqual:      "INT_NOTEQUAL",
	IntSLess:         "INT_SLESS",
	IntSLessEqual:    "INT_SLESSEQUAL",
	IntLess:          "INT_LESS",
	IntLessEqual:     "INT_LESSEQUAL",
	IntZExt:          "INT_ZEXT",
	IntSExt:          "INT_SEXT",
	IntAdd:           "INT_ADD",
	IntSub:           "INT_SUB",
	IntCarry:         "INT_CARRY",
	IntSCarry:        "INT_SCARRY",
	IntSBorrow:       "INT_SBORROW",
	Int2Comp:         "INT_2COMP",
	IntNegate:        "INT_NEGATE",
	IntXor:           "INT_XOR",
	IntAnd:           "INT_AND",
	IntOr:            "INT_OR",
	IntLeft:          "INT_LEFT",
	IntRight:         "INT_RIGHT",
	IntSRight:        "INT_SRIGHT",
	IntMult:          "INT_MULT",
	IntDiv:           "INT_DIV",
	IntSDiv:          "INT_SDIV",
	IntRem:           "INT_REM",
	IntSRem:          "INT_SREM",
	BoolNegate:       "BOOL_NEGATE",
	BoolXor:          "BOOL_XOR",
	BoolAnd:          "BOOL_AND",
	BoolOr:           "BOOL_OR",
	FloatEqual:       "FLOAT_EQUAL",
	FloatNotEqual:    "FLOAT_NOTEQUAL",
	FloatLess:        "FLOAT_LESS",
	FloatLessEqual:   "FLOAT_LESSEQUAL",
	FloatNaN:         "FLOAT_NAN",
	FloatAdd:         "FLOAT_ADD",
	FloatDiv:         "FLOAT_DIV",
	FloatMult:        "FLOAT_MULT",
	FloatSub:         "FLOAT_SUB",
	FloatNeg:         "FLOAT_NEG",
	FloatAbs:         "FLOAT_ABS",
	FloatSqrt:        "FLOAT_SQRT",
	FloatInt2Float:   "FLOAT_INT2FLOAT",
	FloatFloat2Float: "FLOAT_FLOAT2FLOAT",
	FloatTrunc:       "FLOAT_TRUNC",
	FloatCeil:        "FLOAT_CEIL",
	FloatFloor:       "FLOAT_FLOOR",
	FloatRound:       "FLOAT_ROUND",
	MultiEqual:       "MULTIEQUAL",
	Indirect:         "INDIRECT",
	Piece:            "PIECE",
	SubPiece:         "SUBPIECE",
	Cast:             "CAST",
	PtrAdd:           "PTRADD",
	PtrSub:           "PTRSUB",
	SegmentOp:        "SEGMENTOP",
	CPoolRef:         "CPOOLREF",
	New:              "NEW",
	Insert:           "INSERT",
	Extract:          "EXTRACT",
	PopCount:         "POPCOUNT",
}

// IsValid returns true if the opcode is part of the defined enumeration.
func (o OpCode) IsValid() bool {
	_, ok := opcodeNames[o]
	return ok
}

// String returns the canonical upper case name of the opcode.
func (o OpCode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("OP(%d)", uint32(o))
}
