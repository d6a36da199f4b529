package ast

// ExprRef uniquely identifies a canonicalized expression node within
// one ExprSet. It is a 32-bit handle into the set's content-addressed
// storage: two structurally identical nodes always share one ExprRef.
//
// ExprRefs carry no payload. They are compared for equality/ordering
// and used as storage and cache keys, nothing more.
type ExprRef uint32

// Reserved identifiers. The five sentinels are created first and in
// this order by every NewExprSet, so their numeric values are stable
// across expression set instances.
const (
	// InvalidRef is never a real node; it denotes "unset".
	InvalidRef ExprRef = 0

	// EmptyString matches only the empty input.
	EmptyString ExprRef = 1

	// NoMatch matches nothing.
	NoMatch ExprRef = 2

	// AnyByte matches one byte of any value, including values outside
	// valid text encoding.
	AnyByte ExprRef = 3

	// AnyByteString matches zero or more arbitrary bytes.
	AnyByteString ExprRef = 4

	// NonEmptyByteString matches one or more arbitrary bytes.
	NonEmptyByteString ExprRef = 5
)

// NewExprRef wraps a raw identifier. Panics on 0, which is reserved
// for InvalidRef.
func NewExprRef(id uint32) ExprRef {
	if id == 0 {
		panic("ast: ExprRef(0) is reserved for the invalid reference")
	}
	return ExprRef(id)
}

// IsValid returns true if the reference is not InvalidRef. It says
// nothing about whether the identifier is in range for a given set;
// use ExprSet.IsValid for that.
func (r ExprRef) IsValid() bool {
	return r != InvalidRef
}

// AsU32 returns the raw identifier value.
func (r ExprRef) AsU32() uint32 {
	return uint32(r)
}
