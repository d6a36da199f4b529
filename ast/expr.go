package ast

import (
	"fmt"
	"unsafe"

	"github.com/coregx/derivex/internal/conv"
	"github.com/coregx/derivex/internal/hashcons"
)

// ExprTag identifies the variant of an expression node and determines
// how its stored words are interpreted.
type ExprTag uint8

const (
	// TagEmptyString matches only the empty input.
	TagEmptyString ExprTag = iota + 1

	// TagNoMatch matches nothing (the empty language).
	TagNoMatch

	// TagByte matches exactly one specified byte value.
	TagByte

	// TagByteSet matches exactly one byte from a bitset over the alphabet.
	TagByteSet

	// TagRemainderIs matches digit strings encoding numbers N with
	// N % divisor == remainder.
	TagRemainderIs

	// TagLookahead asserts its inner expression can additionally match
	// starting here, annotated with a fixed byte length.
	TagLookahead

	// TagNot matches the complement of its inner expression.
	TagNot

	// TagRepeat matches between min and max repetitions of its inner
	// expression (max may be unbounded).
	TagRepeat

	// TagConcat matches its children in sequence.
	TagConcat

	// TagOr matches any one of its children.
	TagOr

	// TagAnd matches inputs matched by every one of its children.
	TagAnd
)

// maxTag is the highest valid tag value. Tag 0 is reserved so a zeroed
// word can never decode as a node.
const maxTag = TagAnd

// String returns a human-readable representation of the ExprTag
func (t ExprTag) String() string {
	switch t {
	case TagEmptyString:
		return "EmptyString"
	case TagNoMatch:
		return "NoMatch"
	case TagByte:
		return "Byte"
	case TagByteSet:
		return "ByteSet"
	case TagRemainderIs:
		return "RemainderIs"
	case TagLookahead:
		return "Lookahead"
	case TagNot:
		return "Not"
	case TagRepeat:
		return "Repeat"
	case TagConcat:
		return "Concat"
	case TagOr:
		return "Or"
	case TagAnd:
		return "And"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// tagFromWord extracts and validates the tag from a node's first word.
// A zero or out-of-range tag byte is a programming error: it means the
// word sequence was not produced by the expression encoder.
func tagFromWord(w uint32) ExprTag {
	t := w & 0xff
	if t == 0 || t > uint32(maxTag) {
		panic(fmt.Sprintf("ast: invalid expression tag %d", t))
	}
	return ExprTag(t)
}

// ExprFlags carries the per-node cached properties, packed into the
// same word as the tag. The tag occupies the low byte; flags live in
// non-overlapping higher bits.
//
// Flags are computed once at construction from the children's already
// known flags and are never recomputed afterward. This is sound only
// because canonicalized nodes are immutable.
type ExprFlags uint32

const (
	// FlagsNone marks an expression that matches no string at all.
	FlagsNone ExprFlags = 0

	// FlagNullable is set when the expression can match the empty input.
	FlagNullable ExprFlags = 1 << 8

	// FlagPositive is set when the expression matches at least one
	// string, empty or not.
	FlagPositive ExprFlags = 1 << 9

	// FlagsPositiveNullable combines both flags. Anything nullable is
	// also positive.
	FlagsPositiveNullable ExprFlags = FlagNullable | FlagPositive
)

// IsNullable returns true if the expression can match the empty input.
func (f ExprFlags) IsNullable() bool {
	return f&FlagNullable != 0
}

// IsPositive returns true if the expression's language is non-empty.
func (f ExprFlags) IsPositive() bool {
	return f&FlagPositive != 0
}

// FlagsFrom builds flags from the two cached properties, enforcing the
// nullable-implies-positive invariant.
func FlagsFrom(nullable, positive bool) ExprFlags {
	if nullable {
		return FlagsPositiveNullable
	}
	if positive {
		return FlagPositive
	}
	return FlagsNone
}

// encode packs the flags and a tag into a node's first word.
func (f ExprFlags) encode(tag ExprTag) uint32 {
	return uint32(f) | uint32(tag)
}

// flagsFromWord extracts the flag bits from a node's first word.
func flagsFromWord(w uint32) ExprFlags {
	return ExprFlags(w &^ 0xff)
}

// Expr is a decoded expression node. The tag determines which fields
// are meaningful; accessor methods return zero values when called on
// the wrong variant.
//
// Slice-valued fields (the byte set and the child list) alias the
// expression set's backing storage. They are views, not copies, and
// must not be modified.
type Expr struct {
	tag   ExprTag
	flags ExprFlags

	// For Byte: the single matched byte value
	b byte

	// For ByteSet: bitset over the alphabet, aliasing stored words
	set ByteSet

	// For RemainderIs: N % divisor == remainder
	divisor, remainder uint32

	// For Lookahead/Not/Repeat: the single child
	inner ExprRef

	// For Lookahead: fixed byte length of the asserted context
	lookLen uint32

	// For Repeat: repetition bounds, max may be Unbounded
	min, max uint32

	// For Concat/Or/And: ordered children; for single-child variants a
	// one-element view of the stored child word
	args []ExprRef
}

// Unbounded is the max value of a Repeat node with no upper bound.
const Unbounded = ^uint32(0)

// Tag returns the node's variant.
func (e *Expr) Tag() ExprTag {
	return e.tag
}

// Flags returns the node's cached nullability/positivity flags.
func (e *Expr) Flags() ExprFlags {
	return e.flags
}

// IsNullable returns true if this node can match the empty input.
func (e *Expr) IsNullable() bool {
	return e.flags.IsNullable()
}

// IsPositive returns true if this node's language is non-empty.
func (e *Expr) IsPositive() bool {
	return e.flags.IsPositive()
}

// Byte returns the matched byte for Byte nodes.
// Returns 0 for other variants.
func (e *Expr) Byte() byte {
	if e.tag == TagByte {
		return e.b
	}
	return 0
}

// ByteSet returns the alphabet bitset for ByteSet nodes.
// Returns nil for other variants. The returned set aliases stored
// words and must not be modified.
func (e *Expr) ByteSet() ByteSet {
	if e.tag == TagByteSet {
		return e.set
	}
	return nil
}

// Remainder returns (divisor, remainder) for RemainderIs nodes.
// Returns (0, 0) for other variants.
func (e *Expr) Remainder() (divisor, remainder uint32) {
	if e.tag == TagRemainderIs {
		return e.divisor, e.remainder
	}
	return 0, 0
}

// Inner returns the single child for Lookahead, Not and Repeat nodes.
// Returns InvalidRef for other variants.
func (e *Expr) Inner() ExprRef {
	switch e.tag {
	case TagLookahead, TagNot, TagRepeat:
		return e.inner
	default:
		return InvalidRef
	}
}

// LookaheadLen returns the fixed byte length for Lookahead nodes.
// Returns 0 for other variants.
func (e *Expr) LookaheadLen() uint32 {
	if e.tag == TagLookahead {
		return e.lookLen
	}
	return 0
}

// Bounds returns (min, max) for Repeat nodes, where max == Unbounded
// means no upper bound. Returns (0, 0) for other variants.
func (e *Expr) Bounds() (min, max uint32) {
	if e.tag == TagRepeat {
		return e.min, e.max
	}
	return 0, 0
}

// Args returns the node's child identifiers: the full ordered list for
// Concat/Or/And, a one-element view for Lookahead/Not/Repeat, and an
// empty slice for leaf nodes.
func (e *Expr) Args() []ExprRef {
	return e.args
}

// SurelyNoMatch returns true if this node provably cannot match byte b
// as its next input byte. False means "unknown" for composite nodes.
func (e *Expr) SurelyNoMatch(b byte) bool {
	switch e.tag {
	case TagEmptyString, TagNoMatch:
		return true
	case TagByte:
		return b != e.b
	case TagByteSet:
		return !e.set.Contains(b)
	default:
		return false
	}
}

// MatchesByte returns true if this simple node matches byte b.
// Panics on composite nodes: the question only makes sense for
// EmptyString, NoMatch, Byte and ByteSet.
func (e *Expr) MatchesByte(b byte) bool {
	switch e.tag {
	case TagEmptyString, TagNoMatch:
		return false
	case TagByte:
		return b == e.b
	case TagByteSet:
		return e.set.Contains(b)
	default:
		panic("ast: MatchesByte on a composite expression")
	}
}

// serialize appends the node's packed word encoding to an insertion in
// progress on the store. Word 0 always packs the tag and flags;
// interpretation of the remaining words depends on the tag.
func (e *Expr) serialize(st *hashcons.Store) {
	w0 := e.flags.encode(e.tag)
	switch e.tag {
	case TagEmptyString, TagNoMatch:
		st.PushWord(w0)
	case TagByte:
		st.PushWords([]uint32{w0, uint32(e.b)})
	case TagByteSet:
		st.PushWord(w0)
		st.PushWords(e.set)
	case TagRemainderIs:
		st.PushWords([]uint32{w0, e.divisor, e.remainder})
	case TagLookahead:
		st.PushWords([]uint32{w0, uint32(e.inner), e.lookLen})
	case TagNot:
		st.PushWords([]uint32{w0, uint32(e.inner)})
	case TagRepeat:
		st.PushWords([]uint32{w0, uint32(e.inner), e.min, e.max})
	case TagConcat, TagOr, TagAnd:
		st.PushWord(w0)
		st.PushWords(refsToWords(e.args))
	default:
		panic(fmt.Sprintf("ast: serialize with invalid tag %d", uint8(e.tag)))
	}
}

// exprFromWords decodes a stored word sequence back into a node. Slice
// fields alias ws. The packed flag bits are authoritative; they are
// never recomputed here.
func exprFromWords(ws []uint32) Expr {
	tag := tagFromWord(ws[0])
	e := Expr{
		tag:   tag,
		flags: flagsFromWord(ws[0]),
	}
	switch tag {
	case TagEmptyString, TagNoMatch:
	case TagByte:
		e.b = conv.Uint32ToByte(ws[1])
	case TagByteSet:
		e.set = ByteSet(ws[1:])
	case TagRemainderIs:
		e.divisor = ws[1]
		e.remainder = ws[2]
	case TagLookahead:
		e.inner = NewExprRef(ws[1])
		e.lookLen = ws[2]
		e.args = wordsToRefs(ws[1:2])
	case TagNot:
		e.inner = NewExprRef(ws[1])
		e.args = wordsToRefs(ws[1:2])
	case TagRepeat:
		e.inner = NewExprRef(ws[1])
		e.min = ws[2]
		e.max = ws[3]
		e.args = wordsToRefs(ws[1:2])
	case TagConcat, TagOr, TagAnd:
		e.args = wordsToRefs(ws[1:])
	}
	return e
}

// refsToWords reinterprets a child-identifier list as raw words without
// copying. ExprRef is a uint32 by construction, so the layouts match.
func refsToWords(rs []ExprRef) []uint32 {
	if len(rs) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(unsafe.SliceData(rs))), len(rs))
}

// wordsToRefs reinterprets stored words as a child-identifier list
// without copying.
func wordsToRefs(ws []uint32) []ExprRef {
	if len(ws) == 0 {
		return nil
	}
	return unsafe.Slice((*ExprRef)(unsafe.Pointer(unsafe.SliceData(ws))), len(ws))
}
