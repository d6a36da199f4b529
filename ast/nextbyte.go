package ast

import "fmt"

// nextByteKind discriminates the four lattice states. The zero value
// is someBytes so that a zero NextByte is the safe "no information"
// state.
type nextByteKind uint8

const (
	someBytes nextByteKind = iota
	forcedByte
	forcedEOI
	dead
)

// NextByte is a four-state summary of what can happen on the next
// input byte (or end of input) from the current point of a match:
//
//   - ForcedByte(b): only byte b can possibly extend a match; any
//     other byte, or ending input here, leads to a dead state.
//   - ForcedEOI: no byte can extend a match, but ending input here is
//     an accepted outcome.
//   - SomeBytes: insufficient information to narrow further.
//   - Dead: no continuation whatsoever; only NoMatch and anything
//     equivalent to it.
//
// NextByte values are comparable with ==.
type NextByte struct {
	kind nextByteKind
	b    byte
}

// SomeBytes is the "no information" state: some byte may extend a match.
var SomeBytes = NextByte{kind: someBytes}

// ForcedEOI is the state where only ending input here can succeed.
var ForcedEOI = NextByte{kind: forcedEOI}

// Dead is the state with no possible continuation.
var Dead = NextByte{kind: dead}

// ForcedByte returns the state where only byte b can extend a match.
func ForcedByte(b byte) NextByte {
	return NextByte{kind: forcedByte, b: b}
}

// IsForcedByte returns the forced byte value, and true if this state
// actually forces one.
func (n NextByte) IsForcedByte() (byte, bool) {
	return n.b, n.kind == forcedByte
}

// Meet combines simultaneous requirements, as across a conjunction.
// Equal operands yield that operand; SomeBytes is the identity (the
// more specific fact wins); two different non-SomeBytes facts are
// contradictory demands and yield Dead.
func (n NextByte) Meet(other NextByte) NextByte {
	if n == other {
		return n
	}
	if n == SomeBytes {
		return other
	}
	if other == SomeBytes {
		return n
	}
	return Dead
}

// Join combines alternative possibilities, as across an alternation.
// Equal operands yield that operand; Dead is the identity; distinct
// non-trivial outcomes from different branches can no longer be
// narrowed and yield SomeBytes.
func (n NextByte) Join(other NextByte) NextByte {
	if n == other {
		return n
	}
	if n == Dead {
		return other
	}
	if other == Dead {
		return n
	}
	return SomeBytes
}

// String returns a human-readable representation of the state
func (n NextByte) String() string {
	switch n.kind {
	case forcedByte:
		return fmt.Sprintf("ForcedByte(0x%02x)", n.b)
	case forcedEOI:
		return "ForcedEOI"
	case someBytes:
		return "SomeBytes"
	case dead:
		return "Dead"
	default:
		return fmt.Sprintf("Unknown(%d)", n.kind)
	}
}
