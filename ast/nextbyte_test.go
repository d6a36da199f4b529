package ast

import (
	"testing"
)

// lattice elements used across the law tests; two distinct forced
// bytes are included so the "different non-trivial facts" paths are
// exercised.
var nextByteElems = []NextByte{
	ForcedByte('a'),
	ForcedByte('b'),
	ForcedEOI,
	SomeBytes,
	Dead,
}

// TestNextByte_MeetTable pins the full meet truth table.
func TestNextByte_MeetTable(t *testing.T) {
	tests := []struct {
		name string
		x, y NextByte
		want NextByte
	}{
		{"equal forced bytes", ForcedByte('a'), ForcedByte('a'), ForcedByte('a')},
		{"different forced bytes", ForcedByte('a'), ForcedByte('b'), Dead},
		{"forced byte with some", ForcedByte('a'), SomeBytes, ForcedByte('a')},
		{"some with forced eoi", SomeBytes, ForcedEOI, ForcedEOI},
		{"forced byte with eoi", ForcedByte('a'), ForcedEOI, Dead},
		{"dead with forced byte", Dead, ForcedByte('a'), Dead},
		{"dead with some", Dead, SomeBytes, Dead},
		{"some with some", SomeBytes, SomeBytes, SomeBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.x.Meet(tt.y); got != tt.want {
				t.Errorf("%v ⋀ %v = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

// TestNextByte_JoinTable pins the full join truth table.
func TestNextByte_JoinTable(t *testing.T) {
	tests := []struct {
		name string
		x, y NextByte
		want NextByte
	}{
		{"equal forced bytes", ForcedByte('a'), ForcedByte('a'), ForcedByte('a')},
		{"different forced bytes", ForcedByte('a'), ForcedByte('b'), SomeBytes},
		{"forced byte with dead", ForcedByte('a'), Dead, ForcedByte('a')},
		{"dead with forced eoi", Dead, ForcedEOI, ForcedEOI},
		{"forced byte with eoi", ForcedByte('a'), ForcedEOI, SomeBytes},
		{"some with forced byte", SomeBytes, ForcedByte('a'), SomeBytes},
		{"dead with dead", Dead, Dead, Dead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.x.Join(tt.y); got != tt.want {
				t.Errorf("%v ⋁ %v = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

// TestNextByte_Laws verifies idempotence, commutativity and the
// identity/absorbing elements over all state pairs.
func TestNextByte_Laws(t *testing.T) {
	for _, x := range nextByteElems {
		if x.Meet(x) != x {
			t.Errorf("meet not idempotent for %v", x)
		}
		if x.Join(x) != x {
			t.Errorf("join not idempotent for %v", x)
		}
		if x.Join(Dead) != x || Dead.Join(x) != x {
			t.Errorf("Dead is not the join identity for %v", x)
		}
		if x.Meet(Dead) != Dead || Dead.Meet(x) != Dead {
			t.Errorf("Dead is not meet-absorbing for %v", x)
		}
		if x.Meet(SomeBytes) != x || SomeBytes.Meet(x) != x {
			t.Errorf("SomeBytes is not the meet identity for %v", x)
		}
		for _, y := range nextByteElems {
			if x.Meet(y) != y.Meet(x) {
				t.Errorf("meet not commutative for %v, %v", x, y)
			}
			if x.Join(y) != y.Join(x) {
				t.Errorf("join not commutative for %v, %v", x, y)
			}
		}
	}
}

// TestNextByte_Accessors covers the forced-byte accessor and the zero
// value.
func TestNextByte_Accessors(t *testing.T) {
	if b, ok := ForcedByte(0x7f).IsForcedByte(); !ok || b != 0x7f {
		t.Errorf("IsForcedByte = (%d, %v)", b, ok)
	}
	if _, ok := ForcedEOI.IsForcedByte(); ok {
		t.Error("ForcedEOI should not report a forced byte")
	}

	var zero NextByte
	if zero != SomeBytes {
		t.Error("zero value should be the safe SomeBytes state")
	}
}
