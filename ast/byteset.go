package ast

// ByteSet is a fixed-universe bitset over byte values, stored as an
// array of 32-bit words. A 256-value alphabet uses 8 words.
//
// All operations are total given correctly sized word arrays. Callers
// are responsible for consistent sizing; the owning ExprSet enforces
// the alphabet width at construction time, so per-operation checks are
// deliberately absent.
type ByteSet []uint32

// NewByteSet256 returns an all-zero set sized for a 256-value alphabet.
func NewByteSet256() ByteSet {
	return make(ByteSet, 256/32)
}

// ByteSetFromRange returns a 256-value set covering the inclusive
// range [lo, hi].
func ByteSetFromRange(lo, hi byte) ByteSet {
	s := NewByteSet256()
	s.SetRange(lo, hi)
	return s
}

// Contains returns true if byte value b is in the set.
func (s ByteSet) Contains(b byte) bool {
	return s[b>>5]&(1<<(b&31)) != 0
}

// Set adds byte value b to the set.
func (s ByteSet) Set(b byte) {
	s[b>>5] |= 1 << (b & 31)
}

// Clear removes byte value b from the set.
func (s ByteSet) Clear(b byte) {
	s[b>>5] &^= 1 << (b & 31)
}

// SetRange adds the inclusive range [lo, hi] to the set.
func (s ByteSet) SetRange(lo, hi byte) {
	for b := int(lo); b <= int(hi); b++ {
		s.Set(byte(b))
	}
}

// UnionWith adds every byte of other to the set, in place.
func (s ByteSet) UnionWith(other ByteSet) {
	for i := range s {
		s[i] |= other[i]
	}
}

// IntersectWith removes every byte not in other from the set, in place.
func (s ByteSet) IntersectWith(other ByteSet) {
	for i := range s {
		s[i] &= other[i]
	}
}
