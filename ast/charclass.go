package ast

import "encoding/binary"

// CharRange is an inclusive range of Unicode code points. Front-end
// builders lower character classes (lists of CharRanges) into byte-set
// and alternation subgraphs; the ExprSet memoizes that lowering so a
// class appearing many times in a pattern is built once.
type CharRange struct {
	Lo, Hi rune
}

// classKey encodes a canonicalized range list into a compact map key.
// The caller is responsible for canonical ordering: two lists that
// differ only in order are distinct keys.
func classKey(ranges []CharRange) string {
	buf := make([]byte, 0, len(ranges)*8)
	for _, r := range ranges {
		buf = binary.BigEndian.AppendUint32(buf, uint32(r.Lo))
		buf = binary.BigEndian.AppendUint32(buf, uint32(r.Hi))
	}
	return string(buf)
}

// CachedClass returns the previously built expression for the given
// canonicalized character-range list, if any.
func (s *ExprSet) CachedClass(ranges []CharRange) (ExprRef, bool) {
	id, ok := s.classCache[classKey(ranges)]
	return id, ok
}

// StoreCachedClass records the expression built for the given
// canonicalized character-range list. Panics on InvalidRef.
func (s *ExprSet) StoreCachedClass(ranges []CharRange, id ExprRef) {
	if !id.IsValid() {
		panic("ast: caching invalid expression reference for character class")
	}
	s.classCache[classKey(ranges)] = id
}
