package hashcons

import (
	"testing"
)

// TestStore_Canonicalization verifies identical sequences collapse to
// one identifier and distinct sequences get distinct identifiers.
func TestStore_Canonicalization(t *testing.T) {
	s := NewStore()

	tests := []struct {
		name string
		a, b []uint32
		same bool
	}{
		{"identical singletons", []uint32{7}, []uint32{7}, true},
		{"identical sequences", []uint32{1, 2, 3}, []uint32{1, 2, 3}, true},
		{"different words", []uint32{1, 2, 3}, []uint32{1, 2, 4}, false},
		{"different lengths", []uint32{1, 2}, []uint32{1, 2, 0}, false},
		{"empty vs zero word", []uint32{}, []uint32{0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idA := s.Insert(tt.a)
			idB := s.Insert(tt.b)
			if (idA == idB) != tt.same {
				t.Errorf("Insert(%v)=%d, Insert(%v)=%d, want same=%v",
					tt.a, idA, tt.b, idB, tt.same)
			}
		})
	}
}

// TestStore_InsertionProtocol exercises the explicit start/push/finish
// protocol against the one-shot Insert.
func TestStore_InsertionProtocol(t *testing.T) {
	s := NewStore()

	s.StartInsert()
	s.PushWord(10)
	s.PushWords([]uint32{20, 30})
	id := s.FinishInsert()

	if got := s.Insert([]uint32{10, 20, 30}); got != id {
		t.Errorf("one-shot Insert returned %d, protocol returned %d", got, id)
	}

	got := s.Get(id)
	want := []uint32{10, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("Get returned %d words, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d = %d, want %d", i, got[i], want[i])
		}
	}
}

// TestStore_FirstInsertionPermanent verifies that a stored sequence is
// never relocated by later insertions or dedup rollbacks.
func TestStore_FirstInsertionPermanent(t *testing.T) {
	s := NewStore()
	id := s.Insert([]uint32{1, 2, 3})

	for i := uint32(0); i < 100; i++ {
		s.Insert([]uint32{i, i + 1})
		if got := s.Insert([]uint32{1, 2, 3}); got != id {
			// dedup hit must keep returning the original identifier
			t.Fatalf("reinsertion got %d, want %d", got, id)
		}
	}

	again := s.Get(id)
	for i, w := range []uint32{1, 2, 3} {
		if again[i] != w {
			t.Errorf("word %d = %d, want %d", i, again[i], w)
		}
	}
}

// TestStore_DedupKeepsLenAndBytes verifies dedup hits allocate nothing.
func TestStore_DedupKeepsLenAndBytes(t *testing.T) {
	s := NewStore()
	s.Insert([]uint32{5, 6})

	lenBefore := s.Len()
	bytesBefore := s.NumBytes()
	s.Insert([]uint32{5, 6})
	if s.Len() != lenBefore {
		t.Errorf("Len changed on dedup: %d -> %d", lenBefore, s.Len())
	}
	if s.NumBytes() != bytesBefore {
		t.Errorf("NumBytes changed on dedup: %d -> %d", bytesBefore, s.NumBytes())
	}
}

// TestStore_IsValid checks identifier validity tracking.
func TestStore_IsValid(t *testing.T) {
	s := NewStore()
	if s.IsValid(0) {
		t.Error("empty store should have no valid identifiers")
	}
	id := s.Insert([]uint32{42})
	if !s.IsValid(id) {
		t.Errorf("identifier %d should be valid", id)
	}
	if s.IsValid(id + 1) {
		t.Errorf("identifier %d should not be valid yet", id+1)
	}
}

// TestStore_EmptySequence verifies the empty sequence is storable and
// canonicalized like any other.
func TestStore_EmptySequence(t *testing.T) {
	s := NewStore()
	id := s.Insert(nil)
	if id != 0 {
		t.Errorf("first insertion got id %d, want 0", id)
	}
	if got := s.Insert([]uint32{}); got != id {
		t.Errorf("empty sequence reinsertion got %d, want %d", got, id)
	}
	if len(s.Get(id)) != 0 {
		t.Errorf("empty sequence Get returned %d words", len(s.Get(id)))
	}
}

// TestStore_ProtocolMisuse verifies the insertion protocol fails fast
// when used out of order.
func TestStore_ProtocolMisuse(t *testing.T) {
	tests := []struct {
		name string
		run  func(*Store)
	}{
		{"push without start", func(s *Store) { s.PushWord(1) }},
		{"push words without start", func(s *Store) { s.PushWords([]uint32{1}) }},
		{"finish without start", func(s *Store) { s.FinishInsert() }},
		{"double start", func(s *Store) { s.StartInsert(); s.StartInsert() }},
		{"get invalid id", func(s *Store) { s.Get(99) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.run(NewStore())
		})
	}
}

func BenchmarkStore_Insert(b *testing.B) {
	s := NewStore()
	seq := []uint32{1, 2, 3, 4}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seq[3] = uint32(i)
		s.Insert(seq)
	}
}

func BenchmarkStore_InsertDedup(b *testing.B) {
	s := NewStore()
	seq := []uint32{1, 2, 3, 4}
	s.Insert(seq)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Insert(seq)
	}
}
