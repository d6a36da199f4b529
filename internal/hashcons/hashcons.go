// Package hashcons provides an append-only, content-addressed store of
// fixed-width word sequences.
//
// Each distinct sequence of uint32 words is assigned a small integer
// identifier. Inserting a sequence that was stored before returns the
// identifier of the first insertion, so structurally identical sequences
// always collapse to one entry. Entries are never relocated or rewritten
// once stored, which lets callers treat identifiers as permanent handles.
//
// Sequences are built through an explicit insertion protocol:
// StartInsert, then any number of PushWord/PushWords calls, then
// FinishInsert, which deduplicates and returns the canonical identifier.
package hashcons

import (
	"encoding/binary"

	"github.com/zeebo/blake3"

	"github.com/coregx/derivex/internal/conv"
)

// digest is a 32-byte BLAKE3 content hash of a word sequence. It is the
// key of the dedup index.
type digest [32]byte

// nodeDomainKey is the 32-byte key for BLAKE3 keyed hashing. Domain
// separation keeps word-sequence hashes distinct from any other BLAKE3
// use a host application may have. The byte values are the ASCII
// encoding of the domain name, zero-padded to 32 bytes.
var nodeDomainKey = [32]byte{
	'd', 'e', 'r', 'i', 'v', 'e', 'x', '.', 'h', 'a', 's', 'h', 'c', 'o', 'n', 's',
	'.', 'n', 'o', 'd', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// span locates one stored sequence inside the arena.
type span struct {
	off uint32 // index of the first word in the arena
	len uint32 // number of words
}

// Store is an append-only arena of uint32 words with a content-hash
// index for deduplication. The zero identifier is assigned to the first
// inserted sequence; callers conventionally insert an empty sequence
// first so that identifier 0 stays free for "invalid".
//
// A Store is owned by a single expression set and is not safe for
// concurrent mutation.
type Store struct {
	words []uint32          // arena; entries are contiguous word runs
	spans []span            // spans[id] locates entry id
	index map[digest]uint32 // content hash -> id of first insertion

	hasher *blake3.Hasher // keyed, reused via Reset for every FinishInsert
	buf    []byte         // scratch for the byte view of pending words

	pending   int // arena offset where the insertion in progress started
	inserting bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	hasher, err := blake3.NewKeyed(nodeDomainKey[:])
	if err != nil {
		// NewKeyed only fails on wrong key length, which the fixed-size
		// array rules out.
		panic("hashcons: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return &Store{
		index:  make(map[digest]uint32),
		hasher: hasher,
	}
}

// StartInsert begins a new insertion. Panics if an insertion is already
// in progress.
func (s *Store) StartInsert() {
	if s.inserting {
		panic("hashcons: StartInsert with insertion already in progress")
	}
	s.inserting = true
	s.pending = len(s.words)
}

// PushWord appends one word to the insertion in progress.
func (s *Store) PushWord(w uint32) {
	if !s.inserting {
		panic("hashcons: PushWord without StartInsert")
	}
	s.words = append(s.words, w)
}

// PushWords appends a word sequence to the insertion in progress.
func (s *Store) PushWords(ws []uint32) {
	if !s.inserting {
		panic("hashcons: PushWords without StartInsert")
	}
	s.words = append(s.words, ws...)
}

// FinishInsert completes the insertion in progress and returns the
// canonical identifier for the appended sequence. If an identical
// sequence was stored before, the pending words are discarded and the
// prior identifier is returned; otherwise a new identifier is allocated.
func (s *Store) FinishInsert() uint32 {
	if !s.inserting {
		panic("hashcons: FinishInsert without StartInsert")
	}
	s.inserting = false

	entry := s.words[s.pending:]
	h := s.hashWords(entry)

	if id, ok := s.index[h]; ok {
		// Duplicate: roll the arena back to where this insertion began.
		s.words = s.words[:s.pending]
		return id
	}

	id := conv.IntToUint32(len(s.spans))
	s.spans = append(s.spans, span{
		off: conv.IntToUint32(s.pending),
		len: conv.IntToUint32(len(entry)),
	})
	s.index[h] = id
	return id
}

// Insert stores a complete word sequence in one call and returns its
// canonical identifier.
func (s *Store) Insert(ws []uint32) uint32 {
	s.StartInsert()
	s.PushWords(ws)
	return s.FinishInsert()
}

// Get returns the word sequence stored under id. The returned slice
// aliases the arena and must not be modified. Panics if id is not a
// valid identifier.
func (s *Store) Get(id uint32) []uint32 {
	if int(id) >= len(s.spans) {
		panic("hashcons: Get with invalid identifier")
	}
	sp := s.spans[id]
	return s.words[sp.off : sp.off+sp.len : sp.off+sp.len]
}

// IsValid reports whether id refers to a stored sequence.
func (s *Store) IsValid(id uint32) bool {
	return int(id) < len(s.spans)
}

// Len returns the number of distinct stored sequences.
func (s *Store) Len() int {
	return len(s.spans)
}

// NumBytes returns the total bytes used by the arena and span table.
func (s *Store) NumBytes() int {
	return 4*len(s.words) + 8*len(s.spans)
}

// hashWords computes the keyed content hash of a word sequence. Words
// are serialized little-endian so the hash is independent of the host
// byte order.
func (s *Store) hashWords(ws []uint32) digest {
	s.buf = s.buf[:0]
	for _, w := range ws {
		s.buf = binary.LittleEndian.AppendUint32(s.buf, w)
	}
	s.hasher.Reset()
	s.hasher.Write(s.buf)
	var h digest
	copy(h[:], s.hasher.Sum(nil))
	return h
}
