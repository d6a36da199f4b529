// Package ast provides the expression-graph core of a derivative-based
// byte regex engine.
//
// Expressions are represented as an immutable, hash-consed directed
// graph: every node is serialized to a packed word sequence and
// canonicalized through a content-addressed store, so structurally
// identical subexpressions always collapse to one identifier. This is
// what keeps derivative expansion from exploding combinatorially.
//
// Each node carries cached structural metadata (nullability and
// positivity) packed alongside its tag, computed once at construction
// and trusted thereafter. The package also provides a generic,
// cycle-safe memoized graph map that derivative computation, automaton
// construction and simplification passes build on, and a small
// next-byte reachability lattice for combining per-branch facts.
//
// The core performs no I/O, never blocks, and does not itself execute
// matches; it only defines and canonicalizes the symbolic
// representation. Contract violations (invalid identifiers, malformed
// tags, mismatched byte-set widths) fail fast with a panic: they
// indicate bugs in a calling component, not data-dependent failures.
package ast

import (
	"fmt"

	"github.com/coregx/derivex/internal/conv"
	"github.com/coregx/derivex/internal/hashcons"
	"github.com/coregx/derivex/internal/sparse"
)

// ExprSet owns the canonical storage for one expression graph and is
// the only way to create and inspect nodes.
//
// The set is a single logical owner of mutable state (the store's
// append-only arena, the cost counter, the memo caches) and is not
// safe for concurrent mutation. The natural deployment is one ExprSet
// per matching task, with read-only sharing of a fully built graph.
type ExprSet struct {
	exprs *hashcons.Store

	// alphabetSize is the number of distinct byte values the set
	// reasons about; alphabetWords is the byte-set width in words.
	alphabetSize  int
	alphabetWords int

	// digits maps decimal digit values to their byte encoding, used by
	// consumers of RemainderIs nodes.
	digits [10]byte

	// cost grows with every newly allocated node and with explicit Pay
	// calls. A surrounding component is expected to consult it to bound
	// graph growth on adversarial patterns.
	cost uint64

	formatter Formatter
	optimize  bool

	// classCache memoizes character-range lists to previously built
	// identifiers, so repeated construction of the same class is one
	// lookup instead of rebuilding a byte-set/alternation subgraph.
	classCache map[string]ExprRef
}

// Option configures an ExprSet at construction time.
type Option func(*ExprSet)

// WithOptimizations enables or disables simplification hints for
// layers built on top of the set. Construction and queries behave
// identically either way.
func WithOptimizations(enabled bool) Option {
	return func(s *ExprSet) {
		s.optimize = enabled
	}
}

// WithFormatter sets the formatting collaborator used to render
// expressions as strings.
func WithFormatter(f Formatter) Option {
	return func(s *ExprSet) {
		s.formatter = f
	}
}

// NewExprSet creates an expression set for the given alphabet size and
// populates the reserved sentinel nodes. The sentinels must land on
// their fixed identifiers (EmptyString=1 .. NonEmptyByteString=5);
// this is asserted once here and panics on mismatch.
func NewExprSet(alphabetSize int, opts ...Option) *ExprSet {
	if alphabetSize <= 0 || alphabetSize > 256 {
		panic(fmt.Sprintf("ast: alphabet size %d out of range", alphabetSize))
	}
	s := &ExprSet{
		exprs:         hashcons.NewStore(),
		alphabetSize:  alphabetSize,
		alphabetWords: (alphabetSize + 31) / 32,
		digits:        [10]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9'},
		optimize:      true,
		classCache:    make(map[string]ExprRef),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.formatter == nil {
		s.formatter = newSimpleFormatter(alphabetSize)
	}

	// Identifier 0 is permanently occupied by the empty sequence so it
	// can never name a real node.
	if id := s.exprs.Insert(nil); id != 0 {
		panic("ast: store did not reserve identifier 0")
	}

	anyByte := make(ByteSet, s.alphabetWords)
	for i := range anyByte {
		anyByte[i] = ^uint32(0)
	}

	inserts := []struct {
		got, want ExprRef
	}{
		{s.MkEmptyString(), EmptyString},
		{s.MkNoMatch(), NoMatch},
		{s.MkByteSet(anyByte), AnyByte},
		{s.MkRepeat(FlagsPositiveNullable, AnyByte, 0, Unbounded), AnyByteString},
		{s.MkRepeat(FlagPositive, AnyByte, 1, Unbounded), NonEmptyByteString},
	}
	for _, in := range inserts {
		if in.got != in.want {
			panic(fmt.Sprintf("ast: sentinel landed on %d, expected %d", in.got, in.want))
		}
	}
	return s
}

// mk serializes a node, canonicalizes it through the store, and
// charges cost for newly allocated entries. Deduplicated hits leave
// the cost unchanged.
func (s *ExprSet) mk(e Expr) ExprRef {
	before := s.exprs.Len()
	s.exprs.StartInsert()
	e.serialize(s.exprs)
	id := s.exprs.FinishInsert()
	if s.exprs.Len() != before {
		// Charge by stored size so wide nodes cost more than leaves.
		s.cost += uint64(len(s.exprs.Get(id)))
	}
	return ExprRef(id)
}

// MkEmptyString returns the expression matching only the empty input.
func (s *ExprSet) MkEmptyString() ExprRef {
	return s.mk(Expr{tag: TagEmptyString, flags: FlagsPositiveNullable})
}

// MkNoMatch returns the expression matching nothing.
func (s *ExprSet) MkNoMatch() ExprRef {
	return s.mk(Expr{tag: TagNoMatch, flags: FlagsNone})
}

// MkByte returns the expression matching exactly the byte b.
func (s *ExprSet) MkByte(b byte) ExprRef {
	if int(b) >= s.alphabetSize {
		panic(fmt.Sprintf("ast: byte %d outside alphabet of size %d", b, s.alphabetSize))
	}
	return s.mk(Expr{tag: TagByte, flags: FlagPositive, b: b})
}

// MkByteSet returns the expression matching exactly one byte from set.
// The set must be sized for this alphabet; a mismatched width is a
// programming error.
func (s *ExprSet) MkByteSet(set ByteSet) ExprRef {
	if len(set) != s.alphabetWords {
		panic(fmt.Sprintf("ast: byte set width %d, alphabet needs %d words", len(set), s.alphabetWords))
	}
	return s.mk(Expr{tag: TagByteSet, flags: FlagPositive, set: set})
}

// MkRemainderIs returns the expression matching digit strings encoding
// numbers N with N % divisor == remainder. Remainder 0 admits the
// empty digit string, so the node is nullable exactly then.
func (s *ExprSet) MkRemainderIs(divisor, remainder uint32) ExprRef {
	flags := FlagPositive
	if remainder == 0 {
		flags = FlagsPositiveNullable
	}
	return s.mk(Expr{tag: TagRemainderIs, flags: flags, divisor: divisor, remainder: remainder})
}

// MkLookahead returns a lookahead assertion over inner, annotated with
// the fixed byte length n of the asserted context. Flags are supplied
// by the caller: the combinator layer that builds lookaheads owns the
// nullability rules for them.
func (s *ExprSet) MkLookahead(flags ExprFlags, inner ExprRef, n uint32) ExprRef {
	s.check(inner)
	return s.mk(Expr{tag: TagLookahead, flags: flags, inner: inner, lookLen: n})
}

// MkNot returns the complement of inner. Flags are supplied by the
// caller.
func (s *ExprSet) MkNot(flags ExprFlags, inner ExprRef) ExprRef {
	s.check(inner)
	return s.mk(Expr{tag: TagNot, flags: flags, inner: inner})
}

// MkRepeat returns a bounded or unbounded repetition of inner
// (max == Unbounded means no upper bound). Flags are supplied by the
// caller; e.g. a repeat with min 0 is always nullable, but that rule
// belongs to the simplification layer, not here.
func (s *ExprSet) MkRepeat(flags ExprFlags, inner ExprRef, min, max uint32) ExprRef {
	s.check(inner)
	return s.mk(Expr{tag: TagRepeat, flags: flags, inner: inner, min: min, max: max})
}

// MkConcat returns the concatenation of args, which must hold at least
// two children. Flags are supplied by the caller.
func (s *ExprSet) MkConcat(flags ExprFlags, args []ExprRef) ExprRef {
	return s.mkNary(TagConcat, flags, args)
}

// MkOr returns the alternation of args, which must hold at least two
// children. Flags are supplied by the caller.
func (s *ExprSet) MkOr(flags ExprFlags, args []ExprRef) ExprRef {
	return s.mkNary(TagOr, flags, args)
}

// MkAnd returns the conjunction of args, which must hold at least two
// children. Flags are supplied by the caller.
func (s *ExprSet) MkAnd(flags ExprFlags, args []ExprRef) ExprRef {
	return s.mkNary(TagAnd, flags, args)
}

func (s *ExprSet) mkNary(tag ExprTag, flags ExprFlags, args []ExprRef) ExprRef {
	if len(args) < 2 {
		panic(fmt.Sprintf("ast: %s with %d children, need at least 2", tag, len(args)))
	}
	for _, a := range args {
		s.check(a)
	}
	return s.mk(Expr{tag: tag, flags: flags, args: args})
}

// Get returns the decoded node for id. Slice fields of the result
// alias the set's storage. Panics if id is invalid or out of range.
func (s *ExprSet) Get(id ExprRef) Expr {
	s.check(id)
	return exprFromWords(s.exprs.Get(uint32(id)))
}

// Tag returns just the tag of the node id.
func (s *ExprSet) Tag(id ExprRef) ExprTag {
	s.check(id)
	return tagFromWord(s.exprs.Get(uint32(id))[0])
}

// Flags returns just the cached flags of the node id.
func (s *ExprSet) Flags(id ExprRef) ExprFlags {
	s.check(id)
	return flagsFromWord(s.exprs.Get(uint32(id))[0])
}

// Args returns the child identifiers of the node id: the full list for
// Concat/Or/And, a one-element view for Lookahead/Not/Repeat, and an
// empty slice for leaves. The result aliases the set's storage.
func (s *ExprSet) Args(id ExprRef) []ExprRef {
	s.check(id)
	ws := s.exprs.Get(uint32(id))
	switch tagFromWord(ws[0]) {
	case TagConcat, TagOr, TagAnd:
		return wordsToRefs(ws[1:])
	case TagLookahead, TagNot, TagRepeat:
		return wordsToRefs(ws[1:2])
	default:
		return nil
	}
}

// IsNullable returns true if the node id can match the empty input.
func (s *ExprSet) IsNullable(id ExprRef) bool {
	return s.Flags(id).IsNullable()
}

// IsPositive returns true if the node id's language is non-empty.
func (s *ExprSet) IsPositive(id ExprRef) bool {
	return s.Flags(id).IsPositive()
}

// IsValid returns true if id names a node stored in this set.
func (s *ExprSet) IsValid(id ExprRef) bool {
	return id.IsValid() && s.exprs.IsValid(uint32(id))
}

// check fails fast on identifiers that cannot name a node here.
func (s *ExprSet) check(id ExprRef) {
	if !id.IsValid() {
		panic("ast: invalid expression reference")
	}
	if !s.exprs.IsValid(uint32(id)) {
		panic(fmt.Sprintf("ast: expression reference %d out of range", uint32(id)))
	}
}

// HasSimplyForcedBytes returns true if the expression provably matches
// only strings starting with the given prefix. It is conservative:
// true only for an exact single-byte match or a concatenation whose
// leading children are exactly the probed literal bytes. False means
// the claim could not be proven, never that it is disproven. An empty
// probe is trivially satisfied.
func (s *ExprSet) HasSimplyForcedBytes(id ExprRef, bytes []byte) bool {
	if len(bytes) == 0 {
		return true
	}
	e := s.Get(id)
	switch e.Tag() {
	case TagByte:
		return len(bytes) == 1 && bytes[0] == e.Byte()
	case TagConcat:
		args := e.Args()
		if len(args) < len(bytes) {
			return false
		}
		for i, b := range bytes {
			child := s.Get(args[i])
			if child.Tag() != TagByte || child.Byte() != b {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// lookaheadLenInner qualifies a single alternation branch: only a
// direct lookahead over the empty string carries a guaranteed length.
func (s *ExprSet) lookaheadLenInner(id ExprRef) (int, bool) {
	e := s.Get(id)
	if e.Tag() == TagLookahead && e.Inner() == EmptyString {
		return int(e.LookaheadLen()), true
	}
	return 0, false
}

// LookaheadLen returns the minimum guaranteed lookahead length of id.
// For an Or it is the minimum across qualifying branches; absence of
// any qualifying branch yields ok == false.
func (s *ExprSet) LookaheadLen(id ExprRef) (n int, ok bool) {
	e := s.Get(id)
	if e.Tag() != TagOr {
		return s.lookaheadLenInner(id)
	}
	for _, arg := range e.Args() {
		if m, found := s.lookaheadLenInner(arg); found && (!ok || m < n) {
			n, ok = m, true
		}
	}
	return n, ok
}

// possibleLookaheadLenInner takes the annotated length of any
// lookahead node, zero otherwise.
func (s *ExprSet) possibleLookaheadLenInner(id ExprRef) int {
	e := s.Get(id)
	if e.Tag() == TagLookahead {
		return int(e.LookaheadLen())
	}
	return 0
}

// PossibleLookaheadLen returns the maximum possible lookahead length
// of id: for an Or the maximum across branches, defaulting to zero
// when none qualify.
func (s *ExprSet) PossibleLookaheadLen(id ExprRef) int {
	e := s.Get(id)
	if e.Tag() != TagOr {
		return s.possibleLookaheadLenInner(id)
	}
	n := 0
	for _, arg := range e.Args() {
		if m := s.possibleLookaheadLenInner(arg); m > n {
			n = m
		}
	}
	return n
}

// SubgraphSize returns the number of distinct nodes reachable from
// root, counting shared nodes once. Useful for sizing decisions before
// charging derived work against the cost budget.
func (s *ExprSet) SubgraphSize(root ExprRef) int {
	s.check(root)
	seen := sparse.NewSparseSet(conv.IntToUint32(s.exprs.Len()))
	todo := []ExprRef{root}
	for len(todo) > 0 {
		r := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if seen.Contains(uint32(r)) {
			continue
		}
		seen.Insert(uint32(r))
		todo = append(todo, s.Args(r)...)
	}
	return seen.Size()
}

// Cost returns the accumulated construction cost.
func (s *ExprSet) Cost() uint64 {
	return s.cost
}

// Pay charges additional cost for derived work (e.g. a derivative
// step) that the caller wants bounded by the same budget.
func (s *ExprSet) Pay(amount uint64) {
	s.cost += amount
}

// AlphabetSize returns the number of byte values the set reasons about.
func (s *ExprSet) AlphabetSize() int {
	return s.alphabetSize
}

// AlphabetWords returns the byte-set width in 32-bit words.
func (s *ExprSet) AlphabetWords() int {
	return s.alphabetWords
}

// Digits returns the digit-to-byte-value table used by numeric
// encodings such as RemainderIs.
func (s *ExprSet) Digits() [10]byte {
	return s.digits
}

// Len returns the number of distinct stored entries, including the
// reserved identifier 0.
func (s *ExprSet) Len() int {
	return s.exprs.Len()
}

// NumBytes returns the total bytes used by the backing storage.
func (s *ExprSet) NumBytes() int {
	return s.exprs.NumBytes()
}

// Optimize returns true if simplification hints are enabled.
func (s *ExprSet) Optimize() bool {
	return s.optimize
}

// DisableOptimizations turns off simplification hints for layers built
// on top of the set.
func (s *ExprSet) DisableOptimizations() {
	s.optimize = false
}
