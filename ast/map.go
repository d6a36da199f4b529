package ast

// Map computes a per-node transform over the expression graph rooted
// at root, memoized by a caller-chosen projection of identifiers.
//
// The transform receives the already-computed results for the node's
// children and produces the result for the node itself; each distinct
// cache key is processed at most once. Traversal is iterative with an
// explicit work-list, never native recursion, because graphs produced
// by derivative expansion can be arbitrarily deep. Order is post-order
// with respect to children; beyond "every child's result is available
// before its parent's transform runs" the whole-graph order is a
// last-pushed-first-visited discipline and deliberately unspecified.
//
// The key function projects identifiers to cache keys. The common case
// is the identity projection (see SimpleMap); a derived key can merge
// traversal states the caller knows to be equivalent.
//
// When concatPrune is set, descent into a concatenation's later
// children stops once an earlier child is known not to be nullable:
// the later children's results are never requested and process then
// receives a short children list. This is only safe for transforms
// that tolerate incomplete children, and must be enabled explicitly.
//
// The children slice passed to process is a reused scratch buffer;
// process must not retain it.
func Map[K comparable, V any](
	s *ExprSet,
	root ExprRef,
	cache map[K]V,
	concatPrune bool,
	key func(ExprRef) K,
	process func(*ExprSet, []V, ExprRef) V,
) V {
	if v, ok := cache[key(root)]; ok {
		return v
	}

	todo := []ExprRef{root}
	mapped := make([]V, 0, 128)

	for len(todo) > 0 {
		r := todo[len(todo)-1]
		k := key(r)
		if _, done := cache[k]; done {
			todo = todo[:len(todo)-1]
			continue
		}

		e := s.Get(r)
		isConcat := concatPrune && e.Tag() == TagConcat
		todoLen := len(todo)
		mapped = mapped[:0]
		for _, a := range e.Args() {
			// A non-nullable child pins down the concatenation for
			// pruned transforms, so later children are irrelevant.
			brk := isConcat && !s.IsNullable(a)
			if v, ok := cache[key(a)]; ok {
				mapped = append(mapped, v)
			} else {
				todo = append(todo, a)
			}
			if brk {
				break
			}
		}

		if len(todo) != todoLen {
			continue // children first, then retry r
		}

		todo = todo[:len(todo)-1]
		cache[k] = process(s, mapped, r)
	}
	return cache[key(root)]
}

// SimpleMap runs Map with a fresh identifier-keyed cache and no
// concatenation pruning.
func SimpleMap[V any](
	s *ExprSet,
	root ExprRef,
	process func(*ExprSet, []V, ExprRef) V,
) V {
	cache := make(map[ExprRef]V)
	return Map(s, root, cache, false, func(r ExprRef) ExprRef { return r }, process)
}
