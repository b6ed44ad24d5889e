// Package endpointset holds the ordered peer-address -> value maps used by
// the balancer's available and retired endpoint tables.
//
// Ordering is by peer address string, not insertion order: spec traces only
// need a stable, reproducible order across sweeps that don't reclassify an
// entry, and a tree gives that for free without a second insertion-order
// index to maintain by hand.
package endpointset

import (
	"github.com/twmb/go-rbtree"
)

// Set is an ordered map from a string key (a peer address) to a value of
// type V. A red-black tree (github.com/twmb/go-rbtree) keeps entries in key
// order for Each/Drain; a plain map gives O(1) point lookup without walking
// the tree by hand on every Get, since the tree is intrusive and exposes no
// keyed search of its own. It is not safe for concurrent use; callers own
// their own exclusion, same as the Manager does for its two Sets.
type Set[V any] struct {
	tree  rbtree.Tree
	index map[string]*node[V]
}

type node[V any] struct {
	rbtree.Node
	key   string
	value V
}

// New returns an empty Set ordered by key.
func New[V any]() *Set[V] {
	return &Set[V]{index: make(map[string]*node[V])}
}

// Get returns the value stored under key and whether it was present.
func (s *Set[V]) Get(key string) (V, bool) {
	var zero V
	n, ok := s.index[key]
	if !ok {
		return zero, false
	}
	return n.value, true
}

// Put inserts or overwrites the value stored under key.
func (s *Set[V]) Put(key string, v V) {
	if n, ok := s.index[key]; ok {
		n.value = v
		return
	}
	n := &node[V]{key: key, value: v}
	n.Node.Item = n
	s.index[key] = n
	s.tree.Insert(&n.Node, func(a, b *rbtree.Node) bool {
		return a.Item.(*node[V]).key < b.Item.(*node[V]).key
	})
}

// Delete removes key from the set, returning the removed value if present.
func (s *Set[V]) Delete(key string) (V, bool) {
	n, ok := s.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	s.tree.Delete(&n.Node)
	delete(s.index, key)
	return n.value, true
}

// Len returns the number of entries in the set.
func (s *Set[V]) Len() int { return len(s.index) }

// Each calls fn once per entry in key order. fn must not mutate the set.
func (s *Set[V]) Each(fn func(key string, v V)) {
	for n := s.tree.Min(); n != nil; n = n.Next() {
		e := n.Item.(*node[V])
		fn(e.key, e.value)
	}
}

// Values returns every value in key order. Used by selection, which needs
// index-addressable random access into the available set; a fresh O(n)
// snapshot is cheap next to the cost of the dial/socket work it selects
// among, and keeps Set itself free of an order-statistics augmentation.
func (s *Set[V]) Values() []V {
	out := make([]V, 0, s.Len())
	s.Each(func(_ string, v V) { out = append(out, v) })
	return out
}

// Drain empties the set up front, snapshotting every entry in key order,
// then calls fn once per snapshotted entry. Because the set is already
// empty by the time fn runs, fn is free to Put a key back into this very
// set (as well as into some other Set) and have it genuinely survive the
// drain — the same shape as the retired/available sweeps, which drain a
// set into a keep/drop/move decision and re-Put whatever should stay.
func (s *Set[V]) Drain(fn func(key string, v V)) {
	keys := make([]string, 0, s.Len())
	vals := make([]V, 0, s.Len())
	s.Each(func(key string, v V) {
		keys = append(keys, key)
		vals = append(vals, v)
	})

	s.tree = rbtree.Tree{}
	s.index = make(map[string]*node[V])

	for i, key := range keys {
		fn(key, vals[i])
	}
}
