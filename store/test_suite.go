package store

import (
	"bytes"
	"testing"

	"github.com/iov-one/quorum/quorumtest/assert"
)

/*
TestSuite provides many methods that can be called in package-specific test code.
We just customize the store being tested (pass in constructor), the rest of the
logic is generic to the KVStore interface.

This is intended in particular to remove duplication between btree_test.go
and iavl/adapter_test.go, but can be used for any implementation of KVStore.
*/
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns a fresh store to test and a function to
// release it.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

// NewTestSuite returns a suite running all tests against stores created
// by the constructor.
func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{
		makeBase: constructor,
	}
}

// GetSet does basic sanity checks on our cache
//
// Other tests should handle deletes, setting same value,
// iterating over ranges, and general fuzzing
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	// make sure the store is empty at start but returns results
	// that are written to it
	k, v := []byte("french"), []byte("fry")
	s.AssertGetHas(t, base, k, nil, false)
	assert.Nil(t, base.Set(k, v))
	s.AssertGetHas(t, base, k, v, true)

	// now layer another btree on top and make sure that we get
	// base data
	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, k, v, true)

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	s.AssertGetHas(t, cache, k2, nil, false)
	assert.Nil(t, cache.Set(k2, v2))
	s.AssertGetHas(t, cache, k2, v2, true)
	s.AssertGetHas(t, base, k2, nil, false)

	// we can write the cache to the base layer...
	assert.Nil(t, cache.Write())
	s.AssertGetHas(t, base, k, v, true)
	s.AssertGetHas(t, base, k2, v2, true)

	// we can discard one
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	s.AssertGetHas(t, c2, k, v, true)
	s.AssertGetHas(t, c2, k2, v2, true)
	assert.Nil(t, c2.Set(k3, v3))
	c2.Discard()
	s.AssertGetHas(t, base, k3, nil, false)

	// and commit another
	c3 := base.CacheWrap()
	s.AssertGetHas(t, c3, k, v, true)
	s.AssertGetHas(t, c3, k2, v2, true)
	assert.Nil(t, c3.Delete(k))
	assert.Nil(t, c3.Write())

	// make sure it commits proper
	s.AssertGetHas(t, base, k, nil, false)
	s.AssertGetHas(t, base, k2, v2, true)
	s.AssertGetHas(t, base, k3, nil, false)
}

// NestedDiscard checks that discarding an inner cache wrap leaves the outer
// cache wrap untouched, which is how a failed inner call is undone.
func (s *TestSuite) NestedDiscard(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	outer := base.CacheWrap()
	assert.Nil(t, outer.Set([]byte("nonce"), []byte{1}))

	inner := outer.CacheWrap()
	assert.Nil(t, inner.Set([]byte("balance"), []byte{9}))
	assert.Nil(t, inner.Delete([]byte("nonce")))
	s.AssertGetHas(t, inner, []byte("nonce"), nil, false)
	inner.Discard()

	s.AssertGetHas(t, outer, []byte("nonce"), []byte{1}, true)
	s.AssertGetHas(t, outer, []byte("balance"), nil, false)

	assert.Nil(t, outer.Write())
	s.AssertGetHas(t, base, []byte("nonce"), []byte{1}, true)
	s.AssertGetHas(t, base, []byte("balance"), nil, false)
}

// CacheConflicts checks that a child overrides and deletes parent values
// without touching the parent until written.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	k1, k2, k3 := []byte("alpha"), []byte("beta"), []byte("gamma")

	cases := map[string]struct {
		parent []op
		child  []op
		// a nil value means the key must be missing
		parentWant []Model
		childWant  []Model
	}{
		"overwrite one, delete another, add a third": {
			parent:     sets(Pair(k1, []byte("1")), Pair(k2, []byte("2"))),
			child:      append(sets(Pair(k1, []byte("11")), Pair(k3, []byte("3"))), dels(k2)...),
			parentWant: []Model{Pair(k1, []byte("1")), Pair(k2, []byte("2")), Pair(k3, nil)},
			childWant:  []Model{Pair(k1, []byte("11")), Pair(k2, nil), Pair(k3, []byte("3"))},
		},
		"set after delete": {
			parent:     sets(Pair(k1, []byte("1"))),
			child:      append(dels(k1), sets(Pair(k1, []byte("again")))...),
			parentWant: []Model{Pair(k1, []byte("1"))},
			childWant:  []Model{Pair(k1, []byte("again"))},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()
			apply(t, parent, tc.parent)

			child := parent.CacheWrap()
			apply(t, child, tc.child)

			for _, m := range tc.parentWant {
				s.AssertGetHas(t, parent, m.Key, m.Value, m.Value != nil)
			}
			for _, m := range tc.childWant {
				s.AssertGetHas(t, child, m.Key, m.Value, m.Value != nil)
			}

			assert.Nil(t, child.Write())
			for _, m := range tc.childWant {
				s.AssertGetHas(t, parent, m.Key, m.Value, m.Value != nil)
			}
		})
	}
}

// IteratorWithConflicts checks that iterating a cache wrap merges its
// writes with the parent content, in key order.
func (s *TestSuite) IteratorWithConflicts(t *testing.T) {
	a, b, c, d := Pair([]byte("a"), []byte("A")), Pair([]byte("b"), []byte("B")),
		Pair([]byte("c"), []byte("C")), Pair([]byte("d"), []byte("D"))
	a2, b2 := Pair(a.Key, []byte("A2")), Pair(b.Key, []byte("B2"))

	cases := map[string]struct {
		parent  []op
		child   []op
		queries []rangeQuery
	}{
		"child only": {
			child: sets(c, a, b),
			queries: []rangeQuery{
				{nil, nil, []Model{a, b, c}},
				{b.Key, c.Key, []Model{b}},
			},
		},
		"parent only": {
			parent: sets(a, b, c),
			queries: []rangeQuery{
				{nil, nil, []Model{a, b, c}},
				{b.Key, nil, []Model{b, c}},
			},
		},
		"combined": {
			parent: sets(a, c),
			child:  sets(b, d),
			queries: []rangeQuery{
				{nil, nil, []Model{a, b, c, d}},
				{b.Key, d.Key, []Model{b, c}},
			},
		},
		"child values win": {
			parent: sets(a, b, c),
			child:  sets(a2, b2, d),
			queries: []rangeQuery{
				{nil, nil, []Model{a2, b2, c, d}},
				{b.Key, d.Key, []Model{b2, c}},
			},
		},
		"deleted keys are skipped": {
			parent: sets(a, c, d),
			child:  dels(a.Key, b.Key, d.Key),
			queries: []rangeQuery{
				{nil, nil, []Model{c}},
				{nil, c.Key, nil},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			apply(t, base, tc.parent)

			child := base.CacheWrap()
			apply(t, child, tc.child)

			for _, q := range tc.queries {
				q.verify(t, child)
			}
		})
	}
}

// AssertGetHas ensures Get and Has of the store agree with the expected
// value.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

func sets(ms ...Model) []op {
	res := make([]op, len(ms))
	for i, m := range ms {
		res[i] = op{key: m.Key, value: m.Value}
	}
	return res
}

func dels(keys ...[]byte) []op {
	res := make([]op, len(keys))
	for i, k := range keys {
		res[i] = op{key: k}
	}
	return res
}

func apply(t testing.TB, db SetDeleter, ops []op) {
	t.Helper()
	for _, o := range ops {
		assert.Nil(t, o.apply(db))
	}
}

// rangeQuery is an iteration over [start, end) and its expected result.
type rangeQuery struct {
	start    []byte
	end      []byte
	expected []Model
}

func (q rangeQuery) verify(t testing.TB, kv ReadOnlyKVStore) {
	t.Helper()
	iter, err := kv.Iterator(q.start, q.end)
	assert.Nil(t, err)
	defer iter.Close()

	for i, want := range q.expected {
		if !iter.Valid() {
			t.Fatalf("iterator exhausted after %d of %d elements", i, len(q.expected))
		}
		if !bytes.Equal(want.Key, iter.Key()) {
			t.Fatalf("element %d: want key %X, got %X", i, want.Key, iter.Key())
		}
		assert.Equal(t, want.Value, iter.Value())
		iter.Next()
	}
	if iter.Valid() {
		t.Fatalf("unexpected element: %X", iter.Key())
	}
}
