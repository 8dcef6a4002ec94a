package store

import "testing"

func memBase() (CacheableKVStore, func()) {
	return MemStore(), func() {}
}

func TestBTreeStore(t *testing.T) {
	suite := NewTestSuite(memBase)

	t.Run("get and set", suite.GetSet)
	t.Run("nested discard", suite.NestedDiscard)
	t.Run("cache conflicts", suite.CacheConflicts)
	t.Run("iterator with conflicts", suite.IteratorWithConflicts)
}

func TestBTreeCacheableStore(t *testing.T) {
	suite := NewTestSuite(func() (CacheableKVStore, func()) {
		return AsCacheable(MemStore()), func() {}
	})
	t.Run("get and set", suite.GetSet)
	t.Run("nested discard", suite.NestedDiscard)
}
