package store

import (
	"bytes"

	"github.com/google/btree"
)

// ascendBtree returns a snapshot of the cached items within [start, end),
// so that writes made while iterating do not affect the iterator.
func ascendBtree(bt *btree.BTree, start, end []byte) []item {
	var items []item
	collect := func(i btree.Item) bool {
		items = append(items, i.(item))
		return true
	}

	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(item{key: end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(item{key: start}, collect)
	default:
		bt.AscendRange(item{key: start}, item{key: end}, collect)
	}
	return items
}

// side tells which side holds the lowest current key.
type side int

const (
	headNone side = iota
	headCache
	headParent
	// both sides are at the same key, the cache wins
	headBoth
)

// itemIter merges cached items with the parent iterator.
type itemIter struct {
	items  []item
	idx    int
	parent Iterator
}

var _ Iterator = (*itemIter)(nil)

func newItemIter(items []item, parent Iterator) *itemIter {
	it := &itemIter{items: items, parent: parent}
	it.skipDeleted()
	return it
}

func (it *itemIter) Valid() bool {
	return it.head() != headNone
}

func (it *itemIter) Next() {
	it.advance()
	it.skipDeleted()
}

func (it *itemIter) Key() []byte {
	switch it.head() {
	case headCache, headBoth:
		return it.items[it.idx].key
	case headParent:
		return it.parent.Key()
	default:
		panic("iterator exhausted")
	}
}

func (it *itemIter) Value() []byte {
	switch it.head() {
	case headCache, headBoth:
		return it.items[it.idx].value
	case headParent:
		return it.parent.Value()
	default:
		panic("iterator exhausted")
	}
}

func (it *itemIter) Close() {
	if it.parent != nil {
		it.parent.Close()
	}
	it.items = nil
}

func (it *itemIter) advance() {
	switch it.head() {
	case headCache:
		it.idx++
	case headParent:
		it.parent.Next()
	case headBoth:
		it.idx++
		it.parent.Next()
	default:
		panic("iterator exhausted")
	}
}

// skipDeleted moves past every deleted cache item at the head, together
// with the parent value it hides.
func (it *itemIter) skipDeleted() {
	for {
		h := it.head()
		if h != headCache && h != headBoth {
			return
		}
		if !it.items[it.idx].deleted {
			return
		}
		it.advance()
	}
}

func (it *itemIter) head() side {
	cache := it.idx < len(it.items)
	parent := it.parent != nil && it.parent.Valid()
	switch {
	case !cache && !parent:
		return headNone
	case !parent:
		return headCache
	case !cache:
		return headParent
	}
	switch cmp := bytes.Compare(it.parent.Key(), it.items[it.idx].key); {
	case cmp < 0:
		return headParent
	case cmp > 0:
		return headCache
	default:
		return headBoth
	}
}
