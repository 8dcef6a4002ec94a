package store

import "github.com/iov-one/quorum/errors"

// prefixReader is a read only view of a store where all keys are
// transparently namespaced with a prefix.
type prefixReader struct {
	prefix []byte
	kv     ReadOnlyKVStore
}

var _ ReadOnlyKVStore = prefixReader{}

// PrefixReadOnly works like Prefix for stores that are only queried.
func PrefixReadOnly(kv ReadOnlyKVStore, prefix []byte) ReadOnlyKVStore {
	return newPrefixReader(kv, prefix)
}

func newPrefixReader(kv ReadOnlyKVStore, prefix []byte) prefixReader {
	p := make([]byte, len(prefix))
	copy(p, prefix)
	return prefixReader{prefix: p, kv: kv}
}

func (p prefixReader) key(k []byte) []byte {
	if k == nil {
		panic("nil key")
	}
	res := make([]byte, 0, len(p.prefix)+len(k))
	res = append(res, p.prefix...)
	return append(res, k...)
}

func (p prefixReader) Get(key []byte) ([]byte, error) {
	return p.kv.Get(p.key(key))
}

func (p prefixReader) Has(key []byte) (bool, error) {
	return p.kv.Has(p.key(key))
}

// Iterator returns keys with the prefix removed.
func (p prefixReader) Iterator(start, end []byte) (Iterator, error) {
	var s, e []byte
	if start == nil {
		s = p.prefix
	} else {
		s = p.key(start)
	}
	if end == nil {
		e = PrefixEnd(p.prefix)
	} else {
		e = p.key(end)
	}
	iter, err := p.kv.Iterator(s, e)
	if err != nil {
		return nil, errors.Wrap(err, "prefix iterator")
	}
	return &prefixIterator{Iterator: iter, strip: len(p.prefix)}, nil
}

// prefixStore is a view of a KVStore where all keys are transparently
// namespaced with a prefix. Every engine instance keeps its registry and
// nonce in its own namespace of the host store.
type prefixStore struct {
	prefixReader
	kv KVStore
}

var _ KVStore = prefixStore{}

// Prefix returns a view of the store limited to keys starting with the
// given prefix. Keys passed to and returned from the view do not contain
// the prefix.
func Prefix(kv KVStore, prefix []byte) KVStore {
	return prefixStore{prefixReader: newPrefixReader(kv, prefix), kv: kv}
}

func (p prefixStore) Set(key, value []byte) error {
	return p.kv.Set(p.key(key), value)
}

func (p prefixStore) Delete(key []byte) error {
	return p.kv.Delete(p.key(key))
}

func (p prefixStore) NewBatch() Batch {
	return prefixBatch{prefixStore: p, batch: p.kv.NewBatch()}
}

type prefixBatch struct {
	prefixStore
	batch Batch
}

func (b prefixBatch) Set(key, value []byte) error {
	return b.batch.Set(b.key(key), value)
}

func (b prefixBatch) Delete(key []byte) error {
	return b.batch.Delete(b.key(key))
}

func (b prefixBatch) Write() error {
	return b.batch.Write()
}

type prefixIterator struct {
	Iterator
	strip int
}

func (i *prefixIterator) Key() []byte {
	return i.Iterator.Key()[i.strip:]
}

// PrefixEnd returns the smallest key that is greater than all keys with
// the given prefix, or nil if there is no such key.
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
