package store

// sliceIterator walks over models already loaded in key order.
type sliceIterator struct {
	models []Model
	pos    int
}

// NewSliceIterator returns an iterator over models sorted by key.
func NewSliceIterator(models []Model) Iterator {
	return &sliceIterator{models: models}
}

func (it *sliceIterator) Valid() bool {
	return it.pos < len(it.models)
}

func (it *sliceIterator) Next() {
	it.current()
	it.pos++
}

func (it *sliceIterator) Key() []byte {
	return it.current().Key
}

func (it *sliceIterator) Value() []byte {
	return it.current().Value
}

func (it *sliceIterator) Close() {
	it.models = nil
}

func (it *sliceIterator) current() Model {
	if !it.Valid() {
		panic("iterator exhausted")
	}
	return it.models[it.pos]
}

// emptyStore is the bottom layer of a MemStore. It holds nothing and
// ignores all writes.
type emptyStore struct{}

var _ KVStore = emptyStore{}

func (emptyStore) Get([]byte) ([]byte, error)              { return nil, nil }
func (emptyStore) Has([]byte) (bool, error)                { return false, nil }
func (emptyStore) Set(_, _ []byte) error                   { return nil }
func (emptyStore) Delete([]byte) error                     { return nil }
func (emptyStore) Iterator(_, _ []byte) (Iterator, error) { return NewSliceIterator(nil), nil }
func (s emptyStore) NewBatch() Batch                       { return NewMemBatch(s) }

// op is a single pending write. A nil value deletes the key.
type op struct {
	key   []byte
	value []byte
}

func (o op) apply(out SetDeleter) error {
	if o.value == nil {
		return out.Delete(o.key)
	}
	return out.Set(o.key, o.value)
}

// MemBatch records writes in memory and replays them in order on Write.
// A failing Write leaves the target partially updated, so a MemBatch only
// suits targets that cannot fail halfway, like in memory trees.
type MemBatch struct {
	out SetDeleter
	ops []op
}

var _ Batch = (*MemBatch)(nil)

// NewMemBatch returns an empty batch writing to out.
func NewMemBatch(out SetDeleter) *MemBatch {
	return &MemBatch{out: out}
}

// Set records a write. A nil value is stored as an empty one.
func (b *MemBatch) Set(key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	b.ops = append(b.ops, op{key: key, value: value})
	return nil
}

// Delete records a removal.
func (b *MemBatch) Delete(key []byte) error {
	b.ops = append(b.ops, op{key: key})
	return nil
}

// Write replays all recorded operations and empties the batch.
func (b *MemBatch) Write() error {
	for _, o := range b.ops {
		if err := o.apply(b.out); err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}

// Reset drops all recorded operations.
func (b *MemBatch) Reset() {
	b.ops = nil
}
