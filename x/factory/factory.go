package factory

import (
	"encoding/binary"
	"sync"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/store"
	"github.com/iov-one/quorum/x/multisig"
	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	cdc = amino.NewCodec()

	directoryKey = []byte("factory:directory")
	recordPrefix = []byte("factory:instance:")
)

// directory is the persisted summary of all created instances.
type directory struct {
	Count uint64 `json:"count"`
}

// Record describes a created instance.
type Record struct {
	Index   uint64         `json:"index"`
	Name    string         `json:"name"`
	Address quorum.Address `json:"address"`
}

// InstanceAddress returns the address of the instance with given index.
func InstanceAddress(index uint64) quorum.Address {
	return quorum.NewCondition("factory", "multisig", indexBytes(index)).Address()
}

func indexBytes(index uint64) []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, index)
	return raw
}

func recordKey(index uint64) []byte {
	return append(append([]byte{}, recordPrefix...), indexBytes(index)...)
}

// Factory creates instances that share a single router. Engines of all
// created or loaded instances are kept in memory.
type Factory struct {
	mu      sync.RWMutex
	router  *multisig.Router
	engines map[uint64]*multisig.Engine

	sink   quorum.EventSink
	logger log.Logger
}

// New returns a factory creating instances in given router.
func New(router *multisig.Router) *Factory {
	return &Factory{
		router:  router,
		engines: make(map[uint64]*multisig.Engine),
		logger:  quorum.DefaultLogger,
	}
}

// WithLogger sets the logger of the factory and of every engine it
// creates or loads afterwards.
func (f *Factory) WithLogger(logger log.Logger) *Factory {
	f.logger = logger
	return f
}

// WithEventSink sets the event sink of every engine created or loaded
// afterwards.
func (f *Factory) WithEventSink(sink quorum.EventSink) *Factory {
	f.sink = sink
	return f
}

// Router returns the router shared by all instances.
func (f *Factory) Router() *multisig.Router {
	return f.router
}

func (f *Factory) engine(name string, address quorum.Address) (*multisig.Engine, error) {
	e, err := multisig.New(name, address, f.router)
	if err != nil {
		return nil, err
	}
	e.WithLogger(f.logger)
	if f.sink != nil {
		e.WithEventSink(f.sink)
	}
	return e, nil
}

// Create initializes a new instance with given owners and threshold. The
// whole initial state is validated before anything is written.
func (f *Factory) Create(db quorum.KVStore, name string, owners []quorum.Address, threshold uint32) (uint64, *multisig.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, err := loadDirectory(db)
	if err != nil {
		return 0, nil, err
	}
	index := d.Count
	address := InstanceAddress(index)

	e, err := f.engine(name, address)
	if err != nil {
		return 0, nil, err
	}

	work := store.AsCacheable(db).CacheWrap()
	defer work.Discard()
	if err := e.Init(work, owners, threshold); err != nil {
		f.router.Unregister(address)
		return 0, nil, err
	}
	rec := Record{Index: index, Name: name, Address: address}
	if err := save(work, recordKey(index), rec); err != nil {
		f.router.Unregister(address)
		return 0, nil, err
	}
	if err := save(work, directoryKey, directory{Count: index + 1}); err != nil {
		f.router.Unregister(address)
		return 0, nil, err
	}
	if err := work.Write(); err != nil {
		f.router.Unregister(address)
		return 0, nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}

	f.engines[index] = e
	f.logger.Info("instance created",
		"module", "factory",
		"index", index,
		"name", name,
		"address", address.String(),
		"owners", len(owners),
		"threshold", threshold)
	return index, e, nil
}

// Load builds the engines of all instances found in the directory that
// are not yet in memory. It returns the number of engines built.
func (f *Factory) Load(db quorum.ReadOnlyKVStore) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, err := loadDirectory(db)
	if err != nil {
		return 0, err
	}
	var loaded int
	for i := uint64(0); i < d.Count; i++ {
		if _, ok := f.engines[i]; ok {
			continue
		}
		rec, err := loadRecord(db, i)
		if err != nil {
			return loaded, err
		}
		if !rec.Address.Equals(InstanceAddress(i)) {
			return loaded, errors.Wrapf(errors.ErrInvalidModel, "instance %d address %s", i, rec.Address)
		}
		e, err := f.engine(rec.Name, rec.Address)
		if err != nil {
			return loaded, errors.Wrapf(err, "instance %d", i)
		}
		f.engines[i] = e
		loaded++
	}
	if loaded > 0 {
		f.logger.Info("instances loaded", "module", "factory", "count", loaded)
	}
	return loaded, nil
}

// Instance returns the engine of the instance with given index.
func (f *Factory) Instance(index uint64) (*multisig.Engine, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.engines[index]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownInstance, "index %d", index)
	}
	return e, nil
}

// Count returns the number of instances created in the host store.
func (f *Factory) Count(db quorum.ReadOnlyKVStore) (uint64, error) {
	d, err := loadDirectory(db)
	return d.Count, err
}

// Records returns all directory records ordered by index.
func (f *Factory) Records(db quorum.ReadOnlyKVStore) ([]Record, error) {
	d, err := loadDirectory(db)
	if err != nil {
		return nil, err
	}
	res := make([]Record, 0, d.Count)
	for i := uint64(0); i < d.Count; i++ {
		rec, err := loadRecord(db, i)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, nil
}

func loadDirectory(db quorum.ReadOnlyKVStore) (directory, error) {
	var d directory
	err := load(db, directoryKey, &d)
	if errors.ErrNotFound.Is(err) {
		return directory{}, nil
	}
	return d, err
}

func loadRecord(db quorum.ReadOnlyKVStore, index uint64) (Record, error) {
	var rec Record
	if err := load(db, recordKey(index), &rec); err != nil {
		if errors.ErrNotFound.Is(err) {
			return rec, errors.Wrapf(ErrUnknownInstance, "index %d", index)
		}
		return rec, err
	}
	return rec, nil
}

func load(db quorum.ReadOnlyKVStore, key []byte, dest interface{}) error {
	raw, err := db.Get(key)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return errors.ErrNotFound
	}
	if err := cdc.UnmarshalBinaryBare(raw, dest); err != nil {
		return errors.Wrap(errors.ErrInvalidModel, err.Error())
	}
	return nil
}

func save(db quorum.KVStore, key []byte, src interface{}) error {
	raw, err := cdc.MarshalBinaryBare(src)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidModel, err.Error())
	}
	if err := db.Set(key, raw); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}
