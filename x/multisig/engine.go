package multisig

import (
	"sync"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/store"
	"github.com/iov-one/quorum/x/owners"
	"github.com/iov-one/quorum/x/sigs"
	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/libs/log"
)

// Version identifies the execution rules implemented by this package. It
// is bound into every digest.
const Version = "1"

var (
	cdc = amino.NewCodec()

	stateKey = []byte("multisig:state")
)

// state is the persisted part of an instance that is not owned by the
// registry. Name is never empty, so neither is the encoded state.
type state struct {
	Name  string `json:"name"`
	Nonce uint64 `json:"nonce"`
}

// InstancePrefix returns the store prefix under which all state of the
// instance is kept.
func InstancePrefix(addr quorum.Address) []byte {
	prefix := make([]byte, 0, 6+len(addr)+1)
	prefix = append(prefix, "msig:"...)
	prefix = append(prefix, addr...)
	return append(prefix, ':')
}

// Engine executes quorum authorized requests of a single instance.
//
// The host store is passed to every method, as the engine owns no
// storage. The instance state is kept under InstancePrefix of its
// address. Mutating methods are serialized by the engine.
type Engine struct {
	mu sync.RWMutex

	name     string
	address  quorum.Address
	router   *Router
	registry owners.Registry
	rec      crypto.Recoverer
	sink     quorum.EventSink
	logger   log.Logger
}

var _ Contract = (*Engine)(nil)

// New returns an engine for the instance at given address and registers
// it in the router as the contract of that address.
func New(name string, address quorum.Address, router *Router) (*Engine, error) {
	if name == "" {
		return nil, errors.Field("Name", errors.ErrEmpty, "instance name required")
	}
	if err := address.Validate(); err != nil {
		return nil, errors.Field("Address", err, "instance address")
	}
	if router == nil {
		return nil, errors.Wrap(errors.ErrHuman, "router required")
	}
	e := &Engine{
		name:     name,
		address:  address.Clone(),
		router:   router,
		registry: owners.NewRegistry(),
		rec:      crypto.DefaultRecoverer(),
		logger:   quorum.DefaultLogger,
	}
	if err := router.Register(e.address, e); err != nil {
		return nil, err
	}
	return e, nil
}

// WithLogger sets the logger used for authorization and execution
// reports.
func (e *Engine) WithLogger(logger log.Logger) *Engine {
	e.logger = logger.With("module", "multisig", "instance", e.address.String())
	return e
}

// WithEventSink sets the sink receiving the events of every committed
// request.
func (e *Engine) WithEventSink(sink quorum.EventSink) *Engine {
	e.sink = sink
	return e
}

// WithRecoverer replaces the default signature recoverer.
func (e *Engine) WithRecoverer(rec crypto.Recoverer) *Engine {
	e.rec = rec
	return e
}

// local returns the instance namespace of the host store.
func (e *Engine) local(db quorum.KVStore) quorum.KVStore {
	return store.Prefix(db, InstancePrefix(e.address))
}

// Init stores the initial state of the instance: the owner registry and a
// zero nonce.
func (e *Engine) Init(db quorum.KVStore, initialOwners []quorum.Address, threshold uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	local := e.local(db)
	if err := e.registry.Init(local, initialOwners, threshold); err != nil {
		return err
	}
	return saveState(local, state{Name: e.name, Nonce: 0})
}

func loadState(db quorum.ReadOnlyKVStore) (state, error) {
	var s state
	raw, err := db.Get(stateKey)
	if err != nil {
		return s, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return s, errors.Wrap(owners.ErrNotInitialized, "instance state")
	}
	if err := cdc.UnmarshalBinaryBare(raw, &s); err != nil {
		return s, errors.Wrap(errors.ErrInvalidModel, err.Error())
	}
	return s, nil
}

func saveState(db quorum.KVStore, s state) error {
	raw, err := cdc.MarshalBinaryBare(s)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidModel, err.Error())
	}
	if err := db.Set(stateKey, raw); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Name returns the instance name.
func (e *Engine) Name() string {
	return e.name
}

// Version returns the version of the execution rules.
func (e *Engine) Version() string {
	return Version
}

// Address returns the instance address.
func (e *Engine) Address() quorum.Address {
	return e.address
}

// Identity returns the values binding a digest to this instance.
func (e *Engine) Identity() Identity {
	return Identity{Name: e.name, Version: Version, Address: e.address}
}

// Nonce returns the nonce the next request must be signed for.
func (e *Engine) Nonce(db quorum.ReadOnlyKVStore) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, err := loadState(store.PrefixReadOnly(db, InstancePrefix(e.address)))
	return s.Nonce, err
}

// Threshold returns the number of signatures required for a quorum.
func (e *Engine) Threshold(db quorum.ReadOnlyKVStore) (uint32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.Threshold(store.PrefixReadOnly(db, InstancePrefix(e.address)))
}

// OwnerCount returns the number of owners.
func (e *Engine) OwnerCount(db quorum.ReadOnlyKVStore) (uint32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.Count(store.PrefixReadOnly(db, InstancePrefix(e.address)))
}

// IsOwner returns true if the identity is an owner of the instance.
func (e *Engine) IsOwner(db quorum.ReadOnlyKVStore, a quorum.Address) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.IsOwner(store.PrefixReadOnly(db, InstancePrefix(e.address)), a)
}

// Owners returns all owners in ascending identity order.
func (e *Engine) Owners(db quorum.ReadOnlyKVStore) ([]quorum.Address, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.Owners(store.PrefixReadOnly(db, InstancePrefix(e.address)))
}

// Digest returns the digest the owners must sign to execute given
// request with the current nonce.
func (e *Engine) Digest(db quorum.ReadOnlyKVStore, req Request) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, err := loadState(store.PrefixReadOnly(db, InstancePrefix(e.address)))
	if err != nil {
		return nil, err
	}
	return Digest(e.Identity(), s.Nonce, req)
}

// CheckSignatures verifies the signatures of a request against the
// current state without consuming the nonce. It returns the signers.
func (e *Engine) CheckSignatures(db quorum.ReadOnlyKVStore, req Request, signatures [][]byte) ([]quorum.Address, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	signers, _, err := e.authorize(store.PrefixReadOnly(db, InstancePrefix(e.address)), req, signatures)
	return signers, err
}

// IsValidSignature returns true if the signatures would currently
// authorize given call.
func (e *Engine) IsValidSignature(db quorum.ReadOnlyKVStore, c Call, signatures [][]byte) bool {
	_, err := e.CheckSignatures(db, SingleRequest(c), signatures)
	return err == nil
}

// IsValidBatchSignature returns true if the signatures would currently
// authorize given batch.
func (e *Engine) IsValidBatchSignature(db quorum.ReadOnlyKVStore, calls []Call, signatures [][]byte) bool {
	_, err := e.CheckSignatures(db, BatchRequest(calls), signatures)
	return err == nil
}

// authorize verifies the request signatures at the current nonce. It
// returns the signers and the nonce consumed by the request.
func (e *Engine) authorize(local quorum.ReadOnlyKVStore, req Request, signatures [][]byte) ([]quorum.Address, uint64, error) {
	s, err := loadState(local)
	if err != nil {
		return nil, 0, err
	}
	threshold, err := e.registry.Threshold(local)
	if err != nil {
		return nil, 0, err
	}
	digest, err := Digest(e.Identity(), s.Nonce, req)
	if err != nil {
		return nil, 0, err
	}
	signers, err := sigs.VerifyQuorum(e.rec, digest, signatures, e.registry.View(local), threshold)
	if err != nil {
		return nil, 0, err
	}
	return signers, s.Nonce, nil
}
