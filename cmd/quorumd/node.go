package main

import (
	"context"
	"os"
	"sync"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/store/iavl"
	"github.com/iov-one/quorum/x/factory"
	"github.com/iov-one/quorum/x/ledger"
	"github.com/iov-one/quorum/x/multisig"
	"github.com/tendermint/tendermint/libs/log"
)

// node hosts all instances kept in a persistent state directory.
type node struct {
	mu      sync.RWMutex
	commit  *iavl.CommitStore
	bank    ledger.Bucket
	factory *factory.Factory
	// pending holds the events of the update in progress until its
	// commit, so that events holds only committed events.
	pending *quorum.PendingEvents
	events  *quorum.EventLog
	logger  log.Logger
}

// openNode loads the latest committed state found in home and rebuilds
// the engines of all instances.
func openNode(home string, logger log.Logger) (*node, error) {
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	commit, err := iavl.NewCommitStore(home, "quorum")
	if err != nil {
		return nil, err
	}
	if err := commit.LoadLatestVersion(); err != nil {
		commit.Close()
		return nil, err
	}

	bank := ledger.NewBucket()
	pending := quorum.NewPendingEvents()
	n := &node{
		commit: commit,
		bank:   bank,
		factory: factory.New(multisig.NewRouter(bank)).
			WithLogger(logger).
			WithEventSink(pending),
		pending: pending,
		events:  quorum.NewEventLog(),
		logger:  logger,
	}

	view := commit.CacheWrap()
	defer view.Discard()
	if _, err := n.factory.Load(view); err != nil {
		commit.Close()
		return nil, errors.Wrap(err, "load instances")
	}
	return n, nil
}

func (n *node) Close() {
	n.commit.Close()
}

// read gives access to the latest state. Nothing written by fn is kept.
func (n *node) read(fn func(db quorum.KVStore) error) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	view := n.commit.CacheWrap()
	defer view.Discard()
	return fn(view)
}

// update commits everything written by fn as a new version, unless fn
// fails. Events published during fn reach the event log only once the
// version is committed.
func (n *node) update(ctx context.Context, fn func(ctx context.Context, db quorum.KVStore) error) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	defer n.pending.Reset()

	latest, err := n.commit.LatestVersion()
	if err != nil {
		return 0, err
	}
	height := latest.Version + 1

	work := n.commit.CacheWrap()
	defer work.Discard()
	if err := fn(quorum.WithHeight(ctx, height), work); err != nil {
		return 0, err
	}
	if err := work.Write(); err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	id, err := n.commit.Commit()
	if err != nil {
		return 0, err
	}
	n.logger.Debug("state committed", "height", id.Version)
	n.pending.Flush(quorum.WithHeight(ctx, id.Version), n.events)
	return id.Version, nil
}

// instanceInfo is the public description of an instance.
type instanceInfo struct {
	Index      uint64           `json:"index"`
	Name       string           `json:"name"`
	Version    string           `json:"version"`
	Address    quorum.Address   `json:"address"`
	Nonce      uint64           `json:"nonce"`
	Threshold  uint32           `json:"threshold"`
	OwnerCount uint32           `json:"owner_count"`
	Owners     []quorum.Address `json:"owners"`
	Balance    uint64           `json:"balance"`
}

func (n *node) describe(db quorum.ReadOnlyKVStore, index uint64) (*instanceInfo, error) {
	e, err := n.factory.Instance(index)
	if err != nil {
		return nil, err
	}
	info := instanceInfo{
		Index:   index,
		Name:    e.Name(),
		Version: e.Version(),
		Address: e.Address(),
	}
	if info.Nonce, err = e.Nonce(db); err != nil {
		return nil, err
	}
	if info.Threshold, err = e.Threshold(db); err != nil {
		return nil, err
	}
	if info.OwnerCount, err = e.OwnerCount(db); err != nil {
		return nil, err
	}
	if info.Owners, err = e.Owners(db); err != nil {
		return nil, err
	}
	if info.Balance, err = n.bank.Balance(db, e.Address()); err != nil {
		return nil, err
	}
	return &info, nil
}

// receiptView is the transport form of a receipt.
type receiptView struct {
	*multisig.Receipt
	Height int64               `json:"height"`
	Events []quorum.NamedEvent `json:"events"`
}

// submit executes an authorized request and commits its effects.
func (n *node) submit(ctx context.Context, env *envelope) (*receiptView, error) {
	e, err := n.factory.Instance(env.Instance)
	if err != nil {
		return nil, err
	}
	var receipt *multisig.Receipt
	height, err := n.update(ctx, func(ctx context.Context, db quorum.KVStore) error {
		var err error
		receipt, err = e.Execute(ctx, db, env.Request, env.Signatures)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &receiptView{
		Receipt: receipt,
		Height:  height,
		Events:  receipt.NamedEvents(),
	}, nil
}

// validation reports whether the signatures of a request authorize it.
type validation struct {
	Valid   bool             `json:"valid"`
	Signers []quorum.Address `json:"signers,omitempty"`
	Code    uint32           `json:"code,omitempty"`
	Log     string           `json:"log,omitempty"`
}

func (n *node) validate(db quorum.ReadOnlyKVStore, env *envelope) (*validation, error) {
	e, err := n.factory.Instance(env.Instance)
	if err != nil {
		return nil, err
	}
	err = env.Request.Validate()
	if err == nil {
		var signers []quorum.Address
		signers, err = e.CheckSignatures(db, env.Request, env.Signatures)
		if err == nil {
			return &validation{Valid: true, Signers: signers}, nil
		}
	}
	code, reason := errors.Info(err, false)
	return &validation{Code: code, Log: reason}, nil
}
