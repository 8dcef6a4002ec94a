package multisig

import (
	"context"
	"sync"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// dispatchCost is charged for every call routed to a target.
const dispatchCost = 700

// Contract is anything that can be the target of a call.
type Contract interface {
	// Invoke executes the call. The store is a cache wrap of the host
	// store that is discarded if Invoke returns an error. Events emitted
	// are published only if the call succeeds. The caller is the address
	// of the instance executing the call.
	Invoke(ctx context.Context, db quorum.KVStore, em quorum.EventEmitter, caller quorum.Address, c Call) ([]byte, error)
}

// ContractFunc is an adapter to use a plain function as a Contract.
type ContractFunc func(ctx context.Context, db quorum.KVStore, em quorum.EventEmitter, caller quorum.Address, c Call) ([]byte, error)

// Invoke calls fn.
func (fn ContractFunc) Invoke(ctx context.Context, db quorum.KVStore, em quorum.EventEmitter, caller quorum.Address, c Call) ([]byte, error) {
	return fn(ctx, db, em, caller, c)
}

// Bank moves value between accounts held in the host store.
type Bank interface {
	Transfer(db quorum.KVStore, from, to quorum.Address, amount uint64) error
}

// Router dispatches calls to contracts by target address. One router is
// shared by all instances of a host.
type Router struct {
	mu        sync.RWMutex
	contracts map[string]Contract
	bank      Bank
}

// NewRouter returns a router without any contract. Bank can be nil, in
// which case any call carrying value fails.
func NewRouter(bank Bank) *Router {
	return &Router{
		contracts: make(map[string]Contract),
		bank:      bank,
	}
}

// Register binds a contract to an address. An address can be bound only
// once.
func (r *Router) Register(addr quorum.Address, c Contract) error {
	if err := addr.Validate(); err != nil {
		return errors.Wrap(err, "contract address")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contracts[string(addr)]; ok {
		return errors.Wrapf(errors.ErrDuplicate, "contract at %s", addr)
	}
	r.contracts[string(addr)] = c
	return nil
}

// Unregister removes the contract bound to given address, if any.
func (r *Router) Unregister(addr quorum.Address) {
	r.mu.Lock()
	delete(r.contracts, string(addr))
	r.mu.Unlock()
}

// Contract returns the contract registered at given address.
func (r *Router) Contract(addr quorum.Address) (Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contracts[string(addr)]
	return c, ok
}

// Dispatch moves the call value from the caller to the target and invokes
// the target contract. A target without a contract accepts only plain
// value transfers.
func (r *Router) Dispatch(ctx context.Context, db quorum.KVStore, em quorum.EventEmitter, caller quorum.Address, c Call) ([]byte, error) {
	quorum.GetGasMeter(ctx).ConsumeGas(dispatchCost+int64(len(c.Payload)), "dispatch")

	if c.Value > 0 {
		if r.bank == nil {
			return nil, errors.Wrap(ErrInvalidCall, "value transfer not supported")
		}
		if err := r.bank.Transfer(db, caller, c.Target, c.Value); err != nil {
			return nil, errors.Wrap(err, "value transfer")
		}
	}

	contract, ok := r.Contract(c.Target)
	if !ok {
		if len(c.Payload) != 0 {
			return nil, errors.Wrapf(ErrNoContract, "%s", c.Target)
		}
		return nil, nil
	}
	return contract.Invoke(ctx, db, em, caller, c)
}
