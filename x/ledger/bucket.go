package ledger

import (
	"math"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	amino "github.com/tendermint/go-amino"
)

var (
	cdc = amino.NewCodec()

	balancePrefix = []byte("ledger:")
)

// account is the persisted balance of an address.
type account struct {
	Amount uint64 `json:"amount"`
}

// Bucket gives access to balances kept in a KVStore.
type Bucket struct{}

// NewBucket returns a ledger accessor.
func NewBucket() Bucket {
	return Bucket{}
}

func balanceKey(a quorum.Address) []byte {
	key := make([]byte, 0, len(balancePrefix)+len(a))
	key = append(key, balancePrefix...)
	return append(key, a...)
}

// Balance returns the value held by the address. An unknown address holds
// nothing.
func (b Bucket) Balance(db quorum.ReadOnlyKVStore, a quorum.Address) (uint64, error) {
	if err := a.Validate(); err != nil {
		return 0, errors.Wrap(ErrInvalidAccount, err.Error())
	}
	raw, err := db.Get(balanceKey(a))
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return 0, nil
	}
	var acc account
	if err := cdc.UnmarshalBinaryBare(raw, &acc); err != nil {
		return 0, errors.Wrap(errors.ErrInvalidModel, err.Error())
	}
	return acc.Amount, nil
}

func (b Bucket) save(db quorum.KVStore, a quorum.Address, amount uint64) error {
	if amount == 0 {
		if err := db.Delete(balanceKey(a)); err != nil {
			return errors.Wrap(errors.ErrDatabase, err.Error())
		}
		return nil
	}
	raw, err := cdc.MarshalBinaryBare(account{Amount: amount})
	if err != nil {
		return errors.Wrap(errors.ErrInvalidModel, err.Error())
	}
	if err := db.Set(balanceKey(a), raw); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Credit adds the amount to the balance of the address. It fails if the
// balance would overflow.
func (b Bucket) Credit(db quorum.KVStore, a quorum.Address, amount uint64) error {
	balance, err := b.Balance(db, a)
	if err != nil {
		return err
	}
	if balance > math.MaxUint64-amount {
		return errors.Wrapf(errors.ErrOverflow, "credit %d to %s", amount, a)
	}
	return b.save(db, a, balance+amount)
}

// Transfer moves the amount between two accounts. If the source does not
// hold enough value, nothing is changed.
func (b Bucket) Transfer(db quorum.KVStore, from, to quorum.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "zero transfer")
	}
	src, err := b.Balance(db, from)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	if src < amount {
		return errors.Wrapf(ErrInsufficientFunds, "%s holds %d, needs %d", from, src, amount)
	}
	if from.Equals(to) {
		return nil
	}
	dst, err := b.Balance(db, to)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if dst > math.MaxUint64-amount {
		return errors.Wrapf(errors.ErrOverflow, "credit %d to %s", amount, to)
	}
	if err := b.save(db, from, src-amount); err != nil {
		return err
	}
	return b.save(db, to, dst+amount)
}
