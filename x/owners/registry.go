package owners

import (
	"fmt"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/store"
	amino "github.com/tendermint/go-amino"
)

// MaxOwners is the maximum number of owners a registry can hold.
const MaxOwners = 65535

var (
	metaKey     = []byte("owners:meta")
	ownerPrefix = []byte("owner/")
	// any non empty value marks a membership
	present = []byte{1}
)

var cdc = amino.NewCodec()

// meta is the persisted summary of a registry.
type meta struct {
	Count     uint32 `json:"count"`
	Threshold uint32 `json:"threshold"`
}

// Registry gives access to an owner registry kept in a KVStore. The store
// is expected to be namespaced for a single instance.
type Registry struct{}

// NewRegistry returns a registry accessor.
func NewRegistry() Registry {
	return Registry{}
}

func ownerKey(a quorum.Address) []byte {
	key := make([]byte, 0, len(ownerPrefix)+len(a))
	key = append(key, ownerPrefix...)
	return append(key, a...)
}

// ValidateIdentity returns ErrInvalidIdentity when the address can never
// be an owner.
func ValidateIdentity(a quorum.Address) error {
	if a.IsZero() {
		return errors.Wrap(ErrInvalidIdentity, "zero identity")
	}
	if err := a.Validate(); err != nil {
		return errors.Wrap(ErrInvalidIdentity, err.Error())
	}
	return nil
}

// Init stores the initial state of a registry. The complete state is
// validated before anything is written.
func (r Registry) Init(db quorum.KVStore, owners []quorum.Address, threshold uint32) error {
	if ok, err := db.Has(metaKey); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	} else if ok {
		return errors.Wrap(errors.ErrDuplicate, "registry already initialized")
	}

	var errs error
	switch n := len(owners); {
	case n == 0:
		errs = errors.AppendField(errs, "Owners", errors.Wrap(errors.ErrEmpty, "at least one owner required"))
	case n > MaxOwners:
		errs = errors.AppendField(errs, "Owners", errors.Wrapf(ErrRegistryFull, "%d owners", n))
	}
	seen := make(map[string]struct{}, len(owners))
	for i, o := range owners {
		field := fmt.Sprintf("Owners.%d", i)
		if err := ValidateIdentity(o); err != nil {
			errs = errors.AppendField(errs, field, err)
			continue
		}
		if _, ok := seen[string(o)]; ok {
			errs = errors.AppendField(errs, field, errors.Wrapf(ErrDuplicateOwner, "%s", o))
			continue
		}
		seen[string(o)] = struct{}{}
	}
	if threshold == 0 || int(threshold) > len(owners) {
		errs = errors.AppendField(errs, "Threshold", errors.Wrapf(ErrInvalidThreshold, "%d of %d", threshold, len(owners)))
	}
	if errs != nil {
		return errs
	}

	for _, o := range owners {
		if err := db.Set(ownerKey(o), present); err != nil {
			return errors.Wrap(errors.ErrDatabase, err.Error())
		}
	}
	return r.save(db, meta{Count: uint32(len(owners)), Threshold: threshold})
}

func (r Registry) load(db quorum.ReadOnlyKVStore) (meta, error) {
	var m meta
	raw, err := db.Get(metaKey)
	if err != nil {
		return m, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return m, ErrNotInitialized
	}
	if err := cdc.UnmarshalBinaryBare(raw, &m); err != nil {
		return m, errors.Wrap(errors.ErrInvalidModel, err.Error())
	}
	return m, nil
}

func (r Registry) save(db quorum.KVStore, m meta) error {
	raw, err := cdc.MarshalBinaryBare(m)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidModel, err.Error())
	}
	if err := db.Set(metaKey, raw); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// IsOwner is a pure membership test.
func (r Registry) IsOwner(db quorum.ReadOnlyKVStore, a quorum.Address) (bool, error) {
	if len(a) == 0 {
		return false, nil
	}
	ok, err := db.Has(ownerKey(a))
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return ok, nil
}

// Count returns the number of owners.
func (r Registry) Count(db quorum.ReadOnlyKVStore) (uint32, error) {
	m, err := r.load(db)
	return m.Count, err
}

// Threshold returns the number of signatures required for a quorum.
func (r Registry) Threshold(db quorum.ReadOnlyKVStore) (uint32, error) {
	m, err := r.load(db)
	return m.Threshold, err
}

// Owners returns all owners in ascending identity order.
func (r Registry) Owners(db quorum.ReadOnlyKVStore) ([]quorum.Address, error) {
	iter, err := db.Iterator(ownerPrefix, store.PrefixEnd(ownerPrefix))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	defer iter.Close()

	var res []quorum.Address
	for ; iter.Valid(); iter.Next() {
		addr := quorum.Address(iter.Key()[len(ownerPrefix):])
		res = append(res, addr.Clone())
	}
	return res, nil
}

// View returns the registry membership as seen through the store.
func (r Registry) View(db quorum.ReadOnlyKVStore) View {
	return View{db: db, r: r}
}

// View is a read only membership view backed by a store.
type View struct {
	db quorum.ReadOnlyKVStore
	r  Registry
}

// IsOwner returns true if the identity is a registered owner.
func (v View) IsOwner(a quorum.Address) (bool, error) {
	return v.r.IsOwner(v.db, a)
}

// Snapshot returns an immutable copy of the registry state.
func (r Registry) Snapshot(db quorum.ReadOnlyKVStore) (*Snapshot, error) {
	m, err := r.load(db)
	if err != nil {
		return nil, err
	}
	owners, err := r.Owners(db)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(owners, m.Threshold), nil
}

// AddOwner inserts a new owner and emits OwnerAdded.
func (r Registry) AddOwner(db quorum.KVStore, em quorum.EventEmitter, a quorum.Address) error {
	if err := ValidateIdentity(a); err != nil {
		return err
	}
	m, err := r.load(db)
	if err != nil {
		return err
	}
	if ok, err := r.IsOwner(db, a); err != nil {
		return err
	} else if ok {
		return errors.Wrapf(ErrDuplicateOwner, "%s", a)
	}
	if m.Count >= MaxOwners {
		return errors.Wrapf(ErrRegistryFull, "%d owners", m.Count)
	}

	if err := db.Set(ownerKey(a), present); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	m.Count++
	if err := r.save(db, m); err != nil {
		return err
	}
	em.Emit(quorum.OwnerAdded{Owner: a.Clone()})
	return nil
}

// RemoveOwner deletes an owner and emits OwnerRemoved. Removal is rejected
// if the remaining owners cannot reach the threshold.
func (r Registry) RemoveOwner(db quorum.KVStore, em quorum.EventEmitter, a quorum.Address) error {
	m, err := r.load(db)
	if err != nil {
		return err
	}
	if ok, err := r.IsOwner(db, a); err != nil {
		return err
	} else if !ok {
		return errors.Wrapf(ErrNotAnOwner, "%s", a)
	}
	if m.Count-1 < m.Threshold {
		return errors.Wrapf(ErrThresholdViolation, "%d owners would remain for threshold %d", m.Count-1, m.Threshold)
	}

	if err := db.Delete(ownerKey(a)); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	m.Count--
	if err := r.save(db, m); err != nil {
		return err
	}
	em.Emit(quorum.OwnerRemoved{Owner: a.Clone()})
	return nil
}

// ReplaceOwner atomically swaps an owner for a new identity. OwnerRemoved
// is emitted before OwnerAdded.
func (r Registry) ReplaceOwner(db quorum.KVStore, em quorum.EventEmitter, old, new quorum.Address) error {
	if _, err := r.load(db); err != nil {
		return err
	}
	if ok, err := r.IsOwner(db, old); err != nil {
		return err
	} else if !ok {
		return errors.Wrapf(ErrNotAnOwner, "%s", old)
	}
	if err := ValidateIdentity(new); err != nil {
		return err
	}
	if ok, err := r.IsOwner(db, new); err != nil {
		return err
	} else if ok {
		return errors.Wrapf(ErrDuplicateOwner, "%s", new)
	}

	if err := db.Delete(ownerKey(old)); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if err := db.Set(ownerKey(new), present); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	em.Emit(quorum.OwnerRemoved{Owner: old.Clone()})
	em.Emit(quorum.OwnerAdded{Owner: new.Clone()})
	return nil
}

// ChangeThreshold updates the number of required signatures and emits
// ThresholdChanged.
func (r Registry) ChangeThreshold(db quorum.KVStore, em quorum.EventEmitter, threshold uint32) error {
	m, err := r.load(db)
	if err != nil {
		return err
	}
	if threshold == 0 || threshold > m.Count {
		return errors.Wrapf(ErrInvalidThreshold, "%d of %d", threshold, m.Count)
	}
	m.Threshold = threshold
	if err := r.save(db, m); err != nil {
		return err
	}
	em.Emit(quorum.ThresholdChanged{Threshold: threshold})
	return nil
}
