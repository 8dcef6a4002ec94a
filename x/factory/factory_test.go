package factory

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/quorumtest/assert"
	"github.com/iov-one/quorum/store"
	"github.com/iov-one/quorum/x/ledger"
	"github.com/iov-one/quorum/x/multisig"
	"github.com/iov-one/quorum/x/owners"
)

func TestInstanceAddress(t *testing.T) {
	a, b := InstanceAddress(0), InstanceAddress(1)
	assert.Nil(t, a.Validate())
	assert.Equal(t, false, a.Equals(b))
	assert.Equal(t, a, InstanceAddress(0))

	want := quorum.NewCondition("factory", "multisig", []byte{0, 0, 0, 0, 0, 0, 0, 1}).Address()
	assert.Equal(t, want, b)
}

func TestCreate(t *testing.T) {
	keys := quorumtest.SortedKeys(3)
	ownerAddrs := quorumtest.Addresses(keys...)

	cases := map[string]struct {
		name      string
		owners    []quorum.Address
		threshold uint32
		wantErr   *errors.Error
	}{
		"valid": {
			name:      "treasury",
			owners:    ownerAddrs,
			threshold: 2,
		},
		"single owner": {
			name:      "solo",
			owners:    ownerAddrs[:1],
			threshold: 1,
		},
		"missing name": {
			owners:    ownerAddrs,
			threshold: 2,
			wantErr:   errors.ErrEmpty,
		},
		"no owners": {
			name:      "empty",
			threshold: 1,
			wantErr:   errors.ErrEmpty,
		},
		"threshold above owners": {
			name:      "treasury",
			owners:    ownerAddrs,
			threshold: 4,
			wantErr:   owners.ErrInvalidThreshold,
		},
		"duplicated owner": {
			name:      "treasury",
			owners:    []quorum.Address{ownerAddrs[0], ownerAddrs[0]},
			threshold: 1,
			wantErr:   owners.ErrDuplicateOwner,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			f := New(multisig.NewRouter(nil))

			index, e, err := f.Create(db, tc.name, tc.owners, tc.threshold)
			assert.IsErr(t, tc.wantErr, err)

			count, cerr := f.Count(db)
			assert.Nil(t, cerr)
			if tc.wantErr != nil {
				assert.Equal(t, uint64(0), count)
				_, ok := f.Router().Contract(InstanceAddress(0))
				assert.Equal(t, false, ok)
				_, err := f.Instance(0)
				assert.IsErr(t, ErrUnknownInstance, err)
				return
			}

			assert.Equal(t, uint64(0), index)
			assert.Equal(t, uint64(1), count)
			assert.Equal(t, InstanceAddress(0), e.Address())
			assert.Equal(t, tc.name, e.Name())

			nonce, err := e.Nonce(db)
			assert.Nil(t, err)
			assert.Equal(t, uint64(0), nonce)
			threshold, err := e.Threshold(db)
			assert.Nil(t, err)
			assert.Equal(t, tc.threshold, threshold)
			got, err := e.Owners(db)
			assert.Nil(t, err)
			assert.Equal(t, tc.owners, got)

			same, err := f.Instance(index)
			assert.Nil(t, err)
			assert.Equal(t, e, same)
		})
	}
}

func TestCreateSequentialIndexes(t *testing.T) {
	db := store.MemStore()
	f := New(multisig.NewRouter(nil))
	owner := quorumtest.Addresses(quorumtest.NewKey())

	for i := uint64(0); i < 3; i++ {
		index, e, err := f.Create(db, "instance", owner, 1)
		assert.Nil(t, err)
		assert.Equal(t, i, index)
		assert.Equal(t, InstanceAddress(i), e.Address())
	}

	// a failed creation does not consume an index
	_, _, err := f.Create(db, "broken", owner, 2)
	assert.IsErr(t, owners.ErrInvalidThreshold, err)
	index, _, err := f.Create(db, "fourth", owner, 1)
	assert.Nil(t, err)
	assert.Equal(t, uint64(3), index)

	records, err := f.Records(db)
	assert.Nil(t, err)
	assert.Equal(t, 4, len(records))
	assert.Equal(t, Record{Index: 3, Name: "fourth", Address: InstanceAddress(3)}, records[3])
}

func TestLoadAfterRestart(t *testing.T) {
	commit, cleanup := quorumtest.CommitKVStore(t)
	defer cleanup()

	keys := quorumtest.SortedKeys(3)
	bank := ledger.NewBucket()

	work := commit.CacheWrap()
	f := New(multisig.NewRouter(bank))
	_, _, err := f.Create(work, "first", quorumtest.Addresses(keys...), 2)
	assert.Nil(t, err)
	_, _, err = f.Create(work, "second", quorumtest.Addresses(keys[2]), 1)
	assert.Nil(t, err)
	assert.Nil(t, bank.Credit(work, InstanceAddress(0), 100))
	assert.Nil(t, work.Write())
	_, err = commit.Commit()
	assert.Nil(t, err)

	// a new process only has the persisted directory
	restarted := New(multisig.NewRouter(bank))
	db := commit.CacheWrap()
	defer db.Discard()

	n, err := restarted.Load(db)
	assert.Nil(t, err)
	assert.Equal(t, 2, n)
	n, err = restarted.Load(db)
	assert.Nil(t, err)
	assert.Equal(t, 0, n)

	e, err := restarted.Instance(0)
	assert.Nil(t, err)
	assert.Equal(t, "first", e.Name())

	target := quorumtest.NewAddress()
	c := multisig.Call{Target: target, Value: 40}
	digest, err := e.Digest(db, multisig.SingleRequest(c))
	assert.Nil(t, err)
	receipt, err := e.ExecTransaction(context.Background(), db, c, quorumtest.Sign(digest, keys[:2]...))
	assert.Nil(t, err)
	assert.Equal(t, 0, receipt.Failures())

	balance, err := bank.Balance(db, target)
	assert.Nil(t, err)
	assert.Equal(t, uint64(40), balance)

	// the second instance can manage itself through the restarted router
	second, err := restarted.Instance(1)
	assert.Nil(t, err)
	add, err := second.AddOwnerCall(keys[0].Address())
	assert.Nil(t, err)
	digest, err = second.Digest(db, multisig.SingleRequest(add))
	assert.Nil(t, err)
	receipt, err = second.ExecTransaction(context.Background(), db, add, quorumtest.Sign(digest, keys[2]))
	assert.Nil(t, err)
	assert.Equal(t, 0, receipt.Failures())
	count, err := second.OwnerCount(db)
	assert.Nil(t, err)
	assert.Equal(t, uint32(2), count)
}

func TestEnginesPublishToFactorySink(t *testing.T) {
	db := store.MemStore()
	sink := quorum.NewEventLog()
	f := New(multisig.NewRouter(nil)).WithEventSink(sink)

	key := quorumtest.NewKey()
	_, e, err := f.Create(db, "sinking", quorumtest.Addresses(key), 1)
	assert.Nil(t, err)

	c, err := e.AddOwnerCall(quorumtest.NewAddress())
	assert.Nil(t, err)
	digest, err := e.Digest(db, multisig.SingleRequest(c))
	assert.Nil(t, err)
	_, err = e.ExecTransaction(context.Background(), db, c, quorumtest.Sign(digest, key))
	assert.Nil(t, err)
	assert.Equal(t, 2, sink.Len())
}
