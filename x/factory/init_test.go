package factory

import (
	"encoding/json"
	"fmt"
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

func TestGenesis(t *testing.T) {
	a, b, c := quorumtest.NewAddress(), quorumtest.NewAddress(), quorumtest.NewAddress()
	raw := fmt.Sprintf(`{
		"multisig": [
			{"name": "treasury", "owners": ["%s", "%s", "%s"], "threshold": 2},
			{"name": "ops", "owners": ["%s"], "threshold": 1}
		],
		"ledger": [
			{"address": "%s", "amount": 1000}
		]
	}`, a, b, c, a, InstanceAddress(0))
	var opts quorum.Options
	assert.Nil(t, json.Unmarshal([]byte(raw), &opts))

	db := store.MemStore()
	f := New(multisig.NewRouter(ledger.NewBucket()))
	inits := quorum.ChainInitializers{&Initializer{Factory: f}, ledger.Initializer{}}
	assert.Nil(t, inits.FromGenesis(opts, db))

	count, err := f.Count(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(2), count)

	treasury, err := f.Instance(0)
	assert.Nil(t, err)
	assert.Equal(t, "treasury", treasury.Name())
	n, err := treasury.OwnerCount(db)
	assert.Nil(t, err)
	assert.Equal(t, uint32(3), n)

	ops, err := f.Instance(1)
	assert.Nil(t, err)
	ok, err := ops.IsOwner(db, a)
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	balance, err := ledger.NewBucket().Balance(db, treasury.Address())
	assert.Nil(t, err)
	assert.Equal(t, uint64(1000), balance)
}

func TestGenesisInvalid(t *testing.T) {
	a := quorumtest.NewAddress()
	cases := map[string]struct {
		raw     string
		wantErr *errors.Error
	}{
		"not a list": {
			raw:     `{"name": "x"}`,
			wantErr: errors.ErrInvalidInput,
		},
		"threshold above owners": {
			raw:     fmt.Sprintf(`[{"name": "x", "owners": ["%s"], "threshold": 2}]`, a),
			wantErr: owners.ErrInvalidThreshold,
		},
		"missing name": {
			raw:     fmt.Sprintf(`[{"owners": ["%s"], "threshold": 1}]`, a),
			wantErr: errors.ErrEmpty,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			opts := quorum.Options{"multisig": []byte(tc.raw)}
			initializer := &Initializer{Factory: New(multisig.NewRouter(nil))}
			err := initializer.FromGenesis(opts, store.MemStore())
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}

func TestGenesisMissingKey(t *testing.T) {
	f := New(multisig.NewRouter(nil))
	db := store.MemStore()
	initializer := &Initializer{Factory: f}
	assert.Nil(t, initializer.FromGenesis(quorum.Options{}, db))
	count, err := f.Count(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), count)
}
