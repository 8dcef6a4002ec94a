package multisig

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/quorumtest/assert"
	"github.com/iov-one/quorum/store"
	"github.com/iov-one/quorum/x/ledger"
	"github.com/stretchr/testify/mock"
)

type contractMock struct {
	mock.Mock
}

var _ Contract = (*contractMock)(nil)

func (m *contractMock) Invoke(ctx context.Context, db quorum.KVStore, em quorum.EventEmitter, caller quorum.Address, c Call) ([]byte, error) {
	args := m.Called(ctx, db, em, caller, c)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func TestRouterDispatch(t *testing.T) {
	bank := ledger.NewBucket()
	caller := quorumtest.NewAddress()
	target := quorumtest.NewAddress()
	plain := quorumtest.NewAddress()

	contract := &contractMock{}
	contract.On("Invoke", mock.Anything, mock.Anything, mock.Anything, caller,
		mock.MatchedBy(func(c Call) bool { return string(c.Payload) == "ping" })).
		Return([]byte("pong"), nil)
	contract.On("Invoke", mock.Anything, mock.Anything, mock.Anything, caller,
		mock.MatchedBy(func(c Call) bool { return string(c.Payload) == "fail" })).
		Return(nil, errors.ErrUnauthorized.New("no"))

	r := NewRouter(bank)
	assert.Nil(t, r.Register(target, contract))
	assert.IsErr(t, errors.ErrDuplicate, r.Register(target, contract))
	assert.IsErr(t, errors.ErrInvalidInput, r.Register(quorum.Address("x"), contract))

	cases := map[string]struct {
		call       Call
		wantData   []byte
		wantErr    *errors.Error
		wantCaller uint64
		wantTarget uint64
	}{
		"contract call": {
			call:       Call{Target: target, Payload: []byte("ping")},
			wantData:   []byte("pong"),
			wantCaller: 100,
		},
		"contract call with value": {
			call:       Call{Target: target, Value: 30, Payload: []byte("ping")},
			wantData:   []byte("pong"),
			wantCaller: 70,
			wantTarget: 30,
		},
		"contract failure": {
			call:       Call{Target: target, Payload: []byte("fail")},
			wantErr:    errors.ErrUnauthorized,
			wantCaller: 100,
		},
		"plain transfer": {
			call:       Call{Target: plain, Value: 25},
			wantCaller: 75,
			wantTarget: 25,
		},
		"payload without contract": {
			call:       Call{Target: plain, Payload: []byte("ping")},
			wantErr:    ErrNoContract,
			wantCaller: 100,
		},
		"value above balance": {
			call:       Call{Target: target, Value: 101, Payload: []byte("ping")},
			wantErr:    ledger.ErrInsufficientFunds,
			wantCaller: 100,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			assert.Nil(t, bank.Credit(db, caller, 100))

			// the caller discards the store on failure
			work := db.CacheWrap()
			var events quorum.EventBuffer
			data, err := r.Dispatch(context.Background(), work, &events, caller, tc.call)
			assert.IsErr(t, tc.wantErr, err)
			assert.Equal(t, tc.wantData, data)
			if err == nil {
				assert.Nil(t, work.Write())
			} else {
				work.Discard()
			}

			got, err := bank.Balance(db, caller)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantCaller, got)
			got, err = bank.Balance(db, tc.call.Target)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantTarget, got)
		})
	}
	contract.AssertExpectations(t)

	r.Unregister(target)
	_, ok := r.Contract(target)
	assert.Equal(t, false, ok)
	assert.Nil(t, r.Register(target, contract))
}

func TestRouterWithoutBank(t *testing.T) {
	r := NewRouter(nil)
	_, err := r.Dispatch(context.Background(), store.MemStore(), &quorum.EventBuffer{}, quorumtest.NewAddress(),
		Call{Target: quorumtest.NewAddress(), Value: 1})
	assert.IsErr(t, ErrInvalidCall, err)
}

func TestDispatchChargesGas(t *testing.T) {
	r := NewRouter(nil)
	meter := quorum.NewGasMeter(dispatchCost + 3)
	ctx := quorum.WithGasMeter(context.Background(), meter)

	_, err := r.Dispatch(ctx, store.MemStore(), &quorum.EventBuffer{}, quorumtest.NewAddress(),
		Call{Target: quorumtest.NewAddress()})
	assert.Nil(t, err)
	assert.Equal(t, int64(dispatchCost), meter.GasConsumed())

	assert.Panics(t, func() {
		_, _ = r.Dispatch(ctx, store.MemStore(), &quorum.EventBuffer{}, quorumtest.NewAddress(),
			Call{Target: quorumtest.NewAddress(), Payload: []byte("four")})
	})
}
