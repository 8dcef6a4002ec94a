package multisig

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x/sigs"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestEngineProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("a consumed signature set is never accepted again", prop.ForAll(
		func(payload []byte, value uint64) bool {
			f := newFixture(t)
			ctx := context.Background()
			c := Call{Target: quorum.NewAddress(payload), Value: value % 2, Payload: payload}
			signatures := f.sign(t, SingleRequest(c), f.keys[:2]...)
			if _, err := f.engine.ExecTransaction(ctx, f.db, c, signatures); err != nil {
				return false
			}
			_, err := f.engine.ExecTransaction(ctx, f.db, c, signatures)
			return sigs.ErrInvalidOwner.Is(err) && f.nonce(t) == 1
		},
		gen.SliceOf(gen.UInt8()),
		gen.UInt64(),
	))

	properties.Property("a batch advances the nonce once and reports every element", prop.ForAll(
		func(fails []bool) bool {
			f := newFixture(t)
			calls := make([]Call, len(fails))
			for i, fail := range fails {
				calls[i] = Call{Target: quorum.NewAddress([]byte{byte(i)})}
				if fail {
					// no contract at target accepts a payload
					calls[i].Payload = []byte{1}
				}
			}
			req := BatchRequest(calls)
			receipt, err := f.engine.Execute(context.Background(), f.db, req, f.sign(t, req, f.keys[:2]...))
			if err != nil || f.nonce(t) != 1 || len(receipt.Events) != len(fails) {
				return false
			}
			for i, fail := range fails {
				_, failed := receipt.Events[i].(quorum.TransactionFailed)
				if failed != fail || receipt.Outcomes[i].Failed() != fail {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(5, gen.Bool()),
	))

	properties.TestingRun(t)
}
