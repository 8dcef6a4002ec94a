package owners

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/store"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestRegistryInvariantProperty applies random sequences of mutations and
// checks that the registry always keeps 1 <= threshold <= count, and that
// a rejected mutation leaves the state untouched.
func TestRegistryInvariantProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	pool := make([]quorum.Address, 6)
	for i := range pool {
		pool[i] = addr(fmt.Sprintf("pool-%d", i))
	}

	properties.Property("threshold never exceeds the owner count", prop.ForAll(
		func(initial int, ops []int) bool {
			r := NewRegistry()
			db := store.MemStore()
			if err := r.Init(db, pool[:initial], 1); err != nil {
				return false
			}

			for _, op := range ops {
				before, err := r.Snapshot(db)
				if err != nil {
					return false
				}

				var events quorum.EventBuffer
				target := pool[(op/4)%len(pool)]
				other := pool[(op/24)%len(pool)]
				switch op % 4 {
				case 0:
					err = r.AddOwner(db, &events, target)
				case 1:
					err = r.RemoveOwner(db, &events, target)
				case 2:
					err = r.ReplaceOwner(db, &events, target, other)
				case 3:
					err = r.ChangeThreshold(db, &events, uint32(op/4%8))
				}

				after, serr := r.Snapshot(db)
				if serr != nil {
					return false
				}
				if after.Count() < 1 || after.Threshold() < 1 || after.Threshold() > after.Count() {
					return false
				}
				if err != nil {
					if len(events.Events()) != 0 {
						return false
					}
					if !reflect.DeepEqual(before.Owners(), after.Owners()) || before.Threshold() != after.Threshold() {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, len(pool)),
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}
