package factory

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

const optKey = "multisig"

// GenesisInstance is used to parse the json from genesis file.
type GenesisInstance struct {
	Name      string           `json:"name"`
	Owners    []quorum.Address `json:"owners"`
	Threshold uint32           `json:"threshold"`
}

// Initializer creates the instances declared in the genesis file, in
// order. The factory must be the one used by the host afterwards, as it
// keeps the created engines.
type Initializer struct {
	Factory *Factory
}

var _ quorum.Initializer = (*Initializer)(nil)

// FromGenesis creates one instance for every declared entry.
func (i *Initializer) FromGenesis(opts quorum.Options, kv quorum.KVStore) error {
	var instances []GenesisInstance
	if err := opts.ReadOptions(optKey, &instances); err != nil {
		return err
	}
	for n, inst := range instances {
		if _, _, err := i.Factory.Create(kv, inst.Name, inst.Owners, inst.Threshold); err != nil {
			return errors.Wrapf(err, "instance %d", n)
		}
	}
	return nil
}
