package quorumtest

import (
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
)

// NewKey returns a new random secp256k1 key.
func NewKey() crypto.PrivateKey {
	k, err := crypto.GenSecp256k1Key()
	if err != nil {
		panic(err)
	}
	return k
}

// NewEd25519Key returns a new random ed25519 key.
func NewEd25519Key() crypto.PrivateKey {
	k, err := crypto.GenEd25519Key()
	if err != nil {
		panic(err)
	}
	return k
}

// SeedKey returns a secp256k1 key that is derived from the seed. The same
// seed always returns the same key.
func SeedKey(seed string) crypto.PrivateKey {
	raw := sha256.Sum256([]byte(seed))
	k, err := crypto.Secp256k1KeyFromBytes(raw[:])
	if err != nil {
		panic(err)
	}
	return k
}

// SortedKeys returns n deterministic keys, ordered by the identity of the
// signer. Signing with keys in this order produces a canonical signature
// list.
func SortedKeys(n int) []crypto.PrivateKey {
	keys := make([]crypto.PrivateKey, n)
	for i := range keys {
		keys[i] = SeedKey(fmt.Sprintf("quorumtest key %d", i))
	}
	SortKeys(keys)
	return keys
}

// SortKeys orders keys in place by the identity of the signer.
func SortKeys(keys []crypto.PrivateKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Address().Compare(keys[j].Address()) < 0
	})
}

// Addresses returns the identities of all keys, in the same order.
func Addresses(keys ...crypto.PrivateKey) []quorum.Address {
	res := make([]quorum.Address, len(keys))
	for i, k := range keys {
		res[i] = k.Address()
	}
	return res
}

// NewAddress returns a random address that belongs to no known key.
func NewAddress() quorum.Address {
	return NewKey().Address()
}
