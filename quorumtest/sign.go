package quorumtest

import (
	"github.com/iov-one/quorum/crypto"
)

// Sign returns the signatures of the digest by all keys, in the order of
// the keys. It panics if any key fails to sign.
func Sign(digest []byte, keys ...crypto.PrivateKey) [][]byte {
	sigs := make([][]byte, len(keys))
	for i, k := range keys {
		sig, err := k.Sign(digest)
		if err != nil {
			panic(err)
		}
		sigs[i] = sig
	}
	return sigs
}
