package sigs

import (
	"testing"

	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/x/owners"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestVerifyQuorumProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	keys := quorumtest.SortedKeys(8)
	digest := crypto.Keccak256([]byte("property"))
	// signatures are expensive, compute them once
	all := quorumtest.Sign(digest, keys...)
	rec := crypto.DefaultRecoverer()

	registry := func(n int, threshold uint32) *owners.Snapshot {
		return owners.NewSnapshot(quorumtest.Addresses(keys[:n]...), threshold)
	}

	properties.Property("fewer signatures than threshold are rejected", prop.ForAll(
		func(n int, threshold uint32, signed int) bool {
			if threshold > uint32(n) {
				threshold = uint32(n)
			}
			signed = signed % int(threshold)
			_, err := VerifyQuorum(rec, digest, all[:signed], registry(n, threshold), threshold)
			return ErrThresholdNotAchieved.Is(err)
		},
		gen.IntRange(1, 8),
		gen.UInt32Range(1, 8),
		gen.IntRange(0, 7),
	))

	properties.Property("threshold or more ordered owners are accepted", prop.ForAll(
		func(n int, threshold uint32, extra int) bool {
			if threshold > uint32(n) {
				threshold = uint32(n)
			}
			signed := int(threshold) + extra%(n-int(threshold)+1)
			signers, err := VerifyQuorum(rec, digest, all[:signed], registry(n, threshold), threshold)
			return err == nil && len(signers) == signed
		},
		gen.IntRange(1, 8),
		gen.UInt32Range(1, 8),
		gen.IntRange(0, 7),
	))

	properties.Property("a repeated signer is always rejected", prop.ForAll(
		func(n int, pos int) bool {
			pos = pos % n
			sigs := make([][]byte, 0, n+1)
			sigs = append(sigs, all[:pos+1]...)
			sigs = append(sigs, all[pos])
			sigs = append(sigs, all[pos+1:n]...)
			_, err := VerifyQuorum(rec, digest, sigs, registry(n, 1), 1)
			return ErrOwnerAlreadySigned.Is(err)
		},
		gen.IntRange(1, 8),
		gen.IntRange(0, 7),
	))

	properties.TestingRun(t)
}
