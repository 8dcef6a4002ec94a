package sigs

import (
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/quorumtest/assert"
	"github.com/iov-one/quorum/x/owners"
)

func TestVerifyQuorum(t *testing.T) {
	// keys are sorted by identity: A < B < C
	keys := quorumtest.SortedKeys(4)
	a, b, c, outsider := keys[0], keys[1], keys[2], keys[3]
	registry := owners.NewSnapshot(quorumtest.Addresses(a, b, c), 2)
	digest := crypto.Keccak256([]byte("action"))
	other := crypto.Keccak256([]byte("another action"))
	edKey := quorumtest.NewEd25519Key()

	cases := map[string]struct {
		sigs        [][]byte
		members     Membership
		threshold   uint32
		wantErr     *errors.Error
		wantSigners []quorum.Address
	}{
		"single signature below threshold": {
			sigs:      quorumtest.Sign(digest, a),
			threshold: 2,
			wantErr:   ErrThresholdNotAchieved,
		},
		"no signatures": {
			sigs:      nil,
			threshold: 2,
			wantErr:   ErrThresholdNotAchieved,
		},
		"exactly threshold": {
			sigs:        quorumtest.Sign(digest, a, b),
			threshold:   2,
			wantSigners: quorumtest.Addresses(a, b),
		},
		"threshold with a gap": {
			sigs:        quorumtest.Sign(digest, a, c),
			threshold:   2,
			wantSigners: quorumtest.Addresses(a, c),
		},
		"all owners": {
			sigs:        quorumtest.Sign(digest, a, b, c),
			threshold:   2,
			wantSigners: quorumtest.Addresses(a, b, c),
		},
		"wrong order": {
			sigs:      quorumtest.Sign(digest, c, b, a),
			threshold: 2,
			wantErr:   ErrOwnerAlreadySigned,
		},
		"same owner three times": {
			sigs:      quorumtest.Sign(digest, a, a, a),
			threshold: 2,
			wantErr:   ErrOwnerAlreadySigned,
		},
		"non owner": {
			sigs:      quorumtest.Sign(digest, a, outsider),
			threshold: 2,
			wantErr:   ErrInvalidOwner,
		},
		"non owner beyond threshold": {
			sigs:      quorumtest.Sign(digest, a, b, outsider),
			threshold: 2,
			wantErr:   ErrInvalidOwner,
		},
		"duplicate beyond threshold": {
			sigs:      quorumtest.Sign(digest, a, b, b),
			threshold: 2,
			wantErr:   ErrOwnerAlreadySigned,
		},
		"signed another digest": {
			sigs:      quorumtest.Sign(other, a, b),
			threshold: 2,
			wantErr:   ErrInvalidOwner,
		},
		"garbage signature": {
			sigs:      [][]byte{[]byte("garbage"), []byte("garbage")},
			threshold: 2,
			wantErr:   ErrInvalidOwner,
		},
		"ed25519 owner": {
			sigs:        quorumtest.Sign(digest, edKey),
			members:     owners.NewSnapshot(quorumtest.Addresses(edKey), 1),
			threshold:   1,
			wantSigners: quorumtest.Addresses(edKey),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			members := tc.members
			if members == nil {
				members = registry
			}
			signers, err := VerifyQuorum(crypto.DefaultRecoverer(), digest, tc.sigs, members, tc.threshold)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Equal(t, tc.wantSigners, signers)
		})
	}
}

type failingMembership struct{}

func (failingMembership) IsOwner(quorum.Address) (bool, error) {
	return false, errors.Wrap(errors.ErrDatabase, "broken")
}

func TestVerifyQuorumMembershipFailure(t *testing.T) {
	keys := quorumtest.SortedKeys(1)
	digest := crypto.Keccak256([]byte("x"))
	_, err := VerifyQuorum(crypto.DefaultRecoverer(), digest, quorumtest.Sign(digest, keys...), failingMembership{}, 1)
	assert.IsErr(t, errors.ErrDatabase, err)
}

func TestSortSignatures(t *testing.T) {
	keys := quorumtest.SortedKeys(3)
	digest := crypto.Keccak256([]byte("action"))
	rec := crypto.DefaultRecoverer()

	sorted, err := SortSignatures(rec, digest, quorumtest.Sign(digest, keys[2], keys[0], keys[1]))
	assert.Nil(t, err)
	assert.Equal(t, quorumtest.Sign(digest, keys[0], keys[1], keys[2]), sorted)

	_, err = SortSignatures(rec, digest, [][]byte{[]byte("garbage")})
	assert.IsErr(t, ErrInvalidOwner, err)
}
