package sigs

import (
	"sort"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
)

// VerifyCost is the gas charged for verifying a single signature.
const VerifyCost = 500

// Membership is the view of an owner registry required to verify a quorum.
type Membership interface {
	IsOwner(quorum.Address) (bool, error)
}

//----------------- Controller ------------------
//
// Controller contains package-level functions, not objects with state,
// to make it easy to call from other extensions.

// VerifyQuorum authenticates the signatures of a digest against a
// registry.
//
// All signatures are validated, including any beyond the threshold. The
// first violation found is returned. On success the identities of all
// signers are returned in signature order.
//
// Recovery failures and signers that are not members are reported as
// ErrInvalidOwner. A signer that does not compare strictly greater than
// the previous one is reported as ErrOwnerAlreadySigned.
func VerifyQuorum(
	rec crypto.Recoverer,
	digest []byte,
	signatures [][]byte,
	members Membership,
	threshold uint32,
) ([]quorum.Address, error) {
	if uint64(len(signatures)) < uint64(threshold) {
		return nil, errors.Wrapf(ErrThresholdNotAchieved, "%d signatures of %d required", len(signatures), threshold)
	}

	signers := make([]quorum.Address, 0, len(signatures))
	var last quorum.Address
	for i, sig := range signatures {
		signer, err := rec.Recover(digest, sig)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidOwner, "signature %d: %s", i, err)
		}
		ok, err := members.IsOwner(signer)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		if !ok {
			return nil, errors.Wrapf(ErrInvalidOwner, "signature %d: %s", i, signer)
		}
		if last != nil && signer.Compare(last) <= 0 {
			return nil, errors.Wrapf(ErrOwnerAlreadySigned, "signature %d: %s", i, signer)
		}
		last = signer
		signers = append(signers, signer)
	}
	return signers, nil
}

// SortSignatures returns the signatures ordered by their signer identity,
// as required by VerifyQuorum. Signatures that cannot be recovered are
// rejected with ErrInvalidOwner. Duplicated signers are kept.
func SortSignatures(rec crypto.Recoverer, digest []byte, signatures [][]byte) ([][]byte, error) {
	type signed struct {
		signer quorum.Address
		sig    []byte
	}
	all := make([]signed, len(signatures))
	for i, sig := range signatures {
		signer, err := rec.Recover(digest, sig)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidOwner, "signature %d: %s", i, err)
		}
		all[i] = signed{signer: signer, sig: sig}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].signer.Compare(all[j].signer) < 0
	})

	res := make([][]byte, len(all))
	for i, s := range all {
		res[i] = s.sig
	}
	return res, nil
}
