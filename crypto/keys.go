/*
Package crypto provides the signing and signer recovery capabilities used
by the quorum engine.

Every signature starts with a single scheme byte followed by the scheme
specific signature bytes. A Recoverer returns the identity of the signer
of a digest. Recovery never consults any state, so the same input always
yields the same identity.
*/
package crypto

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"golang.org/x/crypto/sha3"
)

// ExtensionName is used for conditions derived from public keys.
const ExtensionName = "sigs"

const (
	// SchemeSecp256k1 marks a recoverable compact secp256k1 signature.
	// The signer identity is the keccak based address of the recovered
	// public key.
	SchemeSecp256k1 byte = 0x01

	// SchemeEd25519 marks an ed25519 signature that carries the public key
	// of the signer.
	SchemeEd25519 byte = 0x02
)

// Signer is the functionality we use from a private key.
// No serializing to support hardware devices as well.
type Signer interface {
	// Sign returns a scheme prefixed signature of the given digest.
	Sign(digest []byte) ([]byte, error)
	// Address returns the identity that a Recoverer returns for
	// signatures created by this signer.
	Address() quorum.Address
}

// PrivateKey is a Signer that can be persisted.
type PrivateKey interface {
	Signer
	Scheme() byte
	// Bytes returns the raw key material without the scheme prefix.
	Bytes() []byte
}

// Recoverer returns the identity of the signer of a digest.
type Recoverer interface {
	Recover(digest, signature []byte) (quorum.Address, error)
}

// RecovererFunc is an adapter to allow the use of ordinary functions as
// a Recoverer.
type RecovererFunc func(digest, signature []byte) (quorum.Address, error)

// Recover calls fn(digest, signature).
func (fn RecovererFunc) Recover(digest, signature []byte) (quorum.Address, error) {
	return fn(digest, signature)
}

// SchemeRecoverer dispatches recovery on the scheme byte of a signature.
type SchemeRecoverer map[byte]Recoverer

var _ Recoverer = SchemeRecoverer(nil)

// DefaultRecoverer returns a recoverer supporting all schemes of this
// package.
func DefaultRecoverer() SchemeRecoverer {
	return SchemeRecoverer{
		SchemeSecp256k1: Secp256k1Recoverer{},
		SchemeEd25519:   Ed25519Recoverer{},
	}
}

// Recover implements Recoverer.
func (s SchemeRecoverer) Recover(digest, signature []byte) (quorum.Address, error) {
	if len(signature) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "signature")
	}
	r, ok := s[signature[0]]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "signature scheme %#x", signature[0])
	}
	return r.Recover(digest, signature)
}

// Keccak256 returns the legacy keccak hash of all data chunks.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		// hash.Hash never returns an error.
		_, _ = h.Write(d)
	}
	return h.Sum(nil)
}

// MarshalPrivateKey serializes a private key together with its scheme.
func MarshalPrivateKey(key PrivateKey) []byte {
	return append([]byte{key.Scheme()}, key.Bytes()...)
}

// UnmarshalPrivateKey decodes a private key serialized with
// MarshalPrivateKey.
func UnmarshalPrivateKey(raw []byte) (PrivateKey, error) {
	if len(raw) < 2 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "private key too short")
	}
	switch raw[0] {
	case SchemeSecp256k1:
		return Secp256k1KeyFromBytes(raw[1:])
	case SchemeEd25519:
		return Ed25519KeyFromBytes(raw[1:])
	default:
		return nil, errors.Wrapf(errors.ErrInvalidType, "private key scheme %#x", raw[0])
	}
}
