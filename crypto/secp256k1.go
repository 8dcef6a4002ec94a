package crypto

import (
	"github.com/btcsuite/btcd/btcec"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// secp256k1 compact signature: recovery header followed by r and s.
const compactSigLength = 65

// Secp256k1Key is a secp256k1 private key producing recoverable
// signatures.
type Secp256k1Key struct {
	priv *btcec.PrivateKey
}

var _ PrivateKey = (*Secp256k1Key)(nil)

// GenSecp256k1Key returns a random new private key.
func GenSecp256k1Key() (*Secp256k1Key, error) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidState, err.Error())
	}
	return &Secp256k1Key{priv: priv}, nil
}

// Secp256k1KeyFromBytes loads a private key from its 32 bytes scalar.
func Secp256k1KeyFromBytes(raw []byte) (*Secp256k1Key, error) {
	if len(raw) != btcec.PrivKeyBytesLen {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "secp256k1 key must be %d bytes", btcec.PrivKeyBytesLen)
	}
	priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), raw)
	return &Secp256k1Key{priv: priv}, nil
}

// Sign implements Signer.
func (k *Secp256k1Key) Sign(digest []byte) ([]byte, error) {
	sig, err := btcec.SignCompact(btcec.S256(), k.priv, digest, false)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return append([]byte{SchemeSecp256k1}, sig...), nil
}

// Address implements Signer.
func (k *Secp256k1Key) Address() quorum.Address {
	return Secp256k1Address(k.priv.PubKey())
}

// Scheme implements PrivateKey.
func (k *Secp256k1Key) Scheme() byte {
	return SchemeSecp256k1
}

// Bytes implements PrivateKey.
func (k *Secp256k1Key) Bytes() []byte {
	return k.priv.Serialize()
}

// Secp256k1Address returns the last 20 bytes of the keccak hash of the
// uncompressed public key (without the format prefix).
func Secp256k1Address(pub *btcec.PublicKey) quorum.Address {
	raw := pub.SerializeUncompressed()
	return quorum.Address(Keccak256(raw[1:])[12:])
}

// Secp256k1Recoverer recovers the signer of compact secp256k1 signatures.
type Secp256k1Recoverer struct{}

var _ Recoverer = Secp256k1Recoverer{}

// Recover implements Recoverer.
func (Secp256k1Recoverer) Recover(digest, signature []byte) (quorum.Address, error) {
	if len(signature) != 1+compactSigLength || signature[0] != SchemeSecp256k1 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "malformed secp256k1 signature")
	}
	pub, _, err := btcec.RecoverCompact(btcec.S256(), signature[1:], digest)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "cannot recover signer: %s", err)
	}
	return Secp256k1Address(pub), nil
}
