package crypto

import (
	"crypto/rand"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"golang.org/x/crypto/ed25519"
)

// Ed25519Key is an ed25519 private key. Its signatures embed the public
// key, so that the signer can be recovered.
type Ed25519Key struct {
	priv ed25519.PrivateKey
}

var _ PrivateKey = (*Ed25519Key)(nil)

// GenEd25519Key returns a random new private key.
func GenEd25519Key() (*Ed25519Key, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidState, err.Error())
	}
	return &Ed25519Key{priv: priv}, nil
}

// Ed25519KeyFromSeed returns the private key for a 32 bytes seed.
func Ed25519KeyFromSeed(seed []byte) (*Ed25519Key, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "seed must be %d bytes", ed25519.SeedSize)
	}
	return &Ed25519Key{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// Ed25519KeyFromBytes loads a private key serialized with Bytes.
func Ed25519KeyFromBytes(raw []byte) (*Ed25519Key, error) {
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "ed25519 key must be %d bytes", ed25519.PrivateKeySize)
	}
	priv := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	copy(priv, raw)
	return &Ed25519Key{priv: priv}, nil
}

// Sign implements Signer.
func (k *Ed25519Key) Sign(digest []byte) ([]byte, error) {
	sig := ed25519.Sign(k.priv, digest)
	res := make([]byte, 0, 1+ed25519.PublicKeySize+ed25519.SignatureSize)
	res = append(res, SchemeEd25519)
	res = append(res, k.public()...)
	return append(res, sig...), nil
}

// Address implements Signer.
func (k *Ed25519Key) Address() quorum.Address {
	return Ed25519Address(k.public())
}

// Scheme implements PrivateKey.
func (k *Ed25519Key) Scheme() byte {
	return SchemeEd25519
}

// Bytes implements PrivateKey.
func (k *Ed25519Key) Bytes() []byte {
	raw := make([]byte, len(k.priv))
	copy(raw, k.priv)
	return raw
}

func (k *Ed25519Key) public() ed25519.PublicKey {
	return k.priv.Public().(ed25519.PublicKey)
}

// Ed25519Condition encodes the public key into a condition.
func Ed25519Condition(pub ed25519.PublicKey) quorum.Condition {
	return quorum.NewCondition(ExtensionName, "ed25519", pub)
}

// Ed25519Address returns the identity of an ed25519 public key.
func Ed25519Address(pub ed25519.PublicKey) quorum.Address {
	return Ed25519Condition(pub).Address()
}

// Ed25519Recoverer verifies the embedded public key signed the digest
// and returns its identity.
type Ed25519Recoverer struct{}

var _ Recoverer = Ed25519Recoverer{}

// Recover implements Recoverer.
func (Ed25519Recoverer) Recover(digest, signature []byte) (quorum.Address, error) {
	if len(signature) != 1+ed25519.PublicKeySize+ed25519.SignatureSize || signature[0] != SchemeEd25519 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "malformed ed25519 signature")
	}
	pub := ed25519.PublicKey(signature[1 : 1+ed25519.PublicKeySize])
	if !ed25519.Verify(pub, digest, signature[1+ed25519.PublicKeySize:]) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid ed25519 signature")
	}
	return Ed25519Address(pub), nil
}
