package crypto

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest/assert"
)

func testKeys(t *testing.T) map[string]PrivateKey {
	t.Helper()
	secp, err := GenSecp256k1Key()
	assert.Nil(t, err)
	ed, err := GenEd25519Key()
	assert.Nil(t, err)
	return map[string]PrivateKey{
		"secp256k1": secp,
		"ed25519":   ed,
	}
}

func TestSignAndRecover(t *testing.T) {
	digest := Keccak256([]byte("foobar"))
	other := Keccak256([]byte("dingbooms"))
	recoverer := DefaultRecoverer()

	for name, key := range testKeys(t) {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, key.Address().Validate())

			sig, err := key.Sign(digest)
			assert.Nil(t, err)
			assert.Equal(t, key.Scheme(), sig[0])

			got, err := recoverer.Recover(digest, sig)
			assert.Nil(t, err)
			assert.Equal(t, key.Address(), got)

			// A signature of another digest never recovers the same
			// identity.
			if addr, err := recoverer.Recover(other, sig); err == nil && addr.Equals(key.Address()) {
				t.Fatal("signature recovered for a different digest")
			}

			// Corrupted signature must not recover the signer.
			broken := append([]byte{}, sig...)
			broken[len(broken)-1] ^= 0xFF
			if addr, err := recoverer.Recover(digest, broken); err == nil && addr.Equals(key.Address()) {
				t.Fatal("corrupted signature recovered the signer")
			}
		})
	}
}

func TestRecoverMalformed(t *testing.T) {
	digest := Keccak256([]byte("foobar"))
	recoverer := DefaultRecoverer()

	cases := map[string]struct {
		sig     []byte
		wantErr *errors.Error
	}{
		"empty": {
			sig:     nil,
			wantErr: errors.ErrEmpty,
		},
		"unknown scheme": {
			sig:     []byte{0x7F, 1, 2, 3},
			wantErr: errors.ErrInvalidType,
		},
		"short secp256k1": {
			sig:     []byte{SchemeSecp256k1, 1, 2, 3},
			wantErr: errors.ErrInvalidInput,
		},
		"short ed25519": {
			sig:     []byte{SchemeEd25519, 1, 2, 3},
			wantErr: errors.ErrInvalidInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := recoverer.Recover(digest, tc.sig)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestPrivateKeySerialization(t *testing.T) {
	for name, key := range testKeys(t) {
		t.Run(name, func(t *testing.T) {
			raw := MarshalPrivateKey(key)
			loaded, err := UnmarshalPrivateKey(raw)
			assert.Nil(t, err)
			assert.Equal(t, key.Address(), loaded.Address())
			assert.Equal(t, key.Scheme(), loaded.Scheme())
		})
	}

	_, err := UnmarshalPrivateKey([]byte{0x09, 1, 2})
	assert.IsErr(t, errors.ErrInvalidType, err)
	_, err = UnmarshalPrivateKey([]byte{SchemeEd25519})
	assert.IsErr(t, errors.ErrInvalidInput, err)
}

func TestEd25519KeyFromSeed(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, 32)
	a, err := Ed25519KeyFromSeed(seed)
	assert.Nil(t, err)
	b, err := Ed25519KeyFromSeed(seed)
	assert.Nil(t, err)
	assert.Equal(t, a.Address(), b.Address())

	// ed25519 signatures are deterministic.
	digest := Keccak256([]byte("x"))
	sa, _ := a.Sign(digest)
	sb, _ := b.Sign(digest)
	assert.Equal(t, sa, sb)

	_, err = Ed25519KeyFromSeed([]byte("short"))
	assert.IsErr(t, errors.ErrInvalidInput, err)
}

func TestSecp256k1KnownAddress(t *testing.T) {
	// Private key 0x...01 is the generator point.
	raw := make([]byte, 32)
	raw[31] = 1
	key, err := Secp256k1KeyFromBytes(raw)
	assert.Nil(t, err)
	assert.Equal(t, "7E5F4552091A69125D5DFCB7B8C2659029395BDF", key.Address().String())
}

func TestKeccak256(t *testing.T) {
	// Keccak of the empty input.
	got := Keccak256()
	assert.Equal(t, "C5D2460186F7233C927E7DB2DCC703C0E500B653CA82273B7BFAD8045D85A470", fmt.Sprintf("%X", got))
	assert.Equal(t, Keccak256([]byte("ab")), Keccak256([]byte("a"), []byte("b")))
}
