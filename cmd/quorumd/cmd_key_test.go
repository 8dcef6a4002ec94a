package main

import (
	"bytes"
	"encoding/hex"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/quorumtest/assert"
)

func TestKeygen(t *testing.T) {
	seed, err := hex.DecodeString("d34c1970ae90acf3405f2d99dcaca16d0c7db379f4beafcfdf667b9d69ce350d")
	assert.Nil(t, err)

	cases := map[string]struct {
		scheme     string
		seed       []byte
		path       string
		wantScheme byte
		wantErr    bool
	}{
		"secp256k1": {
			scheme:     "secp256k1",
			wantScheme: crypto.SchemeSecp256k1,
		},
		"random ed25519": {
			scheme:     "ed25519",
			wantScheme: crypto.SchemeEd25519,
		},
		"ed25519 from seed": {
			scheme:     "ed25519",
			seed:       seed,
			wantScheme: crypto.SchemeEd25519,
		},
		"derived ed25519": {
			scheme:     "ed25519",
			seed:       seed,
			path:       "m/44'/234'/0'",
			wantScheme: crypto.SchemeEd25519,
		},
		"secp256k1 cannot be derived": {
			scheme:  "secp256k1",
			seed:    seed,
			wantErr: true,
		},
		"derivation requires a seed": {
			scheme:  "ed25519",
			path:    "m/44'/234'/0'",
			wantErr: true,
		},
		"invalid derivation path": {
			scheme:  "ed25519",
			seed:    seed,
			path:    "m/44/234",
			wantErr: true,
		},
		"unknown scheme": {
			scheme:  "rsa",
			wantErr: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			key, err := keygen(tc.scheme, tc.seed, tc.path)
			if tc.wantErr {
				if err == nil {
					t.Fatal("want error")
				}
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.wantScheme, key.Scheme())
			assert.Nil(t, key.Address().Validate())
		})
	}
}

func TestKeygenDeterministicDerivation(t *testing.T) {
	seed, err := hex.DecodeString("d34c1970ae90acf3405f2d99dcaca16d0c7db379f4beafcfdf667b9d69ce350d")
	assert.Nil(t, err)

	a, err := keygen("ed25519", seed, "m/44'/234'/0'")
	assert.Nil(t, err)
	b, err := keygen("ed25519", seed, "m/44'/234'/0'")
	assert.Nil(t, err)
	c, err := keygen("ed25519", seed, "m/44'/234'/1'")
	assert.Nil(t, err)
	plain, err := keygen("ed25519", seed, "")
	assert.Nil(t, err)

	assert.Equal(t, a.Address(), b.Address())
	assert.Equal(t, false, a.Address().Equals(c.Address()))
	assert.Equal(t, false, a.Address().Equals(plain.Address()))
}

func TestKeygenAndKeyaddr(t *testing.T) {
	dir, err := ioutil.TempDir("", "quorumd-key")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)
	keyPath := filepath.Join(dir, "priv.key")

	var out bytes.Buffer
	assert.Nil(t, cmdKeygen(nil, &out, []string{"-key", keyPath}))
	addr := strings.TrimSpace(out.String())

	// an existing key is never overwritten
	if err := cmdKeygen(nil, &out, []string{"-key", keyPath}); err == nil {
		t.Fatal("want existing key error")
	}

	out.Reset()
	assert.Nil(t, cmdKeyaddr(nil, &out, []string{"-key", keyPath, "-hrp", "tquorum"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, 2, len(lines))
	assert.Equal(t, addr, lines[0])
	if !strings.HasPrefix(lines[1], "tquorum1") {
		t.Fatalf("unexpected bech32 address: %q", lines[1])
	}

	key, err := decodePrivateKey(keyPath)
	assert.Nil(t, err)
	assert.Equal(t, addr, key.Address().String())
}
