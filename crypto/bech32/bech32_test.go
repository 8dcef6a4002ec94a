package bech32

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := map[string]struct {
		hrp     string
		payload []byte
	}{
		"owner address": {
			hrp:     "qrm",
			payload: bytes.Repeat([]byte{0xAB}, 20),
		},
		"short payload": {
			hrp:     "tqrm",
			payload: []byte("test-payload"),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := Encode(tc.hrp, tc.payload)
			if err != nil {
				t.Fatalf("cannot encode: %s", err)
			}
			if !strings.HasPrefix(string(raw), tc.hrp+"1") {
				t.Fatalf("unexpected prefix: %q", raw)
			}
			hrp, payload, err := Decode(string(raw))
			if err != nil {
				t.Fatalf("cannot decode: %s", err)
			}
			if hrp != tc.hrp {
				t.Fatalf("want %q hrp, got %q", tc.hrp, hrp)
			}
			if !bytes.Equal(tc.payload, payload) {
				t.Fatalf("want %X payload, got %X", tc.payload, payload)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, _, err := Decode("qrm1notavalidchecksum"); err == nil {
		t.Fatal("want an error")
	}
}
