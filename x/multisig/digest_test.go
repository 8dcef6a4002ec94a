package multisig

import (
	"bytes"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest/assert"
)

func TestDigestBindsEveryField(t *testing.T) {
	instance := quorum.NewAddress([]byte("instance"))
	target := quorum.NewAddress([]byte("target"))
	id := Identity{Name: "MyMultiSig", Version: Version, Address: instance}
	call := Call{Target: target, Value: 5, Payload: []byte("payload"), GasBudget: DefaultGasBudget}

	base, err := Digest(id, 7, SingleRequest(call))
	assert.Nil(t, err)
	assert.Len(t, 32, base)

	// the same input always gives the same digest
	again, err := Digest(id, 7, SingleRequest(call))
	assert.Nil(t, err)
	assert.Equal(t, base, again)

	type digestInput struct {
		id    Identity
		nonce uint64
		req   Request
	}
	cases := map[string]digestInput{
		"nonce":        {id: id, nonce: 8, req: SingleRequest(call)},
		"batch of one": {id: id, nonce: 7, req: BatchRequest([]Call{call})},
	}
	mutations := map[string]func(*Identity, *Call){
		"name":       func(i *Identity, c *Call) { i.Name = "OtherMultiSig" },
		"version":    func(i *Identity, c *Call) { i.Version = "2" },
		"instance":   func(i *Identity, c *Call) { i.Address = quorum.NewAddress([]byte("other")) },
		"target":     func(i *Identity, c *Call) { c.Target = quorum.NewAddress([]byte("other")) },
		"value":      func(i *Identity, c *Call) { c.Value = 6 },
		"payload":    func(i *Identity, c *Call) { c.Payload = []byte("payloae") },
		"gas budget": func(i *Identity, c *Call) { c.GasBudget = 0 },
	}
	for name, mutate := range mutations {
		i, c := id, call
		mutate(&i, &c)
		cases[name] = digestInput{id: i, nonce: 7, req: SingleRequest(c)}
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := Digest(tc.id, tc.nonce, tc.req)
			assert.Nil(t, err)
			if bytes.Equal(base, got) {
				t.Fatal("digest does not depend on the change")
			}
		})
	}
}

func TestBuildSignBytes(t *testing.T) {
	id := Identity{Name: "n", Version: Version, Address: quorum.NewAddress([]byte("i"))}
	call := Call{Target: quorum.NewAddress([]byte("t"))}

	raw, err := BuildSignBytes(id, 1, SingleRequest(call))
	assert.Nil(t, err)
	assert.Equal(t, SignCodeV1, raw[:len(SignCodeV1)])
	// the nonce closes the encoding, as 8 byte big-endian
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1}, raw[len(raw)-8:])

	// batches are concatenations, so moving data between calls must change
	// the encoding
	a := []Call{{Target: call.Target, Payload: []byte("ab")}, {Target: call.Target, Payload: []byte("c")}}
	b := []Call{{Target: call.Target, Payload: []byte("a")}, {Target: call.Target, Payload: []byte("bc")}}
	rawA, err := BuildSignBytes(id, 1, BatchRequest(a))
	assert.Nil(t, err)
	rawB, err := BuildSignBytes(id, 1, BatchRequest(b))
	assert.Nil(t, err)
	if bytes.Equal(rawA, rawB) {
		t.Fatal("ambiguous batch encoding")
	}

	_, err = BuildSignBytes(id, 1, Request{Kind: KindSingle})
	assert.FieldError(t, err, "Calls", errors.ErrInvalidInput)
	_, err = BuildSignBytes(id, 1, BatchRequest(nil))
	assert.FieldError(t, err, "Calls", errors.ErrEmpty)
	_, err = BuildSignBytes(id, 1, Request{Kind: 9, Calls: []Call{call}})
	assert.FieldError(t, err, "Kind", errors.ErrInvalidInput)
}

func TestRequestJSON(t *testing.T) {
	var k RequestKind
	assert.Nil(t, k.UnmarshalJSON([]byte(`"batch"`)))
	assert.Equal(t, KindBatch, k)
	raw, err := KindSingle.MarshalJSON()
	assert.Nil(t, err)
	assert.Equal(t, `"single"`, string(raw))
	assert.IsErr(t, errors.ErrInvalidInput, k.UnmarshalJSON([]byte(`"other"`)))
}
