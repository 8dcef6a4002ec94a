package multisig

import (
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest/assert"
)

func TestAdminMsgCodec(t *testing.T) {
	a := quorum.NewAddress([]byte("a"))
	b := quorum.NewAddress([]byte("b"))

	cases := map[string]AdminMsg{
		"add owner":        {Method: MethodAddOwner, Owner: a},
		"remove owner":     {Method: MethodRemoveOwner, Owner: a},
		"replace owner":    {Method: MethodReplaceOwner, Owner: a, NewOwner: b},
		"change threshold": {Method: MethodChangeThreshold, Threshold: 70000},
	}
	for testName, msg := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := msg.Marshal()
			assert.Nil(t, err)
			got, err := UnmarshalAdminMsg(raw)
			assert.Nil(t, err)
			assert.Equal(t, msg, *got)
		})
	}

	_, err := AdminMsg{Method: 42}.Marshal()
	assert.IsErr(t, ErrUnknownMethod, err)
}

func TestUnmarshalAdminMsgMalformed(t *testing.T) {
	valid, err := AdminMsg{Method: MethodAddOwner, Owner: quorum.NewAddress([]byte("a"))}.Marshal()
	assert.Nil(t, err)

	cases := map[string]struct {
		payload []byte
		wantErr *errors.Error
	}{
		"empty":            {payload: nil, wantErr: ErrInvalidCall},
		"unknown method":   {payload: []byte{42}, wantErr: ErrUnknownMethod},
		"missing argument": {payload: []byte{byte(MethodRemoveOwner)}, wantErr: ErrInvalidCall},
		"truncated":        {payload: valid[:len(valid)-1], wantErr: ErrInvalidCall},
		"trailing data":    {payload: append(append([]byte{}, valid...), 0), wantErr: ErrInvalidCall},
		"non canonical method": {
			payload: []byte{0x81, 0x00, 0x00},
			wantErr: ErrInvalidCall,
		},
		"threshold overflow": {
			payload: []byte{byte(MethodChangeThreshold), 0xff, 0xff, 0xff, 0xff, 0x1f},
			wantErr: ErrInvalidCall,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := UnmarshalAdminMsg(tc.payload)
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}
