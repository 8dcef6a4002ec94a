package multisig

import (
	"encoding/binary"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
)

// SignCodeV1 is the current way to prefix the bytes we use to build
// a digest. It distinguishes a digest from any other hashed data.
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// Identity names an instance. It is bound into every digest so that
// signatures cannot be replayed on another deployment or another
// instance of the same deployment.
type Identity struct {
	Name    string         `json:"name"`
	Version string         `json:"version"`
	Address quorum.Address `json:"address"`
}

// BuildSignBytes returns the canonical encoding of a request, as signed by
// the owners: the instance identity, the calls and finally the nonce. The
// nonce must be the instance nonce at verification time.
func BuildSignBytes(id Identity, nonce uint64, req Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// encode nonce as 8 byte, big-endian
	rawNonce := make([]byte, 8)
	binary.BigEndian.PutUint64(rawNonce, nonce)

	buf := proto.NewBuffer(make([]byte, 0, 128))
	if err := buf.EncodeStringBytes(id.Name); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := buf.EncodeStringBytes(id.Version); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := buf.EncodeRawBytes(id.Address); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := buf.EncodeVarint(uint64(req.Kind)); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := buf.EncodeVarint(uint64(len(req.Calls))); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	for _, c := range req.Calls {
		if err := encodeCall(buf, c); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
		}
	}
	if err := buf.EncodeRawBytes(rawNonce); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	output := make([]byte, 0, len(SignCodeV1)+len(buf.Bytes()))
	output = append(output, SignCodeV1...)
	output = append(output, buf.Bytes()...)
	return output, nil
}

func encodeCall(buf *proto.Buffer, c Call) error {
	if err := buf.EncodeRawBytes(c.Target); err != nil {
		return err
	}
	if err := buf.EncodeFixed64(c.Value); err != nil {
		return err
	}
	if err := buf.EncodeRawBytes(c.Payload); err != nil {
		return err
	}
	return buf.EncodeVarint(uint64(c.GasBudget))
}

// Digest returns the Keccak-256 hash of the sign bytes. This is the value
// signed by every owner.
func Digest(id Identity, nonce uint64, req Request) ([]byte, error) {
	raw, err := BuildSignBytes(id, nonce, req)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(raw), nil
}
