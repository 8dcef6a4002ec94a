package multisig

import (
	"bytes"
	"context"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// adminCost is charged for every owner management method.
const adminCost = 10000

// Method identifies an owner management operation in a self call
// payload.
type Method uint8

const (
	MethodAddOwner        Method = 1
	MethodRemoveOwner     Method = 2
	MethodReplaceOwner    Method = 3
	MethodChangeThreshold Method = 4
)

func (m Method) String() string {
	switch m {
	case MethodAddOwner:
		return "addOwner"
	case MethodRemoveOwner:
		return "removeOwner"
	case MethodReplaceOwner:
		return "replaceOwner"
	case MethodChangeThreshold:
		return "changeThreshold"
	default:
		return "unknown"
	}
}

// AdminMsg is the decoded payload of a self call. Only the arguments of
// the method are set.
type AdminMsg struct {
	Method    Method
	Owner     quorum.Address
	NewOwner  quorum.Address
	Threshold uint32
}

// Marshal encodes the message as a self call payload: the method id
// followed by its arguments.
func (m AdminMsg) Marshal() ([]byte, error) {
	buf := proto.NewBuffer(nil)
	if err := buf.EncodeVarint(uint64(m.Method)); err != nil {
		return nil, err
	}
	var err error
	switch m.Method {
	case MethodAddOwner, MethodRemoveOwner:
		err = buf.EncodeRawBytes(m.Owner)
	case MethodReplaceOwner:
		if err = buf.EncodeRawBytes(m.Owner); err == nil {
			err = buf.EncodeRawBytes(m.NewOwner)
		}
	case MethodChangeThreshold:
		err = buf.EncodeVarint(uint64(m.Threshold))
	default:
		return nil, errors.Wrapf(ErrUnknownMethod, "%d", m.Method)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return buf.Bytes(), nil
}

// UnmarshalAdminMsg decodes a self call payload. Only the canonical
// encoding is accepted.
func UnmarshalAdminMsg(payload []byte) (*AdminMsg, error) {
	buf := proto.NewBuffer(payload)
	method, err := buf.DecodeVarint()
	if err != nil {
		return nil, errors.Wrap(ErrInvalidCall, "method")
	}

	msg := AdminMsg{Method: Method(method)}
	switch msg.Method {
	case MethodAddOwner, MethodRemoveOwner:
		if msg.Owner, err = buf.DecodeRawBytes(true); err != nil {
			return nil, errors.Wrap(ErrInvalidCall, "owner")
		}
	case MethodReplaceOwner:
		if msg.Owner, err = buf.DecodeRawBytes(true); err != nil {
			return nil, errors.Wrap(ErrInvalidCall, "old owner")
		}
		if msg.NewOwner, err = buf.DecodeRawBytes(true); err != nil {
			return nil, errors.Wrap(ErrInvalidCall, "new owner")
		}
	case MethodChangeThreshold:
		n, err := buf.DecodeVarint()
		if err != nil || n > uint64(^uint32(0)) {
			return nil, errors.Wrap(ErrInvalidCall, "threshold")
		}
		msg.Threshold = uint32(n)
	default:
		return nil, errors.Wrapf(ErrUnknownMethod, "%d", method)
	}

	// re-encoding catches trailing data and non canonical varints
	canonical, err := msg.Marshal()
	if err != nil || !bytes.Equal(canonical, payload) {
		return nil, errors.Wrapf(ErrInvalidCall, "malformed %s payload", msg.Method)
	}
	return &msg, nil
}

// Invoke implements Contract. The instance is the contract for its own
// address. A call without payload is a deposit and is accepted from
// anyone. Any other call is an owner management method that only the
// instance itself may invoke.
func (e *Engine) Invoke(ctx context.Context, db quorum.KVStore, em quorum.EventEmitter, caller quorum.Address, c Call) ([]byte, error) {
	if len(c.Payload) == 0 {
		return nil, nil
	}
	if !caller.Equals(e.address) {
		return nil, errors.Wrapf(ErrOnlySelf, "caller %s", caller)
	}
	msg, err := UnmarshalAdminMsg(c.Payload)
	if err != nil {
		return nil, err
	}
	quorum.GetGasMeter(ctx).ConsumeGas(adminCost, msg.Method.String())

	local := e.local(db)
	switch msg.Method {
	case MethodAddOwner:
		err = e.registry.AddOwner(local, em, msg.Owner)
	case MethodRemoveOwner:
		err = e.registry.RemoveOwner(local, em, msg.Owner)
	case MethodReplaceOwner:
		err = e.registry.ReplaceOwner(local, em, msg.Owner, msg.NewOwner)
	case MethodChangeThreshold:
		err = e.registry.ChangeThreshold(local, em, msg.Threshold)
	}
	if err != nil {
		return nil, errors.Wrap(err, msg.Method.String())
	}
	return nil, nil
}

// AdminCall returns the self call of the instance at given address
// executing msg.
func AdminCall(instance quorum.Address, msg AdminMsg) (Call, error) {
	payload, err := msg.Marshal()
	if err != nil {
		return Call{}, err
	}
	return Call{Target: instance, Payload: payload}, nil
}

func (e *Engine) adminCall(msg AdminMsg) (Call, error) {
	return AdminCall(e.address, msg)
}

// AddOwnerCall returns the self call adding an owner.
func (e *Engine) AddOwnerCall(owner quorum.Address) (Call, error) {
	return e.adminCall(AdminMsg{Method: MethodAddOwner, Owner: owner})
}

// RemoveOwnerCall returns the self call removing an owner.
func (e *Engine) RemoveOwnerCall(owner quorum.Address) (Call, error) {
	return e.adminCall(AdminMsg{Method: MethodRemoveOwner, Owner: owner})
}

// ReplaceOwnerCall returns the self call replacing an owner.
func (e *Engine) ReplaceOwnerCall(old, new quorum.Address) (Call, error) {
	return e.adminCall(AdminMsg{Method: MethodReplaceOwner, Owner: old, NewOwner: new})
}

// ChangeThresholdCall returns the self call changing the threshold.
func (e *Engine) ChangeThresholdCall(threshold uint32) (Call, error) {
	return e.adminCall(AdminMsg{Method: MethodChangeThreshold, Threshold: threshold})
}

// AddOwner executes an authorized self call adding an owner.
func (e *Engine) AddOwner(ctx context.Context, db quorum.KVStore, owner quorum.Address, sigs [][]byte) (*Receipt, error) {
	c, err := e.AddOwnerCall(owner)
	if err != nil {
		return nil, err
	}
	return e.ExecTransaction(ctx, db, c, sigs)
}

// RemoveOwner executes an authorized self call removing an owner.
func (e *Engine) RemoveOwner(ctx context.Context, db quorum.KVStore, owner quorum.Address, sigs [][]byte) (*Receipt, error) {
	c, err := e.RemoveOwnerCall(owner)
	if err != nil {
		return nil, err
	}
	return e.ExecTransaction(ctx, db, c, sigs)
}

// ReplaceOwner executes an authorized self call replacing an owner.
func (e *Engine) ReplaceOwner(ctx context.Context, db quorum.KVStore, old, new quorum.Address, sigs [][]byte) (*Receipt, error) {
	c, err := e.ReplaceOwnerCall(old, new)
	if err != nil {
		return nil, err
	}
	return e.ExecTransaction(ctx, db, c, sigs)
}

// ChangeThreshold executes an authorized self call changing the
// threshold.
func (e *Engine) ChangeThreshold(ctx context.Context, db quorum.KVStore, threshold uint32, sigs [][]byte) (*Receipt, error) {
	c, err := e.ChangeThresholdCall(threshold)
	if err != nil {
		return nil, err
	}
	return e.ExecTransaction(ctx, db, c, sigs)
}
