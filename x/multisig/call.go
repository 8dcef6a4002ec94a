package multisig

import (
	"encoding/json"
	"fmt"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

const (
	// MinGasBudget is the smallest gas budget that allows a call to be
	// dispatched. A call with an explicit budget below it is rejected
	// before the nonce is consumed.
	MinGasBudget int64 = 21000

	// DefaultGasBudget is used by clients that do not choose a budget.
	DefaultGasBudget int64 = 300000
)

// Call describes a single inner action executed on behalf of an instance.
type Call struct {
	// Target is the address of the contract or account that is called.
	Target quorum.Address `json:"target"`
	// Value is the amount moved from the instance to the target before
	// the contract is invoked.
	Value uint64 `json:"value"`
	// Payload is opaque for the engine and interpreted by the target.
	Payload []byte `json:"payload,omitempty"`
	// GasBudget limits the gas available to the call. Zero means all the
	// gas remaining in the request.
	GasBudget int64 `json:"gas_budget"`
}

// Validate checks the call can be dispatched.
func (c Call) Validate() error {
	var errs error
	if err := c.Target.Validate(); err != nil {
		errs = errors.AppendField(errs, "Target", err)
	}
	if c.GasBudget < 0 {
		errs = errors.AppendField(errs, "GasBudget", errors.Wrap(errors.ErrInvalidInput, "negative"))
	} else if c.GasBudget != 0 && c.GasBudget < MinGasBudget {
		errs = errors.AppendField(errs, "GasBudget",
			errors.Wrapf(ErrInsufficientGas, "%d below minimum %d", c.GasBudget, MinGasBudget))
	}
	return errs
}

// requiredGas is the gas a call reserves from the request before it is
// dispatched.
func (c Call) requiredGas() int64 {
	if c.GasBudget < MinGasBudget {
		return MinGasBudget
	}
	return c.GasBudget
}

// RequestKind distinguishes a single call from a batch. It is part of the
// digest, so a signature over a batch of one call cannot be used for a
// single call request.
type RequestKind uint8

const (
	KindSingle RequestKind = 1
	KindBatch  RequestKind = 2
)

func (k RequestKind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the kind by name.
func (k RequestKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON accepts the kind name.
func (k *RequestKind) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	switch s {
	case "single":
		*k = KindSingle
	case "batch":
		*k = KindBatch
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "request kind %q", s)
	}
	return nil
}

// Request is the set of calls covered by one signature list.
type Request struct {
	Kind  RequestKind `json:"kind"`
	Calls []Call      `json:"calls"`
}

// SingleRequest returns a request for one call.
func SingleRequest(c Call) Request {
	return Request{Kind: KindSingle, Calls: []Call{c}}
}

// BatchRequest returns a request executing all calls in order.
func BatchRequest(calls []Call) Request {
	return Request{Kind: KindBatch, Calls: calls}
}

// Validate checks the request shape and every call.
func (r Request) Validate() error {
	var errs error
	switch r.Kind {
	case KindSingle:
		if len(r.Calls) != 1 {
			errs = errors.AppendField(errs, "Calls",
				errors.Wrapf(errors.ErrInvalidInput, "single request with %d calls", len(r.Calls)))
		}
	case KindBatch:
		if len(r.Calls) == 0 {
			errs = errors.AppendField(errs, "Calls", errors.ErrEmpty)
		}
	default:
		errs = errors.AppendField(errs, "Kind", errors.Wrapf(errors.ErrInvalidInput, "%d", r.Kind))
	}
	for i, c := range r.Calls {
		if err := c.Validate(); err != nil {
			errs = errors.AppendField(errs, fmt.Sprintf("Calls.%d", i), err)
		}
	}
	return errs
}

// BatchCalls zips parallel sequences into calls. All sequences must have
// the same, non zero, length.
func BatchCalls(targets []quorum.Address, values []uint64, payloads [][]byte, gasBudgets []int64) ([]Call, error) {
	n := len(targets)
	var errs error
	if n == 0 {
		errs = errors.AppendField(errs, "Targets", errors.ErrEmpty)
	}
	if len(values) != n {
		errs = errors.AppendField(errs, "Values",
			errors.Wrapf(errors.ErrInvalidInput, "want %d elements, got %d", n, len(values)))
	}
	if len(payloads) != n {
		errs = errors.AppendField(errs, "Payloads",
			errors.Wrapf(errors.ErrInvalidInput, "want %d elements, got %d", n, len(payloads)))
	}
	if len(gasBudgets) != n {
		errs = errors.AppendField(errs, "GasBudgets",
			errors.Wrapf(errors.ErrInvalidInput, "want %d elements, got %d", n, len(gasBudgets)))
	}
	if errs != nil {
		return nil, errs
	}

	calls := make([]Call, n)
	for i := range calls {
		calls[i] = Call{
			Target:    targets[i],
			Value:     values[i],
			Payload:   payloads[i],
			GasBudget: gasBudgets[i],
		}
	}
	return calls, nil
}
