package multisig

import (
	"context"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/store"
	"github.com/iov-one/quorum/x/sigs"
)

// Outcome is the result of a single call of an authorized request.
type Outcome struct {
	Index  int            `json:"index"`
	Target quorum.Address `json:"target"`
	// Data is the value returned by the target contract.
	Data []byte `json:"data,omitempty"`
	// Err is set when the call failed. Its effects were discarded.
	Err error `json:"-"`
	// Code and Log are the client safe form of Err.
	Code    uint32 `json:"code,omitempty"`
	Log     string `json:"log,omitempty"`
	GasUsed int64  `json:"gas_used"`
}

// Failed returns true if the call effects were discarded.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Receipt describes an authorized request. A request that is not
// authorized has no receipt.
type Receipt struct {
	// Nonce is the nonce consumed by the request.
	Nonce    uint64           `json:"nonce"`
	Signers  []quorum.Address `json:"signers"`
	Outcomes []Outcome        `json:"outcomes"`
	// Events are all events emitted in the order of emission.
	Events  []quorum.Event `json:"-"`
	GasUsed int64          `json:"gas_used"`
}

// Failures returns the number of calls that failed.
func (r *Receipt) Failures() int {
	var n int
	for _, o := range r.Outcomes {
		if o.Failed() {
			n++
		}
	}
	return n
}

// NamedEvents returns the events in their transport form.
func (r *Receipt) NamedEvents() []quorum.NamedEvent {
	res := make([]quorum.NamedEvent, len(r.Events))
	for i, ev := range r.Events {
		res[i] = quorum.Named(ev)
	}
	return res
}

// Data combines the data of all calls as a go-amino array.
func (r *Receipt) Data() []byte {
	datas := make([][]byte, len(r.Outcomes))
	for i, o := range r.Outcomes {
		datas[i] = o.Data
	}
	return cdc.MustMarshalBinaryBare(datas)
}

// ExecTransaction executes a single call once authorized by a quorum of
// owners.
func (e *Engine) ExecTransaction(ctx context.Context, db quorum.KVStore, c Call, signatures [][]byte) (*Receipt, error) {
	return e.Execute(ctx, db, SingleRequest(c), signatures)
}

// MultiRequest executes a batch of calls given as parallel sequences. The
// signatures cover the whole batch. The nonce advances once and every
// call succeeds or fails independently.
func (e *Engine) MultiRequest(
	ctx context.Context,
	db quorum.KVStore,
	targets []quorum.Address,
	values []uint64,
	payloads [][]byte,
	gasBudgets []int64,
	signatures [][]byte,
) (*Receipt, error) {
	calls, err := BatchCalls(targets, values, payloads, gasBudgets)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, db, BatchRequest(calls), signatures)
}

// Execute authorizes the request and executes its calls in order.
//
// An error is returned only when the request is rejected. In that case
// nothing was written and the nonce was not consumed. Once authorized,
// the nonce is consumed and the failure of any call is reported in the
// receipt and by a TransactionFailed event.
func (e *Engine) Execute(ctx context.Context, db quorum.KVStore, req Request, signatures [][]byte) (*Receipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	meter := quorum.GetGasMeter(ctx)
	startGas := meter.GasConsumed()
	if err := checkGas(meter, req, len(signatures)); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	work := store.AsCacheable(db).CacheWrap()
	defer work.Discard()
	local := e.local(work)

	meter.ConsumeGas(int64(len(signatures))*sigs.VerifyCost, "signature verification")
	signers, nonce, err := e.authorize(local, req, signatures)
	if err != nil {
		return nil, err
	}
	if err := saveState(local, state{Name: e.name, Nonce: nonce + 1}); err != nil {
		return nil, err
	}

	logger := e.logger.With("nonce", nonce)
	logger.Info("request authorized", "kind", req.Kind.String(), "calls", len(req.Calls), "signers", len(signers))

	receipt := &Receipt{
		Nonce:    nonce,
		Signers:  signers,
		Outcomes: make([]Outcome, len(req.Calls)),
	}
	for i, c := range req.Calls {
		out, events, err := e.run(ctx, work, meter, i, c)
		if err != nil {
			return nil, err
		}
		if out.Failed() {
			code, reason := errors.Info(out.Err, false)
			out.Code, out.Log = code, reason
			logger.Error("call failed", "index", i, "target", c.Target.String(), "code", code, "reason", reason)
			events = []quorum.Event{quorum.TransactionFailed{
				Nonce:  nonce,
				Index:  i,
				Target: c.Target,
				Code:   code,
				Reason: reason,
			}}
		} else {
			events = append(events, quorum.TransactionExecuted{Nonce: nonce, Index: i, Target: c.Target})
		}
		receipt.Outcomes[i] = out
		receipt.Events = append(receipt.Events, events...)
	}

	if err := work.Write(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	receipt.GasUsed = meter.GasConsumed() - startGas

	if e.sink != nil {
		e.sink.Publish(ctx, e.address, receipt.Events)
	}
	return receipt, nil
}

// checkGas rejects a request whose gas cannot cover the verification of
// all signatures and the reserved budget of every call.
func checkGas(meter quorum.GasMeter, req Request, signatures int) error {
	if meter.IsInfinite() {
		return nil
	}
	need := int64(signatures) * sigs.VerifyCost
	for _, c := range req.Calls {
		need += c.requiredGas()
	}
	if have := meter.Remaining(); have < need {
		return errors.Wrapf(ErrInsufficientGas, "need %d, have %d", need, have)
	}
	return nil
}

// run executes a single call on its own cache wrap. A failing call
// returns an outcome with Err set, and the returned error is reserved for
// failures of the host store.
func (e *Engine) run(ctx context.Context, work quorum.KVCacheWrap, meter quorum.GasMeter, index int, c Call) (Outcome, []quorum.Event, error) {
	out := Outcome{Index: index, Target: c.Target}

	child := childMeter(meter, c.GasBudget)
	inner := work.CacheWrap()
	var events quorum.EventBuffer

	data, err := e.dispatch(quorum.WithGasMeter(ctx, child), inner, &events, c)

	out.GasUsed = child.GasConsumed()
	if !child.IsInfinite() && out.GasUsed > child.Limit() {
		out.GasUsed = child.Limit()
	}
	meter.ConsumeGas(out.GasUsed, "call")

	if err != nil {
		inner.Discard()
		out.Err = err
		return out, nil, nil
	}
	if err := inner.Write(); err != nil {
		return out, nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	out.Data = data
	return out, events.Events(), nil
}

// dispatch routes the call and turns any panic into an error. Running out
// of gas panics with ErrOutOfGas.
func (e *Engine) dispatch(ctx context.Context, db quorum.KVStore, em quorum.EventEmitter, c Call) (data []byte, err error) {
	defer errors.Recover(&err)
	return e.router.Dispatch(ctx, db, em, e.address, c)
}

// childMeter returns the meter of a call. A zero budget grants all the
// gas remaining in the request.
func childMeter(parent quorum.GasMeter, budget int64) quorum.GasMeter {
	if budget == 0 {
		if parent.IsInfinite() {
			return quorum.NewInfiniteGasMeter()
		}
		return quorum.NewGasMeter(parent.Remaining())
	}
	if !parent.IsInfinite() && budget > parent.Remaining() {
		budget = parent.Remaining()
	}
	return quorum.NewGasMeter(budget)
}
