package quorum

import (
	"math"

	"github.com/iov-one/quorum/errors"
)

// GasMeter tracks computation spent while processing a request. The host
// runtime provides one per request and the engine derives a child meter
// for every inner call, limited by the call's gas budget.
type GasMeter interface {
	// ConsumeGas adds given amount to the consumed total. When the limit
	// is exceeded it panics with an ErrOutOfGas error, which aborts the
	// current call. The descriptor is used for error reporting only.
	ConsumeGas(amount int64, descriptor string)

	// GasConsumed returns the total amount consumed so far.
	GasConsumed() int64

	// Limit returns the maximum amount of gas that can be consumed.
	Limit() int64

	// Remaining returns the amount of gas that can still be consumed.
	Remaining() int64

	// IsInfinite returns true if this meter never runs out of gas.
	IsInfinite() bool
}

type basicGasMeter struct {
	limit    int64
	consumed int64
}

// NewGasMeter returns a meter that panics with ErrOutOfGas once more than
// limit gas is consumed.
func NewGasMeter(limit int64) GasMeter {
	return &basicGasMeter{limit: limit}
}

func (g *basicGasMeter) ConsumeGas(amount int64, descriptor string) {
	if amount < 0 {
		panic(errors.Wrapf(errors.ErrHuman, "negative gas for %s", descriptor))
	}
	if g.consumed > math.MaxInt64-amount {
		panic(errors.Wrapf(errors.ErrOverflow, "gas consumption for %s", descriptor))
	}
	g.consumed += amount
	if g.consumed > g.limit {
		panic(errors.Wrapf(errors.ErrOutOfGas, "%s: consumed %d, limit %d", descriptor, g.consumed, g.limit))
	}
}

func (g *basicGasMeter) GasConsumed() int64 {
	return g.consumed
}

func (g *basicGasMeter) Limit() int64 {
	return g.limit
}

func (g *basicGasMeter) Remaining() int64 {
	if g.consumed >= g.limit {
		return 0
	}
	return g.limit - g.consumed
}

func (g *basicGasMeter) IsInfinite() bool {
	return false
}

type infiniteGasMeter struct {
	consumed int64
}

// NewInfiniteGasMeter returns a meter that only counts. It is used when the
// host does not meter computation.
func NewInfiniteGasMeter() GasMeter {
	return &infiniteGasMeter{}
}

func (g *infiniteGasMeter) ConsumeGas(amount int64, descriptor string) {
	if amount < 0 {
		panic(errors.Wrapf(errors.ErrHuman, "negative gas for %s", descriptor))
	}
	if g.consumed > math.MaxInt64-amount {
		panic(errors.Wrapf(errors.ErrOverflow, "gas consumption for %s", descriptor))
	}
	g.consumed += amount
}

func (g *infiniteGasMeter) GasConsumed() int64 {
	return g.consumed
}

func (g *infiniteGasMeter) Limit() int64 {
	return math.MaxInt64
}

func (g *infiniteGasMeter) Remaining() int64 {
	return math.MaxInt64 - g.consumed
}

func (g *infiniteGasMeter) IsInfinite() bool {
	return true
}
