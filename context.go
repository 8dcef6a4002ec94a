package quorum

import (
	"context"

	"github.com/tendermint/tendermint/libs/log"
)

// DefaultLogger is used by all components that have not been given a
// logger explicitly.
var DefaultLogger = log.NewNopLogger()

type contextKey int

const (
	contextKeyLogger contextKey = iota
	contextKeyGasMeter
	contextKeyHeight
)

// WithLogger sets the logger for this request.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger returns the currently set logger, or DefaultLogger if none
// was set.
func GetLogger(ctx context.Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}

// WithLogInfo accepts keyvalue pairs, and returns another context like
// this, after passing all the keyvals to the Logger.
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// WithGasMeter attaches the host gas meter to the context. Every request
// processed with the returned context is charged on this meter.
func WithGasMeter(ctx context.Context, m GasMeter) context.Context {
	return context.WithValue(ctx, contextKeyGasMeter, m)
}

// GetGasMeter returns the gas meter attached to the context. When the host
// did not provide one, a new infinite meter is returned.
func GetGasMeter(ctx context.Context) GasMeter {
	val, ok := ctx.Value(contextKeyGasMeter).(GasMeter)
	if !ok {
		return NewInfiniteGasMeter()
	}
	return val
}

// WithHeight sets the host block height for this request. The height is
// only used to annotate the event log.
func WithHeight(ctx context.Context, height int64) context.Context {
	return context.WithValue(ctx, contextKeyHeight, height)
}

// GetHeight returns the host height, if it was set.
func GetHeight(ctx context.Context) (int64, bool) {
	val, ok := ctx.Value(contextKeyHeight).(int64)
	return val, ok
}
