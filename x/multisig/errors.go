package multisig

import "github.com/iov-one/quorum/errors"

// x/multisig reserves 1120 ~ 1129.
var (
	ErrInsufficientGas = errors.Register(1120, "insufficient gas")
	ErrOnlySelf        = errors.Register(1121, "only this instance can call this method")
	ErrInvalidCall     = errors.Register(1122, "invalid call")
	ErrUnknownMethod   = errors.Register(1123, "unknown method")
	ErrNoContract      = errors.Register(1124, "no contract at target")
)
