package ledger

import "github.com/iov-one/quorum/errors"

// x/ledger reserves 1130 ~ 1139.
var (
	ErrInsufficientFunds = errors.Register(1130, "insufficient funds")
	ErrInvalidAccount    = errors.Register(1131, "invalid account")
)
