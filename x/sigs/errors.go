package sigs

import "github.com/iov-one/quorum/errors"

// x/sigs reserves 1110 ~ 1119.
var (
	ErrThresholdNotAchieved = errors.Register(1110, "threshold not achieved")
	ErrInvalidOwner         = errors.Register(1111, "invalid owner")
	ErrOwnerAlreadySigned   = errors.Register(1112, "owner already signed")
)
