package factory

import "github.com/iov-one/quorum/errors"

// x/factory reserves 1140 ~ 1149.
var (
	ErrUnknownInstance = errors.Register(1140, "unknown instance")
)
