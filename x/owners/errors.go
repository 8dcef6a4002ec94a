package owners

import "github.com/iov-one/quorum/errors"

// x/owners reserves 1100 ~ 1109.
var (
	ErrDuplicateOwner     = errors.Register(1100, "duplicate owner")
	ErrNotAnOwner         = errors.Register(1101, "not an owner")
	ErrInvalidThreshold   = errors.Register(1102, "invalid threshold")
	ErrThresholdViolation = errors.Register(1103, "threshold violation")
	ErrInvalidIdentity    = errors.Register(1104, "invalid identity")
	ErrRegistryFull       = errors.Register(1105, "registry full")
	ErrNotInitialized     = errors.Register(1106, "registry not initialized")
)
