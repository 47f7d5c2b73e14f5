package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and callers decide what they mean for the operation at hand:
// - ErrNotFound: no entry exists for the key
// - ErrCorrupted: an entry exists but cannot be read back
// - ErrUnavailable: the backing service or network cannot be reached
// - ErrInvalidState: the component is closed or misconfigured
var (
	ErrNotFound     = errors.New("not found")
	ErrCorrupted    = errors.New("corrupted")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
