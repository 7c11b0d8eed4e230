package hashsession

import "errors"

// Diagnostic errors reported through Manager.LastError. None of them is ever
// returned from Create, Absorb, Finalize or Release; those stay silent.
var (
	// ErrInvalidHandle is recorded when a call names a handle that was never
	// issued or has already been released.
	ErrInvalidHandle = errors.New("hashsession: invalid handle")

	// ErrFinalized is recorded when Absorb is called on a finalized session.
	ErrFinalized = errors.New("hashsession: session already finalized")

	// ErrShortBuffer is recorded when Finalize is given an output buffer
	// smaller than the session's digest size.
	ErrShortBuffer = errors.New("hashsession: output buffer shorter than digest size")

	// ErrExhausted is recorded when Create cannot allocate a session slot.
	ErrExhausted = errors.New("hashsession: session table exhausted")

	// ErrUnsupportedSize is recorded when the engine rejects a size class.
	ErrUnsupportedSize = errors.New("hashsession: unsupported digest size")

	// ErrClosed is recorded when Create is called after Close.
	ErrClosed = errors.New("hashsession: manager closed")
)

// errorReason maps a diagnostic error to a short metric label.
func errorReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidHandle):
		return "invalid_handle"
	case errors.Is(err, ErrFinalized):
		return "finalized"
	case errors.Is(err, ErrShortBuffer):
		return "short_buffer"
	case errors.Is(err, ErrExhausted):
		return "exhausted"
	case errors.Is(err, ErrUnsupportedSize):
		return "unsupported_size"
	case errors.Is(err, ErrClosed):
		return "closed"
	default:
		return "other"
	}
}
