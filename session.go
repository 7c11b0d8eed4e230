package hashsession

import "fmt"

// Phase is the lifecycle phase of a session.
type Phase int

const (
	// PhaseCreated is a session that has absorbed nothing yet.
	PhaseCreated Phase = iota

	// PhaseAccepting is a session that has absorbed at least one
	// non-empty chunk.
	PhaseAccepting

	// PhaseFinalized is a session whose digest has been produced. It
	// rejects further input and replays the same digest on Finalize.
	PhaseFinalized

	// PhaseReleased is terminal. Invalid handles also report it.
	PhaseReleased
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "Created"
	case PhaseAccepting:
		return "Accepting"
	case PhaseFinalized:
		return "Finalized"
	case PhaseReleased:
		return "Released"
	default:
		return fmt.Sprintf("Phase(%d)", p)
	}
}

// session is the state behind one handle.
type session struct {
	size   int
	engine Engine
	phase  Phase
	digest []byte // set on first finalize
}

func newSession(size int, engine Engine) *session {
	return &session{
		size:   size,
		engine: engine,
		phase:  PhaseCreated,
	}
}

// absorb feeds p to the engine. A finalized session rejects input.
func (s *session) absorb(p []byte) error {
	switch s.phase {
	case PhaseReleased:
		return ErrInvalidHandle
	case PhaseFinalized:
		return ErrFinalized
	}
	if len(p) == 0 {
		return nil
	}
	s.engine.Update(p)
	s.phase = PhaseAccepting
	return nil
}

// finalize writes the digest into out[:size]. The engine is finalized
// once; later calls copy the cached digest.
func (s *session) finalize(out []byte) error {
	if s.phase == PhaseReleased {
		return ErrInvalidHandle
	}
	if len(out) < s.size {
		return fmt.Errorf("%w: %d < %d", ErrShortBuffer, len(out), s.size)
	}

	if s.phase != PhaseFinalized {
		s.digest = allocateDigest(s.size)
		s.engine.Finalize(s.digest)
		s.phase = PhaseFinalized
	}

	copy(out[:s.size], s.digest)
	return nil
}

// release scrubs the cached digest and marks the session released. The
// engine stays in place so a caller still holding the session sees
// ErrInvalidHandle rather than a nil engine.
func (s *session) release() {
	releaseDigest(s.digest)
	s.digest = nil
	s.phase = PhaseReleased
}
