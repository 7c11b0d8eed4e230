package hashsession

import (
	"fmt"

	"github.com/opd-ai/go-hashsession/internal"
)

// Engine is the hash construction a session drives. The manager never looks
// inside it; it only calls Initialize once, Update zero or more times and
// Finalize at most once.
type Engine interface {
	// Initialize prepares the accumulator for digests of size bytes.
	// It returns an error wrapping ErrUnsupportedSize for size classes the
	// engine does not implement.
	Initialize(size int) error

	// Update folds p into the accumulator. Any chunking of the input must
	// produce the same result as a single call with the concatenation.
	Update(p []byte)

	// Finalize writes exactly size bytes of digest into out.
	Finalize(out []byte)
}

// EngineFactory returns a new, uninitialized Engine.
type EngineFactory func() Engine

// NewEngineFactory returns the factory for one of the built-in algorithms.
func NewEngineFactory(a Algorithm) (EngineFactory, error) {
	newStream := a.streamConstructor()
	if newStream == nil {
		return nil, fmt.Errorf("hashsession: invalid algorithm: %v", a)
	}
	return func() Engine {
		return &streamEngine{algorithm: a, newStream: newStream}
	}, nil
}

// streamEngine adapts an internal.Stream primitive to the Engine contract.
type streamEngine struct {
	algorithm Algorithm
	newStream func(size int) (internal.Stream, error)
	stream    internal.Stream
}

func (e *streamEngine) Initialize(size int) error {
	s, err := e.newStream(size)
	if err != nil {
		return fmt.Errorf("%w: %v %d bytes: %v", ErrUnsupportedSize, e.algorithm, size, err)
	}
	e.stream = s
	return nil
}

func (e *streamEngine) Update(p []byte) {
	if e.stream == nil {
		return
	}
	e.stream.Write(p)
}

func (e *streamEngine) Finalize(out []byte) {
	if e.stream == nil {
		return
	}
	e.stream.Sum(out)
}
