// Package abi exposes a hashsession.Manager through a foreign-call style
// surface: every argument and result is an integer, and byte buffers are
// addresses into a linear memory owned by the module.
//
// The host drives it the way it would drive a sandboxed module: Malloc a
// buffer, Write the input into it, call Update with the address, Malloc a
// digest buffer for Final, Read the digest back, then Free both buffers
// and Cleanup the session.
package abi

import (
	"errors"
	"sync"

	"github.com/opd-ai/go-hashsession"
)

// ErrOutOfBounds is recorded when a pointer range leaves linear memory.
var ErrOutOfBounds = errors.New("abi: pointer range out of bounds")

// Status codes returned by LastError.
const (
	StatusOK int32 = iota
	StatusInvalidHandle
	StatusFinalized
	StatusShortBuffer
	StatusExhausted
	StatusUnsupportedSize
	StatusOutOfBounds
	StatusClosed
	StatusUnknown
)

// Module is one instance of the boundary: a manager plus the linear
// memory the host exchanges bytes through.
type Module struct {
	mgr *hashsession.Manager
	mem *Memory

	mu      sync.Mutex
	lastErr error
}

// New creates a module with config.MemoryPages of linear memory.
func New(config hashsession.Config, opts ...hashsession.Option) (*Module, error) {
	mgr, err := hashsession.New(config, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{
		mgr: mgr,
		mem: NewMemory(config.MemoryPages),
	}, nil
}

// Manager returns the session manager behind the module.
func (m *Module) Manager() *hashsession.Manager {
	return m.mgr
}

// Memory returns the module's linear memory.
func (m *Module) Memory() *Memory {
	return m.mem
}

// Malloc reserves n bytes of linear memory; 0 means failure.
func (m *Module) Malloc(n uint32) uint32 {
	return m.mem.Malloc(n)
}

// Free releases a block returned by Malloc.
func (m *Module) Free(ptr uint32) {
	m.mem.Free(ptr)
}

// Create starts a session with a size-byte digest and returns its handle,
// or 0 on failure.
func (m *Module) Create(size int32) uint64 {
	h, err := m.mgr.TryCreate(int(size))
	m.record(err)
	return uint64(h)
}

// Update absorbs the n bytes at ptr into the session.
func (m *Module) Update(handle uint64, ptr, n uint32) {
	h := hashsession.Handle(handle)
	var data []byte
	// Only a session that still accepts input has its range looked at
	if phase := m.mgr.Phase(h); n > 0 && (phase == hashsession.PhaseCreated || phase == hashsession.PhaseAccepting) {
		var ok bool
		data, ok = m.mem.Span(ptr, n)
		if !ok {
			m.record(ErrOutOfBounds)
			return
		}
	}

	m.record(m.mgr.TryAbsorb(h, data))
}

// Final writes the session's digest to ptr. The buffer at ptr must hold
// the digest size given to Create.
func (m *Module) Final(handle uint64, ptr uint32) {
	h := hashsession.Handle(handle)
	size := m.mgr.Size(h)
	if size == 0 {
		// Let the manager reject the handle
		m.record(m.mgr.TryFinalize(h, nil))
		return
	}

	out, ok := m.mem.Span(ptr, uint32(size))
	if !ok {
		m.record(ErrOutOfBounds)
		return
	}
	m.record(m.mgr.TryFinalize(h, out))
}

// Cleanup releases the session. Cleaning up 0 or a released handle is a
// no-op.
func (m *Module) Cleanup(handle uint64) {
	m.record(m.mgr.TryRelease(hashsession.Handle(handle)))
}

// LastError returns the status of the most recent entry point call on the
// module. Each status comes from its own call, but the slot is shared by
// the whole module: a host driving one module from several threads reads
// whichever call finished last.
func (m *Module) LastError() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return statusOf(m.lastErr)
}

// Close releases every session the host leaked.
func (m *Module) Close() error {
	return m.mgr.Close()
}

func (m *Module) record(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func statusOf(err error) int32 {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, hashsession.ErrInvalidHandle):
		return StatusInvalidHandle
	case errors.Is(err, hashsession.ErrFinalized):
		return StatusFinalized
	case errors.Is(err, hashsession.ErrShortBuffer):
		return StatusShortBuffer
	case errors.Is(err, hashsession.ErrExhausted):
		return StatusExhausted
	case errors.Is(err, hashsession.ErrUnsupportedSize):
		return StatusUnsupportedSize
	case errors.Is(err, ErrOutOfBounds):
		return StatusOutOfBounds
	case errors.Is(err, hashsession.ErrClosed):
		return StatusClosed
	default:
		return StatusUnknown
	}
}
