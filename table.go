package hashsession

import (
	"math"
	"sync"

	"github.com/eapache/queue"
)

// slot is one entry of the handle table. A slot with a nil session is
// either free or reserved by a Create still in progress.
type slot struct {
	gen     uint32
	session *session
}

// table maps handles to sessions. Released slots are recycled FIFO so a
// stale handle is detected by generation mismatch for as long as possible.
//
// The mutex guards the table only; session state is owned by whichever
// caller holds the handle and is never locked here.
type table struct {
	mu       sync.RWMutex
	slots    []slot
	free     *queue.Queue // of int slot indices
	capacity int
	live     int
	closed   bool
}

func newTable(capacity int) *table {
	return &table{
		free:     queue.New(),
		capacity: capacity,
	}
}

// reserve claims a slot for a session under construction. It fails when
// the table is closed or every slot is live or retired.
func (t *table) reserve() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrClosed
	}

	if t.free.Length() > 0 {
		index := t.free.Remove().(int)
		t.live++
		return index, nil
	}

	if len(t.slots) >= t.capacity {
		return 0, ErrExhausted
	}

	t.slots = append(t.slots, slot{gen: 1})
	t.live++
	return len(t.slots) - 1, nil
}

// install binds s to a reserved slot and returns its handle. If the table
// was closed while the session was being built, the slot is given back and
// install fails with ErrClosed.
func (t *table) install(index int, s *session) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		t.vacate(index)
		return NullHandle, ErrClosed
	}

	t.slots[index].session = s
	return makeHandle(index, t.slots[index].gen), nil
}

// unreserve returns a reserved slot that never received a session.
func (t *table) unreserve(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.live--
	t.free.Add(index)
}

// lookup returns the session behind h, or nil if h is not live.
func (t *table) lookup(h Handle) *session {
	index, gen, ok := h.split()
	if !ok {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if index >= len(t.slots) {
		return nil
	}
	sl := &t.slots[index]
	if sl.gen != gen || sl.session == nil {
		return nil
	}
	return sl.session
}

// remove unbinds the session behind h and invalidates h permanently.
// It returns nil if h is not live.
func (t *table) remove(h Handle) *session {
	index, gen, ok := h.split()
	if !ok {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if index >= len(t.slots) {
		return nil
	}
	sl := &t.slots[index]
	if sl.gen != gen || sl.session == nil {
		return nil
	}

	s := sl.session
	t.vacate(index)
	return s
}

// vacate clears a slot and bumps its generation. A slot whose generation
// would wrap is retired rather than recycled, since a wrapped generation
// could resurrect an old handle. Must be called with mu held.
func (t *table) vacate(index int) {
	sl := &t.slots[index]
	sl.session = nil
	t.live--

	if sl.gen == math.MaxUint32 {
		return
	}
	sl.gen++
	t.free.Add(index)
}

// drain removes every live session and closes the table.
func (t *table) drain() []*session {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true

	var sessions []*session
	for i := range t.slots {
		if t.slots[i].session != nil {
			sessions = append(sessions, t.slots[i].session)
			t.vacate(i)
		}
	}
	return sessions
}

// len returns the number of live (or reserved) sessions.
func (t *table) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}
