package hashsession

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Manager owns the sessions behind a set of handles.
//
// Create, Absorb, Finalize and Release never panic and never return
// errors: a call that cannot be honoured is a no-op and the reason is kept
// for LastError. Calls on distinct handles may run concurrently; calls on
// the same handle, and Close, must be serialized by the caller.
type Manager struct {
	config    Config
	newEngine EngineFactory
	table     *table
	log       zerolog.Logger
	logCloser io.Closer
	metrics   *Metrics

	errMu   sync.Mutex
	lastErr error
}

// Option customizes a Manager.
type Option func(*options)

type options struct {
	logger     *zerolog.Logger
	registerer prometheus.Registerer
	engine     EngineFactory
}

// WithLogger replaces the logger built from Config.Log.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// WithRegisterer registers the manager's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithEngine replaces the built-in engine of Config.Algorithm.
func WithEngine(f EngineFactory) Option {
	return func(o *options) { o.engine = f }
}

// New creates a Manager with the specified configuration.
// The returned manager should be closed with Close to release any sessions
// the caller leaked.
func New(config Config, opts ...Option) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		config:    config,
		newEngine: o.engine,
		table:     newTable(config.MaxSessions),
		metrics:   NewMetrics(config.Algorithm),
	}

	if m.newEngine == nil {
		var err error
		m.newEngine, err = NewEngineFactory(config.Algorithm)
		if err != nil {
			return nil, err
		}
	}

	if o.logger != nil {
		m.log = *o.logger
	} else {
		logger, closer, err := NewLogger(config.Log)
		if err != nil {
			return nil, fmt.Errorf("hashsession: logger initialization: %w", err)
		}
		m.log, m.logCloser = logger, closer
	}

	if o.registerer != nil {
		if err := m.metrics.Register(o.registerer); err != nil {
			m.closeLog()
			return nil, fmt.Errorf("hashsession: metrics registration: %w", err)
		}
	}

	m.log.Debug().
		Stringer("algorithm", config.Algorithm).
		Int("max_sessions", config.MaxSessions).
		Msg("session manager ready")

	return m, nil
}

// Config returns the manager's configuration.
func (m *Manager) Config() Config {
	return m.config
}

// Metrics returns the manager's collectors.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// Create starts a session producing size-byte digests. It returns
// NullHandle if no session slot is available or the engine does not
// support size; in the first case the engine is never initialized.
func (m *Manager) Create(size int) Handle {
	h, err := m.TryCreate(size)
	if err != nil {
		m.setError(err)
	}
	return h
}

// TryCreate is Create reporting failure as an error instead of through
// LastError.
func (m *Manager) TryCreate(size int) (Handle, error) {
	h, err := m.create(size)
	if err != nil {
		m.metrics.CreateFailures.WithLabelValues(errorReason(err)).Inc()

		ev := m.log.Warn()
		if errors.Is(err, ErrExhausted) {
			ev = m.log.Error()
		}
		ev.Int("size", size).Err(err).Msg("create failed")
		return NullHandle, err
	}
	return h, nil
}

// CreateDefault starts a session with Config.DefaultSize.
func (m *Manager) CreateDefault() Handle {
	return m.Create(m.config.DefaultSize)
}

func (m *Manager) create(size int) (Handle, error) {
	index, err := m.table.reserve()
	if err != nil {
		return NullHandle, err
	}

	engine := m.newEngine()
	if err := engine.Initialize(size); err != nil {
		m.table.unreserve(index)
		return NullHandle, err
	}

	h, err := m.table.install(index, newSession(size, engine))
	if err != nil {
		return NullHandle, err
	}

	m.metrics.Created.Inc()
	m.metrics.Live.Inc()
	m.log.Debug().Stringer("handle", h).Int("size", size).Msg("session created")
	return h, nil
}

// Absorb feeds data into the session. Empty data is a no-op. Invalid
// handles and finalized sessions are ignored.
func (m *Manager) Absorb(h Handle, data []byte) {
	if err := m.TryAbsorb(h, data); err != nil {
		m.setError(err)
	}
}

// TryAbsorb is Absorb returning the reason an ignored call was ignored.
func (m *Manager) TryAbsorb(h Handle, data []byte) error {
	return m.misuse("absorb", h, m.absorb(h, data))
}

func (m *Manager) absorb(h Handle, data []byte) error {
	s := m.table.lookup(h)
	if s == nil {
		return ErrInvalidHandle
	}
	return s.absorb(data)
}

// Finalize writes the session's digest into out, which must hold at least
// Size(h) bytes; only the first Size(h) bytes are written. out is borrowed
// for the duration of the call. Finalizing again replays the same digest.
// Invalid handles and short buffers leave out untouched.
func (m *Manager) Finalize(h Handle, out []byte) {
	if err := m.TryFinalize(h, out); err != nil {
		m.setError(err)
	}
}

// TryFinalize is Finalize returning the reason an ignored call was ignored.
func (m *Manager) TryFinalize(h Handle, out []byte) error {
	return m.misuse("finalize", h, m.finalize(h, out))
}

func (m *Manager) finalize(h Handle, out []byte) error {
	s := m.table.lookup(h)
	if s == nil {
		return ErrInvalidHandle
	}
	return s.finalize(out)
}

// Release destroys the session and permanently invalidates h. Releasing
// an invalid or already released handle is a no-op.
func (m *Manager) Release(h Handle) {
	if err := m.TryRelease(h); err != nil {
		m.setError(err)
	}
}

// TryRelease is Release returning the reason an ignored call was ignored.
func (m *Manager) TryRelease(h Handle) error {
	return m.misuse("release", h, m.release(h))
}

func (m *Manager) release(h Handle) error {
	s := m.table.remove(h)
	if s == nil {
		return ErrInvalidHandle
	}
	s.release()

	m.metrics.Released.Inc()
	m.metrics.Live.Dec()
	m.log.Debug().Stringer("handle", h).Msg("session released")
	return nil
}

// Size returns the digest size of a live session, or 0 for an invalid
// handle.
func (m *Manager) Size(h Handle) int {
	if s := m.table.lookup(h); s != nil {
		return s.size
	}
	return 0
}

// Phase returns the lifecycle phase of h. Invalid handles report
// PhaseReleased.
func (m *Manager) Phase(h Handle) Phase {
	if s := m.table.lookup(h); s != nil {
		return s.phase
	}
	return PhaseReleased
}

// Live returns the number of sessions created and not yet released.
func (m *Manager) Live() int {
	return m.table.len()
}

// Digest hashes data in one session of size bytes and releases it.
// Unlike Create it reports failure as an error.
func (m *Manager) Digest(size int, data []byte) ([]byte, error) {
	h, err := m.create(size)
	if err != nil {
		return nil, err
	}
	defer m.release(h)

	if err := m.absorb(h, data); err != nil {
		return nil, err
	}

	out := make([]byte, size)
	if err := m.finalize(h, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DigestHex is Digest encoded as lowercase hexadecimal.
func (m *Manager) DigestHex(size int, data []byte) (string, error) {
	out, err := m.Digest(size, data)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(out), nil
}

// LastError returns the reason the most recent ignored call was ignored,
// or nil if no call has been ignored since the last ClearError.
func (m *Manager) LastError() error {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	return m.lastErr
}

// ClearError resets LastError to nil.
func (m *Manager) ClearError() {
	m.setError(nil)
}

func (m *Manager) setError(err error) {
	m.errMu.Lock()
	m.lastErr = err
	m.errMu.Unlock()
}

// misuse counts and logs an ignored call. It returns err unchanged.
func (m *Manager) misuse(op string, h Handle, err error) error {
	if err == nil {
		return nil
	}
	m.metrics.Misuse.WithLabelValues(op, errorReason(err)).Inc()
	m.log.Warn().Str("op", op).Stringer("handle", h).Err(err).Msg("call ignored")
	return err
}

// Close releases every live session. Afterwards Create returns NullHandle
// and every other call is a no-op. Close is idempotent.
//
// Close must not run concurrently with other calls on the manager: a call
// that already looked up its session races with the release of that
// session's digest.
func (m *Manager) Close() error {
	sessions := m.table.drain()
	for _, s := range sessions {
		s.release()
		m.metrics.Released.Inc()
		m.metrics.Live.Dec()
	}

	if len(sessions) > 0 {
		m.log.Info().Int("sessions", len(sessions)).Msg("released leaked sessions on close")
	}

	return m.closeLog()
}

func (m *Manager) closeLog() error {
	if m.logCloser == nil {
		return nil
	}
	err := m.logCloser.Close()
	m.logCloser = nil
	return err
}
