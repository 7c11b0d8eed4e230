// Package hashsession manages streaming hash computations behind opaque
// integer handles, for callers on the far side of a foreign-call boundary
// that can pass only integers and byte buffers.
//
// A session is created for one digest size, fed any number of chunks and
// finalized into a caller-owned buffer, then released explicitly. Every
// entry point is total: misuse (a null, stale or released handle, a short
// output buffer) degrades to a no-op instead of a panic, and is reported
// only through the Manager.LastError diagnostic channel.
//
// Example usage:
//
//	mgr, err := hashsession.New(hashsession.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mgr.Close()
//
//	h := mgr.Create(32)
//	mgr.Absorb(h, []byte("block "))
//	mgr.Absorb(h, []byte("data"))
//	digest := make([]byte, 32)
//	mgr.Finalize(h, digest)
//	mgr.Release(h)
package hashsession

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultSize is the digest size used by CreateDefault unless
	// configured otherwise (512 bits).
	DefaultSize = 64

	// DefaultMaxSessions bounds the number of simultaneously live sessions.
	DefaultMaxSessions = 4096

	// DefaultMemoryPages is the linear memory size, in 64 KiB pages, of a
	// boundary module.
	DefaultMemoryPages = 16

	// maxSlots is the largest slot count a handle can index.
	maxSlots = math.MaxUint32 - 1

	// maxMemoryPages keeps every address inside a uint32.
	maxMemoryPages = math.MaxUint16
)

// Config specifies the configuration for a Manager.
type Config struct {
	// Algorithm selects the hash construction for every session.
	Algorithm Algorithm `yaml:"algorithm"`

	// DefaultSize is the digest size, in bytes, used by CreateDefault.
	DefaultSize int `yaml:"default_size"`

	// MaxSessions is the session slot budget. Create fails with the null
	// handle once this many sessions are live.
	MaxSessions int `yaml:"max_sessions"`

	// MemoryPages sizes the linear memory of a boundary module built on
	// this configuration (see package abi). Unused by the Manager itself.
	MemoryPages int `yaml:"memory_pages"`

	// Log configures the structured logger.
	Log LogConfig `yaml:"log"`
}

// DefaultConfig returns a Skein configuration with a 512-bit default
// digest.
func DefaultConfig() Config {
	return Config{
		Algorithm:   Skein,
		DefaultSize: DefaultSize,
		MaxSessions: DefaultMaxSessions,
		MemoryPages: DefaultMemoryPages,
		Log:         LogConfig{Level: "info"},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !c.Algorithm.Valid() {
		return fmt.Errorf("hashsession: invalid algorithm: %v", c.Algorithm)
	}

	if c.MaxSessions <= 0 || int64(c.MaxSessions) > maxSlots {
		return fmt.Errorf("hashsession: max sessions out of range: %d", c.MaxSessions)
	}

	if c.MemoryPages <= 0 || c.MemoryPages > maxMemoryPages {
		return fmt.Errorf("hashsession: memory pages out of range: %d", c.MemoryPages)
	}

	if c.DefaultSize <= 0 {
		return errors.New("hashsession: default size must be positive")
	}

	// The default size must be one the engine accepts
	factory, err := NewEngineFactory(c.Algorithm)
	if err != nil {
		return err
	}
	if err := factory().Initialize(c.DefaultSize); err != nil {
		return fmt.Errorf("hashsession: default size: %w", err)
	}

	if _, err := parseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("hashsession: %w", err)
	}

	return nil
}
