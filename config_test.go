package hashsession

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hashsession.yaml")
		require.NoError(t, os.WriteFile(path, []byte("algorithm: blake3\nmax_sessions: 8\n"), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, Blake3, cfg.Algorithm)
		assert.Equal(t, 8, cfg.MaxSessions)
		assert.Equal(t, DefaultSize, cfg.DefaultSize)
		assert.Equal(t, DefaultMemoryPages, cfg.MemoryPages)
	})

	t.Run("full file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hashsession.yaml")
		data := []byte(`algorithm: SHA3
default_size: 32
max_sessions: 16
memory_pages: 2
log:
  level: debug
  file: hashsession.log
  file_max_size_mb: 5
`)
		require.NoError(t, os.WriteFile(path, data, 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, Config{
			Algorithm:   SHA3,
			DefaultSize: 32,
			MaxSessions: 16,
			MemoryPages: 2,
			Log: LogConfig{
				Level:         "debug",
				File:          "hashsession.log",
				FileMaxSizeMB: 5,
			},
		}, cfg)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hashsession.yaml")
		require.NoError(t, os.WriteFile(path, []byte("algorithm: md5\n"), 0o644))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hashsession.yaml")
		require.NoError(t, os.WriteFile(path, []byte("algorithm: keccak\ndefault_size: 20\n"), 0o644))

		_, err := LoadConfig(path)
		assert.ErrorIs(t, err, ErrUnsupportedSize)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hashsession.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_sessions: [1, 2\n"), 0o644))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestWriteConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashsession.yaml")

	cfg := DefaultConfig()
	cfg.Algorithm = Blake2bLong
	cfg.DefaultSize = 128

	require.NoError(t, WriteConfig(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "algorithm: blake2b-long")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
