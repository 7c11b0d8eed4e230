package hashsession

import "sync"

// pooledDigestSize is the capacity of pooled digest buffers. Larger
// digests are allocated directly.
const pooledDigestSize = 64

// digestPool recycles the per-session digest buffers cached on finalize.
var digestPool = sync.Pool{
	New: func() interface{} {
		return new([pooledDigestSize]byte)
	},
}

// allocateDigest returns a zeroed buffer of exactly size bytes.
func allocateDigest(size int) []byte {
	if size > pooledDigestSize {
		return make([]byte, size)
	}
	buf := digestPool.Get().(*[pooledDigestSize]byte)
	return buf[:size]
}

// releaseDigest scrubs buf and returns it to the pool if it came from
// there.
func releaseDigest(buf []byte) {
	if buf == nil {
		return
	}
	zeroBytes(buf)
	if cap(buf) == pooledDigestSize {
		digestPool.Put((*[pooledDigestSize]byte)(buf[:pooledDigestSize]))
	}
}

// zeroBytes clears a byte slice securely.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
