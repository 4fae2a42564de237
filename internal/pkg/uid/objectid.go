package uid

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// ErrStableNodeIdentityUnavailable indicates no stable node identity is available.
var ErrStableNodeIdentityUnavailable = errors.New("uid: cannot determine stable node identity (machine-id/hostname unavailable)")

// ObjectIDGenerator produces 32-byte IDs rendered as hex. The layout is a
// millisecond timestamp, a node ID derived from the machine identity, the
// pid, a counter, and random padding, so concurrent processes on different
// hosts cannot collide.
type ObjectIDGenerator struct {
	nodeID  [6]byte
	pid     uint16
	counter uint32
}

// NewObjectIDGenerator creates a generator bound to this host and process.
func NewObjectIDGenerator() (*ObjectIDGenerator, error) {
	src, err := stableNodeIdentity()
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(src))

	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}

	g := &ObjectIDGenerator{
		pid:     uint16(os.Getpid()),
		counter: binary.BigEndian.Uint32(seed[:]),
	}
	copy(g.nodeID[:], sum[:6])
	return g, nil
}

// stableNodeIdentity prefers /etc/machine-id and falls back to the hostname.
func stableNodeIdentity() (string, error) {
	if b, err := os.ReadFile("/etc/machine-id"); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s, nil
		}
	}
	if h, err := os.Hostname(); err == nil {
		if h = strings.TrimSpace(h); h != "" {
			return h, nil
		}
	}
	return "", ErrStableNodeIdentityUnavailable
}

// Generate returns a 64-char hex string.
func (g *ObjectIDGenerator) Generate() string {
	var raw [32]byte

	binary.BigEndian.PutUint64(raw[:8], uint64(time.Now().UnixMilli())<<16)
	copy(raw[6:12], g.nodeID[:])
	binary.BigEndian.PutUint16(raw[12:14], g.pid)
	binary.BigEndian.PutUint32(raw[14:18], atomic.AddUint32(&g.counter, 1))

	// Random tail, with a deterministic digest of the prefix if the
	// entropy source ever fails.
	if _, err := rand.Read(raw[18:]); err != nil {
		sum := sha256.Sum256(raw[:18])
		copy(raw[18:], sum[:14])
	}

	var out [64]byte
	hex.Encode(out[:], raw[:])
	return string(out[:])
}
