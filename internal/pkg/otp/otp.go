package otp

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	codeMin  = 100000
	codeMax  = 999999
	codeSpan = codeMax - codeMin + 1
)

// Generator defines the contract for one-time code generation.
type Generator interface {
	// Code returns a fresh 6-digit numeric code.
	Code() (string, error)
}

// Numeric implements Generator with codes drawn uniformly from
// [100000, 999999], so every code has a leading non-zero digit and
// every value in the range is equally likely.
type Numeric struct {
	source io.Reader
}

// NewNumeric constructs a Numeric generator backed by crypto/rand.
func NewNumeric() *Numeric {
	return &Numeric{source: rand.Reader}
}

// NewNumericFrom constructs a Numeric generator backed by the given
// entropy source. Intended for tests with a deterministic reader.
func NewNumericFrom(source io.Reader) *Numeric {
	return &Numeric{source: source}
}

// Code returns a fresh 6-digit numeric code.
//
// It uses rejection sampling: raw 32-bit draws above the largest multiple
// of the code span are discarded instead of reduced modulo the span, which
// would bias low codes.
func (n *Numeric) Code() (string, error) {
	// Largest multiple of codeSpan that fits in 32 bits.
	limit := uint32((1 << 32 / uint64(codeSpan)) * uint64(codeSpan))

	var buf [4]byte
	for {
		if _, err := io.ReadFull(n.source, buf[:]); err != nil {
			return "", fmt.Errorf("otp: read entropy: %w", err)
		}

		v := binary.BigEndian.Uint32(buf[:])
		if v >= limit {
			continue
		}

		return fmt.Sprintf("%06d", codeMin+v%codeSpan), nil
	}
}
