package otp

import (
	"encoding/binary"
	"errors"
	"io"
	"math/rand"
	"strconv"
	"testing"
)

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestNumeric_Code_Format(t *testing.T) {
	// Arrange
	gen := NewNumeric()

	// Act & Assert
	for range 1000 {
		code, err := gen.Code()
		if err != nil {
			t.Fatalf("Code() error = %v", err)
		}

		if len(code) != 6 {
			t.Fatalf("Code() = %q, want 6 digits", code)
		}

		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("Code() = %q, not numeric: %v", code, err)
		}

		if n < 100000 || n > 999999 {
			t.Fatalf("Code() = %d, want within [100000, 999999]", n)
		}
	}
}

func TestNumeric_Code_Uniformity(t *testing.T) {
	// Arrange: a seeded source keeps the distribution check deterministic.
	gen := NewNumericFrom(rand.New(rand.NewSource(1)))

	const draws = 10000
	buckets := make(map[byte]float64, 10)

	// Act: bucket by final digit, which cycles through all ten values.
	for range draws {
		code, err := gen.Code()
		if err != nil {
			t.Fatalf("Code() error = %v", err)
		}
		buckets[code[5]]++
	}

	// Assert: chi-square against the uniform expectation. Critical value for
	// 9 degrees of freedom at p=0.001 is 27.88.
	expected := float64(draws) / 10
	chi := 0.0
	for d := byte('0'); d <= '9'; d++ {
		diff := buckets[d] - expected
		chi += diff * diff / expected
	}

	if chi > 27.88 {
		t.Fatalf("chi-square = %.2f, want <= 27.88 (distribution not uniform)", chi)
	}
}

func TestNumeric_Code_RejectsOutOfRangeDraws(t *testing.T) {
	// Arrange: first draw sits above the rejection limit, second is valid.
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], 0xFFFFFFFF)
	binary.BigEndian.PutUint32(buf[4:8], 0)
	gen := NewNumericFrom(newByteSource(buf))

	// Act
	code, err := gen.Code()

	// Assert
	if err != nil {
		t.Fatalf("Code() error = %v", err)
	}
	if code != "100000" {
		t.Fatalf("Code() = %q, want %q", code, "100000")
	}
}

func TestNumeric_Code_EntropyFailure(t *testing.T) {
	// Arrange
	gen := NewNumericFrom(errReader{})

	// Act
	_, err := gen.Code()

	// Assert
	if err == nil {
		t.Fatal("Code() error = nil, want entropy error")
	}
}

func newByteSource(b []byte) io.Reader {
	return &byteSource{buf: b}
}

type byteSource struct {
	buf []byte
	off int
}

func (s *byteSource) Read(p []byte) (int, error) {
	if s.off >= len(s.buf) {
		return 0, io.EOF
	}
	n := copy(p, s.buf[s.off:])
	s.off += n
	return n, nil
}
