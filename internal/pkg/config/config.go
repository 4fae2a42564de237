package config

import (
	"io"
	"time"
)

// Config reads typed values by dotted key. Implementations return the zero
// value when a key is absent or fails conversion, so callers can layer their
// own defaults on top.
type Config interface {
	io.Closer

	// GetString retrieves the value for key as a string.
	GetString(key string) string

	// GetBool retrieves the value for key as a bool.
	GetBool(key string) bool

	// GetInt retrieves the value for key as an int.
	GetInt(key string) int

	// GetInt32 retrieves the value for key as an int32.
	GetInt32(key string) int32

	// GetInt64 retrieves the value for key as an int64.
	GetInt64(key string) int64

	// GetUint16 retrieves the value for key as a uint16.
	GetUint16(key string) uint16

	// GetFloat64 retrieves the value for key as a float64.
	GetFloat64(key string) float64

	// GetSecond retrieves the integer value for key as a duration in seconds.
	GetSecond(key string) time.Duration

	// GetMinute retrieves the integer value for key as a duration in minutes.
	GetMinute(key string) time.Duration

	// GetBinary retrieves the value for key decoded from base64.
	GetBinary(key string) []byte

	// GetArray retrieves the value for key split on commas.
	GetArray(key string) []string
}
