// Package uid provides identifier generators: time-ordered int64 snowflakes
// for entity keys, UUIDs for correlation IDs, and long random object IDs for
// values that must be unguessable, like session identifiers.
package uid

// StringID generates string identifiers.
type StringID interface {
	// Generate returns a new string identifier.
	Generate() string
}

// NumberID generates int64 identifiers.
type NumberID interface {
	// Generate returns a new int64 identifier.
	Generate() int64
}
