package util

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string using crypto/rand entropy.
func NewULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// RandomToken returns n lowercase characters taken from the random part of
// a fresh ULID. n is capped at 16, the length of the ULID entropy segment.
func RandomToken(n int) string {
	if n > 16 {
		n = 16
	}
	if n <= 0 {
		return ""
	}
	id := NewULID()
	return strings.ToLower(id[len(id)-n:])
}

// NewRequestID returns an identifier for an inbound request.
func NewRequestID() string {
	return "req_" + NewULID()
}
