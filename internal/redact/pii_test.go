package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactPII_EmailAndPhone(t *testing.T) {
	got := RedactPII("Email me at a@b.com or call 555-123-4567")
	assert.Equal(t, "Email me at [REDACTED_EMAIL] or call [REDACTED_PHONE]", got)
}

func TestRedactEmails(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "write to jane@example.com today", "write to [REDACTED_EMAIL] today"},
		{"plus and dots", "jane.doe+notes@mail.example.co.uk", "[REDACTED_EMAIL]"},
		{"two addresses", "a@b.io, c@d.org", "[REDACTED_EMAIL], [REDACTED_EMAIL]"},
		{"no address", "at the office", "at the office"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactEmails(tt.in))
		})
	}
}

func TestRedactPhones(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dashes", "call 555-123-4567", "call [REDACTED_PHONE]"},
		{"dots", "call 555.123.4567 now", "call [REDACTED_PHONE] now"},
		{"spaces", "call 555 123 4567", "call [REDACTED_PHONE]"},
		{"parentheses", "call (555) 123-4567", "call [REDACTED_PHONE]"},
		{"country code", "call 1-800-555-1234", "call [REDACTED_PHONE]"},
		{"international", "ring +44 20 7946 0958 please", "ring [REDACTED_PHONE] please"},
		{"bare digits", "id 5551234567", "id [REDACTED_PHONE]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactPhones(tt.in))
		})
	}
}

func TestRedactPhones_LeavesShortNumbers(t *testing.T) {
	inputs := []string{
		"In 2023 the course had 150 students.",
		"Room 101, extension 4321.",
		"The war lasted from 1939-1945.",
		"The class meets 3 times a week for 50 minutes.",
	}
	for _, in := range inputs {
		assert.Equal(t, in, RedactPhones(in), in)
	}
}

func TestRedactPII_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RedactPII(""))
}

func TestContainsPII(t *testing.T) {
	assert.True(t, ContainsPII("mail a@b.com"))
	assert.True(t, ContainsPII("phone 555-123-4567"))
	assert.False(t, ContainsPII("nothing to see in 2024"))
}

func TestGetPIIStats(t *testing.T) {
	stats := GetPIIStats("a@b.com, c@d.com and 555-123-4567")
	assert.Equal(t, Stats{Emails: 2, Phones: 1}, stats)

	assert.Equal(t, Stats{}, GetPIIStats(""))
}
