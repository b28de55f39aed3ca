// Package redact detects and masks e-mail addresses and phone numbers.
package redact

import "regexp"

const (
	EmailToken = "[REDACTED_EMAIL]"
	PhoneToken = "[REDACTED_PHONE]"
)

var (
	emailRe = regexp.MustCompile(`\w[\w.+-]*@[\w-]+(?:\.[\w-]+)*\.[A-Za-z]{2,}`)

	// International numbers must start with '+'. Domestic numbers need the
	// 3-3-4 digit grouping, so years and short codes never match.
	phoneRe = regexp.MustCompile(
		`\+\d{1,3}(?:[-. ]?\(?\d\)?){7,12}` +
			`|(?:\b\d{1,3}[-. ])?(?:\(\d{3}\)|\b\d{3})[-. ]?\d{3}[-. ]?\d{4}\b`,
	)
)

// Stats counts PII occurrences found in a text.
type Stats struct {
	Emails int `json:"emails"`
	Phones int `json:"phones"`
}

// RedactEmails replaces every e-mail address with EmailToken.
func RedactEmails(text string) string {
	return emailRe.ReplaceAllString(text, EmailToken)
}

// RedactPhones replaces every phone number with PhoneToken.
func RedactPhones(text string) string {
	return phoneRe.ReplaceAllString(text, PhoneToken)
}

// RedactPII masks e-mails first, then phone numbers, so digits inside an
// address are removed together with the address.
func RedactPII(text string) string {
	if text == "" {
		return ""
	}
	return RedactPhones(RedactEmails(text))
}

// ContainsPII reports whether text holds an e-mail address or phone number.
func ContainsPII(text string) bool {
	return emailRe.MatchString(text) || phoneRe.MatchString(text)
}

// GetPIIStats counts matches without modifying text. Phones are counted
// after e-mails are masked, mirroring RedactPII.
func GetPIIStats(text string) Stats {
	return Stats{
		Emails: len(emailRe.FindAllStringIndex(text, -1)),
		Phones: len(phoneRe.FindAllStringIndex(RedactEmails(text), -1)),
	}
}
