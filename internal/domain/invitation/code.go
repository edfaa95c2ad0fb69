package invitation

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	// Alphabet leaves out O and 0 so codes read back unambiguously.
	Alphabet   = "ABCDEFGHIJKLMNPQRSTUVWXYZ123456789"
	CodeLength = 8

	displayGroupSize = 4
)

const (
	MessageCodeRequired = "Invitation code is required"
	MessageCodeLength   = "Invitation code must be 8 characters"
	MessageInvalidCode  = "Invalid invitation code"
	MessageExpiredCode  = "Invitation has expired"
)

type FormatResult struct {
	IsValid   bool
	CleanCode string
	Errors    []string
}

// GenerateCode draws CodeLength symbols uniformly from Alphabet. Collisions
// are not checked here; the unique index on invitations.code catches them.
func GenerateCode() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))

	var builder strings.Builder
	builder.Grow(CodeLength)

	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(Alphabet[n.Int64()])
	}

	return builder.String(), nil
}

// NormalizeCode drops everything outside [A-Za-z0-9] and uppercases the rest.
func NormalizeCode(raw string) string {
	var builder strings.Builder
	builder.Grow(len(raw))

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'a' && c <= 'z':
			builder.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			builder.WriteByte(c)
		}
	}

	return builder.String()
}

// FormatForDisplay renders a code as XXXX-XXXX.
func FormatForDisplay(code string) string {
	clean := NormalizeCode(code)
	if len(clean) <= displayGroupSize {
		return clean
	}
	return clean[:displayGroupSize] + "-" + clean[displayGroupSize:]
}

func ValidateFormat(raw string) FormatResult {
	clean := NormalizeCode(raw)
	result := FormatResult{CleanCode: clean, Errors: []string{}}

	switch {
	case clean == "":
		result.Errors = append(result.Errors, MessageCodeRequired)
	case len(clean) != CodeLength:
		result.Errors = append(result.Errors, MessageCodeLength)
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func (r FormatResult) FirstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}
