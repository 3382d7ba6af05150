// Package payment reformats raw card input into canonical display form.
// The transforms are deterministic and idempotent, and they never reject
// partial input: they are meant to run on every keystroke.
package payment

import (
	"strings"
	"unicode"
)

const (
	cardNumberDigits = 16
	expiryDigits     = 4
	cvvDigits        = 3
)

// NormalizeCardNumber keeps at most 16 digits and groups them in blocks of
// four separated by spaces, e.g. "4111111111111111" -> "4111 1111 1111 1111".
func NormalizeCardNumber(raw string) string {
	digits := digitsOnly(raw, cardNumberDigits)

	var b strings.Builder
	for i := 0; i < len(digits); i++ {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}

// NormalizeExpiryDate keeps at most 4 digits and inserts "/" after the
// second one once more than two are present ("1227" -> "12/27"). A one or
// two digit prefix passes through unchanged.
func NormalizeExpiryDate(raw string) string {
	digits := digitsOnly(raw, expiryDigits)
	if len(digits) > 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}

// NormalizeCVV keeps at most 3 digits.
func NormalizeCVV(raw string) string {
	return digitsOnly(raw, cvvDigits)
}

func digitsOnly(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(r)
		if b.Len() == max {
			break
		}
	}
	return b.String()
}
