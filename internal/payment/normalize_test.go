package payment_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eIIka/tour-agency/internal/payment"
)

func TestNormalizeCardNumber(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"4":                       "4",
		"4111":                    "4111",
		"41111":                   "4111 1",
		"4111111111111111":        "4111 1111 1111 1111",
		"4111 1111 1111 1111":     "4111 1111 1111 1111",
		"4111-1111-1111-1111":     "4111 1111 1111 1111",
		"4111111111111111999":     "4111 1111 1111 1111",
		"card 4111a1111b11110000": "4111 1111 1111 0000",
	}

	for raw, want := range cases {
		assert.Equal(t, want, payment.NormalizeCardNumber(raw), "input %q", raw)
	}
}

func TestNormalizeCardNumberBounds(t *testing.T) {
	inputs := []string{"", "4", "41111111", "4111111111111111", "12345678901234567890", "a1b2c3"}
	for _, raw := range inputs {
		got := payment.NormalizeCardNumber(raw)
		assert.LessOrEqual(t, len(got), 19, "input %q", raw)
		assert.LessOrEqual(t, strings.Count(got, "")-1-strings.Count(got, " "), 16, "input %q", raw)
	}
}

func TestNormalizeExpiryDate(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"1":     "1",
		"12":    "12",
		"123":   "12/3",
		"1227":  "12/27",
		"12/27": "12/27",
		"12-27": "12/27",
		"12279": "12/27",
	}

	for raw, want := range cases {
		assert.Equal(t, want, payment.NormalizeExpiryDate(raw), "input %q", raw)
	}
}

func TestNormalizeExpiryDateSlashPosition(t *testing.T) {
	for _, raw := range []string{"123", "1234", "12345", "12/34", "1a2b3c4d"} {
		got := payment.NormalizeExpiryDate(raw)
		assert.Equal(t, 1, strings.Count(got, "/"), "input %q", raw)
		assert.Equal(t, byte('/'), got[2], "input %q", raw)
	}
}

func TestNormalizeCVV(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"1":     "1",
		"123":   "123",
		"1234":  "123",
		"a1b2c": "12",
	}

	for raw, want := range cases {
		assert.Equal(t, want, payment.NormalizeCVV(raw), "input %q", raw)
	}
}

func TestNormalizeIdempotence(t *testing.T) {
	inputs := []string{
		"", "4", "41 11", "4111111111111111", "4111-1111-1111-1111",
		"12", "123", "1227", "12/27", "999999",
		"garbage", "  ", "1a2b3c4d5e",
	}

	for _, raw := range inputs {
		card := payment.NormalizeCardNumber(raw)
		assert.Equal(t, card, payment.NormalizeCardNumber(card), "card input %q", raw)

		expiry := payment.NormalizeExpiryDate(raw)
		assert.Equal(t, expiry, payment.NormalizeExpiryDate(expiry), "expiry input %q", raw)

		cvv := payment.NormalizeCVV(raw)
		assert.Equal(t, cvv, payment.NormalizeCVV(cvv), "cvv input %q", raw)
	}
}
