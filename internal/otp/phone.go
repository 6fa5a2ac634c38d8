package otp

import (
	"fmt"
	"strings"
)

// NormalizePhone canonicalizes raw user input to E.164. Ten-digit local
// numbers get the configured default country code prefixed; numbers already
// carrying a "+" keep their country code. Separators and spaces are dropped.
// Every persistence key in this package (sessions, cooldowns) uses the
// normalized form.
func NormalizePhone(raw, defaultCountryCode string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	hasPlus := strings.HasPrefix(cleaned, "+")
	digits := strings.TrimPrefix(cleaned, "+")
	if digits == "" {
		return "", fmt.Errorf("empty phone number")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("phone number contains non-digit characters: %q", raw)
		}
	}

	if hasPlus {
		if len(digits) < 8 || len(digits) > 15 {
			return "", fmt.Errorf("phone number has invalid length: %q", raw)
		}
		return "+" + digits, nil
	}

	// Local 10-digit number, assume the default market country code.
	if len(digits) == 10 {
		return defaultCountryCode + digits, nil
	}
	// Number typed with country code but without the plus.
	if cc := strings.TrimPrefix(defaultCountryCode, "+"); strings.HasPrefix(digits, cc) && len(digits) == len(cc)+10 {
		return "+" + digits, nil
	}
	return "", fmt.Errorf("cannot normalize phone number: %q", raw)
}
