package domain

import "strings"

// MaskRecipient produces a log-safe form of a recipient address. Raw
// addresses must never reach logs or operator-facing errors.
func MaskRecipient(medium Medium, address string) string {
	switch medium {
	case MediumEmail:
		return MaskEmail(address)
	case MediumSMS:
		return MaskPhone(address)
	default:
		return MaskPhone(address)
	}
}

// MaskEmail keeps the first character of the local part and the domain:
// "jody@example.com" -> "j***@example.com".
func MaskEmail(address string) string {
	at := strings.LastIndex(address, "@")
	if at <= 0 {
		return "***"
	}
	return address[:1] + "***" + address[at:]
}

// MaskPhone keeps a leading country-code prefix and the last two digits:
// "+8613712345678" -> "+86********78".
func MaskPhone(number string) string {
	if len(number) < 5 {
		return "***"
	}
	prefix := 3
	if !strings.HasPrefix(number, "+") {
		prefix = 2
	}
	suffix := 2
	// Shrink the visible ends on short numbers so at least one digit
	// is always masked.
	for prefix+suffix >= len(number) {
		if suffix > 1 {
			suffix--
		} else {
			prefix--
		}
	}
	masked := len(number) - prefix - suffix
	return number[:prefix] + strings.Repeat("*", masked) + number[len(number)-suffix:]
}
