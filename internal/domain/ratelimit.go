package domain

import "time"

// QuotaPolicy is a stateless fixed-window rate-limit policy, supplied
// by configuration per medium.
type QuotaPolicy struct {
	Window          time.Duration
	GlobalMax       int
	PerRecipientMax int
}

type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
}

// Quota scope keys: one global counter per medium plus one counter per
// recipient address.
func GlobalQuotaKey(medium Medium) string {
	return "quota:" + string(medium) + ":global"
}

func RecipientQuotaKey(medium Medium, address string) string {
	return "quota:" + string(medium) + ":user:" + address
}
