package http

import (
	"errors"
	"strconv"

	"herald/internal/domain"

	"github.com/gin-gonic/gin"
)

// writeQuotaHeaders annotates a quota rejection with the limit of the
// scope that was actually exceeded, per-recipient or global. The reset
// moment is not tracked per key, so Retry-After reports the full window.
func (s *Server) writeQuotaHeaders(c *gin.Context, medium domain.Medium, err error) {
	policy, ok := s.quotas[medium]
	if !ok {
		return
	}
	limit := policy.PerRecipientMax
	var quotaErr *domain.QuotaError
	if errors.As(err, &quotaErr) && quotaErr.Limit > 0 {
		limit = quotaErr.Limit
	}
	if limit > 0 {
		c.Header("RateLimit-Limit", strconv.Itoa(limit))
		c.Header("RateLimit-Remaining", "0")
	}
	if policy.Window > 0 {
		c.Header("Retry-After", strconv.FormatInt(int64(policy.Window.Seconds()), 10))
	}
}
