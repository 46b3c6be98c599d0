package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"herald/internal/domain"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type notificationRequest struct {
	Medium    string `json:"medium"`
	Recipient string `json:"recipient"`
	Archetype string `json:"archetype"`
	Provider  string `json:"provider,omitempty"`
	Locale    string `json:"locale,omitempty"`

	Code   *codePayload   `json:"code,omitempty"`
	Action *actionPayload `json:"action,omitempty"`
	Plain  *plainPayload  `json:"plain,omitempty"`
}

type codePayload struct {
	Code          string `json:"code"`
	ExpireMinutes int    `json:"expire_minutes"`
}

type actionPayload struct {
	URL         string `json:"url"`
	ButtonLabel string `json:"button_label"`
	Reminder    string `json:"reminder,omitempty"`
}

type plainPayload struct {
	Message     string `json:"message"`
	SecurityTip string `json:"security_tip,omitempty"`
}

type notificationResponse struct {
	ID                string `json:"id"`
	Success           bool   `json:"success"`
	ProviderMessageID string `json:"provider_message_id,omitempty"`
	Attempts          int    `json:"attempts"`
}

type roleChangeRequest struct {
	ActorID  string `json:"actor_id"`
	TargetID string `json:"target_id"`
}

type roleSyncRequest struct {
	Identity string `json:"identity"`
}

type deliveryResponse struct {
	ID        string `json:"id"`
	Medium    string `json:"medium"`
	Archetype string `json:"archetype"`
	Recipient string `json:"recipient"`
	Provider  string `json:"provider"`
	Attempts  int    `json:"attempts"`
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code,omitempty"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleDispatch(c *gin.Context) {
	if s.dispatcher == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "CONFIGURATION_MISSING", "dispatcher not configured")
		return
	}
	var body notificationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	req, err := body.toDomain()
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	req.Branding = s.cfg.Branding()

	if !s.claimIdempotencyKey(c) {
		return
	}

	outcome, err := s.dispatcher.Dispatch(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			s.writeQuotaHeaders(c, req.Medium, err)
		}
		s.writeDispatchError(c, outcome, err)
		return
	}
	c.JSON(http.StatusOK, notificationResponse{
		ID:                outcome.ID,
		Success:           outcome.Success,
		ProviderMessageID: outcome.ProviderMessageID,
		Attempts:          outcome.Attempts,
	})
}

func (b notificationRequest) toDomain() (domain.NotificationRequest, error) {
	medium := domain.Medium(b.Medium)
	if medium != domain.MediumEmail && medium != domain.MediumSMS {
		return domain.NotificationRequest{}, errors.New("medium must be email or sms")
	}
	if b.Recipient == "" {
		return domain.NotificationRequest{}, errors.New("recipient is required")
	}
	req := domain.NotificationRequest{
		Medium:    medium,
		Recipient: b.Recipient,
		Archetype: domain.Archetype(b.Archetype),
		Provider:  b.Provider,
		Locale:    b.Locale,
	}
	if b.Code != nil {
		req.Code = &domain.CodePayload{Code: b.Code.Code, ExpireMinutes: b.Code.ExpireMinutes}
	}
	if b.Action != nil {
		req.Action = &domain.ActionPayload{URL: b.Action.URL, ButtonLabel: b.Action.ButtonLabel, Reminder: b.Action.Reminder}
	}
	if b.Plain != nil {
		req.Plain = &domain.PlainPayload{Message: b.Plain.Message, SecurityTip: b.Plain.SecurityTip}
	}
	return req, nil
}

// claimIdempotencyKey reports whether the request should proceed. A
// repeated key within the TTL is answered with 409 and never reaches
// the dispatcher; a broken guard store fails open.
func (s *Server) claimIdempotencyKey(c *gin.Context) bool {
	key := c.GetHeader("Idempotency-Key")
	if key == "" || s.idempotency == nil {
		return true
	}
	n, err := s.idempotency.Increment(c.Request.Context(), "idem:"+key, s.cfg.IdempotencyTTL())
	if err != nil {
		return true
	}
	if n > 1 {
		writeErrorCode(c, http.StatusConflict, "DUPLICATE_REQUEST", "idempotency key already used")
		return false
	}
	return true
}

func (s *Server) writeDispatchError(c *gin.Context, outcome domain.NotificationOutcome, err error) {
	// A failure after at least one send attempt is a provider problem,
	// not a caller problem.
	if outcome.Attempts > 0 && !isCallerError(err) {
		code := "PROVIDER_REJECTED"
		if domain.IsTransient(err) {
			code = "PROVIDER_UNAVAILABLE"
		}
		writeErrorCode(c, http.StatusBadGateway, code, err.Error())
		return
	}
	writeError(c, err)
}

func isCallerError(err error) bool {
	return errors.Is(err, domain.ErrQuotaExceeded) ||
		errors.Is(err, domain.ErrInvalidRecipient) ||
		errors.Is(err, domain.ErrUnknownArchetype) ||
		errors.Is(err, domain.ErrUnknownProvider) ||
		errors.Is(err, domain.ErrConfigurationMissing)
}

func (s *Server) handleGrantRole(c *gin.Context) {
	if s.roles == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "CONFIGURATION_MISSING", "role synchronizer not configured")
		return
	}
	var body roleChangeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if err := s.roles.Grant(c.Request.Context(), body.ActorID, body.TargetID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleRevokeRole(c *gin.Context) {
	if s.roles == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "CONFIGURATION_MISSING", "role synchronizer not configured")
		return
	}
	var body roleChangeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if err := s.roles.Revoke(c.Request.Context(), body.ActorID, body.TargetID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSyncRole(c *gin.Context) {
	if s.roles == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "CONFIGURATION_MISSING", "role synchronizer not configured")
		return
	}
	var body roleSyncRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if body.Identity == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "identity is required")
		return
	}
	isAdmin, err := s.roles.SyncIdentity(c.Request.Context(), body.Identity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"identity": body.Identity, "admin": isAdmin})
}

func (s *Server) handleListDeliveries(c *gin.Context) {
	if s.deliveries == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "CONFIGURATION_MISSING", "delivery log not configured")
		return
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	records, err := s.deliveries.ListRecent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]deliveryResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, deliveryResponse{
			ID:        rec.ID,
			Medium:    string(rec.Medium),
			Archetype: string(rec.Archetype),
			Recipient: rec.Recipient,
			Provider:  rec.Provider,
			Attempts:  rec.Attempts,
			Success:   rec.Success,
			ErrorCode: rec.ErrorCode,
			CreatedAt: rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"deliveries": out})
}

func (s *Server) handleHealthz(c *gin.Context) {
	mode := "no-db"
	if s.deliveries != nil {
		mode = "db"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
}

func (s *Server) handleMetrics(c *gin.Context) {
	if s.metrics == nil {
		c.String(http.StatusOK, "")
		return
	}
	c.Header("Content-Type", "text/plain; version=0.0.4")
	c.String(http.StatusOK, s.metrics.Render())
}

func (s *Server) handleNoRoute(c *gin.Context) {
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func (s *Server) requireAdminKey(c *gin.Context) {
	if s.adminAPIKey == "" {
		writeErrorCode(c, http.StatusServiceUnavailable, "ADMIN_DISABLED", "admin api key not configured")
		c.Abort()
		return
	}
	provided := c.GetHeader("X-Admin-API-Key")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(s.adminAPIKey)) != 1 {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid admin api key")
		c.Abort()
		return
	}
	c.Next()
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		status, code = http.StatusTooManyRequests, "QUOTA_EXCEEDED"
	case errors.Is(err, domain.ErrInvalidRecipient):
		status, code = http.StatusBadRequest, "INVALID_RECIPIENT"
	case errors.Is(err, domain.ErrUnknownArchetype):
		status, code = http.StatusBadRequest, "UNKNOWN_ARCHETYPE"
	case errors.Is(err, domain.ErrUnknownProvider):
		status, code = http.StatusBadRequest, "UNKNOWN_PROVIDER"
	case errors.Is(err, domain.ErrSelfRevocation):
		status, code = http.StatusBadRequest, "SELF_REVOCATION"
	case errors.Is(err, domain.ErrConfigurationMissing):
		status, code = http.StatusServiceUnavailable, "CONFIGURATION_MISSING"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case domain.IsTransient(err):
		status, code = http.StatusBadGateway, "PROVIDER_UNAVAILABLE"
	}
	writeErrorCode(c, status, code, err.Error())
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
