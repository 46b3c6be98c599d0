package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"herald/internal/domain"
	"herald/internal/logging"
	"herald/internal/metrics"
)

// Retries after the first send attempt, so a fully transient failure
// is attempted four times in total.
const maxSendRetries = 3

const defaultRetryBase = 500 * time.Millisecond

// Dispatcher pushes one notification through quota checks, recipient
// validation, rendering and provider delivery, retrying transient send
// failures with exponential backoff. It is synchronous from the
// caller's perspective; backoff waits respect the caller's context.
type Dispatcher struct {
	Limiter   domain.RateLimiter
	Templates domain.TemplateEngine
	Providers domain.ProviderRegistry
	Quotas    map[domain.Medium]domain.QuotaPolicy

	// DeliveryLog, Metrics and Logger are optional; appends to the
	// delivery log are best-effort.
	DeliveryLog domain.DeliveryLogRepository
	Metrics     *metrics.Metrics
	Logger      logging.Logger

	// RetryBase is the first backoff delay; it doubles per attempt.
	RetryBase time.Duration
}

// Dispatch returns an outcome for every request: either a success or a
// typed failure. The returned error, when non-nil, equals outcome.Err.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.NotificationRequest) (domain.NotificationOutcome, error) {
	outcome := domain.NotificationOutcome{ID: uuid.NewString()}

	log := d.logger().With(
		"dispatch_id", outcome.ID,
		"medium", string(req.Medium),
		"archetype", string(req.Archetype),
		"recipient", domain.MaskRecipient(req.Medium, req.Recipient),
	)

	policy, ok := d.Quotas[req.Medium]
	if !ok {
		outcome.Err = fmt.Errorf("%w: no quota policy for medium %q", domain.ErrConfigurationMissing, req.Medium)
		return outcome, outcome.Err
	}

	provider, err := d.Providers.Resolve(req.Medium, req.Provider)
	if err != nil {
		outcome.Err = err
		return outcome, err
	}

	// Both quota scopes must pass before anything is rendered or sent.
	if err := d.checkQuota(ctx, domain.GlobalQuotaKey(req.Medium), policy.GlobalMax, policy.Window); err != nil {
		return d.fail(ctx, log, provider.Name(), req, outcome, err)
	}
	if err := d.checkQuota(ctx, domain.RecipientQuotaKey(req.Medium, req.Recipient), policy.PerRecipientMax, policy.Window); err != nil {
		return d.fail(ctx, log, provider.Name(), req, outcome, err)
	}

	if err := provider.ValidateRecipient(req.Recipient); err != nil {
		d.Metrics.InvalidRecipient()
		return d.fail(ctx, log, provider.Name(), req, outcome, err)
	}

	msg, err := d.Templates.Render(req)
	if err != nil {
		return d.fail(ctx, log, provider.Name(), req, outcome, err)
	}

	var receipt domain.Receipt
	var lastSendErr error
	backoff := retry.WithMaxRetries(maxSendRetries, retry.NewExponential(d.retryBase()))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		outcome.Attempts++
		d.Metrics.DispatchAttempt()
		log.Info(ctx, "send attempt", "attempt", outcome.Attempts, "provider", provider.Name())

		r, sendErr := provider.Send(ctx, req.Recipient, msg)
		if sendErr != nil {
			lastSendErr = sendErr
			if domain.IsTransient(sendErr) {
				return retry.RetryableError(sendErr)
			}
			return sendErr
		}
		receipt = r
		return nil
	})
	if err != nil {
		// A canceled backoff wait surfaces the context error; report
		// the provider failure we actually observed.
		if (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) && lastSendErr != nil {
			err = fmt.Errorf("dispatch aborted after %d attempts: %w", outcome.Attempts, lastSendErr)
		}
		return d.fail(ctx, log, provider.Name(), req, outcome, err)
	}

	outcome.Success = true
	outcome.ProviderMessageID = receipt.MessageID
	d.Metrics.DispatchSuccess()
	log.Info(ctx, "notification delivered",
		"attempts", outcome.Attempts,
		"provider", provider.Name(),
		"provider_message_id", receipt.MessageID,
	)
	d.appendDeliveryLog(ctx, log, provider.Name(), req, outcome)
	return outcome, nil
}

func (d *Dispatcher) checkQuota(ctx context.Context, key string, limit int, window time.Duration) error {
	decision, err := d.Limiter.Allow(ctx, key, limit, window)
	if err != nil {
		// Fail closed: a broken counter store aborts the send.
		return err
	}
	if !decision.Allowed {
		d.Metrics.QuotaRejected()
		return &domain.QuotaError{Key: key, Limit: limit}
	}
	return nil
}

func (d *Dispatcher) fail(ctx context.Context, log logging.Logger, providerName string, req domain.NotificationRequest, outcome domain.NotificationOutcome, err error) (domain.NotificationOutcome, error) {
	outcome.Err = err
	d.Metrics.DispatchFailure()
	log.Warn(ctx, "notification failed",
		"attempts", outcome.Attempts,
		"provider", providerName,
		"error_code", errorCode(err),
		"error", err.Error(),
	)
	d.appendDeliveryLog(ctx, log, providerName, req, outcome)
	return outcome, err
}

func (d *Dispatcher) appendDeliveryLog(ctx context.Context, log logging.Logger, providerName string, req domain.NotificationRequest, outcome domain.NotificationOutcome) {
	if d.DeliveryLog == nil {
		return
	}
	rec := domain.DeliveryRecord{
		ID:        outcome.ID,
		Medium:    req.Medium,
		Archetype: req.Archetype,
		Recipient: domain.MaskRecipient(req.Medium, req.Recipient),
		Provider:  providerName,
		Attempts:  outcome.Attempts,
		Success:   outcome.Success,
		ErrorCode: errorCode(outcome.Err),
		CreatedAt: time.Now().UTC(),
	}
	if err := d.DeliveryLog.Append(ctx, rec); err != nil {
		log.Warn(ctx, "delivery log append failed", "error", err.Error())
	}
}

func (d *Dispatcher) logger() logging.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logging.Nop{}
}

func (d *Dispatcher) retryBase() time.Duration {
	if d.RetryBase > 0 {
		return d.RetryBase
	}
	return defaultRetryBase
}

// errorCode maps the error taxonomy to stable identifiers for logs and
// the delivery log.
func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, domain.ErrInvalidRecipient):
		return "invalid_recipient"
	case errors.Is(err, domain.ErrConfigurationMissing):
		return "configuration_missing"
	case errors.Is(err, domain.ErrUnknownProvider):
		return "unknown_provider"
	case errors.Is(err, domain.ErrUnknownArchetype):
		return "unknown_archetype"
	case domain.IsTransient(err):
		return "provider_transient"
	default:
		return "provider_permanent"
	}
}
