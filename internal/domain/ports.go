package domain

import (
	"context"
	"time"
)

// RateLimiter enforces a fixed-window quota for a scope key.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}

// Provider is one delivery channel implementation. ValidateRecipient
// failures and unmarked Send errors are permanent; Send errors marked
// with Transient are retryable.
type Provider interface {
	Name() string
	ValidateRecipient(address string) error
	Send(ctx context.Context, address string, msg Message) (Receipt, error)
}

// ProviderRegistry resolves a provider by medium and logical name; an
// empty name selects the medium's default.
type ProviderRegistry interface {
	Resolve(medium Medium, name string) (Provider, error)
}

type TemplateEngine interface {
	Render(req NotificationRequest) (Message, error)
}

// UserRepository is the narrow view onto the external user store.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByIdentity(ctx context.Context, identity string) (*User, error)
	Save(ctx context.Context, user *User) error
}

// AdminPolicy is an optional second allow-list source consulted during
// reconciliation, ORed with the static set.
type AdminPolicy interface {
	Allow(ctx context.Context, identity string) (bool, error)
}

// DeliveryRecord is the persisted trace of one finished dispatch. The
// recipient is stored masked.
type DeliveryRecord struct {
	ID        string
	Medium    Medium
	Archetype Archetype
	Recipient string
	Provider  string
	Attempts  int
	Success   bool
	ErrorCode string
	CreatedAt time.Time
}

type DeliveryLogRepository interface {
	Append(ctx context.Context, rec DeliveryRecord) error
	ListRecent(ctx context.Context, limit int) ([]DeliveryRecord, error)
}
