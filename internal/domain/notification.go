package domain

type Medium string

const (
	MediumEmail Medium = "email"
	MediumSMS   Medium = "sms"
)

type Archetype string

const (
	ArchetypeCode   Archetype = "code"
	ArchetypeAction Archetype = "action"
	ArchetypePlain  Archetype = "plain"
)

// CodePayload carries a verification code and how long it stays valid.
type CodePayload struct {
	Code          string
	ExpireMinutes int
}

// ActionPayload carries a call-to-action link.
type ActionPayload struct {
	URL         string
	ButtonLabel string
	Reminder    string
}

// PlainPayload carries a free-form message with an optional security tip.
type PlainPayload struct {
	Message     string
	SecurityTip string
}

// Branding is shared presentation state applied to every rendered message.
type Branding struct {
	Title   string
	AppName string
	Contact string
}

// NotificationRequest is immutable once constructed. Exactly one of the
// payload fields matching Archetype must be set.
type NotificationRequest struct {
	Medium    Medium
	Recipient string
	Archetype Archetype
	// Provider selects a logical provider name from the registry;
	// empty means the configured default for the medium.
	Provider string
	Locale   string
	Branding Branding

	Code   *CodePayload
	Action *ActionPayload
	Plain  *PlainPayload
}

// Message is rendered notification content. Text is always derived from
// HTML by markup stripping, so the two carry the same literal values.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// Receipt is what a provider returns for an accepted message.
type Receipt struct {
	MessageID string
}

// NotificationOutcome is produced exactly once per dispatch call. It is
// not persisted beyond the delivery log.
type NotificationOutcome struct {
	ID                string
	Success           bool
	ProviderMessageID string
	Attempts          int
	Err               error
}
