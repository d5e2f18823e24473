package domain

import "time"

// UserProfile is the registration record of a Telegram user.
// A repeat /start overwrites it as a whole.
type UserProfile struct {
	UserID       int64
	ChatID       int64
	DisplayName  string
	RegisteredAt time.Time // UTC
}

// PromptStatus is the lifecycle state of a PendingPrompt.
type PromptStatus string

const (
	StatusAwaiting PromptStatus = "awaiting"
	StatusAnswered PromptStatus = "answered"
	StatusTimedOut PromptStatus = "timed_out"
)

// PendingPrompt is one outstanding mood question and its reply window.
type PendingPrompt struct {
	ID        string
	UserID    int64
	ChatID    int64
	CreatedAt time.Time // UTC
	Deadline  time.Time // UTC, CreatedAt + reply window
	Status    PromptStatus
}

// Awaiting reports whether the prompt still accepts a reply.
func (p *PendingPrompt) Awaiting() bool {
	return p != nil && p.Status == StatusAwaiting
}

// CycleRecord is the journal entry written once a prompt is resolved and the
// follow-up has been attempted.
type CycleRecord struct {
	PromptID       string
	UserID         int64
	ChatID         int64
	Status         PromptStatus
	Mood           string
	CreatedAt      time.Time
	ResolvedAt     time.Time
	TextDelivered  bool
	VoiceDelivered bool
}
