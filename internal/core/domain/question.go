package domain

import "time"

// PendingQuestion is the per-user tip-gating record. At most one
// pending question exists per user at any time; parking a new question
// silently replaces any existing one. The record lives only in process
// memory - a restart loses all pending state and users must re-ask.
type PendingQuestion struct {
	// UserID identifies the asking user.
	UserID string

	// Question is the parked question text.
	Question string

	// ThreadID is the conversation thread the question arrived in.
	ThreadID string

	// ChannelID is the channel the question arrived in.
	ChannelID string

	// CreatedAt is when the question was parked.
	CreatedAt time.Time

	// TipReceived is true once a qualifying tip arrived but answer
	// generation failed. A user with TipReceived set retries at no
	// cost; their payment is never re-validated.
	TipReceived bool
}
