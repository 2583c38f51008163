package domain

import "time"

// Message is an inbound user message from the transport layer, either
// a new question or a reply in an existing thread.
type Message struct {
	// UserID identifies the sender.
	UserID string

	// Text is the message text.
	Text string

	// ThreadID is the conversation thread.
	ThreadID string

	// ChannelID is the channel the message arrived in.
	ChannelID string
}

// Thread entry roles.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// ThreadEntry is one record in the append-only per-thread message log.
type ThreadEntry struct {
	// ID is a unique entry identifier, assigned by the store when empty.
	ID string

	// ThreadID keys the log; entries are listed per thread in
	// insertion order.
	ThreadID string

	// ChannelID is the channel the thread belongs to.
	ChannelID string

	// UserID is the sender for user entries, empty for bot entries.
	UserID string

	// Role is RoleUser or RoleBot.
	Role string

	// Text is the message text.
	Text string

	// CreatedAt is when the entry was appended.
	CreatedAt time.Time
}
