package driven

import "context"

// Messenger is the transport layer's send-message primitive. All
// user-facing text produced by the orchestrator goes through it.
type Messenger interface {
	// Send delivers text into the given channel and thread.
	Send(ctx context.Context, channelID, threadID, text string) error
}
