package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FallbackSentinel is the designated payload the generation service
// emits when it cannot answer from the retrieved context. A sentinel
// payload counts as a failed attempt, never as an answer.
const FallbackSentinel = "INSUFFICIENT_CONTEXT"

// Answer is the structured payload produced by the generation service.
type Answer struct {
	// Text is the answer shown to the user.
	Text string `json:"answer"`

	// Citations lists the chunk IDs the answer drew on.
	Citations []string `json:"citations"`
}

// ParseAnswer decodes a raw generation payload into an Answer.
// Parsing is strict: anything that is not a JSON object with a
// non-empty answer field, or that carries the fallback sentinel,
// returns ErrMalformedAnswer. There is no best-effort text extraction;
// a malformed payload is a failed attempt to be retried.
func ParseAnswer(raw string) (Answer, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == FallbackSentinel {
		return Answer{}, fmt.Errorf("parse answer: %w", ErrMalformedAnswer)
	}

	var a Answer
	dec := json.NewDecoder(strings.NewReader(trimmed))
	if err := dec.Decode(&a); err != nil {
		return Answer{}, fmt.Errorf("parse answer: %w", ErrMalformedAnswer)
	}

	if strings.TrimSpace(a.Text) == "" || a.Text == FallbackSentinel {
		return Answer{}, fmt.Errorf("parse answer: %w", ErrMalformedAnswer)
	}

	return a, nil
}
