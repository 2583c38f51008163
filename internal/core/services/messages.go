package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// User-facing message templates. Every failure message states what
// the user must do next: tip more, or simply retry at no cost.

func msgTipRequest(required float64, symbol string, minimumUSD float64) string {
	return fmt.Sprintf(
		"Got your question. To unlock an answer, send a tip of at least %.6f %s (about $%.2f). "+
			"Your question stays parked until the tip clears.",
		required, symbol, minimumUSD)
}

func msgTipWithoutQuestion() string {
	return "Thanks for the tip! There's no question waiting from you - ask one and I'll get to work."
}

func msgNoSecondPayment() string {
	return "No second payment needed - your earlier tip is still good. " +
		"Send your question (or any message in the thread) and I'll retry at no cost."
}

func msgTipShortfall(got, required float64, symbol string) string {
	return fmt.Sprintf(
		"That tip of %.6f %s is short of the %.6f %s minimum. "+
			"Your question is still parked - a larger tip will unlock it.",
		got, symbol, required, symbol)
}

func msgTipConfirmed() string {
	return "Payment confirmed. Working on your answer..."
}

func msgGenerationFailed() string {
	return "I couldn't produce an answer this time, but your payment remains valid. " +
		"Send any message in this thread and I'll retry at no extra cost."
}

// formatAnswer renders the answer text with its citations.
func formatAnswer(a domain.Answer) string {
	if len(a.Citations) == 0 {
		return a.Text
	}
	return fmt.Sprintf("%s\n\nSources: %s", a.Text, strings.Join(a.Citations, ", "))
}
