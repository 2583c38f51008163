package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/core/ports/driving"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// Ensure Orchestrator implements the interfaces.
var (
	_ driving.BotService = (*Orchestrator)(nil)
	_ driving.AskService = (*Orchestrator)(nil)
)

// Default orchestrator configuration.
const (
	// DefaultMinimumUSD is the nominal minimum tip value.
	DefaultMinimumUSD = 0.50

	// DefaultMargin is the tolerance fraction subtracted from the
	// minimum to absorb quote volatility.
	DefaultMargin = 0.05

	// DefaultMaxAttempts bounds generation retries per unlock.
	DefaultMaxAttempts = 2

	// DefaultRetrieveK is how many chunks are retrieved per answer.
	DefaultRetrieveK = 5

	// assetPrecision floors required amounts to micro-asset units so
	// the displayed requirement and the validation threshold agree.
	assetPrecision = 1e6
)

// OrchestratorConfig holds constructor-injected tuning for the
// tip-gating flow. Zero values fall back to the defaults above.
type OrchestratorConfig struct {
	// TipAddresses are the recognised bot-controlled receiving
	// addresses. Tips to any other address are ignored entirely.
	TipAddresses []string

	// MinimumUSD is the nominal minimum tip value in quote currency.
	MinimumUSD float64

	// Margin is the tolerance fraction (0.05 = accept 5% under).
	Margin float64

	// AssetDecimals is the payment asset's smallest-unit scale.
	AssetDecimals int

	// AssetSymbol names the payment asset in user-facing messages.
	AssetSymbol string

	// MaxAttempts bounds answer-generation attempts per unlock.
	MaxAttempts int

	// RetrieveK is the number of chunks retrieved per answer.
	RetrieveK int

	// SystemContext frames the generation service's persona.
	SystemContext string
}

// Orchestrator glues the pending store, price oracle, and knowledge
// index together: it decides on each tip event whether to unlock and
// attempt an answer, and guarantees that generation failures on the
// answering side never cost the user money.
type Orchestrator struct {
	pending   *PendingStore
	oracle    *PriceOracle
	knowledge driving.KnowledgeService
	answerer  driven.AnswerService
	messenger driven.Messenger
	threadLog driven.ThreadLogStore
	cfg       OrchestratorConfig
}

// NewOrchestrator creates the orchestrator. threadLog is optional
// (nil disables message recording).
func NewOrchestrator(
	pending *PendingStore,
	oracle *PriceOracle,
	knowledge driving.KnowledgeService,
	answerer driven.AnswerService,
	messenger driven.Messenger,
	threadLog driven.ThreadLogStore,
	cfg OrchestratorConfig,
) *Orchestrator {
	if cfg.MinimumUSD <= 0 {
		cfg.MinimumUSD = DefaultMinimumUSD
	}
	if cfg.Margin <= 0 {
		cfg.Margin = DefaultMargin
	}
	if cfg.AssetDecimals <= 0 {
		cfg.AssetDecimals = domain.DefaultAssetDecimals
	}
	if cfg.AssetSymbol == "" {
		cfg.AssetSymbol = "ETH"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetrieveK <= 0 {
		cfg.RetrieveK = DefaultRetrieveK
	}

	return &Orchestrator{
		pending:   pending,
		oracle:    oracle,
		knowledge: knowledge,
		answerer:  answerer,
		messenger: messenger,
		threadLog: threadLog,
		cfg:       cfg,
	}
}

// HandleMessage processes an incoming question or thread reply.
// A user whose pending entry is already paid gets a no-cost retry:
// new text replaces the stored question and generation runs
// immediately, skipping the tip-request flow. Everyone else has their
// question parked behind a tip request.
func (o *Orchestrator) HandleMessage(ctx context.Context, msg domain.Message) error {
	logger.Section("Message Event")
	logger.Debug("User %s in thread %s: %q", msg.UserID, msg.ThreadID, msg.Text)

	o.record(ctx, domain.ThreadEntry{
		ThreadID:  msg.ThreadID,
		ChannelID: msg.ChannelID,
		UserID:    msg.UserID,
		Role:      domain.RoleUser,
		Text:      msg.Text,
	})

	entry, ok := o.pending.Get(msg.UserID)
	if ok && entry.TipReceived {
		// Paid retry: any new text replaces the stored question.
		if strings.TrimSpace(msg.Text) != "" {
			o.pending.ReplaceQuestion(msg.UserID, msg.Text)
			entry.Question = msg.Text
		}
		logger.Info("Paid retry for user %s", msg.UserID)
		return o.attemptAndDeliver(ctx, entry.Question, msg.UserID, msg.ChannelID, msg.ThreadID)
	}

	o.pending.Park(msg.UserID, msg.Text, msg.ThreadID, msg.ChannelID)
	logger.Info("Parked question for user %s", msg.UserID)

	price := o.oracle.Price(ctx)
	required := o.requiredAssetAmount(price)
	return o.send(ctx, msg.ChannelID, msg.ThreadID,
		msgTipRequest(required, o.cfg.AssetSymbol, o.cfg.MinimumUSD))
}

// HandleTip processes an on-chain tip notification, validating the
// amount against the current price with the configured margin and
// unlocking answer generation when it qualifies.
func (o *Orchestrator) HandleTip(ctx context.Context, tip domain.TipEvent) error {
	logger.Section("Tip Event")

	if !o.recognisedAddress(tip.ToAddress) {
		logger.Debug("Tip to unrecognised address %s ignored", tip.ToAddress)
		return nil
	}

	entry, ok := o.pending.Get(tip.FromUserID)
	if !ok {
		logger.Debug("Tip from user %s with no pending question", tip.FromUserID)
		// No parked entry to route by, so reply into the tip's own
		// conversation.
		return o.send(ctx, tip.ChannelID, tip.ThreadID, msgTipWithoutQuestion())
	}

	if entry.TipReceived {
		// Already paid; the pending retry consumes this payment
		// credit. The second tip's funds are a voluntary extra, not
		// re-validated and not refunded.
		logger.Debug("Second tip from user %s while already paid", tip.FromUserID)
		return o.send(ctx, entry.ChannelID, entry.ThreadID, msgNoSecondPayment())
	}

	price := o.oracle.Price(ctx)
	assetAmount := tip.WholeUnits(o.cfg.AssetDecimals)
	required := o.requiredAssetAmount(price)

	logger.Debug("Tip %.6f %s (%.4f USD at %.2f), required %.6f",
		assetAmount, o.cfg.AssetSymbol, assetAmount*price, price, required)

	if assetAmount+1e-12 < required {
		logger.Info("Tip from user %s below minimum: got %.6f, need %.6f", tip.FromUserID, assetAmount, required)
		return o.send(ctx, entry.ChannelID, entry.ThreadID,
			msgTipShortfall(assetAmount, required, o.cfg.AssetSymbol))
	}

	if err := o.send(ctx, entry.ChannelID, entry.ThreadID, msgTipConfirmed()); err != nil {
		return err
	}

	return o.attemptAndDeliver(ctx, entry.Question, tip.FromUserID, entry.ChannelID, entry.ThreadID)
}

// Answer runs the ungated retrieval and generation path for local
// surfaces that bypass the tip gate.
func (o *Orchestrator) Answer(ctx context.Context, question string) (domain.Answer, error) {
	answer, ok := o.attemptAnswer(ctx, question)
	if !ok {
		return domain.Answer{}, domain.ErrGenerationUnavailable
	}
	return answer, nil
}

// attemptAndDeliver runs retrieval plus generation up to the attempt
// bound. Success delivers the answer and clears the entry; exhaustion
// marks the entry paid so the user's next message is a no-cost retry.
func (o *Orchestrator) attemptAndDeliver(ctx context.Context, question, userID, channelID, threadID string) error {
	answer, ok := o.attemptAnswer(ctx, question)
	if !ok {
		o.pending.MarkPaid(userID)
		logger.Info("All attempts failed for user %s; payment preserved for retry", userID)
		return o.send(ctx, channelID, threadID, msgGenerationFailed())
	}

	if err := o.send(ctx, channelID, threadID, formatAnswer(answer)); err != nil {
		// Delivery failed after generation succeeded. Preserve the
		// payment: the user retries at no cost.
		o.pending.MarkPaid(userID)
		return err
	}

	o.pending.Clear(userID)
	logger.Info("Answer delivered to user %s; pending entry cleared", userID)
	return nil
}

// attemptAnswer runs bounded generation attempts. An attempt succeeds
// only when the payload parses as the answer schema and is not the
// fallback sentinel.
func (o *Orchestrator) attemptAnswer(ctx context.Context, question string) (domain.Answer, bool) {
	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		logger.Debug("Answer attempt %d/%d", attempt, o.cfg.MaxAttempts)

		chunks, err := o.knowledge.Retrieve(ctx, question, o.cfg.RetrieveK)
		if err != nil {
			logger.Warn("Retrieval failed on attempt %d: %v", attempt, err)
			continue
		}

		raw, err := o.answerer.Generate(ctx, o.cfg.SystemContext, chunks, question)
		if err != nil {
			logger.Warn("Generation failed on attempt %d: %v", attempt, err)
			continue
		}

		answer, err := domain.ParseAnswer(raw)
		if err != nil {
			logger.Warn("Malformed payload on attempt %d", attempt)
			continue
		}

		return answer, true
	}
	return domain.Answer{}, false
}

// requiredAssetAmount converts the margin-adjusted USD minimum into
// asset units at the given price, floored to micro-asset precision so
// the displayed requirement matches the validation threshold.
func (o *Orchestrator) requiredAssetAmount(price float64) float64 {
	if price <= 0 {
		return 0
	}
	minUSD := o.cfg.MinimumUSD * (1 - o.cfg.Margin)
	return math.Floor(minUSD/price*assetPrecision) / assetPrecision
}

// recognisedAddress reports whether addr is one of the bot's
// receiving addresses, compared case-insensitively.
func (o *Orchestrator) recognisedAddress(addr string) bool {
	for _, a := range o.cfg.TipAddresses {
		if strings.EqualFold(a, addr) {
			return true
		}
	}
	return false
}

// send delivers user-facing text and records it in the thread log.
func (o *Orchestrator) send(ctx context.Context, channelID, threadID, text string) error {
	if err := o.messenger.Send(ctx, channelID, threadID, text); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	o.record(ctx, domain.ThreadEntry{
		ThreadID:  threadID,
		ChannelID: channelID,
		Role:      domain.RoleBot,
		Text:      text,
	})
	return nil
}

// record appends to the thread log, best effort.
func (o *Orchestrator) record(ctx context.Context, entry domain.ThreadEntry) {
	if o.threadLog == nil || entry.ThreadID == "" {
		return
	}
	if err := o.threadLog.Append(ctx, entry); err != nil {
		logger.Warn("Thread log append failed: %v", err)
	}
}
