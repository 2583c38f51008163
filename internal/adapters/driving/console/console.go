// Package console provides a line-based transport for local testing.
// Plain lines become message events; "/tip <amount> [address]" lines
// become tip events. Outbound messages print to the writer.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/core/ports/driving"
)

// Ensure Messenger implements the interface.
var _ driven.Messenger = (*Messenger)(nil)

// localUserID identifies the console user in bot events.
const localUserID = "console"

// Messenger writes outbound bot messages to an io.Writer.
type Messenger struct {
	out io.Writer
}

// NewMessenger creates a console messenger.
func NewMessenger(out io.Writer) *Messenger {
	return &Messenger{out: out}
}

// Send writes the message text to the output.
func (m *Messenger) Send(_ context.Context, _, _ string, text string) error {
	if _, err := fmt.Fprintf(m.out, "\n%s\n\n", text); err != nil {
		return fmt.Errorf("writing to console: %w", err)
	}
	return nil
}

// Session is an interactive console session driving the bot.
type Session struct {
	bot           driving.BotService
	in            io.Reader
	out           io.Writer
	tipAddress    string
	assetDecimals int
	threadID      string
}

// NewSession creates a console session. Tips without an explicit
// address go to tipAddress.
func NewSession(bot driving.BotService, in io.Reader, out io.Writer, tipAddress string, assetDecimals int) *Session {
	if assetDecimals <= 0 {
		assetDecimals = domain.DefaultAssetDecimals
	}
	return &Session{
		bot:           bot,
		in:            in,
		out:           out,
		tipAddress:    tipAddress,
		assetDecimals: assetDecimals,
		threadID:      uuid.NewString(),
	}
}

// Run reads lines until EOF or context cancellation, dispatching each
// as a message or tip event.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Ask a question, or send a tip with /tip <amount>. Ctrl-D to quit.")

	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var err error
		if strings.HasPrefix(line, "/tip") {
			err = s.dispatchTip(ctx, line)
		} else {
			err = s.bot.HandleMessage(ctx, domain.Message{
				UserID:    localUserID,
				Text:      line,
				ThreadID:  s.threadID,
				ChannelID: "console",
			})
		}
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

// dispatchTip parses a "/tip <amount> [address]" line and hands the
// event to the bot. The amount is in whole asset units.
func (s *Session) dispatchTip(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf("usage: /tip <amount> [address]")
	}

	amount, err := parseAssetAmount(fields[1], s.assetDecimals)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", fields[1], err)
	}

	addr := s.tipAddress
	if len(fields) > 2 {
		addr = fields[2]
	}

	return s.bot.HandleTip(ctx, domain.TipEvent{
		FromUserID: localUserID,
		ToAddress:  addr,
		Amount:     amount,
		ChannelID:  "console",
		ThreadID:   s.threadID,
	})
}

// parseAssetAmount converts a decimal string of whole asset units into
// base units at the given decimal scale.
func parseAssetAmount(text string, decimals int) (*big.Int, error) {
	whole, ok := new(big.Float).SetString(text)
	if !ok || whole.Sign() < 0 {
		return nil, fmt.Errorf("not a non-negative decimal")
	}

	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	scaled := new(big.Float).Mul(whole, scale)
	// Round to nearest so binary representation error cannot shave a
	// base unit off an exact decimal input.
	scaled.Add(scaled, big.NewFloat(0.5))
	base, _ := scaled.Int(nil)
	return base, nil
}
