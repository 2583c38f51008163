package console

import (
	"bytes"
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// recordingBot captures dispatched events.
type recordingBot struct {
	messages []domain.Message
	tips     []domain.TipEvent
}

func (b *recordingBot) HandleMessage(_ context.Context, msg domain.Message) error {
	b.messages = append(b.messages, msg)
	return nil
}

func (b *recordingBot) HandleTip(_ context.Context, tip domain.TipEvent) error {
	b.tips = append(b.tips, tip)
	return nil
}

func TestSession_DispatchesMessagesAndTips(t *testing.T) {
	bot := &recordingBot{}
	in := strings.NewReader("how do I pay?\n/tip 0.000158\n\n")
	var out bytes.Buffer

	session := NewSession(bot, in, &out, "0xBot", 18)
	require.NoError(t, session.Run(context.Background()))

	require.Len(t, bot.messages, 1)
	assert.Equal(t, "how do I pay?", bot.messages[0].Text)
	assert.Equal(t, "console", bot.messages[0].UserID)
	assert.NotEmpty(t, bot.messages[0].ThreadID)

	require.Len(t, bot.tips, 1)
	assert.Equal(t, "0xBot", bot.tips[0].ToAddress)
	want, _ := new(big.Int).SetString("158000000000000", 10)
	assert.Zero(t, bot.tips[0].Amount.Cmp(want))
	assert.Equal(t, bot.messages[0].ThreadID, bot.tips[0].ThreadID, "tip carries the session thread")
	assert.Equal(t, "console", bot.tips[0].ChannelID)
}

func TestSession_TipWithExplicitAddress(t *testing.T) {
	bot := &recordingBot{}
	in := strings.NewReader("/tip 1 0xOther\n")
	var out bytes.Buffer

	session := NewSession(bot, in, &out, "0xBot", 18)
	require.NoError(t, session.Run(context.Background()))

	require.Len(t, bot.tips, 1)
	assert.Equal(t, "0xOther", bot.tips[0].ToAddress)
}

func TestSession_BadTipReportsError(t *testing.T) {
	bot := &recordingBot{}
	in := strings.NewReader("/tip abc\n/tip\n")
	var out bytes.Buffer

	session := NewSession(bot, in, &out, "0xBot", 18)
	require.NoError(t, session.Run(context.Background()))

	assert.Empty(t, bot.tips)
	assert.Contains(t, out.String(), "error:")
}

func TestParseAssetAmount(t *testing.T) {
	amount, err := parseAssetAmount("1.5", 6)
	require.NoError(t, err)
	assert.Zero(t, amount.Cmp(big.NewInt(1500000)))

	_, err = parseAssetAmount("-1", 6)
	assert.Error(t, err)

	_, err = parseAssetAmount("nope", 6)
	assert.Error(t, err)
}

func TestMessenger_Send(t *testing.T) {
	var out bytes.Buffer
	m := NewMessenger(&out)

	require.NoError(t, m.Send(context.Background(), "c", "t", "hello there"))
	assert.Contains(t, out.String(), "hello there")
}
