// Package tui provides a Bubble Tea chat interface over the bot. It
// carries the same event vocabulary as the console transport: plain
// lines are questions, "/tip <amount>" lines are tip events.
package tui

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/core/ports/driving"
)

// Ensure Outbox implements the interface.
var _ driven.Messenger = (*Outbox)(nil)

// localUserID identifies the TUI user in bot events.
const localUserID = "tui"

// Outbox is a Messenger that forwards bot replies into the TUI event
// loop through a channel.
type Outbox struct {
	replies chan string
}

// NewOutbox creates an outbox with a small reply buffer.
func NewOutbox() *Outbox {
	return &Outbox{replies: make(chan string, 16)}
}

// Send queues the reply for the TUI.
func (o *Outbox) Send(ctx context.Context, _, _ string, text string) error {
	select {
	case o.replies <- text:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// replyMsg carries a bot reply into Update.
type replyMsg string

// errMsg carries a dispatch error into Update.
type errMsg struct{ err error }

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	bot           driving.BotService
	outbox        *Outbox
	input         textinput.Model
	viewport      viewport.Model
	transcript    []string
	threadID      string
	tipAddress    string
	assetDecimals int
	ready         bool
}

// New creates a new chat model instance.
func New(bot driving.BotService, outbox *Outbox, tipAddress string, assetDecimals int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, or /tip <amount>"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)

	if assetDecimals <= 0 {
		assetDecimals = domain.DefaultAssetDecimals
	}

	return Model{
		bot:           bot,
		outbox:        outbox,
		input:         ti,
		viewport:      vp,
		threadID:      uuid.NewString(),
		tipAddress:    tipAddress,
		assetDecimals: assetDecimals,
	}
}

// Init starts the cursor blink and the reply listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForReply())
}

// Update handles key, window, and reply events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, qh := inputBoxStyle.GetFrameSize()
		_, ch := chatBoxStyle.GetFrameSize()
		vh := msg.Height - qh - ch - 2
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-chatBoxStyle.GetHorizontalFrameSize())
		m.viewport.Height = vh
		m.refresh()
		return m, nil

	case replyMsg:
		m.transcript = append(m.transcript, botStyle.Render("bot:")+" "+string(msg))
		m.refresh()
		return m, m.waitForReply()

	case errMsg:
		m.transcript = append(m.transcript, errStyle.Render("error: "+msg.err.Error()))
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.transcript = append(m.transcript, userStyle.Render("you:")+" "+line)
			m.refresh()
			return m, m.dispatch(line)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat transcript above the input box.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Quaestor")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	return header + "\n" + chat + "\n" + input
}

// dispatch hands the line to the bot off the event loop.
func (m Model) dispatch(line string) tea.Cmd {
	bot := m.bot
	threadID := m.threadID
	tipAddress := m.tipAddress
	decimals := m.assetDecimals

	return func() tea.Msg {
		ctx := context.Background()

		var err error
		if strings.HasPrefix(line, "/tip") {
			err = dispatchTip(ctx, bot, line, threadID, tipAddress, decimals)
		} else {
			err = bot.HandleMessage(ctx, domain.Message{
				UserID:    localUserID,
				Text:      line,
				ThreadID:  threadID,
				ChannelID: "tui",
			})
		}
		if err != nil {
			return errMsg{err}
		}
		return nil
	}
}

// waitForReply blocks on the outbox until the bot says something.
func (m Model) waitForReply() tea.Cmd {
	replies := m.outbox.replies
	return func() tea.Msg {
		return replyMsg(<-replies)
	}
}

// refresh re-renders the transcript and keeps the view pinned to the
// latest message.
func (m *Model) refresh() {
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.viewport.GotoBottom()
}

// dispatchTip parses a "/tip <amount> [address]" line into a tip event.
func dispatchTip(ctx context.Context, bot driving.BotService, line, threadID, defaultAddr string, decimals int) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf("usage: /tip <amount> [address]")
	}

	amount, err := parseAssetAmount(fields[1], decimals)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", fields[1], err)
	}

	addr := defaultAddr
	if len(fields) > 2 {
		addr = fields[2]
	}

	return bot.HandleTip(ctx, domain.TipEvent{
		FromUserID: localUserID,
		ToAddress:  addr,
		Amount:     amount,
		ChannelID:  "tui",
		ThreadID:   threadID,
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

var (
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
