package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/quaestor/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the chat interface",
	Long:  `Starts the terminal chat interface against the full bot flow.`,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil || newBot == nil {
		return errors.New("services not configured")
	}

	if err := buildIndex(cmd.Context()); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	tipAddress := ""
	if len(cfg.Tips.Addresses) > 0 {
		tipAddress = cfg.Tips.Addresses[0]
	}

	outbox := tui.NewOutbox()
	bot := newBot(outbox)
	model := tui.New(bot, outbox, tipAddress, cfg.Tips.AssetDecimals)

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
