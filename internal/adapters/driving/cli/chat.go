package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quaestor/internal/adapters/driving/console"
	"github.com/custodia-labs/quaestor/internal/corpus"
	"github.com/custodia-labs/quaestor/internal/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run the tip-gated bot on the console",
	Long: `Starts an interactive console session against the full bot flow.
Plain lines are questions; "/tip <amount>" simulates an on-chain tip
notification. With corpus.watch enabled, local corpus edits trigger an
index rebuild in the background.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil || newBot == nil {
		return errors.New("services not configured")
	}

	ctx := cmd.Context()
	if err := buildIndex(ctx); err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	cmd.Printf("Index ready: %d chunks\n", knowledgeService.Size())

	if cfg.Corpus.Watch && cfg.Corpus.Dir != "" {
		watcher, err := corpus.NewWatcher(cfg.Corpus.Dir, func() {
			if err := buildIndex(ctx); err != nil {
				logger.Warn("Index rebuild failed: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("starting corpus watcher: %w", err)
		}
		go watcher.Run(ctx) //nolint:errcheck // Stops with the session context
	}

	tipAddress := ""
	if len(cfg.Tips.Addresses) > 0 {
		tipAddress = cfg.Tips.Addresses[0]
	}

	bot := newBot(console.NewMessenger(cmd.OutOrStdout()))
	session := console.NewSession(bot, os.Stdin, cmd.OutOrStdout(), tipAddress, cfg.Tips.AssetDecimals)
	return session.Run(ctx)
}
