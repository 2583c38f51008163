package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quaestor/internal/adapters/driving/console"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the corpus",
	Long: `Answers a single question strictly from the indexed corpus and
exits. This is the local surface; no tip is involved.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil || newBot == nil {
		return errors.New("services not configured")
	}

	ctx := cmd.Context()
	if err := buildIndex(ctx); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	question := strings.Join(args, " ")
	bot := newBot(console.NewMessenger(cmd.OutOrStdout()))

	answer, err := bot.Answer(ctx, question)
	if err != nil {
		return fmt.Errorf("answering: %w", err)
	}

	cmd.Println(answer.Text)
	if len(answer.Citations) > 0 {
		cmd.Printf("\nSources: %s\n", strings.Join(answer.Citations, ", "))
	}
	return nil
}
