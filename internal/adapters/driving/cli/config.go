package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View configuration and set provider API keys.`,
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [embedding|generation|github]",
	Short: "Set a provider API key",
	Long: `Prompts for an API key without echo and saves it to the config
file. Keys may also be supplied through the environment (OPENAI_API_KEY,
ANTHROPIC_API_KEY, GITHUB_TOKEN), which takes precedence.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetKey,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configLoader == nil {
		return errors.New("config not loaded")
	}

	cmd.Printf("Config file: %s\n\n", configLoader.Path())

	cmd.Println("[Embedding]")
	cmd.Printf("  Model: %s\n", orDefault(cfg.Embedding.Model, "text-embedding-3-small"))
	cmd.Printf("  API Key: %s\n", keyStatus(cfg.Embedding.APIKey))
	cmd.Println()

	cmd.Println("[Generation]")
	cmd.Printf("  Provider: %s\n", cfg.Generation.Provider)
	if cfg.Generation.Model != "" {
		cmd.Printf("  Model: %s\n", cfg.Generation.Model)
	}
	cmd.Printf("  API Key: %s\n", keyStatus(cfg.Generation.APIKey))
	cmd.Println()

	cmd.Println("[Corpus]")
	if cfg.Corpus.Dir != "" {
		cmd.Printf("  Dir: %s (watch: %v)\n", cfg.Corpus.Dir, cfg.Corpus.Watch)
	}
	if cfg.Corpus.GitHub.Repo != "" {
		cmd.Printf("  GitHub: %s/%s@%s dir=%s\n",
			cfg.Corpus.GitHub.Owner, cfg.Corpus.GitHub.Repo,
			orDefault(cfg.Corpus.GitHub.Ref, "HEAD"), cfg.Corpus.GitHub.Dir)
	}
	cmd.Println()

	cmd.Println("[Tips]")
	cmd.Printf("  Minimum: %.2f USD (margin %.0f%%)\n", cfg.Tips.MinimumUSD, cfg.Tips.Margin*100)
	cmd.Printf("  Asset: %s (%d decimals)\n", cfg.Tips.AssetSymbol, cfg.Tips.AssetDecimals)
	for _, addr := range cfg.Tips.Addresses {
		cmd.Printf("  Address: %s\n", addr)
	}

	return nil
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	if configLoader == nil {
		return errors.New("config not loaded")
	}

	target := args[0]
	switch target {
	case "embedding", "generation", "github":
	default:
		return fmt.Errorf("unknown key target %q (want embedding, generation, or github)", target)
	}

	cmd.Printf("Enter %s key: ", target)
	key := readPassword()
	cmd.Println()
	if key == "" {
		return errors.New("empty key")
	}

	switch target {
	case "embedding":
		cfg.Embedding.APIKey = key
	case "generation":
		cfg.Generation.APIKey = key
	case "github":
		cfg.Corpus.GitHub.Token = key
	}

	if err := configLoader.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("Saved %s key to %s\n", target, configLoader.Path())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func keyStatus(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
