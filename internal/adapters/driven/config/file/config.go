// Package file provides the TOML configuration layer. Configuration
// lives in a single file under the quaestor config directory; API keys
// may also come from the environment, which takes precedence over the
// file.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Environment variable fallbacks for API keys.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGitHubToken  = "GITHUB_TOKEN"
)

// Config is the persisted application configuration.
type Config struct {
	// Embedding configures the embedding provider.
	Embedding EmbeddingConfig `toml:"embedding"`

	// Generation configures the answer provider.
	Generation GenerationConfig `toml:"generation"`

	// Corpus configures where knowledge sources come from.
	Corpus CorpusConfig `toml:"corpus"`

	// Tips configures the tip gate.
	Tips TipsConfig `toml:"tips"`

	// Bot configures identity and persona.
	Bot BotConfig `toml:"bot"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// APIKey is the provider API key. Falls back to OPENAI_API_KEY.
	APIKey string `toml:"api_key"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `toml:"base_url"`
}

// GenerationConfig selects and configures the answer provider.
type GenerationConfig struct {
	// Provider is "openai" or "anthropic".
	Provider string `toml:"provider"`

	// APIKey is the provider API key. Falls back to OPENAI_API_KEY or
	// ANTHROPIC_API_KEY depending on the provider.
	APIKey string `toml:"api_key"`

	// Model is the generation model name.
	Model string `toml:"model"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `toml:"base_url"`
}

// CorpusConfig configures knowledge sources.
type CorpusConfig struct {
	// Dir is a local directory of markdown files.
	Dir string `toml:"dir"`

	// Watch enables automatic index rebuilds on local file changes.
	Watch bool `toml:"watch"`

	// GitHub configures an optional GitHub-hosted corpus.
	GitHub GitHubCorpusConfig `toml:"github"`
}

// GitHubCorpusConfig points at a repository directory of markdown files.
type GitHubCorpusConfig struct {
	Owner string `toml:"owner"`
	Repo  string `toml:"repo"`
	Ref   string `toml:"ref"`
	Dir   string `toml:"dir"`

	// Token authenticates API requests. Falls back to GITHUB_TOKEN.
	Token string `toml:"token"`
}

// TipsConfig configures the tip gate.
type TipsConfig struct {
	// Addresses are the bot's receiving addresses; tips to any other
	// address are ignored.
	Addresses []string `toml:"addresses"`

	// MinimumUSD is the tip threshold in USD.
	MinimumUSD float64 `toml:"minimum_usd"`

	// Margin is the fractional undershoot tolerance on the threshold.
	Margin float64 `toml:"margin"`

	// AssetSymbol names the tip asset in user-facing messages.
	AssetSymbol string `toml:"asset_symbol"`

	// AssetDecimals is the asset's base unit precision.
	AssetDecimals int `toml:"asset_decimals"`

	// PriceAssetID is the CoinGecko asset identifier.
	PriceAssetID string `toml:"price_asset_id"`
}

// BotConfig configures identity and persona.
type BotConfig struct {
	// SystemContext is prepended to generation system prompts.
	SystemContext string `toml:"system_context"`

	// RetrieveK is how many passages to retrieve per question.
	RetrieveK int `toml:"retrieve_k"`

	// MaxAttempts bounds generation attempts per answer.
	MaxAttempts int `toml:"max_attempts"`
}

// Default returns a config with sensible defaults applied.
func Default() Config {
	return Config{
		Generation: GenerationConfig{Provider: "openai"},
		Tips: TipsConfig{
			MinimumUSD:    0.50,
			Margin:        0.05,
			AssetSymbol:   "ETH",
			AssetDecimals: 18,
			PriceAssetID:  "ethereum",
		},
		Bot: BotConfig{
			RetrieveK:   5,
			MaxAttempts: 2,
		},
	}
}

// Loader reads and writes the config file.
type Loader struct {
	path string
}

// NewLoader creates a config loader. If configDir is empty, defaults
// to ~/.quaestor.
func NewLoader(configDir string) (*Loader, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".quaestor")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	return &Loader{path: filepath.Join(configDir, "config.toml")}, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Load reads the config file, applies defaults for unset values, and
// resolves API keys from the environment when the file omits them. A
// missing file yields the defaults.
func (l *Loader) Load() (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the config to disk with restricted permissions.
func (l *Loader) Save(cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks the config for values that would break at runtime.
func Validate(cfg Config) error {
	if cfg.Embedding.APIKey == "" {
		return fmt.Errorf("embedding API key is not set (config or %s)", EnvOpenAIKey)
	}
	switch cfg.Generation.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown generation provider %q", cfg.Generation.Provider)
	}
	if cfg.Generation.APIKey == "" {
		return fmt.Errorf("generation API key is not set")
	}
	if cfg.Tips.MinimumUSD < 0 {
		return fmt.Errorf("tips.minimum_usd must not be negative")
	}
	if cfg.Tips.Margin < 0 || cfg.Tips.Margin >= 1 {
		return fmt.Errorf("tips.margin must be in [0, 1)")
	}
	if cfg.Bot.RetrieveK <= 0 {
		return fmt.Errorf("bot.retrieve_k must be positive")
	}
	if cfg.Bot.MaxAttempts <= 0 {
		return fmt.Errorf("bot.max_attempts must be positive")
	}
	return nil
}

// applyDefaults fills zero values a parsed file may have left unset.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = def.Generation.Provider
	}
	if cfg.Tips.MinimumUSD == 0 {
		cfg.Tips.MinimumUSD = def.Tips.MinimumUSD
	}
	if cfg.Tips.Margin == 0 {
		cfg.Tips.Margin = def.Tips.Margin
	}
	if cfg.Tips.AssetSymbol == "" {
		cfg.Tips.AssetSymbol = def.Tips.AssetSymbol
	}
	if cfg.Tips.AssetDecimals == 0 {
		cfg.Tips.AssetDecimals = def.Tips.AssetDecimals
	}
	if cfg.Tips.PriceAssetID == "" {
		cfg.Tips.PriceAssetID = def.Tips.PriceAssetID
	}
	if cfg.Bot.RetrieveK == 0 {
		cfg.Bot.RetrieveK = def.Bot.RetrieveK
	}
	if cfg.Bot.MaxAttempts == 0 {
		cfg.Bot.MaxAttempts = def.Bot.MaxAttempts
	}
}

// applyEnv resolves API keys from the environment when unset in the file.
func applyEnv(cfg *Config) {
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv(EnvOpenAIKey)
	}
	if cfg.Generation.APIKey == "" {
		switch cfg.Generation.Provider {
		case "anthropic":
			cfg.Generation.APIKey = os.Getenv(EnvAnthropicKey)
		default:
			cfg.Generation.APIKey = os.Getenv(EnvOpenAIKey)
		}
	}
	if cfg.Corpus.GitHub.Token == "" {
		cfg.Corpus.GitHub.Token = os.Getenv(EnvGitHubToken)
	}
}
