// Package coingecko provides a price feed adapter using the CoinGecko
// simple price API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
)

// Ensure PriceFeed implements the interface.
var _ driven.PriceFeed = (*PriceFeed)(nil)

// Default configuration values.
const (
	DefaultBaseURL  = "https://api.coingecko.com/api/v3"
	DefaultAssetID  = "ethereum"
	DefaultCurrency = "usd"
	DefaultTimeout  = 10 * time.Second
)

// Config holds configuration for the CoinGecko price feed.
type Config struct {
	// BaseURL is the API base URL (default: https://api.coingecko.com/api/v3).
	BaseURL string

	// AssetID is the CoinGecko asset identifier (default: ethereum).
	AssetID string

	// Currency is the quote currency (default: usd).
	Currency string

	// Timeout is the request timeout (default: 10s).
	Timeout time.Duration
}

// PriceFeed fetches asset prices from CoinGecko.
type PriceFeed struct {
	client   *http.Client
	baseURL  string
	assetID  string
	currency string
}

// NewPriceFeed creates a new CoinGecko price feed.
func NewPriceFeed(cfg Config) *PriceFeed {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AssetID == "" {
		cfg.AssetID = DefaultAssetID
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &PriceFeed{
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  cfg.BaseURL,
		assetID:  cfg.AssetID,
		currency: cfg.Currency,
	}
}

// FetchPrice returns the current asset price in the quote currency.
// Any non-2xx response or malformed body is a fetch failure.
func (f *PriceFeed) FetchPrice(ctx context.Context) (float64, error) {
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		f.baseURL, url.QueryEscape(f.assetID), url.QueryEscape(f.currency))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("coingecko error (status %d)", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	// Response shape: {"ethereum": {"usd": 3000.12}}
	var payload map[string]map[string]float64
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	price, ok := payload[f.assetID][f.currency]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("coingecko: no %s/%s price in response", f.assetID, f.currency)
	}

	return price, nil
}
