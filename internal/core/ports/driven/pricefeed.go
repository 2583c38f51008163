package driven

import "context"

// PriceFeed fetches the current price of the payment asset in the
// quote currency from an external endpoint. Any non-2xx response or
// malformed body is a fetch failure; the PriceOracle absorbs failures
// with cached or hardcoded fallbacks.
type PriceFeed interface {
	// FetchPrice returns the current asset price. The returned value
	// is positive on success.
	FetchPrice(ctx context.Context) (float64, error)
}
