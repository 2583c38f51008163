package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// Default oracle configuration.
const (
	// DefaultPriceTTL is how long a snapshot counts as fresh.
	DefaultPriceTTL = 15 * time.Minute

	// DefaultFallbackPrice is returned when no fetch has ever
	// succeeded. Price accuracy is advisory for a tolerance-based
	// check; a stuck bot is worse than one pricing slightly
	// off-market.
	DefaultFallbackPrice = 3000.0
)

// PriceOracle caches an external asset price with staleness-tolerant
// fallback. Price never fails: fresh snapshots are returned without
// network access, stale ones trigger a single fetch attempt, and on
// failure the prior snapshot (however stale) or the hardcoded fallback
// is used.
//
// Safe for concurrent use. Concurrent callers during a cache miss may
// each perform a redundant fetch rather than block on each other.
type PriceOracle struct {
	feed     driven.PriceFeed
	ttl      time.Duration
	fallback float64
	now      func() time.Time

	mu       sync.Mutex
	snapshot *domain.PriceSnapshot
}

// OracleOption configures the price oracle.
type OracleOption func(*PriceOracle)

// WithPriceTTL sets the snapshot freshness window.
func WithPriceTTL(ttl time.Duration) OracleOption {
	return func(o *PriceOracle) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithFallbackPrice sets the price returned when no snapshot exists
// and fetching fails.
func WithFallbackPrice(p float64) OracleOption {
	return func(o *PriceOracle) {
		if p > 0 {
			o.fallback = p
		}
	}
}

// withClock overrides the time source for tests.
func withClock(now func() time.Time) OracleOption {
	return func(o *PriceOracle) {
		o.now = now
	}
}

// NewPriceOracle creates an oracle over the given feed.
func NewPriceOracle(feed driven.PriceFeed, opts ...OracleOption) *PriceOracle {
	o := &PriceOracle{
		feed:     feed,
		ttl:      DefaultPriceTTL,
		fallback: DefaultFallbackPrice,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Price returns a usable asset price. It never returns an error.
func (o *PriceOracle) Price(ctx context.Context) float64 {
	o.mu.Lock()
	snapshot := o.snapshot
	o.mu.Unlock()

	now := o.now()
	if snapshot != nil && !snapshot.StaleAt(now, o.ttl) {
		return snapshot.Price
	}

	price, err := o.feed.FetchPrice(ctx)
	if err != nil || price <= 0 {
		if snapshot != nil {
			logger.Warn("Price fetch failed: %v (using stale snapshot from %s)", err, snapshot.FetchedAt.Format(time.RFC3339))
			return snapshot.Price
		}
		logger.Warn("Price fetch failed with no prior snapshot: %v (using fallback %.2f)", err, o.fallback)
		return o.fallback
	}

	o.mu.Lock()
	o.snapshot = &domain.PriceSnapshot{Price: price, FetchedAt: now}
	o.mu.Unlock()

	logger.Debug("Price refreshed: %.2f", price)
	return price
}

// Snapshot returns a copy of the current snapshot, if any.
func (o *PriceOracle) Snapshot() (domain.PriceSnapshot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.snapshot == nil {
		return domain.PriceSnapshot{}, false
	}
	return *o.snapshot, true
}
