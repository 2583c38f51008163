package domain

import "time"

// PriceSnapshot is a cached observation of the payment asset's price
// in the quote currency. Snapshots are replaced wholesale on every
// successful fetch, never merged.
type PriceSnapshot struct {
	// Price is the quote-currency value of one whole unit of the
	// payment asset. Always positive.
	Price float64

	// FetchedAt is when the price was fetched.
	FetchedAt time.Time
}

// StaleAt reports whether the snapshot is older than ttl at the given
// instant. A stale snapshot triggers a refresh attempt but remains
// usable as a fallback if the refresh fails.
func (s PriceSnapshot) StaleAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.FetchedAt) > ttl
}
