package oracle

import (
	"context"
	"fmt"
	"sync"
)

// Static is a fixed-price oracle for simulation mode and tests. Prices are
// set explicitly and returned verbatim, including zero and negative values,
// so degenerate feed behavior can be exercised deliberately.
type Static struct {
	mu     sync.RWMutex
	prices map[string]int64
}

// NewStatic creates a static oracle seeded with the given prices
// (asset -> price at types.FeedDecimals).
func NewStatic(prices map[string]int64) *Static {
	seeded := make(map[string]int64, len(prices))
	for asset, price := range prices {
		seeded[asset] = price
	}
	return &Static{prices: seeded}
}

// SetPrice updates the quote for an asset.
func (s *Static) SetPrice(asset string, price int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[asset] = price
}

// LatestPrice implements PriceOracle.
func (s *Static) LatestPrice(_ context.Context, asset string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	price, ok := s.prices[asset]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoPrice, asset)
	}
	return price, nil
}
