/*
This file implements the live price source: a client for a CryptoCompare-style
spot price API. One FeedClient serves every registered asset; the registry maps
each asset to this client (or to a per-asset oracle in more exotic setups).

The client retries transient failures and validates quotes strictly before
converting them to 8-decimal fixed point. A quote that cannot be validated is
an error, never a silent zero.
*/

package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/stablecore/sce/internal/logger"
	"github.com/stablecore/sce/internal/types"
	"github.com/stablecore/sce/internal/utils"
)

var feedLogger = logger.GetForComponent("price_feed")

var (
	ErrInvalidQuote     = errors.New("invalid price quote received")
	ErrAPIConfiguration = errors.New("price feed configuration error")
)

const (
	maxRetries     = 3
	requestTimeout = 30 * time.Second
)

// FeedClient fetches spot prices over HTTP and quotes them at
// types.FeedDecimals fixed point.
type FeedClient struct {
	baseURL string
	apiKey  string
	client  *http.Client

	// symbols maps an asset handle (denom) to the feed's ticker symbol.
	symbols map[string]string
}

// NewFeedClient builds a feed client. symbols maps each registered asset to
// the ticker the remote API understands (e.g. "uweth" -> "ETH").
func NewFeedClient(baseURL, apiKey string, symbols map[string]string) (*FeedClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrAPIConfiguration)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no asset symbols configured", ErrAPIConfiguration)
	}
	return &FeedClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: requestTimeout},
		symbols: symbols,
	}, nil
}

// LatestPrice implements PriceOracle.
func (f *FeedClient) LatestPrice(ctx context.Context, asset string) (int64, error) {
	symbol, ok := f.symbols[asset]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoPrice, asset)
	}

	url := fmt.Sprintf("%s/price?fsym=%s&tsyms=USD", f.baseURL, strings.ToUpper(symbol))
	if f.apiKey != "" {
		url += "&api_key=" + f.apiKey
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		price, err := f.fetchQuote(ctx, url, symbol)
		if err == nil {
			return price, nil
		}
		lastErr = err
		feedLogger.Warn().
			Err(err).
			Str("asset", asset).
			Int("attempt", attempt).
			Int("maxRetries", maxRetries).
			Msg("Price fetch failed, will retry if attempts remain")
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	feedLogger.Error().
		Err(lastErr).
		Str("asset", asset).
		Msg("All price fetch attempts failed")
	return 0, fmt.Errorf("failed to fetch price for %s after %d attempts: %w", asset, maxRetries, lastErr)
}

func (f *FeedClient) fetchQuote(ctx context.Context, url, symbol string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request for %s: %w", symbol, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: API returned status %d for %s", ErrInvalidQuote, resp.StatusCode, symbol)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body for %s: %w", symbol, err)
	}

	// Response shape: {"USD": 2000.42}
	var quote map[string]float64
	if err := json.Unmarshal(body, &quote); err != nil {
		return 0, fmt.Errorf("%w: failed to parse quote for %s: %w", ErrInvalidQuote, symbol, err)
	}

	usd, ok := quote["USD"]
	if !ok {
		return 0, fmt.Errorf("%w: no USD quote for %s", ErrInvalidQuote, symbol)
	}
	if math.IsNaN(usd) || math.IsInf(usd, 0) {
		return 0, fmt.Errorf("%w: quote for %s is not finite: %f", ErrInvalidQuote, symbol, usd)
	}
	if usd <= 0 {
		return 0, fmt.Errorf("%w: quote for %s must be positive: %f", ErrInvalidQuote, symbol, usd)
	}

	fixed, err := utils.Float64ToSDKInt(usd, types.FeedDecimals)
	if err != nil {
		return 0, fmt.Errorf("failed to convert quote for %s: %w", symbol, err)
	}
	if !fixed.IsInt64() {
		return 0, fmt.Errorf("%w: quote for %s overflows fixed point: %f", ErrInvalidQuote, symbol, usd)
	}

	feedLogger.Debug().
		Str("symbol", symbol).
		Float64("usd", usd).
		Int64("fixed", fixed.Int64()).
		Msg("Quote fetched")

	return fixed.Int64(), nil
}
