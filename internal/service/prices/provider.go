package prices

import (
	"context"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/service/coingecko"
	"CoinPulse/internal/services/indicators"
	"CoinPulse/pkg/cache"
	applogger "CoinPulse/pkg/logger"
)

const currentPriceTTL = 5 * time.Second

// Chain is the engine's price provider. History is served from the candle
// archive when it has enough depth, otherwise from the CoinGecko client,
// which itself degrades to static mocks. The chain therefore never fails.
// Fresh spot prices are held briefly in a cache so a generation pass does
// not hammer the upstream for every user.
type Chain struct {
	candles domrepo.CandleStore
	gecko   *coingecko.Client
	spot    cache.Service
	l       *applogger.Logger
}

// NewChain creates a provider chain. candles and spot may be nil when no
// archive or cache is configured.
func NewChain(candles domrepo.CandleStore, gecko *coingecko.Client, spot cache.Service, l *applogger.Logger) *Chain {
	return &Chain{candles: candles, gecko: gecko, spot: spot, l: l}
}

// PriceSeries returns the recent price series for a symbol.
func (c *Chain) PriceSeries(ctx context.Context, symbol string, tf domrepo.Timeframe) models.PriceSeries {
	if c.candles != nil {
		series, err := c.candles.RecentPrices(ctx, symbol, tf, indicators.Lookback)
		if err == nil && len(series) >= indicators.MinPoints {
			return series
		}
		if err != nil && c.l != nil {
			c.l.Warn("candle archive unavailable, falling through to api",
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Error(err),
			)
		}
	}
	return c.gecko.PriceSeries(ctx, symbol, tf)
}

// CurrentPrice returns the current price for a symbol in the given currency.
func (c *Chain) CurrentPrice(ctx context.Context, symbol, currency string) float64 {
	if c.spot == nil {
		return c.gecko.CurrentPrice(ctx, symbol, currency)
	}

	key := cache.Key("spot", symbol, currency)
	var cached float64
	if err := c.spot.Get(ctx, key, &cached); err == nil {
		return cached
	}

	price := c.gecko.CurrentPrice(ctx, symbol, currency)
	if err := c.spot.Set(ctx, key, price, currentPriceTTL); err != nil && c.l != nil {
		c.l.Warn("spot cache set failed", applogger.String("key", key), applogger.Error(err))
	}
	return price
}

var _ domrepo.PriceProvider = (*Chain)(nil)
