package coingecko

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/service/ratelimit"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"
)

// Client fetches prices from the CoinGecko public API with the fallback
// discipline: every method degrades to the static mock tables on failure or
// timeout and never returns an error.
type Client struct {
	baseURL  string
	http     *xhttp.Client
	limiter  *ratelimit.Limiter
	capacity float64
	refill   float64
	maxTries uint64
	l        *applogger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = xhttp.NewClient(xhttp.WithTimeout(d)) }
}

// WithRateLimit sets the token bucket guarding upstream calls.
func WithRateLimit(capacity, refillPerSec float64) Option {
	return func(c *Client) {
		c.capacity = capacity
		c.refill = refillPerSec
	}
}

// WithRetries sets how many attempts each upstream call gets. Values below
// one are ignored; the attempt count feeds a max-retries computation that
// must never wrap.
func WithRetries(n uint64) Option {
	return func(c *Client) {
		if n >= 1 {
			c.maxTries = n
		}
	}
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.l = l }
}

// NewClient creates a CoinGecko client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  "https://api.coingecko.com/api/v3",
		http:     xhttp.NewClient(xhttp.WithTimeout(3 * time.Second)),
		limiter:  ratelimit.New(),
		capacity: 10,
		refill:   0.5,
		maxTries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentPrice returns the symbol's current price in the given currency,
// falling back to the static table times the fixed conversion rate.
func (c *Client) CurrentPrice(ctx context.Context, symbol, currency string) float64 {
	symbol = strings.ToUpper(symbol)
	currency = strings.ToUpper(currency)

	if !c.limiter.Allow("simple_price", c.capacity, c.refill) {
		return fallbackPrice(symbol, currency)
	}

	coinID := c.coinID(symbol)
	cur := strings.ToLower(currency)
	var resp map[string]map[string]float64
	err := c.getJSON(ctx, fmt.Sprintf("/simple/price?ids=%s&vs_currencies=%s", coinID, cur), &resp)
	if err == nil {
		if price, ok := resp[coinID][cur]; ok && price > 0 {
			return price
		}
		err = fmt.Errorf("price missing for %s/%s", coinID, cur)
	}
	if c.l != nil {
		c.l.Warn("coingecko price lookup failed, using fallback",
			applogger.String("symbol", symbol),
			applogger.String("currency", currency),
			applogger.Error(err),
		)
	}
	return fallbackPrice(symbol, currency)
}

// chartDays maps a forecast timeframe to the history window requested from
// the market chart endpoint.
var chartDays = map[domrepo.Timeframe]int{
	domrepo.TF5m:  1,
	domrepo.TF15m: 1,
	domrepo.TF1h:  7,
	domrepo.TF4h:  30,
	domrepo.TF1d:  365,
}

// PriceSeries returns the recent USD price series for a symbol, ascending by
// timestamp. On any failure the short static mock series is returned, which
// deliberately routes scoring into its insufficient-data branch.
func (c *Client) PriceSeries(ctx context.Context, symbol string, tf domrepo.Timeframe) models.PriceSeries {
	symbol = strings.ToUpper(symbol)

	if !c.limiter.Allow("market_chart", c.capacity, c.refill) {
		return fallbackSeries(symbol)
	}

	days, ok := chartDays[tf]
	if !ok {
		days = 7
	}

	var resp struct {
		Prices [][2]float64 `json:"prices"`
	}
	err := c.getJSON(ctx, fmt.Sprintf("/coins/%s/market_chart?vs_currency=usd&days=%d", c.coinID(symbol), days), &resp)
	if err != nil || len(resp.Prices) == 0 {
		if c.l != nil {
			c.l.Warn("coingecko chart fetch failed, using fallback series",
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Error(err),
			)
		}
		return fallbackSeries(symbol)
	}

	series := make(models.PriceSeries, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		series = append(series, models.PricePoint{Timestamp: int64(p[0]), Price: p[1]})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Timestamp < series[j].Timestamp })
	return series
}

func (c *Client) getJSON(ctx context.Context, path string, dest interface{}) error {
	op := func() error {
		return c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			URL:    c.baseURL + path,
		}, dest)
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(200*time.Millisecond),
			backoff.WithMaxElapsedTime(10*time.Second),
		), c.maxTries-1),
		ctx,
	)
	return backoff.Retry(op, policy)
}

func (c *Client) coinID(symbol string) string {
	if id, ok := coinIDs[symbol]; ok {
		return id
	}
	return strings.ToLower(symbol)
}
