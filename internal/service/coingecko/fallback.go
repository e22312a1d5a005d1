package coingecko

import "CoinPulse/internal/domain/models"

// Static fallback tables. These mirror the serving-side mock data so the
// engine keeps producing predictions when the upstream API is unreachable.

var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"ADA":   "cardano",
	"SOL":   "solana",
	"DOT":   "polkadot",
	"DOGE":  "dogecoin",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"MATIC": "polygon",
}

var mockPrices = map[string]float64{
	"BTC":   45230.50,
	"ETH":   2845.75,
	"BNB":   312.40,
	"ADA":   0.485,
	"SOL":   98.75,
	"DOT":   15.85,
	"DOGE":  0.085,
	"AVAX":  28.50,
	"LINK":  18.75,
	"MATIC": 0.95,
}

const defaultMockPrice = 100.0

// CurrencyRates are fixed static conversion rates, USD baseline. Not live FX.
var CurrencyRates = map[string]float64{
	"USD": 1.0,
	"RUB": 92.5,
	"EUR": 0.85,
	"GBP": 0.73,
	"JPY": 110.0,
	"CNY": 6.4,
	"KRW": 1200.0,
	"INR": 74.5,
}

// mockSeriesShape is the static fallback chart, hour-spaced relative moves.
// It is deliberately shorter than the indicator minimum so that scoring takes
// its insufficient-data branch when real history is unavailable.
var mockSeriesShape = []struct {
	offsetMs int64
	factor   float64
}{
	{0, 1.0},
	{3600_000, 1.0056},
	{7200_000, 0.9976},
}

const mockSeriesBaseMs = 1705276800000

// fallbackPrice returns the static price for a symbol in the given currency.
func fallbackPrice(symbol, currency string) float64 {
	price, ok := mockPrices[symbol]
	if !ok {
		price = defaultMockPrice
	}
	rate, ok := CurrencyRates[currency]
	if !ok {
		rate = 1.0
	}
	return price * rate
}

// fallbackSeries returns the static mock series scaled to the symbol's
// fallback price.
func fallbackSeries(symbol string) models.PriceSeries {
	base := fallbackPrice(symbol, "USD")
	out := make(models.PriceSeries, 0, len(mockSeriesShape))
	for _, pt := range mockSeriesShape {
		out = append(out, models.PricePoint{
			Timestamp: mockSeriesBaseMs + pt.offsetMs,
			Price:     base * pt.factor,
		})
	}
	return out
}
