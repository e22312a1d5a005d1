package coingecko

import (
	"math"
	"testing"

	"CoinPulse/internal/services/indicators"
)

func TestFallbackPriceKnownSymbol(t *testing.T) {
	if got := fallbackPrice("BTC", "USD"); got != 45230.50 {
		t.Fatalf("BTC/USD = %v", got)
	}
	want := 2845.75 * 92.5
	if got := fallbackPrice("ETH", "RUB"); math.Abs(got-want) > 1e-6 {
		t.Fatalf("ETH/RUB = %v, want %v", got, want)
	}
}

func TestFallbackPriceUnknowns(t *testing.T) {
	if got := fallbackPrice("XYZ", "USD"); got != defaultMockPrice {
		t.Fatalf("unknown symbol = %v, want default %v", got, defaultMockPrice)
	}
	// Unknown currency keeps the USD price.
	if got := fallbackPrice("BTC", "ZZZ"); got != 45230.50 {
		t.Fatalf("unknown currency = %v, want USD price", got)
	}
}

func TestFallbackSeriesBelowIndicatorMinimum(t *testing.T) {
	series := fallbackSeries("BTC")
	if len(series) >= indicators.MinPoints {
		t.Fatalf("mock series has %d points; it must stay below the indicator minimum %d",
			len(series), indicators.MinPoints)
	}
	if len(indicators.Calculate(series)) != 0 {
		t.Fatalf("mock series should route scoring to its fallback branch")
	}
}

func TestFallbackSeriesShape(t *testing.T) {
	series := fallbackSeries("SOL")
	if len(series) != 3 {
		t.Fatalf("series length %d, want 3", len(series))
	}
	for i := 1; i < len(series); i++ {
		if series[i].Timestamp <= series[i-1].Timestamp {
			t.Fatalf("series not ascending at %d", i)
		}
	}
	base := fallbackPrice("SOL", "USD")
	if series[0].Price != base {
		t.Fatalf("first point %v, want base price %v", series[0].Price, base)
	}
}

func TestCoinIDCoverage(t *testing.T) {
	// Every symbol with a mock price must also resolve to an API id.
	for sym := range mockPrices {
		if _, ok := coinIDs[sym]; !ok {
			t.Fatalf("symbol %s has a mock price but no coin id", sym)
		}
	}
}
