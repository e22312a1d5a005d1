package indicators

import (
	"math"
	"testing"

	"CoinPulse/internal/domain/models"
)

func seriesFromPrices(prices []float64) models.PriceSeries {
	s := make(models.PriceSeries, len(prices))
	for i, p := range prices {
		s[i] = models.PricePoint{Timestamp: int64(i) * 60_000, Price: p}
	}
	return s
}

func TestCalculateTooShort(t *testing.T) {
	for n := 0; n < MinPoints; n++ {
		prices := make([]float64, n)
		for i := range prices {
			prices[i] = 100
		}
		bundle := Calculate(seriesFromPrices(prices))
		if len(bundle) != 0 {
			t.Fatalf("expected empty bundle for %d points, got %v", n, bundle)
		}
	}
}

func TestCalculateKnownSeries(t *testing.T) {
	prices := []float64{100, 101, 99, 102, 98, 103, 97, 104, 96, 105}
	bundle := Calculate(seriesFromPrices(prices))

	approx := func(key string, want float64) {
		t.Helper()
		got, ok := bundle[key]
		if !ok {
			t.Fatalf("missing %s", key)
		}
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("%s = %v, want %v", key, got, want)
		}
	}

	approx(models.IndSMAShort, 101.0)
	approx(models.IndSMALong, 100.5)
	// (0.8*105 + 0.2*101) - (0.6*105 + 0.4*100.5)
	approx(models.IndMACD, 1.0)
	// gains 25, losses 20 over 9 deltas
	approx(models.IndRSI, 100-100/2.25)

	if bundle[models.IndBollingerMiddle] != bundle[models.IndSMALong] {
		t.Fatalf("bollinger middle should equal sma_long")
	}
	if bundle[models.IndBollingerUpper] <= bundle[models.IndBollingerMiddle] {
		t.Fatalf("upper band not above middle")
	}
	if bundle[models.IndBollingerLower] >= bundle[models.IndBollingerMiddle] {
		t.Fatalf("lower band not below middle")
	}

	wantDispShort := (105.0 - 101.0) / 101.0 * 100
	approx(models.IndPriceVsSMAShort, wantDispShort)
	wantDispLong := (105.0 - 100.5) / 100.5 * 100
	approx(models.IndPriceVsSMALong, wantDispLong)
}

func TestCalculateShortSeriesFoldsLongSMA(t *testing.T) {
	// Between MinPoints and longPeriod the long SMA mirrors the short one.
	prices := []float64{100, 102, 104, 106, 108, 110}
	bundle := Calculate(seriesFromPrices(prices))
	if bundle[models.IndSMALong] != bundle[models.IndSMAShort] {
		t.Fatalf("sma_long = %v, want sma_short %v", bundle[models.IndSMALong], bundle[models.IndSMAShort])
	}
}

func TestRSIBounds(t *testing.T) {
	series := []float64{100, 98, 101, 97, 103, 95, 104, 99, 102, 96, 105, 94, 101, 100, 99}
	bundle := Calculate(seriesFromPrices(series))
	val := bundle[models.IndRSI]
	if val < 0 || val > 100 {
		t.Fatalf("rsi out of range: %v", val)
	}
}

func TestRSIMonotonicIsHundred(t *testing.T) {
	prices := []float64{100, 101, 102, 103, 104, 105, 106}
	bundle := Calculate(seriesFromPrices(prices))
	if bundle[models.IndRSI] != 100 {
		t.Fatalf("rsi = %v, want 100 for strictly rising series", bundle[models.IndRSI])
	}

	// Flat series has zero average loss too.
	flat := []float64{100, 100, 100, 100, 100, 100}
	bundle = Calculate(seriesFromPrices(flat))
	if bundle[models.IndRSI] != 100 {
		t.Fatalf("rsi = %v, want 100 for flat series", bundle[models.IndRSI])
	}
}

func TestCalculateTruncatesLookback(t *testing.T) {
	long := make([]float64, Lookback+10)
	for i := range long {
		long[i] = 1000 + float64(i)
	}
	// Corrupt the pre-lookback prefix; it must not influence the bundle.
	corrupted := append([]float64{}, long...)
	for i := 0; i < 10; i++ {
		corrupted[i] = 1e9
	}

	a := Calculate(seriesFromPrices(long))
	b := Calculate(seriesFromPrices(corrupted))
	for k, v := range a {
		if b[k] != v {
			t.Fatalf("%s differs after prefix change: %v vs %v", k, v, b[k])
		}
	}
}

func TestCalculateDeterministic(t *testing.T) {
	prices := []float64{50, 51, 49.5, 52, 48, 53, 47.5, 54}
	a := Calculate(seriesFromPrices(prices))
	b := Calculate(seriesFromPrices(prices))
	if len(a) != len(b) {
		t.Fatalf("bundle sizes differ")
	}
	for k, v := range a {
		if b[k] != v {
			t.Fatalf("%s not deterministic: %v vs %v", k, v, b[k])
		}
	}
}
