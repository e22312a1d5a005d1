package indicators

import (
	"math"

	"CoinPulse/internal/domain/models"
)

const (
	// Lookback is how many trailing observations feed the calculator;
	// older points are discarded.
	Lookback = 20
	// MinPoints is the smallest series the calculator accepts. Below it the
	// bundle comes back empty and the scorer falls back.
	MinPoints = 5

	shortPeriod = 5
	longPeriod  = 10
	rsiPeriod   = 14
	bandWidth   = 2.0
)

// Calculate derives the indicator bundle from a price series. The series is
// truncated to the last Lookback points; fewer than MinPoints yields an empty
// bundle. Pure and deterministic given the input.
func Calculate(series models.PriceSeries) models.IndicatorBundle {
	if len(series) > Lookback {
		series = series[len(series)-Lookback:]
	}
	if len(series) < MinPoints {
		return models.IndicatorBundle{}
	}

	prices := series.Closes()
	current := prices[len(prices)-1]

	smaShort := mean(tail(prices, shortPeriod))
	smaLong := smaShort
	if len(prices) >= longPeriod {
		smaLong = mean(tail(prices, longPeriod))
	}

	// Weighted blend proxy for convergence/divergence, not a true EMA.
	macd := (0.8*current + 0.2*smaShort) - (0.6*current + 0.4*smaLong)

	bandWindow := tail(prices, longPeriod)
	bbStd := stdDev(bandWindow)
	middle := smaLong
	upper := middle + bandWidth*bbStd
	lower := middle - bandWidth*bbStd

	bundle := models.IndicatorBundle{
		models.IndSMAShort:        smaShort,
		models.IndSMALong:         smaLong,
		models.IndRSI:             rsi(prices),
		models.IndMACD:            macd,
		models.IndBollingerUpper:  upper,
		models.IndBollingerMiddle: middle,
		models.IndBollingerLower:  lower,
		models.IndVolatilityPct:   bbStd / current * 100,
		models.IndPriceVsSMAShort: (current - smaShort) / smaShort * 100,
		models.IndPriceVsSMALong:  (current - smaLong) / smaLong * 100,
	}
	return bundle
}

// rsi computes the oscillator over up to the last rsiPeriod period-over-period
// deltas. By convention a zero average loss maps to exactly 100.
func rsi(prices []float64) float64 {
	deltas := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		deltas = append(deltas, prices[i]-prices[i-1])
	}
	deltas = tail(deltas, rsiPeriod)

	var gains, losses float64
	for _, d := range deltas {
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	n := float64(len(deltas))
	avgGain := gains / n
	avgLoss := losses / n
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

func tail(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var variance float64
	for _, x := range xs {
		variance += (x - m) * (x - m)
	}
	return math.Sqrt(variance / float64(len(xs)))
}
