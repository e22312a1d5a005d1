package repository

// Timeframe represents a forecast horizon bucket. It maps to both a
// minutes-to-expiry value and the indicator lookback resolution.
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF30m Timeframe = "30m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
)

var expiryMinutes = map[Timeframe]int{
	TF1m:  1,
	TF5m:  5,
	TF15m: 15,
	TF30m: 30,
	TF1h:  60,
	TF4h:  240,
	TF1d:  1440,
}

// ExpiryPolicy resolves a timeframe to minutes-to-expiry. The automated and
// manual creation paths carry different fallbacks for unknown timeframes;
// both are kept as explicitly named policies rather than silently unified.
type ExpiryPolicy struct {
	fallback int
}

// AutomatedExpiry is used by the background generation path.
var AutomatedExpiry = ExpiryPolicy{fallback: 60}

// ManualExpiry is used by user-initiated creation.
var ManualExpiry = ExpiryPolicy{fallback: 5}

// Minutes returns the minutes-to-expiry for tf, or the policy fallback when
// tf is unknown.
func (p ExpiryPolicy) Minutes(tf Timeframe) int {
	if m, ok := expiryMinutes[tf]; ok {
		return m
	}
	return p.fallback
}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	_, ok := expiryMinutes[tf]
	return ok
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF1h }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}
