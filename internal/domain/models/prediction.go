package models

import "time"

// Direction of a binary prediction.
const (
	DirectionUp   = "UP"
	DirectionDown = "DOWN"
)

// Prediction lifecycle states. A prediction is created ACTIVE and settled
// exactly once by the settlement sweep.
const (
	StatusActive  = "ACTIVE"
	StatusWon     = "WON"
	StatusLost    = "LOST"
	StatusExpired = "EXPIRED"
)

// PricePoint is one observation of a price series, timestamp in epoch ms.
type PricePoint struct {
	Timestamp int64   `json:"t"`
	Price     float64 `json:"p"`
}

// PriceSeries is an ordered (ascending by timestamp) sequence of observations.
// Transient per computation, never persisted.
type PriceSeries []PricePoint

// Closes returns the raw price values in series order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

// IndicatorBundle maps indicator name to value. An empty bundle signals
// insufficient history and routes scoring to its fallback branch.
type IndicatorBundle map[string]float64

// Indicator names produced by the calculator.
const (
	IndSMAShort        = "sma_short"
	IndSMALong         = "sma_long"
	IndRSI             = "rsi"
	IndMACD            = "macd"
	IndBollingerUpper  = "bollinger_upper"
	IndBollingerMiddle = "bollinger_middle"
	IndBollingerLower  = "bollinger_lower"
	IndVolatilityPct   = "volatility_pct"
	IndPriceVsSMAShort = "price_vs_sma_short_pct"
	IndPriceVsSMALong  = "price_vs_sma_long_pct"
)

// SentimentSource is one opinion source's contribution to a report.
type SentimentSource struct {
	Name      string  `json:"source_name"`
	Sentiment float64 `json:"sentiment"`
	Volume    float64 `json:"volume_metric"`
}

// SentimentReport aggregates per-source opinions for one symbol.
// OverallSentiment is the arithmetic mean of per-source sentiments.
type SentimentReport struct {
	OverallSentiment float64           `json:"overall_sentiment"`
	Sources          []SentimentSource `json:"sources"`
	Confidence       float64           `json:"confidence"`
}

// NeutralSentiment is the degraded report returned when no source answered.
func NeutralSentiment() SentimentReport {
	return SentimentReport{OverallSentiment: 0, Sources: []SentimentSource{}, Confidence: 0.5}
}

// ScoringResult is the scorer's output for one (symbol, timeframe).
// Confidence is always clamped into [55,95].
type ScoringResult struct {
	Direction      string  `json:"direction"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
	TechnicalScore float64 `json:"technical_score"`
	SentimentScore float64 `json:"sentiment_score"`
}

// Prediction is the persisted binary prediction entity. Created once by the
// record builder; the engine only ever appends, the settlement sweep flips
// status and result price exactly once.
type Prediction struct {
	ID                  string          `json:"id"`
	UserID              string          `json:"user_id"`
	Symbol              string          `json:"symbol"`
	Direction           string          `json:"direction"`
	Timeframe           string          `json:"timeframe"`
	EntryPrice          float64         `json:"entry_price"`
	EntryTime           time.Time       `json:"entry_time"`
	ExpiryTime          time.Time       `json:"expiry_time"`
	Currency            string          `json:"currency"`
	ConfidenceScore     float64         `json:"confidence_score"`
	Status              string          `json:"status"`
	ResultPrice         *float64        `json:"result_price"`
	CreatedAt           time.Time       `json:"created_at"`
	AIGenerated         bool            `json:"ai_generated"`
	TechnicalIndicators IndicatorBundle `json:"technical_indicators"`
	SentimentAnalysis   SentimentReport `json:"sentiment_analysis"`
	StakeAmount         int             `json:"stake_amount,omitempty"`
	IsFree              bool            `json:"is_free,omitempty"`
	Reasoning           string          `json:"reasoning,omitempty"`
}

// User is the read model consumed by the engine. The engine reads
// eligibility and currency preference and only ever writes quota counters.
type User struct {
	ID                     string `json:"id"`
	FreePredictions        int    `json:"free_predictions"`
	TotalPredictionsUsed   int    `json:"total_predictions_used"`
	AutoPredictionsEnabled bool   `json:"auto_predictions_enabled"`
	PreferredCurrency      string `json:"preferred_currency"`
}
