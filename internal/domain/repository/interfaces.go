package repository

import (
	"context"
	"errors"
	"time"

	"CoinPulse/internal/domain/models"
)

// ErrQuotaExceeded is returned by ConsumeQuota when the user's remaining
// free predictions cannot cover the requested stake. No partial deduction
// occurs.
var ErrQuotaExceeded = errors.New("insufficient free predictions")

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// UserStore provides read access to the user population and atomic writes
// limited to quota/usage counters.
type UserStore interface {
	Get(ctx context.Context, id string) (*models.User, error)
	// ListEligible returns users whose auto_predictions_enabled flag is not
	// explicitly false.
	ListEligible(ctx context.Context) ([]*models.User, error)
	// ConsumeQuota atomically decrements free_predictions by stake and
	// increments total_predictions_used. Returns ErrQuotaExceeded without
	// any deduction when the balance is short.
	ConsumeQuota(ctx context.Context, id string, stake int) error
	// RefundQuota returns stake to the user's balance after a failed insert.
	RefundQuota(ctx context.Context, id string, stake int) error
}

// PredictionStore is append-only from the engine's perspective; the
// settlement sweep is the one writer of status transitions.
type PredictionStore interface {
	Insert(ctx context.Context, p *models.Prediction) error
	// ListByUser returns the user's predictions newest first, narrowed to a
	// created_at window when from/to are non-zero. The window applies before
	// the limit cut so older matches are never silently dropped.
	ListByUser(ctx context.Context, userID string, from, to time.Time, limit int) ([]*models.Prediction, error)
	// DueForSettlement returns ACTIVE predictions whose expiry_time is at or
	// before now, oldest first.
	DueForSettlement(ctx context.Context, now time.Time, limit int) ([]*models.Prediction, error)
	// Settle transitions a prediction out of ACTIVE with its result price.
	Settle(ctx context.Context, id, status string, resultPrice float64) error
}

// CandleStore provides read access to archived price history. Implementations
// may fail; callers degrade to the HTTP provider chain.
type CandleStore interface {
	RecentPrices(ctx context.Context, symbol string, tf Timeframe, n int) (models.PriceSeries, error)
}

// PriceProvider supplies price data with the fallback discipline: it never
// returns an error, degrading to static mock values on any failure.
type PriceProvider interface {
	PriceSeries(ctx context.Context, symbol string, tf Timeframe) models.PriceSeries
	CurrentPrice(ctx context.Context, symbol, currency string) float64
}

// Publisher emits prediction lifecycle events.
type Publisher interface {
	PublishCreated(ctx context.Context, p *models.Prediction) error
	PublishSettled(ctx context.Context, p *models.Prediction) error
	Close() error
}

// Metrics records engine observability signals.
type Metrics interface {
	RecordPrediction(mode, symbol, direction string)
	RecordQuotaRejected()
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordBatchPass(seconds float64, generated, failed int)
}
