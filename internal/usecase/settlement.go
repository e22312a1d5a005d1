package usecase

import (
	"context"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	applogger "CoinPulse/pkg/logger"
)

// Settler sweeps expired ACTIVE predictions and resolves them against the
// current price in the prediction's own currency. An exact tie settles LOST.
type Settler struct {
	preds    domrepo.PredictionStore
	prices   domrepo.PriceProvider
	pub      domrepo.Publisher
	metrics  domrepo.Metrics
	interval time.Duration
	batch    int
	l        *applogger.Logger
}

type SettlerOption func(*Settler)

// WithSettlerInterval overrides the sweep interval.
func WithSettlerInterval(d time.Duration) SettlerOption {
	return func(s *Settler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSettlerBatch caps how many due predictions one sweep settles.
func WithSettlerBatch(n int) SettlerOption {
	return func(s *Settler) {
		if n > 0 {
			s.batch = n
		}
	}
}

func NewSettler(preds domrepo.PredictionStore, prices domrepo.PriceProvider, pub domrepo.Publisher, metrics domrepo.Metrics, l *applogger.Logger, opts ...SettlerOption) *Settler {
	s := &Settler{
		preds:    preds,
		prices:   prices,
		pub:      pub,
		metrics:  metrics,
		interval: 60 * time.Second,
		batch:    200,
		l:        l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run blocks until ctx is cancelled.
func (s *Settler) Run(ctx context.Context) {
	s.l.Info("settlement sweep started", applogger.Duration("interval_ms", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep()
	for {
		select {
		case <-ctx.Done():
			s.l.Info("settlement sweep stopped")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep settles one batch of due predictions on a detached context.
func (s *Settler) Sweep() {
	defer func() {
		if r := recover(); r != nil {
			s.l.Error("settlement sweep panicked", applogger.Any("panic", r))
			s.metrics.RecordError("settlement_panic")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	due, err := s.preds.DueForSettlement(ctx, time.Now().UTC(), s.batch)
	if err != nil {
		s.l.Error("load due predictions", applogger.Error(err))
		s.metrics.RecordError("settlement_query")
		return
	}
	if len(due) == 0 {
		return
	}

	settled := 0
	for _, p := range due {
		if s.settleOne(ctx, p) {
			settled++
		}
	}
	s.l.Info("settlement sweep complete",
		applogger.Int("due", len(due)),
		applogger.Int("settled", settled),
	)
}

func (s *Settler) settleOne(ctx context.Context, p *models.Prediction) bool {
	resultPrice := s.prices.CurrentPrice(ctx, p.Symbol, p.Currency)
	status := Resolve(p.Direction, p.EntryPrice, resultPrice)

	if err := s.preds.Settle(ctx, p.ID, status, resultPrice); err != nil {
		s.l.Error("settle prediction",
			applogger.String("prediction_id", p.ID),
			applogger.Error(err),
		)
		s.metrics.RecordError("settlement_write")
		return false
	}

	p.Status = status
	p.ResultPrice = &resultPrice
	if err := s.pub.PublishSettled(ctx, p); err != nil {
		s.l.Warn("publish prediction.settled",
			applogger.String("prediction_id", p.ID),
			applogger.Error(err),
		)
	}
	return true
}

// Resolve decides the terminal status of an expired prediction. UP wins on a
// strict rise, DOWN on a strict fall; an unchanged price loses either way.
func Resolve(direction string, entry, result float64) string {
	switch {
	case direction == models.DirectionUp && result > entry:
		return models.StatusWon
	case direction == models.DirectionDown && result < entry:
		return models.StatusWon
	default:
		return models.StatusLost
	}
}
