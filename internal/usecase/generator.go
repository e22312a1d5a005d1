package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	domsvc "CoinPulse/internal/domain/service"
	"CoinPulse/internal/services/indicators"
	applogger "CoinPulse/pkg/logger"
)

// Generation modes. Automated predictions come from the background scheduler
// and do not touch the user's quota; manual ones are user-initiated and
// consume free predictions up front.
const (
	ModeAutomated = "automated"
	ModeManual    = "manual"
)

// GenerateParams carries one generation request through the pipeline.
type GenerateParams struct {
	UserID    string
	Symbol    string
	Timeframe domrepo.Timeframe
	Mode      string
	Stake     int
}

// Generator runs the full prediction pipeline: price history, indicators,
// sentiment, scoring, record build, persist, publish.
type Generator struct {
	users     domrepo.UserStore
	preds     domrepo.PredictionStore
	prices    domrepo.PriceProvider
	sentiment domsvc.SentimentProvider
	scorer    domsvc.Scorer
	pub       domrepo.Publisher
	metrics   domrepo.Metrics
	l         *applogger.Logger
}

func NewGenerator(
	users domrepo.UserStore,
	preds domrepo.PredictionStore,
	prices domrepo.PriceProvider,
	sentiment domsvc.SentimentProvider,
	scorer domsvc.Scorer,
	pub domrepo.Publisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *Generator {
	return &Generator{
		users:     users,
		preds:     preds,
		prices:    prices,
		sentiment: sentiment,
		scorer:    scorer,
		pub:       pub,
		metrics:   metrics,
		l:         l,
	}
}

// Generate produces and persists one prediction. Quota errors surface as
// domrepo.ErrQuotaExceeded with the balance untouched; an insert failure on
// the manual path refunds the stake best-effort.
func (g *Generator) Generate(ctx context.Context, params GenerateParams) (*models.Prediction, error) {
	start := time.Now()

	symbol := strings.ToUpper(params.Symbol)
	// The raw timeframe is preserved on the record; an unrecognized one falls
	// back through the mode's expiry policy (5 min manual, 60 min automated).
	tf := params.Timeframe
	if tf == "" {
		tf = domrepo.DefaultTimeframe()
	}
	stake := params.Stake
	if stake < 1 {
		stake = 1
	}

	currency := "USD"
	if user, err := g.users.Get(ctx, params.UserID); err == nil && user.PreferredCurrency != "" {
		currency = user.PreferredCurrency
	}

	if params.Mode == ModeManual {
		if err := g.users.ConsumeQuota(ctx, params.UserID, stake); err != nil {
			if err == domrepo.ErrQuotaExceeded {
				g.metrics.RecordQuotaRejected()
			}
			return nil, err
		}
	}

	// History lookups need a real candle resolution; fold unknown timeframes
	// to the default for the query only.
	seriesTF := tf
	if !domrepo.IsValidTimeframe(seriesTF) {
		seriesTF = domrepo.DefaultTimeframe()
	}
	series := g.prices.PriceSeries(ctx, symbol, seriesTF)
	bundle := indicators.Calculate(series)
	report := g.sentiment.Analyze(ctx, symbol)
	result := g.scorer.Score(bundle, report)

	entryPrice := g.prices.CurrentPrice(ctx, symbol, currency)
	g.metrics.RecordLastPrice(symbol, entryPrice)

	policy := domrepo.ManualExpiry
	if params.Mode == ModeAutomated {
		policy = domrepo.AutomatedExpiry
	}
	now := time.Now().UTC()

	p := &models.Prediction{
		ID:                  uuid.NewString(),
		UserID:              params.UserID,
		Symbol:              symbol,
		Direction:           result.Direction,
		Timeframe:           string(tf),
		EntryPrice:          entryPrice,
		EntryTime:           now,
		ExpiryTime:          now.Add(time.Duration(policy.Minutes(tf)) * time.Minute),
		Currency:            currency,
		ConfidenceScore:     result.Confidence,
		Status:              models.StatusActive,
		CreatedAt:           now,
		AIGenerated:         params.Mode == ModeAutomated,
		TechnicalIndicators: bundle,
		SentimentAnalysis:   report,
		StakeAmount:         stake,
		IsFree:              true,
		Reasoning:           result.Reasoning,
	}

	if err := g.preds.Insert(ctx, p); err != nil {
		g.metrics.RecordError("prediction_insert")
		if params.Mode == ModeManual {
			if rerr := g.users.RefundQuota(ctx, params.UserID, stake); rerr != nil {
				g.l.Error("quota refund after failed insert",
					applogger.String("user_id", params.UserID),
					applogger.Error(rerr),
				)
			}
		}
		return nil, err
	}

	if err := g.pub.PublishCreated(ctx, p); err != nil {
		// Eventing is best-effort; the prediction is already durable.
		g.l.Warn("publish prediction.created",
			applogger.String("prediction_id", p.ID),
			applogger.Error(err),
		)
	}

	g.metrics.RecordPrediction(params.Mode, symbol, p.Direction)
	g.metrics.RecordLatency("generate", time.Since(start).Seconds())

	g.l.Info("prediction generated",
		applogger.String("user_id", params.UserID),
		applogger.String("symbol", symbol),
		applogger.String("direction", p.Direction),
		applogger.String("mode", params.Mode),
		applogger.Float64("confidence", p.ConfidenceScore),
	)
	return p, nil
}

// ListByUser returns the user's most recent predictions, newest first,
// optionally narrowed to a created_at window.
func (g *Generator) ListByUser(ctx context.Context, userID string, from, to time.Time, limit int) ([]*models.Prediction, error) {
	return g.preds.ListByUser(ctx, userID, from, to, limit)
}

// CurrentPrice exposes the provider chain for the price endpoint.
func (g *Generator) CurrentPrice(ctx context.Context, symbol, currency string) float64 {
	return g.prices.CurrentPrice(ctx, strings.ToUpper(symbol), strings.ToUpper(currency))
}
