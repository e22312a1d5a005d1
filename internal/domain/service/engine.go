package service

import (
	"context"

	"CoinPulse/internal/domain/models"
)

// SentimentProvider synthesizes a bounded sentiment report for a symbol.
// Implementations never return an error; a failed analysis degrades to the
// neutral report.
type SentimentProvider interface {
	Analyze(ctx context.Context, symbol string) models.SentimentReport
}

// Scorer blends indicators and sentiment into a directional confidence call.
// The no-throw contract applies: any internal failure degrades to a fallback
// result, never an error.
type Scorer interface {
	Score(bundle models.IndicatorBundle, report models.SentimentReport) models.ScoringResult
}
