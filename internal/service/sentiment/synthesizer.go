package sentiment

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"CoinPulse/internal/domain/models"
	svcmetrics "CoinPulse/internal/service/metrics"
	applogger "CoinPulse/pkg/logger"
)

// Source is one independent opinion source. Opinion returns a sentiment in
// [-1,1] and an activity/volume count for the symbol.
type Source interface {
	Name() string
	Opinion(ctx context.Context, symbol string) (sentiment, volume float64, err error)
}

// Synthesizer aggregates per-source opinions into a single bounded report.
// A failing source is skipped; if every source fails the neutral report is
// returned. Analyze never returns an error.
type Synthesizer struct {
	sources []Source
	l       *applogger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures Synthesizer.
type Option func(*Synthesizer)

// WithSources replaces the default mock sources.
func WithSources(sources ...Source) Option {
	return func(s *Synthesizer) { s.sources = sources }
}

// WithRand injects the random source used by the mock sources and the
// synthetic overall confidence.
func WithRand(r *rand.Rand) Option {
	return func(s *Synthesizer) { s.rng = r }
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(s *Synthesizer) { s.l = l }
}

// New creates a Synthesizer. Without WithSources it queries the three
// built-in mock sources.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if s.sources == nil {
		s.sources = []Source{
			&mockSource{name: "social_media", parent: s, volumeBase: 5000},
			&mockSource{name: "news_feeds", parent: s, volumeBase: 800},
			&mockSource{name: "market_forums", parent: s, volumeBase: 2200},
		}
	}
	svcmetrics.Register()
	return s
}

// Analyze queries every source and aggregates via unweighted mean.
func (s *Synthesizer) Analyze(ctx context.Context, symbol string) models.SentimentReport {
	start := time.Now()
	defer func() {
		svcmetrics.SentimentLatency.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	}()

	contributions := make([]models.SentimentSource, 0, len(s.sources))
	var sum float64
	for _, src := range s.sources {
		val, volume, err := src.Opinion(ctx, symbol)
		if err != nil {
			svcmetrics.SentimentSourceErrors.WithLabelValues(src.Name()).Inc()
			if s.l != nil {
				s.l.Warn("sentiment source failed",
					applogger.String("source", src.Name()),
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			continue
		}
		contributions = append(contributions, models.SentimentSource{
			Name:      src.Name(),
			Sentiment: val,
			Volume:    volume,
		})
		sum += val
	}

	if len(contributions) == 0 {
		return models.NeutralSentiment()
	}

	return models.SentimentReport{
		OverallSentiment: sum / float64(len(contributions)),
		Sources:          contributions,
		Confidence:       s.drawConfidence(),
	}
}

// drawConfidence produces the synthetic overall confidence in [0.6, 0.9].
func (s *Synthesizer) drawConfidence() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 0.6 + s.rng.Float64()*0.3
}

// mockSource emits a random bounded opinion. Real feeds are out of scope;
// the mock keeps the pipeline shape intact.
type mockSource struct {
	name       string
	parent     *Synthesizer
	volumeBase float64
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Opinion(_ context.Context, _ string) (float64, float64, error) {
	m.parent.mu.Lock()
	defer m.parent.mu.Unlock()
	sentiment := m.parent.rng.Float64()*2 - 1
	volume := m.volumeBase * (0.5 + m.parent.rng.Float64())
	return sentiment, volume, nil
}
