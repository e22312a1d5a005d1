package sentiment

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
)

type stubSource struct {
	name      string
	sentiment float64
	volume    float64
	err       error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Opinion(context.Context, string) (float64, float64, error) {
	return s.sentiment, s.volume, s.err
}

func TestAnalyzeMeanOfSources(t *testing.T) {
	s := New(
		WithSources(
			&stubSource{name: "a", sentiment: 0.5, volume: 100},
			&stubSource{name: "b", sentiment: -0.2, volume: 200},
			&stubSource{name: "c", sentiment: 0.3, volume: 300},
		),
		WithRand(rand.New(rand.NewSource(1))),
	)

	report := s.Analyze(context.Background(), "BTC")
	if len(report.Sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(report.Sources))
	}
	if math.Abs(report.OverallSentiment-0.2) > 1e-9 {
		t.Fatalf("overall = %v, want 0.2", report.OverallSentiment)
	}
	if report.Confidence < 0.6 || report.Confidence > 0.9 {
		t.Fatalf("confidence %v out of [0.6,0.9]", report.Confidence)
	}
}

func TestAnalyzeSkipsFailingSource(t *testing.T) {
	s := New(
		WithSources(
			&stubSource{name: "a", sentiment: 0.4, volume: 100},
			&stubSource{name: "b", err: errors.New("feed down")},
			&stubSource{name: "c", sentiment: -0.4, volume: 300},
		),
		WithRand(rand.New(rand.NewSource(1))),
	)

	report := s.Analyze(context.Background(), "ETH")
	if len(report.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(report.Sources))
	}
	if report.OverallSentiment != 0 {
		t.Fatalf("overall = %v, want mean of surviving sources (0)", report.OverallSentiment)
	}
	for _, src := range report.Sources {
		if src.Name == "b" {
			t.Fatalf("failed source contributed to report")
		}
	}
}

func TestAnalyzeAllFailIsNeutral(t *testing.T) {
	s := New(
		WithSources(
			&stubSource{name: "a", err: errors.New("down")},
			&stubSource{name: "b", err: errors.New("down")},
		),
		WithRand(rand.New(rand.NewSource(1))),
	)

	report := s.Analyze(context.Background(), "SOL")
	if report.OverallSentiment != 0 {
		t.Fatalf("overall = %v, want 0", report.OverallSentiment)
	}
	if report.Confidence != 0.5 {
		t.Fatalf("confidence = %v, want 0.5", report.Confidence)
	}
	if report.Sources == nil || len(report.Sources) != 0 {
		t.Fatalf("expected empty non-nil sources, got %#v", report.Sources)
	}
}

func TestDefaultSourcesBounded(t *testing.T) {
	s := New(WithRand(rand.New(rand.NewSource(3))))
	for i := 0; i < 100; i++ {
		report := s.Analyze(context.Background(), "BTC")
		if report.OverallSentiment < -1 || report.OverallSentiment > 1 {
			t.Fatalf("overall %v out of [-1,1]", report.OverallSentiment)
		}
		if len(report.Sources) != 3 {
			t.Fatalf("expected 3 default sources, got %d", len(report.Sources))
		}
		for _, src := range report.Sources {
			if src.Sentiment < -1 || src.Sentiment > 1 {
				t.Fatalf("source %s sentiment %v out of [-1,1]", src.Name, src.Sentiment)
			}
			if src.Volume <= 0 {
				t.Fatalf("source %s volume %v not positive", src.Name, src.Volume)
			}
		}
	}
}
