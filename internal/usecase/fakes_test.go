package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	applogger "CoinPulse/pkg/logger"
)

func testLogger() *applogger.Logger {
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		panic(err)
	}
	return l
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User

	consumeCalls int
	refundCalls  int
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]*models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Get(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domrepo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) ListEligible(context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		if u.AutoPredictionsEnabled {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeUserStore) ConsumeQuota(_ context.Context, id string, stake int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consumeCalls++
	u, ok := s.users[id]
	if !ok {
		return domrepo.ErrNotFound
	}
	if u.FreePredictions < stake {
		return domrepo.ErrQuotaExceeded
	}
	u.FreePredictions -= stake
	u.TotalPredictionsUsed++
	return nil
}

func (s *fakeUserStore) RefundQuota(_ context.Context, id string, stake int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refundCalls++
	if u, ok := s.users[id]; ok {
		u.FreePredictions += stake
		u.TotalPredictionsUsed--
	}
	return nil
}

func (s *fakeUserStore) quota(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].FreePredictions
}

type fakePredictionStore struct {
	mu        sync.Mutex
	preds     []*models.Prediction
	insertErr error
	panicOn   string // user ID whose insert panics
	settled   map[string]string
}

func newFakePredictionStore() *fakePredictionStore {
	return &fakePredictionStore{settled: map[string]string{}}
}

func (s *fakePredictionStore) Insert(_ context.Context, p *models.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicOn != "" && p.UserID == s.panicOn {
		panic("store corrupted")
	}
	if s.insertErr != nil {
		return s.insertErr
	}
	cp := *p
	s.preds = append(s.preds, &cp)
	return nil
}

func (s *fakePredictionStore) ListByUser(_ context.Context, userID string, from, to time.Time, limit int) ([]*models.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Prediction{}
	for i := len(s.preds) - 1; i >= 0 && len(out) < limit; i-- {
		p := s.preds[i]
		if p.UserID != userID {
			continue
		}
		if !from.IsZero() && p.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && p.CreatedAt.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *fakePredictionStore) DueForSettlement(_ context.Context, now time.Time, limit int) ([]*models.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Prediction{}
	for _, p := range s.preds {
		if p.Status == models.StatusActive && !p.ExpiryTime.After(now) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *fakePredictionStore) Settle(_ context.Context, id, status string, resultPrice float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.preds {
		if p.ID == id {
			p.Status = status
			p.ResultPrice = &resultPrice
			s.settled[id] = status
			return nil
		}
	}
	return domrepo.ErrNotFound
}

func (s *fakePredictionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.preds)
}

func (s *fakePredictionStore) countForUser(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.preds {
		if p.UserID == userID {
			n++
		}
	}
	return n
}

type fakePriceProvider struct {
	series models.PriceSeries
	price  float64
}

func (p *fakePriceProvider) PriceSeries(context.Context, string, domrepo.Timeframe) models.PriceSeries {
	return p.series
}

func (p *fakePriceProvider) CurrentPrice(context.Context, string, string) float64 {
	return p.price
}

type fakeSentiment struct{ report models.SentimentReport }

func (f *fakeSentiment) Analyze(context.Context, string) models.SentimentReport {
	return f.report
}

type fakeScorer struct{ result models.ScoringResult }

func (f *fakeScorer) Score(models.IndicatorBundle, models.SentimentReport) models.ScoringResult {
	return f.result
}

type fakePublisher struct {
	mu      sync.Mutex
	created []string
	settled []string
	err     error
}

func (p *fakePublisher) PublishCreated(_ context.Context, pr *models.Prediction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.created = append(p.created, pr.ID)
	return nil
}

func (p *fakePublisher) PublishSettled(_ context.Context, pr *models.Prediction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.settled = append(p.settled, pr.ID)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	mu            sync.Mutex
	predictions   int
	quotaRejected int
	errors        map[string]int
	passes        int
	generated     int
	failed        int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: map[string]int{}}
}

func (m *fakeMetrics) RecordPrediction(string, string, string) {
	m.mu.Lock()
	m.predictions++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordQuotaRejected() {
	m.mu.Lock()
	m.quotaRejected++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLastPrice(string, float64) {}

func (m *fakeMetrics) RecordLatency(string, float64) {}

func (m *fakeMetrics) RecordBatchPass(_ float64, generated, failed int) {
	m.mu.Lock()
	m.passes++
	m.generated += generated
	m.failed += failed
	m.mu.Unlock()
}

var errInsertBoom = errors.New("insert failed")

func defaultSeries() models.PriceSeries {
	prices := []float64{100, 101, 99, 102, 98, 103, 97, 104, 96, 105}
	s := make(models.PriceSeries, len(prices))
	for i, v := range prices {
		s[i] = models.PricePoint{Timestamp: int64(i) * 60_000, Price: v}
	}
	return s
}

func newTestGenerator(users *fakeUserStore, preds *fakePredictionStore, pub *fakePublisher, m *fakeMetrics) *Generator {
	return NewGenerator(
		users,
		preds,
		&fakePriceProvider{series: defaultSeries(), price: 45230.50},
		&fakeSentiment{report: models.SentimentReport{OverallSentiment: 0.2, Confidence: 0.7}},
		&fakeScorer{result: models.ScoringResult{Direction: models.DirectionUp, Confidence: 72.5, Reasoning: "test"}},
		pub,
		m,
		testLogger(),
	)
}
