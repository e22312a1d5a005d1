package usecase

import (
	"testing"
	"time"

	"CoinPulse/internal/domain/models"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		direction     string
		entry, result float64
		want          string
	}{
		{models.DirectionUp, 100, 101, models.StatusWon},
		{models.DirectionUp, 100, 100, models.StatusLost},
		{models.DirectionUp, 100, 99, models.StatusLost},
		{models.DirectionDown, 100, 99, models.StatusWon},
		{models.DirectionDown, 100, 100, models.StatusLost},
		{models.DirectionDown, 100, 101, models.StatusLost},
	}
	for _, c := range cases {
		if got := Resolve(c.direction, c.entry, c.result); got != c.want {
			t.Fatalf("Resolve(%s, %v, %v) = %s, want %s", c.direction, c.entry, c.result, got, c.want)
		}
	}
}

func expiredPrediction(id, direction string, entry float64) *models.Prediction {
	now := time.Now().UTC()
	return &models.Prediction{
		ID:         id,
		UserID:     "u1",
		Symbol:     "BTC",
		Direction:  direction,
		Timeframe:  "5m",
		EntryPrice: entry,
		EntryTime:  now.Add(-10 * time.Minute),
		ExpiryTime: now.Add(-5 * time.Minute),
		Currency:   "USD",
		Status:     models.StatusActive,
		CreatedAt:  now.Add(-10 * time.Minute),
	}
}

func TestSweepSettlesDuePredictions(t *testing.T) {
	preds := newFakePredictionStore()
	up := expiredPrediction("p-up", models.DirectionUp, 100)
	down := expiredPrediction("p-down", models.DirectionDown, 100)
	pending := expiredPrediction("p-pending", models.DirectionUp, 100)
	pending.ExpiryTime = time.Now().UTC().Add(time.Hour)
	preds.preds = []*models.Prediction{up, down, pending}

	pub := &fakePublisher{}
	m := newFakeMetrics()
	s := NewSettler(preds, &fakePriceProvider{price: 105}, pub, m, testLogger())

	s.Sweep()

	if got := preds.settled["p-up"]; got != models.StatusWon {
		t.Fatalf("p-up settled %q, want WON at 105 > 100", got)
	}
	if got := preds.settled["p-down"]; got != models.StatusLost {
		t.Fatalf("p-down settled %q, want LOST at 105 > 100", got)
	}
	if _, ok := preds.settled["p-pending"]; ok {
		t.Fatalf("unexpired prediction was settled")
	}
	if len(pub.settled) != 2 {
		t.Fatalf("settled events = %d, want 2", len(pub.settled))
	}
}

func TestSweepTieSettlesLost(t *testing.T) {
	preds := newFakePredictionStore()
	preds.preds = []*models.Prediction{expiredPrediction("p-tie", models.DirectionUp, 100)}
	s := NewSettler(preds, &fakePriceProvider{price: 100}, &fakePublisher{}, newFakeMetrics(), testLogger())

	s.Sweep()

	if got := preds.settled["p-tie"]; got != models.StatusLost {
		t.Fatalf("tie settled %q, want LOST", got)
	}
}

func TestSweepRecordsResultPrice(t *testing.T) {
	preds := newFakePredictionStore()
	preds.preds = []*models.Prediction{expiredPrediction("p1", models.DirectionDown, 200)}
	s := NewSettler(preds, &fakePriceProvider{price: 150}, &fakePublisher{}, newFakeMetrics(), testLogger())

	s.Sweep()

	p := preds.preds[0]
	if p.ResultPrice == nil || *p.ResultPrice != 150 {
		t.Fatalf("result price = %v, want 150", p.ResultPrice)
	}
	if p.Status != models.StatusWon {
		t.Fatalf("status = %q, want WON", p.Status)
	}
}

func TestSweepBatchLimit(t *testing.T) {
	preds := newFakePredictionStore()
	for i := 0; i < 5; i++ {
		preds.preds = append(preds.preds, expiredPrediction(string(rune('a'+i)), models.DirectionUp, 100))
	}
	s := NewSettler(preds, &fakePriceProvider{price: 101}, &fakePublisher{}, newFakeMetrics(), testLogger(),
		WithSettlerBatch(2),
	)

	s.Sweep()
	if len(preds.settled) != 2 {
		t.Fatalf("settled %d, want batch limit 2", len(preds.settled))
	}

	s.Sweep()
	s.Sweep()
	if len(preds.settled) != 5 {
		t.Fatalf("settled %d after repeated sweeps, want 5", len(preds.settled))
	}
}
