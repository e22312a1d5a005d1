package scoring

import (
	"math"
	"math/rand"
	"strings"
	"sync"

	"CoinPulse/internal/domain/models"
	applogger "CoinPulse/pkg/logger"
)

const (
	featureCount     = 5
	bootstrapSamples = 256
	trainEpochs      = 50
	learningRate     = 0.1

	minConfidence = 55.0
	maxConfidence = 95.0

	highVolatilityPct  = 8.0
	strongSentimentAbs = 0.5

	fallbackReasoning = "fallback algorithm used due to model error"
	genericReasoning  = "comprehensive technical analysis"
)

// Model is a binary direction classifier over a fixed 5-dimensional feature
// vector, with a standard scaler in front. Both are fit once at construction
// on synthetic bootstrap data (random features, random labels) purely to make
// the pipeline operable without a real training corpus. This is a calibration
// placeholder, not a claim of predictive validity.
//
// Weights and scaler are immutable after New returns; the model is safe for
// concurrent use. Only the random source is guarded.
type Model struct {
	weights [featureCount]float64
	bias    float64
	mean    [featureCount]float64
	scale   [featureCount]float64

	mu  sync.Mutex
	rng *rand.Rand
	l   *applogger.Logger
}

// Option configures Model.
type Option func(*Model)

// WithRand injects the random source. Fallback branches draw from it, so a
// seeded source makes them reproducible under test.
func WithRand(r *rand.Rand) Option {
	return func(m *Model) { m.rng = r }
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(m *Model) { m.l = l }
}

// New constructs and fits the model. Construct once at process start and
// inject wherever scoring is needed.
func New(opts ...Option) *Model {
	m := &Model{}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	m.fit()
	return m
}

// fit generates the synthetic bootstrap corpus, derives the scaler from it
// and trains the logistic weights with plain gradient descent.
func (m *Model) fit() {
	features := make([][featureCount]float64, bootstrapSamples)
	labels := make([]float64, bootstrapSamples)
	for i := range features {
		features[i] = [featureCount]float64{
			m.rng.Float64(),            // normalized rsi
			m.rng.Float64()*0.1 - 0.05, // normalized macd
			m.rng.Float64() * 1.5,      // normalized volatility
			m.rng.Float64()*2 - 1,      // raw sentiment
			m.rng.Float64() - 0.5,      // normalized short displacement
		}
		labels[i] = float64(m.rng.Intn(2))
	}

	for j := 0; j < featureCount; j++ {
		var sum float64
		for i := range features {
			sum += features[i][j]
		}
		m.mean[j] = sum / bootstrapSamples
		var variance float64
		for i := range features {
			d := features[i][j] - m.mean[j]
			variance += d * d
		}
		m.scale[j] = math.Sqrt(variance / bootstrapSamples)
		if m.scale[j] == 0 {
			m.scale[j] = 1
		}
	}

	scaled := make([][featureCount]float64, bootstrapSamples)
	for i := range features {
		scaled[i] = m.standardize(features[i])
	}
	for epoch := 0; epoch < trainEpochs; epoch++ {
		var gradW [featureCount]float64
		var gradB float64
		for i := range scaled {
			p := sigmoid(dot(m.weights, scaled[i]) + m.bias)
			err := p - labels[i]
			for j := 0; j < featureCount; j++ {
				gradW[j] += err * scaled[i][j]
			}
			gradB += err
		}
		for j := 0; j < featureCount; j++ {
			m.weights[j] -= learningRate * gradW[j] / bootstrapSamples
		}
		m.bias -= learningRate * gradB / bootstrapSamples
	}
}

// Score blends indicators and sentiment into a clamped directional
// confidence. It never returns an error and never panics: any internal
// failure degrades to a random-direction fallback so one symbol can not
// break an unattended batch.
func (m *Model) Score(bundle models.IndicatorBundle, report models.SentimentReport) (res models.ScoringResult) {
	defer func() {
		if r := recover(); r != nil {
			if m.l != nil {
				m.l.Error("scoring model failure, using fallback", applogger.Any("panic", r))
			}
			res = m.fallback(60, 80, fallbackReasoning)
		}
	}()

	if len(bundle) == 0 {
		return m.fallback(55, 75, "insufficient price history, heuristic estimate")
	}

	raw := [featureCount]float64{
		bundle[models.IndRSI] / 100,
		bundle[models.IndMACD] / 100,
		bundle[models.IndVolatilityPct] / 10,
		report.OverallSentiment,
		bundle[models.IndPriceVsSMAShort] / 10,
	}
	for _, f := range raw {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return m.fallback(60, 80, fallbackReasoning)
		}
	}

	p := sigmoid(dot(m.weights, m.standardize(raw)) + m.bias)
	direction := models.DirectionDown
	base := (1 - p) * 100
	if p >= 0.5 {
		direction = models.DirectionUp
		base = p * 100
	}

	confidence := clamp(adjust(base, bundle[models.IndVolatilityPct], report.OverallSentiment))

	return models.ScoringResult{
		Direction:      direction,
		Confidence:     round1(confidence),
		Reasoning:      reasoning(bundle, report),
		TechnicalScore: round1(base),
		SentimentScore: report.OverallSentiment,
	}
}

// adjust applies the volatility and sentiment heuristics: de-rate confidence
// in choppy markets, up-rate it when sentiment is decisive.
func adjust(base, volatilityPct, sentiment float64) float64 {
	if volatilityPct > highVolatilityPct {
		base *= 0.9
	}
	if math.Abs(sentiment) > strongSentimentAbs {
		base *= 1.1
	}
	return base
}

func clamp(confidence float64) float64 {
	return math.Min(maxConfidence, math.Max(minConfidence, confidence))
}

func reasoning(bundle models.IndicatorBundle, report models.SentimentReport) string {
	var clauses []string
	if rsi := bundle[models.IndRSI]; rsi > 70 {
		clauses = append(clauses, "RSI indicates overbought conditions")
	} else if rsi < 30 {
		clauses = append(clauses, "RSI indicates oversold conditions")
	}
	if s := report.OverallSentiment; s > 0.3 {
		clauses = append(clauses, "positive social sentiment")
	} else if s < -0.3 {
		clauses = append(clauses, "negative social sentiment")
	}
	if d := bundle[models.IndPriceVsSMAShort]; d > 2 {
		clauses = append(clauses, "price trading above short-term average")
	} else if d < -2 {
		clauses = append(clauses, "price trading below short-term average")
	}
	if len(clauses) == 0 {
		return genericReasoning
	}
	return strings.Join(clauses, "; ")
}

// fallback produces a uniformly random direction with confidence drawn
// uniformly from [lo, hi].
func (m *Model) fallback(lo, hi float64, why string) models.ScoringResult {
	m.mu.Lock()
	direction := models.DirectionDown
	if m.rng.Intn(2) == 1 {
		direction = models.DirectionUp
	}
	confidence := lo + m.rng.Float64()*(hi-lo)
	m.mu.Unlock()

	return models.ScoringResult{
		Direction:      direction,
		Confidence:     round1(confidence),
		Reasoning:      why,
		TechnicalScore: 0,
		SentimentScore: 0,
	}
}

func (m *Model) standardize(raw [featureCount]float64) [featureCount]float64 {
	var out [featureCount]float64
	for j := 0; j < featureCount; j++ {
		out[j] = (raw[j] - m.mean[j]) / m.scale[j]
	}
	return out
}

func dot(a, b [featureCount]float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
