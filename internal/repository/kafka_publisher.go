package repository

import (
	"context"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	pkgkafka "CoinPulse/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Events are keyed by symbol
// so all events of one market land in the same partition.
type KafkaPublisher struct {
	producer     *pkgkafka.Producer
	createdTopic string
	settledTopic string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, createdTopic, settledTopic string) domrepo.Publisher {
	return &KafkaPublisher{producer: producer, createdTopic: createdTopic, settledTopic: settledTopic}
}

func (p *KafkaPublisher) PublishCreated(ctx context.Context, pr *models.Prediction) error {
	return p.producer.Publish(ctx, p.createdTopic, []byte(pr.Symbol), map[string]interface{}{
		"prediction_id": pr.ID,
		"user_id":       pr.UserID,
		"symbol":        pr.Symbol,
		"direction":     pr.Direction,
		"confidence":    pr.ConfidenceScore,
		"timeframe":     pr.Timeframe,
		"entry_price":   pr.EntryPrice,
		"expiry_time":   pr.ExpiryTime.UnixMilli(),
		"ai_generated":  pr.AIGenerated,
	})
}

func (p *KafkaPublisher) PublishSettled(ctx context.Context, pr *models.Prediction) error {
	var result float64
	if pr.ResultPrice != nil {
		result = *pr.ResultPrice
	}
	return p.producer.Publish(ctx, p.settledTopic, []byte(pr.Symbol), map[string]interface{}{
		"prediction_id": pr.ID,
		"user_id":       pr.UserID,
		"symbol":        pr.Symbol,
		"status":        pr.Status,
		"entry_price":   pr.EntryPrice,
		"result_price":  result,
	})
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher satisfies Publisher when eventing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishCreated(context.Context, *models.Prediction) error { return nil }
func (NoopPublisher) PublishSettled(context.Context, *models.Prediction) error { return nil }
func (NoopPublisher) Close() error                                             { return nil }

var _ domrepo.Publisher = (*NoopPublisher)(nil)
