package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	applogger "CoinPulse/pkg/logger"
)

// RedisPredictionStore keeps predictions as JSON blobs, with two sorted-set
// indexes: one per user ordered by creation time, and a global one ordered by
// expiry time that drives the settlement sweep.
type RedisPredictionStore struct {
	rdb    *redis.Client
	prefix string
	l      *applogger.Logger
}

func NewRedisPredictionStore(rdb *redis.Client, prefix string) *RedisPredictionStore {
	return &RedisPredictionStore{rdb: rdb, prefix: prefix}
}

func (s *RedisPredictionStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *RedisPredictionStore) predKey(id string) string {
	return fmt.Sprintf("%s:prediction:%s", s.prefix, id)
}

func (s *RedisPredictionStore) userIndexKey(userID string) string {
	return fmt.Sprintf("%s:user_predictions:%s", s.prefix, userID)
}

func (s *RedisPredictionStore) activeKey() string {
	return s.prefix + ":predictions_active"
}

func (s *RedisPredictionStore) Insert(ctx context.Context, p *models.Prediction) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prediction %s: %w", p.ID, err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.predKey(p.ID), raw, 0)
	pipe.ZAdd(ctx, s.userIndexKey(p.UserID), redis.Z{
		Score:  float64(p.CreatedAt.UnixMilli()),
		Member: p.ID,
	})
	pipe.ZAdd(ctx, s.activeKey(), redis.Z{
		Score:  float64(p.ExpiryTime.UnixMilli()),
		Member: p.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert prediction %s: %w", p.ID, err)
	}
	return nil
}

func (s *RedisPredictionStore) ListByUser(ctx context.Context, userID string, from, to time.Time, limit int) ([]*models.Prediction, error) {
	if limit <= 0 {
		limit = 100
	}

	var ids []string
	var err error
	if from.IsZero() && to.IsZero() {
		ids, err = s.rdb.ZRevRange(ctx, s.userIndexKey(userID), 0, int64(limit-1)).Result()
	} else {
		// Window on the index score (created_at ms) so the limit cut happens
		// inside the window, not before it.
		min, max := "-inf", "+inf"
		if !from.IsZero() {
			min = strconv.FormatInt(from.UnixMilli(), 10)
		}
		if !to.IsZero() {
			max = strconv.FormatInt(to.UnixMilli(), 10)
		}
		ids, err = s.rdb.ZRevRangeByScore(ctx, s.userIndexKey(userID), &redis.ZRangeBy{
			Min:   min,
			Max:   max,
			Count: int64(limit),
		}).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("list predictions for %s: %w", userID, err)
	}
	return s.loadMany(ctx, ids)
}

func (s *RedisPredictionStore) DueForSettlement(ctx context.Context, now time.Time, limit int) ([]*models.Prediction, error) {
	if limit <= 0 {
		limit = 200
	}
	ids, err := s.rdb.ZRangeByScore(ctx, s.activeKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("due predictions: %w", err)
	}
	return s.loadMany(ctx, ids)
}

func (s *RedisPredictionStore) Settle(ctx context.Context, id string, status string, resultPrice float64) error {
	raw, err := s.rdb.Get(ctx, s.predKey(id)).Result()
	if err == redis.Nil {
		return domrepo.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load prediction %s: %w", id, err)
	}

	var p models.Prediction
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return fmt.Errorf("decode prediction %s: %w", id, err)
	}
	p.Status = status
	p.ResultPrice = &resultPrice

	updated, err := json.Marshal(&p)
	if err != nil {
		return fmt.Errorf("marshal prediction %s: %w", id, err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.predKey(id), updated, 0)
	pipe.ZRem(ctx, s.activeKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("settle prediction %s: %w", id, err)
	}
	return nil
}

func (s *RedisPredictionStore) loadMany(ctx context.Context, ids []string) ([]*models.Prediction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.predKey(id)
	}
	raws, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load predictions: %w", err)
	}

	out := make([]*models.Prediction, 0, len(raws))
	for i, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			// Index entry without a value, likely a partially deleted record.
			if s.l != nil {
				s.l.Warn("prediction missing for index entry", applogger.String("id", ids[i]))
			}
			continue
		}
		var p models.Prediction
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			if s.l != nil {
				s.l.Warn("skip undecodable prediction", applogger.String("id", ids[i]), applogger.Error(err))
			}
			continue
		}
		out = append(out, &p)
	}
	return out, nil
}

var _ domrepo.PredictionStore = (*RedisPredictionStore)(nil)
