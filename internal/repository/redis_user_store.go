package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	applogger "CoinPulse/pkg/logger"
)

// RedisUserStore implements UserStore over Redis hashes. Quota counters are
// mutated exclusively through HINCRBY so concurrent requests can not oversell
// quota via read-modify-write races.
type RedisUserStore struct {
	rdb    *redis.Client
	prefix string
	l      *applogger.Logger
}

func NewRedisUserStore(rdb *redis.Client, prefix string) *RedisUserStore {
	return &RedisUserStore{rdb: rdb, prefix: prefix}
}

// SetLogger injects a structured logger.
func (s *RedisUserStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *RedisUserStore) userKey(id string) string {
	return fmt.Sprintf("%s:user:%s", s.prefix, id)
}

func (s *RedisUserStore) indexKey() string {
	return s.prefix + ":users"
}

func (s *RedisUserStore) Get(ctx context.Context, id string) (*models.User, error) {
	fields, err := s.rdb.HGetAll(ctx, s.userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, domrepo.ErrNotFound
	}
	return userFromHash(id, fields), nil
}

func (s *RedisUserStore) ListEligible(ctx context.Context) ([]*models.User, error) {
	ids, err := s.rdb.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	pipe := s.rdb.Pipeline()
	cmds := make(map[string]*redis.MapStringStringCmd, len(ids))
	for _, id := range ids {
		cmds[id] = pipe.HGetAll(ctx, s.userKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		fields, err := cmds[id].Result()
		if err != nil || len(fields) == 0 {
			continue
		}
		// Eligible unless the flag is explicitly false.
		if fields["auto_predictions_enabled"] == "false" {
			continue
		}
		out = append(out, userFromHash(id, fields))
	}
	return out, nil
}

func (s *RedisUserStore) ConsumeQuota(ctx context.Context, id string, stake int) error {
	key := s.userKey(id)
	remaining, err := s.rdb.HIncrBy(ctx, key, "free_predictions", int64(-stake)).Result()
	if err != nil {
		return fmt.Errorf("consume quota %s: %w", id, err)
	}
	if remaining < 0 {
		// Overdrawn: compensate and reject. The compensating increment keeps
		// the counter consistent under concurrent consumers.
		if _, err := s.rdb.HIncrBy(ctx, key, "free_predictions", int64(stake)).Result(); err != nil {
			return fmt.Errorf("refund after overdraft %s: %w", id, err)
		}
		return domrepo.ErrQuotaExceeded
	}
	if _, err := s.rdb.HIncrBy(ctx, key, "total_predictions_used", 1).Result(); err != nil {
		return fmt.Errorf("bump usage %s: %w", id, err)
	}
	return nil
}

func (s *RedisUserStore) RefundQuota(ctx context.Context, id string, stake int) error {
	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.userKey(id), "free_predictions", int64(stake))
	pipe.HIncrBy(ctx, s.userKey(id), "total_predictions_used", -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("refund quota %s: %w", id, err)
	}
	return nil
}

func userFromHash(id string, fields map[string]string) *models.User {
	u := &models.User{
		ID:                     id,
		AutoPredictionsEnabled: fields["auto_predictions_enabled"] != "false",
		PreferredCurrency:      fields["preferred_currency"],
	}
	if u.PreferredCurrency == "" {
		u.PreferredCurrency = "USD"
	}
	if v, err := strconv.Atoi(fields["free_predictions"]); err == nil {
		u.FreePredictions = v
	}
	if v, err := strconv.Atoi(fields["total_predictions_used"]); err == nil {
		u.TotalPredictionsUsed = v
	}
	return u
}

var _ domrepo.UserStore = (*RedisUserStore)(nil)
