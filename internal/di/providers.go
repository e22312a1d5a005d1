package di

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"time"

	domrepo "CoinPulse/internal/domain/repository"
	domsvc "CoinPulse/internal/domain/service"
	"CoinPulse/internal/handler/api"
	internalrepo "CoinPulse/internal/repository"
	"CoinPulse/internal/service/coingecko"
	"CoinPulse/internal/service/prices"
	"CoinPulse/internal/service/sentiment"
	"CoinPulse/internal/services/scoring"
	"CoinPulse/internal/usecase"
	"CoinPulse/pkg/cache"
	pkgch "CoinPulse/pkg/clickhouse"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	pkgkafka "CoinPulse/pkg/kafka"
	applogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/metrics"
	"CoinPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lcfg := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lcfg.Level == "" {
		lcfg.Level = "info"
	}
	if lcfg.Format == "" {
		lcfg.Format = "console"
	}
	if lcfg.Output == "" {
		lcfg.Output = "stdout"
	}
	return applogger.New(lcfg)
}

// ProvideRedisCache creates the Redis connection shared by the stores and
// the spot price cache.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}

	opts := []cache.RedisOption{
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	}
	if cfg.Redis.KeyPrefix != "" {
		opts = append(opts, cache.WithRedisPrefix(cfg.Redis.KeyPrefix))
	}
	return cache.NewRedisCache(opts...)
}

// ProvideSpotCache creates the layered memory+Redis cache for spot prices.
func ProvideSpotCache(rc *cache.RedisCache) cache.Service {
	return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(1024))
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// candle archive is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS coinpulse",
		"CREATE TABLE IF NOT EXISTS coinpulse.candles_1m (symbol String, bucket DateTime, open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=MergeTree ORDER BY (symbol, bucket)",
		"CREATE TABLE IF NOT EXISTS coinpulse.candles_1h (symbol String, bucket DateTime, open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=MergeTree ORDER BY (symbol, bucket)",
		"CREATE TABLE IF NOT EXISTS coinpulse.candles_1d (symbol String, bucket DateTime, open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=MergeTree ORDER BY (symbol, bucket)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideCandleStore creates the candle archive store when ClickHouse is up.
func ProvideCandleStore(ch *pkgch.Client, l *applogger.Logger) domrepo.CandleStore {
	if ch == nil {
		return nil
	}
	store := internalrepo.NewCHCandleStore(ch)
	store.SetLogger(l)
	return store
}

// ProvidePublisher creates the Kafka event publisher, or a noop when
// eventing is disabled.
func ProvidePublisher(cfg *config.Config) (domrepo.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	created := cfg.Kafka.CreatedTopic
	if created == "" {
		created = "prediction.created"
	}
	settled := cfg.Kafka.SettledTopic
	if settled == "" {
		settled = "prediction.settled"
	}
	return internalrepo.NewKafkaPublisher(producer, created, settled), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideUserStore creates the Redis-backed user store.
func ProvideUserStore(rc *cache.RedisCache, cfg *config.Config, l *applogger.Logger) domrepo.UserStore {
	store := internalrepo.NewRedisUserStore(rc.Client(), keyPrefix(cfg))
	store.SetLogger(l)
	return store
}

// ProvidePredictionStore creates the Redis-backed prediction store.
func ProvidePredictionStore(rc *cache.RedisCache, cfg *config.Config, l *applogger.Logger) domrepo.PredictionStore {
	store := internalrepo.NewRedisPredictionStore(rc.Client(), keyPrefix(cfg))
	store.SetLogger(l)
	return store
}

// ProvideGeckoClient creates the CoinGecko HTTP client.
func ProvideGeckoClient(cfg *config.Config, l *applogger.Logger) *coingecko.Client {
	opts := []coingecko.Option{coingecko.WithLogger(l)}
	if cfg.CoinGecko.BaseURL != "" {
		opts = append(opts, coingecko.WithBaseURL(cfg.CoinGecko.BaseURL))
	}
	if cfg.CoinGecko.Timeout > 0 {
		opts = append(opts, coingecko.WithTimeout(cfg.CoinGecko.Timeout))
	}
	if cfg.CoinGecko.RateLimit > 0 {
		opts = append(opts, coingecko.WithRateLimit(cfg.CoinGecko.RateLimit*2, cfg.CoinGecko.RateLimit))
	}
	if cfg.CoinGecko.Retries > 0 {
		opts = append(opts, coingecko.WithRetries(uint64(cfg.CoinGecko.Retries)))
	}
	return coingecko.NewClient(opts...)
}

// ProvidePriceProvider creates the price provider chain.
func ProvidePriceProvider(candles domrepo.CandleStore, gecko *coingecko.Client, spot cache.Service, l *applogger.Logger) domrepo.PriceProvider {
	return prices.NewChain(candles, gecko, spot, l)
}

// ProvideSentiment creates the sentiment synthesizer.
func ProvideSentiment(cfg *config.Config, l *applogger.Logger) domsvc.SentimentProvider {
	opts := []sentiment.Option{sentiment.WithLogger(l)}
	if cfg.Engine.Seed != 0 {
		opts = append(opts, sentiment.WithRand(rand.New(rand.NewSource(cfg.Engine.Seed))))
	}
	return sentiment.New(opts...)
}

// ProvideScorer creates the confidence scoring model.
func ProvideScorer(cfg *config.Config, l *applogger.Logger) domsvc.Scorer {
	opts := []scoring.Option{scoring.WithLogger(l)}
	if cfg.Engine.Seed != 0 {
		opts = append(opts, scoring.WithRand(rand.New(rand.NewSource(cfg.Engine.Seed))))
	}
	return scoring.New(opts...)
}

// ProvideGenerator creates the generation pipeline use case.
func ProvideGenerator(
	users domrepo.UserStore,
	preds domrepo.PredictionStore,
	pricesProvider domrepo.PriceProvider,
	sentimentProvider domsvc.SentimentProvider,
	scorer domsvc.Scorer,
	pub domrepo.Publisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.Generator {
	return usecase.NewGenerator(users, preds, pricesProvider, sentimentProvider, scorer, pub, m, l)
}

// ProvideScheduler creates the recurring generation scheduler.
func ProvideScheduler(users domrepo.UserStore, gen *usecase.Generator, m domrepo.Metrics, cfg *config.Config, l *applogger.Logger) *usecase.Scheduler {
	opts := []usecase.SchedulerOption{}
	if cfg.Engine.Interval > 0 {
		opts = append(opts, usecase.WithSchedulerInterval(cfg.Engine.Interval))
	}
	if cfg.Engine.Seed != 0 {
		opts = append(opts, usecase.WithSchedulerRand(rand.New(rand.NewSource(cfg.Engine.Seed))))
	}
	tfs := make([]domrepo.Timeframe, 0, len(cfg.Engine.Timeframes))
	for _, s := range cfg.Engine.Timeframes {
		tfs = append(tfs, domrepo.NormalizeTimeframe(s))
	}
	opts = append(opts, usecase.WithSchedulerUniverse(cfg.Engine.Symbols, tfs))
	return usecase.NewScheduler(users, gen, m, l, opts...)
}

// ProvideSettler creates the settlement sweep.
func ProvideSettler(preds domrepo.PredictionStore, pricesProvider domrepo.PriceProvider, pub domrepo.Publisher, m domrepo.Metrics, cfg *config.Config, l *applogger.Logger) *usecase.Settler {
	opts := []usecase.SettlerOption{}
	if cfg.Settlement.Interval > 0 {
		opts = append(opts, usecase.WithSettlerInterval(cfg.Settlement.Interval))
	}
	if cfg.Settlement.Batch > 0 {
		opts = append(opts, usecase.WithSettlerBatch(cfg.Settlement.Batch))
	}
	return usecase.NewSettler(preds, pricesProvider, pub, m, l, opts...)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(l *applogger.Logger, gen *usecase.Generator) xhttp.Handler {
	return api.NewPredictionsHandler(l, gen)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	handler xhttp.Handler,
	scheduler *usecase.Scheduler,
	settler *usecase.Settler,
	pub domrepo.Publisher,
	rc *cache.RedisCache,
	ch *pkgch.Client,
	l *applogger.Logger,
) *server.App {
	return server.New(cfg, handler, scheduler, settler, pub, rc, ch, l)
}

func keyPrefix(cfg *config.Config) string {
	if cfg.Redis.KeyPrefix != "" {
		return cfg.Redis.KeyPrefix
	}
	return "coinpulse"
}
