package usecase

import (
	"context"
	"math/rand"
	"time"

	domrepo "CoinPulse/internal/domain/repository"
	applogger "CoinPulse/pkg/logger"
)

// Scheduler drives recurring automated generation. Every interval it loads
// the eligible user population and runs 1 or 2 generation rounds per user.
// A failing user never aborts the pass and a failing pass never kills the
// loop.
type Scheduler struct {
	users      domrepo.UserStore
	gen        *Generator
	metrics    domrepo.Metrics
	interval   time.Duration
	passBudget time.Duration
	symbols    []string
	timeframes []domrepo.Timeframe
	rng        *rand.Rand
	l          *applogger.Logger
}

type SchedulerOption func(*Scheduler)

// WithSchedulerInterval overrides the pass interval.
func WithSchedulerInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSchedulerRand injects a seeded source for deterministic tests.
func WithSchedulerRand(r *rand.Rand) SchedulerOption {
	return func(s *Scheduler) { s.rng = r }
}

// WithSchedulerUniverse sets the symbols and timeframes rounds pick from.
func WithSchedulerUniverse(symbols []string, tfs []domrepo.Timeframe) SchedulerOption {
	return func(s *Scheduler) {
		if len(symbols) > 0 {
			s.symbols = symbols
		}
		if len(tfs) > 0 {
			s.timeframes = tfs
		}
	}
}

func NewScheduler(users domrepo.UserStore, gen *Generator, metrics domrepo.Metrics, l *applogger.Logger, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		users:      users,
		gen:        gen,
		metrics:    metrics,
		interval:   300 * time.Second,
		passBudget: 4 * time.Minute,
		symbols:    []string{"BTC", "ETH", "SOL"},
		timeframes: []domrepo.Timeframe{domrepo.TF5m, domrepo.TF15m, domrepo.TF1h},
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		l:          l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run blocks until ctx is cancelled. The pass in flight when cancellation
// arrives completes on its own detached context.
func (s *Scheduler) Run(ctx context.Context) {
	s.l.Info("scheduler started",
		applogger.Duration("interval_ms", s.interval),
		applogger.Int("symbols", len(s.symbols)),
	)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunPass()
	for {
		select {
		case <-ctx.Done():
			s.l.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.RunPass()
		}
	}
}

// RunPass executes one full generation pass over the eligible population.
// It uses its own context so graceful shutdown does not truncate a pass.
func (s *Scheduler) RunPass() {
	start := time.Now()
	generated, failed := 0, 0
	defer func() {
		if r := recover(); r != nil {
			s.l.Error("scheduler pass panicked", applogger.Any("panic", r))
			s.metrics.RecordError("scheduler_pass_panic")
		}
		s.metrics.RecordBatchPass(time.Since(start).Seconds(), generated, failed)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.passBudget)
	defer cancel()

	users, err := s.users.ListEligible(ctx)
	if err != nil {
		s.l.Error("list eligible users", applogger.Error(err))
		s.metrics.RecordError("scheduler_list_users")
		return
	}

	for _, user := range users {
		rounds := 1 + s.rng.Intn(2)
		for i := 0; i < rounds; i++ {
			if s.runRound(ctx, user.ID) {
				generated++
			} else {
				failed++
			}
		}
	}

	s.l.Info("scheduler pass complete",
		applogger.Int("users", len(users)),
		applogger.Int("generated", generated),
		applogger.Int("failed", failed),
		applogger.Duration("duration_ms", time.Since(start)),
	)
}

// runRound generates one automated prediction for one user. Panics and
// errors are contained here so one bad round cannot poison the pass.
func (s *Scheduler) runRound(ctx context.Context, userID string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.l.Error("generation round panicked",
				applogger.String("user_id", userID),
				applogger.Any("panic", r),
			)
			s.metrics.RecordError("scheduler_round_panic")
			ok = false
		}
	}()

	symbol := s.symbols[s.rng.Intn(len(s.symbols))]
	tf := s.timeframes[s.rng.Intn(len(s.timeframes))]

	_, err := s.gen.Generate(ctx, GenerateParams{
		UserID:    userID,
		Symbol:    symbol,
		Timeframe: tf,
		Mode:      ModeAutomated,
		Stake:     1,
	})
	if err != nil {
		s.l.Warn("automated generation failed",
			applogger.String("user_id", userID),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return false
	}
	return true
}
