package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	pkgch "CoinPulse/pkg/clickhouse"
	applogger "CoinPulse/pkg/logger"
)

// CHCandleStore implements CandleStore backed by ClickHouse. Candles land in
// per-timeframe tables populated by an external crawler; this store only
// reads closes for the indicator lookback window.
type CHCandleStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHCandleStore(ch *pkgch.Client) *CHCandleStore {
	return &CHCandleStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHCandleStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHCandleStore) RecentPrices(ctx context.Context, symbol string, tf domrepo.Timeframe, n int) (models.PriceSeries, error) {
	start := time.Now()
	table, err := tableForTF(tf)
	if err != nil {
		return nil, err
	}
	const qtpl = `
        SELECT bucket, close
        FROM %s
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, table)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse recent_prices query error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("recent prices: %w", err)
	}
	defer rows.Close()

	tmp := make(models.PriceSeries, 0, n)
	for rows.Next() {
		var bucket time.Time
		var close float64
		if err := rows.Scan(&bucket, &close); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse recent_prices scan error",
					applogger.String("table", table),
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan price: %w", err)
		}
		tmp = append(tmp, models.PricePoint{Timestamp: bucket.UnixMilli(), Price: close})
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse recent_prices rows error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}

	// Query returns newest-first; indicators expect ascending time.
	out := make(models.PriceSeries, len(tmp))
	for i, p := range tmp {
		out[len(tmp)-1-i] = p
	}

	if s.l != nil {
		s.l.Debug("clickhouse recent_prices ok",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func tableForTF(tf domrepo.Timeframe) (string, error) {
	switch tf {
	case domrepo.TF1m:
		return "coinpulse.candles_1m", nil
	case domrepo.TF5m, domrepo.TF15m, domrepo.TF30m:
		// fold to 1m; coarse frames are aggregated upstream when needed
		return "coinpulse.candles_1m", nil
	case domrepo.TF1h, domrepo.TF4h:
		return "coinpulse.candles_1h", nil
	case domrepo.TF1d:
		return "coinpulse.candles_1d", nil
	default:
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
}

var _ domrepo.CandleStore = (*CHCandleStore)(nil)
