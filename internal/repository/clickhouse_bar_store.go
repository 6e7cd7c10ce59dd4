package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FxPilot/internal/domain/models"
	domrepo "FxPilot/internal/domain/repository"
	applogger "FxPilot/pkg/logger"
)

// CHBarStore reads OHLC bars written by the market-data pipeline into
// ClickHouse, one table per timeframe.
type CHBarStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

var _ domrepo.BarSource = (*CHBarStore)(nil)

func NewCHBarStore(db *sql.DB, database string, l *applogger.Logger) *CHBarStore {
	return &CHBarStore{db: db, database: database, l: l}
}

// LatestBars returns the n most recent bars for symbol in ascending time order.
func (s *CHBarStore) LatestBars(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.PriceBar, error) {
	if n <= 0 {
		return nil, nil
	}
	start := time.Now()
	table := s.tableFor(tf)

	const qtpl = `
        SELECT bucket, open, high, low, close, volume
        FROM %s
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, table), symbol, n)
	if err != nil {
		s.l.Error("clickhouse latest_bars query error",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("latest bars: %w", err)
	}
	defer rows.Close()

	bars := make([]models.PriceBar, 0, n)
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Time, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	reverseBars(bars)
	s.l.Debug("clickhouse latest_bars ok",
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(bars)),
		applogger.Duration("took", time.Since(start)),
	)
	return bars, nil
}

func (s *CHBarStore) tableFor(tf domrepo.Timeframe) string {
	return BarTable(s.database, domrepo.NormalizeTimeframe(string(tf)))
}

// BarTable is the table holding bars of timeframe tf.
func BarTable(database string, tf domrepo.Timeframe) string {
	return fmt.Sprintf("%s.bars_%s", database, tf)
}

// BarSchema returns the DDL for the database and every bar table.
func BarSchema(database string) []string {
	stmts := []string{fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database)}
	for _, tf := range []domrepo.Timeframe{domrepo.TF1m, domrepo.TF5m, domrepo.TF15m, domrepo.TF1h} {
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            symbol LowCardinality(String),
            bucket DateTime64(3, 'UTC'),
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            volume Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (symbol, bucket)`, BarTable(database, tf)))
	}
	return stmts
}

func reverseBars(bars []models.PriceBar) {
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
}
