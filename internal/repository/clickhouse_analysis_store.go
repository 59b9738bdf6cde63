package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SignalFuse/internal/domain/models"
	pkgch "SignalFuse/pkg/clickhouse"
	applogger "SignalFuse/pkg/logger"
)

var analysisSchema = []string{
	`CREATE DATABASE IF NOT EXISTS signalfuse`,
	`CREATE TABLE IF NOT EXISTS signalfuse.analysis_history (
        ts           DateTime64(3),
        symbol       LowCardinality(String),
        signal       LowCardinality(String),
        confidence   Float64,
        target_price Float64,
        agreement    Int32,
        risk_level   LowCardinality(String),
        timeframe    LowCardinality(String),
        reasoning    String
    ) ENGINE = MergeTree()
    PARTITION BY toYYYYMM(ts)
    ORDER BY (symbol, ts)
    TTL toDateTime(ts) + INTERVAL 90 DAY`,
}

// CHAnalysisStore implements AnalysisStore backed by ClickHouse.
type CHAnalysisStore struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

func NewCHAnalysisStore(ctx context.Context, ch *pkgch.Client, l *applogger.Logger) (*CHAnalysisStore, error) {
	if err := ch.InitSchema(ctx, analysisSchema); err != nil {
		return nil, fmt.Errorf("analysis schema: %w", err)
	}
	return &CHAnalysisStore{client: ch, db: ch.DB(), l: l}, nil
}

func (s *CHAnalysisStore) Store(ctx context.Context, symbol string, res *models.ConsensusResult) error {
	const q = `
        INSERT INTO signalfuse.analysis_history
            (ts, symbol, signal, confidence, target_price, agreement, risk_level, timeframe, reasoning)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	c := res.Consensus
	_, err := s.db.ExecContext(ctx, q,
		res.Timestamp, symbol, string(c.Signal), c.Confidence, c.TargetPrice,
		int32(res.Agreement), string(c.RiskLevel), string(c.Timeframe), c.Reasoning)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse analysis insert error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (s *CHAnalysisStore) Latest(ctx context.Context, symbol string, limit int) ([]models.AnalysisRecord, error) {
	start := time.Now()
	const q = `
        SELECT ts, symbol, signal, confidence, target_price, agreement, risk_level, timeframe, reasoning
        FROM signalfuse.analysis_history
        WHERE symbol = ?
        ORDER BY ts DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse analysis query error",
				applogger.String("symbol", symbol),
				applogger.Int("limit", limit),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get analysis history: %w", err)
	}
	defer rows.Close()

	out := make([]models.AnalysisRecord, 0, limit)
	for rows.Next() {
		var r models.AnalysisRecord
		var signal, risk, timeframe string
		var agreement int32
		if err := rows.Scan(&r.Timestamp, &r.Symbol, &signal, &r.Confidence, &r.TargetPrice, &agreement, &risk, &timeframe, &r.Reasoning); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		r.Signal = models.Signal(signal)
		r.Agreement = int(agreement)
		r.RiskLevel = models.RiskLevel(risk)
		r.Timeframe = models.Timeframe(timeframe)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse analysis history ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHAnalysisStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *CHAnalysisStore) Close() error {
	return s.client.Close()
}
