package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/model"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the advisor writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS plan_runs (
			run_id        TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			trigger_kind  TEXT,
			duration_ms   INTEGER,
			holdings      INTEGER,
			failed        TEXT,
			heat_fallback INTEGER,
			buy_count     INTEGER,
			sell_count    INTEGER,
			hold_count    INTEGER,
			overall_score INTEGER,
			overall_label TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON plan_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS plan_items (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			priority    INTEGER,
			code        TEXT NOT NULL,
			name        TEXT,
			sector      TEXT,
			action      TEXT,
			label       TEXT,
			score       REAL,
			confidence  INTEGER,
			temperature INTEGER,
			rsi         REAL,
			risk_score  INTEGER,
			urgency     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_run ON plan_items(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_code ON plan_items(code)`,

		`CREATE TABLE IF NOT EXISTS verifications (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			date          TEXT NOT NULL,
			next_date     TEXT,
			correct       INTEGER,
			wrong         INTEGER,
			neutral       INTEGER,
			accuracy      REAL,
			hypothetical  REAL,
			overall_score INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_verif_date ON verifications(date)`,

		`CREATE TABLE IF NOT EXISTS holding_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			action    TEXT,
			code      TEXT,
			name      TEXT,
			sector    TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run summary and one row per plan in a single transaction.
func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ov := run.Overview
	if _, err := tx.Exec(`INSERT INTO plan_runs
		(run_id, timestamp, trigger_kind, duration_ms, holdings, failed, heat_fallback,
		 buy_count, sell_count, hold_count, overall_score, overall_label)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.RunID, run.StartedAt.Unix(), run.Trigger, run.Duration.Milliseconds(),
		len(run.Plans), strings.Join(run.Failed, ","), run.HeatFallback,
		ov.Buy, ov.Sell, ov.Hold, ov.Score, ov.Label,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, p := range run.Plans {
		var rsi sql.NullFloat64
		if p.Trend != nil {
			rsi = sql.NullFloat64{Float64: p.Trend.RSI, Valid: true}
		}
		if _, err := tx.Exec(`INSERT INTO plan_items
			(run_id, priority, code, name, sector, action, label, score, confidence,
			 temperature, rsi, risk_score, urgency)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			run.RunID, p.Priority, p.Code, p.Name, p.Type,
			string(p.Vote.Action), p.Vote.Label, p.Vote.Score, p.Vote.Confidence,
			p.Heat.Temperature, rsi, p.RiskScore, p.Urgency,
		); err != nil {
			return fmt.Errorf("insert plan %s: %w", p.Code, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordVerification(entry *model.PredictionEntry) error {
	v := entry.Verification
	if v == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO verifications
		(timestamp, date, next_date, correct, wrong, neutral, accuracy, hypothetical, overall_score)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), entry.Date, v.NextDate,
		v.Correct, v.Wrong, v.Neutral, v.Accuracy, v.HypotheticalReturn,
		entry.OverallScore,
	)
	return err
}

func (r *SQLiteRecorder) RecordHoldingEvent(evt *HoldingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO holding_events
		(timestamp, action, code, name, sector)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.Action, evt.Code, evt.Name, evt.Type,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
