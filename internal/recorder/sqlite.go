package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists ranking runs to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	log *zap.Logger
	mu  sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (analysis tools read
	// while the scheduler writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ranking_runs (
			id            TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			formula       TEXT,
			benchmark     TEXT,
			interval      TEXT,
			rating_method TEXT,
			stock_count   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON ranking_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS stock_rows (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			"rank"       INTEGER,
			symbol       TEXT,
			sector       TEXT,
			industry     TEXT,
			price        REAL,
			rs           REAL,
			rating       REAL,
			ma50         REAL,
			ma200        REAL,
			position_52w REAL,
			volume_ratio REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_run ON stock_rows(run_id)`,

		`CREATE TABLE IF NOT EXISTS industry_rows (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   TEXT NOT NULL,
			"rank"   INTEGER,
			industry TEXT,
			sector   TEXT,
			rs       REAL,
			rating   REAL,
			symbols  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_industry_run ON industry_rows(run_id)`,

		`CREATE TABLE IF NOT EXISTS financial_rows (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			"rank"     INTEGER,
			symbol     TEXT,
			sector     TEXT,
			industry   TEXT,
			price      REAL,
			eps_rs     REAL,
			rev_rs     REAL,
			eps_qoq    REAL,
			eps_yoy    REAL,
			ttm_eps    REAL,
			ttm_pe     REAL,
			eps_rating REAL,
			rev_rating REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_financial_run ON financial_rows(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps NaN to NULL; SQLite has no NaN.
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

func (r *SQLiteRecorder) RecordRanking(run *RankingRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO ranking_runs
		(id, timestamp, formula, benchmark, interval, rating_method, stock_count)
		VALUES (?,?,?,?,?,?,?)`,
		run.ID, run.CreatedAt.Unix(), run.Formula, run.Benchmark,
		string(run.Interval), string(run.RatingMethod), len(run.Table.Stocks),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, row := range run.Table.Stocks {
		rating := math.NaN()
		if len(row.Ratings) > 0 {
			rating = row.Ratings[0]
		}
		if _, err := tx.Exec(`INSERT INTO stock_rows
			(run_id, "rank", symbol, sector, industry, price, rs, rating,
			 ma50, ma200, position_52w, volume_ratio)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			run.ID, row.Rank, row.Symbol, row.Sector, row.Industry,
			nullable(row.Price), nullable(row.RS), nullable(rating),
			nullable(row.MA50), nullable(row.MA200),
			nullable(row.Position52W), nullable(row.VolumeRatio),
		); err != nil {
			return fmt.Errorf("insert stock row %s: %w", row.Symbol, err)
		}
	}

	for _, row := range run.Table.Industries {
		rating := math.NaN()
		if len(row.Ratings) > 0 {
			rating = row.Ratings[0]
		}
		if _, err := tx.Exec(`INSERT INTO industry_rows
			(run_id, "rank", industry, sector, rs, rating, symbols)
			VALUES (?,?,?,?,?,?,?)`,
			run.ID, row.Rank, row.Industry, row.Sector,
			nullable(row.RS), nullable(rating), row.Symbols,
		); err != nil {
			return fmt.Errorf("insert industry row %s: %w", row.Industry, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Debug("ranking run recorded",
		zap.String("run_id", run.ID),
		zap.Int("stocks", len(run.Table.Stocks)),
		zap.Int("industries", len(run.Table.Industries)))
	return nil
}

func (r *SQLiteRecorder) RecordFinancial(run *FinancialRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO ranking_runs
		(id, timestamp, formula, benchmark, interval, rating_method, stock_count)
		VALUES (?,?,?,?,?,?,?)`,
		run.ID, run.CreatedAt.Unix(), "financial", "", "",
		string(run.RatingMethod), len(run.Table.Rows),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, row := range run.Table.Rows {
		if _, err := tx.Exec(`INSERT INTO financial_rows
			(run_id, "rank", symbol, sector, industry, price,
			 eps_rs, rev_rs, eps_qoq, eps_yoy, ttm_eps, ttm_pe,
			 eps_rating, rev_rating)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			run.ID, row.Rank, row.Symbol, row.Sector, row.Industry,
			nullable(row.Price), nullable(row.EPSRS), nullable(row.RevRS),
			nullable(row.EPSQoQ), nullable(row.EPSYoY),
			nullable(row.TTMEPS), nullable(row.TTMPE),
			nullable(row.EPSRating), nullable(row.RevRating),
		); err != nil {
			return fmt.Errorf("insert financial row %s: %w", row.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Debug("financial run recorded",
		zap.String("run_id", run.ID),
		zap.Int("rows", len(run.Table.Rows)))
	return nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
