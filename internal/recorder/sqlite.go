package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"WolfDesk/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the CLI read history while serve is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			source      TEXT,
			close       REAL,
			change_pct  REAL,
			ema20       REAL,
			ma50        REAL,
			rsi14       REAL,
			macd        REAL,
			macd_signal REAL,
			atr14       REAL,
			volume_ratio REAL,
			candle      TEXT,
			volume      TEXT,
			money_flow  TEXT,
			buy_price   REAL,
			profit_pct  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol_ts ON analyses(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS screen_hits (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			price        REAL,
			change_pct   REAL,
			rsi14        REAL,
			volume_ratio REAL,
			tags         TEXT,
			candle       TEXT,
			money_flow   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_screen_ts ON screen_hits(timestamp)`,

		`CREATE TABLE IF NOT EXISTS portfolio_checks (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			ticker         TEXT NOT NULL,
			cost_basis     REAL,
			price          REAL,
			profit_pct     REAL,
			recommendation TEXT,
			target_hit     INTEGER,
			stop_hit       INTEGER,
			error          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_portfolio_ts ON portfolio_checks(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps NaN to SQL NULL.
func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func (r *SQLiteRecorder) RecordAnalysis(a *model.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var buy, pct any
	if a.Position != nil {
		buy, pct = a.Position.BuyPrice, nullable(a.Position.ProfitPct)
	}
	b := a.Last
	_, err := r.db.Exec(`INSERT INTO analyses
		(timestamp, symbol, source, close, change_pct, ema20, ma50, rsi14, macd, macd_signal,
		 atr14, volume_ratio, candle, volume, money_flow, buy_price, profit_pct)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), a.Symbol, a.Source, b.Close, nullable(a.ChangePct),
		nullable(b.EMA20), nullable(b.MA50), nullable(b.RSI14), nullable(b.MACD), nullable(b.MACDSignal),
		nullable(b.ATR14), nullable(b.VolumeRatio),
		string(a.Classification.Candle), string(a.Classification.Volume), string(a.Classification.MoneyFlow),
		buy, pct,
	)
	if err != nil {
		return fmt.Errorf("insert analysis %s: %w", a.Symbol, err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordScreen(report *model.ScreenReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin screen tx: %w", err)
	}
	defer tx.Rollback()

	ts := report.StartedAt.Unix()
	for _, h := range report.Hits {
		if _, err := tx.Exec(`INSERT INTO screen_hits
			(timestamp, symbol, price, change_pct, rsi14, volume_ratio, tags, candle, money_flow)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			ts, h.Symbol, h.Price, nullable(h.ChangePct), nullable(h.RSI), nullable(h.VolumeRatio),
			strings.Join(h.Tags, ","), string(h.Candle), string(h.MoneyFlow),
		); err != nil {
			return fmt.Errorf("insert screen hit %s: %w", h.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordPortfolioCheck(quotes []model.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin portfolio tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, q := range quotes {
		var errText any
		if q.Err != nil {
			errText = q.Err.Error()
		}
		if _, err := tx.Exec(`INSERT INTO portfolio_checks
			(timestamp, ticker, cost_basis, price, profit_pct, recommendation, target_hit, stop_hit, error)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			now, q.Ticker, q.CostBasis, q.Price, nullable(q.ProfitPct), string(q.Recommendation),
			q.TargetHit, q.StopHit, errText,
		); err != nil {
			return fmt.Errorf("insert portfolio check %s: %w", q.Ticker, err)
		}
	}
	return tx.Commit()
}

// RecentAnalyses returns up to limit analyses for symbol, newest first.
func (r *SQLiteRecorder) RecentAnalyses(symbol string, limit int) ([]AnalysisRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, symbol, source, close, change_pct, rsi14,
		candle, volume, money_flow, buy_price, profit_pct
		FROM analyses WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []AnalysisRow
	for rows.Next() {
		var (
			ts                   int64
			row                  AnalysisRow
			source               sql.NullString
			change, rsi, buy, pc sql.NullFloat64
		)
		if err := rows.Scan(&ts, &row.Symbol, &source, &row.Close, &change, &rsi,
			&row.Candle, &row.Volume, &row.MoneyFlow, &buy, &pc); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		row.RecordedAt = time.Unix(ts, 0)
		row.Source = source.String
		row.ChangePct = orNaN(change)
		row.RSI = orNaN(rsi)
		row.BuyPrice = buy.Float64
		row.ProfitPct = pc.Float64
		out = append(out, row)
	}
	return out, rows.Err()
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
