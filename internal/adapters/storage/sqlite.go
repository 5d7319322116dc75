package storage

// sqlite.go: catálogo de barras y diario de trades.
//
//   - `instruments` + `bars`: el último catálogo importado, reemplazado entero en
//     una transacción. Las medias móviles no se guardan: se recalculan al cargar.
//   - `runs` + `run_trades`: diario append-only de trades cerrados por run id.
//     Nada de esto vuelve a una simulación en curso.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/forfunphy/stockmove/internal/domain"
	"github.com/forfunphy/stockmove/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS instruments (
    code TEXT PRIMARY KEY,
    name TEXT    NOT NULL DEFAULT '',
    ord  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bars (
    code   TEXT    NOT NULL,
    ts     INTEGER NOT NULL,
    date   TEXT    NOT NULL,
    name   TEXT    NOT NULL DEFAULT '',
    open   REAL    NOT NULL,
    high   REAL    NOT NULL,
    low    REAL    NOT NULL,
    close  REAL    NOT NULL,
    volume REAL    NOT NULL DEFAULT 0,
    PRIMARY KEY (code, ts)
);

CREATE TABLE IF NOT EXISTS runs (
    id              TEXT PRIMARY KEY,
    code            TEXT    NOT NULL,
    strategy        TEXT    NOT NULL,
    price_basis     TEXT    NOT NULL,
    start_year      INTEGER NOT NULL,
    start_month     INTEGER NOT NULL,
    buy_weekday     INTEGER NOT NULL,
    sell_weekday    INTEGER NOT NULL,
    initial_capital REAL    NOT NULL,
    started_at      INTEGER NOT NULL -- nanosegundos unix
);

CREATE TABLE IF NOT EXISTS run_trades (
    run_id      TEXT    NOT NULL REFERENCES runs(id),
    seq         INTEGER NOT NULL,
    entry_date  TEXT    NOT NULL,
    entry_ts    INTEGER NOT NULL,
    entry_price REAL    NOT NULL,
    exit_date   TEXT    NOT NULL,
    exit_ts     INTEGER NOT NULL,
    exit_price  REAL    NOT NULL,
    basis       TEXT    NOT NULL,
    profit      REAL    NOT NULL,
    profit_pct  REAL    NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`

// SQLiteStorage implementa ports.SeriesStore y ports.TradeJournal usando
// SQLite (Go puro, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

var (
	_ ports.SeriesStore  = (*SQLiteStorage)(nil)
	_ ports.TradeJournal = (*SQLiteStorage)(nil)
)

// NewSQLiteStorage abre (o crea) la base de datos en path y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite admite un solo writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// SaveCatalog reemplaza el catálogo guardado en una sola transacción.
func (s *SQLiteStorage) SaveCatalog(ctx context.Context, cat domain.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveCatalog: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{`DELETE FROM bars`, `DELETE FROM instruments`} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("storage.SaveCatalog: clear: %w", err)
		}
	}

	insInst, err := tx.PrepareContext(ctx, `INSERT INTO instruments (code, name, ord) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveCatalog: prepare instruments: %w", err)
	}
	defer insInst.Close()

	insBar, err := tx.PrepareContext(ctx, `
		INSERT INTO bars (code, ts, date, name, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveCatalog: prepare bars: %w", err)
	}
	defer insBar.Close()

	for i, code := range cat.Codes() {
		series, _ := cat.Get(code)
		if _, err := insInst.ExecContext(ctx, code, series.Name, i); err != nil {
			return fmt.Errorf("storage.SaveCatalog: insert instrument %s: %w", code, err)
		}
		for _, b := range series.Bars {
			if _, err := insBar.ExecContext(ctx,
				b.Code, b.Timestamp, b.Date, b.Name,
				b.Open, b.High, b.Low, b.Close, b.Volume,
			); err != nil {
				return fmt.Errorf("storage.SaveCatalog: insert bar %s %s: %w", code, b.Date, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveCatalog: commit: %w", err)
	}
	return nil
}

// LoadCatalog lee el catálogo guardado y recalcula las medias móviles.
func (s *SQLiteStorage) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.code, i.name, b.ts, b.date, b.name, b.open, b.high, b.low, b.close, b.volume
		FROM bars b JOIN instruments i ON i.code = b.code
		ORDER BY i.ord, b.ts`)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("storage.LoadCatalog: query: %w", err)
	}
	defer rows.Close()

	var all []domain.Series
	for rows.Next() {
		var (
			b        domain.Bar
			instName string
		)
		if err := rows.Scan(&b.Code, &instName, &b.Timestamp, &b.Date, &b.Name,
			&b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return domain.Catalog{}, fmt.Errorf("storage.LoadCatalog: scan: %w", err)
		}
		if n := len(all); n == 0 || all[n-1].Code != b.Code {
			all = append(all, domain.Series{Code: b.Code, Name: instName})
		}
		last := &all[len(all)-1]
		last.Bars = append(last.Bars, b)
	}
	if err := rows.Err(); err != nil {
		return domain.Catalog{}, fmt.Errorf("storage.LoadCatalog: rows: %w", err)
	}

	for i := range all {
		domain.ComputeMovingAverages(all[i].Bars)
	}
	return domain.NewCatalog(all...), nil
}

// StartRun registra la configuración con la que arrancó una corrida.
func (s *SQLiteStorage) StartRun(ctx context.Context, runID, code string, cfg domain.BacktestConfig) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, code, strategy, price_basis, start_year, start_month,
			buy_weekday, sell_weekday, initial_capital, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		runID, code, string(cfg.Strategy), string(cfg.PriceBasis),
		cfg.StartYear, int(cfg.StartMonth), int(cfg.BuyWeekday), int(cfg.SellWeekday),
		cfg.InitialCapital, time.Now().UnixNano(),
	); err != nil {
		return fmt.Errorf("storage.StartRun: %w", err)
	}
	return nil
}

// RecordTrade agrega un trade cerrado a su corrida.
func (s *SQLiteStorage) RecordTrade(ctx context.Context, runID string, t domain.Trade) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO run_trades (run_id, seq, entry_date, entry_ts, entry_price,
			exit_date, exit_ts, exit_price, basis, profit, profit_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, t.Seq, t.EntryDate, t.EntryTimestamp, t.EntryPrice,
		t.ExitDate, t.ExitTimestamp, t.ExitPrice, string(t.Basis), t.Profit, t.ProfitPercent,
	); err != nil {
		return fmt.Errorf("storage.RecordTrade: run %s seq %d: %w", runID, t.Seq, err)
	}
	return nil
}

// ListRuns devuelve las corridas más recientes primero, con cantidad de trades y profit total.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]ports.RunInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.code, r.strategy, r.price_basis, r.start_year, r.start_month,
		       r.buy_weekday, r.sell_weekday, r.initial_capital, r.started_at,
		       COUNT(t.seq), COALESCE(SUM(t.profit), 0)
		FROM runs r LEFT JOIN run_trades t ON t.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.ListRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []ports.RunInfo
	for rows.Next() {
		var (
			r                      ports.RunInfo
			strategy, basis        string
			month, buyDay, sellDay int
			startedAt              int64
		)
		if err := rows.Scan(&r.ID, &r.Code, &strategy, &basis, &r.Config.StartYear, &month,
			&buyDay, &sellDay, &r.Config.InitialCapital, &startedAt,
			&r.TradeCount, &r.Profit); err != nil {
			return nil, fmt.Errorf("storage.ListRuns: scan: %w", err)
		}
		r.Config.Strategy = domain.StrategyKind(strategy)
		r.Config.PriceBasis = domain.PriceBasis(basis)
		r.Config.StartMonth = time.Month(month)
		r.Config.BuyWeekday = time.Weekday(buyDay)
		r.Config.SellWeekday = time.Weekday(sellDay)
		r.StartedAt = time.Unix(0, startedAt).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunTrades devuelve los trades de una corrida en orden de cierre.
func (s *SQLiteStorage) RunTrades(ctx context.Context, runID string) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, entry_date, entry_ts, entry_price, exit_date, exit_ts, exit_price,
		       basis, profit, profit_pct
		FROM run_trades WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.RunTrades: query: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var (
			t     domain.Trade
			basis string
		)
		if err := rows.Scan(&t.Seq, &t.EntryDate, &t.EntryTimestamp, &t.EntryPrice,
			&t.ExitDate, &t.ExitTimestamp, &t.ExitPrice, &basis, &t.Profit, &t.ProfitPercent); err != nil {
			return nil, fmt.Errorf("storage.RunTrades: scan: %w", err)
		}
		t.Basis = domain.PriceBasis(basis)
		t.Side = domain.SideLong
		t.Status = domain.StatusClosed
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Close cierra la base de datos limpiamente.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
