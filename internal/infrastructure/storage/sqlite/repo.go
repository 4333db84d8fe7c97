package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"arbwatch/internal/application/port"
	"arbwatch/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// 单连接：插入+裁剪事务天然串行
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS prices (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  exchange TEXT NOT NULL,
  symbol TEXT NOT NULL,
  price REAL NOT NULL,
  ts_ms INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  UNIQUE(exchange, symbol)
);
CREATE INDEX IF NOT EXISTS idx_prices_symbol ON prices(symbol);

CREATE TABLE IF NOT EXISTS signals (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  symbol TEXT NOT NULL,
  src TEXT NOT NULL,
  dst TEXT NOT NULL,
  src_price REAL NOT NULL,
  dst_price REAL NOT NULL,
  spread_bps REAL NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol);
`)
	return err
}

// UpsertLatestPrice 每个 (exchange, symbol) 只保留最新一条
func (r *Repo) UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prices(exchange, symbol, price, ts_ms, created_at)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(exchange, symbol) DO UPDATE SET
		price=excluded.price, ts_ms=excluded.ts_ms
	`, ex, symbol, price, ts, ts)
	return err
}

// LatestPrice 读取镜像的最新价
func (r *Repo) LatestPrice(ctx context.Context, ex, symbol string) (price float64, ts int64, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT price, ts_ms FROM prices WHERE exchange=? AND symbol=?`, ex, symbol).
		Scan(&price, &ts)
	return
}

// InsertSignal 插入并裁剪到最新 keep 条，同一事务；keep<=0 不裁剪
func (r *Repo) InsertSignal(ctx context.Context, sig model.Signal, keep int) (model.Signal, error) {
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now().UTC()
	}
	createdMs := sig.CreatedAt.UnixMilli()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Signal{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO signals(symbol, src, dst, src_price, dst_price, spread_bps, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`, sig.Symbol, sig.Src, sig.Dst, sig.SrcPrice, sig.DstPrice, sig.SpreadBps, createdMs)
	if err != nil {
		return model.Signal{}, fmt.Errorf("insert signal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Signal{}, fmt.Errorf("last insert id: %w", err)
	}

	if keep > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM signals
			WHERE id NOT IN (SELECT id FROM signals ORDER BY id DESC LIMIT ?)
		`, keep); err != nil {
			return model.Signal{}, fmt.Errorf("trim signals: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Signal{}, fmt.Errorf("commit: %w", err)
	}

	sig.ID = id
	sig.CreatedAt = time.UnixMilli(createdMs).UTC()
	return sig, nil
}

func (r *Repo) RecentSignals(ctx context.Context, limit int) ([]model.Signal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, symbol, src, dst, src_price, dst_price, spread_bps, created_at
		FROM signals
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Signal, 0, limit)
	for rows.Next() {
		var s model.Signal
		var createdMs int64
		if err := rows.Scan(&s.ID, &s.Symbol, &s.Src, &s.Dst, &s.SrcPrice, &s.DstPrice, &s.SpreadBps, &createdMs); err != nil {
			return nil, err
		}
		s.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) CountSignals(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM signals`).Scan(&n)
	return n, err
}

var (
	_ port.SignalRepository = (*Repo)(nil)
	_ port.QuoteMirror      = (*Repo)(nil)
)
