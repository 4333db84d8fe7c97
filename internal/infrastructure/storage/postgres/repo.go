package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"arbwatch/internal/application/port"
	"arbwatch/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

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
CREATE TABLE IF NOT EXISTS signals (
  id BIGSERIAL PRIMARY KEY,
  symbol TEXT NOT NULL,
  src TEXT NOT NULL,
  dst TEXT NOT NULL,
  src_price DOUBLE PRECISION NOT NULL,
  dst_price DOUBLE PRECISION NOT NULL,
  spread_bps DOUBLE PRECISION NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol);

CREATE TABLE IF NOT EXISTS latest_prices (
  exchange TEXT NOT NULL,
  symbol TEXT NOT NULL,
  price DOUBLE PRECISION NOT NULL,
  ts_ms BIGINT NOT NULL,
  PRIMARY KEY (exchange, symbol)
);
`)
	return err
}

func (r *Repo) UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO latest_prices(exchange, symbol, price, ts_ms) VALUES($1, $2, $3, $4)
		ON CONFLICT(exchange, symbol) DO UPDATE SET price=EXCLUDED.price, ts_ms=EXCLUDED.ts_ms
	`, ex, symbol, price, ts)
	return err
}

// InsertSignal 插入并裁剪到最新 keep 条，同一事务
func (r *Repo) InsertSignal(ctx context.Context, sig model.Signal, keep int) (model.Signal, error) {
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Signal{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var createdAt time.Time
	err = tx.QueryRowContext(ctx, `
		INSERT INTO signals(symbol, src, dst, src_price, dst_price, spread_bps, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, sig.Symbol, sig.Src, sig.Dst, sig.SrcPrice, sig.DstPrice, sig.SpreadBps, sig.CreatedAt).
		Scan(&sig.ID, &createdAt)
	if err != nil {
		return model.Signal{}, fmt.Errorf("insert signal: %w", err)
	}

	if keep > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM signals
			WHERE id NOT IN (SELECT id FROM signals ORDER BY id DESC LIMIT $1)
		`, keep); err != nil {
			return model.Signal{}, fmt.Errorf("trim signals: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Signal{}, fmt.Errorf("commit: %w", err)
	}
	sig.CreatedAt = createdAt.UTC()
	return sig, nil
}

func (r *Repo) RecentSignals(ctx context.Context, limit int) ([]model.Signal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, symbol, src, dst, src_price, dst_price, spread_bps, created_at
		FROM signals
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Signal, 0, limit)
	for rows.Next() {
		var s model.Signal
		if err := rows.Scan(&s.ID, &s.Symbol, &s.Src, &s.Dst, &s.SrcPrice, &s.DstPrice, &s.SpreadBps, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.CreatedAt = s.CreatedAt.UTC()
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
