package storage

// sqlite.go: histórico de observaciones por par.
//
// Una fila por poll con el ticker y el informe de señales ya calculado.
// Los indicadores que pueden faltar (RSI, volatilidad, R/R, recomendaciones)
// se guardan como NULL, nunca como 0. observed_at va en milisegundos unix.
// Al abrir se podan las filas más viejas que la retención.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/cryptodash/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS observations (
    id              TEXT PRIMARY KEY,
    pair            TEXT    NOT NULL,
    observed_at     INTEGER NOT NULL,
    last            REAL    NOT NULL,
    high            REAL    NOT NULL DEFAULT 0,
    low             REAL    NOT NULL DEFAULT 0,
    buy             REAL    NOT NULL DEFAULT 0,
    sell            REAL    NOT NULL DEFAULT 0,
    vol_idr         REAL    NOT NULL DEFAULT 0,
    volatility      REAL,
    risk_reward     REAL,
    ma50            REAL    NOT NULL DEFAULT 0,
    ma200           REAL    NOT NULL DEFAULT 0,
    rsi14           REAL,
    buy_depth       REAL    NOT NULL DEFAULT 0,
    sell_depth      REAL    NOT NULL DEFAULT 0,
    trend           TEXT    NOT NULL,
    pump_dump       TEXT    NOT NULL,
    rec_buy         REAL,
    rec_sell        REAL,
    history_len     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_obs_pair_at ON observations(pair, observed_at DESC);
`

// DefaultRetention es cuánto se conservan las observaciones si no se indica otra cosa.
const DefaultRetention = 7 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y poda lo anterior a retention (DefaultRetention si es <= 0).
func NewSQLiteStorage(path string, retention time.Duration) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	if retention <= 0 {
		retention = DefaultRetention
	}
	s := &SQLiteStorage{db: db}
	if _, err := s.Prune(context.Background(), time.Now().Add(-retention)); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: %w", err)
	}
	return s, nil
}

// SaveObservation inserta una observación. Un ID repetido se ignora.
func (s *SQLiteStorage) SaveObservation(ctx context.Context, obs domain.Observation) error {
	r := obs.Report
	t := obs.Ticker
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO observations
			(id, pair, observed_at, last, high, low, buy, sell, vol_idr,
			 volatility, risk_reward, ma50, ma200, rsi14, buy_depth, sell_depth,
			 trend, pump_dump, rec_buy, rec_sell, history_len)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		obs.ID, obs.Pair, obs.ObservedAt.UnixMilli(),
		t.Last, t.High, t.Low, t.Buy, t.Sell, t.VolumeQuote,
		nullable(r.VolatilityPercent), nullable(r.RiskRewardRatio),
		r.MA50, r.MA200, nullable(r.RSI14),
		r.BuyDepthTotal, r.SellDepthTotal,
		string(r.Trend), string(r.PumpDump),
		nullable(r.RecommendedBuy), nullable(r.RecommendedSell),
		r.HistoryLen,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveObservation: insert %s: %w", obs.ID, err)
	}
	return nil
}

// RecentPrices devuelve los últimos limit precios del par en orden cronológico.
func (s *SQLiteStorage) RecentPrices(ctx context.Context, pair string, limit int) ([]float64, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT last FROM (
			SELECT last, observed_at FROM observations
			WHERE pair = ?
			ORDER BY observed_at DESC
			LIMIT ?
		) ORDER BY observed_at ASC
	`, pair, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentPrices: query: %w", err)
	}
	defer rows.Close()

	var prices []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("storage.RecentPrices: scan row: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// GetHistory devuelve las observaciones del par con observed_at en [from, to],
// de la más antigua a la más reciente.
func (s *SQLiteStorage) GetHistory(ctx context.Context, pair string, from, to time.Time) ([]domain.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pair, observed_at, last, high, low, buy, sell, vol_idr,
		       volatility, risk_reward, ma50, ma200, rsi14, buy_depth, sell_depth,
		       trend, pump_dump, rec_buy, rec_sell, history_len
		FROM observations
		WHERE pair = ? AND observed_at BETWEEN ? AND ?
		ORDER BY observed_at ASC
	`, pair, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Observation
	for rows.Next() {
		var (
			obs                           domain.Observation
			observedAt                    int64
			vol, rr, rsi, recBuy, recSell sql.NullFloat64
			trend, pumpDump               string
		)
		t := &obs.Ticker
		r := &obs.Report
		if err := rows.Scan(
			&obs.ID, &obs.Pair, &observedAt,
			&t.Last, &t.High, &t.Low, &t.Buy, &t.Sell, &t.VolumeQuote,
			&vol, &rr, &r.MA50, &r.MA200, &rsi,
			&r.BuyDepthTotal, &r.SellDepthTotal,
			&trend, &pumpDump, &recBuy, &recSell, &r.HistoryLen,
		); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: scan row: %w", err)
		}

		obs.ObservedAt = time.UnixMilli(observedAt).UTC()
		t.Pair = obs.Pair
		r.Support, r.Resistance = t.Low, t.High
		r.VolatilityPercent = fromNullable(vol)
		r.RiskRewardRatio = fromNullable(rr)
		r.RSI14 = fromNullable(rsi)
		r.RecommendedBuy = fromNullable(recBuy)
		r.RecommendedSell = fromNullable(recSell)
		r.Trend = domain.Trend(trend)
		r.PumpDump = domain.PumpDump(pumpDump)
		out = append(out, obs)
	}
	return out, rows.Err()
}

// Prune elimina las observaciones anteriores a before.
func (s *SQLiteStorage) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM observations WHERE observed_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("storage.Prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
