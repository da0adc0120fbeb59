package storage

// sqlite.go — journal de trading ligero.
//
//   - `cycles`: resumen por ciclo de trading (tamaño del universo, órdenes
//     enviadas, duración). Siempre 1 fila por ciclo.
//   - `trades`: una fila por orden enviada, entradas y stop-loss.
//   - Prune automático al arrancar: ciclos > 30d, trades > 90d.
//
// El journal es histórico para el resumen diario y el análisis posterior.
// El dedup de compras del día vive en memoria en la sesión, no aquí.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/optionswing/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS cycles (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at       DATETIME NOT NULL,
    universe_size    INTEGER  NOT NULL DEFAULT 0,
    orders_submitted INTEGER  NOT NULL DEFAULT 0,
    duration_ms      INTEGER  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS trades (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    submitted_at DATETIME NOT NULL,
    symbol       TEXT     NOT NULL,
    underlying   TEXT     NOT NULL,
    side         TEXT     NOT NULL,
    qty          INTEGER  NOT NULL,
    price        REAL     NOT NULL DEFAULT 0,
    reason       TEXT     NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cycles_at ON cycles(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_at ON trades(submitted_at DESC);
`

const (
	retentionCycles = 30 * 24 * time.Hour
	retentionTrades = 90 * 24 * time.Hour

	// Timestamps como texto RFC3339 de ancho fijo: el orden lexicográfico
	// coincide con el cronológico y los WHERE por rango funcionan.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// SQLiteJournal implementa ports.Journal usando SQLite (pure Go, sin CGo).
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteJournal: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteJournal: apply schema: %w", err)
	}

	j := &SQLiteJournal{db: db}
	j.pruneOld(context.Background())
	return j, nil
}

// SaveTrade registra una orden enviada.
func (j *SQLiteJournal) SaveTrade(ctx context.Context, t domain.TradeRecord) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO trades (submitted_at, symbol, underlying, side, qty, price, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		formatTime(t.SubmittedAt), t.Symbol, t.Underlying, string(t.Side), t.Qty, t.Price, string(t.Reason),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveTrade %s: %w", t.Symbol, err)
	}
	return nil
}

// SaveCycle registra el resumen de un ciclo de trading.
func (j *SQLiteJournal) SaveCycle(ctx context.Context, universeSize, ordersSubmitted int, took time.Duration) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO cycles (started_at, universe_size, orders_submitted, duration_ms)
		 VALUES (?, ?, ?, ?)`,
		formatTime(time.Now()), universeSize, ordersSubmitted, took.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveCycle: %w", err)
	}
	return nil
}

// TradesSince devuelve los trades registrados desde el instante dado,
// los más recientes primero.
func (j *SQLiteJournal) TradesSince(ctx context.Context, since time.Time) ([]domain.TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT submitted_at, symbol, underlying, side, qty, price, reason
		FROM trades
		WHERE submitted_at >= ?
		ORDER BY submitted_at DESC
	`, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("storage.TradesSince: query: %w", err)
	}
	defer rows.Close()

	var trades []domain.TradeRecord
	for rows.Next() {
		var t domain.TradeRecord
		var submittedAt, side, reason string
		if err := rows.Scan(&submittedAt, &t.Symbol, &t.Underlying, &side, &t.Qty, &t.Price, &reason); err != nil {
			return nil, fmt.Errorf("storage.TradesSince: scan row: %w", err)
		}
		t.SubmittedAt, _ = time.Parse(time.RFC3339, submittedAt)
		t.Side = domain.OrderSide(side)
		t.Reason = domain.TradeReason(reason)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// pruneOld elimina datos antiguos para mantener la DB ligera.
func (j *SQLiteJournal) pruneOld(ctx context.Context) {
	j.db.ExecContext(ctx, `DELETE FROM cycles WHERE started_at < ?`,
		formatTime(time.Now().Add(-retentionCycles)))
	j.db.ExecContext(ctx, `DELETE FROM trades WHERE submitted_at < ?`,
		formatTime(time.Now().Add(-retentionTrades)))
}
