package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/optionswing/internal/domain"
)

func newTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := NewSQLiteJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_SaveAndQueryTrades(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, j.SaveTrade(ctx, domain.TradeRecord{
		SubmittedAt: now.Add(-time.Hour),
		Symbol:      "AAPL250620C00045000",
		Underlying:  "AAPL",
		Side:        domain.Buy,
		Qty:         1,
		Price:       1.50,
		Reason:      domain.ReasonEntry,
	}))
	require.NoError(t, j.SaveTrade(ctx, domain.TradeRecord{
		SubmittedAt: now,
		Symbol:      "AAPL250620P00045000",
		Underlying:  "AAPL",
		Side:        domain.Sell,
		Qty:         1,
		Price:       0.80,
		Reason:      domain.ReasonStopLoss,
	}))
	// fuera de la ventana de consulta
	require.NoError(t, j.SaveTrade(ctx, domain.TradeRecord{
		SubmittedAt: now.Add(-48 * time.Hour),
		Symbol:      "OLD",
		Underlying:  "OLD",
		Side:        domain.Buy,
		Qty:         1,
		Reason:      domain.ReasonEntry,
	}))

	trades, err := j.TradesSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// más recientes primero
	assert.Equal(t, "AAPL250620P00045000", trades[0].Symbol)
	assert.Equal(t, domain.ReasonStopLoss, trades[0].Reason)
	assert.Equal(t, domain.Sell, trades[0].Side)
	assert.Equal(t, "AAPL250620C00045000", trades[1].Symbol)
	assert.Equal(t, domain.ReasonEntry, trades[1].Reason)
}

func TestJournal_SaveCycle(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.SaveCycle(ctx, 10, 3, 1500*time.Millisecond))

	var universeSize, orders, durationMS int
	row := j.db.QueryRowContext(ctx,
		`SELECT universe_size, orders_submitted, duration_ms FROM cycles`)
	require.NoError(t, row.Scan(&universeSize, &orders, &durationMS))
	assert.Equal(t, 10, universeSize)
	assert.Equal(t, 3, orders)
	assert.Equal(t, 1500, durationMS)
}

func TestJournal_EmptyWindow(t *testing.T) {
	j := newTestJournal(t)

	trades, err := j.TradesSince(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestJournal_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := NewSQLiteJournal(path)
	require.NoError(t, err)
	require.NoError(t, j.SaveTrade(ctx, domain.TradeRecord{
		SubmittedAt: time.Now().UTC(),
		Symbol:      "X", Underlying: "X",
		Side: domain.Buy, Qty: 1, Reason: domain.ReasonEntry,
	}))
	require.NoError(t, j.Close())

	j2, err := NewSQLiteJournal(path)
	require.NoError(t, err)
	defer j2.Close()

	trades, err := j2.TradesSince(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}
