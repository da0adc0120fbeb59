package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alejandrodnm/optionswing/internal/domain"
)

// refreshUniverseJob es el job programado: solo refresca con mercado abierto.
func (e *Engine) refreshUniverseJob(ctx context.Context) error {
	if !e.marketOpen(ctx) {
		slog.Info("market closed, skipping universe refresh")
		return nil
	}
	return e.refreshUniverse(ctx)
}

// refreshUniverse recalcula el universo desde cero y lo instala en la sesión.
func (e *Engine) refreshUniverse(ctx context.Context) error {
	report, err := e.selector.Select(ctx)
	if err != nil {
		return fmt.Errorf("engine.refreshUniverse: %w", err)
	}

	syms := report.Symbols()
	e.session.SetUniverse(syms)
	e.lastCandidates = report.Candidates

	attrs := []any{"selected", len(syms), "evaluated", report.Evaluated}
	for reason, n := range report.Skipped {
		attrs = append(attrs, "skip_"+string(reason), n)
	}
	slog.Info("universe refreshed", attrs...)

	if len(syms) == 0 {
		e.notify(ctx, "📉 Universe updated: no symbols passed the filters")
		return nil
	}
	e.notify(ctx, fmt.Sprintf("📈 Universe updated (%d): %s",
		len(syms), strings.Join(syms, ", ")))
	return nil
}

// runDailySummary publica el estado de la cuenta, las posiciones de opciones
// y los trades del día.
func (e *Engine) runDailySummary(ctx context.Context) error {
	account, err := e.broker.GetAccount(ctx)
	if err != nil {
		return fmt.Errorf("engine.runDailySummary: account: %w", err)
	}

	positions, err := e.broker.ListPositions(ctx)
	if err != nil {
		return fmt.Errorf("engine.runDailySummary: positions: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Daily summary — equity $%.2f, cash $%.2f\n", account.Equity, account.Cash)

	open := 0
	for _, pos := range positions {
		if pos.AssetClass != domain.AssetClassOption {
			continue
		}
		open++
		pnl := 0.0
		if pos.AvgEntryPrice > 0 {
			pnl = (pos.CurrentPrice - pos.AvgEntryPrice) / pos.AvgEntryPrice * 100
		}
		fmt.Fprintf(&sb, "  %s x%d  $%.2f → $%.2f (%+.1f%%)\n",
			pos.Symbol, pos.Qty, pos.AvgEntryPrice, pos.CurrentPrice, pnl)
	}
	if open == 0 {
		sb.WriteString("  no open option positions\n")
	}

	if e.journal != nil {
		since := dateUTC(e.now())
		trades, err := e.journal.TradesSince(ctx, since)
		if err != nil {
			slog.Warn("journal error", "err", err)
		} else {
			entries, stops := 0, 0
			for _, t := range trades {
				switch t.Reason {
				case domain.ReasonEntry:
					entries++
				case domain.ReasonStopLoss:
					stops++
				}
			}
			fmt.Fprintf(&sb, "  today: %d entries, %d stop-loss exits", entries, stops)
		}
	}

	e.notify(ctx, sb.String())
	return nil
}
