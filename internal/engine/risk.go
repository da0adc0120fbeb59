package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alejandrodnm/optionswing/internal/domain"
)

// runRiskCycle recorre las posiciones de opciones abiertas y liquida a mercado
// cualquiera cuyo precio cayó por debajo del stop-loss. Es un trigger de un
// solo disparo: no hay scale-out parcial ni re-armado, la posición se cierra
// entera. Los errores por-posición se loguean y el loop continúa.
func (e *Engine) runRiskCycle(ctx context.Context) error {
	if !e.marketOpen(ctx) {
		slog.Debug("market closed, skipping risk check")
		return nil
	}

	positions, err := e.broker.ListPositions(ctx)
	if err != nil {
		return fmt.Errorf("engine.runRiskCycle: list positions: %w", err)
	}

	triggered := 0
	for _, pos := range positions {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if pos.AssetClass != domain.AssetClassOption {
			continue
		}
		if !pos.BreachesStop(e.cfg.StopLossPct) {
			continue
		}

		if e.cfg.DryRun {
			slog.Info("dry-run: would liquidate",
				"symbol", pos.Symbol, "qty", pos.Qty,
				"entry", pos.AvgEntryPrice, "current", pos.CurrentPrice)
			continue
		}

		req := domain.OrderRequest{
			ClientOrderID: uuid.NewString(),
			Symbol:        pos.Symbol,
			Qty:           pos.Qty,
			Side:          domain.Sell,
		}
		if _, err := e.broker.SubmitOrder(ctx, req); err != nil {
			slog.Error("stop-loss sell failed", "symbol", pos.Symbol, "err", err)
			continue
		}
		triggered++

		if e.journal != nil {
			record := domain.TradeRecord{
				SubmittedAt: e.now().UTC(),
				Symbol:      pos.Symbol,
				Side:        domain.Sell,
				Qty:         pos.Qty,
				Price:       pos.CurrentPrice,
				Reason:      domain.ReasonStopLoss,
			}
			if err := e.journal.SaveTrade(ctx, record); err != nil {
				slog.Warn("journal error", "symbol", pos.Symbol, "err", err)
			}
		}

		slog.Info("stop-loss triggered",
			"symbol", pos.Symbol, "qty", pos.Qty,
			"entry", pos.AvgEntryPrice, "current", pos.CurrentPrice)
		e.notify(ctx, fmt.Sprintf("⚠️ STOP-LOSS triggered: Sold %s x%d at $%.2f (entry $%.2f)",
			pos.Symbol, pos.Qty, pos.CurrentPrice, pos.AvgEntryPrice))
	}

	if triggered > 0 {
		slog.Info("risk check complete", "liquidated", triggered)
	}
	return nil
}
