package ports

import (
	"context"

	"github.com/alejandrodnm/optionswing/internal/domain"
)

// Broker ejecuta operaciones sobre la cuenta de paper trading.
type Broker interface {
	// GetAccount devuelve cash y equity actuales.
	GetAccount(ctx context.Context) (domain.Account, error)

	// ListPositions devuelve todas las posiciones abiertas.
	ListPositions(ctx context.Context) ([]domain.Position, error)

	// SubmitOrder envía una orden de mercado con time-in-force day.
	SubmitOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error)
}
