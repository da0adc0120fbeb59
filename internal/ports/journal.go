package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/optionswing/internal/domain"
)

// Journal persiste el histórico de órdenes enviadas y resúmenes de ciclo.
// Es histórico, no estado: el dedup diario vive en memoria en la sesión.
type Journal interface {
	// SaveTrade registra una orden enviada (entrada o stop-loss).
	SaveTrade(ctx context.Context, t domain.TradeRecord) error

	// SaveCycle registra el resumen de un ciclo de trading.
	SaveCycle(ctx context.Context, universeSize, ordersSubmitted int, took time.Duration) error

	// TradesSince devuelve los trades registrados desde el instante dado.
	TradesSince(ctx context.Context, since time.Time) ([]domain.TradeRecord, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
