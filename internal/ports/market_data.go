package ports

import (
	"context"

	"github.com/alejandrodnm/optionswing/internal/domain"
)

// MarketData obtiene el estado del mercado y los datos de precios del broker.
type MarketData interface {
	// Clock devuelve si el mercado está abierto ahora mismo.
	Clock(ctx context.Context) (bool, error)

	// ListAssets devuelve los activos de renta variable activos y tradables.
	// Pagina internamente si hace falta; el filtrado por exchange/sufijo
	// es responsabilidad del selector, no del adapter.
	ListAssets(ctx context.Context) ([]domain.Asset, error)

	// LatestBar devuelve la barra diaria más reciente del símbolo.
	// Un símbolo sin barras devuelve ErrNoBars, no un error de transporte.
	LatestBar(ctx context.Context, symbol string) (domain.Bar, error)

	// ListOptionContracts devuelve los contratos de opciones listados para el
	// subyacente, ya normalizados. Contratos con campos imposibles de parsear
	// se omiten en el adapter, no abortan la llamada.
	ListOptionContracts(ctx context.Context, underlying string) ([]domain.OptionContract, error)
}
