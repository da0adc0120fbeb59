package options

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alejandrodnm/optionswing/internal/domain"
	"github.com/alejandrodnm/optionswing/internal/ports"
)

// Config contiene los filtros de contratos para la selección ATM.
type Config struct {
	MinDaysToExpiry int
	MinPrice        float64
	MinVolume       int64
}

// Selection es el resultado ATM para un subyacente: como máximo un call y un
// put, más el precio de referencia. Cualquiera de los tres puede estar
// ausente; eso es un resultado normal, no un error.
type Selection struct {
	Call            *domain.OptionContract
	Put             *domain.OptionContract
	UnderlyingPrice float64
	PriceKnown      bool
}

// Picker elige los contratos at-the-money de un subyacente.
type Picker struct {
	cfg  Config
	data ports.MarketData
	now  func() time.Time
}

// New crea un Picker con la configuración dada.
func New(cfg Config, data ports.MarketData) *Picker {
	return &Picker{cfg: cfg, data: data, now: time.Now}
}

// ChooseATM lista los contratos del subyacente, filtra por vencimiento mínimo,
// precio cotizado y volumen, y elige en cada grupo (calls, puts) el contrato
// cuyo strike minimiza la distancia al último cierre del subyacente. Empates
// los gana el primer contrato encontrado, determinista con input estable.
func (p *Picker) ChooseATM(ctx context.Context, symbol string) (Selection, error) {
	contracts, err := p.data.ListOptionContracts(ctx, symbol)
	if err != nil {
		return Selection{}, fmt.Errorf("options.ChooseATM %s: %w", symbol, err)
	}
	if len(contracts) == 0 {
		return Selection{}, nil
	}

	bar, err := p.data.LatestBar(ctx, symbol)
	if err != nil {
		if errors.Is(err, ports.ErrNoBars) {
			return Selection{}, nil
		}
		return Selection{}, fmt.Errorf("options.ChooseATM %s: %w", symbol, err)
	}

	sel := Selection{UnderlyingPrice: bar.Close, PriceKnown: true}

	var calls, puts []domain.OptionContract
	for _, c := range contracts {
		if !p.qualifies(c) {
			continue
		}
		switch c.Type {
		case domain.Call:
			calls = append(calls, c)
		case domain.Put:
			puts = append(puts, c)
		}
	}
	if len(calls) == 0 || len(puts) == 0 {
		// sin un par completo no se tradea el símbolo, pero el precio de
		// referencia sigue siendo válido para el caller
		return sel, nil
	}

	sel.Call = closestStrike(calls, bar.Close)
	sel.Put = closestStrike(puts, bar.Close)
	return sel, nil
}

// qualifies aplica los filtros de vencimiento, precio y volumen.
// Contratos sin precio usable se descartan.
func (p *Picker) qualifies(c domain.OptionContract) bool {
	if c.DaysToExpiry(p.now()) < p.cfg.MinDaysToExpiry {
		return false
	}
	if !c.PriceKnown || c.Price < p.cfg.MinPrice {
		return false
	}
	if c.Volume < p.cfg.MinVolume {
		return false
	}
	return true
}

// closestStrike devuelve el contrato con |strike - ref| mínimo.
// La comparación estricta conserva el primero en caso de empate.
func closestStrike(contracts []domain.OptionContract, ref float64) *domain.OptionContract {
	best := 0
	for i := 1; i < len(contracts); i++ {
		if contracts[i].StrikeDistance(ref) < contracts[best].StrikeDistance(ref) {
			best = i
		}
	}
	return &contracts[best]
}
