package universe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/alejandrodnm/optionswing/internal/domain"
	"github.com/alejandrodnm/optionswing/internal/ports"
)

// Config contiene los umbrales de selección del universo.
type Config struct {
	TopN          int
	MinPrice      float64
	MaxPrice      float64
	MinVolume     int64
	MaxBarAgeDays int
	Exchanges     []string
}

// SkipReason explica por qué un candidato quedó fuera del universo.
// Hace inspeccionables los descartes en vez de dejarlos solo en los logs.
type SkipReason string

const (
	SkipExchange    SkipReason = "exchange"
	SkipSymbolClass SkipReason = "symbol_class" // preferentes, warrants, units, ETFs
	SkipFetchError  SkipReason = "fetch_error"
	SkipNoBars      SkipReason = "no_bars"
	SkipStaleBar    SkipReason = "stale_bar"
	SkipPriceBand   SkipReason = "price_band"
	SkipVolume      SkipReason = "volume"
)

// Report es el resultado de una pasada de selección: los candidatos que
// sobrevivieron (ya rankeados y cortados a TopN) y el conteo de descartes.
type Report struct {
	Candidates []domain.EquityCandidate
	Evaluated  int
	Skipped    map[SkipReason]int
}

// Symbols devuelve el universo como lista ordenada de tickers.
func (r Report) Symbols() domain.Universe {
	syms := make(domain.Universe, len(r.Candidates))
	for i, c := range r.Candidates {
		syms[i] = c.Symbol
	}
	return syms
}

// Selector construye el universo de subyacentes a partir del listado de
// activos del broker. Un resultado vacío es válido y corta el ciclo aguas abajo.
type Selector struct {
	cfg  Config
	data ports.MarketData
	now  func() time.Time
}

// New crea un Selector con la configuración dada.
func New(cfg Config, data ports.MarketData) *Selector {
	return &Selector{cfg: cfg, data: data, now: time.Now}
}

// Select lista los activos tradables, filtra por banda de precio, volumen
// mínimo y frescura de la última barra, y devuelve los TopN por volumen
// descendente. Los errores por-candidato se cuentan y loguean, nunca abortan
// la selección completa.
func (s *Selector) Select(ctx context.Context) (Report, error) {
	report := Report{Skipped: make(map[SkipReason]int)}

	assets, err := s.data.ListAssets(ctx)
	if err != nil {
		return report, fmt.Errorf("universe.Select: list assets: %w", err)
	}

	var kept []domain.EquityCandidate
	for _, asset := range assets {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Evaluated++

		if reason, ok := s.screenAsset(asset); !ok {
			report.Skipped[reason]++
			continue
		}

		bar, err := s.data.LatestBar(ctx, asset.Symbol)
		if err != nil {
			// "sin barras" es un skip inmediato, no un transitorio: el retry
			// de transporte ya ocurrió dentro del client.
			if errors.Is(err, ports.ErrNoBars) {
				report.Skipped[SkipNoBars]++
			} else {
				slog.Debug("bar fetch failed", "symbol", asset.Symbol, "err", err)
				report.Skipped[SkipFetchError]++
			}
			continue
		}

		candidate := domain.EquityCandidate{
			Symbol:     asset.Symbol,
			LastClose:  bar.Close,
			LastVolume: bar.Volume,
			BarTime:    bar.Time,
		}
		if reason, ok := s.Evaluate(candidate); !ok {
			report.Skipped[reason]++
			continue
		}
		kept = append(kept, candidate)
	}

	// Ranking por volumen descendente; empates conservan el orden de entrada.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].LastVolume > kept[j].LastVolume
	})
	if s.cfg.TopN > 0 && len(kept) > s.cfg.TopN {
		kept = kept[:s.cfg.TopN]
	}
	report.Candidates = kept
	return report, nil
}

// Evaluate aplica los filtros numéricos sobre un candidato ya con barra.
func (s *Selector) Evaluate(c domain.EquityCandidate) (SkipReason, bool) {
	maxAge := time.Duration(s.cfg.MaxBarAgeDays) * 24 * time.Hour
	if s.now().UTC().Sub(c.BarTime) > maxAge {
		return SkipStaleBar, false
	}
	if c.LastClose < s.cfg.MinPrice || c.LastClose > s.cfg.MaxPrice {
		return SkipPriceBand, false
	}
	if c.LastVolume < s.cfg.MinVolume {
		return SkipVolume, false
	}
	return "", true
}

// screenAsset filtra por exchange y por clase de símbolo antes de pedir datos.
func (s *Selector) screenAsset(a domain.Asset) (SkipReason, bool) {
	if !s.exchangeAllowed(a.Exchange) {
		return SkipExchange, false
	}
	if a.IsETF || excludedSymbol(a.Symbol) {
		return SkipSymbolClass, false
	}
	return "", true
}

func (s *Selector) exchangeAllowed(exchange string) bool {
	for _, e := range s.cfg.Exchanges {
		if e == exchange {
			return true
		}
	}
	return false
}

// excludedSymbol detecta símbolos que no son common stock: preferentes y
// series (BRK.A, PBR-A), y los sufijos de 5 letras de warrants (W) y units (U).
func excludedSymbol(symbol string) bool {
	for _, r := range symbol {
		if r == '.' || r == '-' || r == '/' {
			return true
		}
	}
	if len(symbol) == 5 {
		last := symbol[len(symbol)-1]
		if last == 'W' || last == 'U' {
			return true
		}
	}
	return false
}
