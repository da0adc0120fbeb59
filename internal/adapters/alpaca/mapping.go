package alpaca

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/optionswing/internal/domain"
)

// mapping.go — normalización wire → domain.
//
// Todo el acceso defensivo a campos del broker (precio last vs ask vs close,
// decimales como strings, fechas como YYYY-MM-DD) vive aquí. El resto del
// código consume solo los structs de domain.

func mapAsset(w wireAsset) domain.Asset {
	return domain.Asset{
		Symbol:   w.Symbol,
		Exchange: w.Exchange,
		Tradable: w.Tradable && w.Status == "active",
		IsETF:    isETFName(w.Name),
	}
}

// isETFName detecta ETFs por el nombre del activo; Alpaca no expone un flag
// dedicado en /v2/assets.
func isETFName(name string) bool {
	upper := strings.ToUpper(name)
	return strings.Contains(upper, " ETF") || strings.HasSuffix(upper, "ETF")
}

func mapBar(w wireBar) (domain.Bar, error) {
	ts, err := time.Parse(time.RFC3339, w.Time)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("parse bar time %q: %w", w.Time, err)
	}
	return domain.Bar{
		Time:   ts.UTC(),
		Open:   w.Open,
		High:   w.High,
		Low:    w.Low,
		Close:  w.Close,
		Volume: w.Volume,
	}, nil
}

// mapOptionContract normaliza un contrato wire. Devuelve error si algún campo
// obligatorio no parsea; el caller omite el contrato, no aborta el listado.
func mapOptionContract(w wireOptionContract) (domain.OptionContract, error) {
	strike, err := strconv.ParseFloat(w.StrikePrice, 64)
	if err != nil {
		return domain.OptionContract{}, fmt.Errorf("parse strike %q: %w", w.StrikePrice, err)
	}

	exp, err := time.ParseInLocation("2006-01-02", w.ExpirationDate, time.UTC)
	if err != nil {
		return domain.OptionContract{}, fmt.Errorf("parse expiration %q: %w", w.ExpirationDate, err)
	}

	var typ domain.OptionType
	switch strings.ToLower(w.Type) {
	case "call":
		typ = domain.Call
	case "put":
		typ = domain.Put
	default:
		return domain.OptionContract{}, fmt.Errorf("unknown option type %q", w.Type)
	}

	c := domain.OptionContract{
		Symbol:     w.Symbol,
		Underlying: w.UnderlyingSymbol,
		Strike:     strike,
		Expiration: exp,
		Type:       typ,
	}
	if w.Volume != nil {
		c.Volume = *w.Volume
	}
	c.Price, c.PriceKnown = quotedPrice(w)
	return c, nil
}

// quotedPrice colapsa los fallbacks de precio del broker en un solo valor:
// last trade, si no ask, si no el close del día anterior.
func quotedPrice(w wireOptionContract) (float64, bool) {
	for _, s := range []*string{w.LastTradePrice, w.AskPrice, w.ClosePrice} {
		if s == nil || *s == "" {
			continue
		}
		p, err := strconv.ParseFloat(*s, 64)
		if err != nil {
			continue
		}
		return p, true
	}
	return 0, false
}

func mapAccount(w accountResponse) (domain.Account, error) {
	cash, err := strconv.ParseFloat(w.Cash, 64)
	if err != nil {
		return domain.Account{}, fmt.Errorf("parse cash %q: %w", w.Cash, err)
	}
	equity, err := strconv.ParseFloat(w.Equity, 64)
	if err != nil {
		return domain.Account{}, fmt.Errorf("parse equity %q: %w", w.Equity, err)
	}
	return domain.Account{Cash: cash, Equity: equity}, nil
}

func mapPosition(w wirePosition) (domain.Position, error) {
	qty, err := strconv.ParseFloat(w.Qty, 64)
	if err != nil {
		return domain.Position{}, fmt.Errorf("parse qty %q: %w", w.Qty, err)
	}
	entry, err := strconv.ParseFloat(w.AvgEntryPrice, 64)
	if err != nil {
		return domain.Position{}, fmt.Errorf("parse avg_entry_price %q: %w", w.AvgEntryPrice, err)
	}
	current, err := strconv.ParseFloat(w.CurrentPrice, 64)
	if err != nil {
		return domain.Position{}, fmt.Errorf("parse current_price %q: %w", w.CurrentPrice, err)
	}
	if qty < 0 {
		qty = -qty
	}
	return domain.Position{
		Symbol:        w.Symbol,
		Qty:           int64(qty),
		AvgEntryPrice: entry,
		CurrentPrice:  current,
		AssetClass:    w.AssetClass,
	}, nil
}

func mapOrder(w orderResponse) domain.Order {
	qty, _ := strconv.ParseFloat(w.Qty, 64)
	submittedAt, _ := time.Parse(time.RFC3339, w.SubmittedAt)
	return domain.Order{
		ID:            w.ID,
		ClientOrderID: w.ClientOrderID,
		Symbol:        w.Symbol,
		Qty:           int64(qty),
		Side:          domain.OrderSide(w.Side),
		Status:        w.Status,
		SubmittedAt:   submittedAt.UTC(),
	}
}
