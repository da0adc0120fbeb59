package domain

import (
	"math"
	"time"
)

// OptionType es call o put.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// OptionContract es un contrato de opción ya normalizado en el borde del API:
// los fallbacks de schema del broker (last_trade_price vs ask_price, strike vs
// strike_price) se resuelven una sola vez en el adapter, nunca aquí.
type OptionContract struct {
	Symbol     string // símbolo OCC asignado por el broker, único
	Underlying string
	Strike     float64
	Expiration time.Time // fecha de calendario, medianoche UTC
	Type       OptionType
	Price      float64 // last trade, o ask si no hay last; 0 si PriceKnown es false
	PriceKnown bool
	Volume     int64
}

// DaysToExpiry devuelve los días de calendario hasta el vencimiento,
// relativo a la fecha UTC de now.
func (c OptionContract) DaysToExpiry(now time.Time) int {
	today := now.UTC().Truncate(24 * time.Hour)
	return int(c.Expiration.Sub(today).Hours() / 24)
}

// StrikeDistance devuelve |strike - ref|.
func (c OptionContract) StrikeDistance(ref float64) float64 {
	return math.Abs(c.Strike - ref)
}
