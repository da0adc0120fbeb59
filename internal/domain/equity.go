package domain

import "time"

// Asset es un activo listado en el broker, ya normalizado.
type Asset struct {
	Symbol   string
	Exchange string
	Tradable bool
	IsETF    bool
}

// Bar es una barra diaria OHLCV normalizada (timestamp siempre UTC).
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// EquityCandidate es un subyacente evaluado durante la selección del universo.
// Efímero: se recalcula desde cero en cada ciclo, nunca se persiste.
type EquityCandidate struct {
	Symbol     string
	LastClose  float64
	LastVolume int64
	BarTime    time.Time
}

// Universe es el conjunto de subyacentes elegidos para un día de trading,
// ordenado por volumen descendente. Reemplaza al anterior por completo.
type Universe []string
