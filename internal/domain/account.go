package domain

// AssetClassOption es la asset class que el broker asigna a posiciones de opciones.
const AssetClassOption = "us_option"

// Account es el estado de la cuenta en el broker. Solo lectura: se consulta
// fresco en cada ciclo y nunca se cachea más allá de una decisión.
type Account struct {
	Cash   float64
	Equity float64
}

// Position es una posición abierta en el broker. Solo lectura desde este
// sistema; la muta únicamente el broker al ejecutar órdenes.
type Position struct {
	Symbol        string
	Qty           int64 // siempre en valor absoluto
	AvgEntryPrice float64
	CurrentPrice  float64
	AssetClass    string
}

// BreachesStop devuelve true si la posición perdió más que stopLossPct desde
// la entrada. La desigualdad es estricta: en el límite exacto no dispara.
func (p Position) BreachesStop(stopLossPct float64) bool {
	return p.CurrentPrice < p.AvgEntryPrice*(1-stopLossPct)
}
