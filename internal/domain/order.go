package domain

import "time"

// OrderSide es buy o sell.
type OrderSide string

const (
	Buy  OrderSide = "buy"
	Sell OrderSide = "sell"
)

// OrderRequest es una orden de mercado lista para enviar al broker.
// Todas las órdenes del bot son market con time-in-force day.
type OrderRequest struct {
	ClientOrderID string
	Symbol        string
	Qty           int64
	Side          OrderSide
}

// Order es la confirmación del broker tras aceptar una orden.
type Order struct {
	ID            string
	ClientOrderID string
	Symbol        string
	Qty           int64
	Side          OrderSide
	Status        string
	SubmittedAt   time.Time
}

// TradeReason distingue entradas de salidas forzadas en el journal.
type TradeReason string

const (
	ReasonEntry    TradeReason = "entry"
	ReasonStopLoss TradeReason = "stop_loss"
)

// TradeRecord es la fila que el journal persiste por cada orden enviada.
type TradeRecord struct {
	SubmittedAt time.Time
	Symbol      string
	Underlying  string
	Side        OrderSide
	Qty         int64
	Price       float64 // precio cotizado al decidir, no el fill
	Reason      TradeReason
}
