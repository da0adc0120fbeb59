package alpaca

// Tipos wire del API de Alpaca. Los decimales llegan como strings y los
// campos de precio/volumen de contratos pueden faltar; la normalización a
// los structs de domain ocurre una sola vez en mapping.go.

type clockResponse struct {
	IsOpen    bool   `json:"is_open"`
	Timestamp string `json:"timestamp"`
}

type wireAsset struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Class    string `json:"class"`
	Status   string `json:"status"`
	Tradable bool   `json:"tradable"`
}

type wireBar struct {
	Time   string  `json:"t"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume int64   `json:"v"`
}

type barsResponse struct {
	Bars          []wireBar `json:"bars"`
	Symbol        string    `json:"symbol"`
	NextPageToken *string   `json:"next_page_token"`
}

type wireOptionContract struct {
	Symbol           string  `json:"symbol"`
	UnderlyingSymbol string  `json:"underlying_symbol"`
	StrikePrice      string  `json:"strike_price"`
	ExpirationDate   string  `json:"expiration_date"` // YYYY-MM-DD
	Type             string  `json:"type"`            // call | put, case varies
	LastTradePrice   *string `json:"last_trade_price"`
	AskPrice         *string `json:"ask_price"`
	ClosePrice       *string `json:"close_price"`
	Volume           *int64  `json:"volume"`
}

type optionContractsResponse struct {
	OptionContracts []wireOptionContract `json:"option_contracts"`
	NextPageToken   *string              `json:"next_page_token"`
}

type accountResponse struct {
	Cash   string `json:"cash"`
	Equity string `json:"equity"`
	Status string `json:"status"`
}

type wirePosition struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	AvgEntryPrice string `json:"avg_entry_price"`
	CurrentPrice  string `json:"current_price"`
	AssetClass    string `json:"asset_class"`
}

type orderRequest struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force"`
	ClientOrderID string `json:"client_order_id,omitempty"`
}

type orderResponse struct {
	ID            string `json:"id"`
	ClientOrderID string `json:"client_order_id"`
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	Side          string `json:"side"`
	Status        string `json:"status"`
	SubmittedAt   string `json:"submitted_at"`
}
