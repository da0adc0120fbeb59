package alpaca

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/alejandrodnm/optionswing/internal/domain"
)

// GetAccount devuelve cash y equity actuales de la cuenta.
func (c *Client) GetAccount(ctx context.Context) (domain.Account, error) {
	var resp accountResponse
	if err := c.get(ctx, c.tradingLimiter, c.tradingBase+"/v2/account", &resp); err != nil {
		return domain.Account{}, fmt.Errorf("alpaca.GetAccount: %w", err)
	}
	account, err := mapAccount(resp)
	if err != nil {
		return domain.Account{}, fmt.Errorf("alpaca.GetAccount: %w", err)
	}
	return account, nil
}

// ListPositions devuelve todas las posiciones abiertas.
// Posiciones que no parsean se omiten; se devuelven solo las válidas.
func (c *Client) ListPositions(ctx context.Context) ([]domain.Position, error) {
	var wire []wirePosition
	if err := c.get(ctx, c.tradingLimiter, c.tradingBase+"/v2/positions", &wire); err != nil {
		return nil, fmt.Errorf("alpaca.ListPositions: %w", err)
	}

	positions := make([]domain.Position, 0, len(wire))
	for _, w := range wire {
		p, err := mapPosition(w)
		if err != nil {
			slog.Debug("skipping unparseable position", "symbol", w.Symbol, "err", err)
			continue
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// SubmitOrder envía una orden de mercado con time-in-force day.
// Si req.ClientOrderID está vacío genera uno, de modo que un reintento del
// broker no pueda duplicar la orden.
func (c *Client) SubmitOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	clientID := req.ClientOrderID
	if clientID == "" {
		clientID = uuid.NewString()
	}

	body := orderRequest{
		Symbol:        req.Symbol,
		Qty:           strconv.FormatInt(req.Qty, 10),
		Side:          string(req.Side),
		Type:          "market",
		TimeInForce:   "day",
		ClientOrderID: clientID,
	}

	var resp orderResponse
	if err := c.post(ctx, c.tradingLimiter, c.tradingBase+"/v2/orders", body, &resp); err != nil {
		return domain.Order{}, fmt.Errorf("alpaca.SubmitOrder %s: %w", req.Symbol, err)
	}
	return mapOrder(resp), nil
}
