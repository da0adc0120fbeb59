package alpaca

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/alejandrodnm/optionswing/internal/domain"
	"github.com/alejandrodnm/optionswing/internal/ports"
)

const (
	barsLimit          = 5
	contractsPageLimit = 500
)

// Clock devuelve si el mercado está abierto según el reloj del broker.
func (c *Client) Clock(ctx context.Context) (bool, error) {
	var resp clockResponse
	if err := c.get(ctx, c.tradingLimiter, c.tradingBase+"/v2/clock", &resp); err != nil {
		return false, fmt.Errorf("alpaca.Clock: %w", err)
	}
	return resp.IsOpen, nil
}

// ListAssets devuelve los activos de renta variable activos y tradables.
func (c *Client) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	u := c.tradingBase + "/v2/assets?status=active&asset_class=us_equity"

	var wire []wireAsset
	if err := c.get(ctx, c.tradingLimiter, u, &wire); err != nil {
		return nil, fmt.Errorf("alpaca.ListAssets: %w", err)
	}

	assets := make([]domain.Asset, 0, len(wire))
	for _, w := range wire {
		a := mapAsset(w)
		if !a.Tradable {
			continue
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// LatestBar devuelve la barra diaria más reciente del símbolo.
// Una respuesta correcta sin barras devuelve ports.ErrNoBars.
func (c *Client) LatestBar(ctx context.Context, symbol string) (domain.Bar, error) {
	u := fmt.Sprintf("%s/v2/stocks/%s/bars?timeframe=1Day&limit=%d",
		c.dataBase, url.PathEscape(symbol), barsLimit)

	var resp barsResponse
	if err := c.get(ctx, c.dataLimiter, u, &resp); err != nil {
		return domain.Bar{}, fmt.Errorf("alpaca.LatestBar %s: %w", symbol, err)
	}
	if len(resp.Bars) == 0 {
		return domain.Bar{}, fmt.Errorf("alpaca.LatestBar %s: %w", symbol, ports.ErrNoBars)
	}

	bar, err := mapBar(resp.Bars[len(resp.Bars)-1])
	if err != nil {
		return domain.Bar{}, fmt.Errorf("alpaca.LatestBar %s: %w", symbol, err)
	}
	return bar, nil
}

// ListOptionContracts devuelve todos los contratos listados para el subyacente,
// paginando hasta agotar next_page_token. Contratos que no parsean se omiten.
func (c *Client) ListOptionContracts(ctx context.Context, underlying string) ([]domain.OptionContract, error) {
	var contracts []domain.OptionContract
	pageToken := ""

	for {
		u := fmt.Sprintf("%s/v2/options/contracts?underlying_symbols=%s&limit=%d",
			c.tradingBase, url.QueryEscape(underlying), contractsPageLimit)
		if pageToken != "" {
			u += "&page_token=" + url.QueryEscape(pageToken)
		}

		var resp optionContractsResponse
		if err := c.get(ctx, c.tradingLimiter, u, &resp); err != nil {
			return nil, fmt.Errorf("alpaca.ListOptionContracts %s: %w", underlying, err)
		}

		for _, w := range resp.OptionContracts {
			contract, err := mapOptionContract(w)
			if err != nil {
				slog.Debug("skipping unparseable contract",
					"underlying", underlying, "symbol", w.Symbol, "err", err)
				continue
			}
			contracts = append(contracts, contract)
		}

		if resp.NextPageToken == nil || *resp.NextPageToken == "" {
			break
		}
		pageToken = *resp.NextPageToken
	}

	return contracts, nil
}
