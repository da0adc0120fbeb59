package alpaca

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/optionswing/internal/domain"
	"github.com/alejandrodnm/optionswing/internal/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", "test-secret", srv.URL, srv.URL)
}

func TestClock_SendsAuthHeaders(t *testing.T) {
	var gotKey, gotSecret string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("APCA-API-KEY-ID")
		gotSecret = r.Header.Get("APCA-API-SECRET-KEY")
		assert.Equal(t, "/v2/clock", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"is_open": true})
	})

	open, err := c.Clock(context.Background())
	require.NoError(t, err)
	assert.True(t, open)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "test-secret", gotSecret)
}

func TestDoWithRetry_RetriesServerErrors(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"is_open": false})
	})

	_, err := c.Clock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "dos 500 y luego éxito")
}

func TestDoWithRetry_UnauthorizedIsFatal(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Clock(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrUnauthorized))
	assert.Equal(t, 1, calls, "401 no se reintenta")
}

func TestDoWithRetry_ClientErrorIsImmediate(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	})

	_, err := c.GetAccount(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ports.ErrUnauthorized))
	assert.Equal(t, 1, calls)
}

func TestLatestBar_EmptyIsErrNoBars(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"bars": []any{}, "symbol": "GONE"})
	})

	_, err := c.LatestBar(context.Background(), "GONE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrNoBars))
}

func TestLatestBar_ReturnsLastBar(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/stocks/AAPL/bars", r.URL.Path)
		assert.Equal(t, "1Day", r.URL.Query().Get("timeframe"))
		json.NewEncoder(w).Encode(map[string]any{
			"bars": []map[string]any{
				{"t": "2025-06-01T04:00:00Z", "o": 44, "h": 45, "l": 43, "c": 44.5, "v": 1_500_000},
				{"t": "2025-06-02T04:00:00Z", "o": 44.5, "h": 46, "l": 44, "c": 45.0, "v": 2_000_000},
			},
			"symbol": "AAPL",
		})
	})

	bar, err := c.LatestBar(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 45.0, bar.Close)
	assert.Equal(t, int64(2_000_000), bar.Volume)
}

func TestListOptionContracts_Paginates(t *testing.T) {
	pageOne := map[string]any{
		"option_contracts": []map[string]any{{
			"symbol":            "AAPL250620C00045000",
			"underlying_symbol": "AAPL",
			"strike_price":      "45",
			"expiration_date":   "2025-06-20",
			"type":              "call",
			"close_price":       "1.50",
			"volume":            120,
		}},
		"next_page_token": "tok-2",
	}
	pageTwo := map[string]any{
		"option_contracts": []map[string]any{{
			"symbol":            "AAPL250620P00045000",
			"underlying_symbol": "AAPL",
			"strike_price":      "45",
			"expiration_date":   "2025-06-20",
			"type":              "put",
			"close_price":       "1.40",
			"volume":            90,
		}},
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("underlying_symbols"))
		if r.URL.Query().Get("page_token") == "tok-2" {
			json.NewEncoder(w).Encode(pageTwo)
			return
		}
		json.NewEncoder(w).Encode(pageOne)
	})

	contracts, err := c.ListOptionContracts(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, contracts, 2)
	assert.Equal(t, domain.Call, contracts[0].Type)
	assert.Equal(t, domain.Put, contracts[1].Type)
}

func TestListOptionContracts_SkipsUnparseable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"option_contracts": []map[string]any{
				{
					"symbol":            "BROKEN",
					"underlying_symbol": "AAPL",
					"strike_price":      "not-a-number",
					"expiration_date":   "2025-06-20",
					"type":              "call",
				},
				{
					"symbol":            "AAPL250620C00045000",
					"underlying_symbol": "AAPL",
					"strike_price":      "45",
					"expiration_date":   "2025-06-20",
					"type":              "call",
				},
			},
		})
	})

	contracts, err := c.ListOptionContracts(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	assert.Equal(t, "AAPL250620C00045000", contracts[0].Symbol)
}

func TestSubmitOrder_Body(t *testing.T) {
	var got orderRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(orderResponse{
			ID:            "ord-1",
			ClientOrderID: got.ClientOrderID,
			Symbol:        got.Symbol,
			Qty:           got.Qty,
			Side:          got.Side,
			Status:        "accepted",
			SubmittedAt:   "2025-06-02T15:00:00Z",
		})
	})

	order, err := c.SubmitOrder(context.Background(), domain.OrderRequest{
		ClientOrderID: "cid-123",
		Symbol:        "AAPL250620C00045000",
		Qty:           2,
		Side:          domain.Buy,
	})
	require.NoError(t, err)

	assert.Equal(t, "AAPL250620C00045000", got.Symbol)
	assert.Equal(t, "2", got.Qty)
	assert.Equal(t, "buy", got.Side)
	assert.Equal(t, "market", got.Type)
	assert.Equal(t, "day", got.TimeInForce)
	assert.Equal(t, "cid-123", got.ClientOrderID)

	assert.Equal(t, "ord-1", order.ID)
	assert.Equal(t, int64(2), order.Qty)
	assert.Equal(t, "accepted", order.Status)
}

func TestSubmitOrder_GeneratesClientOrderID(t *testing.T) {
	var got orderRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(orderResponse{ID: "ord-2", Qty: got.Qty})
	})

	_, err := c.SubmitOrder(context.Background(), domain.OrderRequest{
		Symbol: "X", Qty: 1, Side: domain.Sell,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ClientOrderID, "sin client_order_id el cliente genera uno")
}

func TestListAssets_FiltersNonTradable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "us_equity", r.URL.Query().Get("asset_class"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"symbol": "AAPL", "exchange": "NASDAQ", "status": "active", "tradable": true},
			{"symbol": "HALT", "exchange": "NYSE", "status": "active", "tradable": false},
		})
	})

	assets, err := c.ListAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "AAPL", assets[0].Symbol)
}
