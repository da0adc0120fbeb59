package alpaca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/optionswing/internal/ports"
)

const (
	defaultTradingBase = "https://paper-api.alpaca.markets"
	defaultDataBase    = "https://data.alpaca.markets"

	// Rate limits al 60% de los límites documentados.
	// Trading API: 200/min → 120/min → 2/s
	tradingRatePerSec = 2
	// Market Data API (plan básico): 200/min → 120/min → 2/s
	dataRatePerSec = 2

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client de Alpaca con rate limiting y retries.
// Implementa ports.MarketData y ports.Broker.
type Client struct {
	http           *http.Client
	tradingBase    string
	dataBase       string
	keyID          string
	secretKey      string
	tradingLimiter *rate.Limiter
	dataLimiter    *rate.Limiter
}

// NewClient crea un Client con las credenciales y base URLs dados.
// Si tradingBase o dataBase están vacíos, usa los URLs de paper trading.
func NewClient(keyID, secretKey, tradingBase, dataBase string) *Client {
	if tradingBase == "" {
		tradingBase = defaultTradingBase
	}
	if dataBase == "" {
		dataBase = defaultDataBase
	}
	return &Client{
		http:           &http.Client{Timeout: 10 * time.Second},
		tradingBase:    tradingBase,
		dataBase:       dataBase,
		keyID:          keyID,
		secretKey:      secretKey,
		tradingLimiter: rate.NewLimiter(tradingRatePerSec, 10),
		dataLimiter:    rate.NewLimiter(dataRatePerSec, 10),
	}
}

// get hace un GET autenticado con rate limiting y retries.
func (c *Client) get(ctx context.Context, limiter *rate.Limiter, url string, out any) error {
	return c.doWithRetry(ctx, limiter, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)
		return c.http.Do(req)
	}, out)
}

// post hace un POST JSON autenticado con rate limiting y retries.
func (c *Client) post(ctx context.Context, limiter *rate.Limiter, url string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	return c.doWithRetry(ctx, limiter, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		c.setHeaders(req)
		return c.http.Do(req)
	}, out)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("APCA-API-KEY-ID", c.keyID)
	req.Header.Set("APCA-API-SECRET-KEY", c.secretKey)
}

// doWithRetry ejecuta la request distinguiendo fallos transitorios de fatales:
// errores de red, 429 y 5xx se reintentan con backoff exponencial; 401/403 se
// devuelve como ports.ErrUnauthorized sin reintentar; el resto de 4xx se
// devuelve inmediatamente.
func (c *Client) doWithRetry(ctx context.Context, limiter *rate.Limiter, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			resp.Body.Close()
			return fmt.Errorf("status %d: %w", resp.StatusCode, ports.ErrUnauthorized)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by Alpaca", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
