package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultCLOBBase  = "https://clob.polymarket.com"
	defaultGammaBase = "https://gamma-api.polymarket.com"

	// Rate limits al 60% de los límites reales documentados.
	// Gamma /markets: 300/10s → 180/10s → 18/s
	gammaRatePerSec = 18
	// CLOB general (prices-history, etc.): 9000/10s → 5400/10s → 540/s
	clobRatePerSec = 540

	// DefaultRetries es el presupuesto de reintentos tras el primer intento.
	DefaultRetries = 3
	// baseRetryWait escala el backoff lineal: 0.4s, 0.8s, 1.2s...
	baseRetryWait = 400 * time.Millisecond

	userAgent = "polylab/1.0"
)

// Client es el HTTP client de Polymarket con rate limiting y retries.
type Client struct {
	http         *http.Client
	clobBase     string
	gammaBase    string
	retries      int
	clobLimiter  *rate.Limiter
	gammaLimiter *rate.Limiter
}

// NewClient crea un Client con los base URLs dados. Si clobBase o
// gammaBase están vacíos, usa los URLs de producción. retries es el
// número de reintentos tras el primer intento; un valor negativo es un
// error del caller.
func NewClient(clobBase, gammaBase string, retries int) (*Client, error) {
	if retries < 0 {
		return nil, fmt.Errorf("polymarket.NewClient: negative retries %d", retries)
	}
	if clobBase == "" {
		clobBase = defaultCLOBBase
	}
	if gammaBase == "" {
		gammaBase = defaultGammaBase
	}
	return &Client{
		http:         &http.Client{Timeout: 20 * time.Second},
		clobBase:     clobBase,
		gammaBase:    gammaBase,
		retries:      retries,
		clobLimiter:  rate.NewLimiter(clobRatePerSec, 50),
		gammaLimiter: rate.NewLimiter(gammaRatePerSec, 10),
	}, nil
}

// get hace un GET con rate limiting y retries.
func (c *Client) get(ctx context.Context, limiter *rate.Limiter, url string, out any) error {
	return c.doWithRetry(ctx, limiter, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		return c.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la request con backoff lineal. Son transitorios (y
// se reintentan) los errores de transporte, 429, 5xx y los cuerpos JSON
// malformados; los 4xx restantes son fatales con el cuerpo en el error.
// Agotado el presupuesto, devuelve el último error subyacente.
func (c *Client) doWithRetry(ctx context.Context, limiter *rate.Limiter, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= c.retries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == c.retries {
				return fmt.Errorf("request failed after %d retries: %w", c.retries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if attempt == c.retries {
				return fmt.Errorf("rate limited (429) after %d retries", c.retries)
			}
			slog.Warn("rate limited by API", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == c.retries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, c.retries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			if attempt == c.retries {
				return fmt.Errorf("read body after %d retries: %w", c.retries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}
		if err := json.Unmarshal(body, out); err != nil {
			if attempt == c.retries {
				return fmt.Errorf("decode response after %d retries: %w", c.retries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", c.retries)
}

// sleep espera 0.4s × (attempt+1), respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(attempt+1) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
