package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Nixiestone/smcbot/models"
)

// Client talks to the broker gateway REST API. Requests are rate
// limited and retried with exponential backoff; a request that keeps
// failing surfaces as an error and the caller skips the symbol for
// the cycle.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a gateway client
type ClientOptions struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a broker gateway client
func NewClient(opts ClientOptions) *Client {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}

	return &Client{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		httpClient: &http.Client{
			Timeout: opts.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), opts.RequestsPerSec),
		logger:  log.With().Str("component", "provider").Logger(),
	}
}

type candleResponse struct {
	Candles []struct {
		Time   int64   `json:"time"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume int64   `json:"volume"`
	} `json:"candles"`
}

// GetCandles fetches a candle series, returned oldest first.
func (c *Client) GetCandles(ctx context.Context, symbol, timeframe string, count int) ([]models.Candle, error) {
	endpoint := fmt.Sprintf("%s/candles?symbol=%s&timeframe=%s&count=%d",
		c.baseURL, url.QueryEscape(symbol), url.QueryEscape(timeframe), count)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetching candles: %w", err)
	}

	var data candleResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Msg("parsing candle response failed")
		return nil, fmt.Errorf("parsing candles: %w", err)
	}
	if len(data.Candles) == 0 {
		return nil, fmt.Errorf("no candles returned for %s %s", symbol, timeframe)
	}

	candles := make([]models.Candle, 0, len(data.Candles))
	for _, v := range data.Candles {
		candles = append(candles, models.Candle{
			Time:   time.Unix(v.Time, 0).UTC(),
			Open:   v.Open,
			High:   v.High,
			Low:    v.Low,
			Close:  v.Close,
			Volume: v.Volume,
		})
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Time.Before(candles[j].Time)
	})

	c.logger.Debug().Str("symbol", symbol).Str("timeframe", timeframe).
		Int("count", len(candles)).Msg("candles fetched")
	return candles, nil
}

// GetTick fetches the live bid/ask quote for a symbol.
func (c *Client) GetTick(ctx context.Context, symbol string) (*models.Tick, error) {
	endpoint := fmt.Sprintf("%s/tick?symbol=%s", c.baseURL, url.QueryEscape(symbol))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetching tick: %w", err)
	}

	var tick models.Tick
	if err := json.Unmarshal(body, &tick); err != nil {
		return nil, fmt.Errorf("parsing tick: %w", err)
	}
	if tick.Bid <= 0 || tick.Ask <= 0 {
		return nil, fmt.Errorf("invalid quote for %s", symbol)
	}

	return &tick, nil
}

// GetSymbolInfo fetches instrument metadata.
func (c *Client) GetSymbolInfo(ctx context.Context, symbol string) (*models.SymbolInfo, error) {
	endpoint := fmt.Sprintf("%s/symbol?symbol=%s", c.baseURL, url.QueryEscape(symbol))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetching symbol info: %w", err)
	}

	var info models.SymbolInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("parsing symbol info: %w", err)
	}

	return &info, nil
}

type orderRequest struct {
	Symbol     string  `json:"symbol"`
	Direction  string  `json:"direction"`
	OrderType  string  `json:"order_type"`
	Volume     float64 `json:"volume"`
	Price      float64 `json:"price"`
	StopLoss   float64 `json:"sl"`
	TakeProfit float64 `json:"tp"`
}

type orderResponse struct {
	OrderID string `json:"order_id"`
}

// PlaceOrder submits a trade request to the gateway. Orders are not
// retried; a timeout here is ambiguous and must not double-fill.
func (c *Client) PlaceOrder(ctx context.Context, symbol string, direction models.Direction, orderType models.OrderType, volume, price, sl, tp float64) (string, error) {
	payload, err := json.Marshal(orderRequest{
		Symbol:     symbol,
		Direction:  string(direction),
		OrderType:  string(orderType),
		Volume:     volume,
		Price:      price,
		StopLoss:   sl,
		TakeProfit: tp,
	})
	if err != nil {
		return "", fmt.Errorf("encoding order: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/order", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("order rejected with status %d: %s", resp.StatusCode, body)
	}

	var result orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parsing order response: %w", err)
	}

	c.logger.Info().Str("symbol", symbol).Str("order_id", result.OrderID).Msg("order placed")
	return result.OrderID, nil
}

// get performs a rate-limited GET with retries on transient failures.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		c.authorize(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := &StatusError{StatusCode: resp.StatusCode}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}

// StatusError represents a non-200 gateway response
type StatusError struct {
	StatusCode int
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return "non-200 status code: " + http.StatusText(e.StatusCode)
}
