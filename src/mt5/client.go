// REST CLIENT FOR THE METATRADER TERMINAL BRIDGE
// RESTY ONLY + INTERNAL RETRY
package mt5

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"

	"c79sniper/src/errs"
	"c79sniper/src/model"
)

// -----------------------------
// CONFIG
// -----------------------------
const (
	// Default retry configuration
	defaultRetryAttempts   = 4
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second
)

// Client talks to the local bridge sidecar that fronts the vendor terminal.
// The terminal call contract is owned by the vendor; the bridge only forwards.
type Client struct {
	baseURL string
	http    *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}

	code := r.StatusCode()

	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 {
		return true
	}
	if code == 408 {
		return true
	}
	return false
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:6542"
		logger.Warnf("No bridge URL provided, using default: %s", baseURL)
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

// NewClientWithAuth builds a client that presents a bearer token to the
// bridge. Used when the bridge sidecar has authentication enabled.
func NewClientWithAuth(baseURL, token string) *Client {
	c := NewClient(baseURL)
	if token != "" {
		c.http.SetAuthToken(token)
	}
	return c
}

func (c *Client) doGet(ctx context.Context, path string, query map[string]string, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return errs.NewConnectivityError("mt5_bridge", err)
	}
	return c.decode(path, resp, out)
}

func (c *Client) doPost(ctx context.Context, path string, body interface{}, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetHeader("Content-Type", "application/json").
		Post(path)
	if err != nil {
		return errs.NewConnectivityError("mt5_bridge", err)
	}
	return c.decode(path, resp, out)
}

func (c *Client) decode(path string, resp *resty.Response, out interface{}) error {
	if resp.StatusCode() != 200 {
		return errs.NewConnectivityError("mt5_bridge",
			fmt.Errorf("%s: HTTP %d: %s", path, resp.StatusCode(), string(resp.Body())))
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decode: %w", path, err)
	}
	return nil
}

// -----------------------------
// MARKET DATA
// -----------------------------

// Bars returns the most recent count bars, oldest first.
func (c *Client) Bars(ctx context.Context, symbol, timeframe string, count int) ([]model.Bar, error) {
	var parsed barsResponse
	err := c.doGet(ctx, "/bars", map[string]string{
		"symbol":    symbol,
		"timeframe": timeframe,
		"count":     fmt.Sprintf("%d", count),
	}, &parsed)
	if err != nil {
		return nil, err
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("bridge error: %s", parsed.Error)
	}

	bars := make([]model.Bar, 0, len(parsed.Bars))
	for _, w := range parsed.Bars {
		bars = append(bars, w.toBar(symbol))
	}
	return bars, nil
}

// -----------------------------
// ACCOUNT & POSITIONS
// -----------------------------

func (c *Client) Account(ctx context.Context) (*AccountInfo, error) {
	var parsed accountResponse
	if err := c.doGet(ctx, "/account", nil, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("bridge error: %s", parsed.Error)
	}
	return &parsed.Account, nil
}

// Positions returns open positions filtered by magic number. magic=0 returns all.
func (c *Client) Positions(ctx context.Context, magic int64) ([]Position, error) {
	query := map[string]string{}
	if magic != 0 {
		query["magic"] = fmt.Sprintf("%d", magic)
	}

	var parsed positionsResponse
	if err := c.doGet(ctx, "/positions", query, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("bridge error: %s", parsed.Error)
	}
	return parsed.Positions, nil
}

// Deals returns closed-deal history entries inside [from, to).
func (c *Client) Deals(ctx context.Context, from, to time.Time) ([]Deal, error) {
	var parsed dealsResponse
	err := c.doGet(ctx, "/deals", map[string]string{
		"from": fmt.Sprintf("%d", from.Unix()),
		"to":   fmt.Sprintf("%d", to.Unix()),
	}, &parsed)
	if err != nil {
		return nil, err
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("bridge error: %s", parsed.Error)
	}
	return parsed.Deals, nil
}

// -----------------------------
// TRADING
// -----------------------------

func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	var parsed orderResponse
	if err := c.doPost(ctx, "/order", req, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("bridge rejected order: %s", parsed.Error)
	}

	logger.WithFields(map[string]interface{}{
		"ticket": parsed.Ticket,
		"symbol": req.Symbol,
		"type":   req.Type,
		"lots":   req.Lots,
	}).Info("Order placed")

	return &OrderResult{Ticket: parsed.Ticket, Price: parsed.Price}, nil
}

// ModifyPosition updates stop-loss / take-profit on an open position.
func (c *Client) ModifyPosition(ctx context.Context, ticket int64, stopLoss, takeProfit float64) error {
	var parsed bridgeResponse
	body := map[string]interface{}{
		"ticket":      ticket,
		"stop_loss":   stopLoss,
		"take_profit": takeProfit,
	}
	if err := c.doPost(ctx, fmt.Sprintf("/position/%d/modify", ticket), body, &parsed); err != nil {
		return err
	}
	if parsed.Status != "ok" {
		return fmt.Errorf("bridge rejected modify: %s", parsed.Error)
	}
	return nil
}

func (c *Client) ClosePosition(ctx context.Context, ticket int64) error {
	var parsed bridgeResponse
	if err := c.doPost(ctx, fmt.Sprintf("/position/%d/close", ticket), nil, &parsed); err != nil {
		return err
	}
	if parsed.Status != "ok" {
		return fmt.Errorf("bridge rejected close: %s", parsed.Error)
	}
	return nil
}
