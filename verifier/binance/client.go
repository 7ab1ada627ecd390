// Package binance implements verifier.Verifier against the Binance
// REST API. Requests are authenticated with an API key header and an
// HMAC-SHA256 signature over the query string.
package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xraph/storefront/types"
	"github.com/xraph/storefront/verifier"
)

const defaultBaseURL = "https://api.binance.com"

// Client is a Binance REST client implementing verifier.Verifier.
type Client struct {
	apiKey    string
	apiSecret string
	baseURL   string
	http      *http.Client
	now       func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used for regional mirrors
// and test servers.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Binance client with the given API credentials.
func New(apiKey, apiSecret string, opts ...Option) *Client {
	c := &Client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: 15 * time.Second},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// depositRecord is the wire shape of one entry in the deposit history.
type depositRecord struct {
	Amount     string `json:"amount"`
	Coin       string `json:"coin"`
	Network    string `json:"network"`
	Status     int    `json:"status"`
	TxID       string `json:"txId"`
	InsertTime int64  `json:"insertTime"` // unix millis
}

// DepositByTxID scans the recent deposit history for a transaction id.
func (c *Client) DepositByTxID(ctx context.Context, coin, txid string) (*verifier.Deposit, error) {
	q := url.Values{}
	q.Set("coin", strings.ToUpper(coin))

	var records []depositRecord
	if err := c.signedGet(ctx, "/sapi/v1/capital/deposit/hisrec", q, &records); err != nil {
		return nil, err
	}

	for _, rec := range records {
		if rec.TxID != txid {
			continue
		}

		amount, err := types.ParseMajor(rec.Amount, rec.Coin)
		if err != nil {
			return nil, fmt.Errorf("binance: deposit %s: %w", txid, err)
		}

		return &verifier.Deposit{
			TxID:       rec.TxID,
			Asset:      rec.Coin,
			Amount:     amount,
			ReceivedAt: time.UnixMilli(rec.InsertTime).UTC(),
		}, nil
	}

	return nil, verifier.ErrDepositNotFound
}

// depositAddress is the wire shape of a deposit address response.
type depositAddress struct {
	Address string `json:"address"`
	Coin    string `json:"coin"`
	Tag     string `json:"tag"`
}

// DepositAddress returns the deposit address for a coin on a network.
// Checkout flows show this to the client before payment.
func (c *Client) DepositAddress(ctx context.Context, coin, network string) (string, error) {
	q := url.Values{}
	q.Set("coin", strings.ToUpper(coin))
	if network != "" {
		q.Set("network", strings.ToUpper(network))
	}

	var addr depositAddress
	if err := c.signedGet(ctx, "/sapi/v1/capital/deposit/address", q, &addr); err != nil {
		return "", err
	}
	if addr.Address == "" {
		return "", fmt.Errorf("binance: no deposit address for %s/%s", coin, network)
	}
	return addr.Address, nil
}

// signedGet performs an authenticated GET and decodes the JSON body.
func (c *Client) signedGet(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	query := q.Encode()
	query += "&signature=" + c.sign(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query, nil)
	if err != nil {
		return fmt.Errorf("binance: build request: %w", err)
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", verifier.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", verifier.ErrUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", verifier.ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("binance: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("binance: decode response: %w", err)
	}
	return nil
}

// sign computes the HMAC-SHA256 signature of the query string.
func (c *Client) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}
