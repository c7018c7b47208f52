// Package warehouse talks to the external authoritative stock-of-record
// over HTTP. The warehouse is slow and fails independently of our
// callers; this client only shapes requests and classifies responses.
package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every warehouse call; a hung warehouse must not
// hang our requests.
const DefaultTimeout = 5 * time.Second

// Client wraps the warehouse HTTP API with typed Fetch and Commit helpers.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient instantiates the warehouse client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("warehouse base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

type stockPayload struct {
	ProductID int64 `json:"productId"`
	Stock     int64 `json:"stock"`
}

// Fetch reads the authoritative stock level for the product.
func (c *Client) Fetch(ctx context.Context, productID int64) (int64, error) {
	if c == nil || c.httpClient == nil {
		return 0, errors.New("warehouse client not configured")
	}
	url := fmt.Sprintf("%s/stock/%d", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build warehouse fetch request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call warehouse: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, statusError("fetch", resp)
	}
	var payload stockPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode warehouse stock: %w", err)
	}
	return payload.Stock, nil
}

// Commit writes the new absolute stock level for the product.
func (c *Client) Commit(ctx context.Context, productID, newStock int64) error {
	if c == nil || c.httpClient == nil {
		return errors.New("warehouse client not configured")
	}
	body, err := json.Marshal(stockPayload{ProductID: productID, Stock: newStock})
	if err != nil {
		return fmt.Errorf("encode warehouse stock: %w", err)
	}
	url := fmt.Sprintf("%s/stock/%d", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build warehouse commit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call warehouse: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("commit", resp)
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("warehouse %s failed: %s", op, msg)
}
