// Package rest provides an HTTP client for the planning API, usable as the
// backend of a checkout session.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/glassgo/planning-api/internal/orders/domain"
	"github.com/glassgo/planning-api/internal/orders/ports"
	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

// Client talks to the orders API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a Client for the given base URL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWithHTTP constructs a Client using a caller-provided http.Client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
	Success bool            `json:"success"`
}

// CreateOrder submits an order for creation. Each call carries a fresh
// idempotency key so a retried HTTP request is deduplicated server-side.
func (c *Client) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}

	var created domain.Order
	if err := c.do(ctx, http.MethodPost, "/api/v1/orders", order, headers, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetOrder fetches an order by identifier.
func (c *Client) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", id), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders fetches orders, optionally filtered by status.
func (c *Client) ListOrders(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error) {
	path := "/api/v1/orders"
	if status != nil {
		path += "?status=" + string(*status)
	}

	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrder replaces an order.
func (c *Client) UpdateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	var updated domain.Order
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/orders/%d", order.ID), order, nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// CancelOrder cancels an order.
func (c *Client) CancelOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var cancelled domain.Order
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/cancel", id), nil, nil, &cancelled); err != nil {
		return nil, err
	}
	return &cancelled, nil
}

// DeleteOrder removes an order.
func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/orders/%d", id), nil, nil, nil)
}

// ListProducts fetches the product catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/products", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a product by identifier.
func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", id), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		// Proxies and gateways answer with non-envelope bodies; keep the
		// status code visible instead of masking it with the decode error.
		if resp.StatusCode == http.StatusNotFound {
			return ports.ErrNotFound
		}
		return fmt.Errorf("%s %s: status %d: decode response: %w", method, path, resp.StatusCode, err)
	}

	if !env.Success {
		if resp.StatusCode == http.StatusNotFound {
			return ports.ErrNotFound
		}
		return fmt.Errorf("%s %s: %s (status %d)", method, path, env.Message, resp.StatusCode)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}
