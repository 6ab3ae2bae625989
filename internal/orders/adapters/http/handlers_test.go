package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	idemmemory "github.com/glassgo/planning-api/internal/idempotency/memory"
	"github.com/glassgo/planning-api/internal/kafka"
	orderhttp "github.com/glassgo/planning-api/internal/orders/adapters/http"
	"github.com/glassgo/planning-api/internal/orders/adapters/memory"
	"github.com/glassgo/planning-api/internal/orders/app"
	"github.com/glassgo/planning-api/internal/orders/domain"
	"github.com/glassgo/planning-api/internal/orders/metrics"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
	Success bool            `json:"success"`
}

func newTestServer(t *testing.T) (*httptest.Server, *memory.Catalog) {
	t.Helper()

	catalog := memory.NewCatalog(
		domain.Product{ID: 1, Name: "Glass Crate", Price: 10, Currency: "PEN", IsAvailable: true, Category: "packaging", StockQuantity: 20},
		domain.Product{ID: 2, Name: "Pallet", Price: 4, Currency: "PEN", IsAvailable: true, Category: "transport", StockQuantity: 3},
	)

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, err := metrics.NewMetrics(provider.Meter("test"))
	if err != nil {
		t.Fatalf("create metrics: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := app.NewService(memory.NewRepository(), catalog, kafka.NewNoopEventBus(), idemmemory.NewStore(), logger, m, 0.18)

	mux := http.NewServeMux()
	orderhttp.NewHandler(service).Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, catalog
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

func draftPayload() map[string]any {
	return map[string]any{
		"status":  "DRAFT",
		"vatRate": 0.18,
		"items": []map[string]any{
			{"productId": 1, "productName": "Glass Crate", "quantity": 2, "unitPrice": 10},
		},
		"deliveryInformation": map[string]any{
			"deliveryAddress": "123 Main St",
			"deliveryDate":    "2026-09-01",
		},
	}
}

func createOrder(t *testing.T, server *httptest.Server) domain.Order {
	t.Helper()

	resp, env := doJSON(t, http.MethodPost, server.URL+"/api/v1/orders", draftPayload(), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, body message %q", resp.StatusCode, env.Message)
	}

	var order domain.Order
	if err := json.Unmarshal(env.Data, &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	return order
}

func TestCreateOrder(t *testing.T) {
	t.Run("creates a pending order and recomputes totals", func(t *testing.T) {
		server, catalog := newTestServer(t)

		order := createOrder(t, server)

		if order.ID == 0 {
			t.Error("expected assigned id")
		}
		if order.Status != domain.StatusPending {
			t.Errorf("status = %s, want %s", order.Status, domain.StatusPending)
		}
		if len(order.OrderNumber) != 12 || order.OrderNumber[:4] != "ORD-" {
			t.Errorf("unexpected order number %q", order.OrderNumber)
		}
		if order.Subtotal != 20 || order.VATAmount != 3.6 || order.Total != 23.6 {
			t.Errorf("totals = %v/%v/%v, want 20/3.6/23.6", order.Subtotal, order.VATAmount, order.Total)
		}

		product, err := catalog.GetByID(context.Background(), 1)
		if err != nil {
			t.Fatalf("get product: %v", err)
		}
		if product.StockQuantity != 18 {
			t.Errorf("stock = %d, want 18", product.StockQuantity)
		}
	})

	t.Run("rejects empty order", func(t *testing.T) {
		server, _ := newTestServer(t)

		payload := draftPayload()
		payload["items"] = []map[string]any{}

		resp, env := doJSON(t, http.MethodPost, server.URL+"/api/v1/orders", payload, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
		if env.Success {
			t.Error("expected success=false")
		}
	})

	t.Run("rejects insufficient stock with conflict", func(t *testing.T) {
		server, catalog := newTestServer(t)

		payload := draftPayload()
		payload["items"] = []map[string]any{
			{"productId": 2, "productName": "Pallet", "quantity": 5, "unitPrice": 4},
		}

		resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/orders", payload, nil)
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("status = %d, want 409", resp.StatusCode)
		}

		product, _ := catalog.GetByID(context.Background(), 2)
		if product.StockQuantity != 3 {
			t.Errorf("stock = %d, want untouched 3", product.StockQuantity)
		}
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		server, _ := newTestServer(t)

		payload := draftPayload()
		payload["items"] = []map[string]any{
			{"productId": 99, "productName": "Ghost", "quantity": 1, "unitPrice": 1},
		}

		resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/orders", payload, nil)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", resp.StatusCode)
		}
	})

	t.Run("replays response for duplicate idempotency key", func(t *testing.T) {
		server, catalog := newTestServer(t)
		headers := map[string]string{"Idempotency-Key": "abc-123"}

		_, first := doJSON(t, http.MethodPost, server.URL+"/api/v1/orders", draftPayload(), headers)
		resp, second := doJSON(t, http.MethodPost, server.URL+"/api/v1/orders", draftPayload(), headers)

		if resp.StatusCode != http.StatusCreated {
			t.Errorf("replay status = %d, want 201", resp.StatusCode)
		}
		if !bytes.Equal(first.Data, second.Data) {
			t.Error("expected identical replayed order")
		}

		product, _ := catalog.GetByID(context.Background(), 1)
		if product.StockQuantity != 18 {
			t.Errorf("stock = %d, want 18 (reduced once)", product.StockQuantity)
		}
	})
}

func TestGetOrder(t *testing.T) {
	server, _ := newTestServer(t)
	created := createOrder(t, server)

	resp, env := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/orders/%d", server.URL, created.ID), nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var order domain.Order
	if err := json.Unmarshal(env.Data, &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.OrderNumber != created.OrderNumber {
		t.Errorf("order number = %q, want %q", order.OrderNumber, created.OrderNumber)
	}

	resp, env = doJSON(t, http.MethodGet, server.URL+"/api/v1/orders/999", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if env.Success || env.Message != "Order not found" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestListOrders(t *testing.T) {
	server, _ := newTestServer(t)
	created := createOrder(t, server)
	doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/v1/orders/%d/cancel", server.URL, created.ID), nil, nil)
	createOrder(t, server)

	resp, env := doJSON(t, http.MethodGet, server.URL+"/api/v1/orders?status=PENDING", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var orders []domain.Order
	if err := json.Unmarshal(env.Data, &orders); err != nil {
		t.Fatalf("decode orders: %v", err)
	}
	if len(orders) != 1 || orders[0].Status != domain.StatusPending {
		t.Errorf("expected one pending order, got %+v", orders)
	}

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/v1/orders?status=BOGUS", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for invalid filter", resp.StatusCode)
	}
}

func TestUpdateOrder(t *testing.T) {
	server, _ := newTestServer(t)
	created := createOrder(t, server)

	t.Run("applies legal status transition", func(t *testing.T) {
		payload := created
		payload.Status = domain.StatusConfirmed

		resp, env := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/orders/%d", server.URL, created.ID), payload, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, message %q", resp.StatusCode, env.Message)
		}

		var order domain.Order
		if err := json.Unmarshal(env.Data, &order); err != nil {
			t.Fatalf("decode order: %v", err)
		}
		if order.Status != domain.StatusConfirmed {
			t.Errorf("status = %s, want CONFIRMED", order.Status)
		}
	})

	t.Run("rejects illegal status transition", func(t *testing.T) {
		payload := created
		payload.Status = domain.StatusDelivered

		resp, _ := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/orders/%d", server.URL, created.ID), payload, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestCancelOrder(t *testing.T) {
	server, _ := newTestServer(t)
	created := createOrder(t, server)

	resp, env := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/v1/orders/%d/cancel", server.URL, created.ID), nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, message %q", resp.StatusCode, env.Message)
	}

	var order domain.Order
	if err := json.Unmarshal(env.Data, &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.Status != domain.StatusCancelled {
		t.Errorf("status = %s, want CANCELLED", order.Status)
	}

	// Cancelled is terminal.
	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/v1/orders/%d/cancel", server.URL, created.ID), nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("second cancel status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteOrder(t *testing.T) {
	server, _ := newTestServer(t)
	created := createOrder(t, server)

	resp, _ := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/orders/%d", server.URL, created.ID), nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/orders/%d", server.URL, created.ID), nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", resp.StatusCode)
	}
}

func TestProducts(t *testing.T) {
	server, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodGet, server.URL+"/api/v1/products", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var products []domain.Product
	if err := json.Unmarshal(env.Data, &products); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("expected 2 products, got %d", len(products))
	}

	resp, env = doJSON(t, http.MethodGet, server.URL+"/api/v1/products/1", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var product domain.Product
	if err := json.Unmarshal(env.Data, &product); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if product.Name != "Glass Crate" {
		t.Errorf("name = %q", product.Name)
	}

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/v1/products/42", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
