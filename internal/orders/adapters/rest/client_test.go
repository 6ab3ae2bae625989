package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glassgo/planning-api/internal/orders/adapters/rest"
	"github.com/glassgo/planning-api/internal/orders/checkout"
	"github.com/glassgo/planning-api/internal/orders/domain"
	"github.com/glassgo/planning-api/internal/orders/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(w http.ResponseWriter, status int, message string, success bool, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":    data,
		"message": message,
		"status":  status,
		"success": success,
	})
}

func TestCreateOrder(t *testing.T) {
	var gotKey string
	var gotOrder domain.Order

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/orders", r.URL.Path)
		gotKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotOrder))

		created := gotOrder
		created.ID = 7
		created.OrderNumber = "ORD-ABCD1234"
		created.Status = domain.StatusPending
		respond(w, http.StatusCreated, "Order created successfully", true, created)
	}))
	defer server.Close()

	client := rest.NewClient(server.URL)
	order := domain.NewOrder(0.18)
	order.AddItem(domain.NewOrderItem(
		domain.Product{ID: 1, Name: "Crate", Price: 10, IsAvailable: true, StockQuantity: 5}, 2))

	created, err := client.CreateOrder(context.Background(), *order)
	require.NoError(t, err)

	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, "ORD-ABCD1234", created.OrderNumber)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.NotEmpty(t, gotKey, "expected an idempotency key on create")
	assert.Len(t, gotOrder.Items, 1)
}

func TestGetOrderNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusNotFound, "Order not found", false, nil)
	}))
	defer server.Close()

	client := rest.NewClient(server.URL)

	_, err := client.GetOrder(context.Background(), 99)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListOrdersWithStatusFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "PENDING", r.URL.Query().Get("status"))
		respond(w, http.StatusOK, "Orders retrieved successfully", true, []domain.Order{
			{ID: 1, OrderNumber: "ORD-AAAA0001", Status: domain.StatusPending},
		})
	}))
	defer server.Close()

	client := rest.NewClient(server.URL)
	status := domain.StatusPending

	orders, err := client.ListOrders(context.Background(), &status)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.StatusPending, orders[0].Status)
}

func TestServerErrorSurfacesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusConflict, "insufficient stock: available 3, requested 5", false, nil)
	}))
	defer server.Close()

	client := rest.NewClient(server.URL)

	_, err := client.CancelOrder(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient stock")
	assert.False(t, errors.Is(err, ports.ErrNotFound))
}

func TestNonEnvelopeErrorBodyKeepsStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	client := rest.NewClient(server.URL)

	_, err := client.GetOrder(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestNonEnvelopeNotFoundMapsToErrNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := rest.NewClient(server.URL)

	_, err := client.GetOrder(context.Background(), 1)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDeleteOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/v1/orders/3", r.URL.Path)
		respond(w, http.StatusOK, "Order deleted successfully", true, nil)
	}))
	defer server.Close()

	client := rest.NewClient(server.URL)
	require.NoError(t, client.DeleteOrder(context.Background(), 3))
}

func TestListProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/products", r.URL.Path)
		respond(w, http.StatusOK, "Products retrieved successfully", true, []domain.Product{
			{ID: 1, Name: "Crate", IsAvailable: true, StockQuantity: 4},
			{ID: 2, Name: "Pallet", IsAvailable: true, StockQuantity: 0},
		})
	}))
	defer server.Close()

	client := rest.NewClient(server.URL)

	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

// The client satisfies the checkout session's backend interfaces.
var (
	_ checkout.OrderClient    = (*rest.Client)(nil)
	_ checkout.ProductCatalog = (*rest.Client)(nil)
)
