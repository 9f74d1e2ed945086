package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopfront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_BearerAttachment(t *testing.T) {
	tests := []struct {
		name           string
		ctxToken       string
		cachedToken    string
		expectedHeader string
	}{
		{
			name:           "Context token wins",
			ctxToken:       "from-context",
			cachedToken:    "from-cache",
			expectedHeader: "Bearer from-context",
		},
		{
			name:           "Cache fallback",
			cachedToken:    "from-cache",
			expectedHeader: "Bearer from-cache",
		},
		{
			name:           "No token at all",
			expectedHeader: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seenHeader string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenHeader = r.Header.Get("Authorization")
				json.NewEncoder(w).Encode([]model.Product{})
			}))
			defer srv.Close()

			cache := &TokenCache{}
			if tt.cachedToken != "" {
				cache.Set(tt.cachedToken)
			}

			client := New(srv.URL, cache, zerolog.Nop())

			ctx := context.Background()
			if tt.ctxToken != "" {
				ctx = WithToken(ctx, tt.ctxToken)
			}

			_, err := client.Products(ctx)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedHeader, seenHeader)
		})
	}
}

func TestClient_Products(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		json.NewEncoder(w).Encode([]model.Product{
			{ID: 1, Name: "Keyboard", Price: decimal.NewFromFloat(49.99), Stock: 5},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, &TokenCache{}, zerolog.Nop())

	products, err := client.Products(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Keyboard", products[0].Name)
}

func TestClient_CreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req model.CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "1 Main St", req.Address)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.Order{ID: 100, Address: req.Address})
	}))
	defer srv.Close()

	client := New(srv.URL, &TokenCache{}, zerolog.Nop())

	order, err := client.CreateOrder(context.Background(), &model.CreateOrderRequest{
		Address: "1 Main St",
		Items:   []model.CreateOrderItemRequest{{ProductID: 1, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(100), order.ID)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:   model.ErrCodeInsufficientStock,
			Message: "Insufficient stock for product Keyboard",
		})
	}))
	defer srv.Close()

	client := New(srv.URL, &TokenCache{}, zerolog.Nop())

	order, err := client.CreateOrder(context.Background(), &model.CreateOrderRequest{
		Address: "1 Main St",
		Items:   []model.CreateOrderItemRequest{{ProductID: 1, Quantity: 99}},
	})

	require.Error(t, err)
	assert.Nil(t, order)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, model.ErrCodeInsufficientStock, apiErr.Code)
	assert.Contains(t, apiErr.Message, "Keyboard")
}

func TestTokenCache(t *testing.T) {
	cache := &TokenCache{}

	assert.Empty(t, cache.Get())

	cache.Set("token-1")
	assert.Equal(t, "token-1", cache.Get())

	cache.Set("token-2")
	assert.Equal(t, "token-2", cache.Get())
}
