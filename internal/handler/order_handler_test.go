package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopfront/internal/middleware"
	"shopfront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, principal *model.Principal, req *model.CreateOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetForUser(ctx context.Context, userID string, id int64) (*model.Order, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id int64, status string) (*model.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) SetPaymentLink(ctx context.Context, id int64, link string) (*model.Order, error) {
	args := m.Called(ctx, id, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func authedRequest(method, path string, body []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	principal := &model.Principal{Subject: "user-1", Name: "Test User", Roles: []string{"user"}}
	return req.WithContext(middleware.WithPrincipal(req.Context(), principal))
}

func TestOrderHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	validBody, err := json.Marshal(model.CreateOrderRequest{
		Address: "1 Main St",
		Items: []model.CreateOrderItemRequest{
			{ProductID: 1, Quantity: 2},
		},
	})
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		created := &model.Order{
			ID:          100,
			UserID:      "user-1",
			Status:      model.StatusPending,
			TotalAmount: decimal.NewFromFloat(99.98),
		}
		mockService.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(created, nil)

		w := httptest.NewRecorder()
		handler.Create(w, authedRequest(http.MethodPost, "/api/orders", validBody))

		assert.Equal(t, http.StatusCreated, w.Code)

		var order model.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&order))
		assert.Equal(t, int64(100), order.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("Missing principal", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(validBody))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "Create")
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		w := httptest.NewRecorder()
		handler.Create(w, authedRequest(http.MethodPost, "/api/orders", []byte("{not json")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), model.ErrCodeInvalidJSON)
		mockService.AssertNotCalled(t, "Create")
	})

	t.Run("Insufficient stock maps to 400", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		mockService.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &model.DomainError{
				Code:    model.ErrCodeInsufficientStock,
				Message: "insufficient stock for product Keyboard",
			})

		w := httptest.NewRecorder()
		handler.Create(w, authedRequest(http.MethodPost, "/api/orders", validBody))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), model.ErrCodeInsufficientStock)
		mockService.AssertExpectations(t)
	})
}

func TestOrderHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Owned order", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		order := &model.Order{ID: 100, UserID: "user-1", Status: model.StatusPending}
		mockService.On("GetForUser", mock.Anything, "user-1", int64(100)).
			Return(order, nil)

		req := authedRequest(http.MethodGet, "/api/orders/100", nil)
		req.SetPathValue("id", "100")
		w := httptest.NewRecorder()

		handler.GetByID(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Missing or foreign order reads as 404", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		mockService.On("GetForUser", mock.Anything, "user-1", int64(100)).
			Return(nil, nil)

		req := authedRequest(http.MethodGet, "/api/orders/100", nil)
		req.SetPathValue("id", "100")
		w := httptest.NewRecorder()

		handler.GetByID(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Non-numeric ID", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		req := authedRequest(http.MethodGet, "/api/orders/abc", nil)
		req.SetPathValue("id", "abc")
		w := httptest.NewRecorder()

		handler.GetByID(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "GetForUser")
	})
}

func TestOrderHandler_GetAll(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Lists the caller's orders", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		orders := []model.Order{
			{ID: 100, UserID: "user-1", Status: model.StatusPending},
			{ID: 101, UserID: "user-1", Status: model.StatusShipped},
		}
		mockService.On("ListByUser", mock.Anything, "user-1").Return(orders, nil)

		w := httptest.NewRecorder()
		handler.GetAll(w, authedRequest(http.MethodGet, "/api/orders", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var got []model.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Len(t, got, 2)
		mockService.AssertExpectations(t)
	})

	t.Run("Missing principal", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		w := httptest.NewRecorder()

		handler.GetAll(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "ListByUser")
	})
}
