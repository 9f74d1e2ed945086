package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopfront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]model.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p *model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, p *model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) IsReferenced(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func TestProductService_Create_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, logger)

	req := &model.ProductRequest{
		Name:  "Keyboard",
		Price: decimal.NewFromFloat(49.99),
		Stock: 10,
	}

	stored := &model.Product{
		ID:        1,
		Name:      "Keyboard",
		Price:     decimal.NewFromFloat(49.99),
		Stock:     10,
		CreatedAt: time.Now(),
	}

	mockRepo.On("Create", ctx, mock.AnythingOfType("*model.Product")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Product).ID = 1
		}).
		Return(nil)
	mockRepo.On("GetByID", ctx, int64(1)).Return(stored, nil)

	product, err := service.Create(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, int64(1), product.ID)

	mockRepo.AssertExpectations(t)
}

func TestProductService_Create_ValidationErrors(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, logger)

	tests := []struct {
		name string
		req  *model.ProductRequest
	}{
		{
			name: "Nil request",
			req:  nil,
		},
		{
			name: "Missing name",
			req:  &model.ProductRequest{Price: decimal.NewFromInt(1), Stock: 1},
		},
		{
			name: "Negative price",
			req:  &model.ProductRequest{Name: "X", Price: decimal.NewFromInt(-1), Stock: 1},
		},
		{
			name: "Negative stock",
			req:  &model.ProductRequest{Name: "X", Price: decimal.NewFromInt(1), Stock: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, err := service.Create(ctx, tt.req)

			require.Error(t, err)
			assert.Nil(t, product)

			var domainErr *model.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, model.ErrCodeMissingField, domainErr.Code)
		})
	}

	mockRepo.AssertNotCalled(t, "Create")
}

func TestProductService_Update_NotFound(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, logger)

	mockRepo.On("GetByID", ctx, int64(42)).Return(nil, nil)

	req := &model.ProductRequest{Name: "X", Price: decimal.NewFromInt(1), Stock: 1}
	product, err := service.Update(ctx, 42, req)

	require.NoError(t, err)
	assert.Nil(t, product)

	mockRepo.AssertNotCalled(t, "Update")
}

func TestProductService_Delete(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	existing := &model.Product{ID: 7, Name: "Keyboard", Price: decimal.NewFromInt(10)}

	tests := []struct {
		name        string
		product     *model.Product
		referenced  bool
		expectErr   error
		expectOK    bool
		deleteCalls bool
	}{
		{
			name:        "Success",
			product:     existing,
			referenced:  false,
			expectOK:    true,
			deleteCalls: true,
		},
		{
			name:     "Not found",
			product:  nil,
			expectOK: false,
		},
		{
			name:       "Referenced by orders",
			product:    existing,
			referenced: true,
			expectErr:  model.ErrProductReferenced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			service := NewProductService(mockRepo, logger)

			if tt.product == nil {
				mockRepo.On("GetByID", ctx, int64(7)).Return(nil, nil)
			} else {
				mockRepo.On("GetByID", ctx, int64(7)).Return(tt.product, nil)
				mockRepo.On("IsReferenced", ctx, int64(7)).Return(tt.referenced, nil)
			}
			if tt.deleteCalls {
				mockRepo.On("Delete", ctx, int64(7)).Return(nil)
			}

			ok, err := service.Delete(ctx, 7)

			if tt.expectErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.expectErr, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expectOK, ok)

			if !tt.deleteCalls {
				mockRepo.AssertNotCalled(t, "Delete")
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_GetAll_RepositoryError(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, logger)

	mockRepo.On("GetAll", ctx).Return(nil, errors.New("database error"))

	products, err := service.GetAll(ctx)

	require.Error(t, err)
	assert.Nil(t, products)
}
