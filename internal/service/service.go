package service

import (
	"context"

	"shopfront/internal/model"
)

// ProductService defines operations for product management.
type ProductService interface {
	// GetAll retrieves all products with their category joined.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by ID. Returns nil when missing.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Create creates a new product.
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// Update rewrites an existing product. Returns nil when missing.
	Update(ctx context.Context, id int64, req *model.ProductRequest) (*model.Product, error)

	// Delete removes a product. Deletion is blocked while any order item
	// references the product. Returns false when the product is missing.
	Delete(ctx context.Context, id int64) (bool, error)
}

// CategoryService defines operations for category management.
type CategoryService interface {
	// GetAll retrieves all categories.
	GetAll(ctx context.Context) ([]model.Category, error)

	// GetAllWithProducts retrieves all categories with their products.
	GetAllWithProducts(ctx context.Context) ([]model.Category, error)

	// GetByID retrieves a category by ID. Returns nil when missing.
	GetByID(ctx context.Context, id int64) (*model.Category, error)

	// Create creates a new category.
	Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error)

	// Update rewrites an existing category. Returns nil when missing.
	Update(ctx context.Context, id int64, req *model.CategoryRequest) (*model.Category, error)

	// Delete removes a category. Deletion is blocked while any product
	// references the category. Returns false when the category is missing.
	Delete(ctx context.Context, id int64) (bool, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// Create places an order for the principal.
	Create(ctx context.Context, principal *model.Principal, req *model.CreateOrderRequest) (*model.Order, error)

	// GetForUser retrieves an order only if it belongs to the user.
	// Returns nil otherwise.
	GetForUser(ctx context.Context, userID string, id int64) (*model.Order, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// ListAll retrieves every order, newest first.
	ListAll(ctx context.Context) ([]model.Order, error)

	// UpdateStatus sets an order's status from its enum name. Returns nil
	// when the order is missing.
	UpdateStatus(ctx context.Context, id int64, status string) (*model.Order, error)

	// SetPaymentLink attaches a payment link to an order. Returns nil
	// when the order is missing.
	SetPaymentLink(ctx context.Context, id int64, link string) (*model.Order, error)
}
