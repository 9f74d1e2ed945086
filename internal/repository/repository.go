package repository

import (
	"context"

	"shopfront/internal/model"

	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with their category joined.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by its ID, category joined.
	// Returns nil when the product does not exist.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByIDs retrieves multiple products keyed by ID.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)

	// Create inserts a new product and fills in its generated ID.
	Create(ctx context.Context, p *model.Product) error

	// Update rewrites all mutable product fields.
	Update(ctx context.Context, p *model.Product) error

	// Delete removes a product.
	Delete(ctx context.Context, id int64) error

	// IsReferenced reports whether any order item references the product.
	IsReferenced(ctx context.Context, id int64) (bool, error)
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	// GetAll retrieves all categories ordered by name.
	GetAll(ctx context.Context) ([]model.Category, error)

	// GetAllWithProducts retrieves all categories with their products.
	GetAllWithProducts(ctx context.Context) ([]model.Category, error)

	// GetByID retrieves a category by ID. Returns nil when it does not exist.
	GetByID(ctx context.Context, id int64) (*model.Category, error)

	// Create inserts a new category and fills in its generated ID.
	Create(ctx context.Context, c *model.Category) error

	// Update rewrites the category's name and description.
	Update(ctx context.Context, c *model.Category) error

	// Delete removes a category.
	Delete(ctx context.Context, id int64) error

	// HasProducts reports whether any product references the category.
	HasProducts(ctx context.Context, id int64) (bool, error)
}

// OrderRepository defines the interface for order data access operations.
// Order placement runs inside a caller-provided transaction so the order,
// its items and the stock decrements persist atomically.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction and
	// fills in its generated ID.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// UpdateProductStock sets a product's stock within the provided transaction.
	UpdateProductStock(ctx context.Context, tx pgx.Tx, productID int64, stock int) error

	// GetByID retrieves an order with its items and item products.
	// Returns nil when the order does not exist.
	GetByID(ctx context.Context, id int64) (*model.Order, error)

	// GetByUser retrieves all orders owned by a user, newest first.
	GetByUser(ctx context.Context, userID string) ([]model.Order, error)

	// GetAll retrieves all orders, newest first.
	GetAll(ctx context.Context) ([]model.Order, error)

	// UpdateStatus sets an order's status. Returns false when the order
	// does not exist.
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (bool, error)

	// SetPaymentLink attaches a payment link to an order. Returns false
	// when the order does not exist.
	SetPaymentLink(ctx context.Context, id int64, link string) (bool, error)
}
