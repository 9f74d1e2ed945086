package service

import (
	"context"
	"fmt"
	"time"

	"shopfront/internal/model"
	"shopfront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Create places an order. All referenced products must exist and every
// line's quantity must fit the remaining stock, otherwise the whole
// request fails with nothing persisted. Unit prices are captured from the
// products at this moment; the order, its items and the stock decrements
// are committed in a single transaction.
//
// Stock is read before the transaction without row locks, so two
// concurrent orders against the same product can both pass the check and
// jointly overdraw it.
func (s *orderService) Create(ctx context.Context, principal *model.Principal, req *model.CreateOrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	productIDs := make([]int64, 0, len(req.Items))
	seen := make(map[int64]bool, len(req.Items))
	for _, item := range req.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			productIDs = append(productIDs, item.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load products for order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if len(products) != len(productIDs) {
		s.logger.Warn().
			Int("requested", len(productIDs)).
			Int("found", len(products)).
			Msg("order references unknown products")
		return nil, model.ErrProductNotFound
	}

	// Check stock per line and accumulate the total. Remaining tracks the
	// running stock so duplicate lines for the same product add up.
	total := decimal.Zero
	remaining := make(map[int64]int, len(products))
	for id, p := range products {
		remaining[id] = p.Stock
	}

	items := make([]model.OrderItem, len(req.Items))
	for i, line := range req.Items {
		product := products[line.ProductID]
		if line.Quantity > remaining[line.ProductID] {
			s.logger.Warn().
				Int64("product_id", line.ProductID).
				Int("requested", line.Quantity).
				Int("available", remaining[line.ProductID]).
				Msg("insufficient stock for order line")
			return nil, model.NewDomainError(model.ErrCodeInsufficientStock,
				fmt.Sprintf("Insufficient stock for product %s", product.Name))
		}

		remaining[line.ProductID] -= line.Quantity
		unitPrice := product.Price
		total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))

		items[i] = model.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: unitPrice,
		}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order := &model.Order{
		UserID:      principal.Subject,
		UserName:    principal.Name,
		OrderDate:   time.Now().UTC(),
		Status:      model.StatusPending,
		TotalAmount: total,
		Address:     req.Address,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Int64("order_id", order.ID).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	for _, id := range productIDs {
		if err = s.orderRepo.UpdateProductStock(ctx, tx, id, remaining[id]); err != nil {
			s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update stock")
			return nil, fmt.Errorf("failed to update stock: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("user_id", order.UserID).
		Str("total_amount", total.String()).
		Int("item_count", len(items)).
		Msg("order created successfully")

	return s.orderRepo.GetByID(ctx, order.ID)
}

// GetForUser retrieves an order only if it belongs to the user. An order
// owned by somebody else is reported as missing, not forbidden.
func (s *orderService) GetForUser(ctx context.Context, userID string, id int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, nil
	}
	return order, nil
}

// ListByUser retrieves a user's orders, newest first.
func (s *orderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := s.orderRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListAll retrieves every order, newest first.
func (s *orderService) ListAll(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets an order's status from its enum name.
func (s *orderService) UpdateStatus(ctx context.Context, id int64, status string) (*model.Order, error) {
	parsed, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, id, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !updated {
		return nil, nil
	}

	s.logger.Info().Int64("order_id", id).Str("status", string(parsed)).Msg("order status updated")
	return s.orderRepo.GetByID(ctx, id)
}

// SetPaymentLink attaches a payment link to an order.
func (s *orderService) SetPaymentLink(ctx context.Context, id int64, link string) (*model.Order, error) {
	if link == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "payment link is required")
	}

	updated, err := s.orderRepo.SetPaymentLink(ctx, id, link)
	if err != nil {
		return nil, fmt.Errorf("failed to set payment link: %w", err)
	}
	if !updated {
		return nil, nil
	}

	s.logger.Info().Int64("order_id", id).Msg("payment link set")
	return s.orderRepo.GetByID(ctx, id)
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.CreateOrderRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeMissingField, "order request is required")
	}

	if len(req.Items) == 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "order must contain at least one item")
	}

	if req.Address == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "delivery address is required")
	}

	for i, item := range req.Items {
		if item.ProductID <= 0 {
			return model.NewDomainError(model.ErrCodeMissingField,
				fmt.Sprintf("item %d: product ID is required", i))
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Int64("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}
