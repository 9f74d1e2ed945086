package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeInvalidID           = "INVALID_ID"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeCategoryNotFound    = "CATEGORY_NOT_FOUND"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeCategoryHasProducts = "CATEGORY_HAS_PRODUCTS"
	ErrCodeProductReferenced   = "PRODUCT_REFERENCED"
	ErrCodeInvalidStatus       = "INVALID_STATUS"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError carries a stable code alongside a human-readable message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrInsufficientStock   = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock for one or more products")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrCategoryHasProducts = NewDomainError(ErrCodeCategoryHasProducts, "Cannot delete a category that has products")
	ErrProductReferenced   = NewDomainError(ErrCodeProductReferenced, "Cannot delete a product referenced by orders")
	ErrInvalidStatus       = NewDomainError(ErrCodeInvalidStatus, "Invalid order status")
	ErrCategoryNotFound    = NewDomainError(ErrCodeCategoryNotFound, "Category not found")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
)
