package router

import (
	"net/http"

	"shopfront/internal/handler"
	"shopfront/internal/metrics"
	"shopfront/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	categoryHandler *handler.CategoryHandler,
	orderHandler *handler.OrderHandler,
	adminHandler *handler.AdminHandler,
	verifier middleware.TokenVerifier,
	serverMetrics *metrics.ServerMetrics,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.Handle("GET /metrics", metrics.Handler())

	// Public catalog routes
	mux.HandleFunc("GET /api/products", productHandler.GetAll)
	mux.HandleFunc("GET /api/products/{id}", productHandler.GetByID)
	mux.HandleFunc("GET /api/categories", categoryHandler.GetAll)
	mux.HandleFunc("GET /api/categories/{id}", categoryHandler.GetByID)

	// Order routes require a valid bearer token
	authed := middleware.BearerAuth(verifier, logger)
	mux.Handle("POST /api/orders", authed(http.HandlerFunc(orderHandler.Create)))
	mux.Handle("GET /api/orders", authed(http.HandlerFunc(orderHandler.GetAll)))
	mux.Handle("GET /api/orders/{id}", authed(http.HandlerFunc(orderHandler.GetByID)))

	// Management routes additionally require the admin realm role
	admin := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole("admin", logger)(h))
	}
	mux.Handle("GET /api/admin/products", admin(adminHandler.ListProducts))
	mux.Handle("POST /api/admin/products", admin(adminHandler.CreateProduct))
	mux.Handle("PUT /api/admin/products/{id}", admin(adminHandler.UpdateProduct))
	mux.Handle("DELETE /api/admin/products/{id}", admin(adminHandler.DeleteProduct))
	mux.Handle("GET /api/admin/categories", admin(adminHandler.ListCategories))
	mux.Handle("POST /api/admin/categories", admin(adminHandler.CreateCategory))
	mux.Handle("PUT /api/admin/categories/{id}", admin(adminHandler.UpdateCategory))
	mux.Handle("DELETE /api/admin/categories/{id}", admin(adminHandler.DeleteCategory))
	mux.Handle("GET /api/admin/orders", admin(adminHandler.ListOrders))
	mux.Handle("PUT /api/admin/orders/{id}/status", admin(adminHandler.UpdateOrderStatus))
	mux.Handle("POST /api/admin/orders/{id}/payment-link", admin(adminHandler.SetPaymentLink))

	// Apply middleware in order: Recovery -> Logging -> Instrument -> CORS
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Instrument(serverMetrics)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
