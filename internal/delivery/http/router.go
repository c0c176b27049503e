package http

import (
	"net/http"

	"go-services-marketplace/internal/delivery/http/handler"
	"go-services-marketplace/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	bookingHandler      *handler.BookingHandler
	serviceHandler      *handler.ServiceHandler
	reviewHandler       *handler.ReviewHandler
	notificationHandler *handler.NotificationHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	bookingHandler *handler.BookingHandler,
	serviceHandler *handler.ServiceHandler,
	reviewHandler *handler.ReviewHandler,
	notificationHandler *handler.NotificationHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		bookingHandler:      bookingHandler,
		serviceHandler:      serviceHandler,
		reviewHandler:       reviewHandler,
		notificationHandler: notificationHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/customer", r.authHandler.RegisterCustomer).Methods(http.MethodPost)
	auth.HandleFunc("/register/provider", r.authHandler.RegisterProvider).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Service catalog (public)
	api.HandleFunc("/services", r.serviceHandler.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/services/{id}", r.serviceHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/services/{id}/reviews", r.reviewHandler.GetByService).Methods(http.MethodGet)

	// Booking routes (protected - both parties plus admin, access checked per booking)
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(r.authMiddleware.Authenticate)
	bookings.HandleFunc("/{id}", r.bookingHandler.Get).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}/status", r.bookingHandler.UpdateStatus).Methods(http.MethodPatch)
	bookings.HandleFunc("/{id}", r.bookingHandler.Delete).Methods(http.MethodDelete)

	// Customer routes
	customer := api.PathPrefix("").Subrouter()
	customer.Use(r.authMiddleware.Authenticate)
	customer.Use(middleware.RequireCustomer)
	customer.HandleFunc("/bookings", r.bookingHandler.Create).Methods(http.MethodPost)
	customer.HandleFunc("/bookings", r.bookingHandler.GetMine).Methods(http.MethodGet)
	customer.HandleFunc("/reviews", r.reviewHandler.Create).Methods(http.MethodPost)

	// Provider routes
	provider := api.PathPrefix("/provider").Subrouter()
	provider.Use(r.authMiddleware.Authenticate)
	provider.Use(middleware.RequireProvider)
	provider.HandleFunc("/services", r.serviceHandler.Create).Methods(http.MethodPost)
	provider.HandleFunc("/services", r.serviceHandler.GetMine).Methods(http.MethodGet)
	provider.HandleFunc("/services/{id}", r.serviceHandler.Update).Methods(http.MethodPut)
	provider.HandleFunc("/services/{id}", r.serviceHandler.Delete).Methods(http.MethodDelete)
	provider.HandleFunc("/bookings", r.bookingHandler.GetProviderBookings).Methods(http.MethodGet)
	provider.HandleFunc("/notifications", r.notificationHandler.GetMine).Methods(http.MethodGet)
	provider.HandleFunc("/notifications/{id}/read", r.notificationHandler.MarkRead).Methods(http.MethodPatch)

	// Completion requires the provider role and an evidence upload
	providerBookings := api.PathPrefix("/bookings").Subrouter()
	providerBookings.Use(r.authMiddleware.Authenticate)
	providerBookings.Use(middleware.RequireProvider)
	providerBookings.HandleFunc("/{id}/complete", r.bookingHandler.Complete).Methods(http.MethodPost)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAll).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.Get).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
