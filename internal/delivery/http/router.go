package http

import (
	"net/http"

	"go-rental-marketplace/internal/delivery/http/handler"
	"go-rental-marketplace/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router          *mux.Router
	authHandler     *handler.AuthHandler
	propertyHandler *handler.PropertyHandler
	bookingHandler  *handler.BookingHandler
	auditLogHandler *handler.AuditLogHandler
	authMiddleware  *middleware.AuthMiddleware
	corsMiddleware  *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	propertyHandler *handler.PropertyHandler,
	bookingHandler *handler.BookingHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:          mux.NewRouter(),
		authHandler:     authHandler,
		propertyHandler: propertyHandler,
		bookingHandler:  bookingHandler,
		auditLogHandler: auditLogHandler,
		authMiddleware:  authMiddleware,
		corsMiddleware:  corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/renter", r.authHandler.RegisterRenter).Methods(http.MethodPost)
	auth.HandleFunc("/register/owner", r.authHandler.RegisterOwner).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Property listing routes (public)
	api.HandleFunc("/properties", r.propertyHandler.ListProperties).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id}", r.propertyHandler.GetProperty).Methods(http.MethodGet)

	// Property management routes (protected - owner only)
	owner := api.PathPrefix("/owner").Subrouter()
	owner.Use(r.authMiddleware.Authenticate)
	owner.Use(middleware.RequireOwner)
	owner.HandleFunc("/properties", r.propertyHandler.CreateProperty).Methods(http.MethodPost)
	owner.HandleFunc("/properties", r.propertyHandler.ListMyProperties).Methods(http.MethodGet)
	owner.HandleFunc("/properties/{id}", r.propertyHandler.UpdateProperty).Methods(http.MethodPut)
	owner.HandleFunc("/properties/{id}", r.propertyHandler.DeleteProperty).Methods(http.MethodDelete)
	owner.HandleFunc("/properties/{id}/availability", r.propertyHandler.SetAvailability).Methods(http.MethodPatch)

	// Booking creation (protected - renter only)
	renter := api.PathPrefix("/bookings").Subrouter()
	renter.Use(r.authMiddleware.Authenticate)
	renter.Use(middleware.RequireRenter)
	renter.HandleFunc("", r.bookingHandler.CreateBooking).Methods(http.MethodPost)

	// Booking lifecycle routes (protected - both booking parties)
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(r.authMiddleware.Authenticate)
	bookings.HandleFunc("", r.bookingHandler.GetMyBookings).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}", r.bookingHandler.GetBooking).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}/status", r.bookingHandler.SetStatus).Methods(http.MethodPatch)
	bookings.HandleFunc("/{id}/payments", r.bookingHandler.AddPayment).Methods(http.MethodPost)
	bookings.HandleFunc("/{id}/messages", r.bookingHandler.AddMessage).Methods(http.MethodPost)
	bookings.HandleFunc("/{id}/messages/read", r.bookingHandler.MarkMessagesRead).Methods(http.MethodPatch)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetRecentAuditLogs).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
