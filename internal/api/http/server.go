package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"toolshed-backend/internal/config"
	"toolshed-backend/internal/security"
	"toolshed-backend/internal/service"
)

// Services bundles the business services exposed over HTTP.
type Services struct {
	Auth        service.AuthService
	Category    service.CategoryService
	Tool        service.ToolService
	User        service.UserService
	Rental      service.RentalService
	Transaction service.TransactionService
	Dashboard   service.DashboardService
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	services Services
	tokens   security.TokenManager
	limiter  *ipRateLimiter
	pinger   Pinger
}

// NewServer builds the REST API. A disabled rate limit config skips limiting
// and a nil pinger makes /healthz always report ok.
func NewServer(services Services, tokens security.TokenManager, rateLimit config.RateLimitConfig, pinger Pinger) *Server {
	s := &Server{
		services: services,
		tokens:   tokens,
		pinger:   pinger,
	}
	if rateLimit.Enabled {
		s.limiter = newIPRateLimiter(rateLimit)
	}
	return s
}

// Routes returns the root handler with every middleware applied.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFoundResponse)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedResponse)

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.authenticate)

	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", s.refresh).Methods(http.MethodPost)

	api.HandleFunc("/me", s.me).Methods(http.MethodGet)
	api.HandleFunc("/me/rentals", s.myRentals).Methods(http.MethodGet)
	api.HandleFunc("/me/transactions", s.myTransactions).Methods(http.MethodGet)

	api.HandleFunc("/categories", s.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.createCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", s.getCategory).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}", s.updateCategory).Methods(http.MethodPut)

	api.HandleFunc("/tools", s.listTools).Methods(http.MethodGet)
	api.HandleFunc("/tools", s.createTool).Methods(http.MethodPost)
	api.HandleFunc("/tools/maintenance-due", s.listMaintenanceDue).Methods(http.MethodGet)
	api.HandleFunc("/tools/{id}", s.getTool).Methods(http.MethodGet)
	api.HandleFunc("/tools/{id}", s.updateTool).Methods(http.MethodPut)
	api.HandleFunc("/tools/{id}/quote", s.quoteRental).Methods(http.MethodGet)
	api.HandleFunc("/tools/{id}/status", s.setToolStatus).Methods(http.MethodPut)
	api.HandleFunc("/tools/{id}/maintenance", s.recordMaintenance).Methods(http.MethodPost)

	api.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users", s.createUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", s.getUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", s.updateUser).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}/status", s.setUserStatus).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}/renew", s.renewMembership).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/debt", s.userDebt).Methods(http.MethodGet)
	api.HandleFunc("/memberships/expiring", s.expiringMemberships).Methods(http.MethodGet)
	api.HandleFunc("/memberships/expired", s.expiredMemberships).Methods(http.MethodGet)

	api.HandleFunc("/rentals", s.listRentals).Methods(http.MethodGet)
	api.HandleFunc("/rentals", s.createRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals/late", s.listLateRentals).Methods(http.MethodGet)
	api.HandleFunc("/rentals/reconcile-late", s.reconcileLateRentals).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}", s.getRental).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}/activate", s.activateRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/reject", s.rejectRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/return", s.returnRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/mark-late", s.markLate).Methods(http.MethodPost)

	api.HandleFunc("/transactions", s.listTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.createTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.getTransaction).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", s.deleteTransaction).Methods(http.MethodDelete)
	api.HandleFunc("/transactions/{id}/pay", s.payTransaction).Methods(http.MethodPost)

	api.HandleFunc("/dashboard", s.dashboard).Methods(http.MethodGet)

	return s.recoverPanic(s.requestLogger(s.rateLimit(r)))
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.PingContext(ctx); err != nil {
			logError(r, err)
			errorResponse(w, r, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if err := writeJSON(w, http.StatusOK, envelope{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
