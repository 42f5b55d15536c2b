package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"agency-payments/internal/usecase"
)

// Server wires the checkout, webhook and admin-auth endpoints.
type Server struct {
	checkoutUC  usecase.CheckoutUseCase
	reconcileUC usecase.ReconcileUseCase
	adminUC     usecase.AdminAuthUseCase
	auth        *AuthManager

	midtransServerKey   string
	xenditCallbackToken string
	requireAuth         bool

	log *zerolog.Logger
}

func NewServer(
	checkoutUC usecase.CheckoutUseCase,
	reconcileUC usecase.ReconcileUseCase,
	adminUC usecase.AdminAuthUseCase,
	auth *AuthManager,
	midtransServerKey string,
	xenditCallbackToken string,
	requireAuth bool,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		checkoutUC:          checkoutUC,
		reconcileUC:         reconcileUC,
		adminUC:             adminUC,
		auth:                auth,
		midtransServerKey:   midtransServerKey,
		xenditCallbackToken: xenditCallbackToken,
		requireAuth:         requireAuth,
		log:                 logger,
	}
}

// Router builds the chi router with the standard middleware chain.
func (s *Server) Router(requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID())
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))
	r.Use(Timeout(requestTimeout))

	r.Post("/api/v1/checkout", s.handleCheckout)
	r.Post("/api/v1/webhooks/midtrans", s.handleMidtransWebhook)
	r.Post("/api/v1/webhooks/xendit", s.handleXenditWebhook)
	r.Post("/api/v1/admin/verify-password", s.handleAdminVerify)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
