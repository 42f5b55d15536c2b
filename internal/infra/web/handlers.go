package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"agency-payments/internal/domain"
	"agency-payments/internal/infra/logging"
	"agency-payments/internal/infra/metrics"
	"agency-payments/internal/infra/payment"
	"agency-payments/internal/usecase"
)

// checkoutRequest mirrors the JSON the storefront submits. Amount is the
// client-asserted charge and is re-validated server-side before use.
type checkoutRequest struct {
	PackageID     string `json:"packageId" validate:"required"`
	PackageName   string `json:"packageName"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	CustomerName  string `json:"customerName" validate:"required"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	CustomerPhone string `json:"customerPhone"`
	Provider      string `json:"provider" validate:"omitempty,oneof=midtrans xendit"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.With(ctx, s.log)

	var identity *usecase.Identity
	if s.requireAuth {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			metrics.IncCheckout("fail", "unauthorized")
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": "Authentication required. Please log in to make a purchase."})
			return
		}
		identity = &usecase.Identity{UserID: claims.Subject, Email: claims.Email}
	}

	var req checkoutRequest
	if !decodeAndValidate(w, r, &req) {
		metrics.IncCheckout("fail", "validation")
		return
	}

	order, session, err := s.checkoutUC.Initiate(ctx, identity, usecase.CheckoutRequest{
		PackageID:     req.PackageID,
		Amount:        req.Amount,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Provider:      req.Provider,
		ClientIP:      clientIP(r),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPackage):
			metrics.IncCheckout("fail", "invalid_package")
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Invalid package selected"})
		case errors.Is(err, domain.ErrAmountMismatch):
			metrics.IncCheckout("fail", "amount_mismatch")
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Amount does not match package price. Please refresh and try again."})
		case errors.Is(err, domain.ErrInvalidArgument):
			metrics.IncCheckout("fail", "validation")
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing or invalid required fields"})
		case errors.Is(err, domain.ErrGatewayFailure):
			metrics.IncCheckout("fail", "gateway")
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "Payment processing failed, please try again."})
		default:
			metrics.IncCheckout("fail", "storage")
			log.Error().Err(err).Msg("checkout failed")
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "Payment processing failed, please try again."})
		}
		return
	}

	metrics.IncCheckout("ok", "")
	metrics.IncOrderStatus("pending", order.Provider)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"orderId":     order.ID,
		"token":       session.TransactionID,
		"redirectUrl": session.RedirectURL,
	})
}

func (s *Server) handleMidtransWebhook(w http.ResponseWriter, r *http.Request) {
	const provider = "midtrans"
	start := time.Now()
	ctx := r.Context()
	log := logging.With(ctx, s.log)

	var n payment.MidtransNotification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		metrics.IncWebhook(provider, "fail", "bad_json")
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Invalid payload"})
		return
	}
	if n.OrderID == "" {
		metrics.IncWebhook(provider, "fail", "missing_order_id")
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing order ID"})
		return
	}
	// Incomplete payloads are rejected before any signature work; the
	// response does not say which field was missing.
	if !n.Complete() {
		metrics.IncWebhook(provider, "fail", "bad_json")
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Invalid payload"})
		return
	}

	if !payment.VerifyMidtransSignature(s.midtransServerKey, &n) {
		metrics.IncWebhook(provider, "fail", "bad_signature")
		log.Warn().Str("order_id", n.OrderID).Msg("webhook signature mismatch")
		writeJSON(w, http.StatusForbidden, map[string]interface{}{"error": "Invalid signature"})
		return
	}

	ctx = logging.WithOrderID(ctx, n.OrderID)
	log = logging.With(ctx, s.log)

	status := usecase.MapMidtransStatus(n.TransactionStatus, n.FraudStatus)
	outcome, err := s.reconcileUC.Reconcile(ctx, n.OrderID, status, n.PaymentType, n.OccurredAt())
	result := "ok"
	switch {
	case err == nil:
		metrics.IncWebhook(provider, "ok", "")
		if outcome.Applied {
			metrics.IncOrderStatus(string(status), provider)
		}
		if outcome.FirstPaid {
			metrics.AddOrderRevenue(provider, outcome.Order.Amount)
		}
	case errors.Is(err, domain.ErrNotFound):
		// Answer success anyway so the provider does not retry-storm an order
		// created by a different environment.
		result = "fail"
		metrics.IncWebhook(provider, "fail", "not_found")
		log.Warn().Str("order_id", n.OrderID).Msg("webhook for unknown order")
	default:
		metrics.IncWebhook(provider, "fail", "storage")
		log.Error().Err(err).Str("order_id", n.OrderID).Msg("webhook reconciliation failed")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "Failed to update order"})
		return
	}

	metrics.ObserveWebhookDuration(provider, result, time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleXenditWebhook(w http.ResponseWriter, r *http.Request) {
	const provider = "xendit"
	start := time.Now()
	ctx := r.Context()
	log := logging.With(ctx, s.log)

	if !payment.VerifyXenditCallbackToken(s.xenditCallbackToken, r.Header.Get("x-callback-token")) {
		metrics.IncWebhook(provider, "fail", "bad_token")
		writeJSON(w, http.StatusForbidden, map[string]interface{}{"error": "Invalid callback token"})
		return
	}

	var cb payment.XenditCallback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		metrics.IncWebhook(provider, "fail", "bad_json")
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Invalid payload"})
		return
	}
	if cb.ExternalID == "" {
		metrics.IncWebhook(provider, "fail", "missing_order_id")
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing order ID"})
		return
	}

	ctx = logging.WithOrderID(ctx, cb.ExternalID)
	log = logging.With(ctx, s.log)

	status := usecase.MapXenditStatus(cb.Status)
	outcome, err := s.reconcileUC.Reconcile(ctx, cb.ExternalID, status, cb.PaymentMethod, cb.PaidTime())
	result := "ok"
	switch {
	case err == nil:
		metrics.IncWebhook(provider, "ok", "")
		if outcome.Applied {
			metrics.IncOrderStatus(string(status), provider)
		}
		if outcome.FirstPaid {
			metrics.AddOrderRevenue(provider, outcome.Order.Amount)
		}
	case errors.Is(err, domain.ErrNotFound):
		result = "fail"
		metrics.IncWebhook(provider, "fail", "not_found")
		log.Warn().Str("order_id", cb.ExternalID).Msg("webhook for unknown order")
	default:
		metrics.IncWebhook(provider, "fail", "storage")
		log.Error().Err(err).Str("order_id", cb.ExternalID).Msg("webhook reconciliation failed")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "Failed to update order"})
		return
	}

	metrics.ObserveWebhookDuration(provider, result, time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type adminVerifyRequest struct {
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleAdminVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.With(ctx, s.log)

	var req adminVerifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.adminUC.VerifyPassword(ctx, clientIP(r), req.Password)
	switch {
	case err == nil:
		metrics.IncAdminLogin("ok")
		token, mintErr := s.auth.MintAdmin(w)
		if mintErr != nil {
			log.Error().Err(mintErr).Msg("failed to mint admin session")
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "Internal server error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "token": token})
	case errors.Is(err, domain.ErrRateLimited):
		metrics.IncAdminLogin("locked")
		metrics.IncAdminLockout()
		retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"success": false,
			"error":   fmt.Sprintf("Too many failed attempts. Please try again in %d seconds.", retryAfter),
		})
	case errors.Is(err, domain.ErrUnauthorized):
		metrics.IncAdminLogin("fail")
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success":           false,
			"error":             fmt.Sprintf("Incorrect password. %d attempts remaining.", result.AttemptsRemaining),
			"attemptsRemaining": result.AttemptsRemaining,
		})
	default:
		log.Error().Err(err).Msg("admin verification failed")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "Internal server error"})
	}
}
