package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"agency-payments/internal/domain"
	"agency-payments/internal/domain/model"
	"agency-payments/internal/domain/ports/adapter"
	"agency-payments/internal/domain/ports/repository"
)

// CheckoutRequest is the validated body of a transaction-initiation call.
// Amount is the client-asserted charge; it is re-derived server-side before
// anything is persisted or sent to the provider.
type CheckoutRequest struct {
	PackageID     string
	Amount        int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Provider      string
	ClientIP      string
}

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

type CheckoutUseCase interface {
	// Initiate validates the request, persists a pending order and creates a
	// provider transaction. The pending order is written before the gateway
	// call so a webhook always finds a row even if this response is lost.
	Initiate(ctx context.Context, identity *Identity, req CheckoutRequest) (*model.Order, *adapter.CheckoutSession, error)
}

type checkoutUC struct {
	orders         repository.OrderRepository
	pricing        PricingUseCase
	gateways       map[string]adapter.PaymentGateway
	defaultGateway string
	gatewayTimeout time.Duration
	log            *zerolog.Logger
}

func NewCheckoutUseCase(orders repository.OrderRepository, pricing PricingUseCase, gateways map[string]adapter.PaymentGateway, defaultGateway string, gatewayTimeout time.Duration, logger *zerolog.Logger) *checkoutUC {
	if gatewayTimeout <= 0 {
		gatewayTimeout = 15 * time.Second
	}
	return &checkoutUC{
		orders:         orders,
		pricing:        pricing,
		gateways:       gateways,
		defaultGateway: defaultGateway,
		gatewayTimeout: gatewayTimeout,
		log:            logger,
	}
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (u *checkoutUC) Initiate(ctx context.Context, identity *Identity, req CheckoutRequest) (*model.Order, *adapter.CheckoutSession, error) {
	if req.PackageID == "" || req.CustomerName == "" || req.CustomerEmail == "" || req.Amount <= 0 {
		return nil, nil, domain.ErrInvalidArgument
	}
	if !emailRe.MatchString(req.CustomerEmail) {
		return nil, nil, domain.ErrInvalidArgument
	}

	gw, ok := u.gateways[u.providerFor(req.Provider)]
	if !ok {
		return nil, nil, domain.ErrInvalidArgument
	}

	pkg, amount, err := u.pricing.Validate(ctx, req.PackageID, req.Amount, identity, req.ClientIP)
	if err != nil {
		// No order row exists yet; the rejection leaves no trace beyond the
		// audit entry the validator wrote.
		return nil, nil, err
	}

	now := time.Now()
	order := &model.Order{
		ID:            uuid.NewString(),
		PackageID:     &pkg.ID,
		PackageName:   pkg.Name,
		Amount:        amount,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Status:        model.OrderStatusPending,
		Provider:      gw.Name(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if identity != nil {
		uid := identity.UserID
		order.UserID = &uid
	}
	if p := strings.TrimSpace(req.CustomerPhone); p != "" {
		order.CustomerPhone = &p
	}

	if err := u.orders.Save(ctx, nil, order); err != nil {
		return nil, nil, err
	}

	gwCtx, cancel := context.WithTimeout(ctx, u.gatewayTimeout)
	defer cancel()
	session, err := gw.CreateTransaction(gwCtx, order)
	if err != nil {
		// Keep the order for audit; a timeout counts as gateway failure.
		if mErr := u.orders.MarkFailed(ctx, nil, order.ID); mErr != nil {
			u.log.Error().Err(mErr).Str("order_id", order.ID).Msg("failed to mark order failed")
		}
		order.Status = model.OrderStatusFailed
		u.log.Error().Err(err).Str("order_id", order.ID).Str("provider", gw.Name()).Msg("gateway transaction failed")
		return order, nil, domain.ErrGatewayFailure
	}

	if err := u.orders.SetCheckoutRef(ctx, nil, order.ID, session.TransactionID, session.RedirectURL); err != nil {
		u.log.Error().Err(err).Str("order_id", order.ID).Msg("failed to persist checkout ref")
		return nil, nil, err
	}
	order.ProviderTransactionID = &session.TransactionID
	order.ProviderCheckoutURL = &session.RedirectURL

	u.log.Info().
		Str("order_id", order.ID).
		Str("provider", gw.Name()).
		Int64("amount", order.Amount).
		Msg("checkout initiated")
	return order, session, nil
}

func (u *checkoutUC) providerFor(requested string) string {
	if requested == "" {
		return u.defaultGateway
	}
	return strings.ToLower(requested)
}
