package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"agency-payments/internal/domain"
	"agency-payments/internal/domain/model"
	"agency-payments/internal/domain/ports/repository"
)

// Identity is the optional authenticated caller attached to a request.
type Identity struct {
	UserID string
	Email  string
}

// Compile-time check
var _ PricingUseCase = (*pricingUC)(nil)

// PricingUseCase validates a client-asserted charge against the catalog.
// The client-submitted number is never trusted past Validate: the returned
// amount is always the server-computed one.
type PricingUseCase interface {
	// Validate resolves the package and checks clientAmount against the
	// discounted catalog price within a ±1 unit rounding tolerance. On
	// success it returns the package and the amount to charge.
	Validate(ctx context.Context, packageID string, clientAmount int64, identity *Identity, clientIP string) (*model.PricingPackage, int64, error)
}

type pricingUC struct {
	packages repository.PackageRepository
	activity repository.ActivityLogRepository
	log      *zerolog.Logger
}

func NewPricingUseCase(packages repository.PackageRepository, activity repository.ActivityLogRepository, logger *zerolog.Logger) *pricingUC {
	return &pricingUC{packages: packages, activity: activity, log: logger}
}

// amountTolerance absorbs client-side rounding of discounted prices.
const amountTolerance = 1

// ExpectedPrice computes the discounted catalog price rounded to the nearest
// whole currency unit.
func ExpectedPrice(pkg *model.PricingPackage) int64 {
	price := decimal.NewFromInt(pkg.Price)
	if pkg.DiscountPercentage > 0 {
		factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(pkg.DiscountPercentage).Div(decimal.NewFromInt(100)))
		price = price.Mul(factor)
	}
	return price.Round(0).IntPart()
}

func (u *pricingUC) Validate(ctx context.Context, packageID string, clientAmount int64, identity *Identity, clientIP string) (*model.PricingPackage, int64, error) {
	pkg, err := u.packages.FindByID(ctx, nil, packageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrInvalidPackage
		}
		return nil, 0, err
	}

	expected := ExpectedPrice(pkg)
	diff := clientAmount - expected
	if diff < 0 {
		diff = -diff
	}
	if diff > amountTolerance {
		u.auditMismatch(ctx, pkg, expected, clientAmount, identity, clientIP)
		return nil, 0, domain.ErrAmountMismatch
	}

	return pkg, expected, nil
}

// auditMismatch records evidence of a tampered amount. A mismatch here is an
// attack signal, not user error: the client UI always submits the price it
// was shown.
func (u *pricingUC) auditMismatch(ctx context.Context, pkg *model.PricingPackage, expected, provided int64, identity *Identity, clientIP string) {
	entry := &model.ActivityLog{
		ID:          ulid.Make().String(),
		Action:      model.ActivityAmountMismatch,
		Description: "Price manipulation attempt detected for package " + pkg.Name,
		Metadata: map[string]interface{}{
			"package_id":      pkg.ID,
			"package_name":    pkg.Name,
			"expected_amount": expected,
			"provided_amount": provided,
		},
		CreatedAt: time.Now(),
	}
	if identity != nil {
		email := identity.Email
		entry.UserEmail = &email
		entry.Metadata["user_id"] = identity.UserID
	}
	if clientIP != "" {
		ip := clientIP
		entry.IPAddress = &ip
	}
	if err := u.activity.Insert(ctx, nil, entry); err != nil {
		u.log.Warn().Err(err).Str("action", entry.Action).Msg("activity log write failed")
	}
	u.log.Warn().
		Str("package_id", pkg.ID).
		Int64("expected", expected).
		Int64("provided", provided).
		Msg("price mismatch detected")
}
