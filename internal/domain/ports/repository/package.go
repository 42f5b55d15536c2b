package repository

import (
	"context"

	"agency-payments/internal/domain/model"
)

// PackageRepository is the read-only catalog lookup. Ownership of the catalog
// (CRUD) lives with the admin console, outside this service.
type PackageRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.PricingPackage, error)
}
