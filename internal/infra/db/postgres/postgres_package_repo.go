package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"agency-payments/internal/domain"
	"agency-payments/internal/domain/model"
	"agency-payments/internal/domain/ports/repository"
)

var _ repository.PackageRepository = (*packageRepo)(nil)

// packageRepo reads the pricing_packages catalog owned by the admin console.
type packageRepo struct{ pool *pgxpool.Pool }

func NewPackageRepo(pool *pgxpool.Pool) *packageRepo {
	return &packageRepo{pool: pool}
}

func (r *packageRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PricingPackage, error) {
	const q = `SELECT id, name, price, discount_percentage, active, updated_at FROM pricing_packages WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	p := &model.PricingPackage{}
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.DiscountPercentage, &p.Active, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if !p.Active {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
