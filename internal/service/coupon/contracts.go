package coupon

import (
	"context"
	"time"

	"service-parcel-tracking/internal/domain"
)

// Store is the minimal coupon storage needed to validate and redeem a code.
// It is satisfied by the coupon repository and by parcel transactions.
type Store interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	Redeem(ctx context.Context, code string, now time.Time) (bool, error)
}

// couponRepository defines storage operations required by the coupon service.
type couponRepository interface {
	Store
	Create(ctx context.Context, c *domain.Coupon) error
	List(ctx context.Context, limit, offset *int) ([]domain.Coupon, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}
