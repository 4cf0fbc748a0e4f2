package parceltx

import (
	"context"
	"time"

	"github.com/google/uuid"

	"service-parcel-tracking/internal/domain"
)

// Repository is the set of parcel and coupon writes available inside one transaction.
type Repository interface {
	// GetForUpdate locks the parcel row. It returns (nil, nil) when the parcel is absent.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Parcel, error)
	TrackingIDExists(ctx context.Context, trackingID string) (bool, error)
	Insert(ctx context.Context, p *domain.Parcel) error
	Update(ctx context.Context, p *domain.Parcel) error
	AppendStatusLog(ctx context.Context, parcelID uuid.UUID, e domain.StatusLogEntry) error
	AddPersonnel(ctx context.Context, parcelID, personnelID uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error)
	// RedeemCoupon increments used_count only while the coupon is active, unexpired and below its limit.
	RedeemCoupon(ctx context.Context, code string, now time.Time) (bool, error)
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
