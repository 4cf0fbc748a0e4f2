//go:generate mockgen -source=contracts.go -destination=parcel_mocks_test.go -package=parcel_test

package parcel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/ports/parceltx"
)

// Repository is parcel storage: a transaction runner plus read paths.
type Repository interface {
	parceltx.Runner
	Get(ctx context.Context, id uuid.UUID) (*domain.Parcel, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*domain.Parcel, error)
	List(ctx context.Context, f domain.ParcelFilter) ([]domain.Parcel, error)
	Stats(ctx context.Context) (domain.ParcelStats, error)
}

// UserDirectory resolves accounts owned by the user service. Missing users are (nil, nil).
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// FeeCalculator prices a parcel.
type FeeCalculator interface {
	Fee(weightKg float64, category domain.ParcelCategory, tier domain.ShippingTier) (decimal.Decimal, error)
}

// Estimator promises a delivery time.
type Estimator interface {
	EstimatedDelivery(tier domain.ShippingTier, now time.Time) (time.Time, error)
}

// TrackingCache stores public tracking views. Get returns (nil, nil) on a miss.
type TrackingCache interface {
	Get(ctx context.Context, trackingID string) (*domain.TrackingView, error)
	Set(ctx context.Context, view domain.TrackingView) error
	Invalidate(ctx context.Context, trackingID string) error
}

// EventPublisher announces committed status changes.
type EventPublisher interface {
	PublishStatus(ctx context.Context, e domain.StatusEvent) error
}

// Metrics counts workflow outcomes.
type Metrics interface {
	ParcelCreated()
	StatusChanged(from, to domain.ParcelStatus)
	CouponRedeemed()
}
