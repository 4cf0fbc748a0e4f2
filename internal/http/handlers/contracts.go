package handlers

import (
	"context"

	"github.com/google/uuid"

	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/service/coupon"
	"service-parcel-tracking/internal/service/parcel"
)

type parcelUsecase interface {
	Create(ctx context.Context, actor domain.Actor, in parcel.CreateInput) (*domain.Parcel, error)
	CreateForSender(ctx context.Context, actor domain.Actor, senderEmail string, in parcel.CreateInput) (*domain.Parcel, error)
	Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, note *string) (*domain.Parcel, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
	ConfirmDelivery(ctx context.Context, actor domain.Actor, id uuid.UUID, note *string) (*domain.Parcel, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, upd parcel.StatusUpdate) (*domain.Parcel, error)
	SetBlocked(ctx context.Context, actor domain.Actor, id uuid.UUID, in parcel.BlockInput) (*domain.Parcel, error)

	Details(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Parcel, error)
	StatusLog(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.LogView, error)
	ListOwn(ctx context.Context, actor domain.Actor, page parcel.Page) ([]domain.Parcel, error)
	Incoming(ctx context.Context, actor domain.Actor, page parcel.Page) ([]domain.Parcel, error)
	History(ctx context.Context, actor domain.Actor, page parcel.Page) ([]domain.Parcel, error)
	ListAll(ctx context.Context, actor domain.Actor, status *domain.ParcelStatus, page parcel.Page) ([]domain.Parcel, error)
	Stats(ctx context.Context, actor domain.Actor) (domain.ParcelStats, error)
	Track(ctx context.Context, trackingID string) (domain.TrackingView, error)
}

// NewParcelUsecase wires the parcel engine into a parcelUsecase.
func NewParcelUsecase(svc *parcel.Service) parcelUsecase {
	return svc
}

type couponUsecase interface {
	Create(ctx context.Context, actor domain.Actor, in coupon.CreateInput) (*domain.Coupon, error)
	List(ctx context.Context, actor domain.Actor, limit, offset *int) ([]domain.Coupon, error)
	Validate(ctx context.Context, code string) (domain.CouponValidation, error)
}

// NewCouponUsecase wires a coupon Service into a couponUsecase.
func NewCouponUsecase(svc *coupon.Service) couponUsecase {
	return svc
}
