package handlers_test

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/http/middleware"
	"service-parcel-tracking/internal/service/coupon"
	"service-parcel-tracking/internal/service/parcel"
)

type stubParcels struct {
	createFn          func(ctx context.Context, a domain.Actor, in parcel.CreateInput) (*domain.Parcel, error)
	createForSenderFn func(ctx context.Context, a domain.Actor, email string, in parcel.CreateInput) (*domain.Parcel, error)
	cancelFn          func(ctx context.Context, a domain.Actor, id uuid.UUID, note *string) (*domain.Parcel, error)
	deleteFn          func(ctx context.Context, a domain.Actor, id uuid.UUID) error
	confirmFn         func(ctx context.Context, a domain.Actor, id uuid.UUID, note *string) (*domain.Parcel, error)
	updateStatusFn    func(ctx context.Context, a domain.Actor, id uuid.UUID, upd parcel.StatusUpdate) (*domain.Parcel, error)
	setBlockedFn      func(ctx context.Context, a domain.Actor, id uuid.UUID, in parcel.BlockInput) (*domain.Parcel, error)
	detailsFn         func(ctx context.Context, a domain.Actor, id uuid.UUID) (*domain.Parcel, error)
	statusLogFn       func(ctx context.Context, a domain.Actor, id uuid.UUID) ([]domain.LogView, error)
	listFn            func(ctx context.Context, a domain.Actor, page parcel.Page) ([]domain.Parcel, error)
	listAllFn         func(ctx context.Context, a domain.Actor, st *domain.ParcelStatus, page parcel.Page) ([]domain.Parcel, error)
	statsFn           func(ctx context.Context, a domain.Actor) (domain.ParcelStats, error)
	trackFn           func(ctx context.Context, trackingID string) (domain.TrackingView, error)
}

func (s *stubParcels) Create(ctx context.Context, a domain.Actor, in parcel.CreateInput) (*domain.Parcel, error) {
	return s.createFn(ctx, a, in)
}

func (s *stubParcels) CreateForSender(ctx context.Context, a domain.Actor, email string, in parcel.CreateInput) (*domain.Parcel, error) {
	return s.createForSenderFn(ctx, a, email, in)
}

func (s *stubParcels) Cancel(ctx context.Context, a domain.Actor, id uuid.UUID, note *string) (*domain.Parcel, error) {
	return s.cancelFn(ctx, a, id, note)
}

func (s *stubParcels) Delete(ctx context.Context, a domain.Actor, id uuid.UUID) error {
	return s.deleteFn(ctx, a, id)
}

func (s *stubParcels) ConfirmDelivery(ctx context.Context, a domain.Actor, id uuid.UUID, note *string) (*domain.Parcel, error) {
	return s.confirmFn(ctx, a, id, note)
}

func (s *stubParcels) UpdateStatus(ctx context.Context, a domain.Actor, id uuid.UUID, upd parcel.StatusUpdate) (*domain.Parcel, error) {
	return s.updateStatusFn(ctx, a, id, upd)
}

func (s *stubParcels) SetBlocked(ctx context.Context, a domain.Actor, id uuid.UUID, in parcel.BlockInput) (*domain.Parcel, error) {
	return s.setBlockedFn(ctx, a, id, in)
}

func (s *stubParcels) Details(ctx context.Context, a domain.Actor, id uuid.UUID) (*domain.Parcel, error) {
	return s.detailsFn(ctx, a, id)
}

func (s *stubParcels) StatusLog(ctx context.Context, a domain.Actor, id uuid.UUID) ([]domain.LogView, error) {
	return s.statusLogFn(ctx, a, id)
}

func (s *stubParcels) ListOwn(ctx context.Context, a domain.Actor, page parcel.Page) ([]domain.Parcel, error) {
	return s.listFn(ctx, a, page)
}

func (s *stubParcels) Incoming(ctx context.Context, a domain.Actor, page parcel.Page) ([]domain.Parcel, error) {
	return s.listFn(ctx, a, page)
}

func (s *stubParcels) History(ctx context.Context, a domain.Actor, page parcel.Page) ([]domain.Parcel, error) {
	return s.listFn(ctx, a, page)
}

func (s *stubParcels) ListAll(ctx context.Context, a domain.Actor, st *domain.ParcelStatus, page parcel.Page) ([]domain.Parcel, error) {
	return s.listAllFn(ctx, a, st, page)
}

func (s *stubParcels) Stats(ctx context.Context, a domain.Actor) (domain.ParcelStats, error) {
	return s.statsFn(ctx, a)
}

func (s *stubParcels) Track(ctx context.Context, trackingID string) (domain.TrackingView, error) {
	return s.trackFn(ctx, trackingID)
}

type stubCoupons struct {
	createFn   func(ctx context.Context, a domain.Actor, in coupon.CreateInput) (*domain.Coupon, error)
	listFn     func(ctx context.Context, a domain.Actor, limit, offset *int) ([]domain.Coupon, error)
	validateFn func(ctx context.Context, code string) (domain.CouponValidation, error)
}

func (s *stubCoupons) Create(ctx context.Context, a domain.Actor, in coupon.CreateInput) (*domain.Coupon, error) {
	return s.createFn(ctx, a, in)
}

func (s *stubCoupons) List(ctx context.Context, a domain.Actor, limit, offset *int) ([]domain.Coupon, error) {
	return s.listFn(ctx, a, limit, offset)
}

func (s *stubCoupons) Validate(ctx context.Context, code string) (domain.CouponValidation, error) {
	return s.validateFn(ctx, code)
}

// withRoute attaches chi URL params and the actor the way the router would.
func withRoute(r *http.Request, a *domain.Actor, params ...string) *http.Request {
	rc := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rc.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rc)
	if a != nil {
		ctx = middleware.WithActor(ctx, *a)
	}
	return r.WithContext(ctx)
}
