package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/pricing"
)

// Rejection reasons reported by Validate.
const (
	ReasonInvalidCode = "Invalid coupon code"
	ReasonInactive    = "Coupon is not active"
	ReasonExpired     = "Coupon has expired"
	ReasonExhausted   = "Coupon has reached its usage limit"
)

// NormalizeCode trims and upper-cases a user supplied code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks the coupon without consuming it. It fails closed.
func Validate(ctx context.Context, store Store, code string, now time.Time) (domain.CouponValidation, error) {
	c, err := store.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		return domain.CouponValidation{}, err
	}
	switch {
	case c == nil:
		return domain.CouponValidation{Reason: ReasonInvalidCode}, nil
	case !c.IsActive:
		return domain.CouponValidation{Reason: ReasonInactive, Coupon: c}, nil
	case c.ExpiresAt.Before(now):
		return domain.CouponValidation{Reason: ReasonExpired, Coupon: c}, nil
	case c.Exhausted():
		return domain.CouponValidation{Reason: ReasonExhausted, Coupon: c}, nil
	}
	return domain.CouponValidation{Valid: true, Coupon: c}, nil
}

// Apply re-validates the code, redeems one use and returns the discounted fee.
// The redemption is a guarded increment, so concurrent callers cannot exceed the usage limit.
func Apply(ctx context.Context, store Store, code string, fee decimal.Decimal, now time.Time) (decimal.Decimal, *domain.Coupon, error) {
	v, err := Validate(ctx, store, code, now)
	if err != nil {
		return decimal.Zero, nil, err
	}
	if !v.Valid {
		if v.Coupon == nil {
			return decimal.Zero, nil, apperr.NotFoundf("%s", ReasonInvalidCode)
		}
		return decimal.Zero, nil, apperr.Conflictf("%s", v.Reason)
	}

	ok, err := store.Redeem(ctx, v.Coupon.Code, now)
	if err != nil {
		return decimal.Zero, nil, err
	}
	if !ok {
		return decimal.Zero, nil, apperr.Conflictf("%s", ReasonExhausted)
	}

	redeemed := *v.Coupon
	redeemed.UsedCount++
	return pricing.ApplyDiscount(fee, &redeemed), &redeemed, nil
}
