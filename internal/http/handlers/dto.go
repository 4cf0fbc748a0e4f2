package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/service/coupon"
	"service-parcel-tracking/internal/service/parcel"
)

type createParcelRequest struct {
	Category        domain.ParcelCategory `json:"type"`
	ShippingTier    domain.ShippingTier   `json:"shipping_type"`
	WeightKg        float64               `json:"weight"`
	ReceiverEmail   string                `json:"receiver_email"`
	PickupAddress   *string               `json:"pickup_address,omitempty"`
	DeliveryAddress *string               `json:"delivery_address,omitempty"`
	CouponCode      *string               `json:"coupon_code,omitempty"`
}

type adminCreateParcelRequest struct {
	createParcelRequest
	SenderEmail string `json:"sender_email"`
}

type noteRequest struct {
	Note *string `json:"note,omitempty"`
}

type statusUpdateRequest struct {
	Status      *domain.ParcelStatus `json:"status,omitempty"`
	Location    *string              `json:"location,omitempty"`
	Note        *string              `json:"note,omitempty"`
	PersonnelID *uuid.UUID           `json:"delivery_personnel_id,omitempty"`
}

type blockRequest struct {
	Blocked *bool   `json:"is_blocked"`
	Reason  *string `json:"reason,omitempty"`
}

type createCouponRequest struct {
	Type       domain.DiscountType `json:"discount_type"`
	Value      decimal.Decimal     `json:"discount_value"`
	ExpiresAt  time.Time           `json:"expiry_date"`
	UsageLimit *int                `json:"usage_limit,omitempty"`
	IsActive   *bool               `json:"is_active,omitempty"`
}

type couponDTO struct {
	ID         uuid.UUID           `json:"id"`
	Code       string              `json:"code"`
	Type       domain.DiscountType `json:"discount_type"`
	Value      decimal.Decimal     `json:"discount_value"`
	ExpiresAt  time.Time           `json:"expiry_date"`
	IsActive   bool                `json:"is_active"`
	UsageLimit *int                `json:"usage_limit"`
	UsedCount  int                 `json:"used_count"`
	CreatedAt  time.Time           `json:"created_at"`
}

func (r createParcelRequest) toInput() parcel.CreateInput {
	return parcel.CreateInput{
		Category:        r.Category,
		ShippingTier:    r.ShippingTier,
		WeightKg:        r.WeightKg,
		ReceiverEmail:   r.ReceiverEmail,
		PickupAddress:   r.PickupAddress,
		DeliveryAddress: r.DeliveryAddress,
		CouponCode:      r.CouponCode,
	}
}

func (r statusUpdateRequest) toInput() parcel.StatusUpdate {
	return parcel.StatusUpdate{
		Status:      r.Status,
		Location:    r.Location,
		Note:        r.Note,
		PersonnelID: r.PersonnelID,
	}
}

func (r createCouponRequest) toInput() coupon.CreateInput {
	return coupon.CreateInput{
		Type:       r.Type,
		Value:      r.Value,
		ExpiresAt:  r.ExpiresAt,
		UsageLimit: r.UsageLimit,
		IsActive:   r.IsActive,
	}
}

func parcelsToResponse(list []domain.Parcel, role domain.Role) []domain.ParcelView {
	out := make([]domain.ParcelView, 0, len(list))
	for i := range list {
		out = append(out, list[i].ViewFor(role))
	}
	return out
}

func couponToResponse(c domain.Coupon) couponDTO {
	return couponDTO{
		ID:         c.ID,
		Code:       c.Code,
		Type:       c.Type,
		Value:      c.Value,
		ExpiresAt:  c.ExpiresAt,
		IsActive:   c.IsActive,
		UsageLimit: c.UsageLimit,
		UsedCount:  c.UsedCount,
		CreatedAt:  c.CreatedAt,
	}
}

func couponsToResponse(list []domain.Coupon) []couponDTO {
	out := make([]couponDTO, 0, len(list))
	for _, c := range list {
		out = append(out, couponToResponse(c))
	}
	return out
}
