package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParcelView is the parcel projection returned to authenticated actors.
// Fields an actor may not see are left empty and omitted from JSON.
type ParcelView struct {
	ID                uuid.UUID       `json:"id"`
	TrackingID        string          `json:"tracking_id"`
	Category          ParcelCategory  `json:"type"`
	ShippingTier      ShippingTier    `json:"shipping_type"`
	WeightKg          float64         `json:"weight"`
	WeightUnit        string          `json:"weight_unit"`
	Fee               decimal.Decimal `json:"fee"`
	CouponCode        *string         `json:"coupon_code,omitempty"`
	IsPaid            bool            `json:"is_paid"`
	Status            ParcelStatus    `json:"current_status"`
	CurrentLocation   *string         `json:"current_location,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery"`
	DeliveredAt       *time.Time      `json:"delivered_at"`
	CancelledAt       *time.Time      `json:"cancelled_at"`
	IsBlocked         *bool           `json:"is_blocked,omitempty"`
	SenderID          *uuid.UUID      `json:"sender_id,omitempty"`
	ReceiverID        *uuid.UUID      `json:"receiver_id,omitempty"`
	DeliveryPersonnel []uuid.UUID     `json:"delivery_personnel,omitempty"`
	PickupAddress     string          `json:"pickup_address"`
	DeliveryAddress   string          `json:"delivery_address"`
	StatusLog         []LogView       `json:"status_log"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// LogView is a status log entry as shown to an actor.
type LogView struct {
	Status    ParcelStatus `json:"status"`
	Location  *string      `json:"location,omitempty"`
	Note      *string      `json:"note,omitempty"`
	UpdatedBy *uuid.UUID   `json:"updated_by,omitempty"`
	At        time.Time    `json:"timestamp"`
}

// ViewFor projects the parcel for the given role.
// Admins see everything. Senders do not see the receiver id, and
// receivers do not see the sender id. Neither sees assignments, the
// blocked flag or who wrote each log entry.
func (p *Parcel) ViewFor(role Role) ParcelView {
	v := ParcelView{
		ID:                p.ID,
		TrackingID:        p.TrackingID,
		Category:          p.Category,
		ShippingTier:      p.ShippingTier,
		WeightKg:          p.WeightKg,
		WeightUnit:        p.WeightUnit,
		Fee:               p.Fee,
		CouponCode:        p.CouponCode,
		IsPaid:            p.IsPaid,
		Status:            p.Status,
		CurrentLocation:   p.CurrentLocation,
		EstimatedDelivery: p.EstimatedDelivery,
		DeliveredAt:       p.DeliveredAt,
		CancelledAt:       p.CancelledAt,
		PickupAddress:     p.PickupAddress,
		DeliveryAddress:   p.DeliveryAddress,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}

	admin := role.IsAdmin()
	if admin || role == RoleSender {
		id := p.SenderID
		v.SenderID = &id
	}
	if admin || role == RoleReceiver {
		id := p.ReceiverID
		v.ReceiverID = &id
	}
	if admin {
		blocked := p.IsBlocked
		v.IsBlocked = &blocked
		v.DeliveryPersonnel = append([]uuid.UUID(nil), p.DeliveryPersonnel...)
	}

	v.StatusLog = make([]LogView, 0, len(p.StatusLog))
	for _, e := range p.StatusLog {
		lv := LogView{Status: e.Status, Location: e.Location, Note: e.Note, At: e.At}
		if admin {
			lv.UpdatedBy = e.UpdatedBy
		}
		v.StatusLog = append(v.StatusLog, lv)
	}
	return v
}
