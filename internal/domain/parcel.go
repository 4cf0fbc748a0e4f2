package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type (
	// ParcelCategory represents what is being shipped.
	ParcelCategory string
	// ShippingTier represents the delivery speed purchased.
	ShippingTier string
)

// List of parcel categories
const (
	CategoryDocument    ParcelCategory = "document"
	CategoryPackage     ParcelCategory = "package"
	CategoryFragile     ParcelCategory = "fragile"
	CategoryElectronics ParcelCategory = "electronics"
)

// List of shipping tiers
const (
	TierStandard  ShippingTier = "standard"
	TierExpress   ShippingTier = "express"
	TierSameDay   ShippingTier = "same_day"
	TierOvernight ShippingTier = "overnight"
)

// Weight bounds in kilograms, inclusive.
const (
	MinWeightKg = 0.1
	MaxWeightKg = 10.0

	DefaultWeightUnit = "kg"
)

var allowedCategories = [...]ParcelCategory{
	CategoryDocument, CategoryPackage, CategoryFragile, CategoryElectronics,
}

var allowedTiers = [...]ShippingTier{
	TierStandard, TierExpress, TierSameDay, TierOvernight,
}

// Valid checks if the ParcelCategory is valid
func (c ParcelCategory) Valid() bool {
	for _, v := range allowedCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Valid checks if the ShippingTier is valid
func (t ShippingTier) Valid() bool {
	for _, v := range allowedTiers {
		if t == v {
			return true
		}
	}
	return false
}

// StatusLogEntry is one immutable audit record of a parcel's history.
type StatusLogEntry struct {
	Status    ParcelStatus
	Location  *string
	Note      *string
	UpdatedBy *uuid.UUID
	At        time.Time
}

// Parcel is the aggregate root of the tracking workflow.
type Parcel struct {
	ID         uuid.UUID
	TrackingID string

	Category     ParcelCategory
	ShippingTier ShippingTier
	WeightKg     float64
	WeightUnit   string

	Fee        decimal.Decimal
	CouponCode *string
	IsPaid     bool

	Status            ParcelStatus
	CurrentLocation   *string
	EstimatedDelivery *time.Time
	DeliveredAt       *time.Time
	CancelledAt       *time.Time
	IsBlocked         bool

	SenderID          uuid.UUID
	ReceiverID        uuid.UUID
	DeliveryPersonnel []uuid.UUID

	PickupAddress   string
	DeliveryAddress string

	StatusLog []StatusLogEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPersonnel reports whether id is already assigned to the parcel.
func (p *Parcel) HasPersonnel(id uuid.UUID) bool {
	for _, v := range p.DeliveryPersonnel {
		if v == id {
			return true
		}
	}
	return false
}

// TrackingView is the public projection of a parcel.
type TrackingView struct {
	TrackingID        string           `json:"tracking_id"`
	Status            ParcelStatus     `json:"current_status"`
	EstimatedDelivery *time.Time       `json:"estimated_delivery"`
	DeliveredAt       *time.Time       `json:"delivered_at"`
	StatusLog         []TrackingRecord `json:"status_log"`
	PickupAddress     string           `json:"pickup_address"`
	DeliveryAddress   string           `json:"delivery_address"`
	CreatedAt         time.Time        `json:"created_at"`
}

// TrackingRecord is a status log entry without actor identity.
type TrackingRecord struct {
	Status   ParcelStatus `json:"status"`
	Location *string      `json:"location,omitempty"`
	Note     *string      `json:"note,omitempty"`
	At       time.Time    `json:"at"`
}

// ToTrackingView strips internal ids, parties and fee.
func (p *Parcel) ToTrackingView() TrackingView {
	log := make([]TrackingRecord, 0, len(p.StatusLog))
	for _, e := range p.StatusLog {
		log = append(log, TrackingRecord{Status: e.Status, Location: e.Location, Note: e.Note, At: e.At})
	}
	return TrackingView{
		TrackingID:        p.TrackingID,
		Status:            p.Status,
		EstimatedDelivery: p.EstimatedDelivery,
		DeliveredAt:       p.DeliveredAt,
		StatusLog:         log,
		PickupAddress:     p.PickupAddress,
		DeliveryAddress:   p.DeliveryAddress,
		CreatedAt:         p.CreatedAt,
	}
}

// reTrackingID matches TRK-YYYYMMDD-XXXXXX
var reTrackingID = regexp.MustCompile(`^TRK-[0-9]{8}-[0-9A-Z]{6}$`)

// ValidateTrackingID validates the public tracking code format
func ValidateTrackingID(s string) bool {
	return reTrackingID.MatchString(s)
}

// ParcelFilter narrows parcel listings. Zero values mean "any".
type ParcelFilter struct {
	SenderID      *uuid.UUID
	ReceiverID    *uuid.UUID
	Statuses      []ParcelStatus
	ExceptStatus  []ParcelStatus
	Limit, Offset *int
}

// StatusCount is one row of the parcel statistics.
type StatusCount struct {
	Status ParcelStatus `json:"status"`
	Count  int64        `json:"count"`
}

// ParcelStats summarises parcels by status.
type ParcelStats struct {
	Total    int64         `json:"total"`
	ByStatus []StatusCount `json:"by_status"`
}

// StatusEvent is published after a committed status-affecting mutation.
type StatusEvent struct {
	ParcelID   uuid.UUID    `json:"parcel_id"`
	TrackingID string       `json:"tracking_id"`
	Status     ParcelStatus `json:"status"`
	Location   *string      `json:"location,omitempty"`
	Note       *string      `json:"note,omitempty"`
	ActorID    *uuid.UUID   `json:"actor_id,omitempty"`
	At         time.Time    `json:"at"`
}
