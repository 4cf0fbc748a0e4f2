package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType represents how a coupon value is applied.
type DiscountType string

// List of discount types
const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Valid checks if the DiscountType is valid
func (d DiscountType) Valid() bool {
	return d == DiscountPercentage || d == DiscountFixed
}

// Coupon is a discount code.
type Coupon struct {
	ID         uuid.UUID
	Code       string
	Type       DiscountType
	Value      decimal.Decimal
	ExpiresAt  time.Time
	IsActive   bool
	UsageLimit *int
	UsedCount  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Exhausted reports whether the usage limit has been reached.
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit
}

// CouponValidation is the outcome of a coupon check.
type CouponValidation struct {
	Valid  bool    `json:"valid"`
	Reason string  `json:"reason,omitempty"`
	Coupon *Coupon `json:"-"`
}
