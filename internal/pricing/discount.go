package pricing

import (
	"github.com/shopspring/decimal"

	"service-parcel-tracking/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ApplyDiscount subtracts the coupon discount from fee and clamps the result to MinimumFee.
func ApplyDiscount(fee decimal.Decimal, c *domain.Coupon) decimal.Decimal {
	if c == nil {
		return fee
	}
	switch c.Type {
	case domain.DiscountPercentage:
		fee = fee.Sub(fee.Mul(c.Value).Div(hundred))
	case domain.DiscountFixed:
		fee = fee.Sub(c.Value)
	}
	if fee.LessThan(MinimumFee) {
		return MinimumFee
	}
	return fee.Round(2)
}
