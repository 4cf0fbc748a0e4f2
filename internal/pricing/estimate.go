package pricing

import (
	"time"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
)

// Estimator promises a delivery time per shipping tier.
type Estimator struct{}

// NewEstimator creates a delivery date Estimator.
func NewEstimator() Estimator {
	return Estimator{}
}

// EstimatedDelivery returns the promised delivery timestamp for the tier, relative to now.
func (Estimator) EstimatedDelivery(tier domain.ShippingTier, now time.Time) (time.Time, error) {
	switch tier {
	case domain.TierStandard:
		return now.AddDate(0, 0, 5), nil
	case domain.TierExpress:
		return now.AddDate(0, 0, 2), nil
	case domain.TierSameDay:
		return now.Add(6 * time.Hour), nil
	case domain.TierOvernight:
		return now.AddDate(0, 0, 1), nil
	default:
		return time.Time{}, apperr.Invalidf("invalid shipping type %q", tier)
	}
}
