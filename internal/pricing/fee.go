package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
)

// MinimumFee is the floor every parcel fee is clamped to after discounts.
var MinimumFee = decimal.NewFromInt(50)

var baseFee = decimal.NewFromInt(50)

// weightBand maps an inclusive upper weight bound to its surcharge.
type weightBand struct {
	upToKg    float64
	surcharge int64
}

var weightBands = [...]weightBand{
	{upToKg: 0.5, surcharge: 50},
	{upToKg: 1, surcharge: 100},
	{upToKg: 2, surcharge: 150},
	{upToKg: 5, surcharge: 250},
	{upToKg: 10, surcharge: 400},
}

var categorySurcharge = map[domain.ParcelCategory]int64{
	domain.CategoryDocument:    0,
	domain.CategoryPackage:     10,
	domain.CategoryFragile:     25,
	domain.CategoryElectronics: 40,
}

var tierSurcharge = map[domain.ShippingTier]int64{
	domain.TierStandard:  0,
	domain.TierExpress:   50,
	domain.TierSameDay:   100,
	domain.TierOvernight: 75,
}

// Calculator computes parcel fees. It holds no state.
type Calculator struct{}

// NewCalculator creates a fee Calculator.
func NewCalculator() Calculator {
	return Calculator{}
}

// Fee returns base + weight band + category + tier surcharges, rounded to a whole unit.
func (Calculator) Fee(weightKg float64, category domain.ParcelCategory, tier domain.ShippingTier) (decimal.Decimal, error) {
	if err := ValidateWeight(weightKg); err != nil {
		return decimal.Zero, err
	}
	cat, ok := categorySurcharge[category]
	if !ok {
		return decimal.Zero, apperr.Invalidf("unknown parcel type %q", category)
	}
	ship, ok := tierSurcharge[tier]
	if !ok {
		return decimal.Zero, apperr.Invalidf("unknown shipping type %q", tier)
	}

	fee := baseFee.
		Add(decimal.NewFromInt(weightSurcharge(weightKg))).
		Add(decimal.NewFromInt(cat)).
		Add(decimal.NewFromInt(ship))
	return fee.Round(0), nil
}

// ValidateWeight enforces the inclusive 0.1–10 kg range.
func ValidateWeight(weightKg float64) error {
	if math.IsNaN(weightKg) || math.IsInf(weightKg, 0) {
		return apperr.Invalidf("weight must be a number")
	}
	if weightKg < domain.MinWeightKg {
		return apperr.Invalidf("weight must be at least %.1f kg", domain.MinWeightKg)
	}
	if weightKg > domain.MaxWeightKg {
		return apperr.Invalidf("weight exceeds maximum limit of %.0f kg", domain.MaxWeightKg)
	}
	return nil
}

func weightSurcharge(weightKg float64) int64 {
	for _, b := range weightBands {
		if weightKg <= b.upToKg {
			return b.surcharge
		}
	}
	// unreachable after ValidateWeight
	return weightBands[len(weightBands)-1].surcharge
}
