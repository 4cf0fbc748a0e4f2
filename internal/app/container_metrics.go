package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-parcel-tracking/internal/metrics"
)

type metricsOut struct {
	dig.Out

	RateLimitExceededTotal  prometheus.Counter     `name:"rate_limit_exceeded_total"`
	GatewayRetriesTotal     prometheus.Counter     `name:"gateway_retries_total"`
	CouponsDeactivatedTotal prometheus.Counter     `name:"coupons_deactivated_total"`
	ScansProcessedTotal     *prometheus.CounterVec `name:"parcel_scans_processed_total"`
	Workflow                *metrics.Workflow
}

// provideMetrics registers the service collectors on reg. Collectors that are
// already registered are reused.
func provideMetrics(reg *prometheus.Registry) (metricsOut, error) {
	var (
		out metricsOut
		err error
	)
	if out.RateLimitExceededTotal, err = register(reg, "rate_limit_exceeded_total", metrics.NewRateLimitExceededTotal()); err != nil {
		return metricsOut{}, err
	}
	if out.GatewayRetriesTotal, err = register(reg, "gateway_retries_total", metrics.NewGatewayRetriesTotal()); err != nil {
		return metricsOut{}, err
	}
	if out.CouponsDeactivatedTotal, err = register(reg, "coupons_deactivated_total", metrics.NewCouponsDeactivatedTotal()); err != nil {
		return metricsOut{}, err
	}
	if out.ScansProcessedTotal, err = register(reg, "parcel_scans_processed_total", metrics.NewScansProcessedTotal()); err != nil {
		return metricsOut{}, err
	}

	out.Workflow = metrics.NewWorkflow()
	if err := out.Workflow.Register(reg); err != nil {
		return metricsOut{}, fmt.Errorf("register workflow metrics: %w", err)
	}
	return out, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, name string, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register %s: %w", name, err)
	}
	return c, nil
}
