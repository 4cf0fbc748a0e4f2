package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"service-parcel-tracking/internal/domain"
)

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewGatewayRetriesTotal returns a Prometheus counter for the number of retry attempts performed by gateways
func NewGatewayRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_retries_total",
		Help: "Total number of retry attempts performed by gateways",
	})
}

// NewScansProcessedTotal returns a Prometheus counter of field scans by outcome
func NewScansProcessedTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parcel_scans_processed_total",
		Help: "Total number of field scans consumed, by outcome",
	}, []string{"outcome"})
}

// NewCouponsDeactivatedTotal returns a Prometheus counter of coupons switched off by the expiry sweep
func NewCouponsDeactivatedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coupons_deactivated_total",
		Help: "Total number of expired coupons deactivated by the sweeper",
	})
}

// Workflow counts parcel workflow outcomes.
type Workflow struct {
	created     prometheus.Counter
	transitions *prometheus.CounterVec
	redeemed    prometheus.Counter
}

// NewWorkflow creates unregistered workflow counters.
func NewWorkflow() *Workflow {
	return &Workflow{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parcels_created_total",
			Help: "Total number of parcels created",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parcel_status_transitions_total",
			Help: "Total number of committed parcel status transitions",
		}, []string{"from", "to"}),
		redeemed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coupon_redemptions_total",
			Help: "Total number of coupons redeemed on parcel creation",
		}),
	}
}

// Register adds the counters to reg.
func (w *Workflow) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{w.created, w.transitions, w.redeemed} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workflow) ParcelCreated() { w.created.Inc() }

func (w *Workflow) StatusChanged(from, to domain.ParcelStatus) {
	w.transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (w *Workflow) CouponRedeemed() { w.redeemed.Inc() }
