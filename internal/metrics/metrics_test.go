package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"service-parcel-tracking/internal/domain"
)

func TestWorkflow_Counts(t *testing.T) {
	t.Parallel()

	w := NewWorkflow()
	w.ParcelCreated()
	w.ParcelCreated()
	w.CouponRedeemed()
	w.StatusChanged(domain.StatusRequested, domain.StatusApproved)
	w.StatusChanged(domain.StatusRequested, domain.StatusApproved)
	w.StatusChanged(domain.StatusApproved, domain.StatusPicked)

	require.Equal(t, 2.0, testutil.ToFloat64(w.created))
	require.Equal(t, 1.0, testutil.ToFloat64(w.redeemed))
	require.Equal(t, 2.0, testutil.ToFloat64(w.transitions.WithLabelValues("requested", "approved")))
	require.Equal(t, 1.0, testutil.ToFloat64(w.transitions.WithLabelValues("approved", "picked")))
}

func TestWorkflow_Register(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	w := NewWorkflow()
	require.NoError(t, w.Register(reg))
	require.Error(t, w.Register(reg))

	w.ParcelCreated()
	n, err := testutil.GatherAndCount(reg, "parcels_created_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCounters_Names(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(NewRateLimitExceededTotal(), NewGatewayRetriesTotal(), NewCouponsDeactivatedTotal())
	scans := NewScansProcessedTotal()
	reg.MustRegister(scans)
	scans.WithLabelValues("applied").Inc()

	n, err := testutil.GatherAndCount(reg,
		"rate_limit_exceeded_total", "gateway_retries_total", "coupons_deactivated_total", "parcel_scans_processed_total")
	require.NoError(t, err)
	require.Equal(t, 4, n)
}
