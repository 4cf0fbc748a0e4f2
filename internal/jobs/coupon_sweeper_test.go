package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"service-parcel-tracking/internal/metrics"
	testlog "service-parcel-tracking/internal/testutil"
)

type deactivatorStub struct {
	calls int32
	fn    func(context.Context) (int64, error)
}

func (d *deactivatorStub) DeactivateExpired(ctx context.Context) (int64, error) {
	atomic.AddInt32(&d.calls, 1)
	return d.fn(ctx)
}

func TestCouponSweeper_Sweep_CountsDeactivated(t *testing.T) {
	t.Parallel()

	swept := metrics.NewCouponsDeactivatedTotal()
	stub := &deactivatorStub{fn: func(ctx context.Context) (int64, error) {
		_, ok := ctx.Deadline()
		require.True(t, ok)
		return 3, nil
	}}
	j := NewCouponSweeper(stub, "@hourly", time.Second, swept, nil)

	j.Sweep(context.Background())
	j.Sweep(context.Background())

	require.Equal(t, 6.0, testutil.ToFloat64(swept))
}

func TestCouponSweeper_Sweep_LogsFailure(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	swept := metrics.NewCouponsDeactivatedTotal()
	stub := &deactivatorStub{fn: func(context.Context) (int64, error) { return 0, errors.New("db down") }}
	j := NewCouponSweeper(stub, "@hourly", 0, swept, rec.Logger())

	j.Sweep(context.Background())

	require.Equal(t, 0.0, testutil.ToFloat64(swept))
	e, ok := rec.Find("error", "coupon sweep failed")
	require.True(t, ok)
	v, _ := e.Field("component")
	require.Equal(t, "coupon_sweeper", v)
}

func TestCouponSweeper_Start_BadSchedule(t *testing.T) {
	t.Parallel()

	j := NewCouponSweeper(&deactivatorStub{}, "every now and then", 0, nil, nil)
	require.Error(t, j.Start())
}

func TestCouponSweeper_RunsOnSchedule(t *testing.T) {
	t.Parallel()

	stub := &deactivatorStub{fn: func(context.Context) (int64, error) { return 0, nil }}
	j := NewCouponSweeper(stub, "@every 1s", 0, nil, testlog.New().Logger())
	require.NoError(t, j.Start())
	require.NoError(t, j.Start())

	require.Eventually(t, func() bool { return atomic.LoadInt32(&stub.calls) > 0 }, 3*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	j.Stop(ctx)
	j.Stop(ctx)
}
