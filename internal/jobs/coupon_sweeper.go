package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"service-parcel-tracking/internal/logx"
)

// Deactivator switches off expired coupons and reports how many changed.
type Deactivator interface {
	DeactivateExpired(ctx context.Context) (int64, error)
}

type adder interface {
	Add(float64)
}

// CouponSweeper deactivates expired coupons on a cron schedule.
type CouponSweeper struct {
	coupons  Deactivator
	schedule string
	timeout  time.Duration
	swept    adder
	logger   logx.Logger
	cron     *cron.Cron

	mu      sync.Mutex
	started bool
}

// NewCouponSweeper creates a sweeper. schedule is a standard 5-field cron spec.
func NewCouponSweeper(coupons Deactivator, schedule string, timeout time.Duration, swept adder, logger logx.Logger) *CouponSweeper {
	if logger == nil {
		logger = logx.Nop()
	}
	return &CouponSweeper{
		coupons:  coupons,
		schedule: schedule,
		timeout:  timeout,
		swept:    swept,
		logger:   logger.With(logx.String("component", "coupon_sweeper")),
		cron:     cron.New(cron.WithLogger(cron.DiscardLogger), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start registers the sweep and starts the scheduler.
func (j *CouponSweeper) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.started {
		return nil
	}
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Sweep(context.Background()) }); err != nil {
		return err
	}
	j.cron.Start()
	j.started = true
	j.logger.Info("coupon sweeper started", logx.String("schedule", j.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish or ctx to end.
func (j *CouponSweeper) Stop(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.started {
		return
	}
	j.started = false
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
	j.logger.Info("coupon sweeper stopped")
}

// Sweep runs one deactivation pass.
func (j *CouponSweeper) Sweep(ctx context.Context) {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	n, err := j.coupons.DeactivateExpired(ctx)
	if err != nil {
		j.logger.Error("coupon sweep failed", logx.Err(err))
		return
	}
	if j.swept != nil && n > 0 {
		j.swept.Add(float64(n))
	}
}
