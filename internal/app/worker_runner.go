package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/dig"

	"service-parcel-tracking/internal/jobs"
	"service-parcel-tracking/internal/logx"
	"service-parcel-tracking/internal/transport/kafka"
)

// WorkerRunner runs the scan consumer and the coupon sweeper
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun starts the worker using the provided DI container
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	logger logx.Logger,
	consumer *kafka.Consumer,
	sweeper *jobs.CouponSweeper,
	res resources,
) error {
	if sweeper == nil {
		return fmt.Errorf("coupon sweeper is nil: worker container misconfigured")
	}
	defer res.close(logger)

	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("start coupon sweeper: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sweeper.Stop(stopCtx)
	}()

	if consumer == nil {
		logger.Warn("kafka disabled, scan consumer not started")
		<-ctx.Done()
		return ctx.Err()
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka close error", logx.Err(err))
		}
	}()

	logger.Info("service-parcel-worker started")
	return consumer.Run(ctx)
}
