package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-parcel-tracking/internal/config"
	"service-parcel-tracking/internal/jobs"
	"service-parcel-tracking/internal/logx"
	"service-parcel-tracking/internal/service/coupon"
	"service-parcel-tracking/internal/service/parcel"
	"service-parcel-tracking/internal/service/scans"
	"service-parcel-tracking/internal/transport/kafka"
)

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		newScanProcessor,
		newScanConsumer,
		newCouponSweeper,
	)
}

type scanProcessorIn struct {
	dig.In

	Parcels  *parcel.Service
	Logger   logx.Logger
	Outcomes *prometheus.CounterVec `name:"parcel_scans_processed_total"`
}

func newScanProcessor(in scanProcessorIn) *scans.Processor {
	return scans.NewProcessor(in.Parcels, in.Logger, in.Outcomes)
}

// newScanConsumer returns nil when Kafka is not configured.
func newScanConsumer(cfg *config.Config, logger logx.Logger, p *scans.Processor) (*kafka.Consumer, error) {
	if !cfg.Kafka.Enabled() {
		return nil, nil
	}
	return kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ScansTopic, p.Handle)
}

type couponSweeperIn struct {
	dig.In

	Config  *config.Config
	Logger  logx.Logger
	Coupons *coupon.Service
	Swept   prometheus.Counter `name:"coupons_deactivated_total"`
}

func newCouponSweeper(in couponSweeperIn) *jobs.CouponSweeper {
	return jobs.NewCouponSweeper(in.Coupons, in.Config.Coupons.SweepSchedule, in.Config.Parcel.OperationTimeout, in.Swept, in.Logger)
}
