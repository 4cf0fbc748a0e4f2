package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"service-parcel-tracking/internal/cache/tracking"
	"service-parcel-tracking/internal/config"
	"service-parcel-tracking/internal/events"
	"service-parcel-tracking/internal/gateway/users"
	"service-parcel-tracking/internal/logx"
	"service-parcel-tracking/internal/repository"
	"service-parcel-tracking/internal/service/parcel"
)

type eventPublisher interface {
	parcel.EventPublisher
	Close() error
}

type usersConnCloser func() error

func registerInfra(container *dig.Container) error {
	return provideAll(container,
		newRedisClient,
		newTrackingCache,
		newEventPublisher,
		newUserDirectory,
	)
}

// newRedisClient returns nil when no address is configured.
func newRedisClient(cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return tracking.NewClient(cfg.Redis.Addr)
}

func newTrackingCache(cfg *config.Config, rdb *redis.Client) parcel.TrackingCache {
	if rdb == nil {
		return nil
	}
	// a tracking read never outlives the operation timeout
	return tracking.New(rdb, cfg.Redis.TrackingTTL, cfg.Parcel.OperationTimeout)
}

func newEventPublisher(cfg *config.Config, logger logx.Logger) (eventPublisher, error) {
	if !cfg.Kafka.Enabled() {
		logger.Info("kafka disabled, status events are not published")
		return events.Nop{}, nil
	}
	producer, err := events.NewSyncProducer(cfg.Kafka.Brokers)
	if err != nil {
		return nil, err
	}
	return events.NewPublisher(producer, cfg.Kafka.StatusTopic), nil
}

type usersIn struct {
	dig.In

	Config  *config.Config
	Logger  logx.Logger
	Pool    *pgxpool.Pool
	Retries prometheus.Counter `name:"gateway_retries_total"`
}

type usersOut struct {
	dig.Out

	Directory parcel.UserDirectory
	Closer    usersConnCloser
}

// newUserDirectory dials the user service when an address is set and reads
// the local users table otherwise.
func newUserDirectory(in usersIn) (usersOut, error) {
	if in.Config.Users.Addr == "" {
		return usersOut{
			Directory: repository.NewUserRepo(in.Pool),
			Closer:    func() error { return nil },
		}, nil
	}

	conn, err := users.Dial(in.Config.Users.Addr)
	if err != nil {
		return usersOut{}, err
	}
	gw := users.NewRetryingGateway(users.NewGRPCGateway(conn), in.Logger, in.Retries, users.RetryConfig{
		MaxAttempts: in.Config.Users.MaxAttempts,
		BaseDelay:   in.Config.Users.BaseDelay,
		MaxDelay:    in.Config.Users.MaxDelay,
	})
	return usersOut{Directory: gw, Closer: conn.Close}, nil
}
