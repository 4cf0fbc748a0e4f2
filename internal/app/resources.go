package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"service-parcel-tracking/internal/logx"
)

// resources are the connections released on shutdown. Every field may be absent.
type resources struct {
	dig.In

	Pool   *pgxpool.Pool   `optional:"true"`
	Redis  *redis.Client   `optional:"true"`
	Events eventPublisher  `optional:"true"`
	Users  usersConnCloser `optional:"true"`
}

func (r resources) close(logger logx.Logger) {
	if r.Events != nil {
		if err := r.Events.Close(); err != nil {
			logger.Error("kafka producer close error", logx.Err(err))
		}
	}
	if r.Users != nil {
		if err := r.Users(); err != nil {
			logger.Error("users gateway close error", logx.Err(err))
		}
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			logger.Error("redis close error", logx.Err(err))
		}
	}
	if r.Pool != nil {
		r.Pool.Close()
	}
}
