package config

import "time"

const (
	defaultPort     = 8080
	defaultLogLevel = "info"
)

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "parcels",
}

var defaultRedis = Redis{
	TrackingTTL: 5 * time.Minute,
}

var defaultKafka = Kafka{
	StatusTopic: "parcel.status",
	ScansTopic:  "parcel.scans",
	GroupID:     "service-parcel",
}

var defaultUsersGateway = UsersGateway{
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    200 * time.Millisecond,
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       10,
	Burst:      20,
	TTL:        10 * time.Minute,
	MaxBuckets: 10000,
}

var defaultParcel = Parcel{
	OperationTimeout: 3 * time.Second,
}

var defaultCoupons = Coupons{
	SweepSchedule: "@every 1m",
}

var defaultPprof = Pprof{
	Addr: "127.0.0.1:6060",
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultUsersGateway returns the default users gateway settings.
func DefaultUsersGateway() UsersGateway {
	return defaultUsersGateway
}

// DefaultRateLimit returns the default rate limit settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}
