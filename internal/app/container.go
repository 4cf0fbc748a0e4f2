package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"service-parcel-tracking/internal/config"
	"service-parcel-tracking/internal/http/handlers"
	"service-parcel-tracking/internal/http/middleware/ratelimit"
	"service-parcel-tracking/internal/http/pprofserver"
	"service-parcel-tracking/internal/http/router"
	"service-parcel-tracking/internal/logx"
	"service-parcel-tracking/internal/metrics"
	"service-parcel-tracking/internal/pricing"
	"service-parcel-tracking/internal/repository"
	"service-parcel-tracking/internal/service/coupon"
	"service-parcel-tracking/internal/service/parcel"
)

type dbConnectFunc func(ctx context.Context, logger logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect dbConnectFunc
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds the HTTP service container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// MustBuildWorker builds the scan consumer and coupon sweeper container
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container, err := b.buildBase(ctx)
	if err != nil {
		return nil, err
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
	container, err := b.buildBase(ctx)
	if err != nil {
		return nil, err
	}
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

func (b *ContainerBuilder) buildBase(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerInfra(container); err != nil {
		return nil, fmt.Errorf("infra: %w", err)
	}
	if err := registerDomainServices(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns the HTTP service container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds and returns the worker container
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		NewLogger,
		config.Load,
		prometheus.NewRegistry,
		provideMetrics,
	)
}

func registerDb(container *dig.Container, dbConnect dbConnectFunc) error {
	providerDB := func(ctx context.Context, logger logx.Logger, cfg *config.Config) (*pgxpool.Pool, error) {
		pool, err := dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return pool, nil
	}
	return provideAll(container, providerDB)
}

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		repository.NewParcelRepo,
		repository.NewCouponRepo,
		func(repo *repository.CouponRepo, cfg *config.Config, logger logx.Logger) *coupon.Service {
			return coupon.NewService(repo, cfg.Parcel.OperationTimeout, logger)
		},
		newParcelService,
	)
}

type parcelServiceIn struct {
	dig.In

	Config  *config.Config
	Logger  logx.Logger
	Repo    *repository.ParcelRepo
	Users   parcel.UserDirectory
	Cache   parcel.TrackingCache `optional:"true"`
	Events  eventPublisher
	Metrics *metrics.Workflow
}

func newParcelService(in parcelServiceIn) *parcel.Service {
	return parcel.NewService(parcel.Deps{
		Repo:      in.Repo,
		Users:     in.Users,
		Fees:      pricing.NewCalculator(),
		Estimator: pricing.NewEstimator(),
		Cache:     in.Cache,
		Events:    in.Events,
		Metrics:   in.Metrics,
		Logger:    in.Logger,
		Timeout:   in.Config.Parcel.OperationTimeout,
	})
}

type routerIn struct {
	dig.In

	Logger    logx.Logger
	Registry  *prometheus.Registry
	Base      *handlers.Handlers
	Parcels   *handlers.ParcelHandler
	Coupons   *handlers.CouponHandler
	RateLimit *ratelimit.Middleware
}

func newRouter(in routerIn) http.Handler {
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, in.Registry}
	return router.New(router.Deps{
		Logger:    in.Logger,
		Base:      in.Base,
		Parcels:   in.Parcels,
		Coupons:   in.Coupons,
		RateLimit: in.RateLimit,
		Metrics:   promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}),
	})
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		handlers.NewParcelUsecase,
		handlers.NewParcelHandler,
		handlers.NewCouponUsecase,
		handlers.NewCouponHandler,
		newRateLimiter,
		newRateLimitMiddleware,
		newRouter,
		serverProvider,
		newPprofServer,
	)
}

type pprofOut struct {
	dig.Out

	Server *http.Server `name:"pprof_server"`
}

// newPprofServer yields a nil server unless profiling is enabled.
func newPprofServer(cfg *config.Config, logger logx.Logger) pprofOut {
	if !cfg.Pprof.Enabled {
		return pprofOut{}
	}
	return pprofOut{Server: &http.Server{
		Addr:              cfg.Pprof.Addr,
		Handler:           pprofserver.Handler(pprofserver.Config{User: cfg.Pprof.User, Pass: cfg.Pprof.Pass}, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}
