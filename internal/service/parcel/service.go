package parcel

import (
	"context"
	"time"

	"github.com/google/uuid"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/idgen"
	"service-parcel-tracking/internal/logx"
	"service-parcel-tracking/internal/ports/parceltx"
)

// Deps groups the collaborators of the workflow engine. Cache, Events,
// Metrics and Logger are optional.
type Deps struct {
	Repo      Repository
	Users     UserDirectory
	Fees      FeeCalculator
	Estimator Estimator
	Cache     TrackingCache
	Events    EventPublisher
	Metrics   Metrics
	Logger    logx.Logger
	Timeout   time.Duration
}

// Service is the parcel status workflow engine.
type Service struct {
	repo      Repository
	users     UserDirectory
	fees      FeeCalculator
	estimator Estimator
	cache     TrackingCache
	events    EventPublisher
	metrics   Metrics

	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
	newTrackingID    func(now time.Time) (string, error)
}

// NewService creates and configures the workflow engine.
func NewService(d Deps) *Service {
	if d.Timeout <= 0 {
		d.Timeout = 3 * time.Second
	}
	if d.Logger == nil {
		d.Logger = logx.Nop()
	}
	if d.Cache == nil {
		d.Cache = nopCache{}
	}
	if d.Events == nil {
		d.Events = nopPublisher{}
	}
	if d.Metrics == nil {
		d.Metrics = nopMetrics{}
	}
	return &Service{
		repo:             d.Repo,
		users:            d.Users,
		fees:             d.Fees,
		estimator:        d.Estimator,
		cache:            d.Cache,
		events:           d.Events,
		metrics:          d.Metrics,
		operationTimeout: d.Timeout,
		logger:           d.Logger,
		now:              func() time.Time { return time.Now().UTC() },
		newTrackingID:    idgen.TrackingID,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// mutation is one locked read-modify-write of a parcel. It returns the
// status log entry it recorded, or nil when nothing was appended.
type mutation func(ctx context.Context, tx parceltx.Repository, p *domain.Parcel) (*domain.StatusLogEntry, error)

// mutate loads the parcel under a row lock, applies fn and commits.
// Side channels run only after a successful commit.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn mutation) (*domain.Parcel, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		out   *domain.Parcel
		entry *domain.StatusLogEntry
		from  domain.ParcelStatus
	)
	err := s.repo.WithTx(ctx, func(tx parceltx.Repository) error {
		p, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return apperr.NotFoundf("parcel %s", id)
		}
		from = p.Status

		entry, err = fn(ctx, tx, p)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Status != from {
		s.metrics.StatusChanged(from, out.Status)
	}
	s.afterCommit(ctx, out, entry)
	return out, nil
}

// afterCommit invalidates the public tracking view and announces the change.
// Failures are logged and never surface to the caller.
func (s *Service) afterCommit(ctx context.Context, p *domain.Parcel, entry *domain.StatusLogEntry) {
	if err := s.cache.Invalidate(ctx, p.TrackingID); err != nil {
		s.logger.Warn("tracking cache invalidate failed",
			logx.String("tracking_id", p.TrackingID),
			logx.Err(err),
		)
	}
	if entry == nil {
		return
	}
	ev := domain.StatusEvent{
		ParcelID:   p.ID,
		TrackingID: p.TrackingID,
		Status:     entry.Status,
		Location:   entry.Location,
		Note:       entry.Note,
		ActorID:    entry.UpdatedBy,
		At:         entry.At,
	}
	if err := s.events.PublishStatus(ctx, ev); err != nil {
		s.logger.Warn("status event publish failed",
			logx.String("tracking_id", p.TrackingID),
			logx.String("status", string(entry.Status)),
			logx.Err(err),
		)
	}
}

func (s *Service) logMutation(event string, p *domain.Parcel, actor domain.Actor) {
	s.logger.Info("parcel updated",
		logx.String("event", event),
		logx.UUID("parcel_id", p.ID),
		logx.String("tracking_id", p.TrackingID),
		logx.String("status", string(p.Status)),
		logx.String("actor_role", string(actor.Role)),
	)
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (*domain.TrackingView, error) { return nil, nil }
func (nopCache) Set(context.Context, domain.TrackingView) error            { return nil }
func (nopCache) Invalidate(context.Context, string) error                  { return nil }

type nopPublisher struct{}

func (nopPublisher) PublishStatus(context.Context, domain.StatusEvent) error { return nil }

type nopMetrics struct{}

func (nopMetrics) ParcelCreated()                         {}
func (nopMetrics) StatusChanged(_, _ domain.ParcelStatus) {}
func (nopMetrics) CouponRedeemed()                        {}
