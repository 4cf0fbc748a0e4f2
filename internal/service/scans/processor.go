package scans

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/logx"
	"service-parcel-tracking/internal/service/parcel"
)

// Scan outcomes, used as the metric label.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// Processor applies field scans to parcels as the system actor.
type Processor struct {
	workflow Workflow
	logger   logx.Logger
	outcomes *prometheus.CounterVec
	factory  *actionFactory
}

// NewProcessor creates a Processor. outcomes may be nil.
func NewProcessor(workflow Workflow, logger logx.Logger, outcomes *prometheus.CounterVec) *Processor {
	if logger == nil {
		logger = logx.Nop()
	}
	p := &Processor{workflow: workflow, logger: logger, outcomes: outcomes}
	p.factory = newActionFactory(p.onStatus, p.onCheckpoint)
	return p
}

// Handle applies one scan. A nil error means the scan can be committed:
// either it was applied or it can never apply. Other errors ask for redelivery.
func (p *Processor) Handle(ctx context.Context, s Scan) error {
	fn, ok := p.factory.get(s.Status)
	if !ok {
		p.logger.Warn("scan skipped: unknown status",
			logx.String("tracking_id", s.TrackingID),
			logx.String("status", s.Status),
		)
		p.count(OutcomeSkipped)
		return nil
	}

	err := fn(ctx, s)
	switch {
	case err == nil:
		p.count(OutcomeApplied)
		return nil
	case permanent(err):
		p.logger.Warn("scan rejected",
			logx.String("tracking_id", s.TrackingID),
			logx.String("status", s.Status),
			logx.Err(err),
		)
		p.count(OutcomeRejected)
		return nil
	default:
		p.count(OutcomeFailed)
		return err
	}
}

func (p *Processor) onStatus(st domain.ParcelStatus) actionFunc {
	return func(ctx context.Context, s Scan) error {
		upd := update(s)
		upd.Status = &st
		_, err := p.workflow.UpdateStatusByTrackingID(ctx, domain.SystemActor(), s.TrackingID, upd)
		return err
	}
}

func (p *Processor) onCheckpoint(ctx context.Context, s Scan) error {
	_, err := p.workflow.UpdateStatusByTrackingID(ctx, domain.SystemActor(), s.TrackingID, update(s))
	return err
}

func update(s Scan) parcel.StatusUpdate {
	return parcel.StatusUpdate{
		Location:    s.Location,
		Note:        s.Note,
		PersonnelID: s.PersonnelID,
	}
}

func (p *Processor) count(outcome string) {
	if p.outcomes != nil {
		p.outcomes.WithLabelValues(outcome).Inc()
	}
}

func permanent(err error) bool {
	for _, target := range []error{
		apperr.ErrNotFound,
		apperr.ErrInvalidTransition,
		apperr.ErrConflict,
		apperr.ErrInvalid,
		apperr.ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
