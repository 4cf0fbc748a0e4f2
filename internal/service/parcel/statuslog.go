package parcel

import (
	"context"
	"strings"
	"time"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/ports/parceltx"
)

const (
	maxLocationLen = 200
	maxNoteLen     = 500
)

// recordStatus is the only place status log entries are written.
// It persists the entry and appends it to the in-memory aggregate.
func recordStatus(
	ctx context.Context,
	tx parceltx.Repository,
	p *domain.Parcel,
	actor domain.Actor,
	location, note *string,
	at time.Time,
) (*domain.StatusLogEntry, error) {
	e := domain.StatusLogEntry{
		Status:    p.Status,
		Location:  location,
		Note:      note,
		UpdatedBy: actor.Ref(),
		At:        at,
	}
	if err := tx.AppendStatusLog(ctx, p.ID, e); err != nil {
		return nil, err
	}
	p.StatusLog = append(p.StatusLog, e)
	return &e, nil
}

// applyTransition validates from -> to against the table and applies the
// derived-field rules. It does not touch the status log.
func (s *Service) applyTransition(p *domain.Parcel, to domain.ParcelStatus, now time.Time) error {
	if !to.Valid() {
		return apperr.Invalidf("unknown status %q", to)
	}
	if !p.Status.CanTransitionTo(to) {
		return transitionError(p.Status, to)
	}

	p.Status = to
	switch to {
	case domain.StatusCancelled:
		p.CancelledAt = &now
		p.DeliveredAt = nil
		p.EstimatedDelivery = nil
	case domain.StatusDelivered:
		p.DeliveredAt = &now
		p.CancelledAt = nil
	default:
		p.CancelledAt = nil
		p.DeliveredAt = nil
	}

	p.IsBlocked = to == domain.StatusBlocked
	if to == domain.StatusRequested {
		// reopened parcels get a fresh promise
		eta, err := s.estimator.EstimatedDelivery(p.ShippingTier, now)
		if err != nil {
			return err
		}
		p.EstimatedDelivery = &eta
	}
	p.UpdatedAt = now
	return nil
}

func transitionError(from, to domain.ParcelStatus) error {
	allowed := from.AllowedTransitions()
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return &apperr.TransitionError{From: string(from), To: string(to), Allowed: names}
}

// cleanText trims v and enforces a length limit. Empty input becomes nil.
func cleanText(field string, v *string, limit int) (*string, error) {
	if v == nil {
		return nil, nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil, nil
	}
	if len([]rune(t)) > limit {
		return nil, apperr.Invalidf("%s cannot exceed %d characters", field, limit)
	}
	return &t, nil
}

func strptr(s string) *string { return &s }
