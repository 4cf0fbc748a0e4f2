package parcel

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/logx"
	"service-parcel-tracking/internal/ports/parceltx"
)

// Cancel moves the sender's own parcel to cancelled.
func (s *Service) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, note *string) (*domain.Parcel, error) {
	if err := authorize(opCancel, actor); err != nil {
		return nil, err
	}
	note, err := cleanText("note", note, maxNoteLen)
	if err != nil {
		return nil, err
	}
	if note == nil {
		note = strptr("Parcel cancelled by sender")
	}

	p, err := s.mutate(ctx, id, func(ctx context.Context, tx parceltx.Repository, p *domain.Parcel) (*domain.StatusLogEntry, error) {
		if err := authorizeParcel(opCancel, actor, p); err != nil {
			return nil, err
		}
		if err := cancellable(p.Status); err != nil {
			return nil, err
		}
		now := s.now()
		if err := s.applyTransition(p, domain.StatusCancelled, now); err != nil {
			return nil, err
		}
		if err := tx.Update(ctx, p); err != nil {
			return nil, err
		}
		return recordStatus(ctx, tx, p, actor, p.CurrentLocation, note, now)
	})
	if err != nil {
		return nil, err
	}
	s.logMutation("parcel_cancelled", p, actor)
	return p, nil
}

// cancellable holds the sender specific rules. The transition table is checked afterwards.
func cancellable(st domain.ParcelStatus) error {
	switch st {
	case domain.StatusCancelled:
		return apperr.Conflictf("parcel is already cancelled")
	case domain.StatusDelivered, domain.StatusDispatched, domain.StatusInTransit:
		return fmt.Errorf("%w: parcel cannot be cancelled at this stage (%s)", apperr.ErrInvalidTransition, st)
	case domain.StatusBlocked, domain.StatusFlagged:
		return apperr.Forbiddenf("parcel is %s and can only be changed by an admin", st)
	}
	return nil
}

// Delete removes a requested or cancelled parcel owned by the sender.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if err := authorize(opDelete, actor); err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var trackingID string
	err := s.repo.WithTx(ctx, func(tx parceltx.Repository) error {
		p, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return apperr.NotFoundf("parcel %s", id)
		}
		if err := authorizeParcel(opDelete, actor, p); err != nil {
			return err
		}
		if p.Status != domain.StatusRequested && p.Status != domain.StatusCancelled {
			return apperr.Conflictf("only requested or cancelled parcels can be deleted, parcel is %s", p.Status)
		}
		trackingID = p.TrackingID
		return tx.Delete(ctx, p.ID)
	})
	if err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, trackingID); err != nil {
		s.logger.Warn("tracking cache invalidate failed", logx.String("tracking_id", trackingID), logx.Err(err))
	}
	s.logger.Info("parcel deleted",
		logx.String("event", "parcel_deleted"),
		logx.UUID("parcel_id", id),
		logx.String("tracking_id", trackingID),
	)
	return nil
}
