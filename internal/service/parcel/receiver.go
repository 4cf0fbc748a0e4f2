package parcel

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/ports/parceltx"
)

// ConfirmDelivery marks an in-transit parcel as delivered by its receiver.
func (s *Service) ConfirmDelivery(ctx context.Context, actor domain.Actor, id uuid.UUID, note *string) (*domain.Parcel, error) {
	if err := authorize(opConfirm, actor); err != nil {
		return nil, err
	}
	note, err := cleanText("note", note, maxNoteLen)
	if err != nil {
		return nil, err
	}
	if note == nil {
		note = strptr("Delivery confirmed by receiver")
	}

	p, err := s.mutate(ctx, id, func(ctx context.Context, tx parceltx.Repository, p *domain.Parcel) (*domain.StatusLogEntry, error) {
		if err := authorizeParcel(opConfirm, actor, p); err != nil {
			return nil, err
		}
		if p.Status != domain.StatusInTransit {
			return nil, fmt.Errorf("%w: delivery can only be confirmed while in transit, parcel is %s",
				apperr.ErrInvalidTransition, p.Status)
		}
		now := s.now()
		if err := s.applyTransition(p, domain.StatusDelivered, now); err != nil {
			return nil, err
		}
		if err := tx.Update(ctx, p); err != nil {
			return nil, err
		}
		location := p.CurrentLocation
		if location == nil {
			location = strptr(p.DeliveryAddress)
		}
		return recordStatus(ctx, tx, p, actor, location, note, now)
	})
	if err != nil {
		return nil, err
	}
	s.logMutation("parcel_delivered", p, actor)
	return p, nil
}
