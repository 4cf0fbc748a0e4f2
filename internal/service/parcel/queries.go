package parcel

import (
	"context"

	"github.com/google/uuid"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is an offset pagination request. Zero Limit means the default page size.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) filter(f domain.ParcelFilter) (domain.ParcelFilter, error) {
	if p.Limit < 0 || p.Offset < 0 {
		return f, apperr.Invalidf("limit and offset must not be negative")
	}
	limit := p.Limit
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := p.Offset
	f.Limit, f.Offset = &limit, &offset
	return f, nil
}

// Details returns any parcel by id. Admin only.
func (s *Service) Details(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Parcel, error) {
	if err := authorize(opDetails, actor); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// StatusLog returns the parcel history as seen by the actor.
func (s *Service) StatusLog(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.LogView, error) {
	if err := authorize(opStatusLog, actor); err != nil {
		return nil, err
	}
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeParcel(opStatusLog, actor, p); err != nil {
		return nil, err
	}
	return p.ViewFor(actor.Role).StatusLog, nil
}

// ListOwn lists parcels sent by the actor, newest first.
func (s *Service) ListOwn(ctx context.Context, actor domain.Actor, page Page) ([]domain.Parcel, error) {
	if err := authorize(opListOwn, actor); err != nil {
		return nil, err
	}
	id := actor.ID
	return s.list(ctx, domain.ParcelFilter{SenderID: &id}, page)
}

// Incoming lists parcels addressed to the actor that are still on their way.
func (s *Service) Incoming(ctx context.Context, actor domain.Actor, page Page) ([]domain.Parcel, error) {
	if err := authorize(opIncoming, actor); err != nil {
		return nil, err
	}
	id := actor.ID
	return s.list(ctx, domain.ParcelFilter{
		ReceiverID:   &id,
		ExceptStatus: []domain.ParcelStatus{domain.StatusDelivered, domain.StatusCancelled},
	}, page)
}

// History lists parcels delivered to the actor.
func (s *Service) History(ctx context.Context, actor domain.Actor, page Page) ([]domain.Parcel, error) {
	if err := authorize(opHistory, actor); err != nil {
		return nil, err
	}
	id := actor.ID
	return s.list(ctx, domain.ParcelFilter{
		ReceiverID: &id,
		Statuses:   []domain.ParcelStatus{domain.StatusDelivered},
	}, page)
}

// ListAll lists every parcel, optionally narrowed to one status. Admin only.
func (s *Service) ListAll(ctx context.Context, actor domain.Actor, status *domain.ParcelStatus, page Page) ([]domain.Parcel, error) {
	if err := authorize(opListAll, actor); err != nil {
		return nil, err
	}
	var f domain.ParcelFilter
	if status != nil {
		if !status.Valid() {
			return nil, apperr.Invalidf("unknown status %q", *status)
		}
		f.Statuses = []domain.ParcelStatus{*status}
	}
	return s.list(ctx, f, page)
}

// Stats counts parcels per status. Admin only.
func (s *Service) Stats(ctx context.Context, actor domain.Actor) (domain.ParcelStats, error) {
	if err := authorize(opStats, actor); err != nil {
		return domain.ParcelStats{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repo.Stats(ctx)
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*domain.Parcel, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("parcel %s", id)
	}
	return p, nil
}

func (s *Service) list(ctx context.Context, f domain.ParcelFilter, page Page) ([]domain.Parcel, error) {
	f, err := page.filter(f)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Parcel{}
	}
	return out, nil
}
