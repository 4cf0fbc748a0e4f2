package parcel

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/ports/parceltx"
)

// StatusUpdate is an admin change to a parcel. At least one of Status,
// Location or PersonnelID must be set.
type StatusUpdate struct {
	Status      *domain.ParcelStatus
	Location    *string
	Note        *string
	PersonnelID *uuid.UUID
}

// BlockInput toggles the administrative block of a parcel.
type BlockInput struct {
	Blocked bool
	Reason  *string
}

// UpdateStatus applies a status change, a location change and a personnel
// assignment as one mutation with a single status log entry.
func (s *Service) UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, upd StatusUpdate) (*domain.Parcel, error) {
	if err := authorize(opUpdateStatus, actor); err != nil {
		return nil, err
	}
	if err := normalizeUpdate(&upd); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if upd.PersonnelID != nil {
		if err := s.checkPersonnel(ctx, *upd.PersonnelID); err != nil {
			return nil, err
		}
	}

	p, err := s.mutate(ctx, id, func(ctx context.Context, tx parceltx.Repository, p *domain.Parcel) (*domain.StatusLogEntry, error) {
		if err := authorizeParcel(opUpdateStatus, actor, p); err != nil {
			return nil, err
		}
		now := s.now()
		if upd.Status != nil {
			if err := s.applyTransition(p, *upd.Status, now); err != nil {
				return nil, err
			}
		}
		if upd.Location != nil {
			p.CurrentLocation = upd.Location
		}
		assigned := false
		if upd.PersonnelID != nil {
			if !p.Status.TransitEligible() {
				return nil, apperr.Conflictf("delivery personnel cannot be assigned while the parcel is %s", p.Status)
			}
			if !p.HasPersonnel(*upd.PersonnelID) {
				if err := tx.AddPersonnel(ctx, p.ID, *upd.PersonnelID, now); err != nil {
					return nil, err
				}
				p.DeliveryPersonnel = append(p.DeliveryPersonnel, *upd.PersonnelID)
				assigned = true
			}
		}
		if upd.Status == nil && upd.Location == nil && !assigned {
			return nil, apperr.Conflictf("delivery personnel %s is already assigned", *upd.PersonnelID)
		}
		p.UpdatedAt = now
		if err := tx.Update(ctx, p); err != nil {
			return nil, err
		}

		note := upd.Note
		if note == nil {
			note = strptr(updateSummary(upd, p.Status, assigned))
		}
		return recordStatus(ctx, tx, p, actor, p.CurrentLocation, note, now)
	})
	if err != nil {
		return nil, err
	}
	s.logMutation("parcel_status_updated", p, actor)
	return p, nil
}

// UpdateStatusByTrackingID resolves the public code and runs UpdateStatus.
func (s *Service) UpdateStatusByTrackingID(ctx context.Context, actor domain.Actor, trackingID string, upd StatusUpdate) (*domain.Parcel, error) {
	if err := authorize(opUpdateStatus, actor); err != nil {
		return nil, err
	}
	trackingID = strings.ToUpper(strings.TrimSpace(trackingID))
	if !domain.ValidateTrackingID(trackingID) {
		return nil, apperr.Invalidf("invalid tracking id %q", trackingID)
	}

	p, err := s.lookupTracking(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	return s.UpdateStatus(ctx, actor, p.ID, upd)
}

func (s *Service) lookupTracking(ctx context.Context, trackingID string) (*domain.Parcel, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, err := s.repo.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("parcel with tracking id %s", trackingID)
	}
	return p, nil
}

// SetBlocked blocks or unblocks a parcel. Repeating the current value is a conflict.
func (s *Service) SetBlocked(ctx context.Context, actor domain.Actor, id uuid.UUID, in BlockInput) (*domain.Parcel, error) {
	if err := authorize(opBlock, actor); err != nil {
		return nil, err
	}
	reason, err := cleanText("reason", in.Reason, maxNoteLen)
	if err != nil {
		return nil, err
	}

	target, verb := domain.StatusApproved, "unblocked"
	if in.Blocked {
		target, verb = domain.StatusBlocked, "blocked"
	}
	if reason == nil {
		reason = strptr("Parcel " + verb + " by admin")
	}

	p, err := s.mutate(ctx, id, func(ctx context.Context, tx parceltx.Repository, p *domain.Parcel) (*domain.StatusLogEntry, error) {
		if err := authorizeParcel(opBlock, actor, p); err != nil {
			return nil, err
		}
		if (p.Status == domain.StatusBlocked) == in.Blocked {
			return nil, apperr.Conflictf("parcel is already %s", verb)
		}
		now := s.now()
		if err := s.applyTransition(p, target, now); err != nil {
			return nil, err
		}
		if err := tx.Update(ctx, p); err != nil {
			return nil, err
		}
		return recordStatus(ctx, tx, p, actor, p.CurrentLocation, reason, now)
	})
	if err != nil {
		return nil, err
	}
	s.logMutation("parcel_"+verb, p, actor)
	return p, nil
}

func (s *Service) checkPersonnel(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFoundf("delivery personnel %s", id)
	}
	if u.Role != domain.RoleDeliveryPersonnel {
		return apperr.Invalidf("user %s is not delivery personnel", id)
	}
	if !u.Usable() {
		return apperr.Invalidf("delivery personnel %s must be verified and active", id)
	}
	return nil
}

func normalizeUpdate(upd *StatusUpdate) error {
	if upd.Status == nil && upd.Location == nil && upd.PersonnelID == nil {
		return apperr.Invalidf("one of status, location or delivery personnel is required")
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return apperr.Invalidf("unknown status %q", *upd.Status)
	}
	if upd.PersonnelID != nil && *upd.PersonnelID == uuid.Nil {
		return apperr.Invalidf("delivery personnel id is required")
	}

	var err error
	if upd.Location, err = cleanText("location", upd.Location, maxLocationLen); err != nil {
		return err
	}
	if upd.Note, err = cleanText("note", upd.Note, maxNoteLen); err != nil {
		return err
	}
	if upd.Status == nil && upd.Location == nil && upd.PersonnelID == nil {
		return apperr.Invalidf("location cannot be blank")
	}
	return nil
}

func updateSummary(upd StatusUpdate, st domain.ParcelStatus, assigned bool) string {
	var parts []string
	if upd.Status != nil {
		parts = append(parts, fmt.Sprintf("status changed to %s", st))
	}
	if upd.Location != nil {
		parts = append(parts, "location updated")
	}
	if assigned {
		parts = append(parts, "delivery personnel assigned")
	}
	s := strings.Join(parts, ", ")
	return strings.ToUpper(s[:1]) + s[1:]
}
