package parcel

import (
	"context"
	"strings"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/logx"
)

// Track returns the public view of a parcel. It needs no actor.
// Views are served from the cache when possible; cache errors fall back to storage.
func (s *Service) Track(ctx context.Context, trackingID string) (domain.TrackingView, error) {
	trackingID = strings.ToUpper(strings.TrimSpace(trackingID))
	if !domain.ValidateTrackingID(trackingID) {
		return domain.TrackingView{}, apperr.Invalidf("invalid tracking id %q", trackingID)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cached, err := s.cache.Get(ctx, trackingID)
	if err != nil {
		s.logger.Warn("tracking cache read failed", logx.String("tracking_id", trackingID), logx.Err(err))
	}
	if cached != nil {
		return *cached, nil
	}

	p, err := s.repo.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return domain.TrackingView{}, err
	}
	if p == nil {
		return domain.TrackingView{}, apperr.NotFoundf("parcel with tracking id %s", trackingID)
	}

	view := p.ToTrackingView()
	if err := s.cache.Set(ctx, view); err != nil {
		s.logger.Warn("tracking cache write failed", logx.String("tracking_id", trackingID), logx.Err(err))
	}
	return view, nil
}
