//go:generate mockgen -source=contracts.go -destination=scans_mocks_test.go -package=scans_test

package scans

import (
	"context"

	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/service/parcel"
)

// Workflow is the subset of the parcel engine needed to apply scans.
type Workflow interface {
	UpdateStatusByTrackingID(ctx context.Context, actor domain.Actor, trackingID string, upd parcel.StatusUpdate) (*domain.Parcel, error)
}
