package scans

import (
	"context"
	"strings"

	"service-parcel-tracking/internal/domain"
)

type actionFunc func(context.Context, Scan) error

type actionFactory struct {
	byStatus map[string]actionFunc
}

// Devices send underscores or spaces; some older firmware sends past-tense verbs.
func newActionFactory(onStatus func(domain.ParcelStatus) actionFunc, onCheckpoint actionFunc) *actionFactory {
	f := &actionFactory{byStatus: map[string]actionFunc{
		"":           onCheckpoint,
		"checkpoint": onCheckpoint,
		"location":   onCheckpoint,
	}}
	for _, st := range []domain.ParcelStatus{
		domain.StatusPicked,
		domain.StatusDispatched,
		domain.StatusInTransit,
		domain.StatusOnHold,
		domain.StatusRescheduled,
		domain.StatusDelivered,
		domain.StatusReturned,
	} {
		f.byStatus[string(st)] = onStatus(st)
	}
	f.byStatus["pickup"] = f.byStatus[string(domain.StatusPicked)]
	f.byStatus["picked-up"] = f.byStatus[string(domain.StatusPicked)]
	f.byStatus["hold"] = f.byStatus[string(domain.StatusOnHold)]
	f.byStatus["deliver"] = f.byStatus[string(domain.StatusDelivered)]
	return f
}

func (f *actionFactory) get(status string) (actionFunc, bool) {
	fn, ok := f.byStatus[normalizeStatus(status)]
	return fn, ok
}

func normalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "-", " ", "-").Replace(s)
}
