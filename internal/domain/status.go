package domain

// ParcelStatus represents a parcel lifecycle state.
type ParcelStatus string

// List of parcel statuses
const (
	StatusRequested   ParcelStatus = "requested"
	StatusApproved    ParcelStatus = "approved"
	StatusPicked      ParcelStatus = "picked"
	StatusDispatched  ParcelStatus = "dispatched"
	StatusInTransit   ParcelStatus = "in-transit"
	StatusRescheduled ParcelStatus = "rescheduled"
	StatusDelivered   ParcelStatus = "delivered"
	StatusReturned    ParcelStatus = "returned"
	StatusCancelled   ParcelStatus = "cancelled"
	StatusBlocked     ParcelStatus = "blocked"
	StatusFlagged     ParcelStatus = "flagged"
	StatusOnHold      ParcelStatus = "on-hold"
)

// allStatuses keeps declaration order for stats and listings.
var allStatuses = [...]ParcelStatus{
	StatusRequested, StatusApproved, StatusPicked, StatusDispatched, StatusInTransit, StatusRescheduled,
	StatusDelivered, StatusReturned, StatusCancelled, StatusBlocked, StatusFlagged, StatusOnHold,
}

// transitions is the parcel state machine: source -> allowed targets.
// Delivered is terminal.
var transitions = map[ParcelStatus][]ParcelStatus{
	StatusRequested:   {StatusApproved, StatusCancelled, StatusOnHold},
	StatusApproved:    {StatusPicked, StatusCancelled, StatusFlagged, StatusOnHold},
	StatusPicked:      {StatusDispatched, StatusReturned, StatusFlagged, StatusOnHold},
	StatusDispatched:  {StatusInTransit, StatusReturned, StatusFlagged, StatusOnHold},
	StatusInTransit:   {StatusDelivered, StatusReturned, StatusRescheduled, StatusFlagged, StatusOnHold},
	StatusRescheduled: {StatusInTransit, StatusDelivered, StatusCancelled, StatusOnHold},
	StatusDelivered:   {},
	StatusReturned:    {StatusRequested},
	StatusCancelled:   {StatusRequested},
	StatusFlagged:     {StatusBlocked, StatusCancelled, StatusOnHold},
	StatusBlocked:     {StatusApproved, StatusCancelled, StatusOnHold},
	StatusOnHold:      {StatusApproved, StatusCancelled, StatusRescheduled},
}

// transitEligible lists statuses during which delivery personnel may be assigned.
var transitEligible = map[ParcelStatus]struct{}{
	StatusApproved:    {},
	StatusPicked:      {},
	StatusDispatched:  {},
	StatusInTransit:   {},
	StatusRescheduled: {},
}

// AllStatuses returns every parcel status in lifecycle order.
func AllStatuses() []ParcelStatus {
	out := make([]ParcelStatus, len(allStatuses))
	copy(out, allStatuses[:])
	return out
}

// Valid checks if the ParcelStatus is known.
func (s ParcelStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// AllowedTransitions returns a copy of the targets reachable from s.
func (s ParcelStatus) AllowedTransitions() []ParcelStatus {
	next := transitions[s]
	out := make([]ParcelStatus, len(next))
	copy(out, next)
	return out
}

// CanTransitionTo reports whether the move s -> to is in the table.
func (s ParcelStatus) CanTransitionTo(to ParcelStatus) bool {
	for _, v := range transitions[s] {
		if v == to {
			return true
		}
	}
	return false
}

// TransitEligible reports whether personnel may be assigned in this status.
func (s ParcelStatus) TransitEligible() bool {
	_, ok := transitEligible[s]
	return ok
}

// Terminal reports whether no transitions leave s.
func (s ParcelStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}
