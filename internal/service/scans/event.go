package scans

import (
	"time"

	"github.com/google/uuid"
)

// Scan is a single field scan reported by handheld devices at depots and on routes.
type Scan struct {
	TrackingID  string
	Status      string
	Location    *string
	Note        *string
	PersonnelID *uuid.UUID
	ScannedAt   time.Time
}
