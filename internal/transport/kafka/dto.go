package kafka

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"service-parcel-tracking/internal/service/scans"
)

// ScanDTO is the wire form of a field scan.
type ScanDTO struct {
	TrackingID  string    `json:"tracking_id"`
	Status      string    `json:"status"`
	Location    *string   `json:"location,omitempty"`
	Note        *string   `json:"note,omitempty"`
	PersonnelID string    `json:"personnel_id,omitempty"`
	ScannedAt   time.Time `json:"scanned_at"`
}

// ToDomain converts ScanDTO to scans.Scan. Malformed payloads are permanent errors.
func ToDomain(dto ScanDTO) (scans.Scan, error) {
	s := scans.Scan{
		TrackingID: strings.TrimSpace(dto.TrackingID),
		Status:     strings.TrimSpace(dto.Status),
		Location:   dto.Location,
		Note:       dto.Note,
		ScannedAt:  dto.ScannedAt,
	}
	if s.TrackingID == "" {
		return scans.Scan{}, Permanent(fmt.Errorf("empty tracking_id"))
	}
	if raw := strings.TrimSpace(dto.PersonnelID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return scans.Scan{}, Permanent(fmt.Errorf("bad personnel_id %q: %w", raw, err))
		}
		s.PersonnelID = &id
	}
	return s, nil
}
