package kafka_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"service-parcel-tracking/internal/service/scans"
	"service-parcel-tracking/internal/transport/kafka"
)

func TestToDomain_TrimsAndCopiesFields(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	loc := "Hub 2"
	personnel := uuid.New()

	got, err := kafka.ToDomain(kafka.ScanDTO{
		TrackingID:  "  TRK-20260310-ABC123  ",
		Status:      "  picked  ",
		Location:    &loc,
		PersonnelID: " " + personnel.String(),
		ScannedAt:   ts,
	})
	require.NoError(t, err)
	require.Equal(t, scans.Scan{
		TrackingID:  "TRK-20260310-ABC123",
		Status:      "picked",
		Location:    &loc,
		PersonnelID: &personnel,
		ScannedAt:   ts,
	}, got)
}

func TestToDomain_Rejects(t *testing.T) {
	t.Parallel()

	for _, dto := range []kafka.ScanDTO{
		{TrackingID: "", Status: "picked"},
		{TrackingID: "TRK-20260310-ABC123", PersonnelID: "not-a-uuid"},
	} {
		_, err := kafka.ToDomain(dto)
		require.True(t, kafka.IsPermanent(err), "%+v", dto)
	}
}

func TestPermanentError_Wrapping(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("empty tracking_id")
	err := fmt.Errorf("decode: %w", kafka.Permanent(cause))

	require.True(t, kafka.IsPermanent(err))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "decode: unprocessable scan: empty tracking_id", err.Error())
	require.False(t, kafka.IsPermanent(cause))
	require.Equal(t, "unprocessable scan", kafka.PermanentError{}.Error())
}
