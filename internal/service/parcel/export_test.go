package parcel

import "time"

func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) SetTrackingIDs(gen func(time.Time) (string, error)) { s.newTrackingID = gen }
