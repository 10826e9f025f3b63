package meter

// Stats holds the minimum, maximum and average of the readings seen
// during a run.
//
// Avg is not the arithmetic mean: every reading is blended with the
// previous average as (reading + avg) / 2, which weights recent readings
// much higher than old ones.
type Stats struct {
	Min   float32
	Max   float32
	Avg   float32
	Count int
}

// Update adds a reading to the statistics.
func (s *Stats) Update(reading float32) {
	if s.Count == 0 {
		s.Min = reading
		s.Max = reading
		s.Avg = reading
		s.Count = 1
		return
	}
	if reading < s.Min {
		s.Min = reading
	}
	if reading > s.Max {
		s.Max = reading
	}
	s.Avg = (reading + s.Avg) / 2
	s.Count++
}

// Snapshot returns a copy of the current statistics.
func (s *Stats) Snapshot() Stats {
	return *s
}

// Empty reports whether no reading has been seen yet.
func (s Stats) Empty() bool {
	return s.Count == 0
}
