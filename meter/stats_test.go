package meter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsUpdate(t *testing.T) {
	var s Stats
	assert.True(t, s.Empty())

	for _, r := range []float32{10, 20, 30} {
		s.Update(r)
	}

	snap := s.Snapshot()
	assert.False(t, snap.Empty())
	assert.Equal(t, float32(10), snap.Min)
	assert.Equal(t, float32(30), snap.Max)
	// (30 + (20 + 10) / 2) / 2, not the arithmetic mean
	assert.Equal(t, float32(22.5), snap.Avg)
	assert.Equal(t, 3, snap.Count)
}

func TestStatsFirstReading(t *testing.T) {
	var s Stats
	s.Update(42)
	assert.Equal(t, Stats{Min: 42, Max: 42, Avg: 42, Count: 1}, s.Snapshot())
}

func TestStatsSnapshotIsCopy(t *testing.T) {
	var s Stats
	s.Update(5)
	snap := s.Snapshot()
	s.Update(500)
	assert.Equal(t, float32(5), snap.Max)
	assert.Equal(t, float32(500), s.Max)
}
