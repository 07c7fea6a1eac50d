package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailabilityStatus(t *testing.T) {
	tests := []struct {
		available int
		want      string
	}{
		{15, StationAvailabilityHigh},
		{11, StationAvailabilityHigh},
		{10, StationAvailabilityMedium},
		{5, StationAvailabilityMedium},
		{4, StationAvailabilityLow},
		{0, StationAvailabilityLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AvailabilityStatus(tt.available), "available=%d", tt.available)
	}
}

func TestOccupancyPercent(t *testing.T) {
	assert.Equal(t, 75.0, OccupancyPercent(20, 5))
	assert.Equal(t, 0.0, OccupancyPercent(20, 20))
	assert.Equal(t, 100.0, OccupancyPercent(20, 0))
	// Unknown slot counts report zero rather than dividing by zero.
	assert.Equal(t, 0.0, OccupancyPercent(0, 5))
}
