package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSKServiceList(t *testing.T) {
	center := &DSKCenter{Services: `["activation","repair"]`}
	assert.Equal(t, []string{"activation", "repair"}, center.ServiceList())

	empty := &DSKCenter{}
	assert.Nil(t, empty.ServiceList())

	// Malformed JSON yields an empty list, not a panic or error.
	broken := &DSKCenter{Services: `{not json`}
	assert.Nil(t, broken.ServiceList())
}

func TestDSKOffersService(t *testing.T) {
	center := &DSKCenter{Services: `["activation","battery_replacement"]`}

	assert.True(t, center.OffersService(DSKServiceActivation))
	assert.True(t, center.OffersService(DSKServiceBatteryReplacement))
	assert.False(t, center.OffersService(DSKServiceRepair))
}
