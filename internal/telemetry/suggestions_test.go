package telemetry

import (
	"testing"

	"smartbin-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSuggestAttributes(t *testing.T) {
	s := SuggestAttributes(models.Device{DeviceID: "dev-7", Name: "Lobby Recycling Large"})
	assert.True(t, s.Matched)
	assert.Equal(t, "Lobby Recycling Large", s.Name)
	assert.Equal(t, "Lobby", s.Location)
	assert.Equal(t, []string{"recyclable"}, s.WasteTypes)
	assert.Equal(t, 240.0, s.Capacity)
}

func TestSuggestAttributesCollectsWasteTypes(t *testing.T) {
	s := SuggestAttributes(models.Device{DeviceID: "kitchen-paper-glass"})
	assert.Equal(t, "Kitchen", s.Location)
	assert.Equal(t, []string{"paper", "glass"}, s.WasteTypes)
	assert.Equal(t, "kitchen-paper-glass", s.Name)
}

func TestSuggestAttributesNoMatch(t *testing.T) {
	s := SuggestAttributes(models.Device{DeviceID: "x-91"})
	assert.False(t, s.Matched)
	assert.Equal(t, "x-91", s.Name)
	assert.Empty(t, s.Location)
	assert.Equal(t, []string{"general"}, s.WasteTypes)
	assert.Equal(t, 120.0, s.Capacity)
}
