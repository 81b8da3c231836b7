package store

import (
	"testing"

	"kisansetu-be/pkg/advisory"
	"kisansetu-be/pkg/advisory/soil"

	"github.com/stretchr/testify/assert"
)

func TestSessionCachesLocationAndSoil(t *testing.T) {
	s := NewSession("id", "user")

	_, ok := s.Coordinates()
	assert.False(t, ok)

	s.SetCoordinates(advisory.Coordinates{Latitude: 16.3, Longitude: 80.4})
	s.SetSoilProfile(soil.Profile{SoilType: "Black"})

	p, ok := s.SoilProfile()
	assert.True(t, ok)
	assert.Equal(t, "Black", p.SoilType)

	s.SetCoordinates(advisory.Coordinates{Latitude: 20, Longitude: 78})
	_, ok = s.SoilProfile()
	assert.False(t, ok, "moving clears the cached soil")
}

func TestSessionInflightCounter(t *testing.T) {
	s := NewSession("id", "")

	assert.Equal(t, 0, s.BeginAsk())
	assert.Equal(t, 1, s.BeginAsk())
	s.EndAsk()
	s.EndAsk()
	assert.Equal(t, 0, s.BeginAsk())
}
