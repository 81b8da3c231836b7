package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserProfile struct {
	Id        uuid.UUID
	Name      string
	Phone     string
	Latitude  *float64
	Longitude *float64
	SoilType  *string
	Crops     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasLocation reports whether both coordinates were captured at registration.
func (p *UserProfile) HasLocation() bool {
	return p != nil && p.Latitude != nil && p.Longitude != nil
}
