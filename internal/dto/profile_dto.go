package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterProfileRequest struct {
	Name      string   `json:"name" validate:"required,min=2,max=255"`
	Phone     string   `json:"phone" validate:"required,min=10,max=15,numeric"`
	Latitude  *float64 `json:"latitude" validate:"required_with=Longitude,omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`
	SoilType  *string  `json:"soil_type" validate:"omitempty,max=100"`
	Crops     []string `json:"crops" validate:"omitempty,max=20,dive,min=1,max=50"`
}

type ProfileResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	SoilType  *string   `json:"soil_type"`
	Crops     []string  `json:"crops"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterProfileResponse struct {
	Profile *ProfileResponse `json:"profile"`
	Token   string           `json:"token"`
}

type NearbyProfileResponse struct {
	ProfileResponse
	DistanceKm float64 `json:"distance_km"`
}

type ProfileStatsResponse struct {
	TotalProfiles   int64 `json:"total_profiles"`
	RegisteredToday int64 `json:"registered_today"`
}

type ListProfilesRequest struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

type NearbyRequest struct {
	Latitude  float64 `query:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `query:"lng" validate:"gte=-180,lte=180"`
	RadiusKm  float64 `query:"radius" validate:"omitempty,gt=0,lte=500"`
}
