package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserProfile struct {
	Id        uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string                      `gorm:"type:varchar(255);not null;index"`
	Phone     string                      `gorm:"type:varchar(32);uniqueIndex;not null"`
	Latitude  *float64                    `gorm:"type:double precision"`
	Longitude *float64                    `gorm:"type:double precision"`
	SoilType  *string                     `gorm:"type:varchar(100)"`
	Crops     datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt time.Time                   `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt              `gorm:"index"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
