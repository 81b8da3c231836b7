package specification

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type ByPhone struct {
	Phone string
}

func (s ByPhone) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("phone = ?", s.Phone)
}

// NameContains is a case-insensitive substring match.
type NameContains struct {
	Name string
}

func (s NameContains) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name ILIKE ?", "%"+escapeLike(s.Name)+"%")
}

type HasCoordinates struct{}

func (s HasCoordinates) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("latitude IS NOT NULL AND longitude IS NOT NULL")
}

// WithinBox keeps rows whose coordinates fall inside the box, edges included.
type WithinBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

func (s WithinBox) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?", s.MinLat, s.MaxLat, s.MinLng, s.MaxLng)
}

type CreatedSince struct {
	Time time.Time
}

func (s CreatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Time)
}

// Latest orders newest first and keeps one row.
type Latest struct{}

func (s Latest) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Limit(1)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
