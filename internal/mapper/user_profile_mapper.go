package mapper

import (
	"kisansetu-be/internal/entity"
	"kisansetu-be/internal/model"
)

type UserProfileMapper struct{}

func NewUserProfileMapper() *UserProfileMapper {
	return &UserProfileMapper{}
}

func (m *UserProfileMapper) ToEntity(p *model.UserProfile) *entity.UserProfile {
	if p == nil {
		return nil
	}
	crops := []string(p.Crops)
	if crops == nil {
		crops = []string{}
	}
	return &entity.UserProfile{
		Id:        p.Id,
		Name:      p.Name,
		Phone:     p.Phone,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		SoilType:  p.SoilType,
		Crops:     crops,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m *UserProfileMapper) ToModel(p *entity.UserProfile) *model.UserProfile {
	if p == nil {
		return nil
	}
	return &model.UserProfile{
		Id:        p.Id,
		Name:      p.Name,
		Phone:     p.Phone,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		SoilType:  p.SoilType,
		Crops:     p.Crops,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m *UserProfileMapper) ToEntities(profiles []*model.UserProfile) []*entity.UserProfile {
	out := make([]*entity.UserProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, m.ToEntity(p))
	}
	return out
}
