package service

import (
	"context"
	"errors"

	"kisansetu-be/internal/config"
	"kisansetu-be/internal/dto"
	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/internal/pkg/serverutils"
)

const homeModule = "HOME"

type IHomeService interface {
	// Home gathers what the landing screen shows: the latest profile, its place
	// name and the current weather there.
	Home(ctx context.Context) (*dto.HomeResponse, error)
}

type homeService struct {
	profiles IProfileService
	location ILocationService
	cfg      config.GeoConfig
	logger   logger.ILogger
}

func NewHomeService(profiles IProfileService, location ILocationService, cfg config.GeoConfig, log logger.ILogger) IHomeService {
	return &homeService{profiles: profiles, location: location, cfg: cfg, logger: log}
}

func (s *homeService) Home(ctx context.Context) (*dto.HomeResponse, error) {
	profile, err := s.profiles.Latest(ctx)
	if err != nil && !errors.Is(err, serverutils.ErrNotFound) {
		return nil, err
	}

	lat, lng, ok := s.cfg.DefaultLat, s.cfg.DefaultLng, s.cfg.UseDefault
	owner := ""
	if profile != nil {
		owner = profile.Name
		if profile.Latitude != nil && profile.Longitude != nil {
			lat, lng, ok = *profile.Latitude, *profile.Longitude, true
		}
	}

	res := &dto.HomeResponse{Profile: profile}
	if !ok {
		res.Place = fallbackPlace(owner)
		return res, nil
	}

	place, err := s.location.ReversePlace(ctx, lat, lng, owner)
	if err != nil {
		return nil, err
	}
	res.Place = place.Name

	weather, err := s.location.CurrentWeather(ctx, lat, lng)
	if err != nil {
		s.logger.Warn(homeModule, "Weather unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		res.Weather = weather
	}
	return res, nil
}
