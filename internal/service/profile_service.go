package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"kisansetu-be/internal/dto"
	"kisansetu-be/internal/entity"
	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/internal/pkg/serverutils"
	"kisansetu-be/internal/repository/contract"
	"kisansetu-be/internal/repository/specification"
	"kisansetu-be/internal/repository/unitofwork"
	"kisansetu-be/pkg/advisory/geo"
	"kisansetu-be/pkg/events"

	"github.com/google/uuid"
)

const (
	profileModule = "PROFILE"

	defaultPageSize = 20
	earthRadiusKm   = 6371.0
	kmPerDegreeLat  = 111.32
)

type IProfileService interface {
	Register(ctx context.Context, req *dto.RegisterProfileRequest) (*dto.RegisterProfileResponse, error)
	List(ctx context.Context, req *dto.ListProfilesRequest) ([]*dto.ProfileResponse, error)
	Latest(ctx context.Context) (*dto.ProfileResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProfileResponse, error)
	FindByPhone(ctx context.Context, phone string) (*dto.ProfileResponse, error)
	SearchByName(ctx context.Context, name string) ([]*dto.ProfileResponse, error)
	Nearby(ctx context.Context, req *dto.NearbyRequest) ([]*dto.NearbyProfileResponse, error)
	Stats(ctx context.Context) (*dto.ProfileStatsResponse, error)

	// LatestProfile backs the geo resolver's stored-profile tier.
	LatestProfile(ctx context.Context) (*geo.StoredProfile, error)
}

type profileService struct {
	uowFactory    unitofwork.RepositoryFactory
	publisher     events.Publisher
	tokenTTL      time.Duration
	defaultRadius float64
	logger        logger.ILogger
}

func NewProfileService(
	uowFactory unitofwork.RepositoryFactory,
	publisher events.Publisher,
	tokenTTL time.Duration,
	defaultRadiusKm float64,
	log logger.ILogger,
) IProfileService {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = 10
	}
	return &profileService{
		uowFactory:    uowFactory,
		publisher:     publisher,
		tokenTTL:      tokenTTL,
		defaultRadius: defaultRadiusKm,
		logger:        log,
	}
}

func (s *profileService) repo(ctx context.Context) contract.UserProfileRepository {
	return s.uowFactory.NewUnitOfWork(ctx).UserProfileRepository()
}

func (s *profileService) Register(ctx context.Context, req *dto.RegisterProfileRequest) (*dto.RegisterProfileResponse, error) {
	profile := &entity.UserProfile{
		Id:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		SoilType:  req.SoilType,
		Crops:     req.Crops,
	}

	if err := s.repo(ctx).Create(ctx, profile); err != nil {
		if err == contract.ErrDuplicate {
			return nil, serverutils.Conflict("phone already registered")
		}
		return nil, err
	}

	s.logger.Info(profileModule, "Profile registered", map[string]interface{}{
		"profile_id":   profile.Id.String(),
		"has_location": profile.HasLocation(),
	})

	if err := s.publisher.Publish(ctx, events.ProfileRegistered(profile.Id.String(), profile.Latitude, profile.Longitude)); err != nil {
		s.logger.Warn(profileModule, "Failed to publish profile event", map[string]interface{}{"error": err.Error()})
	}

	token, err := serverutils.GenerateToken(profile.Id.String(), s.tokenTTL)
	if err != nil {
		s.logger.Warn(profileModule, "Token not issued", map[string]interface{}{"error": err.Error()})
	}

	return &dto.RegisterProfileResponse{Profile: toProfileResponse(profile), Token: token}, nil
}

func (s *profileService) List(ctx context.Context, req *dto.ListProfilesRequest) ([]*dto.ProfileResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	profiles, err := s.repo(ctx).FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	if err != nil {
		return nil, err
	}
	return toProfileResponses(profiles), nil
}

func (s *profileService) Latest(ctx context.Context) (*dto.ProfileResponse, error) {
	profile, err := s.repo(ctx).FindOne(ctx, specification.Latest{})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, serverutils.NotFound("profile")
	}
	return toProfileResponse(profile), nil
}

func (s *profileService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProfileResponse, error) {
	profile, err := s.repo(ctx).FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, serverutils.NotFound("profile")
	}
	return toProfileResponse(profile), nil
}

func (s *profileService) FindByPhone(ctx context.Context, phone string) (*dto.ProfileResponse, error) {
	profile, err := s.repo(ctx).FindOne(ctx, specification.ByPhone{Phone: strings.TrimSpace(phone)})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, serverutils.NotFound("profile")
	}
	return toProfileResponse(profile), nil
}

func (s *profileService) SearchByName(ctx context.Context, name string) ([]*dto.ProfileResponse, error) {
	profiles, err := s.repo(ctx).FindAll(ctx,
		specification.NameContains{Name: strings.TrimSpace(name)},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	return toProfileResponses(profiles), nil
}

// Nearby narrows with a bounding box in SQL and then keeps rows within the
// great-circle radius, closest first.
func (s *profileService) Nearby(ctx context.Context, req *dto.NearbyRequest) ([]*dto.NearbyProfileResponse, error) {
	radius := req.RadiusKm
	if radius <= 0 {
		radius = s.defaultRadius
	}

	profiles, err := s.repo(ctx).FindAll(ctx,
		specification.HasCoordinates{},
		BoundingBox(req.Latitude, req.Longitude, radius),
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.NearbyProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		d := HaversineKm(req.Latitude, req.Longitude, *p.Latitude, *p.Longitude)
		if d > radius {
			continue
		}
		out = append(out, &dto.NearbyProfileResponse{ProfileResponse: *toProfileResponse(p), DistanceKm: math.Round(d*100) / 100})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}

func (s *profileService) Stats(ctx context.Context) (*dto.ProfileStatsResponse, error) {
	repo := s.repo(ctx)

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := repo.Count(ctx, specification.CreatedSince{Time: midnight})
	if err != nil {
		return nil, err
	}

	return &dto.ProfileStatsResponse{TotalProfiles: total, RegisteredToday: today}, nil
}

func (s *profileService) LatestProfile(ctx context.Context) (*geo.StoredProfile, error) {
	profile, err := s.repo(ctx).FindOne(ctx, specification.Latest{})
	if err != nil || profile == nil {
		return nil, err
	}
	return &geo.StoredProfile{Latitude: profile.Latitude, Longitude: profile.Longitude}, nil
}

// BoundingBox returns the lat/lng box that contains every point within radiusKm.
func BoundingBox(lat, lng, radiusKm float64) specification.WithinBox {
	dLat := radiusKm / kmPerDegreeLat
	cos := math.Cos(lat * math.Pi / 180)
	dLng := 180.0
	if cos > 1e-6 {
		dLng = math.Min(radiusKm/(kmPerDegreeLat*cos), 180)
	}
	return specification.WithinBox{
		MinLat: lat - dLat, MaxLat: lat + dLat,
		MinLng: lng - dLng, MaxLng: lng + dLng,
	}
}

func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

func toProfileResponse(p *entity.UserProfile) *dto.ProfileResponse {
	crops := p.Crops
	if crops == nil {
		crops = []string{}
	}
	return &dto.ProfileResponse{
		Id:        p.Id,
		Name:      p.Name,
		Phone:     p.Phone,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		SoilType:  p.SoilType,
		Crops:     crops,
		CreatedAt: p.CreatedAt,
	}
}

func toProfileResponses(profiles []*entity.UserProfile) []*dto.ProfileResponse {
	out := make([]*dto.ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}
	return out
}
