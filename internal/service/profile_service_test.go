package service

import (
	"context"
	"testing"
	"time"

	"kisansetu-be/internal/dto"
	"kisansetu-be/internal/entity"
	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/internal/pkg/serverutils"
	"kisansetu-be/internal/repository/contract"
	"kisansetu-be/internal/repository/specification"
	"kisansetu-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileFixture() (*profileService, *fakeProfileRepository, *events.RecordingPublisher) {
	repo := &fakeProfileRepository{}
	pub := &events.RecordingPublisher{}
	svc := NewProfileService(&fakeRepositoryFactory{repo: repo}, pub, time.Hour, 10, logger.NewNopLogger())
	return svc.(*profileService), repo, pub
}

func TestRegisterProfile(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc, repo, pub := newProfileFixture()

	res, err := svc.Register(context.Background(), &dto.RegisterProfileRequest{
		Name:      "  Ravi ",
		Phone:     "9876543210",
		Latitude:  ptr(16.3),
		Longitude: ptr(80.45),
	})
	require.NoError(t, err)

	assert.Equal(t, "Ravi", res.Profile.Name)
	assert.NotEqual(t, uuid.Nil, res.Profile.Id)
	assert.Equal(t, []string{}, res.Profile.Crops)
	assert.NotEmpty(t, res.Token)
	require.Len(t, repo.profiles, 1)

	published := pub.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.TypeProfileRegistered, published[0].EventType())
	assert.Equal(t, 16.3, published[0].Payload()["latitude"])
}

func TestRegisterProfileWithoutSecretStillStores(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	svc, repo, _ := newProfileFixture()

	res, err := svc.Register(context.Background(), &dto.RegisterProfileRequest{Name: "Asha", Phone: "9876543211"})
	require.NoError(t, err)
	assert.Empty(t, res.Token)
	assert.Len(t, repo.profiles, 1)
}

func TestRegisterDuplicatePhone(t *testing.T) {
	svc, repo, pub := newProfileFixture()
	repo.createErr = contract.ErrDuplicate

	_, err := svc.Register(context.Background(), &dto.RegisterProfileRequest{Name: "Asha", Phone: "9876543211"})
	assert.ErrorIs(t, err, serverutils.ErrConflict)
	assert.Empty(t, pub.Events())
}

func TestLatestAndGetNotFound(t *testing.T) {
	svc, _, _ := newProfileFixture()

	_, err := svc.Latest(context.Background())
	assert.ErrorIs(t, err, serverutils.ErrNotFound)

	_, err = svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, serverutils.ErrNotFound)

	stored, err := svc.LatestProfile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestLatestProfileForResolver(t *testing.T) {
	svc, repo, _ := newProfileFixture()
	repo.one = &entity.UserProfile{Id: uuid.New(), Latitude: ptr(12.9), Longitude: ptr(77.6)}

	stored, err := svc.LatestProfile(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 12.9, *stored.Latitude)
	assert.Equal(t, specification.Latest{}, repo.lastSpecs[0])
}

func TestListDefaultsPagination(t *testing.T) {
	svc, repo, _ := newProfileFixture()

	_, err := svc.List(context.Background(), &dto.ListProfilesRequest{Page: 3})
	require.NoError(t, err)

	require.Len(t, repo.lastSpecs, 2)
	assert.Equal(t, specification.OrderBy{Field: "created_at", Desc: true}, repo.lastSpecs[0])
	assert.Equal(t, specification.Pagination{Limit: defaultPageSize, Offset: 2 * defaultPageSize}, repo.lastSpecs[1])
}

func TestNearbyFiltersAndSorts(t *testing.T) {
	svc, repo, _ := newProfileFixture()
	repo.profiles = []*entity.UserProfile{
		{Id: uuid.New(), Name: "far", Latitude: ptr(16.40), Longitude: ptr(80.4575)},
		{Id: uuid.New(), Name: "near", Latitude: ptr(16.30), Longitude: ptr(80.4575)},
		{Id: uuid.New(), Name: "mid", Latitude: ptr(16.33), Longitude: ptr(80.4575)},
	}

	res, err := svc.Nearby(context.Background(), &dto.NearbyRequest{Latitude: 16.2991, Longitude: 80.4575})
	require.NoError(t, err)

	require.Len(t, res, 2, "rows beyond 10 km are dropped")
	assert.Equal(t, "near", res[0].Name)
	assert.Equal(t, "mid", res[1].Name)
	assert.Less(t, res[0].DistanceKm, 1.0)

	box, ok := repo.lastSpecs[1].(specification.WithinBox)
	require.True(t, ok)
	assert.InDelta(t, 16.2991-10/kmPerDegreeLat, box.MinLat, 1e-9)
}

func TestStatsCountsToday(t *testing.T) {
	svc, repo, _ := newProfileFixture()
	repo.counts = []int64{42, 3}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.TotalProfiles)
	assert.Equal(t, int64(3), stats.RegisteredToday)
}

func TestHaversine(t *testing.T) {
	assert.InDelta(t, 0, HaversineKm(16.3, 80.4, 16.3, 80.4), 1e-9)
	// One degree of latitude is about 111 km.
	assert.InDelta(t, 111.19, HaversineKm(0, 0, 1, 0), 0.1)
}

func TestBoundingBoxAtPole(t *testing.T) {
	box := BoundingBox(90, 0, 10)
	assert.Equal(t, -180.0, box.MinLng)
	assert.Equal(t, 180.0, box.MaxLng)
}
