package geo

import (
	"context"
	"errors"
	"testing"

	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/pkg/advisory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	profile *StoredProfile
	err     error
}

func (f fakeProfiles) LatestProfile(ctx context.Context) (*StoredProfile, error) {
	return f.profile, f.err
}

type fakeLocator struct {
	perm      advisory.Permission
	pos       advisory.Coordinates
	fixErr    error
	permCalls int
	fixCalls  int
}

func (f *fakeLocator) RequestPermission(ctx context.Context) (advisory.Permission, error) {
	f.permCalls++
	return f.perm, nil
}

func (f *fakeLocator) CurrentPosition(ctx context.Context, accuracy Accuracy) (advisory.Coordinates, error) {
	f.fixCalls++
	return f.pos, f.fixErr
}

func ptr(f float64) *float64 { return &f }

var guntur = advisory.Coordinates{Latitude: 16.2991, Longitude: 80.4575}

func TestResolvePrefersStoredProfile(t *testing.T) {
	profiles := fakeProfiles{profile: &StoredProfile{Latitude: ptr(17.385), Longitude: ptr(78.4867)}}
	loc := &fakeLocator{perm: advisory.PermissionGranted}

	r := NewResolver(profiles, logger.NewNopLogger())
	c, err := r.Resolve(context.Background(), loc)

	require.NoError(t, err)
	assert.Equal(t, advisory.Coordinates{Latitude: 17.385, Longitude: 78.4867}, c)
	assert.Zero(t, loc.permCalls, "device must not be asked when the profile has coordinates")
}

func TestResolveFallsThroughToDevice(t *testing.T) {
	tests := []struct {
		name     string
		profiles ProfileStore
	}{
		{name: "no profile", profiles: fakeProfiles{}},
		{name: "profile without coordinates", profiles: fakeProfiles{profile: &StoredProfile{Latitude: ptr(10)}}},
		{name: "profile store error", profiles: fakeProfiles{err: errors.New("db down")}},
		{name: "nil store", profiles: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := &fakeLocator{perm: advisory.PermissionGranted, pos: advisory.Coordinates{Latitude: 19.07, Longitude: 72.87}}
			c, err := NewResolver(tt.profiles, logger.NewNopLogger()).Resolve(context.Background(), loc)

			require.NoError(t, err)
			assert.Equal(t, 19.07, c.Latitude)
			assert.Equal(t, 1, loc.fixCalls)
		})
	}
}

func TestResolvePermissionDenied(t *testing.T) {
	loc := &fakeLocator{perm: advisory.PermissionDenied}

	_, err := NewResolver(fakeProfiles{}, logger.NewNopLogger(), WithFallback(guntur)).Resolve(context.Background(), loc)

	assert.ErrorIs(t, err, advisory.ErrNoLocationAvailable)
	assert.Zero(t, loc.fixCalls)
}

func TestResolveFixFailure(t *testing.T) {
	loc := &fakeLocator{perm: advisory.PermissionGranted, fixErr: errors.New("location services off")}

	_, err := NewResolver(fakeProfiles{}, logger.NewNopLogger()).Resolve(context.Background(), loc)
	assert.ErrorIs(t, err, advisory.ErrNoLocationAvailable)

	c, err := NewResolver(fakeProfiles{}, logger.NewNopLogger(), WithFallback(guntur)).Resolve(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, guntur, c)
}

func TestResolveRejectsOutOfRangeFix(t *testing.T) {
	loc := &fakeLocator{perm: advisory.PermissionGranted, pos: advisory.Coordinates{Latitude: 120, Longitude: 10}}

	_, err := NewResolver(nil, logger.NewNopLogger()).Resolve(context.Background(), loc)
	assert.ErrorIs(t, err, advisory.ErrNoLocationAvailable)
}

func TestResolveWithoutLocator(t *testing.T) {
	_, err := NewResolver(fakeProfiles{}, logger.NewNopLogger()).Resolve(context.Background(), nil)
	assert.ErrorIs(t, err, advisory.ErrNoLocationAvailable)
}

func TestReportedDevice(t *testing.T) {
	pos := advisory.Coordinates{Latitude: 12.97, Longitude: 77.59}
	r := NewResolver(nil, logger.NewNopLogger())

	c, err := r.Resolve(context.Background(), ReportedDevice{LocationGranted: true, Position: &pos})
	require.NoError(t, err)
	assert.Equal(t, pos, c)

	_, err = r.Resolve(context.Background(), ReportedDevice{LocationGranted: true, FixError: "timeout"})
	assert.ErrorIs(t, err, advisory.ErrNoLocationAvailable)

	_, err = r.Resolve(context.Background(), ReportedDevice{LocationGranted: false, Position: &pos})
	assert.ErrorIs(t, err, advisory.ErrNoLocationAvailable)
}
