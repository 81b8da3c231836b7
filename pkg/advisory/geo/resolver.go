// Package geo decides which coordinates an advisory request is about.
package geo

import (
	"context"
	"fmt"

	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/pkg/advisory"
)

const module = "GEO"

type Accuracy string

const (
	AccuracyLow      Accuracy = "low"
	AccuracyBalanced Accuracy = "balanced"
	AccuracyHigh     Accuracy = "high"
)

// StoredProfile is the slice of a user profile the resolver needs.
type StoredProfile struct {
	Latitude  *float64
	Longitude *float64
}

func (p *StoredProfile) coordinates() (advisory.Coordinates, bool) {
	if p == nil || p.Latitude == nil || p.Longitude == nil {
		return advisory.Coordinates{}, false
	}
	c := advisory.Coordinates{Latitude: *p.Latitude, Longitude: *p.Longitude}
	return c, c.Valid()
}

// ProfileStore returns the most recently created profile, or nil when none exists.
type ProfileStore interface {
	LatestProfile(ctx context.Context) (*StoredProfile, error)
}

// DeviceLocator is the device side of location lookup.
type DeviceLocator interface {
	RequestPermission(ctx context.Context) (advisory.Permission, error)
	CurrentPosition(ctx context.Context, accuracy Accuracy) (advisory.Coordinates, error)
}

type Resolver struct {
	profiles ProfileStore
	fallback *advisory.Coordinates
	logger   logger.ILogger
}

type Option func(*Resolver)

// WithFallback makes a failed position fix resolve to a fixed location instead of failing.
// A denied permission still fails.
func WithFallback(c advisory.Coordinates) Option {
	return func(r *Resolver) {
		r.fallback = &c
	}
}

func NewResolver(profiles ProfileStore, log logger.ILogger, opts ...Option) *Resolver {
	r := &Resolver{profiles: profiles, logger: log}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve prefers the latest stored profile, then a live device fix. There are no retries.
func (r *Resolver) Resolve(ctx context.Context, locator DeviceLocator) (advisory.Coordinates, error) {
	if r.profiles != nil {
		profile, err := r.profiles.LatestProfile(ctx)
		if err != nil {
			r.logger.Warn(module, "Profile lookup failed, trying device", map[string]interface{}{"error": err.Error()})
		} else if c, ok := profile.coordinates(); ok {
			r.logger.Debug(module, "Using stored profile location", map[string]interface{}{"coords": c.String()})
			return c, nil
		}
	}

	if locator == nil {
		return advisory.Coordinates{}, advisory.ErrNoLocationAvailable
	}

	perm, err := locator.RequestPermission(ctx)
	if err != nil || !perm.Granted() {
		r.logger.Info(module, "Location permission not granted", map[string]interface{}{"permission": perm})
		return advisory.Coordinates{}, advisory.ErrNoLocationAvailable
	}

	c, err := locator.CurrentPosition(ctx, AccuracyBalanced)
	if err == nil {
		err = c.Validate()
	}
	if err != nil {
		if r.fallback != nil {
			r.logger.Warn(module, "Position fix failed, using default location", map[string]interface{}{
				"error":    err.Error(),
				"fallback": r.fallback.String(),
			})
			return *r.fallback, nil
		}
		r.logger.Warn(module, "Position fix failed", map[string]interface{}{"error": err.Error()})
		return advisory.Coordinates{}, fmt.Errorf("%w: %v", advisory.ErrNoLocationAvailable, err)
	}

	return c, nil
}
