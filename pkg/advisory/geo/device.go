package geo

import (
	"context"
	"errors"

	"kisansetu-be/pkg/advisory"
)

// ErrNoFix is returned by a ReportedDevice that carried no position.
var ErrNoFix = errors.New("device reported no position fix")

// ReportedDevice is a DeviceLocator built from what a client sent with its request:
// the permission outcome and, if it had one, the fix it obtained.
type ReportedDevice struct {
	LocationGranted bool
	Position        *advisory.Coordinates
	FixError        string
}

var _ DeviceLocator = ReportedDevice{}

func (d ReportedDevice) RequestPermission(ctx context.Context) (advisory.Permission, error) {
	return advisory.PermissionFromBool(d.LocationGranted), nil
}

func (d ReportedDevice) CurrentPosition(ctx context.Context, accuracy Accuracy) (advisory.Coordinates, error) {
	if d.FixError != "" {
		return advisory.Coordinates{}, errors.New(d.FixError)
	}
	if d.Position == nil {
		return advisory.Coordinates{}, ErrNoFix
	}
	return *d.Position, nil
}
