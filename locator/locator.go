// Package locator answers "where is this vehicle right now".
package locator

import (
	"errors"
	"time"
)

// ErrNoFix means the provider has no usable position for the vehicle,
// either because none ever arrived or the last one went stale.
var ErrNoFix = errors.New("locator: no position fix")

// Position is one GPS fix from a vehicle.
type Position struct {
	Lat     float64   `json:"lat"`
	Lon     float64   `json:"lon"`
	SpeedKn float64   `json:"speed_kn,omitempty"`
	At      time.Time `json:"at"`
}

// Provider reads the current position of a vehicle by its plate.
type Provider interface {
	ReadPosition(plate string) (Position, error)
}
