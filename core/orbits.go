package core

import (
	"math"

	"github.com/signalsfoundry/linkbudget/rferr"
)

const (
	// GravitationalConstant in m³/(kg·s²).
	GravitationalConstant = 6.6743e-11
	// EarthMassKg is the mass of the Earth.
	EarthMassKg = 5.972e24
)

// CircularOrbitSpeed is √(G·M/r) in m/s for a circular orbit of radius
// radiusM about a body of massKg.
func CircularOrbitSpeed(massKg, radiusM float64) (float64, error) {
	if !(massKg > 0) || !(radiusM > 0) {
		return 0, rferr.Domain("mass and orbit radius must be > 0, got %v and %v", massKg, radiusM)
	}
	return math.Sqrt(GravitationalConstant * massKg / radiusM), nil
}

// CircularOrbitPeriod is 2π·√(r³/(G·M)) in seconds.
func CircularOrbitPeriod(massKg, radiusM float64) (float64, error) {
	if !(massKg > 0) || !(radiusM > 0) {
		return 0, rferr.Domain("mass and orbit radius must be > 0, got %v and %v", massKg, radiusM)
	}
	return 2 * math.Pi * math.Sqrt(radiusM*radiusM*radiusM/(GravitationalConstant*massKg)), nil
}
