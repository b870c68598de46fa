package core

import (
	"math"

	"github.com/signalsfoundry/linkbudget/units"
)

// DopplerShiftHz is f·v/c. A positive radial velocity means the ends are
// approaching.
func DopplerShiftHz(frequencyHz, radialVelocityMS float64) float64 {
	return frequencyHz * radialVelocityMS / units.SpeedOfLight
}

// DopplerReceivedFrequencyHz is the carrier as seen by the receiver.
func DopplerReceivedFrequencyHz(frequencyHz, radialVelocityMS float64) float64 {
	return frequencyHz + DopplerShiftHz(frequencyHz, radialVelocityMS)
}

// MaxRadialVelocityCircular approximates the radial velocity of a
// satellite moving at orbitalSpeedMS seen at elevationDeg: the full speed
// at the horizon and none overhead.
func MaxRadialVelocityCircular(orbitalSpeedMS, elevationDeg float64) float64 {
	return orbitalSpeedMS * math.Cos(elevationDeg*math.Pi/180)
}

// ClosingSpeedMS derives the approach speed of a target from two positions
// (km) seen dtSeconds apart by a fixed observer. Positive means the range
// is shrinking.
func ClosingSpeedMS(observer, before, after Vec3, dtSeconds float64) float64 {
	if dtSeconds == 0 {
		return 0
	}
	const kmToM = 1000.0
	return -(observer.DistanceTo(after) - observer.DistanceTo(before)) * kmToM / dtSeconds
}
