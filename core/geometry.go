package core

import (
	"math"

	"github.com/signalsfoundry/linkbudget/rferr"
)

// EarthRadiusKm is the mean Earth radius used for all simple
// geometry calculations (kilometres).
const EarthRadiusKm = 6371.0

// EarthRadiusM is EarthRadiusKm in metres.
const EarthRadiusM = EarthRadiusKm * 1000

// Vec3 is an ECEF-style vector in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Norm()
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// GeodeticToECEF converts latitude/longitude in degrees and altitude in
// kilometres to ECEF on a spherical Earth.
func GeodeticToECEF(latDeg, lonDeg, altKm float64) Vec3 {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	r := EarthRadiusKm + altKm
	return Vec3{
		X: r * math.Cos(lat) * math.Cos(lon),
		Y: r * math.Cos(lat) * math.Sin(lon),
		Z: r * math.Sin(lat),
	}
}

// HasLineOfSight checks whether the straight segment between p1 and p2
// clears the Earth sphere.
//
// All positions are ECEF in kilometres.
func HasLineOfSight(p1, p2 Vec3) bool {
	v := p2.Sub(p1)
	a := v.Dot(v)
	if a == 0 {
		return p1.Dot(p1) > EarthRadiusKm*EarthRadiusKm
	}

	// Closest point on the segment to the Earth's centre.
	t := -p1.Dot(v) / a
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closest := Vec3{
		X: p1.X + v.X*t,
		Y: p1.Y + v.Y*t,
		Z: p1.Z + v.Z*t,
	}
	return closest.Dot(closest) > EarthRadiusKm*EarthRadiusKm
}

// ElevationDegrees returns the elevation angle of the target as seen from
// the observer, in degrees. 0° = geometric horizon, 90° = overhead.
func ElevationDegrees(observer, target Vec3) float64 {
	v := target.Sub(observer)
	vNorm := v.Norm()
	if vNorm == 0 {
		return 90
	}

	// Local zenith at observer is its normalised position vector.
	r := observer.Norm()
	if r == 0 {
		return 90
	}
	zenith := Vec3{
		X: observer.X / r,
		Y: observer.Y / r,
		Z: observer.Z / r,
	}

	cosGamma := v.Dot(zenith) / vNorm
	if cosGamma > 1 {
		cosGamma = 1
	} else if cosGamma < -1 {
		cosGamma = -1
	}
	gammaDeg := math.Acos(cosGamma) * 180.0 / math.Pi

	return 90.0 - gammaDeg
}

// SlantRangeM returns the distance from a ground station to a satellite at
// altitudeM seen at elevationDeg, over a spherical body of radius
// bodyRadiusM:
//
//	R·(√((r/R)² − cos²e) − sin e),  r = R + altitude
func SlantRangeM(elevationDeg, altitudeM, bodyRadiusM float64) (float64, error) {
	if !(bodyRadiusM > 0) {
		return 0, rferr.Domain("body radius must be > 0, got %v", bodyRadiusM)
	}
	if !(altitudeM > 0) {
		return 0, rferr.Domain("altitude must be > 0, got %v", altitudeM)
	}
	if !(elevationDeg >= 0 && elevationDeg <= 90) {
		return 0, rferr.Domain("elevation must be in [0, 90] degrees, got %v", elevationDeg)
	}
	e := elevationDeg * math.Pi / 180
	ratio := (altitudeM + bodyRadiusM) / bodyRadiusM
	cos := math.Cos(e)
	return bodyRadiusM * (math.Sqrt(ratio*ratio-cos*cos) - math.Sin(e)), nil
}
