package core

import (
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/linkbudget/rferr"
)

// MotionModel yields an ECEF position in kilometres at a given time.
type MotionModel interface {
	PositionAt(t time.Time) (Vec3, error)
}

// StaticMotionModel is a fixed point, such as a ground station.
type StaticMotionModel struct {
	Position Vec3
}

// PositionAt for static motion always returns the fixed position.
func (m StaticMotionModel) PositionAt(time.Time) (Vec3, error) {
	return m.Position, nil
}

// OrbitalSGP4MotionModel uses a TLE and SGP4 to propagate a satellite.
type OrbitalSGP4MotionModel struct {
	sat satellite.Satellite
}

// NewOrbitalModelFromTLE constructs an orbital model from TLE lines.
func NewOrbitalModelFromTLE(line1, line2 string) (*OrbitalSGP4MotionModel, error) {
	line1, line2 = strings.TrimSpace(line1), strings.TrimSpace(line2)
	if len(line1) != 69 || !strings.HasPrefix(line1, "1 ") {
		return nil, rferr.Domain("TLE line 1 must be 69 characters starting with \"1 \"")
	}
	if len(line2) != 69 || !strings.HasPrefix(line2, "2 ") {
		return nil, rferr.Domain("TLE line 2 must be 69 characters starting with \"2 \"")
	}
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &OrbitalSGP4MotionModel{sat: sat}, nil
}

// PositionAt propagates the satellite to t and rotates the result into
// ECEF. go-satellite works in kilometres.
func (m *OrbitalSGP4MotionModel) PositionAt(t time.Time) (Vec3, error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(m.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	p := Vec3{X: posECEF.X, Y: posECEF.Y, Z: posECEF.Z}
	if n := p.Norm(); math.IsNaN(n) || n < EarthRadiusKm {
		return Vec3{}, rferr.Domain("SGP4 propagation to %s failed", t.Format(time.RFC3339))
	}
	return p, nil
}
