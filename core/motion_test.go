package core

import (
	"errors"
	"testing"
	"time"

	"github.com/signalsfoundry/linkbudget/rferr"
)

// ISS sample TLE.
const (
	issTLE1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issTLE2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

func TestStaticMotionModel_NoChange(t *testing.T) {
	m := StaticMotionModel{Position: Vec3{X: 1, Y: 2, Z: 3}}

	t1 := time.Now().UTC()
	p, err := m.PositionAt(t1)
	if err != nil || p != (Vec3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("static motion should not change position, got %+v, %v", p, err)
	}
	p, _ = m.PositionAt(t1.Add(time.Hour))
	if p != (Vec3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("static motion should not change position after an hour, got %+v", p)
	}
}

// We don't assert exact orbital values (those belong to go-satellite); we
// check the orbit is plausible and that positions differ over time.
func TestOrbitalSGP4MotionModel_ChangesOverTime(t *testing.T) {
	m, err := NewOrbitalModelFromTLE(issTLE1, issTLE2)
	if err != nil {
		t.Fatalf("NewOrbitalModelFromTLE: %v", err)
	}

	t1 := time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC)
	first, err := m.PositionAt(t1)
	if err != nil {
		t.Fatalf("PositionAt: %v", err)
	}
	second, err := m.PositionAt(t1.Add(5 * time.Minute))
	if err != nil {
		t.Fatalf("PositionAt: %v", err)
	}
	if first == second {
		t.Fatalf("expected orbital position to change over time, got %+v at both times", first)
	}

	alt := first.Norm() - EarthRadiusKm
	if alt < 300 || alt > 500 {
		t.Fatalf("expected ISS altitude between 300 and 500 km, got %v", alt)
	}
}

func TestNewOrbitalModelRejectsMalformedTLE(t *testing.T) {
	if _, err := NewOrbitalModelFromTLE("garbage", issTLE2); !errors.Is(err, rferr.ErrDomain) {
		t.Fatalf("expected ErrDomain, got %v", err)
	}
	if _, err := NewOrbitalModelFromTLE(issTLE1, issTLE1); !errors.Is(err, rferr.ErrDomain) {
		t.Fatalf("expected ErrDomain for swapped lines, got %v", err)
	}
}
