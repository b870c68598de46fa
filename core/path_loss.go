package core

import (
	"math"

	"github.com/signalsfoundry/linkbudget/rferr"
	"github.com/signalsfoundry/linkbudget/units"
)

// PathLoss is a free-space path between two antennas.
type PathLoss struct {
	FrequencyHz float64 `yaml:"frequency_hz" toml:"frequency_hz"`
	DistanceM   float64 `yaml:"distance_m" toml:"distance_m"`
}

// Validate checks that frequency and distance are positive.
func (p PathLoss) Validate() error {
	if !(p.FrequencyHz > 0) {
		return rferr.Domain("frequency must be > 0, got %v", p.FrequencyHz)
	}
	if !(p.DistanceM > 0) {
		return rferr.Domain("distance must be > 0, got %v", p.DistanceM)
	}
	return nil
}

// DB returns the free-space path loss 20·log10(4π·d·f/c).
func (p PathLoss) DB() (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return freeSpacePathLossDB(p.FrequencyHz, p.DistanceM), nil
}

// Wavelength is the carrier wavelength in metres.
func (p PathLoss) Wavelength() float64 { return units.Wavelength(p.FrequencyHz) }

func freeSpacePathLossDB(frequencyHz, distanceM float64) float64 {
	return 20 * math.Log10(4*math.Pi*distanceM*frequencyHz/units.SpeedOfLight)
}
