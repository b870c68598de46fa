// Package units holds the physical constants and the decibel, power and
// noise conversions used throughout the link-budget chain.
package units

import "math"

// Physical constants.
const (
	// SpeedOfLight in vacuum (m/s).
	SpeedOfLight = 299792458.0
	// Boltzmann constant (J/K).
	Boltzmann = 1.380649e-23
	// ReferenceTemperatureK is the IEEE reference temperature T0 used for
	// noise figure definitions.
	ReferenceTemperatureK = 290.0
	// ThermalNoiseDensityDBmHz is kT0 expressed in dBm/Hz, rounded the way
	// receiver sensitivity tables quote it.
	ThermalNoiseDensityDBmHz = -174.0
)

// DBToLinear converts a ratio in dB to a linear power ratio.
func DBToLinear(db float64) float64 { return math.Pow(10, db/10) }

// LinearToDB converts a linear power ratio to dB.
func LinearToDB(ratio float64) float64 { return 10 * math.Log10(ratio) }

// WattsToDBm converts watts to dBm.
func WattsToDBm(w float64) float64 { return LinearToDB(w) + 30 }

// DBmToWatts converts dBm to watts.
func DBmToWatts(dbm float64) float64 { return DBToLinear(dbm - 30) }

// WattsToDBW converts watts to dBW.
func WattsToDBW(w float64) float64 { return LinearToDB(w) }

// DBWToWatts converts dBW to watts.
func DBWToWatts(dbw float64) float64 { return DBToLinear(dbw) }

func DBmToDBW(dbm float64) float64 { return dbm - 30 }
func DBWToDBm(dbw float64) float64 { return dbw + 30 }

// Wavelength returns the free-space wavelength in metres of a carrier at
// frequencyHz.
func Wavelength(frequencyHz float64) float64 { return SpeedOfLight / frequencyHz }
