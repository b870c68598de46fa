package core

import "math"

// PowerFluxDensityDBWPerM2 spreads an EIRP over a sphere of radius
// distanceM.
func PowerFluxDensityDBWPerM2(eirpDBW, distanceM float64) float64 {
	return eirpDBW - 10*math.Log10(4*math.Pi*distanceM*distanceM)
}

// PowerFluxDensityPerMHz is the flux density per MHz of occupied bandwidth,
// in dBW/m²/MHz.
func PowerFluxDensityPerMHz(eirpDBW, distanceM, bandwidthMHz float64) float64 {
	return PowerFluxDensityDBWPerM2(eirpDBW, distanceM) - 10*math.Log10(bandwidthMHz)
}
