package units

import "math"

// NoiseFactorFromFigure converts a noise figure in dB to a linear noise factor.
func NoiseFactorFromFigure(nfDB float64) float64 { return DBToLinear(nfDB) }

// NoiseFigureFromFactor converts a linear noise factor to a noise figure in dB.
func NoiseFigureFromFactor(f float64) float64 { return LinearToDB(f) }

// NoiseTemperatureFromFactor returns the equivalent noise temperature
// T = T0·(F − 1).
func NoiseTemperatureFromFactor(f float64) float64 {
	return ReferenceTemperatureK * (f - 1)
}

// NoiseFactorFromTemperature returns F = 1 + T/T0.
func NoiseFactorFromTemperature(tempK float64) float64 {
	return 1 + tempK/ReferenceTemperatureK
}

// NoiseTemperatureFromFigure returns T = T0·(10^(NF/10) − 1).
func NoiseTemperatureFromFigure(nfDB float64) float64 {
	return NoiseTemperatureFromFactor(NoiseFactorFromFigure(nfDB))
}

// NoiseFigureFromTemperature returns NF = 10·log10(1 + T/T0).
func NoiseFigureFromTemperature(tempK float64) float64 {
	return 10 * math.Log10(NoiseFactorFromTemperature(tempK))
}

// NoisePowerWatts is the thermal noise power k·T·B.
func NoisePowerWatts(tempK, bandwidthHz float64) float64 {
	return Boltzmann * tempK * bandwidthHz
}

// NoisePowerDBm is the thermal noise power k·T·B in dBm.
func NoisePowerDBm(tempK, bandwidthHz float64) float64 {
	return WattsToDBm(NoisePowerWatts(tempK, bandwidthHz))
}
