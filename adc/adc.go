// Package adc gives the quantization-limited SNR of an ideal converter.
package adc

// QuantizationSNRDB is the full-scale sine SNR of an ideal N-bit ADC,
// 6.02·N + 1.76 dB.
func QuantizationSNRDB(bits int) float64 {
	return 6.02*float64(bits) + 1.76
}

// ENOB returns the effective number of bits for a measured SINAD in dB.
func ENOB(sinadDB float64) float64 {
	return (sinadDB - 1.76) / 6.02
}
