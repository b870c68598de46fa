// Package evm converts between error vector magnitude and SNR.
package evm

import (
	"math"

	"github.com/signalsfoundry/linkbudget/units"
)

// FromSNRLinear returns EVM as a ratio, 1/√SNR.
func FromSNRLinear(snr float64) float64 { return 1 / math.Sqrt(snr) }

// FromSNRDB returns EVM as a ratio.
func FromSNRDB(snrDB float64) float64 { return FromSNRLinear(units.DBToLinear(snrDB)) }

// PercentFromSNRDB returns EVM in percent, 100/√SNR.
func PercentFromSNRDB(snrDB float64) float64 { return 100 * FromSNRDB(snrDB) }

// SNRDBFromEVM is the inverse of FromSNRDB.
func SNRDBFromEVM(evm float64) float64 { return 10 * math.Log10(1/(evm*evm)) }

// SNRDBFromPercent is the inverse of PercentFromSNRDB.
func SNRDBFromPercent(evmPercent float64) float64 {
	r := 100 / evmPercent
	return 10 * math.Log10(r*r)
}

// MarginResult reports whether a measured EVM meets a requirement and by
// how much, in dB of SNR.
type MarginResult struct {
	Pass     bool
	MarginDB float64
}

// Margin compares a measured EVM against the required EVM, both in
// percent. A positive margin means the measurement is better than required.
func Margin(measuredPercent, requiredPercent float64) MarginResult {
	return MarginResult{
		Pass:     measuredPercent <= requiredPercent,
		MarginDB: SNRDBFromPercent(measuredPercent) - SNRDBFromPercent(requiredPercent),
	}
}
