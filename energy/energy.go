// Package energy converts between the signal-to-noise metrics of a digital
// link: SNR, C/No, Es/No, Ec/No and Eb/No. All values are in dB.
//
// The chain is tied together by the rates of a coded modulation with k bits
// per symbol and code rate R:
//
//	bit rate   Rb = Rs·k·R
//	Es/No = Eb/No + 10·log10(k·R)
//	Ec/No = Eb/No + 10·log10(R)
package energy

import (
	"math"

	"github.com/signalsfoundry/linkbudget/modulation"
	"github.com/signalsfoundry/linkbudget/rferr"
)

func SNRToCOverNo(snrDB, noiseBandwidthHz float64) float64 {
	return snrDB + 10*math.Log10(noiseBandwidthHz)
}

func COverNoToSNR(cNoDB, noiseBandwidthHz float64) float64 {
	return cNoDB - 10*math.Log10(noiseBandwidthHz)
}

func COverNoToEbOverNo(cNoDB, bitRateHz float64) float64 {
	return cNoDB - 10*math.Log10(bitRateHz)
}

func EbOverNoToCOverNo(ebNoDB, bitRateHz float64) float64 {
	return ebNoDB + 10*math.Log10(bitRateHz)
}

func COverNoToEsOverNo(cNoDB, symbolRateHz float64) float64 {
	return cNoDB - 10*math.Log10(symbolRateHz)
}

func EsOverNoToCOverNo(esNoDB, symbolRateHz float64) float64 {
	return esNoDB + 10*math.Log10(symbolRateHz)
}

// EsOverNoToEbOverNo removes the information bits carried per symbol.
func EsOverNoToEbOverNo(esNoDB float64, bitsPerSymbol int, codeRate float64) float64 {
	return esNoDB - 10*math.Log10(float64(bitsPerSymbol)*codeRate)
}

func EbOverNoToEsOverNo(ebNoDB float64, bitsPerSymbol int, codeRate float64) float64 {
	return ebNoDB + 10*math.Log10(float64(bitsPerSymbol)*codeRate)
}

// EbOverNoToEcOverNo gives the energy per coded bit.
func EbOverNoToEcOverNo(ebNoDB, codeRate float64) float64 {
	return ebNoDB + 10*math.Log10(codeRate)
}

func EcOverNoToEbOverNo(ecNoDB, codeRate float64) float64 {
	return ecNoDB - 10*math.Log10(codeRate)
}

func EsOverNoToEcOverNo(esNoDB float64, bitsPerSymbol int) float64 {
	return esNoDB - 10*math.Log10(float64(bitsPerSymbol))
}

func EcOverNoToEsOverNo(ecNoDB float64, bitsPerSymbol int) float64 {
	return ecNoDB + 10*math.Log10(float64(bitsPerSymbol))
}

// SNRToEbOverNo chains SNR → C/No → Eb/No for a signal of the given
// modulation and symbol rate measured in noiseBandwidthHz.
func SNRToEbOverNo(snrDB, noiseBandwidthHz float64, m modulation.Modulation, symbolRateHz, codeRate float64) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	if !(noiseBandwidthHz > 0) || !(symbolRateHz > 0) {
		return 0, rferr.Domain("bandwidth and symbol rate must be > 0, got %v and %v", noiseBandwidthHz, symbolRateHz)
	}
	if !(codeRate > 0 && codeRate <= 1) {
		return 0, rferr.Domain("code rate must be in (0, 1], got %v", codeRate)
	}
	bitRate := symbolRateHz * float64(m.BitsPerSymbol()) * codeRate
	return COverNoToEbOverNo(SNRToCOverNo(snrDB, noiseBandwidthHz), bitRate), nil
}

// EbOverNoToSNR is the inverse of SNRToEbOverNo.
func EbOverNoToSNR(ebNoDB, noiseBandwidthHz float64, m modulation.Modulation, symbolRateHz, codeRate float64) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	if !(noiseBandwidthHz > 0) || !(symbolRateHz > 0) {
		return 0, rferr.Domain("bandwidth and symbol rate must be > 0, got %v and %v", noiseBandwidthHz, symbolRateHz)
	}
	if !(codeRate > 0 && codeRate <= 1) {
		return 0, rferr.Domain("code rate must be in (0, 1], got %v", codeRate)
	}
	bitRate := symbolRateHz * float64(m.BitsPerSymbol()) * codeRate
	return COverNoToSNR(EbOverNoToCOverNo(ebNoDB, bitRate), noiseBandwidthHz), nil
}
