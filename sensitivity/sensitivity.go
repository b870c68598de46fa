// Package sensitivity derives the minimum detectable signal of a receiver
// by running the BER and energy chain backwards to input power.
package sensitivity

import (
	"math"

	"github.com/signalsfoundry/linkbudget/ber"
	"github.com/signalsfoundry/linkbudget/coding"
	"github.com/signalsfoundry/linkbudget/energy"
	"github.com/signalsfoundry/linkbudget/modulation"
	"github.com/signalsfoundry/linkbudget/rferr"
	"github.com/signalsfoundry/linkbudget/units"
)

// Params describes the receiver and waveform a sensitivity is computed for.
type Params struct {
	Modulation           modulation.Modulation
	BitRateBps           float64
	CodeRate             float64
	NoiseFigureDB        float64
	TargetBER            float64
	ImplementationLossDB float64
}

// NoiseFloorDBm is the thermal floor of a receiver with noise figure nfDB
// in bandwidthHz, referenced to -174 dBm/Hz.
func NoiseFloorDBm(bandwidthHz, nfDB float64) float64 {
	return units.ThermalNoiseDensityDBmHz + 10*math.Log10(bandwidthHz) + nfDB
}

// RolloffPenaltyDB is the noise bandwidth excess of a raised-cosine filter
// with roll-off alpha over a matched filter.
func RolloffPenaltyDB(alpha float64) float64 {
	return 10 * math.Log10(1+alpha)
}

// FromSNRDBm is the input power at which a receiver reaches snrDB.
func FromSNRDBm(bandwidthHz, nfDB, snrDB, implementationLossDB float64) float64 {
	return NoiseFloorDBm(bandwidthHz, nfDB) + snrDB + implementationLossDB
}

// MatchedFilterDBm is the sensitivity with an ideal matched filter whose
// noise bandwidth equals the symbol rate.
func MatchedFilterDBm(p Params) (float64, error) {
	req, err := ber.RequiredEbNoDB(p.TargetBER, p.Modulation)
	if err != nil {
		return 0, err
	}
	return fromEbNo(p, req, 0)
}

// BandpassDBm is the sensitivity behind a raised-cosine bandpass filter
// whose noise bandwidth is the occupied bandwidth Rs·(1+rolloff).
func BandpassDBm(p Params, rolloff float64) (float64, error) {
	req, err := ber.RequiredEbNoDB(p.TargetBER, p.Modulation)
	if err != nil {
		return 0, err
	}
	return fromEbNo(p, req, rolloff)
}

// CodedMatchedFilterDBm is MatchedFilterDBm for a coded modulation. The
// Modulation and CodeRate fields of p are taken from cm.
func CodedMatchedFilterDBm(p Params, cm coding.CodedModulation) (float64, error) {
	return CodedBandpassDBm(p, cm, 0)
}

// CodedBandpassDBm is BandpassDBm for a coded modulation.
func CodedBandpassDBm(p Params, cm coding.CodedModulation, rolloff float64) (float64, error) {
	p.Modulation = cm.Modulation
	p.CodeRate = cm.CodeRate()
	req, err := cm.RequiredEbNoDB(p.TargetBER)
	if err != nil {
		return 0, err
	}
	return fromEbNo(p, req, rolloff)
}

func fromEbNo(p Params, reqEbNoDB, rolloff float64) (float64, error) {
	if !(p.BitRateBps > 0) {
		return 0, rferr.Domain("bit rate must be > 0, got %v", p.BitRateBps)
	}
	rs, err := p.Modulation.SymbolRate(p.BitRateBps, p.CodeRate)
	if err != nil {
		return 0, err
	}
	noiseBW, err := p.Modulation.OccupiedBandwidth(rs, rolloff)
	if err != nil {
		return 0, err
	}
	// The detector needs the matched-filter SNR against whatever noise the
	// receive filter lets through.
	cNo := energy.EbOverNoToCOverNo(reqEbNoDB, p.BitRateBps)
	snr := energy.COverNoToSNR(cNo, rs)
	return FromSNRDBm(noiseBW, p.NoiseFigureDB, snr, p.ImplementationLossDB), nil
}
