package coding

import (
	"github.com/signalsfoundry/linkbudget/ber"
	"github.com/signalsfoundry/linkbudget/modulation"
)

// CodedModulation pairs a modulation with a FEC code.
type CodedModulation struct {
	Modulation modulation.Modulation
	FEC        FEC
}

// New returns the pairing of m and fec after validating m.
func New(m modulation.Modulation, fec FEC) (CodedModulation, error) {
	if err := m.Validate(); err != nil {
		return CodedModulation{}, err
	}
	return CodedModulation{Modulation: m, FEC: fec}, nil
}

func (c CodedModulation) CodeRate() float64    { return c.FEC.Rate() }
func (c CodedModulation) CodingGainDB() float64 { return c.FEC.GainDB() }

// SpectralEfficiency is bits per symbol times code rate, in bit/s/Hz.
func (c CodedModulation) SpectralEfficiency() float64 {
	return c.Modulation.SpectralEfficiency(c.CodeRate())
}

// ThroughputBps is the information rate carried in bandwidthHz.
func (c CodedModulation) ThroughputBps(bandwidthHz float64) float64 {
	return c.SpectralEfficiency() * bandwidthHz
}

// SymbolRate is the symbol rate needed to carry infoBitRate.
func (c CodedModulation) SymbolRate(infoBitRate float64) (float64, error) {
	return c.Modulation.SymbolRate(infoBitRate, c.CodeRate())
}

// RequiredEbNoDB is the uncoded requirement at targetBER less the coding
// gain.
func (c CodedModulation) RequiredEbNoDB(targetBER float64) (float64, error) {
	uncoded, err := ber.RequiredEbNoDB(targetBER, c.Modulation)
	if err != nil {
		return 0, err
	}
	return uncoded - c.CodingGainDB(), nil
}

// BERFromDB evaluates the uncoded curve at ebNoDB shifted by the coding
// gain.
func (c CodedModulation) BERFromDB(ebNoDB float64) float64 {
	return ber.FromDB(ebNoDB+c.CodingGainDB(), c.Modulation)
}

// LinkMarginDB is actualEbNoDB minus RequiredEbNoDB(targetBER).
func (c CodedModulation) LinkMarginDB(actualEbNoDB, targetBER float64) (float64, error) {
	req, err := c.RequiredEbNoDB(targetBER)
	if err != nil {
		return 0, err
	}
	return actualEbNoDB - req, nil
}

func (c CodedModulation) String() string {
	if c.FEC.Kind() == KindUncoded {
		return c.Modulation.String()
	}
	return c.Modulation.String() + " + " + c.FEC.String()
}
