package core

import (
	"math"

	"github.com/signalsfoundry/linkbudget/ber"
	"github.com/signalsfoundry/linkbudget/coding"
	"github.com/signalsfoundry/linkbudget/energy"
	"github.com/signalsfoundry/linkbudget/modulation"
	"github.com/signalsfoundry/linkbudget/phy"
	"github.com/signalsfoundry/linkbudget/rferr"
	"github.com/signalsfoundry/linkbudget/units"
)

// LinkBudget composes a transmitter, a receiver and a free-space path into
// one end-to-end link. It holds its inputs by value and recomputes every
// derived quantity on each call.
type LinkBudget struct {
	name        string
	bandwidthHz float64
	tx          Transmitter
	rx          Receiver
	path        PathLoss
	extraLossDB float64
}

// LinkBudgetOption customises a LinkBudget at construction.
type LinkBudgetOption func(*LinkBudget)

// WithFrequencyDependentLoss adds a loss in dB on top of free-space path
// loss, such as rain fade or atmospheric absorption.
func WithFrequencyDependentLoss(db float64) LinkBudgetOption {
	return func(b *LinkBudget) { b.extraLossDB = db }
}

// NewLinkBudget validates every component and returns the assembled link.
func NewLinkBudget(name string, bandwidthHz float64, tx Transmitter, rx Receiver, path PathLoss, opts ...LinkBudgetOption) (LinkBudget, error) {
	b := LinkBudget{name: name, bandwidthHz: bandwidthHz, tx: tx, rx: rx, path: path}
	for _, opt := range opts {
		opt(&b)
	}
	if !(bandwidthHz > 0) {
		return LinkBudget{}, rferr.Domain("link bandwidth must be > 0, got %v", bandwidthHz)
	}
	if err := tx.Validate(); err != nil {
		return LinkBudget{}, err
	}
	if err := rx.Validate(); err != nil {
		return LinkBudget{}, err
	}
	if err := path.Validate(); err != nil {
		return LinkBudget{}, err
	}
	if math.IsNaN(b.extraLossDB) || math.IsInf(b.extraLossDB, 0) {
		return LinkBudget{}, rferr.Domain("frequency-dependent loss must be finite, got %v", b.extraLossDB)
	}
	return b, nil
}

func (b LinkBudget) Name() string                      { return b.name }
func (b LinkBudget) BandwidthHz() float64              { return b.bandwidthHz }
func (b LinkBudget) Transmitter() Transmitter          { return b.tx }
func (b LinkBudget) Receiver() Receiver                { return b.rx }
func (b LinkBudget) Path() PathLoss                    { return b.path }
func (b LinkBudget) FrequencyDependentLossDB() float64 { return b.extraLossDB }

func (b LinkBudget) EIRPDBm() float64 { return b.tx.EIRPDBm() }

// FreeSpacePathLossDB is the free-space component of the path loss.
func (b LinkBudget) FreeSpacePathLossDB() float64 {
	return freeSpacePathLossDB(b.path.FrequencyHz, b.path.DistanceM)
}

// PathLossDB is free-space loss plus the frequency-dependent loss.
func (b LinkBudget) PathLossDB() float64 { return b.FreeSpacePathLossDB() + b.extraLossDB }

// ReceivedPowerDBm is EIRP + receive gain − path loss.
func (b LinkBudget) ReceivedPowerDBm() float64 {
	return b.EIRPDBm() + b.rx.GainDBi - b.PathLossDB()
}

func (b LinkBudget) NoisePowerDBm() float64 { return b.rx.NoisePowerDBm() }

// SNRDB is the received power over the receiver noise power.
func (b LinkBudget) SNRDB() float64 { return b.rx.SNRDB(b.ReceivedPowerDBm()) }

func (b LinkBudget) SNRLinear() float64 { return units.DBToLinear(b.SNRDB()) }

// COverNoDBHz is the carrier to noise density ratio, measured in the
// receiver bandwidth.
func (b LinkBudget) COverNoDBHz() float64 {
	return energy.SNRToCOverNo(b.SNRDB(), b.rx.BandwidthHz)
}

// EbNoDB is the uncoded Eb/No for m, assuming the symbol rate fills the
// receiver noise bandwidth.
func (b LinkBudget) EbNoDB(m modulation.Modulation) (float64, error) {
	return energy.SNRToEbOverNo(b.SNRDB(), b.rx.BandwidthHz, m, b.rx.BandwidthHz, 1)
}

// EbNoCodedDB is the Eb/No per information bit of a coded modulation at the
// same symbol rate.
func (b LinkBudget) EbNoCodedDB(cm coding.CodedModulation) (float64, error) {
	return energy.SNRToEbOverNo(b.SNRDB(), b.rx.BandwidthHz, cm.Modulation, b.rx.BandwidthHz, cm.CodeRate())
}

// BER is the uncoded bit error rate of m on this link.
func (b LinkBudget) BER(m modulation.Modulation) (float64, error) {
	eb, err := b.EbNoDB(m)
	if err != nil {
		return 0, err
	}
	return ber.FromDB(eb, m), nil
}

// BERCoded is the post-decoding bit error rate of cm on this link.
func (b LinkBudget) BERCoded(cm coding.CodedModulation) (float64, error) {
	eb, err := b.EbNoCodedDB(cm)
	if err != nil {
		return 0, err
	}
	return cm.BERFromDB(eb), nil
}

// LinkMarginDB is the Eb/No in hand above what m needs for targetBER.
func (b LinkBudget) LinkMarginDB(m modulation.Modulation, targetBER float64) (float64, error) {
	eb, err := b.EbNoDB(m)
	if err != nil {
		return 0, err
	}
	return ber.LinkMarginDB(eb, targetBER, m)
}

// LinkMarginCodedDB is LinkMarginDB for a coded modulation.
func (b LinkBudget) LinkMarginCodedDB(cm coding.CodedModulation, targetBER float64) (float64, error) {
	eb, err := b.EbNoCodedDB(cm)
	if err != nil {
		return 0, err
	}
	return cm.LinkMarginDB(eb, targetBER)
}

// ThroughputBps is the information rate cm carries in the link bandwidth.
func (b LinkBudget) ThroughputBps(cm coding.CodedModulation) float64 {
	return cm.ThroughputBps(b.bandwidthHz)
}

// PhyRate is the Shannon capacity of the link bandwidth at the link SNR.
func (b LinkBudget) PhyRate() phy.PhyRate {
	return phy.PhyRate{BandwidthHz: b.bandwidthHz, SNRLinear: b.SNRLinear()}
}

func (b LinkBudget) Quality() LinkQuality { return ClassifySNR(b.SNRDB()) }

// PowerFluxDensityDBWPerM2 is the flux density at the receiver, ignoring
// the frequency-dependent loss.
func (b LinkBudget) PowerFluxDensityDBWPerM2() float64 {
	return PowerFluxDensityDBWPerM2(b.tx.EIRPDBW(), b.path.DistanceM)
}
