// Package phy computes Shannon channel capacity.
package phy

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/linkbudget/units"
)

// PhyRate is the capacity of an AWGN channel of the given bandwidth and
// linear SNR.
type PhyRate struct {
	BandwidthHz float64
	SNRLinear   float64
}

// FromSNRDB builds a PhyRate from an SNR in dB.
func FromSNRDB(bandwidthHz, snrDB float64) PhyRate {
	return PhyRate{BandwidthHz: bandwidthHz, SNRLinear: units.DBToLinear(snrDB)}
}

// Bps is B·log2(1 + SNR).
func (r PhyRate) Bps() float64  { return r.BandwidthHz * math.Log2(1+r.SNRLinear) }
func (r PhyRate) Mbps() float64 { return r.Bps() / 1e6 }
func (r PhyRate) Gbps() float64 { return r.Bps() / 1e9 }

// SpectralEfficiency is the capacity per hertz, log2(1 + SNR).
func (r PhyRate) SpectralEfficiency() float64 { return math.Log2(1 + r.SNRLinear) }

func (r PhyRate) String() string {
	switch bps := r.Bps(); {
	case bps >= 1e9:
		return fmt.Sprintf("%.3f Gbps", bps/1e9)
	case bps >= 1e6:
		return fmt.Sprintf("%.3f Mbps", bps/1e6)
	case bps >= 1e3:
		return fmt.Sprintf("%.3f kbps", bps/1e3)
	default:
		return fmt.Sprintf("%.3f bps", bps)
	}
}

// ShannonCapacityBps is the capacity of bandwidthHz at snrDB.
func ShannonCapacityBps(bandwidthHz, snrDB float64) float64 {
	return FromSNRDB(bandwidthHz, snrDB).Bps()
}
