// Package modulation describes the closed set of digital modulations the
// link-budget chain understands.
package modulation

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/signalsfoundry/linkbudget/rferr"
)

// Kind tags a modulation family. The zero value is not a valid modulation.
type Kind int

const (
	KindUnknown Kind = iota
	KindBPSK
	KindQPSK
	KindMPSK
	KindMQAM
	KindMSK
)

func (k Kind) String() string {
	switch k {
	case KindBPSK:
		return "bpsk"
	case KindQPSK:
		return "qpsk"
	case KindMPSK:
		return "mpsk"
	case KindMQAM:
		return "mqam"
	case KindMSK:
		return "msk"
	default:
		return "unknown"
	}
}

// Modulation is an immutable modulation value. Construct it with BPSK, QPSK,
// MSK, PSK or QAM; the zero value reports KindUnknown and fails Validate.
type Modulation struct {
	kind  Kind
	order int
}

func BPSK() Modulation { return Modulation{kind: KindBPSK, order: 2} }
func QPSK() Modulation { return Modulation{kind: KindQPSK, order: 4} }
func MSK() Modulation  { return Modulation{kind: KindMSK, order: 2} }

// PSK returns an M-PSK modulation. The order must be a power of two >= 2.
func PSK(order int) (Modulation, error) {
	if order < 2 || !isPowerOfTwo(order) {
		return Modulation{}, rferr.Domain("M-PSK order must be a power of two >= 2, got %d", order)
	}
	return Modulation{kind: KindMPSK, order: order}, nil
}

// QAM returns an M-QAM modulation. The order must be a power of two >= 4.
func QAM(order int) (Modulation, error) {
	if order < 4 || !isPowerOfTwo(order) {
		return Modulation{}, rferr.Domain("M-QAM order must be a power of two >= 4, got %d", order)
	}
	return Modulation{kind: KindMQAM, order: order}, nil
}

// MustPSK is like PSK but panics on an invalid order. It is meant for
// package-level presets with constant orders.
func MustPSK(order int) Modulation {
	m, err := PSK(order)
	if err != nil {
		panic(err)
	}
	return m
}

// MustQAM is like QAM but panics on an invalid order.
func MustQAM(order int) Modulation {
	m, err := QAM(order)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Modulation) Kind() Kind { return m.kind }

// Order is the constellation size M.
func (m Modulation) Order() int { return m.order }

// Validate reports whether m was built by one of the constructors.
func (m Modulation) Validate() error {
	switch m.kind {
	case KindBPSK, KindMSK:
		if m.order == 2 {
			return nil
		}
	case KindQPSK:
		if m.order == 4 {
			return nil
		}
	case KindMPSK:
		if m.order >= 2 && isPowerOfTwo(m.order) {
			return nil
		}
	case KindMQAM:
		if m.order >= 4 && isPowerOfTwo(m.order) {
			return nil
		}
	}
	return rferr.Domain("invalid modulation %s/%d", m.kind, m.order)
}

// BitsPerSymbol returns log2(M); BPSK and MSK carry one bit per symbol.
func (m Modulation) BitsPerSymbol() int {
	switch m.kind {
	case KindBPSK, KindMSK:
		return 1
	case KindQPSK:
		return 2
	case KindMPSK, KindMQAM:
		return bits.TrailingZeros(uint(m.order))
	default:
		return 0
	}
}

// SymbolRate returns infoBitRate / (bitsPerSymbol · codeRate) in symbols/s.
func (m Modulation) SymbolRate(infoBitRate, codeRate float64) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	if !(codeRate > 0 && codeRate <= 1) {
		return 0, rferr.Domain("code rate must be in (0, 1], got %v", codeRate)
	}
	if infoBitRate < 0 || math.IsNaN(infoBitRate) {
		return 0, rferr.Domain("bit rate must be >= 0, got %v", infoBitRate)
	}
	return infoBitRate / (float64(m.BitsPerSymbol()) * codeRate), nil
}

// OccupiedBandwidth returns the raised-cosine occupied bandwidth
// symbolRate·(1 + rolloff).
func (m Modulation) OccupiedBandwidth(symbolRate, rolloff float64) (float64, error) {
	if !(rolloff >= 0 && rolloff <= 1) {
		return 0, rferr.Domain("roll-off must be in [0, 1], got %v", rolloff)
	}
	return symbolRate * (1 + rolloff), nil
}

// NullBandwidth returns the main-lobe null-to-null bandwidth: 2·Rs for
// linear modulations and 1.5·Rs for MSK.
func (m Modulation) NullBandwidth(symbolRate float64) float64 {
	if m.kind == KindMSK {
		return 1.5 * symbolRate
	}
	return 2 * symbolRate
}

// SpectralEfficiency is bitsPerSymbol · codeRate in bit/s/Hz.
func (m Modulation) SpectralEfficiency(codeRate float64) float64 {
	return float64(m.BitsPerSymbol()) * codeRate
}

func (m Modulation) String() string {
	switch m.kind {
	case KindBPSK:
		return "BPSK"
	case KindQPSK:
		return "QPSK"
	case KindMSK:
		return "MSK"
	case KindMPSK:
		return fmt.Sprintf("%d-PSK", m.order)
	case KindMQAM:
		return fmt.Sprintf("%d-QAM", m.order)
	default:
		return "unknown"
	}
}

// Parse accepts names such as "bpsk", "QPSK", "msk", "8psk", "8-PSK",
// "16qam" or "64-QAM".
func Parse(name string) (Modulation, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "-", "")
	switch s {
	case "bpsk":
		return BPSK(), nil
	case "qpsk":
		return QPSK(), nil
	case "msk":
		return MSK(), nil
	}
	for _, suffix := range []string{"apsk", "psk", "qam"} {
		if !strings.HasSuffix(s, suffix) {
			continue
		}
		order, err := strconv.Atoi(strings.TrimSuffix(s, suffix))
		if err != nil {
			break
		}
		if suffix == "psk" {
			return PSK(order)
		}
		// APSK constellations are evaluated with the square-QAM formula of
		// the same order.
		return QAM(order)
	}
	return Modulation{}, rferr.Domain("unknown modulation %q", name)
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }
