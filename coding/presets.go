package coding

import (
	"sort"
	"strings"

	"github.com/signalsfoundry/linkbudget/modulation"
	"github.com/signalsfoundry/linkbudget/rferr"
)

// DVB-S2 operating points. APSK constellations are evaluated with the
// square-QAM BER of the same order.

func DVBS2QPSK12() CodedModulation {
	return CodedModulation{Modulation: modulation.QPSK(), FEC: MustLDPC(1.0 / 2)}
}

func DVBS2QPSK34() CodedModulation {
	return CodedModulation{Modulation: modulation.QPSK(), FEC: MustLDPC(3.0 / 4)}
}

func DVBS28PSK23() CodedModulation {
	return CodedModulation{Modulation: modulation.MustPSK(8), FEC: MustLDPC(2.0 / 3)}
}

func DVBS216APSK34() CodedModulation {
	return CodedModulation{Modulation: modulation.MustQAM(16), FEC: MustLDPC(3.0 / 4)}
}

func DVBS232APSK56() CodedModulation {
	return CodedModulation{Modulation: modulation.MustQAM(32), FEC: MustLDPC(5.0 / 6)}
}

var presets = map[string]func() CodedModulation{
	"dvbs2-qpsk-1/2":   DVBS2QPSK12,
	"dvbs2-qpsk-3/4":   DVBS2QPSK34,
	"dvbs2-8psk-2/3":   DVBS28PSK23,
	"dvbs2-16apsk-3/4": DVBS216APSK34,
	"dvbs2-32apsk-5/6": DVBS232APSK56,
}

// Preset is a named catalog entry.
type Preset struct {
	Name string
	CodedModulation
}

// Presets lists the catalog sorted by spectral efficiency.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for name, fn := range presets {
		out = append(out, Preset{Name: name, CodedModulation: fn()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SpectralEfficiency() < out[j].SpectralEfficiency()
	})
	return out
}

// Lookup returns the preset with the given name, case-insensitively.
func Lookup(name string) (CodedModulation, error) {
	fn, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return CodedModulation{}, rferr.Domain("unknown modcod preset %q", name)
	}
	return fn(), nil
}
