package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalsfoundry/linkbudget/coding"
	"github.com/signalsfoundry/linkbudget/core"
	"github.com/signalsfoundry/linkbudget/rferr"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultBuildsReferenceLink(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
	built, err := s.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := built.Budget.PathLossDB(); math.Abs(got-176.2756) > 1e-3 {
		t.Fatalf("PathLossDB = %v, want 176.2756", got)
	}
	if built.ModcodName != "dvbs2-qpsk-1/2" {
		t.Fatalf("ModcodName = %q", built.ModcodName)
	}
	if built.Modcod != coding.DVBS2QPSK12() {
		t.Fatalf("Modcod = %v, want %v", built.Modcod, coding.DVBS2QPSK12())
	}
	if _, err := s.Pass.StartTime(); err != nil {
		t.Fatalf("default pass start: %v", err)
	}
}

const yamlScenario = `
name: x-band-geo
bandwidth_hz: 10e6
transmitter:
  output_power_dbm: 50
  gain_dbi: 30
receiver:
  gain_dbi: 45
  noise_figure_db: 1.5
path:
  frequency_hz: 8.2e9
geometry:
  altitude_m: 35786e3
  elevation_deg: 30
modcod:
  modulation: 8psk
  fec: ldpc:2/3
target_ber: 1e-6
sensitivity:
  bit_rate_bps: 2e6
  rolloff: 0.2
`

func TestLoadYAML(t *testing.T) {
	s, err := Load(writeFile(t, "geo.yaml", yamlScenario))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Transmitter.BandwidthHz != 10e6 || s.Receiver.BandwidthHz != 10e6 {
		t.Fatalf("component bandwidths should default to the link bandwidth, got %+v %+v", s.Transmitter, s.Receiver)
	}
	if s.Receiver.TemperatureK != 290 {
		t.Fatalf("receiver temperature = %v, want 290", s.Receiver.TemperatureK)
	}
	if s.Sensitivity.NoiseFigureDB != 1.5 {
		t.Fatalf("sensitivity noise figure = %v, want receiver NF 1.5", s.Sensitivity.NoiseFigureDB)
	}
	if s.Sensitivity.Rolloff != 0.2 {
		t.Fatalf("rolloff = %v, want 0.2", s.Sensitivity.Rolloff)
	}
	if s.Geometry.BodyRadiusM != core.EarthRadiusM {
		t.Fatalf("body radius = %v, want Earth radius", s.Geometry.BodyRadiusM)
	}

	d, err := s.DistanceM()
	if err != nil {
		t.Fatalf("DistanceM: %v", err)
	}
	if d <= 35786e3 || d >= 42000e3 {
		t.Fatalf("slant range at 30 deg = %v m, want between altitude and horizon range", d)
	}

	built, err := s.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built.ModcodName != "8-PSK + LDPC (R=2/3)" {
		t.Fatalf("ModcodName = %q", built.ModcodName)
	}
	if built.TargetBER != 1e-6 {
		t.Fatalf("TargetBER = %v", built.TargetBER)
	}
}

const tomlScenario = `
name = "s-band-leo"
bandwidth_hz = 2e6
extra_loss_db = 1.0

[transmitter]
output_power_dbm = 33.0
gain_dbi = 6.0

[receiver]
gain_dbi = 20.0
temperature_k = 150.0
noise_figure_db = 0.0

[path]
frequency_hz = 2.2e9
distance_m = 1200e3

[modcod]
preset = "DVBS2-QPSK-3/4"
`

func TestLoadTOML(t *testing.T) {
	s, err := Load(writeFile(t, "leo.toml", tomlScenario))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Receiver.TemperatureK != 150 {
		t.Fatalf("receiver temperature = %v, want 150", s.Receiver.TemperatureK)
	}
	if s.TargetBER != 1e-5 {
		t.Fatalf("TargetBER default = %v, want 1e-5", s.TargetBER)
	}
	built, err := s.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built.ModcodName != "dvbs2-qpsk-3/4" {
		t.Fatalf("ModcodName = %q", built.ModcodName)
	}
	if got := built.Budget.FrequencyDependentLossDB(); got != 1 {
		t.Fatalf("extra loss = %v, want 1", got)
	}
}

const yamlExplicitZeros = `
bandwidth_hz: 1e6
receiver:
  gain_dbi: 20
  noise_figure_db: 2
path: {frequency_hz: 2.2e9, distance_m: 1000e3}
sensitivity:
  bit_rate_bps: 1e6
  noise_figure_db: 0
`

// Keys that are present keep their value even when it is zero; only
// missing keys take defaults.
func TestDecodeKeepsExplicitZeros(t *testing.T) {
	s, err := DecodeYAML(strings.NewReader(yamlExplicitZeros))
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	if s.Sensitivity.NoiseFigureDB != 0 {
		t.Fatalf("sensitivity noise figure = %v, want explicit 0", s.Sensitivity.NoiseFigureDB)
	}
	if s.Sensitivity.Rolloff != 0.35 {
		t.Fatalf("omitted rolloff = %v, want 0.35", s.Sensitivity.Rolloff)
	}
	if s.Receiver.TemperatureK != 290 {
		t.Fatalf("omitted temperature = %v, want 290", s.Receiver.TemperatureK)
	}

	s, err = DecodeTOML(strings.NewReader(`
bandwidth_hz = 1e6
[receiver]
gain_dbi = 20.0
noise_figure_db = 2.0
[path]
frequency_hz = 2.2e9
distance_m = 1000e3
[sensitivity]
noise_figure_db = 0.0
rolloff = 0.0
`))
	if err != nil {
		t.Fatalf("DecodeTOML: %v", err)
	}
	if s.Sensitivity.NoiseFigureDB != 0 || s.Sensitivity.Rolloff != 0 {
		t.Fatalf("sensitivity = %+v, want explicit zero noise figure and rolloff", s.Sensitivity)
	}
}

func TestDecodeRejectsExplicitZeroTemperature(t *testing.T) {
	cases := map[string]func() (Scenario, error){
		"yaml": func() (Scenario, error) {
			return DecodeYAML(strings.NewReader(strings.Replace(yamlExplicitZeros,
				"  noise_figure_db: 2\n", "  noise_figure_db: 2\n  temperature_k: 0\n", 1)))
		},
		"toml": func() (Scenario, error) {
			return DecodeTOML(strings.NewReader(`
bandwidth_hz = 1e6
[receiver]
temperature_k = 0.0
[path]
frequency_hz = 2.2e9
distance_m = 1000e3
`))
		},
	}
	for name, decode := range cases {
		if _, err := decode(); !errors.Is(err, rferr.ErrDomain) {
			t.Errorf("%s: expected ErrDomain for temperature_k 0, got %v", name, err)
		}
	}
}

func TestDecodeKeepsExplicitZeroPassStep(t *testing.T) {
	body := `
bandwidth_hz: 1e6
path: {frequency_hz: 2.2e9, distance_m: 1000e3}
pass:
  start: "2021-10-02T14:00:00Z"
  duration_s: 60
  step_s: 0
`
	if _, err := DecodeYAML(strings.NewReader(body)); err == nil || !strings.Contains(err.Error(), "step_s") {
		t.Fatalf("expected pass step error, got %v", err)
	}
	s, err := DecodeYAML(strings.NewReader(strings.Replace(body, "  step_s: 0\n", "", 1)))
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	if s.Pass.StepS != 30 {
		t.Fatalf("omitted step = %v, want 30", s.Pass.StepS)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	cases := map[string]string{
		"bad.yaml": "bandwidth_hz: 1e6\npath:\n  distance_m: 1\n  frequency_hz: 1e9\nbandwith_hz: 2\n",
		"bad.toml": "bandwidth_hz = 1e6\nbandwith_hz = 2.0\n[path]\ndistance_m = 1.0\nfrequency_hz = 1e9\n",
	}
	for name, body := range cases {
		if _, err := Load(writeFile(t, name, body)); err == nil {
			t.Errorf("%s: expected unknown-field error", name)
		}
	}
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	_, err := Load(writeFile(t, "scenario.json", "{}"))
	if err == nil || !strings.Contains(err.Error(), "unsupported file extension") {
		t.Fatalf("expected extension error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"zero bandwidth", func(s *Scenario) { s.BandwidthHz = 0 }},
		{"target ber one", func(s *Scenario) { s.TargetBER = 1 }},
		{"preset and modulation", func(s *Scenario) { s.Modcod.Modulation = "qpsk" }},
		{"no distance", func(s *Scenario) { s.Path.DistanceM = 0 }},
		{"distance and geometry", func(s *Scenario) { s.Geometry = &GeometryConfig{AltitudeM: 1, ElevationDeg: 1} }},
		{"rolloff above one", func(s *Scenario) { s.Sensitivity.Rolloff = 1.5 }},
		{"bad pass start", func(s *Scenario) { s.Pass.Start = "yesterday" }},
		{"zero pass step", func(s *Scenario) { s.Pass.StepS = 0 }},
		{"zero receiver temperature", func(s *Scenario) { s.Receiver.TemperatureK = 0 }},
		{"zero transmitter bandwidth", func(s *Scenario) { s.Transmitter.BandwidthHz = 0 }},
		{"zero body radius", func(s *Scenario) {
			s.Path.DistanceM = 0
			s.Geometry = &GeometryConfig{AltitudeM: 1, ElevationDeg: 1}
		}},
	}
	for _, tc := range cases {
		s := Default()
		pass := *s.Pass
		s.Pass = &pass
		tc.mutate(&s)
		if err := s.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestBuildPropagatesDomainErrors(t *testing.T) {
	s := Default()
	s.Path.FrequencyHz = 0
	if _, err := s.Build(); !errors.Is(err, rferr.ErrDomain) {
		t.Fatalf("expected ErrDomain for zero frequency, got %v", err)
	}

	s = Default()
	s.Modcod = ModcodConfig{Modulation: "7psk"}
	if _, err := s.Build(); !errors.Is(err, rferr.ErrDomain) {
		t.Fatalf("expected ErrDomain for 7-PSK, got %v", err)
	}

	s = Default()
	s.Modcod = ModcodConfig{Preset: "dvbs2-64apsk-9/10"}
	if _, err := s.Build(); !errors.Is(err, rferr.ErrDomain) {
		t.Fatalf("expected ErrDomain for unknown preset, got %v", err)
	}
}

func TestResolveDefaultsToUncodedQPSK(t *testing.T) {
	cm, name, err := ModcodConfig{}.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if name != "QPSK" || cm.CodeRate() != 1 || cm.CodingGainDB() != 0 {
		t.Fatalf("Resolve() = %v %q", cm, name)
	}
}

func TestSensitivityParams(t *testing.T) {
	s := Default()
	p := s.SensitivityParams(coding.DVBS2QPSK12())
	if p.BitRateBps != 1e6 || p.CodeRate != 0.5 || p.NoiseFigureDB != 3 || p.TargetBER != 1e-5 {
		t.Fatalf("unexpected params %+v", p)
	}
}
