// Package config loads link-budget scenarios from YAML or TOML files and
// turns them into validated core values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/linkbudget/coding"
	"github.com/signalsfoundry/linkbudget/core"
	"github.com/signalsfoundry/linkbudget/modulation"
	"github.com/signalsfoundry/linkbudget/sensitivity"
	"github.com/signalsfoundry/linkbudget/units"
)

// Scenario is the on-disk description of one link evaluation.
type Scenario struct {
	Name        string            `yaml:"name" toml:"name"`
	BandwidthHz float64           `yaml:"bandwidth_hz" toml:"bandwidth_hz"`
	Transmitter core.Transmitter  `yaml:"transmitter" toml:"transmitter"`
	Receiver    core.Receiver     `yaml:"receiver" toml:"receiver"`
	Path        PathConfig        `yaml:"path" toml:"path"`
	Geometry    *GeometryConfig   `yaml:"geometry,omitempty" toml:"geometry,omitempty"`
	ExtraLossDB float64           `yaml:"extra_loss_db" toml:"extra_loss_db"` // rain, gases, pointing
	Modcod      ModcodConfig      `yaml:"modcod" toml:"modcod"`
	TargetBER   float64           `yaml:"target_ber" toml:"target_ber"`
	Sensitivity SensitivityConfig `yaml:"sensitivity" toml:"sensitivity"`
	Pass        *PassConfig       `yaml:"pass,omitempty" toml:"pass,omitempty"`
}

// PathConfig carries the carrier frequency and, unless geometry is given,
// the link distance.
type PathConfig struct {
	FrequencyHz float64 `yaml:"frequency_hz" toml:"frequency_hz"`
	DistanceM   float64 `yaml:"distance_m" toml:"distance_m"`
}

// GeometryConfig derives the distance as the slant range to a satellite at
// AltitudeM seen at ElevationDeg.
type GeometryConfig struct {
	AltitudeM    float64 `yaml:"altitude_m" toml:"altitude_m"`
	ElevationDeg float64 `yaml:"elevation_deg" toml:"elevation_deg"`
	BodyRadiusM  float64 `yaml:"body_radius_m" toml:"body_radius_m"`
}

// ModcodConfig names either a preset or a modulation/FEC pair.
type ModcodConfig struct {
	Preset     string `yaml:"preset" toml:"preset"`
	Modulation string `yaml:"modulation" toml:"modulation"`
	FEC        string `yaml:"fec" toml:"fec"`
}

// SensitivityConfig holds the waveform inputs of the sensitivity report.
type SensitivityConfig struct {
	BitRateBps           float64 `yaml:"bit_rate_bps" toml:"bit_rate_bps"`
	NoiseFigureDB        float64 `yaml:"noise_figure_db" toml:"noise_figure_db"`
	ImplementationLossDB float64 `yaml:"implementation_loss_db" toml:"implementation_loss_db"`
	Rolloff              float64 `yaml:"rolloff" toml:"rolloff"`
}

// PassConfig describes an SGP4 pass sweep over a ground station.
type PassConfig struct {
	TLELine1        string  `yaml:"tle_line1" toml:"tle_line1"`
	TLELine2        string  `yaml:"tle_line2" toml:"tle_line2"`
	GroundLatDeg    float64 `yaml:"ground_lat_deg" toml:"ground_lat_deg"`
	GroundLonDeg    float64 `yaml:"ground_lon_deg" toml:"ground_lon_deg"`
	GroundAltM      float64 `yaml:"ground_alt_m" toml:"ground_alt_m"`
	Start           string  `yaml:"start" toml:"start"`
	DurationS       float64 `yaml:"duration_s" toml:"duration_s"`
	StepS           float64 `yaml:"step_s" toml:"step_s"`
	MinElevationDeg float64 `yaml:"min_elevation_deg" toml:"min_elevation_deg"`
}

const (
	defaultTargetBER = 1e-5
	defaultRolloff   = 0.35
	defaultStepS     = 30.0
)

// Default returns the reference Ka-band LEO downlink: 10 dBm into 35 dBi at
// 20 GHz over 550 km with 3 dB of extra loss, received by a 40 dBi, 2 dB NF
// terminal in 36 MHz.
func Default() Scenario {
	return Scenario{
		Name:        "ka-leo-downlink",
		BandwidthHz: 36e6,
		Transmitter: core.Transmitter{OutputPowerDBm: 10, GainDBi: 35, BandwidthHz: 36e6},
		Receiver: core.Receiver{
			GainDBi:       40,
			TemperatureK:  units.ReferenceTemperatureK,
			NoiseFigureDB: 2,
			BandwidthHz:   36e6,
		},
		Path:        PathConfig{FrequencyHz: 20e9, DistanceM: 550e3},
		ExtraLossDB: 3,
		Modcod:      ModcodConfig{Preset: "dvbs2-qpsk-1/2"},
		TargetBER:   defaultTargetBER,
		Sensitivity: SensitivityConfig{
			BitRateBps:    1e6,
			NoiseFigureDB: 3,
			Rolloff:       defaultRolloff,
		},
		Pass: &PassConfig{
			TLELine1:        "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990",
			TLELine2:        "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760",
			GroundLatDeg:    47.6,
			GroundLonDeg:    -122.3,
			Start:           "2021-10-02T14:00:00Z",
			DurationS:       5400,
			StepS:           defaultStepS,
			MinElevationDeg: 10,
		},
	}
}

// Load reads a scenario from path, choosing the decoder by extension.
func Load(path string) (Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(bytes.NewReader(raw))
	case ".toml":
		return DecodeTOML(bytes.NewReader(raw))
	default:
		return Scenario{}, fmt.Errorf("config: unsupported file extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// DecodeYAML decodes a scenario and rejects unknown fields.
func DecodeYAML(r io.Reader) (Scenario, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Scenario{}, fmt.Errorf("config: read yaml: %w", err)
	}
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Scenario{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Scenario{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	s.applyDefaults(yamlKeys(&doc).isDefined)
	return s, s.Validate()
}

// DecodeTOML decodes a scenario and rejects unknown keys.
func DecodeTOML(r io.Reader) (Scenario, error) {
	var s Scenario
	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return Scenario{}, fmt.Errorf("config: decode toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Scenario{}, fmt.Errorf("config: unknown toml keys: %s", strings.Join(keys, ", "))
	}
	s.applyDefaults(md.IsDefined)
	return s, s.Validate()
}

// keySet holds the dotted paths of every mapping key a YAML document sets.
type keySet map[string]bool

func yamlKeys(doc *yaml.Node) keySet {
	keys := keySet{}
	var walk func(n *yaml.Node, prefix string)
	walk = func(n *yaml.Node, prefix string) {
		if n.Kind == yaml.AliasNode && n.Alias != nil {
			n = n.Alias
		}
		switch n.Kind {
		case yaml.DocumentNode:
			for _, c := range n.Content {
				walk(c, prefix)
			}
		case yaml.MappingNode:
			for i := 0; i+1 < len(n.Content); i += 2 {
				key := prefix + n.Content[i].Value
				keys[key] = true
				walk(n.Content[i+1], key+".")
			}
		}
	}
	walk(doc, "")
	return keys
}

func (k keySet) isDefined(path ...string) bool { return k[strings.Join(path, ".")] }

// applyDefaults fills the keys a scenario file leaves out. A key that is
// present keeps its value, zero included, and is left to Validate.
// Component bandwidths follow the link bandwidth, a receiver without a
// noise temperature sits at 290 K and the sensitivity noise figure
// follows the receiver.
func (s *Scenario) applyDefaults(defined func(key ...string) bool) {
	if s.Name == "" {
		s.Name = "link"
	}
	if !defined("transmitter", "bandwidth_hz") {
		s.Transmitter.BandwidthHz = s.BandwidthHz
	}
	if !defined("receiver", "bandwidth_hz") {
		s.Receiver.BandwidthHz = s.BandwidthHz
	}
	if !defined("receiver", "temperature_k") {
		s.Receiver.TemperatureK = units.ReferenceTemperatureK
	}
	if !defined("target_ber") {
		s.TargetBER = defaultTargetBER
	}
	if !defined("sensitivity", "noise_figure_db") {
		s.Sensitivity.NoiseFigureDB = s.Receiver.NoiseFigureDB
	}
	if !defined("sensitivity", "rolloff") {
		s.Sensitivity.Rolloff = defaultRolloff
	}
	if s.Geometry != nil && !defined("geometry", "body_radius_m") {
		s.Geometry.BodyRadiusM = core.EarthRadiusM
	}
	if s.Pass != nil && !defined("pass", "step_s") {
		s.Pass.StepS = defaultStepS
	}
}

// Validate checks a scenario before it is built. Component errors keep
// their rferr.ErrDomain cause.
func (s Scenario) Validate() error {
	if !(s.BandwidthHz > 0) {
		return fmt.Errorf("config: bandwidth_hz must be > 0, got %v", s.BandwidthHz)
	}
	if !(s.TargetBER > 0 && s.TargetBER < 1) {
		return fmt.Errorf("config: target_ber must be in (0, 1), got %v", s.TargetBER)
	}
	if err := s.Transmitter.Validate(); err != nil {
		return fmt.Errorf("config: transmitter: %w", err)
	}
	if err := s.Receiver.Validate(); err != nil {
		return fmt.Errorf("config: receiver: %w", err)
	}
	if s.Modcod.Preset != "" && (s.Modcod.Modulation != "" || s.Modcod.FEC != "") {
		return fmt.Errorf("config: modcod.preset cannot be combined with modcod.modulation or modcod.fec")
	}
	if s.Geometry == nil && !(s.Path.DistanceM > 0) {
		return fmt.Errorf("config: path.distance_m must be > 0 when no geometry is given")
	}
	if s.Geometry != nil && s.Path.DistanceM != 0 {
		return fmt.Errorf("config: path.distance_m and geometry are mutually exclusive")
	}
	if s.Geometry != nil && !(s.Geometry.BodyRadiusM > 0) {
		return fmt.Errorf("config: geometry.body_radius_m must be > 0, got %v", s.Geometry.BodyRadiusM)
	}
	if s.Sensitivity.Rolloff < 0 || s.Sensitivity.Rolloff > 1 {
		return fmt.Errorf("config: sensitivity.rolloff must be in [0, 1], got %v", s.Sensitivity.Rolloff)
	}
	if s.Pass != nil {
		if _, err := s.Pass.StartTime(); err != nil {
			return err
		}
		if s.Pass.DurationS < 0 || !(s.Pass.StepS > 0) {
			return fmt.Errorf("config: pass.duration_s must be >= 0 and pass.step_s > 0")
		}
	}
	return nil
}

// StartTime parses Start as RFC 3339.
func (p PassConfig) StartTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, p.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: pass.start: %w", err)
	}
	return t, nil
}

// Duration is DurationS as a time.Duration.
func (p PassConfig) Duration() time.Duration {
	return time.Duration(p.DurationS * float64(time.Second))
}

// Step is StepS as a time.Duration.
func (p PassConfig) Step() time.Duration {
	return time.Duration(p.StepS * float64(time.Second))
}

// GroundStation is the ECEF position of the pass observer in kilometres.
func (p PassConfig) GroundStation() core.Vec3 {
	return core.GeodeticToECEF(p.GroundLatDeg, p.GroundLonDeg, p.GroundAltM/1000)
}

// Resolve returns the coded modulation and the label it is reported under.
func (m ModcodConfig) Resolve() (coding.CodedModulation, string, error) {
	if m.Preset != "" {
		cm, err := coding.Lookup(m.Preset)
		if err != nil {
			return coding.CodedModulation{}, "", fmt.Errorf("config: modcod: %w", err)
		}
		return cm, strings.ToLower(strings.TrimSpace(m.Preset)), nil
	}
	name := m.Modulation
	if name == "" {
		name = "qpsk"
	}
	mod, err := modulation.Parse(name)
	if err != nil {
		return coding.CodedModulation{}, "", fmt.Errorf("config: modcod.modulation: %w", err)
	}
	fec, err := coding.ParseFEC(m.FEC)
	if err != nil {
		return coding.CodedModulation{}, "", fmt.Errorf("config: modcod.fec: %w", err)
	}
	cm, err := coding.New(mod, fec)
	if err != nil {
		return coding.CodedModulation{}, "", fmt.Errorf("config: modcod: %w", err)
	}
	return cm, cm.String(), nil
}

// DistanceM is the configured distance or, with geometry, the slant range.
func (s Scenario) DistanceM() (float64, error) {
	if s.Geometry == nil {
		return s.Path.DistanceM, nil
	}
	d, err := core.SlantRangeM(s.Geometry.ElevationDeg, s.Geometry.AltitudeM, s.Geometry.BodyRadiusM)
	if err != nil {
		return 0, fmt.Errorf("config: geometry: %w", err)
	}
	return d, nil
}

// Built is a scenario turned into validated computation inputs.
type Built struct {
	Budget     core.LinkBudget
	Modcod     coding.CodedModulation
	ModcodName string
	TargetBER  float64
}

// Build assembles the link budget and modcod of s.
func (s Scenario) Build() (Built, error) {
	distance, err := s.DistanceM()
	if err != nil {
		return Built{}, err
	}
	path := core.PathLoss{FrequencyHz: s.Path.FrequencyHz, DistanceM: distance}
	budget, err := core.NewLinkBudget(s.Name, s.BandwidthHz, s.Transmitter, s.Receiver, path,
		core.WithFrequencyDependentLoss(s.ExtraLossDB))
	if err != nil {
		return Built{}, fmt.Errorf("config: %w", err)
	}
	cm, name, err := s.Modcod.Resolve()
	if err != nil {
		return Built{}, err
	}
	return Built{Budget: budget, Modcod: cm, ModcodName: name, TargetBER: s.TargetBER}, nil
}

// SensitivityParams returns the sensitivity inputs for cm at the scenario's
// target BER.
func (s Scenario) SensitivityParams(cm coding.CodedModulation) sensitivity.Params {
	return sensitivity.Params{
		Modulation:           cm.Modulation,
		BitRateBps:           s.Sensitivity.BitRateBps,
		CodeRate:             cm.CodeRate(),
		NoiseFigureDB:        s.Sensitivity.NoiseFigureDB,
		TargetBER:            s.TargetBER,
		ImplementationLossDB: s.Sensitivity.ImplementationLossDB,
	}
}
