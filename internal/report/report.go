// Package report renders evaluation results as aligned text or JSON.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/linkbudget/ber"
	"github.com/signalsfoundry/linkbudget/coding"
	"github.com/signalsfoundry/linkbudget/internal/evaluation"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts "text" or "json", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("report: unknown format %q (want text or json)", s)
	}
}

// field is one labelled quantity of a key/value document.
type field struct {
	key   string
	label string
	value any
	unit  string
}

// table is a list of rows sharing the same columns.
type table struct {
	keys    []string
	headers []string
	rows    [][]any
}

// WriteBudget renders a single evaluation.
func WriteBudget(w io.Writer, f Format, rep evaluation.Report) error {
	fields := []field{
		{"name", "Link", rep.Name, ""},
		{"modcod", "Modcod", rep.Modcod, ""},
		{"eirp_dbm", "EIRP", rep.EIRPDBm, "dBm"},
		{"eirp_dbw", "EIRP", rep.EIRPDBW, "dBW"},
		{"g_over_t_dbk", "G/T (T)", rep.GOverTDBK, "dB/K"},
		{"g_over_t_system_dbk", "G/T (Tsys)", rep.GOverTSystemDBK, "dB/K"},
		{"free_space_path_loss_db", "Free-space path loss", rep.FreeSpacePathLossDB, "dB"},
		{"extra_loss_db", "Extra loss", rep.ExtraLossDB, "dB"},
		{"path_loss_db", "Total path loss", rep.PathLossDB, "dB"},
		{"received_power_dbm", "Received power", rep.ReceivedPowerDBm, "dBm"},
		{"noise_power_dbm", "Noise power", rep.NoisePowerDBm, "dBm"},
		{"pfd_dbw_per_m2", "Power flux density", rep.PFDDBWPerM2, "dBW/m²"},
		{"snr_db", "SNR", rep.SNRDB, "dB"},
		{"c_over_no_dbhz", "C/No", rep.COverNoDBHz, "dB-Hz"},
		{"ebno_db", "Eb/No", rep.EbNoDB, "dB"},
		{"ber", "BER", rep.BER, ""},
		{"target_ber", "Target BER", rep.TargetBER, ""},
		{"required_ebno_db", "Required Eb/No", rep.RequiredEbNoDB, "dB"},
		{"margin_db", "Link margin", rep.MarginDB, "dB"},
		{"capacity_bps", "Shannon capacity", rep.CapacityBps, "bps"},
		{"throughput_bps", "Throughput", rep.ThroughputBps, "bps"},
		{"evm_percent", "EVM", rep.EVMPercent, "%"},
		{"sensitivity_matched_dbm", "Sensitivity (matched filter)", rep.SensitivityMatchedDBm, "dBm"},
		{"sensitivity_bandpass_dbm", "Sensitivity (bandpass)", rep.SensitivityBandpassDBm, "dBm"},
		{"quality", "Quality", rep.Quality, ""},
	}
	switch f {
	case FormatJSON:
		doc := make(map[string]any, len(fields))
		for _, fd := range fields {
			doc[fd.key] = jsonValue(fd.value)
		}
		return writeJSON(w, doc)
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, fd := range fields {
			fmt.Fprintf(tw, "%s\t%s\n", fd.label, strings.TrimSpace(textValue(fd.value)+" "+fd.unit))
		}
		return tw.Flush()
	}
}

// WriteSensitivity renders a sensitivity table.
func WriteSensitivity(w io.Writer, f Format, rows []evaluation.SensitivityRow) error {
	t := table{
		keys:    []string{"modcod", "required_ebno_db", "matched_dbm", "bandpass_dbm"},
		headers: []string{"MODCOD", "REQ EB/NO (dB)", "MATCHED (dBm)", "BANDPASS (dBm)"},
	}
	for _, r := range rows {
		t.rows = append(t.rows, []any{r.Modcod, r.RequiredEbNoDB, r.MatchedDBm, r.BandpassDBm})
	}
	return writeTable(w, f, "sensitivity", t)
}

// WriteModcods renders the preset catalog with the Eb/No each needs for
// targetBER.
func WriteModcods(w io.Writer, f Format, presets []coding.Preset, targetBER float64) error {
	t := table{
		keys:    []string{"name", "modcod", "spectral_efficiency", "coding_gain_db", "required_ebno_db"},
		headers: []string{"NAME", "MODCOD", "BITS/SYMBOL", "GAIN (dB)", "REQ EB/NO (dB)"},
	}
	for _, p := range presets {
		req, err := p.RequiredEbNoDB(targetBER)
		if err != nil {
			return fmt.Errorf("report: %s: %w", p.Name, err)
		}
		t.rows = append(t.rows, []any{p.Name, p.String(), p.SpectralEfficiency(), p.CodingGainDB(), req})
	}
	return writeTable(w, f, "modcods", t)
}

// WriteCurve renders BER against Eb/No.
func WriteCurve(w io.Writer, f Format, points []ber.Point) error {
	t := table{
		keys:    []string{"ebno_db", "ber"},
		headers: []string{"EB/NO (dB)", "BER"},
	}
	for _, p := range points {
		t.rows = append(t.rows, []any{p.EbNoDB, p.BER})
	}
	return writeTable(w, f, "points", t)
}

// WritePass renders a pass sweep.
func WritePass(w io.Writer, f Format, samples []evaluation.PassSample) error {
	t := table{
		keys:    []string{"time", "elevation_deg", "range_km", "doppler_khz", "visible", "snr_db", "margin_db"},
		headers: []string{"TIME", "ELEVATION (deg)", "RANGE (km)", "DOPPLER (kHz)", "VISIBLE", "SNR (dB)", "MARGIN (dB)"},
	}
	for _, s := range samples {
		snr, margin := any(s.SNRDB), any(s.MarginDB)
		if !s.Visible {
			snr, margin = "-", "-"
		}
		t.rows = append(t.rows, []any{s.Time, s.ElevationDeg, s.RangeM / 1000, s.DopplerHz / 1000, s.Visible, snr, margin})
	}
	return writeTable(w, f, "samples", t)
}

func writeTable(w io.Writer, f Format, name string, t table) error {
	switch f {
	case FormatJSON:
		rows := make([]any, 0, len(t.rows))
		for _, r := range t.rows {
			obj := make(map[string]any, len(t.keys))
			for i, k := range t.keys {
				obj[k] = jsonValue(r[i])
			}
			rows = append(rows, obj)
		}
		return writeJSON(w, map[string]any{name: rows})
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(t.headers, "\t"))
		for _, r := range t.rows {
			cells := make([]string, len(r))
			for i, v := range r {
				cells[i] = textValue(v)
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		return tw.Flush()
	}
}

func writeJSON(w io.Writer, doc map[string]any) error {
	st, err := structpb.NewStruct(doc)
	if err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(st)
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

// jsonValue maps v onto the types structpb accepts. JSON has no encoding
// for NaN or infinities, so those become strings.
func jsonValue(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return strconv.FormatFloat(x, 'g', -1, 64)
		}
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return v
	}
}

func textValue(v any) string {
	switch x := v.(type) {
	case float64:
		switch {
		case math.IsNaN(x):
			return "n/a"
		case x != 0 && (math.Abs(x) < 1e-3 || math.Abs(x) >= 1e6):
			return strconv.FormatFloat(x, 'e', 3, 64)
		default:
			return strconv.FormatFloat(x, 'f', 2, 64)
		}
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case bool:
		if x {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(v)
	}
}
