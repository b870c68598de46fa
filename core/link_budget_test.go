package core

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/linkbudget/ber"
	"github.com/signalsfoundry/linkbudget/coding"
	"github.com/signalsfoundry/linkbudget/modulation"
	"github.com/signalsfoundry/linkbudget/rferr"
)

// kaLEODownlink is the reference Ka-band LEO link used across these tests:
// 10 dBm into a 35 dBi antenna, 550 km at 20 GHz, 3 dB of extra loss and a
// 40 dBi / 2 dB NF receiver in 36 MHz.
func kaLEODownlink(t *testing.T) LinkBudget {
	t.Helper()
	tx, err := NewTransmitter(10, 35, 36e6)
	if err != nil {
		t.Fatalf("NewTransmitter: %v", err)
	}
	rx, err := NewReceiver(40, 290, 2, 36e6)
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}
	b, err := NewLinkBudget("ka-leo", 36e6, tx, rx,
		PathLoss{FrequencyHz: 20e9, DistanceM: 550e3},
		WithFrequencyDependentLoss(3))
	if err != nil {
		t.Fatalf("NewLinkBudget: %v", err)
	}
	return b
}

func TestLinkBudgetEndToEnd(t *testing.T) {
	b := kaLEODownlink(t)

	if got := b.EIRPDBm(); got != 45 {
		t.Errorf("expected EIRP 45 dBm, got %v", got)
	}
	if got := b.FreeSpacePathLossDB(); math.Abs(got-173.2756) > 1e-3 {
		t.Errorf("expected FSPL 173.276 dB, got %v", got)
	}
	if got := b.PathLossDB(); math.Abs(got-176.2756) > 1e-3 {
		t.Errorf("expected total path loss 176.276 dB, got %v", got)
	}
	if got := b.ReceivedPowerDBm(); math.Abs(got-(-91.2756)) > 1e-3 {
		t.Errorf("expected received power -91.276 dBm, got %v", got)
	}
	// Independently computed reference.
	if got := b.SNRDB(); math.Abs(got-5.1365) > 0.1 {
		t.Errorf("expected SNR 5.14 dB, got %v", got)
	}
	if got := b.COverNoDBHz(); math.Abs(got-80.6996) > 1e-3 {
		t.Errorf("expected C/No 80.70 dB-Hz, got %v", got)
	}
	if got := b.Quality(); got != LinkQualityFair {
		t.Errorf("expected fair link, got %s", got)
	}
	if got := b.PhyRate().Mbps(); math.Abs(got-75.3105) > 1e-3 {
		t.Errorf("expected capacity 75.31 Mbps, got %v", got)
	}
	if got := b.PowerFluxDensityDBWPerM2(); math.Abs(got-(-110.7994)) > 1e-3 {
		t.Errorf("expected PFD -110.80 dBW/m2, got %v", got)
	}
}

// The QPSK BER of the link must agree with the inversion that produced the
// requirement for that same BER.
func TestLinkBudgetBERConsistentWithInversion(t *testing.T) {
	b := kaLEODownlink(t)
	qpsk := modulation.QPSK()

	eb, err := b.EbNoDB(qpsk)
	if err != nil {
		t.Fatalf("EbNoDB: %v", err)
	}
	if math.Abs(eb-(b.SNRDB()-10*math.Log10(2))) > 1e-9 {
		t.Fatalf("Eb/No = %v, want SNR - 3.01", eb)
	}
	p, err := b.BER(qpsk)
	if err != nil {
		t.Fatalf("BER: %v", err)
	}
	if math.Abs(p-0.035424) > 1e-5 {
		t.Fatalf("QPSK BER = %v, want ~0.0354", p)
	}
	req, err := ber.RequiredEbNoDB(p, qpsk)
	if err != nil {
		t.Fatalf("RequiredEbNoDB: %v", err)
	}
	if math.Abs(req-eb) > 1e-6 {
		t.Fatalf("required Eb/No %v does not reproduce link Eb/No %v", req, eb)
	}
	margin, err := b.LinkMarginDB(qpsk, p)
	if err != nil {
		t.Fatalf("LinkMarginDB: %v", err)
	}
	if math.Abs(margin) > 1e-6 {
		t.Fatalf("margin at the link's own BER should be 0, got %v", margin)
	}
}

func TestLinkBudgetCoded(t *testing.T) {
	b := kaLEODownlink(t)
	cm := coding.DVBS2QPSK34()

	eb, err := b.EbNoCodedDB(cm)
	if err != nil {
		t.Fatalf("EbNoCodedDB: %v", err)
	}
	if math.Abs(eb-3.3756) > 1e-3 {
		t.Fatalf("coded Eb/No = %v, want 3.376", eb)
	}
	coded, err := b.BERCoded(cm)
	if err != nil {
		t.Fatalf("BERCoded: %v", err)
	}
	uncoded, err := b.BER(modulation.QPSK())
	if err != nil {
		t.Fatalf("BER: %v", err)
	}
	if !(coded < uncoded) {
		t.Fatalf("coded BER %v should beat uncoded %v", coded, uncoded)
	}

	margin, err := b.LinkMarginCodedDB(cm, 1e-5)
	if err != nil {
		t.Fatalf("LinkMarginCodedDB: %v", err)
	}
	req, _ := cm.RequiredEbNoDB(1e-5)
	if margin != eb-req {
		t.Fatalf("margin = %v, want %v", margin, eb-req)
	}
	if got := b.ThroughputBps(cm); math.Abs(got-54e6) > 1e-3 {
		t.Fatalf("throughput = %v, want 54 Mbps", got)
	}
}

func TestLinkBudgetErrorsPropagate(t *testing.T) {
	b := kaLEODownlink(t)
	if _, err := b.LinkMarginDB(modulation.QPSK(), 0); !errors.Is(err, rferr.ErrDomain) {
		t.Fatalf("expected ErrDomain, got %v", err)
	}
	if _, err := b.BER(modulation.Modulation{}); !errors.Is(err, rferr.ErrDomain) {
		t.Fatalf("expected ErrDomain, got %v", err)
	}
}

func TestNewLinkBudgetValidation(t *testing.T) {
	tx := Transmitter{OutputPowerDBm: 10, GainDBi: 35, BandwidthHz: 36e6}
	rx := Receiver{GainDBi: 40, TemperatureK: 290, NoiseFigureDB: 2, BandwidthHz: 36e6}
	path := PathLoss{FrequencyHz: 20e9, DistanceM: 550e3}

	cases := map[string]func() error{
		"bandwidth": func() error { _, err := NewLinkBudget("x", 0, tx, rx, path); return err },
		"tx": func() error {
			bad := tx
			bad.BandwidthHz = 0
			_, err := NewLinkBudget("x", 36e6, bad, rx, path)
			return err
		},
		"rx": func() error {
			bad := rx
			bad.TemperatureK = -1
			_, err := NewLinkBudget("x", 36e6, tx, bad, path)
			return err
		},
		"path": func() error {
			_, err := NewLinkBudget("x", 36e6, tx, rx, PathLoss{FrequencyHz: 20e9})
			return err
		},
		"extra loss": func() error {
			_, err := NewLinkBudget("x", 36e6, tx, rx, path, WithFrequencyDependentLoss(math.Inf(1)))
			return err
		},
	}
	for name, fn := range cases {
		if err := fn(); !errors.Is(err, rferr.ErrDomain) {
			t.Errorf("%s: expected ErrDomain, got %v", name, err)
		}
	}
}

// Changing one input must change every derived quantity downstream of it;
// nothing is cached.
func TestLinkBudgetRecomputesFromInputs(t *testing.T) {
	b := kaLEODownlink(t)
	tx := b.Transmitter()
	tx.OutputPowerDBm += 3
	louder, err := NewLinkBudget(b.Name(), b.BandwidthHz(), tx, b.Receiver(), b.Path(),
		WithFrequencyDependentLoss(b.FrequencyDependentLossDB()))
	if err != nil {
		t.Fatalf("NewLinkBudget: %v", err)
	}
	if d := louder.SNRDB() - b.SNRDB(); math.Abs(d-3) > 1e-9 {
		t.Fatalf("3 dB more power moved SNR by %v", d)
	}
	if b.EIRPDBm() != 45 {
		t.Fatalf("base budget changed: EIRP %v", b.EIRPDBm())
	}
}
