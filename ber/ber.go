// Package ber evaluates theoretical bit error rates for the supported
// modulations and inverts them to the Eb/No a target BER requires.
package ber

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/signalsfoundry/linkbudget/internal/solve"
	"github.com/signalsfoundry/linkbudget/modulation"
	"github.com/signalsfoundry/linkbudget/rferr"
	"github.com/signalsfoundry/linkbudget/units"
)

// Search bounds for RequiredEbNoDB, in dB.
const (
	MinEbNoDB = -10.0
	MaxEbNoDB = 50.0
)

// Q is the Gaussian tail probability Q(x) = 0.5·erfc(x/√2). It is taken
// from the lower CDF so the far tail keeps full precision.
func Q(x float64) float64 { return distuv.UnitNormal.CDF(-x) }

// Above logQTail LogQ switches from ln Q(x) to the Mills-ratio continued
// fraction, which stays finite where Q underflows.
const (
	logQTail  = 8.0
	logQTerms = 80
)

// LogQ is ln Q(x), accurate into the tail where Q itself underflows to
// zero.
func LogQ(x float64) float64 {
	if x < logQTail {
		return math.Log(Q(x))
	}
	t := x
	for k := logQTerms; k >= 1; k-- {
		t = x + float64(k)/t
	}
	return -x*x/2 - 0.5*math.Log(2*math.Pi) - math.Log(t)
}

// QInv returns x such that Q(x) = p, for p in (0, 1).
func QInv(p float64) float64 { return -distuv.UnitNormal.Quantile(p) }

// BPSK is the coherent BPSK/QPSK bit error rate Q(√(2·Eb/No)).
func BPSK(ebNo float64) float64 { return Q(math.Sqrt(2 * ebNo)) }

// MPSK approximates the Gray-coded M-PSK bit error rate
// (2/k)·Q(√(2k·Eb/No)·sin(π/M)), k = log2 M. Binary PSK uses the exact
// BPSK expression.
func MPSK(ebNo float64, order int) float64 {
	if order == 2 {
		return BPSK(ebNo)
	}
	k := math.Log2(float64(order))
	return 2 / k * Q(math.Sqrt(2*k*ebNo)*math.Sin(math.Pi/float64(order)))
}

// MQAM approximates the square M-QAM bit error rate
// (4/k)·(1 − 1/√M)·Q(√(3k·Eb/No/(M − 1))).
func MQAM(ebNo float64, order int) float64 {
	m := float64(order)
	k := math.Log2(m)
	return 4 / k * (1 - 1/math.Sqrt(m)) * Q(math.Sqrt(3*k*ebNo/(m-1)))
}

// BER returns the bit error rate at a linear Eb/No for m. It returns NaN
// for a modulation that does not validate.
func BER(ebNo float64, m modulation.Modulation) float64 {
	if m.Validate() != nil {
		return math.NaN()
	}
	switch m.Kind() {
	case modulation.KindBPSK, modulation.KindQPSK, modulation.KindMSK:
		return BPSK(ebNo)
	case modulation.KindMPSK:
		return MPSK(ebNo, m.Order())
	case modulation.KindMQAM:
		return MQAM(ebNo, m.Order())
	default:
		return math.NaN()
	}
}

// FromDB returns the bit error rate at ebNoDB, clamped to [0, 1].
func FromDB(ebNoDB float64, m modulation.Modulation) float64 {
	p := BER(units.DBToLinear(ebNoDB), m)
	if math.IsNaN(p) {
		return p
	}
	return math.Min(1, math.Max(0, p))
}

// LogBER is the natural log of the unclamped bit error rate at a linear
// Eb/No. It keeps a usable slope at high Eb/No where BER rounds to zero.
func LogBER(ebNo float64, m modulation.Modulation) float64 {
	if m.Validate() != nil {
		return math.NaN()
	}
	switch m.Kind() {
	case modulation.KindBPSK, modulation.KindQPSK, modulation.KindMSK:
		return LogQ(math.Sqrt(2 * ebNo))
	case modulation.KindMPSK:
		if m.Order() == 2 {
			return LogQ(math.Sqrt(2 * ebNo))
		}
		k := math.Log2(float64(m.Order()))
		return math.Log(2/k) + LogQ(math.Sqrt(2*k*ebNo)*math.Sin(math.Pi/float64(m.Order())))
	case modulation.KindMQAM:
		o := float64(m.Order())
		k := math.Log2(o)
		return math.Log(4/k*(1-1/math.Sqrt(o))) + LogQ(math.Sqrt(3*k*ebNo/(o-1)))
	default:
		return math.NaN()
	}
}

// RequiredEbNoDB inverts FromDB: it returns the Eb/No in dB at which m
// reaches targetBER, searching [MinEbNoDB, MaxEbNoDB].
func RequiredEbNoDB(targetBER float64, m modulation.Modulation) (float64, error) {
	if !(targetBER > 0 && targetBER < 1) {
		return 0, rferr.Domain("target BER must be in (0, 1), got %v", targetBER)
	}
	if err := m.Validate(); err != nil {
		return 0, err
	}
	return solve.Bisect(func(x float64) float64 { return FromDB(x, m) }, targetBER, MinEbNoDB, MaxEbNoDB)
}

// LinkMarginDB is actualEbNoDB minus the Eb/No required for targetBER.
func LinkMarginDB(actualEbNoDB, targetBER float64, m modulation.Modulation) (float64, error) {
	req, err := RequiredEbNoDB(targetBER, m)
	if err != nil {
		return 0, err
	}
	return actualEbNoDB - req, nil
}

// Point is one sample of a BER curve.
type Point struct {
	EbNoDB float64
	BER    float64
}

// Curve samples FromDB at n evenly spaced Eb/No values in [fromDB, toDB].
func Curve(m modulation.Modulation, fromDB, toDB float64, n int) ([]Point, error) {
	if n < 2 {
		return nil, rferr.Domain("curve needs at least 2 points, got %d", n)
	}
	if !(fromDB < toDB) {
		return nil, rferr.Domain("curve range [%v, %v] is empty", fromDB, toDB)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	xs := floats.Span(make([]float64, n), fromDB, toDB)
	out := make([]Point, n)
	for i, x := range xs {
		out[i] = Point{EbNoDB: x, BER: FromDB(x, m)}
	}
	return out, nil
}
