package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Evaluation outcomes recorded by BudgetCollector.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// BudgetCollector bundles Prometheus metrics for link-budget evaluations
// and writes them out in the node_exporter textfile format.
type BudgetCollector struct {
	gatherer prometheus.Gatherer

	Evaluations        *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	MarginDB           *prometheus.HistogramVec
	SNRDB              *prometheus.GaugeVec
	RequiredEbNoDB     *prometheus.GaugeVec
}

// NewBudgetCollector registers link-budget metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewBudgetCollector(reg prometheus.Registerer) (*BudgetCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	evaluations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linkbudget_evaluations_total",
		Help: "Total number of link-budget evaluations, labeled by outcome.",
	}, []string{"outcome"}), "linkbudget_evaluations_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "linkbudget_evaluation_duration_seconds",
		Help:    "Wall-clock time spent evaluating one scenario.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}), "linkbudget_evaluation_duration_seconds")
	if err != nil {
		return nil, err
	}

	margin, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linkbudget_margin_db",
		Help:    "Link margin above the required Eb/No, in dB.",
		Buckets: []float64{-20, -10, -6, -3, 0, 1, 3, 6, 10, 20},
	}, []string{"modcod"}), "linkbudget_margin_db")
	if err != nil {
		return nil, err
	}

	snr, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "linkbudget_snr_db",
		Help: "Most recent link SNR in dB.",
	}, []string{"link"}), "linkbudget_snr_db")
	if err != nil {
		return nil, err
	}

	required, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "linkbudget_required_ebno_db",
		Help: "Eb/No required for the target BER, in dB.",
	}, []string{"modcod"}), "linkbudget_required_ebno_db")
	if err != nil {
		return nil, err
	}

	return &BudgetCollector{
		gatherer:           gatherer,
		Evaluations:        evaluations,
		EvaluationDuration: duration,
		MarginDB:           margin,
		SNRDB:              snr,
		RequiredEbNoDB:     required,
	}, nil
}

// ObserveEvaluation counts one evaluation and its duration.
func (c *BudgetCollector) ObserveEvaluation(err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	c.Evaluations.WithLabelValues(outcome).Inc()
	c.EvaluationDuration.Observe(elapsed.Seconds())
}

// SetLinkSNR records the SNR of a named link.
func (c *BudgetCollector) SetLinkSNR(link string, snrDB float64) {
	if c == nil {
		return
	}
	c.SNRDB.WithLabelValues(link).Set(snrDB)
}

// ObserveModcod records the requirement and margin of one modcod.
func (c *BudgetCollector) ObserveModcod(modcod string, requiredEbNoDB, marginDB float64) {
	if c == nil {
		return
	}
	c.RequiredEbNoDB.WithLabelValues(modcod).Set(requiredEbNoDB)
	c.MarginDB.WithLabelValues(modcod).Observe(marginDB)
}

// WriteToTextfile writes every gathered metric to path, atomically.
func (c *BudgetCollector) WriteToTextfile(path string) error {
	var gatherer prometheus.Gatherer
	if c != nil {
		gatherer = c.gatherer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}
