// Package evaluation runs a configured scenario through the link-budget
// chain and records the outcome in logs, metrics and traces.
package evaluation

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/linkbudget/coding"
	"github.com/signalsfoundry/linkbudget/evm"
	"github.com/signalsfoundry/linkbudget/internal/config"
	"github.com/signalsfoundry/linkbudget/internal/logging"
	"github.com/signalsfoundry/linkbudget/internal/observability"
	"github.com/signalsfoundry/linkbudget/sensitivity"
)

// Report is the full set of derived quantities for one scenario.
type Report struct {
	Name      string
	Modcod    string
	TargetBER float64

	EIRPDBm             float64
	EIRPDBW             float64
	GOverTDBK           float64
	GOverTSystemDBK     float64
	FreeSpacePathLossDB float64
	ExtraLossDB         float64
	PathLossDB          float64
	ReceivedPowerDBm    float64
	NoisePowerDBm       float64
	SNRDB               float64
	COverNoDBHz         float64
	PFDDBWPerM2         float64
	Quality             string

	EbNoDB         float64
	BER            float64
	RequiredEbNoDB float64
	MarginDB       float64
	CapacityBps    float64
	ThroughputBps  float64
	EVMPercent     float64

	// Sensitivities are NaN when the scenario gives no bit rate.
	SensitivityMatchedDBm  float64
	SensitivityBandpassDBm float64
}

// Evaluator ties the computation chain to the ambient logger, metrics
// collector and tracer. A zero Evaluator is usable.
type Evaluator struct {
	log     logging.Logger
	metrics *observability.BudgetCollector
	tracer  trace.Tracer
}

// New returns an Evaluator. A nil logger defers to the logger on each
// call's context; nil metrics record nothing; a nil tracer uses the
// global provider.
func New(log logging.Logger, metrics *observability.BudgetCollector, tracer trace.Tracer) *Evaluator {
	if tracer == nil {
		tracer = observability.Tracer()
	}
	return &Evaluator{log: log, metrics: metrics, tracer: tracer}
}

func (e *Evaluator) logger(ctx context.Context) logging.Logger {
	if e == nil {
		return logging.Resolve(ctx, nil)
	}
	return logging.Resolve(ctx, e.log)
}

func (e *Evaluator) startSpan(ctx context.Context, name, link string, extra ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := observability.Tracer()
	if e != nil && e.tracer != nil {
		tracer = e.tracer
	}
	attrs := make([]attribute.KeyValue, 0, len(extra)+1)
	attrs = append(attrs, attribute.String("link.name", link))
	attrs = append(attrs, extra...)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Evaluate builds the scenario and computes its report.
func (e *Evaluator) Evaluate(ctx context.Context, s config.Scenario) (Report, error) {
	start := time.Now()
	ctx, span := e.startSpan(ctx, "Evaluate", s.Name)
	defer span.End()

	rep, err := evaluate(s)
	if e != nil {
		e.metrics.ObserveEvaluation(err, time.Since(start))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger(ctx).Warn(ctx, "link budget evaluation failed",
			logging.String("link", s.Name),
			logging.Err(err),
		)
		return Report{}, err
	}

	if e != nil {
		e.metrics.SetLinkSNR(rep.Name, rep.SNRDB)
		e.metrics.ObserveModcod(rep.Modcod, rep.RequiredEbNoDB, rep.MarginDB)
	}
	span.SetAttributes(
		attribute.String("link.modcod", rep.Modcod),
		attribute.Float64("link.snr_db", rep.SNRDB),
		attribute.Float64("link.ebno_db", rep.EbNoDB),
		attribute.Float64("link.margin_db", rep.MarginDB),
		attribute.String("link.quality", rep.Quality),
	)
	e.logger(ctx).Info(ctx, "link budget evaluated",
		logging.String("link", rep.Name),
		logging.String("modcod", rep.Modcod),
		logging.Float("snr_db", rep.SNRDB),
		logging.Float("margin_db", rep.MarginDB),
		logging.Bool("closes", rep.MarginDB >= 0),
		logging.String("quality", rep.Quality),
	)
	return rep, nil
}

func evaluate(s config.Scenario) (Report, error) {
	built, err := s.Build()
	if err != nil {
		return Report{}, err
	}
	b, cm := built.Budget, built.Modcod

	ebNo, err := b.EbNoCodedDB(cm)
	if err != nil {
		return Report{}, fmt.Errorf("eb/no: %w", err)
	}
	required, err := cm.RequiredEbNoDB(built.TargetBER)
	if err != nil {
		return Report{}, fmt.Errorf("required eb/no for %s: %w", built.ModcodName, err)
	}
	matched, bandpass, err := sensitivities(s, cm)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Name:                   b.Name(),
		Modcod:                 built.ModcodName,
		TargetBER:              built.TargetBER,
		EIRPDBm:                b.EIRPDBm(),
		EIRPDBW:                b.Transmitter().EIRPDBW(),
		GOverTDBK:              b.Receiver().GOverTDB(),
		GOverTSystemDBK:        b.Receiver().GOverTSystemDB(),
		FreeSpacePathLossDB:    b.FreeSpacePathLossDB(),
		ExtraLossDB:            b.FrequencyDependentLossDB(),
		PathLossDB:             b.PathLossDB(),
		ReceivedPowerDBm:       b.ReceivedPowerDBm(),
		NoisePowerDBm:          b.NoisePowerDBm(),
		SNRDB:                  b.SNRDB(),
		COverNoDBHz:            b.COverNoDBHz(),
		PFDDBWPerM2:            b.PowerFluxDensityDBWPerM2(),
		Quality:                string(b.Quality()),
		EbNoDB:                 ebNo,
		BER:                    cm.BERFromDB(ebNo),
		RequiredEbNoDB:         required,
		MarginDB:               ebNo - required,
		CapacityBps:            b.PhyRate().Bps(),
		ThroughputBps:          b.ThroughputBps(cm),
		EVMPercent:             evm.PercentFromSNRDB(b.SNRDB()),
		SensitivityMatchedDBm:  matched,
		SensitivityBandpassDBm: bandpass,
	}, nil
}

func sensitivities(s config.Scenario, cm coding.CodedModulation) (matched, bandpass float64, err error) {
	if !(s.Sensitivity.BitRateBps > 0) {
		return math.NaN(), math.NaN(), nil
	}
	p := s.SensitivityParams(cm)
	if matched, err = sensitivity.CodedMatchedFilterDBm(p, cm); err != nil {
		return 0, 0, fmt.Errorf("sensitivity: %w", err)
	}
	if bandpass, err = sensitivity.CodedBandpassDBm(p, cm, s.Sensitivity.Rolloff); err != nil {
		return 0, 0, fmt.Errorf("sensitivity: %w", err)
	}
	return matched, bandpass, nil
}

// SensitivityRow is the sensitivity of one modcod at the scenario's bit
// rate and target BER.
type SensitivityRow struct {
	Modcod         string
	RequiredEbNoDB float64
	MatchedDBm     float64
	BandpassDBm    float64
}

// SensitivityTable computes a row for the scenario's own modcod followed by
// every catalog preset.
func (e *Evaluator) SensitivityTable(ctx context.Context, s config.Scenario) ([]SensitivityRow, error) {
	ctx, span := e.startSpan(ctx, "SensitivityTable", s.Name)
	defer span.End()

	own, name, err := s.Modcod.Resolve()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	entries := append([]coding.Preset{{Name: name, CodedModulation: own}}, coding.Presets()...)

	rows := make([]SensitivityRow, 0, len(entries))
	for _, entry := range entries {
		req, err := entry.RequiredEbNoDB(s.TargetBER)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("%s: %w", entry.Name, err)
		}
		matched, bandpass, err := sensitivities(s, entry.CodedModulation)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("%s: %w", entry.Name, err)
		}
		rows = append(rows, SensitivityRow{
			Modcod:         entry.Name,
			RequiredEbNoDB: req,
			MatchedDBm:     matched,
			BandpassDBm:    bandpass,
		})
	}
	e.logger(ctx).Debug(ctx, "sensitivity table computed", logging.Int("rows", len(rows)))
	return rows, nil
}
