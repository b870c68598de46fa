package evaluation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/signalsfoundry/linkbudget/core"
	"github.com/signalsfoundry/linkbudget/internal/config"
	"github.com/signalsfoundry/linkbudget/internal/logging"
	"github.com/signalsfoundry/linkbudget/timectrl"
)

// PassSample is the link state at one step of a pass sweep. Samples below
// the minimum elevation carry only geometry.
type PassSample struct {
	Time         time.Time
	ElevationDeg float64
	RangeM       float64
	DopplerHz    float64
	Visible      bool
	SNRDB        float64
	MarginDB     float64
}

// dopplerInterval is the interval over which the range rate is differenced.
const dopplerInterval = time.Second

// EvaluatePass propagates the scenario's TLE across the pass window and
// evaluates the link at every step the satellite is above the minimum
// elevation.
func (e *Evaluator) EvaluatePass(ctx context.Context, s config.Scenario) ([]PassSample, error) {
	if s.Pass == nil {
		return nil, fmt.Errorf("evaluation: scenario %q has no pass section", s.Name)
	}
	ctx, span := e.startSpan(ctx, "EvaluatePass", s.Name,
		attribute.Float64("pass.duration_s", s.Pass.DurationS),
		attribute.Float64("pass.step_s", s.Pass.StepS),
	)
	defer span.End()

	samples, err := e.sweep(s)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	visible := 0
	for _, smp := range samples {
		if smp.Visible {
			visible++
		}
	}
	span.SetAttributes(attribute.Int("pass.visible_steps", visible))
	e.logger(ctx).Info(ctx, "pass evaluated",
		logging.String("link", s.Name),
		logging.Int("steps", len(samples)),
		logging.Int("visible_steps", visible),
	)
	return samples, nil
}

func (e *Evaluator) sweep(s config.Scenario) ([]PassSample, error) {
	p := s.Pass
	sat, err := core.NewOrbitalModelFromTLE(p.TLELine1, p.TLELine2)
	if err != nil {
		return nil, err
	}
	start, err := p.StartTime()
	if err != nil {
		return nil, err
	}
	cm, _, err := s.Modcod.Resolve()
	if err != nil {
		return nil, err
	}
	required, err := cm.RequiredEbNoDB(s.TargetBER)
	if err != nil {
		return nil, err
	}
	ground := p.GroundStation()

	var samples []PassSample
	tc := timectrl.NewTimeController(start, p.Step())
	tc.AddListener(func(t time.Time) error {
		pos, err := sat.PositionAt(t)
		if err != nil {
			return err
		}
		next, err := sat.PositionAt(t.Add(dopplerInterval))
		if err != nil {
			return err
		}
		smp := PassSample{
			Time:         t,
			ElevationDeg: core.ElevationDegrees(ground, pos),
			RangeM:       ground.DistanceTo(pos) * 1000,
		}
		closing := core.ClosingSpeedMS(ground, pos, next, dopplerInterval.Seconds())
		smp.DopplerHz = core.DopplerShiftHz(s.Path.FrequencyHz, closing)

		if smp.ElevationDeg >= p.MinElevationDeg {
			b, err := core.NewLinkBudget(s.Name, s.BandwidthHz, s.Transmitter, s.Receiver,
				core.PathLoss{FrequencyHz: s.Path.FrequencyHz, DistanceM: smp.RangeM},
				core.WithFrequencyDependentLoss(s.ExtraLossDB))
			if err != nil {
				return err
			}
			ebNo, err := b.EbNoCodedDB(cm)
			if err != nil {
				return err
			}
			smp.Visible = true
			smp.SNRDB = b.SNRDB()
			smp.MarginDB = ebNo - required
		}
		samples = append(samples, smp)
		return nil
	})
	if _, err := tc.Run(p.Duration()); err != nil {
		return nil, fmt.Errorf("evaluation: pass sweep at %s: %w", tc.Now().Format(time.RFC3339), err)
	}
	return samples, nil
}
