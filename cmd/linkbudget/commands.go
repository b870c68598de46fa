package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/linkbudget/ber"
	"github.com/signalsfoundry/linkbudget/coding"
	"github.com/signalsfoundry/linkbudget/internal/report"
	"github.com/signalsfoundry/linkbudget/modulation"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "linkbudget %s (commit %s)\n", buildVersion, buildCommit)
		},
	}
}

func sensitivityCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sensitivity",
		Short: "Receiver sensitivity for the scenario modcod and every preset",
		Long: `Compute the minimum detectable signal at the scenario bit rate, noise figure
and target BER, behind a matched filter and behind a raised-cosine bandpass
filter with the scenario roll-off.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, e env) error {
				rows, err := e.eval.SensitivityTable(ctx, e.scenario)
				if err != nil {
					return err
				}
				return report.WriteSensitivity(e.out, e.format, rows)
			})
		},
	}
}

func modcodsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "modcods",
		Short: "List the modcod presets and the Eb/No each needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(_ context.Context, e env) error {
				return report.WriteModcods(e.out, e.format, coding.Presets(), e.scenario.TargetBER)
			})
		},
	}
}

func berCurveCmd(opts *options) *cobra.Command {
	var (
		mod    string
		fromDB float64
		toDB   float64
		points int
	)

	cmd := &cobra.Command{
		Use:   "ber-curve",
		Short: "Sample the uncoded BER of a modulation over an Eb/No range",
		Long: `Sample the uncoded BER of a modulation over an Eb/No range.

Examples:
  # QPSK from -2 to 12 dB
  linkbudget ber-curve

  # 16-QAM, 29 points, as JSON
  linkbudget ber-curve --modulation 16qam --to 16 --points 29 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(_ context.Context, e env) error {
				m, err := modulation.Parse(mod)
				if err != nil {
					return err
				}
				curve, err := ber.Curve(m, fromDB, toDB, points)
				if err != nil {
					return err
				}
				return report.WriteCurve(e.out, e.format, curve)
			})
		},
	}

	cmd.Flags().StringVarP(&mod, "modulation", "m", "qpsk", "Modulation (bpsk, qpsk, msk, 8psk, 16qam, ...)")
	cmd.Flags().Float64Var(&fromDB, "from", -2, "First Eb/No in dB")
	cmd.Flags().Float64Var(&toDB, "to", 12, "Last Eb/No in dB")
	cmd.Flags().IntVarP(&points, "points", "n", 15, "Number of samples")

	return cmd
}

func passCmd(opts *options) *cobra.Command {
	var (
		durationS float64
		stepS     float64
	)

	cmd := &cobra.Command{
		Use:   "pass",
		Short: "Sweep an SGP4-propagated pass over the ground station",
		Long: `Propagate the scenario TLE across the pass window and evaluate range,
elevation, Doppler, SNR and margin at every step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, e env) error {
				s := e.scenario
				if s.Pass == nil {
					return fmt.Errorf("scenario %q has no pass section", s.Name)
				}
				pass := *s.Pass
				if cmd.Flags().Changed("duration") {
					pass.DurationS = durationS
				}
				if cmd.Flags().Changed("step") {
					pass.StepS = stepS
				}
				s.Pass = &pass
				if err := s.Validate(); err != nil {
					return err
				}

				samples, err := e.eval.EvaluatePass(ctx, s)
				if err != nil {
					return err
				}
				return report.WritePass(e.out, e.format, samples)
			})
		},
	}

	cmd.Flags().Float64Var(&durationS, "duration", 0, "Pass window in seconds (overrides the scenario)")
	cmd.Flags().Float64Var(&stepS, "step", 0, "Step in seconds (overrides the scenario)")

	return cmd
}
