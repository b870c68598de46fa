package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/signalsfoundry/linkbudget/internal/config"
	"github.com/signalsfoundry/linkbudget/internal/evaluation"
	"github.com/signalsfoundry/linkbudget/internal/logging"
	"github.com/signalsfoundry/linkbudget/internal/observability"
	"github.com/signalsfoundry/linkbudget/internal/report"
)

var (
	// Build variables set by ldflags
	buildVersion = "dev"
	buildCommit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the persistent flags shared by every command.
type options struct {
	configPath string
	format     string
	targetBER  float64
	modcod     string
	metricsOut string
	logLevel   string
	logFormat  string
}

// env is what a command needs once flags are parsed.
type env struct {
	log      logging.Logger
	eval     *evaluation.Evaluator
	scenario config.Scenario
	format   report.Format
	out      io.Writer
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "linkbudget",
		Short: "RF link-budget calculator",
		Long: `linkbudget evaluates the RF link budget of a satellite or terrestrial link:
EIRP, path loss, SNR, C/No, Eb/No, BER, margin, throughput and capacity.

With no arguments it evaluates the built-in Ka-band LEO downlink.

Examples:
  # Evaluate the built-in scenario
  linkbudget

  # Evaluate a scenario file with another modcod, as JSON
  linkbudget --config link.yaml --modcod dvbs2-8psk-2/3 --format json`,
		Version:       fmt.Sprintf("%s (%s)", buildVersion, buildCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, e env) error {
				rep, err := e.eval.Evaluate(ctx, e.scenario)
				if err != nil {
					return err
				}
				return report.WriteBudget(e.out, e.format, rep)
			})
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Scenario file (.yaml, .yml or .toml); the built-in scenario when empty")
	flags.StringVarP(&opts.format, "format", "o", "text", "Output format: text or json")
	flags.Float64Var(&opts.targetBER, "target-ber", 0, "Target bit error rate (overrides the scenario)")
	flags.StringVar(&opts.modcod, "modcod", "", "Modcod preset name (overrides the scenario, see 'linkbudget modcods')")
	flags.StringVar(&opts.metricsOut, "metrics-out", "", "Write Prometheus metrics to this textfile after the run")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error (default from LOG_LEVEL)")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json (default from LOG_FORMAT)")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(sensitivityCmd(opts))
	rootCmd.AddCommand(modcodsCmd(opts))
	rootCmd.AddCommand(berCurveCmd(opts))
	rootCmd.AddCommand(passCmd(opts))

	return rootCmd
}

// run sets up logging, tracing and metrics around fn, then tears them down.
// Metrics are written even when fn fails so the error outcome is recorded.
func (o *options) run(cmd *cobra.Command, fn func(context.Context, env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log := logging.New(o.loggingConfig(cmd))
	ctx = logging.ContextWithLogger(ctx, log)

	format, err := report.ParseFormat(o.format)
	if err != nil {
		return err
	}
	scenario, err := o.loadScenario(cmd)
	if err != nil {
		return err
	}

	tracing := observability.TracingConfigFromEnv()
	tracing.ServiceVersion = buildVersion
	shutdown, err := observability.InitTracing(ctx, tracing, nil)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(logging.ContextWithLogger(context.Background(), log), shutdown, nil)

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewBudgetCollector(reg)
	if err != nil {
		return err
	}

	started := time.Now()
	runErr := fn(ctx, env{
		log:      log,
		eval:     evaluation.New(nil, metrics, nil),
		scenario: scenario,
		format:   format,
		out:      cmd.OutOrStdout(),
	})
	log.Debug(ctx, "command finished",
		logging.String("command", cmd.Name()),
		logging.Any("elapsed", time.Since(started)),
	)

	if o.metricsOut != "" {
		if err := metrics.WriteToTextfile(o.metricsOut); err != nil {
			log.Error(ctx, "writing metrics failed", logging.String("path", o.metricsOut), logging.Err(err))
			if runErr == nil {
				runErr = err
			}
		}
	}
	return runErr
}

// loggingConfig starts from LOG_LEVEL, LOG_FORMAT and LOG_SOURCE. An
// explicit flag wins, and an unset variable takes the flag default.
func (o *options) loggingConfig(cmd *cobra.Command) logging.Config {
	cfg := logging.ConfigFromEnv()
	if cfg.Level == "" || cmd.Flags().Changed("log-level") {
		cfg.Level = o.logLevel
	}
	if cfg.Format == "" || cmd.Flags().Changed("log-format") {
		cfg.Format = o.logFormat
	}
	cfg.Output = cmd.ErrOrStderr()
	return cfg
}

// loadScenario reads --config or falls back to the built-in scenario, then
// applies the flag overrides.
func (o *options) loadScenario(cmd *cobra.Command) (config.Scenario, error) {
	s := config.Default()
	if o.configPath != "" {
		var err error
		if s, err = config.Load(o.configPath); err != nil {
			return config.Scenario{}, err
		}
	}
	if cmd.Flags().Changed("modcod") {
		s.Modcod = config.ModcodConfig{Preset: o.modcod}
	}
	if cmd.Flags().Changed("target-ber") {
		s.TargetBER = o.targetBER
	}
	return s, s.Validate()
}
