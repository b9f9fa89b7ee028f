package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/lfsr/analysis"
	"github.com/tailored-agentic-units/lfsr/lfsr"
	"github.com/tailored-agentic-units/lfsr/observability"
)

// options holds flags shared by every subcommand.
type options struct {
	configFile string
	logLevel   string
	observer   string
	workers    int
	algorithm  string
	maxStates  uint64

	cfg    *analysis.Config
	logger *slog.Logger
}

// specFlags holds the register description flags.
type specFlags struct {
	coefficients string
	field        uint32
	constant     uint32
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "lfsr",
		Short: "Analyze cycle structure of linear feedback shift registers over GF(q)",
		Long: `lfsr computes periods and orbit decompositions of the state transition
map of an LFSR over a finite field, sequentially or across parallel workers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Path to analysis config (JSON, or YAML for .yaml/.yml)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.observer, "observer", "", "Observer for analysis events (overrides config)")
	flags.IntVar(&opts.workers, "workers", -1, "Parallel workers; 0 to auto-detect (overrides config)")
	flags.StringVar(&opts.algorithm, "algorithm", "", "Cycle finder: auto, enumeration, floyd (overrides config)")
	flags.Uint64Var(&opts.maxStates, "max-states", 0, "Largest q^d to analyze (overrides config)")

	root.AddCommand(
		newPeriodCmd(opts),
		newOrbitsCmd(opts),
		newQuantityCmd(opts),
		newKeystreamCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// load resolves configuration and logging before any subcommand runs.
func (o *options) load(cmd *cobra.Command) error {
	level, err := observability.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level.SlogLevel(),
	}))
	slog.SetDefault(o.logger)
	observability.RegisterObserver("slog", observability.NewSlogObserver(o.logger))

	if o.configFile != "" {
		o.cfg, err = analysis.LoadConfig(o.configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg := analysis.DefaultConfig()
		o.cfg = &cfg
	}

	if o.observer != "" {
		o.cfg.Observer = o.observer
		o.cfg.Orbit.Observer = o.observer
	}
	if o.workers >= 0 {
		o.cfg.Orbit.Workers = o.workers
	}
	if o.algorithm != "" {
		o.cfg.Orbit.Algorithm = o.algorithm
	}
	if o.maxStates > 0 {
		o.cfg.MaxStates = o.maxStates
	}
	return nil
}

func (o *options) analyzer(extra ...analysis.Option) (*analysis.Analyzer, error) {
	a, err := analysis.New(o.cfg, extra...)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	return a, nil
}

func addSpecFlags(cmd *cobra.Command, s *specFlags) {
	cmd.Flags().StringVarP(&s.coefficients, "coefficients", "c", "", "Feedback coefficients c_0..c_{d-1}, comma separated (required)")
	cmd.Flags().Uint32VarP(&s.field, "field", "q", 2, "Field order q (a prime power)")
	cmd.Flags().Uint32Var(&s.constant, "constant", 0, "Constant feedback term for an affine register")
	_ = cmd.MarkFlagRequired("coefficients")
}

func (s *specFlags) spec() (lfsr.Spec, error) {
	coefficients, err := lfsr.ParseCoefficients(s.coefficients)
	if err != nil {
		return lfsr.Spec{}, err
	}
	spec := lfsr.Spec{Coefficients: coefficients, FieldOrder: s.field, Constant: s.constant}
	if err := spec.Validate(); err != nil {
		return lfsr.Spec{}, err
	}
	return spec, nil
}

func closeAnalyzer(a *analysis.Analyzer, logger *slog.Logger) {
	if err := a.Close(); err != nil {
		logger.Warn("failed to close analyzer", "error", err)
	}
}
