package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/lfsr/lfsr"
	"github.com/tailored-agentic-units/lfsr/orbit"
)

func newPeriodCmd(opts *options) *cobra.Command {
	var (
		spec  specFlags
		state string
	)

	cmd := &cobra.Command{
		Use:   "period",
		Short: "Print the period of the cycle reached from a state",
		Example: `  lfsr period -c 1,1,0,0 --state 0,0,0,1
  lfsr period -c 0,1 -q 3 --state 1,1 --algorithm floyd`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := spec.spec()
			if err != nil {
				return err
			}
			vector, err := lfsr.ParseCoefficients(state)
			if err != nil {
				return fmt.Errorf("invalid state: %w", err)
			}
			alg, err := orbit.ParseAlgorithm(opts.cfg.Orbit.Algorithm)
			if err != nil {
				return err
			}

			a, err := opts.analyzer()
			if err != nil {
				return err
			}
			defer closeAnalyzer(a, opts.logger)

			period, err := a.FindPeriod(cmd.Context(), s, vector, alg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s period %d\n", s, period)
			return nil
		},
	}

	addSpecFlags(cmd, &spec)
	cmd.Flags().StringVarP(&state, "state", "s", "", "State vector x_0..x_{d-1}, comma separated (required)")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}
