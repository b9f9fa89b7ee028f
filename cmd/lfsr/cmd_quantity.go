package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/lfsr/analysis"
)

func newQuantityCmd(opts *options) *cobra.Command {
	var spec specFlags

	cmd := &cobra.Command{
		Use:   "quantity <name>",
		Short: "Print one orbit summary, using the result cache when configured",
		Long: fmt.Sprintf("Names: %s, %s, %s, %s.",
			analysis.QuantityMaxPeriod, analysis.QuantityOrbitCount, analysis.QuantityPeriodSum, analysis.QuantityOrder),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := spec.spec()
			if err != nil {
				return err
			}

			a, err := opts.analyzer()
			if err != nil {
				return err
			}
			defer closeAnalyzer(a, opts.logger)

			value, cached, err := a.Quantity(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			opts.logger.Debug("quantity resolved", "name", args[0], "cached", cached)
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	addSpecFlags(cmd, &spec)
	return cmd
}
