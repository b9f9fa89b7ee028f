package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/lfsr/analysis"
)

func newOrbitsCmd(opts *options) *cobra.Command {
	var (
		spec   specFlags
		mode   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "orbits",
		Short: "Decompose the whole state space into orbits",
		Example: `  lfsr orbits -c 1,1,0,1
  lfsr orbits -c 1,2,1 -q 3 --mode full --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := spec.spec()
			if err != nil {
				return err
			}
			if mode != "" {
				opts.cfg.Orbit.Mode = mode
			}

			a, err := opts.analyzer()
			if err != nil {
				return err
			}
			defer closeAnalyzer(a, opts.logger)

			report, err := a.MapOrbits(cmd.Context(), s)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}

	addSpecFlags(cmd, &spec)
	cmd.Flags().StringVar(&mode, "mode", "", "Output mode: period or full (overrides config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func printReport(w io.Writer, r *analysis.Report) error {
	m := r.Map
	fmt.Fprintf(w, "%s: %d states, %d orbits, max period %d (%s, %s)\n",
		r.Spec, m.Size, len(m.Orbits), m.MaxPeriod, r.Path, r.Duration)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tREP\tPERIOD\tSIZE\tMEMBERS")
	for _, o := range m.Orbits {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\n", o.Index, o.Representative, o.Period, o.Size, join(o.Members))
	}
	return tw.Flush()
}

func join(codes []uint64) string {
	if len(codes) == 0 {
		return "-"
	}
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.FormatUint(c, 10)
	}
	return strings.Join(parts, ",")
}
