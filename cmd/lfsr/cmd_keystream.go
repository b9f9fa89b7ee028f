package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/lfsr/lfsr"
	"github.com/tailored-agentic-units/lfsr/nist"
)

func newKeystreamCmd(opts *options) *cobra.Command {
	var (
		spec   specFlags
		seed   string
		length int
	)

	cmd := &cobra.Command{
		Use:   "keystream",
		Short: "Generate output digits and report linear complexity and randomness tests",
		Long: `Generates the register's output sequence, recovers the shortest register
producing it with Berlekamp-Massey, and for binary registers runs the NIST
SP 800-22 frequency and runs tests.`,
		Example: `  lfsr keystream -c 1,1,0,0 --seed 0,0,0,1 -n 30`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := spec.spec()
			if err != nil {
				return err
			}
			vector, err := lfsr.ParseCoefficients(seed)
			if err != nil {
				return fmt.Errorf("invalid seed: %w", err)
			}
			if length < 1 {
				return fmt.Errorf("invalid length: %d", length)
			}

			reg, err := lfsr.NewRegister(s, vector)
			if err != nil {
				return err
			}
			stream := reg.Keystream(length)
			f := reg.Operator().Field()

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "keystream: %s\n", digits(stream))

			l, connection := lfsr.LinearComplexity(f, stream)
			fmt.Fprintf(w, "linear complexity: %d\n", l)
			if l > 0 {
				fmt.Fprintf(w, "feedback: %s\n", digits(lfsr.FeedbackCoefficients(f, connection)))
			}

			if f.Order() != 2 {
				opts.logger.Debug("skipping binary randomness tests", "field", f.String())
				return nil
			}
			bits, err := lfsr.Bits(stream)
			if err != nil {
				return err
			}
			return runTests(cmd, bits)
		},
	}

	addSpecFlags(cmd, &spec)
	cmd.Flags().StringVar(&seed, "seed", "", "Initial state x_0..x_{d-1}, comma separated (required)")
	cmd.Flags().IntVarP(&length, "length", "n", 64, "Number of digits to generate")
	_ = cmd.MarkFlagRequired("seed")
	return cmd
}

func runTests(cmd *cobra.Command, bits []uint8) error {
	tests := []struct {
		name string
		run  func([]uint8) (float64, error)
	}{
		{"frequency", nist.Frequency},
		{"runs", nist.Runs},
	}

	for _, t := range tests {
		p, err := t.run(bits)
		if err != nil {
			return fmt.Errorf("%s test: %w", t.name, err)
		}
		verdict := "fail"
		if nist.Passed(p) {
			verdict = "pass"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: p=%.6f %s\n", t.name, p, verdict)
	}
	return nil
}

func digits(values []uint32) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(parts, ",")
}
