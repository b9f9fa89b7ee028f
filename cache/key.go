package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/lfsr/lfsr"
)

// ResultsPrefix is the namespace for memoized analysis results.
const ResultsPrefix = "results/"

// Key returns the content address of a quantity computed for spec. Two
// specs with equal field order, coefficients and constant share keys.
func Key(spec lfsr.Spec, quantity string) string {
	coeffs := make([]string, len(spec.Coefficients))
	for i, c := range spec.Coefficients {
		coeffs[i] = fmt.Sprint(c)
	}

	canonical := fmt.Sprintf("q=%d;c=%s;k=%d;quantity=%s",
		spec.FieldOrder, strings.Join(coeffs, ","), spec.Constant, quantity)

	sum := sha256.Sum256([]byte(canonical))
	return ResultsPrefix + hex.EncodeToString(sum[:])
}
