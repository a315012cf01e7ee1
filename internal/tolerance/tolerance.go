// Package tolerance decides whether measured metrics reproduce their
// reference values within a relative tolerance window.
package tolerance

import (
	"fmt"
	"math"

	"github.com/sznuper/repro/internal/result"
)

// AbsEpsilon is the absolute window used when the reference is exactly zero,
// where the relative ratio is undefined.
const AbsEpsilon = 1e-12

// Within reports whether measured/reference lies in [1-tolerance, 1+tolerance].
//
// The window is applied to the measured value (reference*(1±tolerance)) so the
// bounds themselves are inclusive. NaN or infinite inputs never pass. A zero
// reference passes only when |measured| <= AbsEpsilon.
func Within(measured, reference, tolerance float64) bool {
	if !finite(measured) || !finite(reference) {
		return false
	}
	if math.IsNaN(tolerance) || tolerance < 0 {
		tolerance = 0
	}
	if reference == 0 {
		return math.Abs(measured) <= AbsEpsilon
	}

	lo := reference * (1 - tolerance)
	hi := reference * (1 + tolerance)
	if lo > hi {
		lo, hi = hi, lo
	}
	return measured >= lo && measured <= hi
}

// Ratio returns measured/reference, or NaN when reference is zero.
func Ratio(measured, reference float64) float64 {
	if reference == 0 {
		return math.NaN()
	}
	return measured / reference
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Verdict is the outcome of comparing a measured record with its reference.
// On failure Field names the first offending metric and Cause describes it.
type Verdict struct {
	OK        bool
	Field     string
	Label     string
	Measured  float64
	Reference float64
	Ratio     float64
	Cause     string
}

// Compare checks every reference field against the measured record, in
// reference order, and stops at the first failure. Both records must carry
// exactly the same field names; a missing or extra field fails the
// comparison.
func Compare(measured, reference result.Record, tolerance float64) Verdict {
	for _, ref := range reference.Fields() {
		label := labelFor(ref.Name, measured, reference)
		m, ok := measured.Value(ref.Name)
		if !ok {
			return Verdict{
				Field: ref.Name,
				Label: label,
				Cause: fmt.Sprintf("no measured value for %s", label),
			}
		}
		if !Within(m, ref.Value, tolerance) {
			return Verdict{
				Field:     ref.Name,
				Label:     label,
				Measured:  m,
				Reference: ref.Value,
				Ratio:     Ratio(m, ref.Value),
				Cause:     fmt.Sprintf("%s does not match reference", label),
			}
		}
	}

	for _, f := range measured.Fields() {
		if !reference.Has(f.Name) {
			label := labelFor(f.Name, measured, reference)
			return Verdict{
				Field: f.Name,
				Label: label,
				Cause: fmt.Sprintf("no reference value for %s", label),
			}
		}
	}

	if measured.Len() == 0 {
		return Verdict{Cause: "no metrics to compare"}
	}
	return Verdict{OK: true}
}

// labelFor prefers the measured label, which comes from the figure's config.
func labelFor(name string, measured, reference result.Record) string {
	if l := measured.Label(name); l != name {
		return l
	}
	return reference.Label(name)
}
