// Package proportion defines the proportion vector shared by the geometry
// compiler, the resize controllers and the persistence layer.
//
// A [Vector] is an ordered list of percentages describing how a container's
// extent is divided among its children along one axis. A valid vector sums to
// 100 (within [SumTolerance]) and has no negative element.
//
//	v := proportion.Equal(3)          // [33.333…, 33.333…, 33.333…]
//	v.Sum()                           // 100
//	v.Key()                           // "33.3333,33.3333,33.3333"
//	v.WithinTolerance(w, 0.1)         // element-wise comparison
package proportion

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

// SumTolerance is the largest deviation from 100 a valid vector may have.
// Stored vectors are rounded for display, so the check is deliberately coarse.
const SumTolerance = 0.01

// keyPrecision is the number of decimals used by [Vector.Key].
const keyPrecision = 4

// Vector is an ordered list of percentages summing to 100.
type Vector []float64

// Equal returns an equal split into n parts. The last element absorbs the
// rounding remainder so that the sum is exactly 100.
func Equal(n int) Vector {
	if n <= 0 {
		return nil
	}
	v := make(Vector, n)
	share := 100 / float64(n)
	var sum float64
	for i := 0; i < n-1; i++ {
		v[i] = share
		sum += share
	}
	v[n-1] = 100 - sum
	return v
}

// Of builds a vector from values.
func Of(values ...float64) Vector {
	return Vector(values)
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Sum returns the sum of all elements.
func (v Vector) Sum() float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}

// Prefix returns the sum of the first i elements (the leading edge of element i).
func (v Vector) Prefix(i int) float64 {
	var s float64
	for j := 0; j < i && j < len(v); j++ {
		s += v[j]
	}
	return s
}

// Min returns the smallest element, or 0 for an empty vector.
func (v Vector) Min() float64 {
	if len(v) == 0 {
		return 0
	}
	m := v[0]
	for _, x := range v[1:] {
		m = math.Min(m, x)
	}
	return m
}

// Validate checks the sum invariant and that no element is negative or NaN.
func (v Vector) Validate() error {
	if len(v) == 0 {
		return errors.New(errors.ErrCodeInvalidProportions, "proportion vector is empty")
	}
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return errors.New(errors.ErrCodeInvalidProportions, "element %d is not a number", i)
		}
		if x < 0 {
			return errors.New(errors.ErrCodeInvalidProportions, "element %d is negative: %g", i, x)
		}
	}
	if s := v.Sum(); math.Abs(s-100) > SumTolerance {
		return errors.New(errors.ErrCodeInvalidProportions, "proportions sum to %g, want 100", s)
	}
	return nil
}

// ValidateLen validates v and checks that it has exactly n elements.
func (v Vector) ValidateLen(n int) error {
	if len(v) != n {
		return errors.New(errors.ErrCodeInvalidProportions, "expected %d proportions, got %d", n, len(v))
	}
	return v.Validate()
}

// Normalize rescales v so that it sums to exactly 100.
// A vector whose sum is zero becomes an equal split.
func (v Vector) Normalize() Vector {
	s := v.Sum()
	if s <= 0 {
		return Equal(len(v))
	}
	out := make(Vector, len(v))
	var acc float64
	for i := range v {
		if i == len(v)-1 {
			out[i] = 100 - acc
			break
		}
		out[i] = v[i] / s * 100
		acc += out[i]
	}
	return out
}

// WithinTolerance reports whether v and w have the same length and every
// element differs by at most tol.
func (v Vector) WithinTolerance(w Vector, tol float64) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		if math.Abs(v[i]-w[i]) > tol {
			return false
		}
	}
	return true
}

// Equal reports bit-for-bit equality.
func (v Vector) Equal(w Vector) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}
	return true
}

// Key returns the serialized form used for idempotent comparison: the
// elements formatted with four decimals and joined by commas.
func (v Vector) Key() string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', keyPrecision, 64)
	}
	return strings.Join(parts, ",")
}

// String formats v for display, e.g. "[23.33 43.33 33.34]".
func (v Vector) String() string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 2, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Parse reads a vector from a comma or space separated list of numbers,
// e.g. "60,40" or "33.33 33.33 33.34".
func Parse(s string) (Vector, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '[' || r == ']'
	})
	if len(fields) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidProportions, "no proportions in %q", s)
	}
	v := make(Vector, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProportions, err, "parse element %d", i)
		}
		v[i] = x
	}
	return v, nil
}

// Clamp limits x to [lo, hi]. When the interval is empty (lo > hi) the
// midpoint is returned so that neither side wins.
func Clamp(x, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, x))
}

// MinPercent converts a minimum pixel size into a percentage of extent,
// never lower than floor. A non-positive extent yields floor.
func MinPercent(minPixels, extent, floor float64) float64 {
	if extent <= 0 || minPixels <= 0 {
		return floor
	}
	return math.Max(floor, minPixels/extent*100)
}

// Format renders v for logs with a fixed precision, e.g. "60.0/40.0".
func Format(v Vector) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.1f", x)
	}
	return strings.Join(parts, "/")
}
