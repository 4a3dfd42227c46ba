// Package bignum provides Number, an arbitrary-magnitude value stored as a
// float64 mantissa scaled by an int64 power of ten. It trades exactness for
// speed: arithmetic happens on the mantissa in IEEE-754 double precision, while
// the exponent carries the magnitude far beyond the float64 range.
//
// Every operation is total. Division by zero, arithmetic on zero operands and
// out-of-table formatting all have defined results; nothing panics.
package bignum

import "math"

// Number is mantissa x 10^exponent. When non-zero, 1 <= |mantissa| < 10.
// The zero value is the number zero and is ready to use.
//
// Number has value semantics: every binary operation returns a new Number.
// AddInPlace and MulScalarInPlace mutate the receiver for accumulators on a
// hot path.
type Number struct {
	mantissa float64
	exponent int64
}

// New returns v as a Number.
func New(v float64) Number {
	if v == 0 {
		return Number{}
	}
	return normalize(v, 0)
}

// FromParts returns mantissa x 10^exponent, normalized.
func FromParts(mantissa float64, exponent int64) Number {
	return normalize(mantissa, exponent)
}

// Zero returns the number zero.
func Zero() Number {
	return Number{}
}

// One returns the number one.
func One() Number {
	return Number{mantissa: 1}
}

// normalize restores the mantissa invariant. NaN collapses to zero and
// infinities saturate to the largest finite double so the scaling loop ends.
func normalize(m float64, e int64) Number {
	if m == 0 || math.IsNaN(m) {
		return Number{}
	}
	if math.IsInf(m, 0) {
		m = math.Copysign(math.MaxFloat64, m)
	}
	neg := m < 0
	m = math.Abs(m)
	for {
		switch {
		case m >= 10:
			m /= 10
			e++
		case m < 1:
			m *= 10
			e--
		default:
			if neg {
				m = -m
			}
			return Number{mantissa: m, exponent: e}
		}
	}
}

// IsZero reports whether n is zero.
func (n Number) IsZero() bool {
	return n.mantissa == 0
}

// Mantissa returns the normalized mantissa, or 0 for zero.
func (n Number) Mantissa() float64 {
	return n.mantissa
}

// Exponent returns the power of ten the mantissa is scaled by, or 0 for zero.
func (n Number) Exponent() int64 {
	if n.IsZero() {
		return 0
	}
	return n.exponent
}

// Parts returns the persistable (mantissa, exponent) pair. FromParts(n.Parts())
// reproduces n exactly.
func (n Number) Parts() (float64, int64) {
	return n.mantissa, n.Exponent()
}

// Sign returns -1, 0 or 1.
func (n Number) Sign() int {
	switch {
	case n.mantissa > 0:
		return 1
	case n.mantissa < 0:
		return -1
	default:
		return 0
	}
}

// Neg returns -n.
func (n Number) Neg() Number {
	return Number{mantissa: -n.mantissa, exponent: n.exponent}
}

// Abs returns |n|.
func (n Number) Abs() Number {
	return Number{mantissa: math.Abs(n.mantissa), exponent: n.exponent}
}

// Add returns n + o. Operands are aligned to the larger exponent, so a term
// more than ~16 orders of magnitude smaller than the other vanishes.
func (n Number) Add(o Number) Number {
	if n.IsZero() {
		return o
	}
	if o.IsZero() {
		return n
	}
	e := max(n.exponent, o.exponent)
	sum := n.mantissa*pow10(n.exponent-e) + o.mantissa*pow10(o.exponent-e)
	return normalize(sum, e)
}

// Sub returns n - o.
func (n Number) Sub(o Number) Number {
	if o.IsZero() {
		return n
	}
	if n.IsZero() {
		return o.Neg()
	}
	e := max(n.exponent, o.exponent)
	diff := n.mantissa*pow10(n.exponent-e) - o.mantissa*pow10(o.exponent-e)
	return normalize(diff, e)
}

// Mul returns n x o.
func (n Number) Mul(o Number) Number {
	if n.IsZero() || o.IsZero() {
		return Number{}
	}
	return normalize(n.mantissa*o.mantissa, n.exponent+o.exponent)
}

// Div returns n / o. Dividing by zero yields zero.
func (n Number) Div(o Number) Number {
	if n.IsZero() || o.IsZero() {
		return Number{}
	}
	return normalize(n.mantissa/o.mantissa, n.exponent-o.exponent)
}

// MulScalar returns n x k. A negative k flips the sign.
func (n Number) MulScalar(k float64) Number {
	if n.IsZero() || k == 0 {
		return Number{}
	}
	return normalize(n.mantissa*k, n.exponent)
}

// Pow returns n^p. Zero stays zero and p == 0 yields exactly one. The
// fractional part of exponent*p is folded into the mantissa. A negative base
// with a fractional power has no real result and yields zero.
func (n Number) Pow(p float64) Number {
	if n.IsZero() {
		return Number{}
	}
	if p == 0 {
		return One()
	}
	scaled := float64(n.exponent) * p
	whole := math.Floor(scaled)
	base := math.Pow(n.mantissa, p)
	if math.IsInf(base, 0) || base == 0 {
		// The mantissa power left the float64 range (e.g. 1.15^6000); carry
		// it through log10 instead.
		if n.mantissa < 0 {
			if p != math.Trunc(p) {
				return Number{}
			}
			r := n.Abs().Pow(p)
			if math.Mod(p, 2) != 0 {
				return r.Neg()
			}
			return r
		}
		lg := math.Log10(n.mantissa)*p + (scaled - whole)
		lw := math.Floor(lg)
		return normalize(math.Pow(10, lg-lw), int64(whole)+int64(lw))
	}
	return normalize(base*math.Pow(10, scaled-whole), int64(whole))
}

// AddInPlace sets n to n + o.
func (n *Number) AddInPlace(o Number) {
	*n = n.Add(o)
}

// MulScalarInPlace sets n to n x k.
func (n *Number) MulScalarInPlace(k float64) {
	*n = n.MulScalar(k)
}

// Float64 converts n to a float64. Exponents above 308 saturate to
// +/-math.MaxFloat64 and exponents below -308 truncate to 0.
func (n Number) Float64() float64 {
	if n.IsZero() {
		return 0
	}
	if n.exponent > 308 {
		return math.Copysign(math.MaxFloat64, n.mantissa)
	}
	if n.exponent < -308 {
		return 0
	}
	v := n.mantissa * math.Pow10(int(n.exponent))
	if math.IsInf(v, 0) {
		return math.Copysign(math.MaxFloat64, n.mantissa)
	}
	return v
}

// Log10 returns log10(|n|), or -Inf for zero.
func (n Number) Log10() float64 {
	if n.IsZero() {
		return math.Inf(-1)
	}
	return math.Log10(math.Abs(n.mantissa)) + float64(n.exponent)
}

// Cmp compares a and b and returns -1, 0 or 1.
func Cmp(a, b Number) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return -b.Sign()
	case b.IsZero():
		return a.Sign()
	}
	if a.Sign() != b.Sign() {
		return a.Sign()
	}
	if a.exponent != b.exponent {
		if a.exponent > b.exponent {
			return a.Sign()
		}
		return -a.Sign()
	}
	switch {
	case a.mantissa > b.mantissa:
		return 1
	case a.mantissa < b.mantissa:
		return -1
	default:
		return 0
	}
}

// Cmp compares n with o.
func (n Number) Cmp(o Number) int {
	return Cmp(n, o)
}

// Equal reports whether n == o.
func (n Number) Equal(o Number) bool {
	return Cmp(n, o) == 0
}

// Less reports whether n < o.
func (n Number) Less(o Number) bool {
	return Cmp(n, o) < 0
}

// Greater reports whether n > o.
func (n Number) Greater(o Number) bool {
	return Cmp(n, o) > 0
}

// GreaterOrEqual reports whether n >= o.
func (n Number) GreaterOrEqual(o Number) bool {
	return Cmp(n, o) >= 0
}

// Max returns the larger of a and b.
func Max(a, b Number) Number {
	if Cmp(a, b) >= 0 {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b Number) Number {
	if Cmp(a, b) <= 0 {
		return a
	}
	return b
}

// pow10 is math.Pow10 for int64 exponents; gaps beyond the float64 range
// underflow to 0 or overflow to +Inf like math.Pow10 does.
func pow10(e int64) float64 {
	if e < -400 {
		return 0
	}
	if e > 400 {
		return math.Inf(1)
	}
	return math.Pow10(int(e))
}
