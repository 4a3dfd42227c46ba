package bignum

import (
	"fmt"
	"math"
)

// Style selects one of the three presentations of a Number.
type Style string

// Presentation styles accepted by Format.
const (
	StyleShort       Style = "short"
	StyleScientific  Style = "scientific"
	StyleEngineering Style = "engineering"
)

// suffixes maps exponent/3 to a short-scale suffix.
var suffixes = []string{
	"", "K", "M", "B", "T", "Qa", "Qi", "Sx", "Sp", "Oc", "No",
	"Dc", "UDc", "DDc", "TDc", "QaDc", "QiDc", "SxDc", "SpDc", "OcDc", "NoDc",
	"Vg",
}

// ValidStyle reports whether s names a known presentation.
func ValidStyle(s Style) bool {
	switch s {
	case StyleShort, StyleScientific, StyleEngineering:
		return true
	}
	return false
}

// Format renders n in the given style. Unknown styles fall back to short.
func (n Number) Format(s Style) string {
	switch s {
	case StyleScientific:
		return n.FormatScientific()
	case StyleEngineering:
		return n.FormatEngineering()
	default:
		return n.FormatShort()
	}
}

// String implements fmt.Stringer using FormatShort.
func (n Number) String() string {
	return n.FormatShort()
}

// FormatShort renders n with a thousands suffix, e.g. "1.50M". Values whose
// tier is negative fall back to %.2e, or to FormatScientific once they
// underflow float64, and values past the suffix table fall back to
// FormatScientific.
func (n Number) FormatShort() string {
	if n.IsZero() {
		return "0"
	}
	// Integer division truncates toward zero, so exponents -1 and -2 still
	// land in tier 0 and print as plain decimals.
	tier := n.exponent / 3
	if tier < 0 {
		if n.exponent < -308 {
			return n.FormatScientific()
		}
		return fmt.Sprintf("%.2e", n.Float64())
	}
	if tier >= int64(len(suffixes)) {
		return n.FormatScientific()
	}
	rem := n.exponent - tier*3
	value := n.mantissa * math.Pow10(int(rem))
	if tier == 0 {
		if rem >= 0 {
			return fmt.Sprintf("%.0f", value)
		}
		return fmt.Sprintf("%.2f", value)
	}
	return fmt.Sprintf("%.2f%s", value, suffixes[tier])
}

// FormatScientific renders n as "<mantissa>e<exponent>" with two decimals.
func (n Number) FormatScientific() string {
	if n.IsZero() {
		return "0"
	}
	return fmt.Sprintf("%.2fe%d", n.mantissa, n.exponent)
}

// FormatEngineering is FormatScientific with the exponent floored to a
// multiple of three.
func (n Number) FormatEngineering() string {
	if n.IsZero() {
		return "0"
	}
	eng := n.exponent / 3 * 3
	if n.exponent < 0 && n.exponent%3 != 0 {
		eng -= 3
	}
	m := n.mantissa * math.Pow10(int(n.exponent-eng))
	return fmt.Sprintf("%.2fe%d", m, eng)
}
