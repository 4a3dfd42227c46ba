package bignum

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrSyntax is returned when text cannot be parsed as a Number.
var ErrSyntax = errors.New("invalid number syntax")

// maxDigits is the number of significant digits a float64 mantissa can carry.
const maxDigits = 17

// Parse reads a decimal or scientific literal such as "1500", "-2.5e12" or
// "1e400". Literals beyond the float64 range are accepted because the digits
// and the exponent are read separately.
func Parse(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}, fmt.Errorf("%w: empty string", ErrSyntax)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	if d.IsZero() {
		return Number{}, nil
	}

	digits := d.Coefficient().String()
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")
	exp := int64(d.Exponent()) + int64(len(digits)-1)

	lead := digits
	if len(lead) > maxDigits {
		lead = lead[:maxDigits]
	}
	m, err := strconv.ParseFloat(lead[:1]+"."+lead[1:], 64)
	if err != nil {
		return Number{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	if neg {
		m = -m
	}
	return FromParts(m, exp), nil
}

// MustParse is Parse for literals known to be valid. It panics otherwise.
func MustParse(s string) Number {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// MarshalText encodes n without loss as "<mantissa>e<exponent>", or "0".
func (n Number) MarshalText() ([]byte, error) {
	if n.IsZero() {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatFloat(n.mantissa, 'g', -1, 64) + "e" + strconv.FormatInt(n.exponent, 10)), nil
}

// UnmarshalText decodes any literal accepted by Parse.
func (n *Number) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}
