package stats

import (
	"math"
	"strconv"
)

// Number is a float64 that may be undefined (NaN). Undefined values
// encode as JSON null.
type Number float64

// Undefined returns the NaN Number.
func Undefined() Number { return Number(math.NaN()) }

// IsDefined reports whether n holds a finite value.
func (n Number) IsDefined() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Float returns the raw float64.
func (n Number) Float() float64 { return float64(n) }

// Round returns n rounded to the given number of decimal places.
func (n Number) Round(places int) Number {
	if !n.IsDefined() {
		return n
	}
	p := math.Pow(10, float64(places))
	return Number(math.Round(float64(n)*p) / p)
}

// Value returns n as a table cell: nil when undefined.
func (n Number) Value() any {
	if !n.IsDefined() {
		return nil
	}
	return float64(n)
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.IsDefined() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(n), 'f', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler; null decodes to NaN.
func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Undefined()
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}
