package eligibility

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric form field. It accepts a JSON number or a numeric
// string, and remembers whether a value was supplied at all.
type Number struct {
	Set   bool
	Value float64
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = Number{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Non-numeric text is present but not a finite number.
			*n = Number{Set: true, Value: math.NaN()}
			return nil
		}
		*n = Number{Set: true, Value: v}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Number{Set: true, Value: v}
	return nil
}

// Finite reports whether the value is a usable real number.
func (n Number) Finite() bool {
	return n.Set && !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0)
}

// NumberOf returns a set Number, for callers building requests in code.
func NumberOf(v float64) Number {
	return Number{Set: true, Value: v}
}
