package models

import (
	"encoding/json"

	"github.com/shockerli/cvt"
)

// FlexFloat is a float64 that tolerates sloppy JSON input: numbers sent as
// strings ("350.00"), null, or garbage all unmarshal without error. Anything
// that cannot be read as a number becomes 0 — monetary inputs are coerced,
// never rejected.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		*f = 0
		return nil
	}
	v, err := cvt.Float64E(raw)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

func (f FlexFloat) Float64() float64 {
	return float64(f)
}
