package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Float is a float64 whose undefined values (NaN, ±Inf) travel as JSON null.
type Float float64

func Undefined() Float { return Float(math.NaN()) }

func (f Float) Defined() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Defined() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(f), 'g', -1, 64)), nil
}

func (f *Float) UnmarshalJSON(raw []byte) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		*f = Undefined()
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}
