package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/ogulcanaydogan/fairparity/internal/parity"
)

// Columns maps table columns onto the engine input. Prediction and Score are
// alternatives; either or both may be named.
type Columns struct {
	Outcome     string    `yaml:"outcome"`
	Group       string    `yaml:"group"`
	Prediction  string    `yaml:"prediction"`
	Score       string    `yaml:"score"`
	GroupBreaks []float64 `yaml:"group_breaks"`
}

// Input extracts the named columns. Options other than the columns (levels,
// cutoff, base) are left for the caller to set.
func (t *Table) Input(cols Columns) (parity.Input, error) {
	var in parity.Input
	var err error
	if cols.Outcome == "" || cols.Group == "" {
		return in, fmt.Errorf("outcome and group columns are required")
	}
	if in.Outcome, err = t.Column(cols.Outcome); err != nil {
		return in, err
	}
	if len(cols.GroupBreaks) > 0 {
		values, err := t.FloatColumn(cols.Group)
		if err != nil {
			return in, err
		}
		if in.Groups, err = Bucketize(values, cols.GroupBreaks); err != nil {
			return in, fmt.Errorf("group %q: %w", cols.Group, err)
		}
	} else if in.Groups, err = t.Column(cols.Group); err != nil {
		return in, err
	}
	if cols.Prediction != "" {
		if in.Predictions, err = t.Column(cols.Prediction); err != nil {
			return in, err
		}
	}
	if cols.Score != "" {
		if in.Scores, err = t.FloatColumn(cols.Score); err != nil {
			return in, err
		}
	}
	return in, nil
}

// Bucketize labels numeric values with the interval of breaks they fall in.
// Intervals are half-open [a,b) except the last, which is closed.
func Bucketize(values, breaks []float64) ([]string, error) {
	if len(breaks) < 2 {
		return nil, fmt.Errorf("need at least two breaks, got %d", len(breaks))
	}
	for i := 1; i < len(breaks); i++ {
		if !(breaks[i] > breaks[i-1]) {
			return nil, fmt.Errorf("breaks must be strictly ascending: %v", breaks)
		}
	}
	labels := make([]string, len(breaks)-1)
	for i := range labels {
		closing := ")"
		if i == len(labels)-1 {
			closing = "]"
		}
		labels[i] = "[" + formatBreak(breaks[i]) + "," + formatBreak(breaks[i+1]) + closing
	}
	out := make([]string, len(values))
	last := len(breaks) - 1
	for r, v := range values {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("row %d: group value is not a number", r+1)
		}
		if v < breaks[0] || v > breaks[last] {
			return nil, fmt.Errorf("row %d: %v outside [%v,%v]", r+1, v, breaks[0], breaks[last])
		}
		i := sort.SearchFloat64s(breaks, v)
		if i == last || breaks[i] != v {
			i--
		}
		out[r] = labels[i]
	}
	return out, nil
}

func formatBreak(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
