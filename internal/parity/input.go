package parity

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const DefaultCutoff = 0.5

// Levels names the two outcome classes, negative first.
type Levels struct {
	Negative string
	Positive string
}

func DefaultLevels() Levels { return Levels{Negative: "no", Positive: "yes"} }

func (l Levels) orDefault() Levels {
	if l.Negative == "" && l.Positive == "" {
		return DefaultLevels()
	}
	return l
}

// Input is one observation table plus the call options. Predictions and
// Scores are alternatives; at least one must be set. When both are set the
// labels feed the confusion matrices and the scores feed ROC AUC and the
// distribution chart. A nil Cutoff means DefaultCutoff.
type Input struct {
	Outcome     []string
	Groups      []string
	Predictions []string
	Scores      []float64
	Levels      Levels
	Cutoff      *float64
	Base        string
}

type aligned struct {
	actual    []bool
	predicted []bool
	scores    []float64
	groups    []string
	levels    []string
	base      string
	cutoff    float64
	outcomes  Levels
}

func normalize(in Input, needScores bool) (*aligned, error) {
	hasPreds, hasScores := in.Predictions != nil, in.Scores != nil
	if !hasPreds && !hasScores {
		return nil, &MissingArgumentError{Argument: "predictions", Reason: "either prediction labels or scores are required"}
	}
	n := len(in.Outcome)
	if (hasPreds && len(in.Predictions) != n) || len(in.Groups) != n {
		return nil, &DimensionMismatchError{Outcome: n, Predictions: predictionLen(in), Groups: len(in.Groups)}
	}
	if hasScores && len(in.Scores) != n {
		return nil, &DimensionMismatchError{Outcome: n, Predictions: len(in.Scores), Groups: len(in.Groups)}
	}
	if needScores && !hasScores {
		return nil, &MissingArgumentError{Argument: "scores", Reason: "roc_auc needs continuous scores"}
	}

	levels := in.Levels.orDefault()
	if levels.Negative == "" || levels.Positive == "" || levels.Negative == levels.Positive {
		return nil, &ArgumentError{Argument: "levels", Reason: fmt.Sprintf("need two distinct names, got %q and %q", levels.Negative, levels.Positive)}
	}
	cutoff := DefaultCutoff
	if in.Cutoff != nil {
		cutoff = *in.Cutoff
	}
	if math.IsNaN(cutoff) || cutoff < 0 || cutoff > 1 {
		return nil, &ArgumentError{Argument: "cutoff", Reason: fmt.Sprintf("%v is outside [0,1]", cutoff)}
	}
	if n == 0 {
		return nil, &ArgumentError{Argument: "outcome", Reason: "no observations"}
	}

	a := &aligned{
		actual:    make([]bool, n),
		predicted: make([]bool, n),
		groups:    in.Groups,
		cutoff:    cutoff,
		outcomes:  levels,
	}
	for i, v := range in.Outcome {
		pos, err := levels.parse("outcome", i, v)
		if err != nil {
			return nil, err
		}
		a.actual[i] = pos
	}
	if hasScores {
		for i, s := range in.Scores {
			if math.IsNaN(s) || s < 0 || s > 1 {
				return nil, &ArgumentError{Argument: "scores", Reason: fmt.Sprintf("row %d: %v is outside [0,1]", i, s)}
			}
		}
		a.scores = in.Scores
	}
	if hasPreds {
		for i, v := range in.Predictions {
			pos, err := levels.parse("predictions", i, v)
			if err != nil {
				return nil, err
			}
			a.predicted[i] = pos
		}
	} else {
		for i, s := range in.Scores {
			a.predicted[i] = s >= cutoff
		}
	}

	observed := groupLevels(in.Groups)
	base := in.Base
	if base == "" {
		base = observed[0]
	} else if !contains(observed, base) {
		return nil, &InvalidBaseGroupError{Base: base, Levels: observed}
	}
	a.base = base
	a.levels = append([]string{base}, without(observed, base)...)
	return a, nil
}

func (l Levels) parse(column string, row int, v string) (bool, error) {
	switch strings.TrimSpace(v) {
	case l.Positive:
		return true, nil
	case l.Negative:
		return false, nil
	}
	return false, &ArgumentError{Argument: column, Reason: fmt.Sprintf("row %d: %q is neither %q nor %q", row, v, l.Negative, l.Positive)}
}

func predictionLen(in Input) int {
	if in.Predictions != nil {
		return len(in.Predictions)
	}
	return len(in.Scores)
}

// groupLevels returns the distinct groups in natural (lexical) order.
func groupLevels(groups []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, g := range groups {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

func contains(items []string, v string) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}

func without(items []string, v string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it != v {
			out = append(out, it)
		}
	}
	return out
}
