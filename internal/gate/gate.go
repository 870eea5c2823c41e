package gate

import (
	"fmt"
	"math"
	"os"
	"strings"

	goyaml "gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/fairparity/internal/parity"
	"github.com/ogulcanaydogan/fairparity/pkg/schema"
	"github.com/ogulcanaydogan/fairparity/pkg/types"
)

// Four-fifths rule bounds, used when a gate names neither min nor max.
const (
	DefaultMin = 0.8
	DefaultMax = 1.25
)

type Policy struct {
	Version string `yaml:"version"`
	Gates   []Gate `yaml:"gates"`
}

// Gate bounds the parity ratios of one metric. An empty Groups list means
// every non-base group.
type Gate struct {
	ID             string   `yaml:"id"`
	Metric         string   `yaml:"metric"`
	Min            *float64 `yaml:"min"`
	Max            *float64 `yaml:"max"`
	Groups         []string `yaml:"groups"`
	AllowUndefined bool     `yaml:"allow_undefined"`
	Message        string   `yaml:"message"`
}

type SchemaError struct {
	Path   string
	Errors []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("policy %s failed schema validation: %s", e.Path, strings.Join(e.Errors, "; "))
}

func LoadPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, err
	}
	var doc map[string]any
	if err := goyaml.Unmarshal(raw, &doc); err != nil {
		return Policy{}, fmt.Errorf("parse policy %s: %w", path, err)
	}
	errs, err := schema.ValidateDocument(schema.GatePolicy, doc)
	if err != nil {
		return Policy{}, err
	}
	if len(errs) > 0 {
		return Policy{}, &SchemaError{Path: path, Errors: errs}
	}
	var p Policy
	if err := goyaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy %s: %w", path, err)
	}
	return p, nil
}

// DefaultPolicy applies the four-fifths rule to the common rate metrics.
func DefaultPolicy() Policy {
	return Policy{
		Version: "1",
		Gates: []Gate{
			{ID: "G001", Metric: string(parity.Proportional), Message: "selection rate outside the four-fifths band"},
			{ID: "G002", Metric: string(parity.EqualizedOdds)},
			{ID: "G003", Metric: string(parity.PredictiveRate)},
		},
	}
}

func (g Gate) bounds() (float64, float64) {
	if g.Min == nil && g.Max == nil {
		return DefaultMin, DefaultMax
	}
	lo, hi := math.Inf(-1), math.Inf(1)
	if g.Min != nil {
		lo = *g.Min
	}
	if g.Max != nil {
		hi = *g.Max
	}
	return lo, hi
}

// Evaluate checks every gate against the report and returns one message per
// violated gate. A gate whose metric the report does not carry is violated.
func Evaluate(policy Policy, report types.Report) []string {
	violations := make([]string, 0)
	for _, g := range policy.Gates {
		failures := check(g, report)
		if len(failures) == 0 {
			continue
		}
		msg := fmt.Sprintf("%s: %s", g.ID, strings.Join(failures, "; "))
		if g.Message != "" {
			msg = fmt.Sprintf("%s (%s)", g.Message, msg)
		}
		violations = append(violations, msg)
	}
	return violations
}

func check(g Gate, report types.Report) []string {
	m, err := parity.ParseMetric(g.Metric)
	if err != nil {
		return []string{err.Error()}
	}
	res, ok := report.Find(string(m))
	if !ok {
		return []string{fmt.Sprintf("metric %s not present in report", m)}
	}
	lo, hi := g.bounds()
	values := res.Parity()

	groups := g.Groups
	if len(groups) == 0 {
		for _, gm := range res.Groups {
			if gm.Group != res.Base {
				groups = append(groups, gm.Group)
			}
		}
	}
	out := make([]string, 0)
	for _, name := range groups {
		v, ok := values[name]
		switch {
		case !ok:
			out = append(out, fmt.Sprintf("group %s not present in %s", name, m))
		case !v.Defined():
			if !g.AllowUndefined {
				out = append(out, fmt.Sprintf("%s parity for %s is undefined", m, name))
			}
		case float64(v) < lo || float64(v) > hi:
			out = append(out, fmt.Sprintf("%s parity for %s is %.4g, outside [%g, %g]", m, name, float64(v), lo, hi))
		}
	}
	return out
}
