package parity

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/ogulcanaydogan/fairparity/pkg/types"
)

type GroupResult struct {
	Group     string
	Size      int
	Confusion ConfusionMatrix
	Raw       float64
	Parity    float64
}

// Result is one metric evaluated across all groups. Groups[0] is the base.
type Result struct {
	Metric       Metric
	Label        string
	Base         string
	Cutoff       float64
	Groups       []GroupResult
	Bar          types.BarChart
	Distribution *types.DistributionChart
	ROC          *types.ROCChart
}

func (r Result) Parity() map[string]float64 {
	out := make(map[string]float64, len(r.Groups))
	for _, g := range r.Groups {
		out[g.Group] = g.Parity
	}
	return out
}

func (r Result) Raw() map[string]float64 {
	out := make(map[string]float64, len(r.Groups))
	for _, g := range r.Groups {
		out[g.Group] = g.Raw
	}
	return out
}

func (r Result) Group(name string) (GroupResult, bool) {
	for _, g := range r.Groups {
		if g.Group == name {
			return g, true
		}
	}
	return GroupResult{}, false
}

// Summary converts r to its wire form.
func (r Result) Summary() types.MetricResult {
	groups := make([]types.GroupMetric, len(r.Groups))
	for i, g := range r.Groups {
		groups[i] = types.GroupMetric{
			Group:     g.Group,
			Size:      g.Size,
			Confusion: g.Confusion.Wire(),
			Raw:       types.Float(g.Raw),
			Parity:    types.Float(g.Parity),
		}
	}
	return types.MetricResult{
		Metric: string(r.Metric),
		Label:  r.Label,
		Base:   r.Base,
		Cutoff: r.Cutoff,
		Groups: groups,
		Charts: types.Charts{Bar: r.Bar, Distribution: r.Distribution, ROC: r.ROC},
	}
}

// Compute evaluates one metric for every group in the input and expresses
// each value relative to the base group.
func Compute(in Input, metric Metric) (Result, error) {
	def, ok := Lookup(metric)
	if !ok {
		return Result{}, &UnknownMetricError{Name: string(metric)}
	}
	a, err := normalize(in, metric == ROCAUC)
	if err != nil {
		return Result{}, err
	}

	rows := make(map[string][]int, len(a.levels))
	for i, g := range a.groups {
		rows[g] = append(rows[g], i)
	}

	raw := make(map[string]float64, len(a.levels))
	groups := make([]GroupResult, len(a.levels))
	var curves []types.ROCSeries
	for i, g := range a.levels {
		idx := rows[g]
		actual := pickBools(a.actual, idx)
		cm := buildConfusion(pickBools(a.predicted, idx), actual)
		var value float64
		if def.Extract != nil {
			value = def.Extract(cm)
		} else {
			fpr, tpr, auc := rocCurve(pickFloats(a.scores, idx), actual)
			value = auc
			curves = append(curves, types.ROCSeries{Group: g, AUC: types.Float(auc), FPR: fpr, TPR: tpr})
		}
		raw[g] = value
		groups[i] = GroupResult{Group: g, Size: len(idx), Confusion: cm, Raw: value}
	}

	norm := Normalize(raw, a.base)
	for i := range groups {
		groups[i].Parity = norm[groups[i].Group]
	}

	res := Result{
		Metric: def.Metric,
		Label:  def.Label,
		Base:   a.base,
		Cutoff: a.cutoff,
		Groups: groups,
		Bar:    barChart(def, groups, a.base),
	}
	if a.scores != nil {
		res.Distribution = distributionChart(a, rows)
	}
	if curves != nil {
		res.ROC = &types.ROCChart{Kind: types.ChartROC, Title: "ROC curves by group", Series: curves}
	}
	return res, nil
}

// ComputeAll evaluates several metrics over the same input concurrently.
// Results keep the order of metrics.
func ComputeAll(ctx context.Context, in Input, metrics []Metric) ([]Result, error) {
	out := make([]Result, len(metrics))
	g, ctx := errgroup.WithContext(ctx)
	for i, m := range metrics {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Compute(in, m)
			if err != nil {
				return fmt.Errorf("%s: %w", m, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Normalize divides every value by the base value. The base itself maps to
// exactly 1. A zero, undefined, or absent base leaves every entry NaN.
func Normalize(values map[string]float64, base string) map[string]float64 {
	out := make(map[string]float64, len(values))
	b, ok := values[base]
	if !ok || b == 0 || math.IsNaN(b) || math.IsInf(b, 0) {
		for k := range values {
			out[k] = math.NaN()
		}
		return out
	}
	for k, v := range values {
		out[k] = v / b
	}
	out[base] = 1
	return out
}

func pickBools(src []bool, idx []int) []bool {
	out := make([]bool, len(idx))
	for i, j := range idx {
		out[i] = src[j]
	}
	return out
}

func pickFloats(src []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = src[j]
	}
	return out
}
