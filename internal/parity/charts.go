package parity

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ogulcanaydogan/fairparity/pkg/types"
)

// DistributionBins is the number of equal-width score bins per group.
const DistributionBins = 20

func barChart(def Definition, groups []GroupResult, base string) types.BarChart {
	cats := make([]string, len(groups))
	vals := make([]types.Float, len(groups))
	for i, g := range groups {
		cats[i] = g.Group
		vals[i] = types.Float(g.Parity)
	}
	return types.BarChart{
		Kind:        types.ChartBar,
		Title:       def.Label,
		Label:       string(def.Metric),
		Orientation: types.OrientationHorizontal,
		Reference:   base,
		Categories:  cats,
		Values:      vals,
	}
}

func distributionChart(a *aligned, rows map[string][]int) *types.DistributionChart {
	edges := floats.Span(make([]float64, DistributionBins+1), 0, 1)
	// stat.Histogram wants every value strictly below the last divider.
	dividers := append([]float64(nil), edges...)
	dividers[DistributionBins] = math.Nextafter(1, 2)
	width := 1.0 / DistributionBins

	chart := &types.DistributionChart{
		Kind:  types.ChartDistribution,
		Title: "Predicted probabilities by group",
		Edges: edges,
	}
	for _, g := range a.levels {
		x := pickFloats(a.scores, rows[g])
		sort.Float64s(x)
		counts := stat.Histogram(nil, dividers, x, nil)
		density := make([]types.Float, len(counts))
		for i, c := range counts {
			density[i] = types.Float(c / (float64(len(x)) * width))
		}
		chart.Series = append(chart.Series, types.DensitySeries{
			Group:   g,
			N:       len(x),
			Mean:    types.Float(stat.Mean(x, nil)),
			Density: density,
		})
	}
	return chart
}
