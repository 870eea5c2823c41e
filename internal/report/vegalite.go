package report

import (
	"fmt"

	"github.com/ogulcanaydogan/fairparity/pkg/types"
)

const VegaLiteSchema = "https://vega.github.io/schema/vega-lite/v5.json"

// VegaLite converts one chart descriptor of res into a Vega-Lite spec that an
// external renderer can draw.
func VegaLite(res types.MetricResult, kind string) (map[string]any, error) {
	switch kind {
	case "", types.ChartBar:
		return barSpec(res.Charts.Bar), nil
	case types.ChartDistribution:
		if res.Charts.Distribution == nil {
			return nil, fmt.Errorf("%s has no distribution chart (no scores supplied)", res.Metric)
		}
		return distributionSpec(*res.Charts.Distribution), nil
	case types.ChartROC:
		if res.Charts.ROC == nil {
			return nil, fmt.Errorf("%s has no ROC chart", res.Metric)
		}
		return rocSpec(*res.Charts.ROC), nil
	default:
		return nil, fmt.Errorf("unsupported chart kind %q", kind)
	}
}

func barSpec(c types.BarChart) map[string]any {
	values := make([]map[string]any, len(c.Categories))
	for i, cat := range c.Categories {
		values[i] = map[string]any{"group": cat, "parity": c.Values[i]}
	}
	group := map[string]any{"field": "group", "type": "nominal", "sort": c.Categories, "title": "Group"}
	parity := map[string]any{"field": "parity", "type": "quantitative", "title": c.Title}
	enc := map[string]any{"x": parity, "y": group}
	ref := map[string]any{"x": map[string]any{"datum": 1}}
	if c.Orientation == types.OrientationVertical {
		enc = map[string]any{"x": group, "y": parity}
		ref = map[string]any{"y": map[string]any{"datum": 1}}
	}
	enc["color"] = map[string]any{"field": "group", "type": "nominal", "legend": nil}
	return map[string]any{
		"$schema":     VegaLiteSchema,
		"title":       c.Title,
		"description": fmt.Sprintf("%s parity relative to %s", c.Label, c.Reference),
		"data":        map[string]any{"values": values},
		"layer": []any{
			map[string]any{"mark": "bar", "encoding": enc},
			map[string]any{"mark": map[string]any{"type": "rule", "strokeDash": []int{4, 4}}, "encoding": ref},
		},
	}
}

func distributionSpec(c types.DistributionChart) map[string]any {
	values := make([]map[string]any, 0)
	for _, s := range c.Series {
		for i, d := range s.Density {
			values = append(values, map[string]any{
				"group":     s.Group,
				"bin_start": c.Edges[i],
				"bin_end":   c.Edges[i+1],
				"density":   d,
			})
		}
	}
	return map[string]any{
		"$schema": VegaLiteSchema,
		"title":   c.Title,
		"data":    map[string]any{"values": values},
		"mark":    map[string]any{"type": "area", "interpolate": "step-after", "opacity": 0.4},
		"encoding": map[string]any{
			"x":     map[string]any{"field": "bin_start", "type": "quantitative", "title": "Predicted probability", "scale": map[string]any{"domain": []float64{0, 1}}},
			"x2":    map[string]any{"field": "bin_end"},
			"y":     map[string]any{"field": "density", "type": "quantitative", "title": "Density", "stack": nil},
			"color": map[string]any{"field": "group", "type": "nominal", "title": "Group"},
		},
	}
}

func rocSpec(c types.ROCChart) map[string]any {
	values := make([]map[string]any, 0)
	for _, s := range c.Series {
		label := fmt.Sprintf("%s (AUC %s)", s.Group, FormatFloat(s.AUC))
		for i := range s.FPR {
			values = append(values, map[string]any{"group": label, "step": i, "fpr": s.FPR[i], "tpr": s.TPR[i]})
		}
	}
	unit := map[string]any{"domain": []float64{0, 1}}
	return map[string]any{
		"$schema": VegaLiteSchema,
		"title":   c.Title,
		"layer": []any{
			map[string]any{
				"data": map[string]any{"values": values},
				"mark": "line",
				"encoding": map[string]any{
					"x":     map[string]any{"field": "fpr", "type": "quantitative", "title": "False positive rate", "scale": unit},
					"y":     map[string]any{"field": "tpr", "type": "quantitative", "title": "True positive rate", "scale": unit},
					"order": map[string]any{"field": "step"},
					"color": map[string]any{"field": "group", "type": "nominal", "title": "Group"},
				},
			},
			map[string]any{
				"data": map[string]any{"values": []map[string]any{{"fpr": 0, "tpr": 0}, {"fpr": 1, "tpr": 1}}},
				"mark": map[string]any{"type": "line", "strokeDash": []int{4, 4}, "color": "gray"},
				"encoding": map[string]any{
					"x": map[string]any{"field": "fpr", "type": "quantitative"},
					"y": map[string]any{"field": "tpr", "type": "quantitative"},
				},
			},
		},
	}
}
