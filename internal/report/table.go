package report

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ogulcanaydogan/fairparity/pkg/types"
)

type Mode int

const (
	ASCII Mode = iota
	Markdown
)

// ResultTable renders one metric result with a row per group, base first.
func ResultTable(res types.MetricResult, mode Mode) string {
	w := table.NewWriter()
	if mode == ASCII {
		w.SetStyle(table.StyleLight)
		w.SetTitle(fmt.Sprintf("%s (base: %s)", res.Label, res.Base))
	}
	w.AppendHeader(table.Row{"Group", "Size", "TP", "FP", "TN", "FN", "Raw", "Parity"})
	for _, g := range res.Groups {
		w.AppendRow(table.Row{
			g.Group, g.Size,
			g.Confusion.TP, g.Confusion.FP, g.Confusion.TN, g.Confusion.FN,
			FormatFloat(g.Raw), FormatFloat(g.Parity),
		})
	}
	cfgs := make([]table.ColumnConfig, 0, 7)
	for n := 2; n <= 8; n++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	w.SetColumnConfigs(cfgs)
	if mode == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// SummaryTable renders the parity ratios of several metrics side by side,
// one row per metric and one column per group.
func SummaryTable(results []types.MetricResult, mode Mode) string {
	w := table.NewWriter()
	if mode == ASCII {
		w.SetStyle(table.StyleLight)
	}
	groups := make([]string, 0)
	seen := make(map[string]struct{})
	for _, res := range results {
		for _, g := range res.Groups {
			if _, ok := seen[g.Group]; !ok {
				seen[g.Group] = struct{}{}
				groups = append(groups, g.Group)
			}
		}
	}
	header := table.Row{"Metric"}
	for _, g := range groups {
		header = append(header, g)
	}
	w.AppendHeader(header)
	for _, res := range results {
		values := res.Parity()
		row := table.Row{res.Metric}
		for _, g := range groups {
			v, ok := values[g]
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, FormatFloat(v))
		}
		w.AppendRow(row)
	}
	if mode == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// FormatFloat prints a metric value with four decimals, or NA when undefined.
func FormatFloat(v types.Float) string {
	if !v.Defined() {
		return "NA"
	}
	return strconv.FormatFloat(float64(v), 'f', 4, 64)
}
