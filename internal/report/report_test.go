package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ogulcanaydogan/fairparity/internal/verify"
	"github.com/ogulcanaydogan/fairparity/pkg/types"
)

func sampleReport() types.Report {
	bar := types.BarChart{
		Kind:        types.ChartBar,
		Title:       "Predictive Rate Parity",
		Label:       "predictive_rate",
		Orientation: types.OrientationHorizontal,
		Reference:   "A",
		Categories:  []string{"A", "B"},
		Values:      []types.Float{1, types.Undefined()},
	}
	return types.Report{
		SchemaVersion: types.SchemaVersion,
		RunID:         "run-1",
		GeneratedAt:   "2026-03-01T12:00:00Z",
		Generator:     types.Generator{Name: "fairparity", Version: "0.1.0", GitSHA: "local"},
		Dataset:       types.Dataset{Path: "data.csv", Format: "csv", Digest: "sha256:abc", Rows: 6},
		Options: types.Options{
			Outcome: "outcome", Group: "group", Prediction: "prediction", Score: "score",
			Levels: [2]string{"no", "yes"}, Cutoff: 0.5, Base: "A",
		},
		Results: []types.MetricResult{
			{
				Metric: "predictive_rate",
				Label:  "Predictive Rate Parity",
				Base:   "A",
				Cutoff: 0.5,
				Groups: []types.GroupMetric{
					{Group: "A", Size: 3, Confusion: types.Confusion{TP: 1, TN: 1, FN: 1}, Raw: 1, Parity: 1},
					{Group: "B", Size: 3, Confusion: types.Confusion{TN: 3}, Raw: types.Undefined(), Parity: types.Undefined()},
				},
				Charts: types.Charts{
					Bar: bar,
					Distribution: &types.DistributionChart{
						Kind:  types.ChartDistribution,
						Title: "Predicted probabilities by group",
						Edges: []float64{0, 0.5, 1},
						Series: []types.DensitySeries{
							{Group: "A", N: 3, Mean: 0.5, Density: []types.Float{1, 1}},
							{Group: "B", N: 3, Mean: 0.2, Density: []types.Float{2, 0}},
						},
					},
				},
			},
			{
				Metric: "roc_auc",
				Label:  "ROC AUC Parity",
				Base:   "A",
				Groups: []types.GroupMetric{
					{Group: "A", Size: 3, Raw: 1, Parity: 1},
					{Group: "B", Size: 3, Raw: 0.5, Parity: 0.5},
				},
				Charts: types.Charts{
					Bar: types.BarChart{Kind: types.ChartBar, Categories: []string{"A", "B"}, Values: []types.Float{1, 0.5}},
					ROC: &types.ROCChart{
						Kind:  types.ChartROC,
						Title: "ROC curves by group",
						Series: []types.ROCSeries{
							{Group: "A", AUC: 1, FPR: []float64{0, 0, 1}, TPR: []float64{0, 1, 1}},
							{Group: "B", AUC: 0.5, FPR: []float64{0, 1}, TPR: []float64{0, 1}},
						},
					},
				},
			},
		},
		ResultDigest: "sha256:def",
	}
}

func TestBuildMarkdownIncludesProvenanceAndResults(t *testing.T) {
	md := BuildMarkdown(sampleReport())
	for _, want := range []string{
		"# Fairness Parity Report",
		"`run-1`",
		"`sha256:abc`",
		"base group `A`",
		"cutoff `0.5`",
		"## Predictive Rate Parity",
		"## ROC AUC Parity",
		"| B | 0.5000 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if !strings.Contains(md, "NA") {
		t.Error("undefined values should render as NA")
	}
}

func TestResultTableASCII(t *testing.T) {
	out := ResultTable(sampleReport().Results[0], ASCII)
	if !strings.Contains(out, "Predictive Rate Parity (base: A)") {
		t.Fatalf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "1.0000") || !strings.Contains(out, "NA") {
		t.Fatalf("missing values:\n%s", out)
	}
}

func TestSummaryTableUnionOfGroups(t *testing.T) {
	results := sampleReport().Results
	results[1].Groups = append(results[1].Groups, types.GroupMetric{Group: "C", Parity: 0.9})
	out := SummaryTable(results, Markdown)
	if !strings.Contains(out, "| Metric | A | B | C |") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "-") {
		t.Fatalf("missing group should render as '-':\n%s", out)
	}
}

func TestFormatFloat(t *testing.T) {
	if got := FormatFloat(types.Undefined()); got != "NA" {
		t.Fatalf("FormatFloat(NaN) = %q", got)
	}
	if got := FormatFloat(0.5); got != "0.5000" {
		t.Fatalf("FormatFloat(0.5) = %q", got)
	}
}

func TestWriteJSONAndMarkdown(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "report.json")
	if err := WriteJSON(jsonPath, sampleReport()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var back types.Report
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("report JSON does not parse: %v", err)
	}
	if back.Results[0].Groups[1].Parity.Defined() {
		t.Fatal("undefined parity should come back undefined")
	}

	mdPath := filepath.Join(dir, "report.md")
	if err := WriteMarkdown(mdPath, sampleReport()); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	if info, err := os.Stat(mdPath); err != nil || info.Size() == 0 {
		t.Fatal("markdown file should be written")
	}
}

func TestBuildVerifyMarkdown(t *testing.T) {
	r := verify.Report{
		Passed:     false,
		ExitCode:   verify.ExitDigestMismatch,
		ReportPath: "report.json",
		RunID:      "run-1",
		Checks: []verify.CheckResult{
			{Check: "schema", Passed: true, Message: "ok"},
			{Check: "dataset_digest", Passed: false, Message: "a|b mismatch"},
		},
		Violations: []string{"dataset_digest: a|b mismatch"},
	}
	md := BuildVerifyMarkdown(r)
	for _, want := range []string{"**FAIL**", "`12`", "a\\|b mismatch", "## Violations"} {
		if !strings.Contains(md, want) {
			t.Errorf("verify markdown missing %q", want)
		}
	}
	path := filepath.Join(t.TempDir(), "verify.md")
	if err := WriteVerifyMarkdown(path, r); err != nil {
		t.Fatal(err)
	}
}

// --- VegaLite() ---

func TestVegaLiteBarIsHorizontalWithReferenceRule(t *testing.T) {
	spec, err := VegaLite(sampleReport().Results[0], types.ChartBar)
	if err != nil {
		t.Fatal(err)
	}
	layer := spec["layer"].([]any)
	enc := layer[0].(map[string]any)["encoding"].(map[string]any)
	if enc["x"].(map[string]any)["field"] != "parity" {
		t.Fatalf("horizontal bars put parity on x, got %v", enc["x"])
	}
	raw, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("spec must marshal even with undefined values: %v", err)
	}
	if !strings.Contains(string(raw), `"parity":null`) {
		t.Fatalf("undefined parity should be null in chart data: %s", raw)
	}
}

func TestVegaLiteVerticalBar(t *testing.T) {
	res := sampleReport().Results[0]
	res.Charts.Bar.Orientation = types.OrientationVertical
	spec, err := VegaLite(res, "")
	if err != nil {
		t.Fatal(err)
	}
	enc := spec["layer"].([]any)[0].(map[string]any)["encoding"].(map[string]any)
	if enc["y"].(map[string]any)["field"] != "parity" {
		t.Fatalf("vertical bars put parity on y, got %v", enc["y"])
	}
}

func TestVegaLiteDistributionAndROC(t *testing.T) {
	r := sampleReport()
	spec, err := VegaLite(r.Results[0], types.ChartDistribution)
	if err != nil {
		t.Fatal(err)
	}
	values := spec["data"].(map[string]any)["values"].([]map[string]any)
	if len(values) != 4 {
		t.Fatalf("expected one row per group and bin, got %d", len(values))
	}

	spec, err = VegaLite(r.Results[1], types.ChartROC)
	if err != nil {
		t.Fatal(err)
	}
	curve := spec["layer"].([]any)[0].(map[string]any)["data"].(map[string]any)["values"].([]map[string]any)
	if len(curve) != 5 || curve[0]["group"] != "A (AUC 1.0000)" {
		t.Fatalf("unexpected ROC data %v", curve)
	}
}

func TestVegaLiteErrors(t *testing.T) {
	r := sampleReport()
	if _, err := VegaLite(r.Results[1], types.ChartDistribution); err == nil {
		t.Fatal("expected error for missing distribution chart")
	}
	if _, err := VegaLite(r.Results[0], types.ChartROC); err == nil {
		t.Fatal("expected error for missing ROC chart")
	}
	if _, err := VegaLite(r.Results[0], "pie"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
