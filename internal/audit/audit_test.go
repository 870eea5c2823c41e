package audit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ogulcanaydogan/fairparity/internal/dataset"
	"github.com/ogulcanaydogan/fairparity/internal/parity"
)

const sampleCSV = `outcome,group,prediction,score
yes,A,yes,0.9
no,A,no,0.2
yes,A,no,0.4
yes,B,yes,0.8
no,B,yes,0.7
no,B,no,0.1
`

func writeFixture(t *testing.T, config string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data", "predictions.csv"), []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "audit.yaml")
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleConfig = `dataset:
  path: data/predictions.csv
columns:
  outcome: outcome
  group: group
  prediction: prediction
  score: score
metrics: [accuracy, pred_rate, equalized_odds, roc_auc]
determinism_check: 3
`

// --- ReadConfig() ---

func TestReadConfigResolvesDatasetRelativeToConfig(t *testing.T) {
	path := writeFixture(t, sampleConfig)
	cfg, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	want := filepath.Join(filepath.Dir(path), "data", "predictions.csv")
	if cfg.Dataset.Path != want {
		t.Fatalf("dataset path = %q, want %q", cfg.Dataset.Path, want)
	}
	if cfg.DeterminismCheck != 3 || len(cfg.Metrics) != 4 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestReadConfigRejectsSchemaViolations(t *testing.T) {
	path := writeFixture(t, "dataset:\n  path: x.csv\ncolumns:\n  outcome: y\n  group: g\nunknown: 1\n")
	_, err := ReadConfig(path)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(se.Errors) == 0 {
		t.Fatal("expected schema messages")
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	if _, err := ReadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestReadConfigInvalidYAML(t *testing.T) {
	path := writeFixture(t, "dataset: [\n")
	if _, err := ReadConfig(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

// --- Config defaults ---

func TestDefaultMetricsSkipROCWithoutScores(t *testing.T) {
	cfg := Config{}
	cfg.Columns.Prediction = "prediction"
	ms, err := cfg.metrics()
	if err != nil {
		t.Fatal(err)
	}
	if len(ms) != len(parity.Catalog())-1 {
		t.Fatalf("expected every metric but roc_auc, got %v", ms)
	}
	for _, m := range ms {
		if m == parity.ROCAUC {
			t.Fatal("roc_auc must be skipped without a score column")
		}
	}
	cfg.Columns.Score = "score"
	ms, _ = cfg.metrics()
	if len(ms) != len(parity.Catalog()) {
		t.Fatalf("expected full catalog with scores, got %d", len(ms))
	}
}

func TestConfigRejectsUnknownMetric(t *testing.T) {
	cfg := Config{Metrics: []string{"accuracy", "fairness"}}
	if _, err := cfg.metrics(); err == nil {
		t.Fatal("expected error for unknown metric")
	}
}

func TestConfigLevels(t *testing.T) {
	l, err := Config{}.levels()
	if err != nil || l != parity.DefaultLevels() {
		t.Fatalf("expected default levels, got %v %v", l, err)
	}
	l, err = Config{Levels: []string{"0", "1"}}.levels()
	if err != nil || l.Positive != "1" {
		t.Fatalf("unexpected levels %v %v", l, err)
	}
	if _, err := (Config{Levels: []string{"a"}}).levels(); err == nil {
		t.Fatal("expected error for a single level")
	}
}

// --- Run() ---

func TestRunProducesReport(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })
	t.Setenv("GITHUB_SHA", "abc123def")

	cfg, err := ReadConfig(writeFixture(t, sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	r, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.RunID == "" || r.GeneratedAt != "2026-03-01T12:00:00Z" || r.Generator.GitSHA != "abc123def" {
		t.Fatalf("unexpected header %+v", r)
	}
	if r.Dataset.Rows != 6 || r.Dataset.Format != "csv" || !strings.HasPrefix(r.Dataset.Digest, "sha256:") {
		t.Fatalf("unexpected dataset provenance %+v", r.Dataset)
	}
	if r.Options.Base != "A" || r.Options.Cutoff != parity.DefaultCutoff || r.Options.Levels != [2]string{"no", "yes"} {
		t.Fatalf("unexpected options %+v", r.Options)
	}
	if len(r.Results) != 4 || r.Results[1].Metric != "predictive_rate" {
		t.Fatalf("results must follow the configured order, got %d", len(r.Results))
	}
	pr := r.Results[1].Parity()
	if pr["A"] != 1 || pr["B"] != 0.5 {
		t.Fatalf("predictive rate parity = %v", pr)
	}
	roc, ok := r.Find("roc_auc")
	if !ok || roc.Charts.ROC == nil || roc.Charts.Distribution == nil {
		t.Fatal("expected roc_auc result with ROC and distribution charts")
	}
}

func TestRunDigestIsStableAcrossRuns(t *testing.T) {
	cfg, err := ReadConfig(writeFixture(t, sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	a, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if a.RunID == b.RunID {
		t.Fatal("run ids must be unique")
	}
	if a.ResultDigest != b.ResultDigest {
		t.Fatalf("result digests differ: %s vs %s", a.ResultDigest, b.ResultDigest)
	}
	d, err := ResultDigest(context.Background(), cfg)
	if err != nil || d != a.ResultDigest {
		t.Fatalf("ResultDigest = %s, %v; want %s", d, err, a.ResultDigest)
	}
}

func TestRunPropagatesEngineErrors(t *testing.T) {
	cfg, err := ReadConfig(writeFixture(t, sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Base = "Z"
	_, err = Run(context.Background(), cfg)
	var ib *parity.InvalidBaseGroupError
	if !errors.As(err, &ib) {
		t.Fatalf("expected InvalidBaseGroupError, got %v", err)
	}
}

func TestRunMissingDataset(t *testing.T) {
	cfg := Config{
		Dataset: dataset.Source{Path: filepath.Join(t.TempDir(), "missing.csv")},
		Columns: dataset.Columns{Outcome: "outcome", Group: "group", Prediction: "prediction"},
	}
	if _, err := Run(context.Background(), cfg); err == nil {
		t.Fatal("expected error for missing dataset")
	}
}

func TestReadGitSHADefaultsToLocal(t *testing.T) {
	t.Setenv("GITHUB_SHA", "")
	if got := readGitSHA(); got != "local" {
		t.Fatalf("expected local, got %s", got)
	}
}
