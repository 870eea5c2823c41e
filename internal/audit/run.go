package audit

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ogulcanaydogan/fairparity/internal/dataset"
	"github.com/ogulcanaydogan/fairparity/internal/hash"
	"github.com/ogulcanaydogan/fairparity/internal/logging"
	"github.com/ogulcanaydogan/fairparity/internal/parity"
	"github.com/ogulcanaydogan/fairparity/pkg/types"
)

var (
	Version = "0.1.0"
	now     = time.Now
)

// Run loads the configured dataset, computes every requested metric and
// packages the results as a report. When DeterminismCheck > 1 the
// computation is repeated and the result digests must agree.
func Run(ctx context.Context, cfg Config) (types.Report, error) {
	log := logging.New("audit")

	format, err := cfg.Dataset.ResolvedFormat()
	if err != nil {
		return types.Report{}, err
	}
	digest, err := hash.DigestFile(cfg.Dataset.Path)
	if err != nil {
		return types.Report{}, fmt.Errorf("digest dataset: %w", err)
	}
	metrics, err := cfg.metrics()
	if err != nil {
		return types.Report{}, err
	}

	results, rows, err := Compute(ctx, cfg, metrics)
	if err != nil {
		return types.Report{}, err
	}
	resultDigest, err := hash.Digest(results)
	if err != nil {
		return types.Report{}, fmt.Errorf("digest results: %w", err)
	}

	for i := 1; i < cfg.DeterminismCheck; i++ {
		again, _, err := Compute(ctx, cfg, metrics)
		if err != nil {
			return types.Report{}, err
		}
		next, err := hash.Digest(again)
		if err != nil {
			return types.Report{}, err
		}
		if next != resultDigest {
			return types.Report{}, fmt.Errorf("determinism check failed: %s != %s", resultDigest, next)
		}
	}

	levels, _ := cfg.levels()
	base := cfg.Base
	if len(results) > 0 {
		base = results[0].Base
	}
	report := types.Report{
		SchemaVersion: types.SchemaVersion,
		RunID:         uuid.NewString(),
		GeneratedAt:   now().UTC().Format(time.RFC3339),
		Generator: types.Generator{
			Name:    "fairparity",
			Version: Version,
			GitSHA:  readGitSHA(),
		},
		Dataset: types.Dataset{
			Path:   cfg.Dataset.Path,
			Format: format,
			Digest: digest,
			Rows:   rows,
		},
		Options: types.Options{
			Outcome:    cfg.Columns.Outcome,
			Group:      cfg.Columns.Group,
			Prediction: cfg.Columns.Prediction,
			Score:      cfg.Columns.Score,
			Levels:     [2]string{levels.Negative, levels.Positive},
			Cutoff:     cfg.cutoff(),
			Base:       base,
		},
		Results:      results,
		ResultDigest: resultDigest,
	}
	log.Info("audit complete", "run_id", report.RunID, "metrics", len(results), "rows", rows, "result_digest", resultDigest)
	return report, nil
}

// Compute loads the dataset and evaluates metrics without building a full
// report. It returns the wire results and the number of rows read.
func Compute(ctx context.Context, cfg Config, metrics []parity.Metric) ([]types.MetricResult, int, error) {
	in, rows, err := Input(cfg)
	if err != nil {
		return nil, 0, err
	}
	res, err := parity.ComputeAll(ctx, in, metrics)
	if err != nil {
		return nil, 0, err
	}
	out := make([]types.MetricResult, len(res))
	for i, r := range res {
		out[i] = r.Summary()
	}
	return out, rows, nil
}

// Input reads the dataset and maps it onto an engine input with the
// configured options applied.
func Input(cfg Config) (parity.Input, int, error) {
	levels, err := cfg.levels()
	if err != nil {
		return parity.Input{}, 0, err
	}
	table, err := dataset.Load(cfg.Dataset)
	if err != nil {
		return parity.Input{}, 0, err
	}
	in, err := table.Input(cfg.Columns)
	if err != nil {
		return parity.Input{}, 0, err
	}
	in.Levels = levels
	cutoff := cfg.cutoff()
	in.Cutoff = &cutoff
	in.Base = cfg.Base
	return in, table.Len(), nil
}

// ResultDigest recomputes the digest a report would carry for cfg.
func ResultDigest(ctx context.Context, cfg Config) (string, error) {
	metrics, err := cfg.metrics()
	if err != nil {
		return "", err
	}
	results, _, err := Compute(ctx, cfg, metrics)
	if err != nil {
		return "", err
	}
	return hash.Digest(results)
}

func readGitSHA() string {
	if v := os.Getenv("GITHUB_SHA"); v != "" {
		return v
	}
	return "local"
}
