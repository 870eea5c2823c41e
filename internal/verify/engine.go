package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ogulcanaydogan/fairparity/internal/audit"
	"github.com/ogulcanaydogan/fairparity/internal/hash"
	"github.com/ogulcanaydogan/fairparity/pkg/schema"
	"github.com/ogulcanaydogan/fairparity/pkg/types"
)

// Options names the audit report to check and the config it was produced
// from. Without a config only the self-contained checks run.
type Options struct {
	ReportPath string
	ConfigPath string
}

// Run re-verifies a stored audit report: schema conformance, the integrity
// of its result digest, the dataset digest, and a full recomputation.
func Run(ctx context.Context, opts Options) Report {
	r := Report{Passed: true, ExitCode: ExitPass, ReportPath: opts.ReportPath}

	raw, err := os.ReadFile(opts.ReportPath)
	if err != nil {
		r.addFailure("report_read", ExitInput, err)
		return r
	}
	if errs, err := schema.ValidateJSON(schema.Report, raw); err != nil {
		r.addFailure("schema", ExitSchemaFail, err)
		return r
	} else if len(errs) > 0 {
		r.addFailure("schema", ExitSchemaFail, fmt.Errorf("report schema invalid: %s", strings.Join(errs, "; ")))
		return r
	}
	var report types.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		r.addFailure("report_decode", ExitInput, err)
		return r
	}
	r.RunID = report.RunID
	r.ResultDigest = report.ResultDigest
	r.pass("schema")

	if err := VerifyResultDigest(report); err != nil {
		r.addFailure("result_digest", ExitDigestMismatch, err)
		return r
	}
	r.pass("result_digest")

	if opts.ConfigPath == "" {
		return r
	}
	cfg, err := audit.ReadConfig(opts.ConfigPath)
	if err != nil {
		var se *audit.SchemaError
		if errors.As(err, &se) {
			r.addFailure("config", ExitSchemaFail, err)
		} else {
			r.addFailure("config", ExitInput, err)
		}
		return r
	}

	if err := VerifyDataset(report, cfg); err != nil {
		r.addFailure("dataset_digest", ExitDigestMismatch, err)
		return r
	}
	r.pass("dataset_digest")

	if err := VerifyRecompute(ctx, report, cfg); err != nil {
		r.addFailure("recompute", ExitDigestMismatch, err)
		return r
	}
	r.pass("recompute")
	return r
}

// VerifyResultDigest checks that the stored results hash to the stored digest.
func VerifyResultDigest(report types.Report) error {
	got, err := hash.Digest(report.Results)
	if err != nil {
		return err
	}
	if got != report.ResultDigest {
		return fmt.Errorf("results digest %s does not match recorded %s", got, report.ResultDigest)
	}
	return nil
}

func VerifyDataset(report types.Report, cfg audit.Config) error {
	got, err := hash.DigestFile(cfg.Dataset.Path)
	if err != nil {
		return err
	}
	if got != report.Dataset.Digest {
		return fmt.Errorf("dataset %s digest %s does not match recorded %s", cfg.Dataset.Path, got, report.Dataset.Digest)
	}
	return nil
}

// VerifyRecompute runs the metrics recorded in the report again and compares
// result digests.
func VerifyRecompute(ctx context.Context, report types.Report, cfg audit.Config) error {
	cfg.Metrics = make([]string, 0, len(report.Results))
	for _, res := range report.Results {
		cfg.Metrics = append(cfg.Metrics, res.Metric)
	}
	got, err := audit.ResultDigest(ctx, cfg)
	if err != nil {
		return err
	}
	if got != report.ResultDigest {
		return fmt.Errorf("recomputed digest %s does not match recorded %s", got, report.ResultDigest)
	}
	return nil
}

func (r *Report) pass(check string) {
	r.Checks = append(r.Checks, CheckResult{Check: check, Passed: true, Message: "ok"})
}

func (r *Report) addFailure(check string, exit int, err error) {
	r.Passed = false
	if r.ExitCode == ExitPass || exit > r.ExitCode {
		r.ExitCode = exit
	}
	msg := err.Error()
	r.Checks = append(r.Checks, CheckResult{Check: check, Passed: false, Message: msg})
	r.Violations = append(r.Violations, fmt.Sprintf("%s: %s", check, msg))
}
