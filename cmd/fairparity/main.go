package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/fairparity/internal/audit"
	"github.com/ogulcanaydogan/fairparity/internal/dataset"
	"github.com/ogulcanaydogan/fairparity/internal/gate"
	"github.com/ogulcanaydogan/fairparity/internal/logging"
	"github.com/ogulcanaydogan/fairparity/internal/parity"
	"github.com/ogulcanaydogan/fairparity/internal/report"
	"github.com/ogulcanaydogan/fairparity/internal/server"
	"github.com/ogulcanaydogan/fairparity/internal/store"
	"github.com/ogulcanaydogan/fairparity/internal/verify"
	"github.com/ogulcanaydogan/fairparity/pkg/types"
)

type cliError struct {
	code int
	err  error
}

func (e cliError) Error() string { return e.err.Error() }

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		var ce cliError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.err)
			os.Exit(ce.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var logLevel, logFormat string
	root := &cobra.Command{
		Use:           "fairparity",
		Short:         "Group fairness parity metrics for binary classifiers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logging.Init(level, logFormat)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text|json)")

	root.AddCommand(newInitCommand())
	root.AddCommand(newMetricsCommand())
	root.AddCommand(newComputeCommand())
	root.AddCommand(newAuditCommand())
	root.AddCommand(newGateCommand())
	root.AddCommand(newVerifyCommand())
	root.AddCommand(newReportCommand())
	root.AddCommand(newChartCommand())
	root.AddCommand(newServeCommand())
	return root
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter audit config, gate policy and local report store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := store.EnsureDefaultDir(); err != nil {
				return err
			}
			if !fileExists("fairparity.yaml") {
				if err := os.WriteFile("fairparity.yaml", []byte(defaultConfigYAML), 0o644); err != nil {
					return err
				}
			}
			if !fileExists("policy/fairness-gates.yaml") {
				if err := os.MkdirAll("policy", 0o755); err != nil {
					return err
				}
				if err := os.WriteFile("policy/fairness-gates.yaml", []byte(defaultPolicyYAML), 0o644); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "initialized fairparity config, gate policy, and report store")
			return nil
		},
	}
}

func newMetricsCommand() *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "List the supported parity metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := table.NewWriter()
			w.AppendHeader(table.Row{"Metric", "Label", "Aliases", "Formula"})
			for _, d := range parity.Catalog() {
				w.AppendRow(table.Row{d.Metric, d.Label, strings.Join(d.Aliases, ", "), d.Formula})
			}
			if markdown {
				fmt.Fprintln(cmd.OutOrStdout(), w.RenderMarkdown())
				return nil
			}
			w.SetStyle(table.StyleLight)
			fmt.Fprintln(cmd.OutOrStdout(), w.Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&markdown, "md", false, "render as a markdown table")
	return cmd
}

func newComputeCommand() *cobra.Command {
	var (
		src     dataset.Source
		cols    dataset.Columns
		levels  []string
		cutoff  float64
		base    string
		metric  string
		format  string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute one parity metric for a dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if src.Path == "" || metric == "" {
				return cliError{code: verify.ExitInput, err: fmt.Errorf("--data and --metric are required")}
			}
			m, err := parity.ParseMetric(metric)
			if err != nil {
				return cliError{code: verify.ExitInput, err: err}
			}
			cfg := audit.Config{Dataset: src, Columns: cols, Levels: levels, Cutoff: &cutoff, Base: base}
			in, _, err := audit.Input(cfg)
			if err != nil {
				return cliError{code: verify.ExitInput, err: err}
			}
			res, err := parity.Compute(in, m)
			if err != nil {
				return cliError{code: verify.ExitInput, err: err}
			}
			summary := res.Summary()

			var out string
			switch format {
			case "json":
				raw, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return err
				}
				out = string(raw)
			case "table":
				out = report.ResultTable(summary, report.ASCII)
			case "md":
				out = report.ResultTable(summary, report.Markdown)
			default:
				return fmt.Errorf("unsupported format %s", format)
			}
			return emit(cmd.OutOrStdout(), outPath, out)
		},
	}
	cmd.Flags().StringVar(&src.Path, "data", "", "dataset path (csv|xlsx|json|yaml)")
	cmd.Flags().StringVar(&src.Format, "data-format", "", "dataset format, inferred from the extension when empty")
	cmd.Flags().StringVar(&src.Sheet, "sheet", "", "worksheet name for xlsx datasets")
	cmd.Flags().StringVar(&cols.Outcome, "outcome", "outcome", "outcome column")
	cmd.Flags().StringVar(&cols.Group, "group", "group", "sensitive group column")
	cmd.Flags().StringVar(&cols.Prediction, "prediction", "", "predicted label column")
	cmd.Flags().StringVar(&cols.Score, "score", "", "predicted probability column")
	cmd.Flags().Float64SliceVar(&cols.GroupBreaks, "group-breaks", nil, "cut a numeric group column at these breaks")
	cmd.Flags().StringSliceVar(&levels, "levels", nil, "negative and positive outcome labels (default no,yes)")
	cmd.Flags().Float64Var(&cutoff, "cutoff", parity.DefaultCutoff, "score cutoff; score >= cutoff is positive")
	cmd.Flags().StringVar(&base, "base", "", "base group (default: first group in sorted order)")
	cmd.Flags().StringVar(&metric, "metric", "", "metric tag or alias")
	cmd.Flags().StringVar(&format, "format", "table", "output format (json|table|md)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}

func newAuditCommand() *cobra.Command {
	var cfgPath, outDir string
	var determinismCheck int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run every configured metric and store a fairness report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := audit.ReadConfig(cfgPath)
			if err != nil {
				var se *audit.SchemaError
				if errors.As(err, &se) {
					return cliError{code: verify.ExitSchemaFail, err: err}
				}
				return cliError{code: verify.ExitInput, err: err}
			}
			if cmd.Flags().Changed("determinism-check") {
				cfg.DeterminismCheck = determinismCheck
			}
			r, err := audit.Run(cmd.Context(), cfg)
			if err != nil {
				return cliError{code: verify.ExitInput, err: err}
			}
			path, err := store.Save(outDir, r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "fairparity.yaml", "audit config file")
	cmd.Flags().StringVar(&outDir, "out", store.DefaultDir, "report output directory")
	cmd.Flags().IntVar(&determinismCheck, "determinism-check", 1, "compute the results this many times and compare digests")
	return cmd
}

func newGateCommand() *cobra.Command {
	var policyPath, reportPath string
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Check a fairness report against gate bounds and return non-zero on violations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if reportPath == "" {
				return cliError{code: verify.ExitInput, err: fmt.Errorf("--report is required")}
			}
			policy := gate.DefaultPolicy()
			if policyPath != "" {
				p, err := gate.LoadPolicy(policyPath)
				if err != nil {
					var se *gate.SchemaError
					if errors.As(err, &se) {
						return cliError{code: verify.ExitSchemaFail, err: err}
					}
					return cliError{code: verify.ExitInput, err: err}
				}
				policy = p
			}
			r, err := store.Load(reportPath)
			if err != nil {
				return cliError{code: verify.ExitInput, err: err}
			}
			violations := gate.Evaluate(policy, r)
			if len(violations) > 0 {
				for _, v := range violations {
					fmt.Fprintln(cmd.OutOrStdout(), v)
				}
				return cliError{code: verify.ExitGateFail, err: fmt.Errorf("fairness gate failed")}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "fairness gate passed")
			return nil
		},
	}
	cmd.Flags().StringVar(&policyPath, "policy", "", "gate policy YAML path (default: four-fifths rule on the rate metrics)")
	cmd.Flags().StringVar(&reportPath, "report", "", "fairness report JSON path")
	return cmd
}

func newVerifyCommand() *cobra.Command {
	var reportPath, cfgPath, format, outPath string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-verify a stored fairness report against its dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if reportPath == "" {
				return cliError{code: verify.ExitInput, err: fmt.Errorf("--report is required")}
			}
			r := verify.Run(cmd.Context(), verify.Options{ReportPath: reportPath, ConfigPath: cfgPath})
			switch format {
			case "json":
				if outPath == "" {
					outPath = "verify.json"
				}
				if err := report.WriteJSON(outPath, r); err != nil {
					return err
				}
			case "md":
				if outPath == "" {
					outPath = "verify.md"
				}
				if err := report.WriteVerifyMarkdown(outPath, r); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported format %s", format)
			}
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			if !r.Passed {
				return cliError{code: r.ExitCode, err: fmt.Errorf("verification failed: %s", strings.Join(r.Violations, "; "))}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&reportPath, "report", "", "fairness report JSON path")
	cmd.Flags().StringVar(&cfgPath, "config", "", "audit config the report was produced from")
	cmd.Flags().StringVar(&format, "format", "json", "output format (json|md)")
	cmd.Flags().StringVar(&outPath, "out", "", "output report path")
	return cmd
}

func newReportCommand() *cobra.Command {
	var inPath, format, outPath, dir string
	var list bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a fairness report as markdown or a terminal table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if list {
				return listReports(cmd.OutOrStdout(), dir)
			}
			if inPath == "" {
				return cliError{code: verify.ExitInput, err: fmt.Errorf("--in is required")}
			}
			r, err := store.Load(inPath)
			if err != nil {
				return cliError{code: verify.ExitInput, err: err}
			}
			var out string
			switch format {
			case "md":
				out = report.BuildMarkdown(r)
			case "table":
				parts := []string{report.SummaryTable(r.Results, report.ASCII)}
				for _, res := range r.Results {
					parts = append(parts, report.ResultTable(res, report.ASCII))
				}
				out = strings.Join(parts, "\n\n")
			default:
				return fmt.Errorf("unsupported format %s", format)
			}
			return emit(cmd.OutOrStdout(), outPath, out)
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "fairness report JSON input")
	cmd.Flags().StringVar(&format, "format", "md", "output format (md|table)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&list, "list", false, "list the stored reports instead of rendering one")
	cmd.Flags().StringVar(&dir, "dir", store.DefaultDir, "report store directory for --list")
	return cmd
}

func listReports(w io.Writer, dir string) error {
	paths, err := store.List(dir)
	if err != nil {
		return cliError{code: verify.ExitInput, err: err}
	}
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Report", "Run ID", "Generated", "Rows", "Metrics"})
	for _, p := range paths {
		r, err := store.Load(p)
		if err != nil {
			return cliError{code: verify.ExitInput, err: err}
		}
		t.AppendRow(table.Row{filepath.Base(p), r.RunID, r.GeneratedAt, r.Dataset.Rows, len(r.Results)})
	}
	_, err = fmt.Fprintln(w, t.Render())
	return err
}

func newChartCommand() *cobra.Command {
	var inPath, metric, kind, outPath string
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Export a chart descriptor from a fairness report as a Vega-Lite spec",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inPath == "" || metric == "" {
				return cliError{code: verify.ExitInput, err: fmt.Errorf("--in and --metric are required")}
			}
			m, err := parity.ParseMetric(metric)
			if err != nil {
				return cliError{code: verify.ExitInput, err: err}
			}
			r, err := store.Load(inPath)
			if err != nil {
				return cliError{code: verify.ExitInput, err: err}
			}
			res, ok := r.Find(string(m))
			if !ok {
				return cliError{code: verify.ExitInput, err: fmt.Errorf("report has no %s result", m)}
			}
			spec, err := report.VegaLite(res, kind)
			if err != nil {
				return cliError{code: verify.ExitInput, err: err}
			}
			raw, err := json.MarshalIndent(spec, "", "  ")
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), outPath, string(raw))
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "fairness report JSON input")
	cmd.Flags().StringVar(&metric, "metric", "", "metric tag or alias")
	cmd.Flags().StringVar(&kind, "kind", types.ChartBar, "chart kind (bar|distribution|roc)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}

func newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the parity HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := server.LoadConfig()
			if err != nil {
				return cliError{code: verify.ExitInput, err: err}
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(cfg).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (overrides FAIRPARITY_ADDR)")
	return cmd
}

// emit writes out to path, or to w when path is empty.
func emit(w io.Writer, path, out string) error {
	if path == "" {
		_, err := fmt.Fprintln(w, out)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, []byte(out+"\n"), 0o644); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, path)
	return err
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

const defaultConfigYAML = `dataset:
  path: data/predictions.csv
columns:
  outcome: outcome
  group: group
  prediction: prediction
  score: score
levels: ["no", "yes"]
cutoff: 0.5
metrics:
  - accuracy
  - proportional
  - equalized_odds
  - predictive_rate
  - false_positive_rate
  - roc_auc
determinism_check: 2
`

const defaultPolicyYAML = `version: 1
gates:
  - id: G001
    metric: proportional
    message: "Selection rate outside the four-fifths band."
  - id: G002
    metric: equalized_odds
    min: 0.8
    max: 1.25
    message: "True positive rates differ across groups."
  - id: G003
    metric: predictive_rate
    min: 0.8
    max: 1.25
    allow_undefined: true
    message: "Precision differs across groups."
  - id: G004
    metric: roc_auc
    min: 0.9
    message: "Ranking quality is lower for some groups."
`
