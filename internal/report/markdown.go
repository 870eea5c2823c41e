package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/ogulcanaydogan/fairparity/internal/verify"
	"github.com/ogulcanaydogan/fairparity/pkg/types"
)

func BuildMarkdown(r types.Report) string {
	var b strings.Builder
	b.WriteString("# Fairness Parity Report\n\n")
	b.WriteString(fmt.Sprintf("- Run ID: `%s`\n", r.RunID))
	b.WriteString(fmt.Sprintf("- Generated: `%s` by %s %s (`%s`)\n", r.GeneratedAt, r.Generator.Name, r.Generator.Version, r.Generator.GitSHA))
	b.WriteString(fmt.Sprintf("- Dataset: `%s` (%s, %d rows)\n", r.Dataset.Path, r.Dataset.Format, r.Dataset.Rows))
	b.WriteString(fmt.Sprintf("- Dataset Digest: `%s`\n", r.Dataset.Digest))
	b.WriteString(fmt.Sprintf("- Result Digest: `%s`\n\n", r.ResultDigest))

	o := r.Options
	b.WriteString("## Options\n\n")
	b.WriteString(fmt.Sprintf("- Outcome column: `%s` (levels `%s` / `%s`)\n", o.Outcome, o.Levels[0], o.Levels[1]))
	b.WriteString(fmt.Sprintf("- Group column: `%s`, base group `%s`\n", o.Group, o.Base))
	if o.Prediction != "" {
		b.WriteString(fmt.Sprintf("- Prediction column: `%s`\n", o.Prediction))
	}
	if o.Score != "" {
		b.WriteString(fmt.Sprintf("- Score column: `%s`, cutoff `%g`\n", o.Score, o.Cutoff))
	}

	if len(r.Results) > 0 {
		b.WriteString("\n## Summary\n\n")
		b.WriteString(SummaryTable(r.Results, Markdown))
		b.WriteString("\n")
	}
	for _, res := range r.Results {
		b.WriteString(fmt.Sprintf("\n## %s\n\n", res.Label))
		b.WriteString(ResultTable(res, Markdown))
		b.WriteString("\n")
		if roc := res.Charts.ROC; roc != nil {
			b.WriteString("\n| Group | AUC |\n|---|---:|\n")
			for _, s := range roc.Series {
				b.WriteString(fmt.Sprintf("| %s | %s |\n", s.Group, FormatFloat(s.AUC)))
			}
		}
	}
	return b.String()
}

func WriteMarkdown(path string, r types.Report) error {
	return os.WriteFile(path, []byte(BuildMarkdown(r)), 0o644)
}

func BuildVerifyMarkdown(r verify.Report) string {
	status := "PASS"
	if !r.Passed {
		status = "FAIL"
	}
	var b strings.Builder
	b.WriteString("# Fairness Report Verification\n\n")
	b.WriteString(fmt.Sprintf("- Status: **%s**\n", status))
	b.WriteString(fmt.Sprintf("- Exit Code: `%d`\n", r.ExitCode))
	b.WriteString(fmt.Sprintf("- Report: `%s`\n", r.ReportPath))
	if r.RunID != "" {
		b.WriteString(fmt.Sprintf("- Run ID: `%s`\n", r.RunID))
	}
	b.WriteString("\n## Checks\n\n")
	b.WriteString("| Check | Passed | Message |\n")
	b.WriteString("|---|---:|---|\n")
	for _, c := range r.Checks {
		b.WriteString(fmt.Sprintf("| %s | %t | %s |\n", c.Check, c.Passed, strings.ReplaceAll(c.Message, "|", "\\|")))
	}
	if len(r.Violations) > 0 {
		b.WriteString("\n## Violations\n\n")
		for _, v := range r.Violations {
			b.WriteString("- " + v + "\n")
		}
	}
	return b.String()
}

func WriteVerifyMarkdown(path string, r verify.Report) error {
	return os.WriteFile(path, []byte(BuildVerifyMarkdown(r)), 0o644)
}
