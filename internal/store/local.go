package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ogulcanaydogan/fairparity/pkg/types"
)

const DefaultDir = ".fairparity/reports"

// Save writes r as report_<run id>.json under dir and returns the path.
func Save(dir string, r types.Report) (string, error) {
	if r.RunID == "" {
		return "", fmt.Errorf("report has no run id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	path := filepath.Join(dir, "report_"+r.RunID+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func Load(path string) (types.Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Report{}, fmt.Errorf("read report %s: %w", path, err)
	}
	var r types.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return types.Report{}, fmt.Errorf("parse report %s: %w", path, err)
	}
	return r, nil
}

// List returns the report files in dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "report_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

func EnsureDefaultDir() (string, error) {
	if err := os.MkdirAll(DefaultDir, 0o755); err != nil {
		return "", fmt.Errorf("create local store: %w", err)
	}
	return DefaultDir, nil
}
