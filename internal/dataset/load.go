package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Source locates an observation table on disk. Format is inferred from the
// file extension when empty; Sheet only applies to workbooks.
type Source struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
	Sheet  string `yaml:"sheet"`
}

func (s Source) ResolvedFormat() (string, error) {
	if s.Format != "" {
		return strings.ToLower(s.Format), nil
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("cannot infer dataset format from %q", s.Path)
}

func Load(src Source) (*Table, error) {
	if src.Path == "" {
		return nil, fmt.Errorf("dataset path is required")
	}
	format, err := src.ResolvedFormat()
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf("open dataset %s: %w", src.Path, err)
		}
		defer f.Close()
		return LoadCSV(f)
	case FormatXLSX:
		return LoadXLSX(src.Path, src.Sheet)
	case FormatJSON, FormatYAML:
		raw, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("read dataset %s: %w", src.Path, err)
		}
		return LoadRecords(raw)
	}
	return nil, fmt.Errorf("unsupported dataset format %s", format)
}

func LoadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse csv: no header row")
	}
	return NewTable(records[0], records[1:])
}

func LoadXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}
	return NewTable(rows[0], rows[1:])
}

// LoadRecords reads a JSON or YAML list of flat objects. The header is the
// sorted union of all keys; absent keys become empty cells.
func LoadRecords(raw []byte) (*Table, error) {
	var records []map[string]any
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	keys := make(map[string]struct{})
	for _, rec := range records {
		for k := range rec {
			keys[k] = struct{}{}
		}
	}
	header := make([]string, 0, len(keys))
	for k := range keys {
		header = append(header, k)
	}
	sort.Strings(header)

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(header))
		for j, k := range header {
			if v, ok := rec[k]; ok && v != nil {
				row[j] = fmt.Sprint(v)
			}
		}
		rows[i] = row
	}
	return NewTable(header, rows)
}
