package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `outcome,prediction,score,group,age
yes,yes,0.9,A,25
no,no,0.2,A,41
yes,no,0.4,A,67
no,no,0.1,B,30
yes,yes,0.8,B,59
no,yes,0.7,B,100
`

func TestLoadCSV(t *testing.T) {
	tbl, err := LoadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 6 {
		t.Fatalf("rows = %d, want 6", tbl.Len())
	}
	groups, err := tbl.Column("group")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"A", "A", "A", "B", "B", "B"}, groups); diff != "" {
		t.Fatalf("group column (-want +got):\n%s", diff)
	}
	scores, err := tbl.FloatColumn("score")
	if err != nil {
		t.Fatal(err)
	}
	if scores[4] != 0.8 {
		t.Fatalf("score[4] = %v", scores[4])
	}
}

func TestColumnErrors(t *testing.T) {
	tbl, err := LoadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.Column("missing"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if _, err := tbl.FloatColumn("group"); err == nil {
		t.Fatal("expected parse error for non-numeric column")
	}
}

func TestNewTableRejectsDuplicateColumns(t *testing.T) {
	if _, err := NewTable([]string{"a", "a"}, nil); err == nil {
		t.Fatal("expected duplicate column error")
	}
	if _, err := NewTable([]string{"a", " "}, nil); err == nil {
		t.Fatal("expected empty column error")
	}
	if _, err := NewTable([]string{"a"}, [][]string{{"1", "2"}}); err == nil {
		t.Fatal("expected overlong row error")
	}
}

func TestLoadInfersFormat(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(csvPath, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := Load(Source{Path: csvPath})
	if err != nil {
		t.Fatal(err)
	}
	if !tbl.Has("age") {
		t.Fatal("expected age column")
	}
	if _, err := Load(Source{Path: filepath.Join(dir, "data.parquet")}); err == nil {
		t.Fatal("expected error for unknown extension")
	}
	if _, err := Load(Source{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoadRecordsJSONAndYAML(t *testing.T) {
	jsonRaw := []byte(`[{"outcome":"yes","group":"A","score":0.75},{"outcome":"no","group":"B"}]`)
	tbl, err := LoadRecords(jsonRaw)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"group", "outcome", "score"}, tbl.Header); diff != "" {
		t.Fatalf("header (-want +got):\n%s", diff)
	}
	scores, err := tbl.Column("score")
	if err != nil {
		t.Fatal(err)
	}
	if scores[0] != "0.75" || scores[1] != "" {
		t.Fatalf("scores = %q", scores)
	}

	yamlRaw := []byte("- outcome: yes\n  group: A\n- outcome: no\n  group: B\n")
	tbl, err = LoadRecords(yamlRaw)
	if err != nil {
		t.Fatal(err)
	}
	outcomes, _ := tbl.Column("outcome")
	if diff := cmp.Diff([]string{"yes", "no"}, outcomes); diff != "" {
		t.Fatalf("outcome (-want +got):\n%s", diff)
	}
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := "observations"
	f.SetSheetName(f.GetSheetName(0), sheet)
	rows := [][]any{
		{"outcome", "prediction", "group"},
		{"yes", "yes", "A"},
		{"no", "yes", "B"},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "obs.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	tbl, err := Load(Source{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d", tbl.Len())
	}
	preds, _ := tbl.Column("prediction")
	if diff := cmp.Diff([]string{"yes", "yes"}, preds); diff != "" {
		t.Fatalf("prediction (-want +got):\n%s", diff)
	}
	if _, err := LoadXLSX(path, "nope"); err == nil {
		t.Fatal("expected error for unknown sheet")
	}
}

func TestTableInput(t *testing.T) {
	tbl, err := LoadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	in, err := tbl.Input(Columns{Outcome: "outcome", Group: "group", Prediction: "prediction", Score: "score"})
	if err != nil {
		t.Fatal(err)
	}
	if len(in.Outcome) != 6 || len(in.Predictions) != 6 || len(in.Scores) != 6 || len(in.Groups) != 6 {
		t.Fatalf("unexpected input sizes %+v", in)
	}
	if _, err := tbl.Input(Columns{Outcome: "outcome"}); err == nil {
		t.Fatal("expected error when group column is missing")
	}
}

func TestTableInputWithGroupBreaks(t *testing.T) {
	tbl, err := LoadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	in, err := tbl.Input(Columns{Outcome: "outcome", Group: "age", Prediction: "prediction", GroupBreaks: []float64{0, 40, 60, 100}})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"[0,40)", "[40,60)", "[60,100]", "[0,40)", "[40,60)", "[60,100]"}
	if diff := cmp.Diff(want, in.Groups); diff != "" {
		t.Fatalf("groups (-want +got):\n%s", diff)
	}
}

func TestBucketize(t *testing.T) {
	got, err := Bucketize([]float64{0, 15, 30, 59.5, 60, 100}, []float64{0, 30, 60, 100})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"[0,30)", "[0,30)", "[30,60)", "[30,60)", "[60,100]", "[60,100]"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}
	if _, err := Bucketize([]float64{101}, []float64{0, 100}); err == nil {
		t.Fatal("expected out of range error")
	}
	if _, err := Bucketize([]float64{1}, []float64{10, 0}); err == nil {
		t.Fatal("expected unsorted breaks error")
	}
	if _, err := Bucketize([]float64{1}, []float64{1}); err == nil {
		t.Fatal("expected too few breaks error")
	}
}

func TestBucketizeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		breaks []float64
		want   string
	}{
		{name: "nan value", values: []float64{math.NaN()}, breaks: []float64{0, 30, 60}, want: "not a number"},
		{name: "positive infinity", values: []float64{math.Inf(1)}, breaks: []float64{0, 30, 60}, want: "outside"},
		{name: "negative infinity", values: []float64{math.Inf(-1)}, breaks: []float64{0, 30, 60}, want: "outside"},
		{name: "repeated break", values: []float64{10}, breaks: []float64{0, 10, 10, 20}, want: "strictly ascending"},
		{name: "nan break", values: []float64{10}, breaks: []float64{0, math.NaN(), 20}, want: "strictly ascending"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bucketize(tt.values, tt.breaks)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestTableInputRejectsNaNGroupWithBreaks(t *testing.T) {
	tbl, err := LoadCSV(strings.NewReader("outcome,age,prediction\nyes,NaN,yes\nno,40,no\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.Input(Columns{Outcome: "outcome", Group: "age", Prediction: "prediction", GroupBreaks: []float64{0, 50, 100}}); err == nil {
		t.Fatal("expected error for NaN group value")
	}
}
