package parity

import (
	"math"
	"strings"
)

type Metric string

const (
	Demographic             Metric = "demographic"
	Proportional            Metric = "proportional"
	EqualizedOdds           Metric = "equalized_odds"
	PredictiveRate          Metric = "predictive_rate"
	Accuracy                Metric = "accuracy"
	FalseNegativeRate       Metric = "false_negative_rate"
	FalsePositiveRate       Metric = "false_positive_rate"
	NegativePredictiveValue Metric = "negative_predictive_value"
	Specificity             Metric = "specificity"
	Matthews                Metric = "matthews"
	ROCAUC                  Metric = "roc_auc"
)

// Definition is one catalog entry. Extract is nil for metrics that are not a
// function of the confusion matrix alone.
type Definition struct {
	Metric  Metric
	Label   string
	Aliases []string
	Formula string
	Extract func(ConfusionMatrix) float64
}

var catalog = []Definition{
	{Metric: Demographic, Label: "Demographic Parity", Aliases: []string{"dem"}, Formula: "TP + FP",
		Extract: func(c ConfusionMatrix) float64 { return float64(c.TP + c.FP) }},
	{Metric: Proportional, Label: "Proportional Parity", Aliases: []string{"prop"}, Formula: "(TP + FP) / N",
		Extract: func(c ConfusionMatrix) float64 { return ratio(c.TP+c.FP, c.Total()) }},
	{Metric: EqualizedOdds, Label: "Equalized Odds", Aliases: []string{"eq_odds", "sensitivity"}, Formula: "TP / (TP + FN)",
		Extract: func(c ConfusionMatrix) float64 { return ratio(c.TP, c.TP+c.FN) }},
	{Metric: PredictiveRate, Label: "Predictive Rate Parity", Aliases: []string{"pred_rate", "precision"}, Formula: "TP / (TP + FP)",
		Extract: func(c ConfusionMatrix) float64 { return ratio(c.TP, c.TP+c.FP) }},
	{Metric: Accuracy, Label: "Accuracy Parity", Aliases: []string{"acc"}, Formula: "(TP + TN) / N",
		Extract: func(c ConfusionMatrix) float64 { return ratio(c.TP+c.TN, c.Total()) }},
	{Metric: FalseNegativeRate, Label: "FNR Parity", Aliases: []string{"fnr"}, Formula: "FN / (TP + FN)",
		Extract: func(c ConfusionMatrix) float64 { return ratio(c.FN, c.TP+c.FN) }},
	{Metric: FalsePositiveRate, Label: "FPR Parity", Aliases: []string{"fpr"}, Formula: "FP / (TN + FP)",
		Extract: func(c ConfusionMatrix) float64 { return ratio(c.FP, c.TN+c.FP) }},
	{Metric: NegativePredictiveValue, Label: "NPV Parity", Aliases: []string{"npv"}, Formula: "TN / (TN + FN)",
		Extract: func(c ConfusionMatrix) float64 { return ratio(c.TN, c.TN+c.FN) }},
	{Metric: Specificity, Label: "Specificity Parity", Aliases: []string{"spec"}, Formula: "TN / (TN + FP)",
		Extract: func(c ConfusionMatrix) float64 { return ratio(c.TN, c.TN+c.FP) }},
	{Metric: Matthews, Label: "MCC Parity", Aliases: []string{"mcc"}, Formula: "(TP*TN - FP*FN) / sqrt((TP+FP)(TP+FN)(TN+FP)(TN+FN))",
		Extract: matthews},
	{Metric: ROCAUC, Label: "ROC AUC Parity", Aliases: []string{"roc", "auc"}, Formula: "area under the ROC curve"},
}

// Catalog returns every supported metric in a fixed order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(m Metric) (Definition, bool) {
	for _, d := range catalog {
		if d.Metric == m {
			return d, true
		}
	}
	return Definition{}, false
}

// ParseMetric resolves a metric tag or alias, case-insensitively.
func ParseMetric(s string) (Metric, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	for _, d := range catalog {
		if string(d.Metric) == key {
			return d.Metric, nil
		}
		for _, a := range d.Aliases {
			if a == key {
				return d.Metric, nil
			}
		}
	}
	return "", &UnknownMetricError{Name: s}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return math.NaN()
	}
	return float64(num) / float64(den)
}

func matthews(c ConfusionMatrix) float64 {
	tp, fp, tn, fn := float64(c.TP), float64(c.FP), float64(c.TN), float64(c.FN)
	den := math.Sqrt((tp + fp) * (tp + fn) * (tn + fp) * (tn + fn))
	if den == 0 {
		return math.NaN()
	}
	return (tp*tn - fp*fn) / den
}
