package parity

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// rocCurve sweeps every distinct score threshold of one group and integrates
// the resulting (FPR, TPR) polyline with the trapezoid rule. Tied scores form a
// diagonal segment, so the area equals the Mann-Whitney U statistic divided by
// positives*negatives. A group without both classes has no curve.
func rocCurve(scores []float64, actual []bool) (fpr, tpr []float64, auc float64) {
	pos, neg := 0, 0
	for _, a := range actual {
		if a {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return nil, nil, math.NaN()
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return scores[order[i]] < scores[order[j]] })
	y := make([]float64, len(order))
	classes := make([]bool, len(order))
	for i, idx := range order {
		y[i] = scores[idx]
		classes[i] = actual[idx]
	}

	tpr, fpr, _ = stat.ROC(nil, y, classes, nil)
	return fpr, tpr, integrate.Trapezoidal(fpr, tpr)
}
