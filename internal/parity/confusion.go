package parity

import "github.com/ogulcanaydogan/fairparity/pkg/types"

// ConfusionMatrix holds the binary outcome counts of one subgroup.
type ConfusionMatrix struct {
	TP int
	FP int
	TN int
	FN int
}

func (c ConfusionMatrix) Total() int { return c.TP + c.FP + c.TN + c.FN }

func (c ConfusionMatrix) Wire() types.Confusion {
	return types.Confusion{TP: c.TP, FP: c.FP, TN: c.TN, FN: c.FN}
}

func buildConfusion(predicted, actual []bool) ConfusionMatrix {
	var c ConfusionMatrix
	for i := range predicted {
		switch {
		case predicted[i] && actual[i]:
			c.TP++
		case predicted[i] && !actual[i]:
			c.FP++
		case !predicted[i] && !actual[i]:
			c.TN++
		default:
			c.FN++
		}
	}
	return c
}
