package types

const (
	ChartBar          = "bar"
	ChartDistribution = "distribution"
	ChartROC          = "roc"

	OrientationHorizontal = "horizontal"
	OrientationVertical   = "vertical"
)

// BarChart describes a parity comparison. Categories[0] is the base group.
type BarChart struct {
	Kind        string   `json:"kind"`
	Title       string   `json:"title"`
	Label       string   `json:"label"`
	Orientation string   `json:"orientation"`
	Reference   string   `json:"reference"`
	Categories  []string `json:"categories"`
	Values      []Float  `json:"values"`
}

// DistributionChart describes per-group score densities over shared bin edges.
type DistributionChart struct {
	Kind   string          `json:"kind"`
	Title  string          `json:"title"`
	Edges  []float64       `json:"edges"`
	Series []DensitySeries `json:"series"`
}

type DensitySeries struct {
	Group   string  `json:"group"`
	N       int     `json:"n"`
	Mean    Float   `json:"mean"`
	Density []Float `json:"density"`
}

type ROCChart struct {
	Kind   string      `json:"kind"`
	Title  string      `json:"title"`
	Series []ROCSeries `json:"series"`
}

type ROCSeries struct {
	Group string    `json:"group"`
	AUC   Float     `json:"auc"`
	FPR   []float64 `json:"fpr"`
	TPR   []float64 `json:"tpr"`
}

type Charts struct {
	Bar          BarChart           `json:"bar"`
	Distribution *DistributionChart `json:"distribution,omitempty"`
	ROC          *ROCChart          `json:"roc,omitempty"`
}
