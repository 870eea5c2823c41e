package types

const SchemaVersion = "1.0.0"

type Report struct {
	SchemaVersion string         `json:"schema_version"`
	RunID         string         `json:"run_id"`
	GeneratedAt   string         `json:"generated_at"`
	Generator     Generator      `json:"generator"`
	Dataset       Dataset        `json:"dataset"`
	Options       Options        `json:"options"`
	Results       []MetricResult `json:"results"`
	ResultDigest  string         `json:"result_digest"`
}

type Generator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	GitSHA  string `json:"git_sha"`
}

type Dataset struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Digest string `json:"digest"`
	Rows   int    `json:"rows"`
}

type Options struct {
	Outcome    string    `json:"outcome_column"`
	Group      string    `json:"group_column"`
	Prediction string    `json:"prediction_column,omitempty"`
	Score      string    `json:"score_column,omitempty"`
	Levels     [2]string `json:"levels"`
	Cutoff     float64   `json:"cutoff"`
	Base       string    `json:"base"`
}

type Confusion struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	TN int `json:"tn"`
	FN int `json:"fn"`
}

type GroupMetric struct {
	Group     string    `json:"group"`
	Size      int       `json:"size"`
	Confusion Confusion `json:"confusion"`
	Raw       Float     `json:"raw"`
	Parity    Float     `json:"parity"`
}

type MetricResult struct {
	Metric string        `json:"metric"`
	Label  string        `json:"label"`
	Base   string        `json:"base"`
	Cutoff float64       `json:"cutoff"`
	Groups []GroupMetric `json:"groups"`
	Charts Charts        `json:"charts"`
}

// Find returns the result for metric, or false.
func (r Report) Find(metric string) (MetricResult, bool) {
	for _, res := range r.Results {
		if res.Metric == metric {
			return res, true
		}
	}
	return MetricResult{}, false
}

func (m MetricResult) Parity() map[string]Float {
	out := make(map[string]Float, len(m.Groups))
	for _, g := range m.Groups {
		out[g.Group] = g.Parity
	}
	return out
}
