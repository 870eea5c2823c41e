package verify

const (
	ExitPass           = 0
	ExitInput          = 10
	ExitDigestMismatch = 12
	ExitGateFail       = 13
	ExitSchemaFail     = 14
)

type CheckResult struct {
	Check   string `json:"check"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

type Report struct {
	Passed       bool          `json:"passed"`
	ExitCode     int           `json:"exit_code"`
	ReportPath   string        `json:"report_path"`
	RunID        string        `json:"run_id,omitempty"`
	ResultDigest string        `json:"result_digest,omitempty"`
	Checks       []CheckResult `json:"checks"`
	Violations   []string      `json:"violations"`
}
