package manifest

// ImportReport summarizes one import run. It is written next to other reports
// so a run can be audited without the database.
type ImportReport struct {
	GeneratedAt string       `json:"generated_at" yaml:"generated_at"`
	RunID       int64        `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Source      string       `json:"source" yaml:"source"`
	Backend     string       `json:"backend" yaml:"backend"`
	Mode        string       `json:"mode" yaml:"mode"`
	IncludeRead bool         `json:"include_read" yaml:"include_read"`
	Total       int          `json:"total" yaml:"total"`
	Added       int          `json:"added" yaml:"added"`
	Failed      int          `json:"failed" yaml:"failed"`
	Completed   bool         `json:"completed" yaml:"completed"` // false when the run was abandoned
	Results     []ItemReport `json:"results" yaml:"results"`
}

// ItemReport is the outcome of one record, in processing order.
type ItemReport struct {
	Index        int    `json:"index" yaml:"index"`
	URL          string `json:"url" yaml:"url"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	Section      string `json:"section" yaml:"section"`
	Status       string `json:"status" yaml:"status"` // "added" or "failed"
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}
