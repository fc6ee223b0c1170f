package models

// ImportLedger counts the outcome of one import run.
type ImportLedger struct {
	Added  int `json:"added" yaml:"added"`
	Failed int `json:"failed" yaml:"failed"`
}

// Processed is the number of records handled so far.
func (l ImportLedger) Processed() int {
	return l.Added + l.Failed
}
