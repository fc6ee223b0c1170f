package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dtnitsch/pickpocket/models"
	"github.com/dtnitsch/pickpocket/pkg/importer"
	"github.com/dtnitsch/pickpocket/pkg/storage"
	"gopkg.in/yaml.v3"
)

const (
	StatusAdded  = "added"
	StatusFailed = "failed"
)

// Collector gathers per-item outcomes from a running import.
// Pass Record to importer.WithOnItem.
type Collector struct {
	mu      sync.Mutex
	results []ItemReport
}

// Record converts one importer result.
func (c *Collector) Record(r importer.ItemResult) {
	item := ItemReport{
		Index:   r.Index,
		URL:     r.Record.URL,
		Section: string(r.Record.Section),
		Status:  StatusAdded,
	}
	if r.Record.Title != nil {
		item.Title = *r.Record.Title
	}
	if r.Err != nil {
		item.Status = StatusFailed
		item.ErrorMessage = r.Err.Error()
	}

	c.mu.Lock()
	c.results = append(c.results, item)
	c.mu.Unlock()
}

// Results returns a copy of the collected outcomes.
func (c *Collector) Results() []ItemReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ItemReport, len(c.results))
	copy(out, c.results)
	return out
}

// NewImportReport builds a report from the run's session, final ledger and outcomes.
func NewImportReport(session *importer.Session, backend string, ledger models.ImportLedger, completed bool, results []ItemReport) ImportReport {
	report := ImportReport{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Backend:     backend,
		Added:       ledger.Added,
		Failed:      ledger.Failed,
		Completed:   completed,
		Results:     results,
	}
	if session != nil {
		report.Source = session.Source
		report.Mode = string(session.Mode)
		report.IncludeRead = session.IncludeRead
		report.Total = len(session.Records())
	}
	if report.Results == nil {
		report.Results = []ItemReport{}
	}
	return report
}

// GenerateReport writes report into dir as YAML or JSON and returns the file path.
func GenerateReport(report ImportReport, dir, format string, s *storage.Storage) (string, error) {
	var (
		data []byte
		err  error
		ext  string
	)
	switch format {
	case "", "yaml":
		data, err = yaml.Marshal(report)
		ext = "yaml"
	case "json":
		data, err = json.MarshalIndent(report, "", "  ")
		ext = "json"
	default:
		return "", fmt.Errorf("unknown report format: %s (use: yaml or json)", format)
	}
	if err != nil {
		return "", fmt.Errorf("error marshalling report: %w", err)
	}

	base := fmt.Sprintf("import-%s", time.Now().Format("2006-01-02-150405"))
	if report.RunID > 0 {
		base = fmt.Sprintf("import-%d-%s", report.RunID, time.Now().Format("2006-01-02-150405"))
	}

	// Runs finishing within the same second get a numeric suffix.
	reportPath := filepath.Join(dir, base+"."+ext)
	for n := 2; s.HasFile(reportPath); n++ {
		reportPath = filepath.Join(dir, fmt.Sprintf("%s-%d.%s", base, n, ext))
	}

	if err := s.SaveFile(reportPath, data); err != nil {
		return "", fmt.Errorf("error saving report: %w", err)
	}
	return reportPath, nil
}
