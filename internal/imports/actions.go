package imports

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dtnitsch/pickpocket/internal/common"
	"github.com/dtnitsch/pickpocket/models"
	"github.com/dtnitsch/pickpocket/pkg/caching"
	"github.com/dtnitsch/pickpocket/pkg/db"
	"github.com/dtnitsch/pickpocket/pkg/fetcher"
	"github.com/dtnitsch/pickpocket/pkg/importer"
	"github.com/dtnitsch/pickpocket/pkg/manifest"
	"github.com/dtnitsch/pickpocket/pkg/preview"
	"github.com/dtnitsch/pickpocket/pkg/readinglist"
	"github.com/dtnitsch/pickpocket/pkg/storage"
	"github.com/urfave/cli/v2"
)

// CompleteMessage is printed once the run has processed every record.
const CompleteMessage = "Import Complete: %d links were successfully added to your reading list."

// ImportAction imports the links of an export into the configured reading list.
func ImportAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}
	if c.Bool("confirm") && cfg.Mode != models.ImportModeStepwise {
		return cli.Exit("Error: --confirm requires --mode stepwise", common.ExitUsage)
	}

	export, path, err := common.LoadExport(c, logger)
	if err != nil {
		return err
	}

	session := &importer.Session{
		Export:      export,
		IncludeRead: cfg.IncludeRead,
		Mode:        cfg.Mode,
		Source:      path,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	// Import history lives in SQLite for every backend except dry-run.
	var database *db.DB
	if cfg.Backend != models.BackendDryRun {
		database, err = db.Open(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitRuntime)
		}
		defer database.Close()
	}

	list, err := readinglist.Open(ctx, cfg, database, c.App.Writer)
	if err != nil {
		logger.Error("failed to open reading list", "backend", cfg.Backend, "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitRuntime)
	}
	defer list.Close()

	sink, err := buildSink(cfg, list, logger)
	if err != nil {
		logger.Error("failed to set up preview", "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitRuntime)
	}

	records := session.Records()
	history := newHistory(ctx, database, logger)
	history.start(db.ImportRun{
		Source:      path,
		Backend:     cfg.Backend,
		Mode:        string(cfg.Mode),
		IncludeRead: cfg.IncludeRead,
		Total:       len(records),
	})

	collector := &manifest.Collector{}
	// Dry-run prints a line per add on the same writer; a \r progress line
	// would overwrite it.
	progress := newProgress(c.App.Writer, c.Bool("quiet") || cfg.Backend == models.BackendDryRun)

	seq := session.Start(sink,
		importer.WithLogger(logger),
		importer.WithOnItem(func(r importer.ItemResult) {
			collector.Record(r)
			history.record(r)
			progress.update(r.Ledger)
		}),
	)

	logger.Info("Import started", "source", path, "backend", cfg.Backend, "mode", cfg.Mode, "records", len(records))

	var ready <-chan struct{}
	if cfg.Mode == models.ImportModeStepwise {
		if c.Bool("confirm") {
			fmt.Fprintln(c.App.Writer, "Press Enter to add each link (Ctrl+C to stop).")
			ready = importer.Lines(ctx, c.App.Reader)
		} else {
			ready = importer.Every(ctx, cfg.StepDelay)
		}
	}

	ledger, err := importer.Run(ctx, cfg.Mode, seq, ready)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}
	progress.finish()

	completed := seq.Done()
	history.finish(ledger, completed)

	if cfg.ReportDir != "" {
		report := manifest.NewImportReport(session, cfg.Backend, ledger, completed, collector.Results())
		report.RunID = history.runID
		store := &storage.Storage{}
		reportPath, err := manifest.GenerateReport(report, cfg.ReportDir, c.String("report-format"), store)
		if err != nil {
			logger.Error("failed to write import report", "error", err)
		} else if stats, err := store.GetFileStats(reportPath); err == nil {
			fmt.Fprintf(c.App.Writer, "Report saved to: %s (%d bytes)\n", reportPath, stats.SizeBytes)
		} else {
			fmt.Fprintf(c.App.Writer, "Report saved to: %s\n", reportPath)
		}
	}

	if !completed {
		logger.Warn("Import stopped before completion", "added", ledger.Added, "failed", ledger.Failed, "remaining", len(records)-ledger.Processed())
		return cli.Exit(fmt.Sprintf("Import stopped: %d added, %d failed, %d not processed.",
			ledger.Added, ledger.Failed, len(records)-ledger.Processed()), common.ExitRuntime)
	}

	fmt.Fprintf(c.App.Writer, CompleteMessage+"\n", ledger.Added)
	logger.Info("Import complete", "added", ledger.Added, "failed", ledger.Failed, "run_id", history.runID)

	if ledger.Failed > 0 && ledger.Failed == len(records) {
		return cli.Exit(fmt.Sprintf("All %d links failed to import.", ledger.Failed), common.ExitRuntime)
	}
	if ledger.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d links failed to import.", ledger.Failed), common.ExitUsage)
	}
	return nil
}

func buildSink(cfg *models.Config, list readinglist.List, logger *slog.Logger) (importer.Sink, error) {
	if !cfg.Preview.Enabled {
		return list, nil
	}

	f := fetcher.NewFetcher(
		fetcher.WithTimeout(cfg.Preview.Timeout),
		fetcher.WithUserAgent(cfg.Preview.UserAgent),
	)
	opts := []preview.Option{preview.WithLogger(logger)}
	if cfg.Preview.CacheDir != "" {
		cache, err := caching.NewCache(cfg.Preview.CacheDir, cfg.Preview.CacheTTL)
		if err != nil {
			return nil, err
		}
		logger.Debug("Page cache enabled", "dir", cache.Path(), "ttl", cfg.Preview.CacheTTL)
		opts = append(opts, preview.WithCache(cache))
	}
	return preview.NewEnricher(list, f, opts...), nil
}

// history records the run in the database. A nil database disables it, and
// write failures are logged without stopping the import.
type history struct {
	ctx      context.Context
	database *db.DB
	logger   *slog.Logger
	runID    int64
}

// Writes outlive an interrupt so the partial ledger is kept.
func newHistory(ctx context.Context, database *db.DB, logger *slog.Logger) *history {
	return &history{ctx: context.WithoutCancel(ctx), database: database, logger: logger}
}

func (h *history) start(run db.ImportRun) {
	if h.database == nil {
		return
	}
	runID, err := h.database.CreateImportRun(h.ctx, run)
	if err != nil {
		h.logger.Warn("failed to record import run", "error", err)
		return
	}
	h.runID = runID
}

func (h *history) record(r importer.ItemResult) {
	if h.runID == 0 {
		return
	}
	result := db.RunResult{
		Index:   r.Index,
		URL:     r.Record.URL,
		Section: string(r.Record.Section),
		Status:  db.StatusAdded,
	}
	if r.Err != nil {
		result.Status = db.StatusFailed
		result.ErrorMessage = r.Err.Error()
	}
	if err := h.database.InsertRunResult(h.ctx, h.runID, result); err != nil {
		h.logger.Warn("failed to record import result", "run_id", h.runID, "index", r.Index, "error", err)
	}
	if err := h.database.UpdateImportProgress(h.ctx, h.runID, r.Ledger); err != nil {
		h.logger.Warn("failed to record import progress", "run_id", h.runID, "error", err)
	}
}

func (h *history) finish(ledger models.ImportLedger, completed bool) {
	if h.runID == 0 {
		return
	}
	var err error
	if completed {
		err = h.database.FinishImportRun(h.ctx, h.runID, ledger)
	} else {
		err = h.database.UpdateImportProgress(h.ctx, h.runID, ledger)
	}
	if err != nil {
		h.logger.Warn("failed to finish import run", "run_id", h.runID, "error", err)
	}
}

// progress prints the live "Added: x / Failed: y" line.
type progress struct {
	out     io.Writer
	quiet   bool
	printed bool
}

func newProgress(out io.Writer, quiet bool) *progress {
	return &progress{out: out, quiet: quiet}
}

func (p *progress) update(l models.ImportLedger) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "\rAdded: %d / Failed: %d", l.Added, l.Failed)
	p.printed = true
}

func (p *progress) finish() {
	if p.printed {
		fmt.Fprintln(p.out)
	}
}
