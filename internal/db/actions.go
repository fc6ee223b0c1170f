package db

import (
	"fmt"
	"io"
	"strings"

	"github.com/dtnitsch/pickpocket/internal/common"
	"github.com/dtnitsch/pickpocket/models"
	dbpkg "github.com/dtnitsch/pickpocket/pkg/db"
	"github.com/dtnitsch/pickpocket/pkg/readinglist"
	"github.com/urfave/cli/v2"
)

// ItemsAction lists the reading list of the configured backend, top first.
func ItemsAction(c *cli.Context) error {
	list, done, err := openList(c)
	if err != nil {
		return err
	}
	defer done()

	items, err := list.Items(c.Context, c.Int("limit"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to list items: %v", err), common.ExitRuntime)
	}
	total, err := list.Count(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitRuntime)
	}

	return common.WriteOutput(c.App.Writer, c.String("format"), items, func(w io.Writer) {
		if len(items) == 0 {
			fmt.Fprintln(w, "Reading list is empty")
			return
		}

		fmt.Fprintf(w, "%-4s %-12s %-8s %-40s %s\n", "#", "Section", "Lang", "Title", "URL")
		fmt.Fprintln(w, common.Rule(110))
		for i, item := range items {
			fmt.Fprintf(w, "%-4d %-12s %-8s %-40s %s\n",
				i+1, item.Section, item.Language, common.Truncate(item.DisplayTitle(), 40), item.URL)
			if item.PreviewText != "" {
				fmt.Fprintf(w, "     %s\n", common.Truncate(item.PreviewText, 100))
			}
		}
		fmt.Fprintf(w, "\nShowing %d of %d items\n", len(items), total)
		if len(items) < total {
			fmt.Fprintf(w, "Tip: Use --limit 0 to list all of them\n")
		}
	})
}

// ItemAction shows one reading list item.
func ItemAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Error: missing item URL", common.ExitUsage)
	}

	list, done, err := openList(c)
	if err != nil {
		return err
	}
	defer done()

	item, err := list.GetItem(c.Context, c.Args().First())
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}

	return common.WriteOutput(c.App.Writer, c.String("format"), item, func(w io.Writer) {
		fmt.Fprintf(w, "Title:    %s\n", item.DisplayTitle())
		fmt.Fprintf(w, "URL:      %s\n", item.URL)
		fmt.Fprintf(w, "Section:  %s\n", item.Section)
		if len(item.Tags) > 0 {
			fmt.Fprintf(w, "Tags:     %s\n", strings.Join(item.Tags, ", "))
		}
		if !item.SavedAt.IsZero() {
			fmt.Fprintf(w, "Saved:    %s\n", item.SavedAt.Local().Format("2006-01-02"))
		}
		fmt.Fprintf(w, "Added:    %s\n", item.AddedAt.Local().Format("2006-01-02 15:04:05"))
		if item.Language != "" {
			fmt.Fprintf(w, "Language: %s\n", item.Language)
		}
		if item.PreviewText != "" {
			fmt.Fprintf(w, "\n%s\n", item.PreviewText)
		}
	})
}

// RemoveAction deletes links from the reading list by URL.
func RemoveAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Error: missing item URL", common.ExitUsage)
	}

	list, done, err := openList(c)
	if err != nil {
		return err
	}
	defer done()

	for _, rawURL := range c.Args().Slice() {
		if err := list.RemoveItem(c.Context, rawURL); err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitRuntime)
		}
		fmt.Fprintf(c.App.Writer, "Removed: %s\n", rawURL)
	}
	return nil
}

// ClearAction empties the reading list. Import history is kept.
func ClearAction(c *cli.Context) error {
	if !c.Bool("yes") {
		return cli.Exit("Error: clearing the reading list needs --yes", common.ExitUsage)
	}

	list, done, err := openList(c)
	if err != nil {
		return err
	}
	defer done()

	count, err := list.Count(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitRuntime)
	}
	if err := list.Clear(c.Context); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitRuntime)
	}
	fmt.Fprintf(c.App.Writer, "Cleared %d items\n", count)
	return nil
}

// openList opens the configured backend for reading list commands. The dry-run
// backend keeps nothing between runs, so it is refused.
func openList(c *cli.Context) (readinglist.List, func(), error) {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return nil, nil, cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}
	if cfg.Backend == models.BackendDryRun {
		return nil, nil, cli.Exit("Error: the dry-run backend keeps no reading list", common.ExitUsage)
	}

	var database *dbpkg.DB
	if cfg.Backend == models.BackendSQLite {
		database, err = dbpkg.Open(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			return nil, nil, cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitRuntime)
		}
	}

	list, err := readinglist.Open(c.Context, cfg, database, nil)
	if err != nil {
		logger.Error("failed to open reading list", "backend", cfg.Backend, "error", err)
		if database != nil {
			database.Close()
		}
		return nil, nil, cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitRuntime)
	}

	return list, func() {
		list.Close()
		if database != nil {
			database.Close()
		}
	}, nil
}

// RunsAction lists recorded import runs, latest first.
func RunsAction(c *cli.Context) error {
	database, err := openHistory(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListImportRuns(c.Context, c.Int("limit"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to list import runs: %v", err), common.ExitRuntime)
	}

	w := c.App.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No import runs found")
		return nil
	}

	fmt.Fprintf(w, "%-6s %-20s %-8s %-10s %-7s %-7s %-7s %-9s %s\n",
		"ID", "Started", "Backend", "Mode", "Total", "Added", "Failed", "Status", "Source")
	fmt.Fprintln(w, common.Rule(110))
	for _, r := range runs {
		fmt.Fprintf(w, "%-6d %-20s %-8s %-10s %-7d %-7d %-7d %-9s %s\n",
			r.RunID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Backend,
			r.Mode,
			r.Total,
			r.Added,
			r.Failed,
			runStatus(r),
			r.Source,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	fmt.Fprintf(w, "\nTip: Use 'pickpocket run <id>' to see details\n")
	return nil
}

// RunAction shows one import run with its per-link results.
func RunAction(c *cli.Context) error {
	database, err := openHistory(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}

	run, err := database.GetImportRun(c.Context, runID)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}
	results, err := database.GetRunResults(c.Context, runID)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitRuntime)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Import run %d\n", run.RunID)
	fmt.Fprintln(w, common.Rule(60))
	fmt.Fprintf(w, "Source:       %s\n", run.Source)
	fmt.Fprintf(w, "Backend:      %s\n", run.Backend)
	fmt.Fprintf(w, "Mode:         %s\n", run.Mode)
	fmt.Fprintf(w, "Include read: %t\n", run.IncludeRead)
	fmt.Fprintf(w, "Started:      %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if run.Finished() {
		fmt.Fprintf(w, "Finished:     %s\n", run.FinishedAt.Time.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "Links:        %d total (%d added, %d failed)\n", run.Total, run.Added, run.Failed)
	fmt.Fprintf(w, "Status:       %s\n", runStatus(*run))

	if len(results) > 0 {
		fmt.Fprintf(w, "\nResults (%d, in processing order):\n", len(results))
		fmt.Fprintln(w, common.Rule(60))
		for _, r := range results {
			fmt.Fprintf(w, "%4d. [%s] %s\n", r.Index, r.Status, r.URL)
			if r.Status == dbpkg.StatusFailed {
				fmt.Fprintf(w, "      Error: %s\n", r.ErrorMessage)
			}
		}
	}
	return nil
}

func runStatus(r dbpkg.ImportRun) string {
	switch {
	case r.Finished():
		return "complete"
	case r.Ledger().Processed() < r.Total:
		return "partial"
	default:
		return "unknown"
	}
}

func openHistory(c *cli.Context) (*dbpkg.DB, error) {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}
	database, err := dbpkg.Open(cfg.DBPath)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("Error: failed to open database: %v", err), common.ExitRuntime)
	}
	return database, nil
}
