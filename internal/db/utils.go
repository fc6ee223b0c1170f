package db

import (
	"fmt"

	dbpkg "github.com/dtnitsch/pickpocket/pkg/db"
	"github.com/urfave/cli/v2"
)

// GetRunIDOrLatest returns the run ID from args, or the latest run if not provided
func GetRunIDOrLatest(c *cli.Context, database *dbpkg.DB) (int64, error) {
	if c.NArg() == 0 {
		runs, err := database.ListImportRuns(c.Context, 1)
		if err != nil {
			return 0, fmt.Errorf("failed to get latest import run: %w", err)
		}
		if len(runs) == 0 {
			return 0, fmt.Errorf("no import runs found. Run 'pickpocket import <ril_export.html>' first")
		}
		return runs[0].RunID, nil
	}

	var runID int64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &runID); err != nil {
		return 0, fmt.Errorf("invalid run ID: %s", c.Args().First())
	}
	return runID, nil
}
