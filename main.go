package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dtnitsch/pickpocket/internal/db"
	"github.com/dtnitsch/pickpocket/internal/imports"
	"github.com/dtnitsch/pickpocket/internal/links"
	"github.com/dtnitsch/pickpocket/models"
	"github.com/dtnitsch/pickpocket/pkg/help"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		// Exit coders have already exited; what is left are flag and usage errors.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "table",
		Usage:   "Output format: table, json or yaml",
	}
}

func includeReadFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "include-read",
		Usage:   "Also use the links of the Read Archive section",
		EnvVars: []string{"PICKPOCKET_INCLUDE_READ"},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pickpocket",
		Usage: "Import a Pocket HTML export into a reading list",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				EnvVars: []string{"PICKPOCKET_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log every processed link",
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "SQLite database path (default: next to the binary)",
				EnvVars: []string{"PICKPOCKET_DB"},
			},
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Reading list backend: sqlite, redis or dry-run",
				EnvVars: []string{"PICKPOCKET_BACKEND"},
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for the redis backend",
				EnvVars: []string{"PICKPOCKET_REDIS_ADDR"},
			},
			&cli.StringFlag{
				Name:    "redis-key",
				Usage:   "Redis key holding the reading list",
				EnvVars: []string{"PICKPOCKET_REDIS_KEY"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "links",
				Usage:     "Show the links found in an export",
				ArgsUsage: "<ril_export.html>",
				Flags:     []cli.Flag{includeReadFlag(), formatFlag()},
				Action:    links.LinksAction,
			},
			{
				Name:      "import",
				Usage:     "Add the links of an export to the reading list",
				ArgsUsage: "<ril_export.html>",
				Flags: []cli.Flag{
					includeReadFlag(),
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Value:   string(models.ImportModeBulk),
						Usage:   "Import mode: bulk or stepwise",
						EnvVars: []string{"PICKPOCKET_MODE"},
					},
					&cli.DurationFlag{
						Name:    "step-delay",
						Value:   models.DefaultStepDelay,
						Usage:   "Delay between links in stepwise mode",
						EnvVars: []string{"PICKPOCKET_STEP_DELAY"},
					},
					&cli.BoolFlag{
						Name:  "confirm",
						Usage: "In stepwise mode, wait for Enter before each link",
					},
					&cli.BoolFlag{
						Name:    "preview",
						Usage:   "Fetch each page for preview text and language",
						EnvVars: []string{"PICKPOCKET_PREVIEW"},
					},
					&cli.DurationFlag{
						Name:  "preview-timeout",
						Value: 10 * time.Second,
						Usage: "Per-page fetch timeout for --preview",
					},
					&cli.StringFlag{
						Name:    "cache-dir",
						Usage:   "Cache fetched pages here for --preview",
						EnvVars: []string{"PICKPOCKET_CACHE_DIR"},
					},
					&cli.StringFlag{
						Name:    "report-dir",
						Usage:   "Write an import report into this directory",
						EnvVars: []string{"PICKPOCKET_REPORT_DIR"},
					},
					&cli.StringFlag{
						Name:  "report-format",
						Value: "yaml",
						Usage: "Report format: yaml or json",
					},
				},
				Action: imports.ImportAction,
			},
			{
				Name:  "items",
				Usage: "List the reading list, top first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Value:   50,
						Usage:   "Maximum number of items (0 for all)",
					},
					formatFlag(),
				},
				Action: db.ItemsAction,
			},
			{
				Name:      "item",
				Usage:     "Show one reading list item",
				ArgsUsage: "<url>",
				Flags:     []cli.Flag{formatFlag()},
				Action:    db.ItemAction,
			},
			{
				Name:      "remove",
				Usage:     "Remove links from the reading list",
				ArgsUsage: "<url> [url...]",
				Action:    db.RemoveAction,
			},
			{
				Name:  "clear",
				Usage: "Remove every link from the reading list (import history is kept)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm clearing the reading list",
					},
				},
				Action: db.ClearAction,
			},
			{
				Name:  "runs",
				Usage: "List recorded import runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Value:   20,
						Usage:   "Maximum number of runs (0 for all)",
					},
				},
				Action: db.RunsAction,
			},
			{
				Name:  "quickstart",
				Usage: "Print a quick start guide",
				Action: func(c *cli.Context) error {
					fmt.Fprint(c.App.Writer, help.ColdstartYAML)
					return nil
				},
			},
			{
				Name:      "run",
				Usage:     "Show one import run (latest when no id is given)",
				ArgsUsage: "[id]",
				Action:    db.RunAction,
			},
		},
	}
}
