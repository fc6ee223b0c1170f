package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dtnitsch/pickpocket/models"
	"github.com/dtnitsch/pickpocket/pkg/parser"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Exit codes shared by every command.
const (
	ExitUsage   = 1 // bad input: flags, files without links, partial import failure
	ExitRuntime = 2 // storage or network failures, every item failed
)

const EmptyExportMessage = "The selected file does not contain any links. Please select a different file."

// NewLogger builds the JSON logger for a command. --quiet wins over --verbose.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	} else if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads --config and applies every flag that was set explicitly,
// either on the command line or through its environment variable.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("redis-addr") {
		cfg.Redis.Addr = c.String("redis-addr")
	}
	if c.IsSet("redis-key") {
		cfg.Redis.Key = c.String("redis-key")
	}
	if c.IsSet("mode") {
		cfg.Mode = models.ImportMode(c.String("mode"))
	}
	if c.IsSet("step-delay") {
		cfg.StepDelay = c.Duration("step-delay")
	}
	if c.IsSet("include-read") {
		cfg.IncludeRead = c.Bool("include-read")
	}
	if c.IsSet("preview") {
		cfg.Preview.Enabled = c.Bool("preview")
	}
	if c.IsSet("preview-timeout") {
		cfg.Preview.Timeout = c.Duration("preview-timeout")
	}
	if c.IsSet("cache-dir") {
		cfg.Preview.CacheDir = c.String("cache-dir")
	}
	if c.IsSet("report-dir") {
		cfg.ReportDir = c.String("report-dir")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteOutput renders v as JSON or YAML, or calls table for the default format.
func WriteOutput(w io.Writer, format string, v any, table func(io.Writer)) error {
	switch format {
	case "", "table":
		table(w)
		return nil
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		_, err = fmt.Fprint(w, string(data))
		return err
	default:
		return cli.Exit(fmt.Sprintf("unknown format: %s (use: table, json or yaml)", format), ExitUsage)
	}
}

// Truncate shortens s to n runes for table columns.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// Rule returns a horizontal line of width n.
func Rule(n int) string {
	return strings.Repeat("-", n)
}

// LoadExport parses the export named by the first argument. Any load failure,
// including an export without links, is a usage exit.
func LoadExport(c *cli.Context, logger *slog.Logger) (*models.Export, string, error) {
	if c.NArg() == 0 {
		return nil, "", cli.Exit(fmt.Sprintf("Error: No export file provided\n\nUsage:\n  pickpocket %s <ril_export.html>", c.Command.Name), ExitUsage)
	}
	path := c.Args().First()

	export, err := parser.NewParser(logger).ParseFile(path)
	if err == nil {
		err = export.Validate()
	}
	switch {
	case errors.Is(err, models.ErrEmptyResult):
		return nil, path, cli.Exit(EmptyExportMessage, ExitUsage)
	case err != nil:
		logger.Error("failed to load export", "path", path, "error", err)
		return nil, path, cli.Exit(fmt.Sprintf("Error: %v", err), ExitUsage)
	}
	return export, path, nil
}
