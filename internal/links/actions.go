package links

import (
	"fmt"
	"io"
	"strings"

	"github.com/dtnitsch/pickpocket/internal/common"
	"github.com/dtnitsch/pickpocket/models"
	"github.com/dtnitsch/pickpocket/pkg/mapreduce"
	"github.com/urfave/cli/v2"
)

// LinkRow is one line of the links preview.
type LinkRow struct {
	Section   models.Section `json:"section" yaml:"section"`
	Title     string         `json:"title" yaml:"title"`
	URL       string         `json:"url" yaml:"url"`
	TimeAdded string         `json:"time_added,omitempty" yaml:"time_added,omitempty"`
	Tags      []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// LinksOutput is the structured form of the preview.
type LinksOutput struct {
	Source      string    `json:"source" yaml:"source"`
	Unread      int       `json:"unread" yaml:"unread"`
	ReadArchive int       `json:"read_archive" yaml:"read_archive"`
	WillImport  int       `json:"will_import" yaml:"will_import"`
	TopTags     []string  `json:"top_tags,omitempty" yaml:"top_tags,omitempty"`
	Links       []LinkRow `json:"links" yaml:"links"`
}

// LinksAction previews what an import of the export would add.
func LinksAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}

	export, path, err := common.LoadExport(c, logger)
	if err != nil {
		return err
	}

	out := BuildOutput(path, export, cfg.IncludeRead)
	logger.Debug("Export loaded", "path", path, "unread", out.Unread, "read_archive", out.ReadArchive)

	return common.WriteOutput(c.App.Writer, c.String("format"), out, func(w io.Writer) {
		printTable(w, out, cfg.IncludeRead)
	})
}

// BuildOutput lists the records an import would process, in export order.
func BuildOutput(source string, export *models.Export, includeRead bool) LinksOutput {
	out := LinksOutput{
		Source:      source,
		Unread:      len(export.Unread),
		ReadArchive: len(export.ReadArchive),
		Links:       []LinkRow{},
	}

	var tagCounts []map[string]int
	for _, section := range models.Sections() {
		if section == models.SectionReadArchive && !includeRead {
			continue
		}
		tagCounts = append(tagCounts, mapreduce.Map(export.Section(section)))
		for _, rec := range export.Section(section) {
			row := LinkRow{
				Section: section,
				Title:   rec.DisplayTitle(),
				URL:     rec.URL,
				Tags:    rec.Tags,
			}
			if !rec.TimeAdded.IsZero() {
				row.TimeAdded = rec.TimeAdded.Format("2006-01-02")
			}
			out.Links = append(out.Links, row)
		}
	}
	out.WillImport = len(out.Links)
	out.TopTags = mapreduce.TopTags(mapreduce.Reduce(tagCounts), 10)
	return out
}

func printTable(w io.Writer, out LinksOutput, includeRead bool) {
	fmt.Fprintf(w, "%-4s %-12s %-40s %s\n", "#", "Section", "Title", "URL")
	fmt.Fprintln(w, common.Rule(100))
	for i, row := range out.Links {
		fmt.Fprintf(w, "%-4d %-12s %-40s %s\n", i+1, row.Section, common.Truncate(row.Title, 40), row.URL)
	}

	fmt.Fprintf(w, "\nUnread: %d, Read Archive: %d\n", out.Unread, out.ReadArchive)
	if len(out.TopTags) > 0 {
		fmt.Fprintf(w, "Top tags: %s\n", strings.Join(out.TopTags, ", "))
	}
	if !includeRead && out.ReadArchive > 0 {
		fmt.Fprintf(w, "Tip: Use --include-read to also import the %d archived links\n", out.ReadArchive)
	}
}
