package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/pickpocket/models"
)

var (
	// ErrUndecodable means the input could not be read as UTF-8 text.
	ErrUndecodable = errors.New("input is not valid UTF-8 text")
	// ErrMalformed means the text could not be parsed as markup at all.
	ErrMalformed = errors.New("input is not parseable markup")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseError is returned when an export cannot be loaded. No partial result
// accompanies it.
type ParseError struct {
	Kind error // ErrUndecodable or ErrMalformed
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Parser extracts saved links from a Pocket HTML export.
type Parser struct {
	logger *slog.Logger
}

// NewParser returns a Parser. A nil logger falls back to slog.Default().
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseFile loads and parses the export at path.
func (p *Parser) ParseFile(path string) (*models.Export, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	defer f.Close()

	return p.ParseReader(f)
}

// Parse extracts both sections from html.
func (p *Parser) Parse(html string) (*models.Export, error) {
	return p.parseBytes([]byte(html))
}

// ParseReader reads the whole export from r and parses it.
func (p *Parser) ParseReader(r io.Reader) (*models.Export, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Kind: ErrUndecodable, Err: err}
	}
	return p.parseBytes(data)
}

func (p *Parser) parseBytes(data []byte) (*models.Export, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, &ParseError{Kind: ErrUndecodable}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Kind: ErrMalformed, Err: err}
	}

	found := make(map[models.Section][]models.LinkRecord, len(models.Sections()))
	for _, section := range models.Sections() {
		found[section] = p.section(doc, section)
	}
	export := &models.Export{
		Unread:      found[models.SectionUnread],
		ReadArchive: found[models.SectionReadArchive],
	}
	p.logger.Debug("Parsed export", "unread", len(export.Unread), "read_archive", len(export.ReadArchive))
	return export, nil
}

// section falls back to an empty list when any anchor fails, leaving the other
// section unaffected.
func (p *Parser) section(doc *goquery.Document, section models.Section) []models.LinkRecord {
	records, err := extractSection(doc, section)
	if err != nil {
		p.logger.Warn("Dropping section after extraction failure", "section", section, "error", err)
		return []models.LinkRecord{}
	}
	return records
}

func extractSection(doc *goquery.Document, section models.Section) ([]models.LinkRecord, error) {
	records := []models.LinkRecord{}

	heading := doc.Find("h1").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), string(section))
	}).First()
	if heading.Length() == 0 {
		return records, nil
	}

	list := heading.Next()
	if list.Length() == 0 {
		return records, nil
	}

	var extractErr error
	list.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		rec, ok, err := extractLink(a)
		if err != nil {
			extractErr = fmt.Errorf("anchor %d: %w", i, err)
			return false
		}
		if ok {
			records = append(records, rec)
		}
		return true
	})
	if extractErr != nil {
		return nil, extractErr
	}
	return records, nil
}

// extractLink reports ok=false for anchors that carry no usable href. The
// missing-href error only guards against callers selecting plain anchors.
func extractLink(a *goquery.Selection) (models.LinkRecord, bool, error) {
	href, exists := a.Attr("href")
	if !exists {
		return models.LinkRecord{}, false, errors.New("missing href attribute")
	}
	if strings.TrimSpace(href) == "" {
		return models.LinkRecord{}, false, nil
	}

	rec := models.LinkRecord{URL: href}

	// Pocket writes the URL as link text for untitled items.
	title := normalizeText(a.Text())
	if title != href {
		rec.Title = &title
	}

	if raw, ok := a.Attr("time_added"); ok {
		if secs, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil && secs > 0 {
			rec.TimeAdded = time.Unix(secs, 0).UTC()
		}
	}
	if raw, ok := a.Attr("tags"); ok {
		rec.Tags = splitTags(raw)
	}

	return rec, true, nil
}

// normalizeText trims the text and collapses internal whitespace runs to one space.
func normalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

func splitTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
