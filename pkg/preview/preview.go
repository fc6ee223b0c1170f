// Package preview enriches reading list items with a short excerpt of the
// linked page and the language it is written in.
package preview

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/pickpocket/models"
	"github.com/dtnitsch/pickpocket/pkg/caching"
	"github.com/dtnitsch/pickpocket/pkg/fetcher"
	"github.com/dtnitsch/pickpocket/pkg/importer"
	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"
)

// MaxPreviewRunes caps the stored preview text.
const MaxPreviewRunes = 280

// Languages offered to the detector. A short list keeps model loading cheap.
var Languages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Russian,
	lingua.Japanese,
	lingua.Chinese,
}

// Page is what the enricher extracted from one URL.
type Page struct {
	Excerpt  string
	Language string // ISO-639-1, lower case; empty when unknown
}

// Enricher is a sink decorator. Every item passes through to the next sink;
// a page that cannot be fetched or read leaves the item unchanged.
type Enricher struct {
	next    importer.Sink
	fetcher *fetcher.Fetcher
	cache   *caching.Cache
	logger  *slog.Logger

	detectorOnce sync.Once
	detector     lingua.LanguageDetector
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithCache keeps fetched pages in c.
func WithCache(c *caching.Cache) Option {
	return func(e *Enricher) { e.cache = c }
}

// WithLogger sets the logger used for enrichment failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEnricher wraps next. A nil fetcher uses fetcher.NewFetcher().
func NewEnricher(next importer.Sink, f *fetcher.Fetcher, opts ...Option) *Enricher {
	if f == nil {
		f = fetcher.NewFetcher()
	}
	e := &Enricher{
		next:    next,
		fetcher: f,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddItem fills PreviewText and Language when they are empty, then forwards the item.
func (e *Enricher) AddItem(ctx context.Context, item models.ReadingListItem) error {
	if item.PreviewText == "" {
		page, err := e.Fetch(ctx, item.URL)
		if err != nil {
			e.logger.Warn("preview unavailable", "url", item.URL, "error", err)
		} else {
			item.PreviewText = page.Excerpt
			if item.Language == "" {
				item.Language = page.Language
			}
		}
	}
	return e.next.AddItem(ctx, item)
}

// Fetch downloads rawURL (or reads it from the cache) and extracts its preview.
func (e *Enricher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s", parsedURL.Scheme)
	}

	html, err := e.pageHTML(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return e.Extract(html, parsedURL)
}

func (e *Enricher) pageHTML(ctx context.Context, rawURL string) ([]byte, error) {
	if e.cache != nil {
		if data, ok := e.cache.Get(rawURL); ok {
			return data, nil
		}
	}

	data, err := e.fetcher.GetHtmlBytes(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(rawURL, data); err != nil {
			e.logger.Debug("page not cached", "url", rawURL, "error", err)
		}
	}
	return data, nil
}

// Extract runs readability over html and detects the language of the result.
func (e *Enricher) Extract(html []byte, pageURL *url.URL) (*Page, error) {
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(string(html)), pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract article: %w", err)
	}

	excerpt := normalizeText(article.Excerpt)
	if excerpt == "" {
		excerpt = contentText(article.Content)
	}
	if excerpt == "" {
		return nil, fmt.Errorf("no readable text")
	}

	return &Page{
		Excerpt:  truncate(excerpt, MaxPreviewRunes),
		Language: e.DetectLanguage(excerpt),
	}, nil
}

// DetectLanguage returns the lower-case ISO-639-1 code of text, or "" when
// the detector cannot decide.
func (e *Enricher) DetectLanguage(text string) string {
	e.detectorOnce.Do(func() {
		e.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(Languages...).
			Build()
	})

	language, ok := e.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}

func contentText(content string) string {
	if content == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	return normalizeText(doc.Find("p").First().Text())
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n runes, ending on a word boundary with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n])
	if runes[n] != ' ' {
		if i := strings.LastIndex(cut, " "); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
