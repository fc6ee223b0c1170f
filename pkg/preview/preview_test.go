package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dtnitsch/pickpocket/models"
	"github.com/dtnitsch/pickpocket/pkg/caching"
	"github.com/dtnitsch/pickpocket/pkg/fetcher"
	"github.com/dtnitsch/pickpocket/pkg/importer"
)

const articleHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<title>Understanding Channels</title>
<meta name="description" content="A practical guide to how channels let goroutines communicate safely without sharing memory.">
</head>
<body>
<article>
<h1>Understanding Channels</h1>
<p>Channels are the pipes that connect concurrent goroutines. You can send values into channels from one goroutine and receive those values into another goroutine.</p>
<p>By default, sends and receives block until the other side is ready. This allows goroutines to synchronize without explicit locks or condition variables.</p>
<p>Buffered channels accept a limited number of values without a corresponding receiver for those values.</p>
</article>
</body>
</html>`

type captureSink struct {
	items []models.ReadingListItem
}

func (s *captureSink) AddItem(_ context.Context, item models.ReadingListItem) error {
	s.items = append(s.items, item)
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/article" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articleHTML))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestEnricher_AddsPreview(t *testing.T) {
	server, _ := newTestServer(t)
	sink := &captureSink{}
	e := NewEnricher(sink, fetcher.NewFetcher(fetcher.WithTimeout(2*time.Second)))

	item := models.ReadingListItem{URL: server.URL + "/article", Title: "Channels"}
	if err := e.AddItem(context.Background(), item); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	if len(sink.items) != 1 {
		t.Fatalf("forwarded %d items, want 1", len(sink.items))
	}
	got := sink.items[0]
	if !strings.Contains(got.PreviewText, "channels") {
		t.Errorf("PreviewText = %q", got.PreviewText)
	}
	if got.Language != "en" {
		t.Errorf("Language = %q, want en", got.Language)
	}
	if got.Title != "Channels" {
		t.Errorf("Title = %q, parsed title must be kept", got.Title)
	}
}

func TestEnricher_PassesThroughOnFailure(t *testing.T) {
	server, _ := newTestServer(t)
	sink := &captureSink{}
	e := NewEnricher(sink, nil)

	items := []models.ReadingListItem{
		{URL: server.URL + "/missing"},
		{URL: "ftp://example.com/file"},
		{URL: "https://example.com", PreviewText: "already set"},
	}
	for _, item := range items {
		if err := e.AddItem(context.Background(), item); err != nil {
			t.Fatalf("AddItem(%s) error = %v", item.URL, err)
		}
	}

	for i, got := range sink.items {
		if got.PreviewText != items[i].PreviewText || got.Language != "" {
			t.Errorf("item %d changed: %+v", i, got)
		}
	}
}

func TestEnricher_UsesCache(t *testing.T) {
	server, hits := newTestServer(t)
	cache, err := caching.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	e := NewEnricher(&captureSink{}, nil, WithCache(cache))

	for i := 0; i < 2; i++ {
		if _, err := e.Fetch(context.Background(), server.URL+"/article"); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", hits.Load())
	}
}

func TestEnricher_AsImportSink(t *testing.T) {
	server, _ := newTestServer(t)
	sink := &captureSink{}

	records := []importer.Record{
		{LinkRecord: models.LinkRecord{URL: server.URL + "/article"}, Section: models.SectionUnread},
	}
	ledger := importer.New(records, NewEnricher(sink, nil)).RunBulk(context.Background())
	if ledger.Added != 1 || sink.items[0].PreviewText == "" {
		t.Errorf("ledger = %+v, items = %+v", ledger, sink.items)
	}
}

func TestDetectLanguage(t *testing.T) {
	e := NewEnricher(&captureSink{}, nil)

	tests := []struct {
		text string
		want string
	}{
		{text: "The quick brown fox jumps over the lazy dog near the river bank.", want: "en"},
		{text: "Le chat est assis sur le tapis et regarde les oiseaux dans le jardin.", want: "fr"},
		{text: "Der Hund läuft schnell durch den großen Park und spielt mit dem Ball.", want: "de"},
	}
	for _, tt := range tests {
		if got := e.DetectLanguage(tt.text); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "short", n: 10, want: "short"},
		{in: "one two three four", n: 9, want: "one two…"},
		{in: "héllo wörld again", n: 11, want: "héllo wörld…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
