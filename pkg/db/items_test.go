package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dtnitsch/pickpocket/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func itemURLs(items []models.ReadingListItem) []string {
	urls := make([]string, len(items))
	for i, item := range items {
		urls[i] = item.URL
	}
	return urls
}

func TestAddItem_Prepends(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	for _, u := range []string{"https://c.com", "https://b.com", "https://a.com"} {
		if err := db.AddItem(ctx, models.ReadingListItem{URL: u}); err != nil {
			t.Fatalf("AddItem(%s) error = %v", u, err)
		}
	}

	items, err := db.ListItems(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}

	want := []string{"https://a.com", "https://b.com", "https://c.com"}
	got := itemURLs(items)
	if len(got) != len(want) {
		t.Fatalf("ListItems() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("items[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAddItem_DuplicateMovesToTop(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	first := models.ReadingListItem{URL: "https://a.com", Title: "Old", PreviewText: "kept preview", Language: "en"}
	if err := db.AddItem(ctx, first); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if err := db.AddItem(ctx, models.ReadingListItem{URL: "https://b.com"}); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if err := db.AddItem(ctx, models.ReadingListItem{URL: "https://a.com", Title: "New"}); err != nil {
		t.Fatalf("AddItem() duplicate error = %v", err)
	}

	count, err := db.CountItems(ctx)
	if err != nil {
		t.Fatalf("CountItems() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountItems() = %d, want 2", count)
	}

	items, err := db.ListItems(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if items[0].URL != "https://a.com" {
		t.Errorf("top item = %q, want re-added URL", items[0].URL)
	}
	if items[0].Title != "New" {
		t.Errorf("title = %q, want %q", items[0].Title, "New")
	}
	if items[0].PreviewText != "kept preview" || items[0].Language != "en" {
		t.Errorf("preview/language not kept: %+v", items[0])
	}
}

func TestAddItem_RoundTripsFields(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	saved := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	added := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	item := models.ReadingListItem{
		URL:         "https://go.dev/blog/",
		Title:       "The Go Blog",
		PreviewText: "News from the Go team",
		Language:    "en",
		Section:     models.SectionReadArchive,
		Tags:        []string{"go", "blog"},
		SavedAt:     saved,
		AddedAt:     added,
	}
	if err := db.AddItem(ctx, item); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	got, err := db.GetItem(ctx, item.URL)
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if got.Title != item.Title || got.PreviewText != item.PreviewText || got.Language != item.Language {
		t.Errorf("GetItem() = %+v", got)
	}
	if got.Section != models.SectionReadArchive {
		t.Errorf("Section = %q", got.Section)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" || got.Tags[1] != "blog" {
		t.Errorf("Tags = %v", got.Tags)
	}
	if !got.SavedAt.Equal(saved) {
		t.Errorf("SavedAt = %v, want %v", got.SavedAt, saved)
	}
	if !got.AddedAt.Equal(added) {
		t.Errorf("AddedAt = %v, want %v", got.AddedAt, added)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.GetItem(context.Background(), "https://missing.com"); err == nil {
		t.Error("GetItem() expected error for missing URL")
	}
}

func TestListItems_Options(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	items := []models.ReadingListItem{
		{URL: "https://u1.com", Section: models.SectionUnread},
		{URL: "https://r1.com", Section: models.SectionReadArchive},
		{URL: "https://u2.com", Section: models.SectionUnread},
	}
	for _, item := range items {
		if err := db.AddItem(ctx, item); err != nil {
			t.Fatalf("AddItem() error = %v", err)
		}
	}

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{name: "all", opts: ListOptions{}, want: []string{"https://u2.com", "https://r1.com", "https://u1.com"}},
		{name: "limit", opts: ListOptions{Limit: 1}, want: []string{"https://u2.com"}},
		{name: "unread", opts: ListOptions{Section: models.SectionUnread}, want: []string{"https://u2.com", "https://u1.com"}},
		{name: "archive", opts: ListOptions{Section: models.SectionReadArchive}, want: []string{"https://r1.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListItems(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListItems() error = %v", err)
			}
			urls := itemURLs(got)
			if len(urls) != len(tt.want) {
				t.Fatalf("ListItems() = %v, want %v", urls, tt.want)
			}
			for i := range tt.want {
				if urls[i] != tt.want[i] {
					t.Errorf("ListItems()[%d] = %q, want %q", i, urls[i], tt.want[i])
				}
			}
		})
	}
}

func TestRemoveItem(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	if err := db.AddItem(ctx, models.ReadingListItem{URL: "https://a.com"}); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if err := db.RemoveItem(ctx, "https://a.com"); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if err := db.RemoveItem(ctx, "https://a.com"); err != nil {
		t.Errorf("RemoveItem() of missing URL error = %v", err)
	}
	if count, _ := db.CountItems(ctx); count != 0 {
		t.Errorf("CountItems() = %d, want 0", count)
	}
}

func TestClearItems(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	runID, err := db.CreateImportRun(ctx, ImportRun{Source: "ril_export.html", Backend: "sqlite", Mode: "bulk", Total: 2})
	if err != nil {
		t.Fatalf("CreateImportRun() error = %v", err)
	}
	for _, u := range []string{"https://a.com", "https://b.com"} {
		if err := db.AddItem(ctx, models.ReadingListItem{URL: u}); err != nil {
			t.Fatalf("AddItem(%s) error = %v", u, err)
		}
	}

	if err := db.ClearItems(ctx); err != nil {
		t.Fatalf("ClearItems() error = %v", err)
	}
	if count, _ := db.CountItems(ctx); count != 0 {
		t.Errorf("CountItems() = %d, want 0", count)
	}
	if _, err := db.GetImportRun(ctx, runID); err != nil {
		t.Errorf("GetImportRun() after clear error = %v", err)
	}

	// The list keeps prepending after a clear.
	for _, u := range []string{"https://c.com", "https://d.com"} {
		if err := db.AddItem(ctx, models.ReadingListItem{URL: u}); err != nil {
			t.Fatalf("AddItem(%s) error = %v", u, err)
		}
	}
	items, _ := db.ListItems(ctx, ListOptions{})
	if len(items) != 2 || items[0].URL != "https://d.com" {
		t.Errorf("ListItems() after clear = %+v", items)
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultDBName)

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if database.Path() != path {
		t.Errorf("Path() = %q, want %q", database.Path(), path)
	}
	if err := database.AddItem(context.Background(), models.ReadingListItem{URL: "https://a.com"}); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	database.Close()

	// Reopening must keep the data and skip schema creation.
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() second time error = %v", err)
	}
	defer reopened.Close()

	if count, _ := reopened.CountItems(context.Background()); count != 1 {
		t.Errorf("CountItems() after reopen = %d, want 1", count)
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultDBName)

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := database.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("failed to bump user_version: %v", err)
	}
	database.Close()

	if _, err := Open(path); err == nil {
		t.Fatal("Open() of a newer schema succeeded, want error")
	}
}
