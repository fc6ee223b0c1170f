package readinglist

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dtnitsch/pickpocket/models"
)

// Writer is a dry-run sink. It prints each add instead of storing it and
// remembers the items in memory so Items behaves like a real list.
type Writer struct {
	mu    sync.Mutex
	out   io.Writer
	items []models.ReadingListItem // top first
}

// NewWriter creates a dry-run sink printing to out. A nil out discards output.
func NewWriter(out io.Writer) *Writer {
	if out == nil {
		out = io.Discard
	}
	return &Writer{out: out}
}

// AddItem prints the item and prepends it to the in-memory list.
func (w *Writer) AddItem(ctx context.Context, item models.ReadingListItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintf(w.out, "would add: %s  %s\n", item.URL, item.DisplayTitle()); err != nil {
		return fmt.Errorf("failed to write item: %w", err)
	}

	kept := make([]models.ReadingListItem, 0, len(w.items)+1)
	kept = append(kept, item)
	for _, existing := range w.items {
		if existing.URL != item.URL {
			kept = append(kept, existing)
		}
	}
	w.items = kept
	return nil
}

// Items returns up to limit remembered items top first.
func (w *Writer) Items(_ context.Context, limit int) ([]models.ReadingListItem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(w.items)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.ReadingListItem, n)
	copy(out, w.items[:n])
	return out, nil
}

// GetItem looks up a remembered item by URL.
func (w *Writer) GetItem(_ context.Context, rawURL string) (*models.ReadingListItem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, item := range w.items {
		if item.URL == rawURL {
			found := item
			return &found, nil
		}
	}
	return nil, fmt.Errorf("item not found: %s", rawURL)
}

// RemoveItem forgets rawURL and prints the removal.
func (w *Writer) RemoveItem(_ context.Context, rawURL string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	kept := w.items[:0]
	for _, item := range w.items {
		if item.URL != rawURL {
			kept = append(kept, item)
		}
	}
	w.items = kept
	fmt.Fprintf(w.out, "would remove: %s\n", rawURL)
	return nil
}

func (w *Writer) Count(_ context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items), nil
}

func (w *Writer) Clear(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = nil
	fmt.Fprintln(w.out, "would clear the reading list")
	return nil
}

func (w *Writer) Close() error { return nil }
