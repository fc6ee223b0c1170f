package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dtnitsch/pickpocket/models"
)

// ListOptions filters ListItems.
type ListOptions struct {
	Section models.Section // empty means every section
	Limit   int            // 0 means no limit
}

// AddItem puts item at the top of the reading list. A URL that is already on
// the list moves to the top and takes the new title and section; its preview
// and language are only replaced when the new item carries them.
func (db *DB) AddItem(ctx context.Context, item models.ReadingListItem) error {
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO items (url, title, preview_text, language, section, tags, saved_at, added_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM items))
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			preview_text = CASE WHEN excluded.preview_text != '' THEN excluded.preview_text ELSE items.preview_text END,
			language = CASE WHEN excluded.language != '' THEN excluded.language ELSE items.language END,
			section = excluded.section,
			tags = excluded.tags,
			saved_at = COALESCE(excluded.saved_at, items.saved_at),
			added_at = excluded.added_at,
			position = excluded.position
	`, item.URL, item.Title, item.PreviewText, item.Language, string(item.Section),
		strings.Join(item.Tags, ","), NewNullTime(item.SavedAt), item.AddedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}
	return nil
}

// ListItems returns the reading list top first.
func (db *DB) ListItems(ctx context.Context, opts ListOptions) ([]models.ReadingListItem, error) {
	query := `
		SELECT url, title, preview_text, language, section, tags, saved_at, added_at
		FROM items
	`
	var args []any
	if opts.Section != "" {
		query += " WHERE section = ?"
		args = append(args, string(opts.Section))
	}
	query += " ORDER BY position DESC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []models.ReadingListItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	return items, nil
}

// GetItem looks up one item by URL.
func (db *DB) GetItem(ctx context.Context, rawURL string) (*models.ReadingListItem, error) {
	row := db.QueryRowContext(ctx, `
		SELECT url, title, preview_text, language, section, tags, saved_at, added_at
		FROM items WHERE url = ?
	`, rawURL)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item not found: %s", rawURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (models.ReadingListItem, error) {
	var (
		item    models.ReadingListItem
		section string
		tags    string
		savedAt sql.NullTime
	)
	if err := row.Scan(&item.URL, &item.Title, &item.PreviewText, &item.Language,
		&section, &tags, &savedAt, &item.AddedAt); err != nil {
		return item, err
	}

	item.Section = models.Section(section)
	if tags != "" {
		item.Tags = strings.Split(tags, ",")
	}
	if savedAt.Valid {
		item.SavedAt = savedAt.Time
	}
	return item, nil
}

// CountItems returns the number of items on the reading list.
func (db *DB) CountItems(ctx context.Context) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// RemoveItem deletes an item by URL. Removing a missing URL is not an error.
func (db *DB) RemoveItem(ctx context.Context, rawURL string) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM items WHERE url = ?", rawURL); err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	return nil
}

// ClearItems empties the reading list. Import history is kept.
func (db *DB) ClearItems(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM items"); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	return nil
}

// NewNullTime maps the zero time to NULL.
func NewNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
