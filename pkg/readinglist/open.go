// Package readinglist selects and wraps the reading list backends a run can import into.
package readinglist

import (
	"context"
	"fmt"
	"io"

	"github.com/dtnitsch/pickpocket/models"
	"github.com/dtnitsch/pickpocket/pkg/db"
)

// List is a reading list that receives imported items and manages them afterwards.
type List interface {
	AddItem(ctx context.Context, item models.ReadingListItem) error
	Items(ctx context.Context, limit int) ([]models.ReadingListItem, error)
	GetItem(ctx context.Context, rawURL string) (*models.ReadingListItem, error)
	RemoveItem(ctx context.Context, rawURL string) error
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Close() error
}

// SQLiteList adapts the SQLite store to List.
type SQLiteList struct {
	*db.DB
}

// Items returns up to limit items from every section, top first.
func (l SQLiteList) Items(ctx context.Context, limit int) ([]models.ReadingListItem, error) {
	return l.ListItems(ctx, db.ListOptions{Limit: limit})
}

func (l SQLiteList) Count(ctx context.Context) (int, error) {
	return l.CountItems(ctx)
}

func (l SQLiteList) Clear(ctx context.Context) error {
	return l.ClearItems(ctx)
}

// Close is a no-op; the database belongs to the caller.
func (l SQLiteList) Close() error { return nil }

// Open returns the backend named by cfg.Backend. database is used for the
// sqlite backend and may be nil otherwise; dryRunOut receives dry-run output.
func Open(ctx context.Context, cfg *models.Config, database *db.DB, dryRunOut io.Writer) (List, error) {
	switch cfg.Backend {
	case models.BackendSQLite, "":
		if database == nil {
			return nil, fmt.Errorf("sqlite backend requires an open database")
		}
		return SQLiteList{DB: database}, nil
	case models.BackendRedis:
		return DialRedis(ctx, cfg.Redis)
	case models.BackendDryRun:
		return NewWriter(dryRunOut), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s (use: sqlite, redis or dry-run)", cfg.Backend)
	}
}
