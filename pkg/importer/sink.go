package importer

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/dtnitsch/pickpocket/models"
)

// ErrInvalidURL marks a record whose URL is not an absolute URL.
var ErrInvalidURL = errors.New("invalid URL")

// Sink is the destination reading list. AddItem may fail; the sequencer never
// calls it concurrently.
type Sink interface {
	AddItem(ctx context.Context, item models.ReadingListItem) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, item models.ReadingListItem) error

func (f SinkFunc) AddItem(ctx context.Context, item models.ReadingListItem) error {
	return f(ctx, item)
}

// SinkError is the per-item failure recorded for a record.
type SinkError struct {
	URL string
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("failed to add %s: %v", e.URL, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// validateURL accepts absolute URLs only: a scheme plus something after it.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || (u.Host == "" && u.Opaque == "" && u.Path == "") {
		return fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, raw)
	}
	return nil
}
