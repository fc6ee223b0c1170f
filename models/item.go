package models

import "time"

// ReadingListItem is what a sink receives for each imported link.
type ReadingListItem struct {
	URL         string    `json:"url" yaml:"url"`
	Title       string    `json:"title,omitempty" yaml:"title,omitempty"`
	PreviewText string    `json:"preview_text,omitempty" yaml:"preview_text,omitempty"`
	Language    string    `json:"language,omitempty" yaml:"language,omitempty"` // ISO-639-1
	Section     Section   `json:"section,omitempty" yaml:"section,omitempty"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	SavedAt     time.Time `json:"saved_at,omitempty" yaml:"saved_at,omitempty"` // time_added in Pocket
	AddedAt     time.Time `json:"added_at" yaml:"added_at"`
}

// NewReadingListItem builds the sink payload for a record.
func NewReadingListItem(rec LinkRecord, section Section) ReadingListItem {
	item := ReadingListItem{
		URL:     rec.URL,
		Section: section,
		Tags:    rec.Tags,
		SavedAt: rec.TimeAdded,
	}
	if rec.Title != nil {
		item.Title = *rec.Title
	}
	return item
}

// DisplayTitle returns the title, or UntitledLink when there is none.
func (i ReadingListItem) DisplayTitle() string {
	if i.Title == "" {
		return UntitledLink
	}
	return i.Title
}
