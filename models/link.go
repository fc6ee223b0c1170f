package models

import (
	"errors"
	"time"
)

// ErrEmptyResult is returned when an export parsed cleanly but yielded no links.
var ErrEmptyResult = errors.New("export does not contain any links")

// UntitledLink is shown in place of a missing title.
const UntitledLink = "Untitled Link"

// Section names one of the groups of a Pocket export.
type Section string

const (
	SectionUnread      Section = "Unread"
	SectionReadArchive Section = "Read Archive"
)

// Sections returns the recognized sections in export order.
func Sections() []Section {
	return []Section{SectionUnread, SectionReadArchive}
}

// LinkRecord is one saved link as found in the export markup.
// URL is the raw href; it is not validated until import time.
type LinkRecord struct {
	URL   string  `json:"url" yaml:"url"`
	Title *string `json:"title,omitempty" yaml:"title,omitempty"` // nil when the anchor text repeats the URL

	// Pocket-specific anchor attributes, zero when missing
	TimeAdded time.Time `json:"time_added,omitempty" yaml:"time_added,omitempty"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// DisplayTitle returns the title, or UntitledLink when there is none.
func (l LinkRecord) DisplayTitle() string {
	if l.Title == nil {
		return UntitledLink
	}
	return *l.Title
}

// Export holds the links of both sections in document order.
type Export struct {
	Unread      []LinkRecord `json:"unread" yaml:"unread"`
	ReadArchive []LinkRecord `json:"read_archive" yaml:"read_archive"`
}

// Section returns the links belonging to s.
func (e *Export) Section(s Section) []LinkRecord {
	switch s {
	case SectionUnread:
		return e.Unread
	case SectionReadArchive:
		return e.ReadArchive
	default:
		return nil
	}
}

// Records returns the effective list for an import: the unread links, followed by
// the read archive when includeRead is set.
func (e *Export) Records(includeRead bool) []LinkRecord {
	out := make([]LinkRecord, 0, len(e.Unread)+len(e.ReadArchive))
	out = append(out, e.Unread...)
	if includeRead {
		out = append(out, e.ReadArchive...)
	}
	return out
}

// Total counts the links of both sections.
func (e *Export) Total() int {
	return len(e.Unread) + len(e.ReadArchive)
}

// Validate reports ErrEmptyResult when neither section produced a link.
func (e *Export) Validate() error {
	if e.Total() == 0 {
		return ErrEmptyResult
	}
	return nil
}
