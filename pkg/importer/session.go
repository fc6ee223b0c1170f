package importer

import "github.com/dtnitsch/pickpocket/models"

// Session holds what one import needs: the loaded export, whether archived links
// are included, and the mode chosen when the run starts. Loading a new export
// means building a new Session.
type Session struct {
	Export      *models.Export
	IncludeRead bool
	Mode        models.ImportMode
	Source      string // export file path, informational
}

// Records returns the effective records in export order, tagged with their section.
func (s *Session) Records() []Record {
	if s.Export == nil {
		return nil
	}

	links := s.Export.Records(s.IncludeRead)
	records := make([]Record, len(links))
	for i, rec := range links {
		section := models.SectionUnread
		if i >= len(s.Export.Unread) {
			section = models.SectionReadArchive
		}
		records[i] = Record{LinkRecord: rec, Section: section}
	}
	return records
}

// Start builds a Sequencer over the session's records.
func (s *Session) Start(sink Sink, opts ...Option) *Sequencer {
	return New(s.Records(), sink, opts...)
}
