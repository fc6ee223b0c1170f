// Package importer drives parsed links into a reading list sink.
//
// Records are added in reverse order because reading lists prepend new items;
// adding the last record first leaves the destination in export order. Bulk and
// stepwise runs share the same index rule, index = total - processed - 1, so a
// stepwise run can pause between any two steps and resume without loss.
package importer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dtnitsch/pickpocket/models"
)

// Record is a link together with the section it came from.
type Record struct {
	models.LinkRecord
	Section models.Section
}

// ItemResult describes one processed record.
type ItemResult struct {
	Index  int
	Record Record
	Err    error               // nil when the sink accepted the item
	Ledger models.ImportLedger // counts after this item
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the logger used for per-item failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOnItem registers a callback invoked after every processed record.
func WithOnItem(fn func(ItemResult)) Option {
	return func(s *Sequencer) { s.onItem = fn }
}

// WithOnComplete registers the completion callback. It fires exactly once per run.
func WithOnComplete(fn func(models.ImportLedger)) Option {
	return func(s *Sequencer) { s.onComplete = fn }
}

// WithClock overrides the time stamped on added items.
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) { s.now = now }
}

// Sequencer imports a fixed list of records into a sink one at a time.
// Callbacks run outside the internal lock and may read the ledger.
type Sequencer struct {
	mu        sync.Mutex // held across each sink call
	records   []Record
	sink      Sink
	ledger    models.ImportLedger
	completed bool

	logger     *slog.Logger
	onItem     func(ItemResult)
	onComplete func(models.ImportLedger)
	now        func() time.Time
}

// New creates a Sequencer with a fresh ledger. The records slice is not copied
// and must not be modified during the run.
func New(records []Record, sink Sink, opts ...Option) *Sequencer {
	s := &Sequencer{
		records: records,
		sink:    sink,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Total is the number of records in the run.
func (s *Sequencer) Total() int {
	return len(s.records)
}

// Ledger returns a snapshot of the current counts.
func (s *Sequencer) Ledger() models.ImportLedger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger
}

// NextIndex is the index of the record the next step will process, or -1 once
// every record has been processed.
func (s *Sequencer) NextIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextIndex()
}

func (s *Sequencer) nextIndex() int {
	return len(s.records) - s.ledger.Processed() - 1
}

// Done reports whether completion has fired.
func (s *Sequencer) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Reset clears the ledger so the records can be imported again.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = models.ImportLedger{}
	s.completed = false
}

// Step processes a single record. When no record is left it signals completion
// instead and returns true. Steps after completion are no-ops returning true.
func (s *Sequencer) Step(ctx context.Context) bool {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		return true
	}

	index := s.nextIndex()
	if index < 0 {
		s.completed = true
		ledger := s.ledger
		s.mu.Unlock()

		if s.onComplete != nil {
			s.onComplete(ledger)
		}
		return true
	}

	res := s.process(ctx, index)
	s.mu.Unlock()

	if s.onItem != nil {
		s.onItem(res)
	}
	return false
}

// RunBulk adds every remaining record synchronously and signals completion once.
func (s *Sequencer) RunBulk(ctx context.Context) models.ImportLedger {
	for !s.Step(ctx) {
	}
	return s.Ledger()
}

// process must be called with s.mu held.
func (s *Sequencer) process(ctx context.Context, index int) ItemResult {
	rec := s.records[index]
	res := ItemResult{Index: index, Record: rec}

	err := validateURL(rec.URL)
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		item := models.NewReadingListItem(rec.LinkRecord, rec.Section)
		item.AddedAt = s.now()
		err = s.sink.AddItem(ctx, item)
	}

	if err != nil {
		res.Err = &SinkError{URL: rec.URL, Err: err}
		s.ledger.Failed++
		s.logger.Warn("Failed to add link to reading list", "index", index, "url", rec.URL, "error", err)
	} else {
		s.ledger.Added++
		s.logger.Debug("Added link to reading list", "index", index, "url", rec.URL)
	}

	res.Ledger = s.ledger
	return res
}
