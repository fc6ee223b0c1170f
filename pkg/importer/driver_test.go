package importer

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/pickpocket/models"
)

func TestDrive_CompletesAfterLastRecord(t *testing.T) {
	records := makeRecords(3)
	sink := &recordingSink{}
	done := make(chan models.ImportLedger, 1)
	seq := New(records, sink, WithOnComplete(func(l models.ImportLedger) { done <- l }))

	ready := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		ready <- struct{}{}
	}

	ledger := seq.Drive(context.Background(), ready)
	if ledger != (models.ImportLedger{Added: 3}) {
		t.Errorf("ledger = %+v, want {Added:3 Failed:0}", ledger)
	}

	select {
	case l := <-done:
		if l != ledger {
			t.Errorf("completion ledger = %+v, want %+v", l, ledger)
		}
	default:
		t.Fatal("completion did not fire without an extra ready signal")
	}
	if got, want := sink.Calls(), reversedURLs(records); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestDrive_EmptyRun(t *testing.T) {
	fired := false
	seq := New(nil, &recordingSink{}, WithOnComplete(func(models.ImportLedger) { fired = true }))

	// No ready signal is ever sent; an empty run must not wait for one.
	ledger := seq.Drive(context.Background(), make(chan struct{}))
	if ledger != (models.ImportLedger{}) || !fired {
		t.Errorf("ledger = %+v, fired = %v", ledger, fired)
	}
}

func TestDrive_AbandonOnCancel(t *testing.T) {
	stepped := make(chan struct{}, 1)
	seq := New(makeRecords(4), &recordingSink{}, WithOnItem(func(ItemResult) { stepped <- struct{}{} }))
	ctx, cancel := context.WithCancel(context.Background())

	ready := make(chan struct{})
	finished := make(chan models.ImportLedger)
	go func() { finished <- seq.Drive(ctx, ready) }()

	ready <- struct{}{}
	<-stepped
	cancel()

	select {
	case ledger := <-finished:
		if ledger.Processed() != 1 {
			t.Errorf("processed = %d, want 1", ledger.Processed())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Drive did not return after cancel")
	}
	if seq.Done() {
		t.Error("abandoned run reported completion")
	}
	if seq.NextIndex() != 2 {
		t.Errorf("NextIndex() = %d, want 2", seq.NextIndex())
	}
}

func TestDrive_CanceledWithPendingSignal(t *testing.T) {
	for i := 0; i < 200; i++ {
		sink := &recordingSink{}
		seq := New(makeRecords(2), sink)
		ctx, cancel := context.WithCancel(context.Background())

		ready := make(chan struct{}, 1)
		ready <- struct{}{}
		cancel()

		ledger := seq.Drive(ctx, ready)
		if ledger != (models.ImportLedger{}) {
			t.Fatalf("iteration %d: ledger = %+v, want nothing processed", i, ledger)
		}
		if calls := sink.Calls(); len(calls) != 0 {
			t.Fatalf("iteration %d: sink calls = %v, want none", i, calls)
		}
		if seq.Done() {
			t.Fatalf("iteration %d: canceled run reported completion", i)
		}
	}
}

func TestRun_Modes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bulk := New(makeRecords(2), &recordingSink{})
	ledger, err := Run(ctx, models.ImportModeBulk, bulk, nil)
	if err != nil || ledger.Added != 2 {
		t.Errorf("bulk Run() = %+v, %v", ledger, err)
	}

	step := New(makeRecords(2), &recordingSink{})
	ledger, err = Run(ctx, models.ImportModeStepwise, step, Every(ctx, 0))
	if err != nil || ledger.Added != 2 || !step.Done() {
		t.Errorf("stepwise Run() = %+v, %v, done %v", ledger, err, step.Done())
	}

	if _, err := Run(ctx, models.ImportModeStepwise, New(nil, &recordingSink{}), nil); err == nil {
		t.Error("stepwise Run() without ready signal expected error")
	}
	if _, err := Run(ctx, models.ImportMode("parallel"), New(nil, &recordingSink{}), nil); err == nil {
		t.Error("Run() with unknown mode expected error")
	}
}

func TestEvery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ready := Every(ctx, 5*time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		select {
		case <-ready:
		case <-time.After(2 * time.Second):
			t.Fatalf("signal %d not received", i)
		}
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("three signals took %v, want at least two delays", elapsed)
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ready:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("ready channel not closed after cancel")
		}
	}
}

func TestLines(t *testing.T) {
	ready := Lines(context.Background(), strings.NewReader("\n\nyes\n"))

	count := 0
	for range ready {
		count++
	}
	if count != 3 {
		t.Errorf("signals = %d, want 3", count)
	}
}

func TestSessionRecords(t *testing.T) {
	export := &models.Export{
		Unread:      []models.LinkRecord{{URL: "https://u1.com"}, {URL: "https://u2.com"}},
		ReadArchive: []models.LinkRecord{{URL: "https://r1.com"}},
	}

	unreadOnly := (&Session{Export: export}).Records()
	if len(unreadOnly) != 2 {
		t.Fatalf("records = %d, want 2", len(unreadOnly))
	}

	all := (&Session{Export: export, IncludeRead: true}).Records()
	if len(all) != 3 {
		t.Fatalf("records = %d, want 3", len(all))
	}
	if all[0].Section != models.SectionUnread || all[2].Section != models.SectionReadArchive {
		t.Errorf("sections = %q, %q", all[0].Section, all[2].Section)
	}
	if all[2].URL != "https://r1.com" {
		t.Errorf("last record = %q, want archive link", all[2].URL)
	}

	if (&Session{}).Records() != nil {
		t.Error("Records() without export should be nil")
	}

	sink := &recordingSink{}
	ledger := (&Session{Export: export, IncludeRead: true}).Start(sink).RunBulk(context.Background())
	if ledger.Added != 3 || sink.Calls()[0] != "https://r1.com" {
		t.Errorf("Start().RunBulk() = %+v, calls %v", ledger, sink.Calls())
	}
}
