package importer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dtnitsch/pickpocket/models"
)

// Drive runs the sequencer stepwise, processing one record per value received
// from ready. Completion is signaled as soon as the last record is processed.
//
// Drive returns early, without completing, when ready is closed or ctx ends.
// The ledger stays valid in that case and a later Drive call resumes where
// this one stopped.
func (s *Sequencer) Drive(ctx context.Context, ready <-chan struct{}) models.ImportLedger {
	for {
		if s.NextIndex() < 0 {
			s.Step(ctx)
			return s.Ledger()
		}

		select {
		case <-ctx.Done():
			return s.Ledger()
		case _, ok := <-ready:
			// select picks at random when both are ready; a canceled run
			// must not step again.
			if !ok || ctx.Err() != nil {
				return s.Ledger()
			}
			s.Step(ctx)
		}
	}
}

// Run imports with the given mode. ready is only read in stepwise mode.
func Run(ctx context.Context, mode models.ImportMode, seq *Sequencer, ready <-chan struct{}) (models.ImportLedger, error) {
	switch mode {
	case models.ImportModeBulk, "":
		return seq.RunBulk(ctx), nil
	case models.ImportModeStepwise:
		if ready == nil {
			return models.ImportLedger{}, fmt.Errorf("stepwise import needs a ready signal")
		}
		return seq.Drive(ctx, ready), nil
	default:
		return models.ImportLedger{}, fmt.Errorf("unknown import mode: %s", mode)
	}
}

// Every returns a ready signal that fires immediately and then once per delay.
// The channel is closed when ctx ends.
func Every(ctx context.Context, delay time.Duration) <-chan struct{} {
	ready := make(chan struct{})
	go func() {
		defer close(ready)

		var tick <-chan time.Time
		if delay > 0 {
			ticker := time.NewTicker(delay)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ready <- struct{}{}:
			}

			if tick == nil {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case <-tick:
			}
		}
	}()
	return ready
}

// Lines returns a ready signal that fires once per line read from r and is
// closed at EOF or when ctx ends. A read blocked on r is not interrupted by ctx.
func Lines(ctx context.Context, r io.Reader) <-chan struct{} {
	ready := make(chan struct{})
	go func() {
		defer close(ready)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			case ready <- struct{}{}:
			}
		}
	}()
	return ready
}
