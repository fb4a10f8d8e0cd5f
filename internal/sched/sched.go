// Package sched triggers the trading cycle at fixed UTC wall-clock times
// each day.
package sched

import (
	"context"
	"fmt"
	"sort"
	"time"

	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/logger"
)

type Scheduler struct {
	times []time.Duration // offsets from UTC midnight, sorted
	cycle interfaces.Cycle
	now   func() time.Time
}

// New parses the HH:MM trigger times. Times are interpreted in UTC so the
// schedule aligns with 4h kline boundaries regardless of host timezone.
func New(times []string, cycle interfaces.Cycle) (*Scheduler, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("schedule needs at least one trigger time")
	}
	offsets := make([]time.Duration, 0, len(times))
	for _, ts := range times {
		t, err := time.Parse("15:04", ts)
		if err != nil {
			return nil, fmt.Errorf("invalid trigger time %q: %w", ts, err)
		}
		offsets = append(offsets, time.Duration(t.Hour())*time.Hour+time.Duration(t.Minute())*time.Minute)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	return &Scheduler{times: offsets, cycle: cycle, now: time.Now}, nil
}

// NextTrigger returns the first trigger instant strictly after now.
func (s *Scheduler) NextTrigger(now time.Time) time.Time {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, off := range s.times {
		if at := midnight.Add(off); at.After(now) {
			return at
		}
	}
	return midnight.AddDate(0, 0, 1).Add(s.times[0])
}

// Run blocks until ctx is canceled, firing the cycle at each trigger.
// Cycle errors are logged; the loop keeps going to the next trigger.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next := s.NextTrigger(s.now())
		logger.Info(ctx, "Next cycle scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err := s.cycle.Run(ctx); err != nil {
			logger.ErrorWithErr(ctx, "Cycle run failed", err)
		}
	}
}
