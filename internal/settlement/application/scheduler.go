package application

import (
	"context"
	"log"
	"time"
)

// Runner executes one settlement batch.
type Runner interface {
	Run(ctx context.Context) (*RunSummary, error)
}

// Scheduler triggers the settlement batch once a month, on a
// configured day of month at a configured UTC time.
type Scheduler struct {
	runner     Runner
	dayOfMonth int
	monthlyAt  string
	logger     *log.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(runner Runner, dayOfMonth int, monthlyAt string, logger *log.Logger) *Scheduler {
	return &Scheduler{
		runner:     runner,
		dayOfMonth: dayOfMonth,
		monthlyAt:  monthlyAt,
		logger:     logger,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.runner == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !s.shouldRun(now.UTC()) {
				continue
			}
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) shouldRun(now time.Time) bool {
	if s.dayOfMonth < 1 || s.dayOfMonth > 28 {
		return false
	}
	hour, minute, err := parseMonthlyAt(s.monthlyAt)
	if err != nil {
		return false
	}
	return now.Day() == s.dayOfMonth && now.Hour() == hour && now.Minute() == minute
}

func (s *Scheduler) runOnce(ctx context.Context) {
	summary, err := s.runner.Run(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("settlement schedule error: %v", err)
		}
		return
	}
	if s.logger != nil {
		s.logger.Printf("settlement schedule done: run=%s created=%d skipped=%d failed=%d",
			summary.RunID, summary.SettlementsCreated, summary.SettlementsSkipped, summary.PartnersFailed)
	}
}

func parseMonthlyAt(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
