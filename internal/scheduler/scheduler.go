// Package scheduler repeats the run cycle on a fixed interval with a hard
// single-in-flight guarantee: a tick arriving while a run is still going is
// skipped, not queued.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron around the run function.
type Scheduler struct {
	interval time.Duration
	runFn    func(ctx context.Context)
	logger   *slog.Logger
}

// New creates a scheduler that invokes runFn immediately on start and then
// every interval.
func New(interval time.Duration, runFn func(ctx context.Context), logger *slog.Logger) *Scheduler {
	return &Scheduler{interval: interval, runFn: runFn, logger: logger}
}

// Run blocks until ctx is cancelled. On shutdown it drains: the in-flight
// run (if any) finishes before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	// SkipIfStillRunning enforces the one-run-at-a-time invariant
	// structurally: an overlapping tick is dropped by the chain, so the
	// run function can never be re-entered.
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(&cronLogger{s.logger}),
	))

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := c.AddFunc(spec, func() { s.runFn(ctx) }); err != nil {
		return fmt.Errorf("registering cron job %q: %w", spec, err)
	}

	// Fire the first cycle immediately; the cron only covers subsequent
	// ticks.
	s.runFn(ctx)

	c.Start()
	<-ctx.Done()

	s.logger.Info("shutting down scheduler, draining in-flight run")
	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// cronLogger adapts slog to the cron.Logger interface so skipped ticks show
// up in our own log stream.
type cronLogger struct {
	logger *slog.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info("cron: "+msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{"error", err}, keysAndValues...)
	l.logger.Error("cron: "+msg, args...)
}
