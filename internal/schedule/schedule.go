// Package schedule re-runs verification passes on an interval, a cron
// schedule, or when a watched path changes.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/sznuper/repro/internal/config"
)

// ErrNoTrigger is returned by Run when the trigger names no schedule.
var ErrNoTrigger = errors.New("no trigger configured (set trigger.interval, trigger.cron or trigger.watch)")

// DefaultDebounce is how long a watched path must stay quiet before a pass starts.
const DefaultDebounce = 500 * time.Millisecond

// Pass runs one verification pass.
type Pass func(ctx context.Context)

// Scheduler fires passes according to a config.Trigger. At most one pass runs
// at a time; a trigger that fires while a pass is running is dropped.
type Scheduler struct {
	trigger  config.Trigger
	pass     Pass
	logger   *slog.Logger
	debounce time.Duration

	mu sync.Mutex
}

// New creates a Scheduler for the given trigger.
func New(trigger config.Trigger, pass Pass, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		trigger:  trigger,
		pass:     pass,
		logger:   logger,
		debounce: DefaultDebounce,
	}
}

// Kind names the configured trigger: "interval", "cron", "watch" or "".
func (s *Scheduler) Kind() string {
	switch {
	case s.trigger.Watch != "":
		return "watch"
	case s.trigger.Cron != "":
		return "cron"
	case s.trigger.Interval != "":
		return "interval"
	default:
		return ""
	}
}

// Run blocks, firing passes until ctx is canceled. It waits for a running
// pass to finish before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	log := s.logger.With("trigger", s.Kind())
	log.Info("scheduler started")
	defer log.Info("scheduler stopped")

	var err error
	switch s.Kind() {
	case "interval":
		err = s.runInterval(ctx)
	case "cron":
		err = s.runCron(ctx)
	case "watch":
		err = s.runWatch(ctx)
	default:
		return ErrNoTrigger
	}

	// Wait for an in-flight pass.
	s.mu.Lock()
	defer s.mu.Unlock()
	return err
}

// fire runs a pass unless one is already running. It reports whether the
// pass ran.
func (s *Scheduler) fire(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if !s.mu.TryLock() {
		s.logger.Warn("previous pass still running, skipping")
		return false
	}
	defer s.mu.Unlock()

	s.pass(ctx)
	return true
}

func (s *Scheduler) runInterval(ctx context.Context) error {
	d, err := time.ParseDuration(s.trigger.Interval)
	if err != nil {
		return fmt.Errorf("trigger.interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("trigger.interval: must be positive, got %s", d)
	}

	ticker := time.NewTicker(d)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.fire(ctx)
		}
	}
}

func (s *Scheduler) runCron(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.trigger.Cron, func() { s.fire(ctx) }); err != nil {
		return fmt.Errorf("trigger.cron: %w", err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) runWatch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(s.trigger.Watch); err != nil {
		return fmt.Errorf("watching %s: %w", s.trigger.Watch, err)
	}

	// Rapid writes are batched into one pass.
	timer := time.NewTimer(s.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(s.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watch error", "error", err)

		case <-timer.C:
			s.fire(ctx)
		}
	}
}
