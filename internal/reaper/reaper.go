// Package reaper periodically deletes expired sessions and rate limit windows.
// Reads already treat expired records as dead; this only reclaims storage.
package reaper

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PurgeFunc deletes expired records and returns how many were removed
type PurgeFunc func(ctx context.Context) (int64, error)

type task struct {
	name  string
	purge PurgeFunc
}

// Manager handles the scheduling and execution of purge tasks
type Manager struct {
	tasks    []task
	schedule string
	cron     *cron.Cron
	log      *zap.Logger
}

// NewManager creates a manager running on schedule, a five-field cron expression
func NewManager(schedule string, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}

	// Create a new cron scheduler with seconds disabled
	c := cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
	)))

	return &Manager{
		schedule: schedule,
		cron:     c,
		log:      log.Named("reaper"),
	}
}

// Register adds a purge task
func (m *Manager) Register(name string, purge PurgeFunc) {
	m.tasks = append(m.tasks, task{name: name, purge: purge})
}

// RunOnce executes every task, continuing past failures
func (m *Manager) RunOnce(ctx context.Context) error {
	var errs []error
	for _, t := range m.tasks {
		n, err := t.purge(ctx)
		if err != nil {
			m.log.Error("purge failed", zap.String("task", t.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
			continue
		}
		if n > 0 {
			m.log.Info("purged expired records", zap.String("task", t.name), zap.Int64("count", n))
		}
	}
	return errors.Join(errs...)
}

// StartScheduler runs all tasks on the schedule until ctx is cancelled
func (m *Manager) StartScheduler(ctx context.Context) error {
	if m.schedule == "" {
		return fmt.Errorf("reaper has no schedule configured")
	}

	_, err := m.cron.AddFunc(m.schedule, func() {
		_ = m.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reaper: %w", err)
	}

	m.cron.Start()
	m.log.Info("reaper scheduler started", zap.String("schedule", m.schedule), zap.Int("tasks", len(m.tasks)))

	// Wait for context cancellation
	<-ctx.Done()
	m.log.Info("stopping reaper scheduler")
	<-m.cron.Stop().Done()

	return nil
}
