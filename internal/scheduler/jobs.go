package scheduler

import (
	"context"
	"fmt"
	"time"

	"leaddesk_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// LockSweeper releases expired lead locks.
type LockSweeper interface {
	SweepExpiredLocks(ctx context.Context) (int64, error)
}

// DigestSender builds and mails the daily digest.
type DigestSender interface {
	ParseDate(value string) (time.Time, error)
	SendDailyDigest(ctx context.Context, day time.Time) (int, error)
}

// Jobs holds the task handlers. Any field may be nil; its task then becomes a no-op.
type Jobs struct {
	Locks     LockSweeper
	Reminders *Reminders
	Digest    DigestSender
	Log       *logger.Logger
}

func (j *Jobs) register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskSweepLocks, j.handleSweepLocks)
	mux.HandleFunc(TaskAppointmentReminders, j.handleAppointmentReminders)
	mux.HandleFunc(TaskDailyDigest, j.handleDailyDigest)
}

func (j *Jobs) handleSweepLocks(ctx context.Context, _ *asynq.Task) error {
	if j.Locks == nil {
		return nil
	}
	start := time.Now()
	released, err := j.Locks.SweepExpiredLocks(ctx)
	j.Log.JobRun(TaskSweepLocks, int(released), time.Since(start), err)
	return err
}

func (j *Jobs) handleAppointmentReminders(ctx context.Context, _ *asynq.Task) error {
	if j.Reminders == nil {
		return nil
	}
	start := time.Now()
	res, err := j.Reminders.Run(ctx)
	j.Log.JobRun(TaskAppointmentReminders, res.Sent, time.Since(start), err)
	if res.Failed > 0 {
		j.Log.Warn("some reminders failed", "failed", res.Failed, "skipped", res.Skipped)
	}
	return err
}

func (j *Jobs) handleDailyDigest(ctx context.Context, task *asynq.Task) error {
	if j.Digest == nil {
		return nil
	}
	payload, err := ParseDailyDigestPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	day, err := j.Digest.ParseDate(payload.Date)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	start := time.Now()
	sent, err := j.Digest.SendDailyDigest(ctx, day)
	j.Log.JobRun(TaskDailyDigest, sent, time.Since(start), err)
	return err
}
