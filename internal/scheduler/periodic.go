package scheduler

import (
	"context"
	"time"

	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Entry is one recurring job.
type Entry struct {
	Spec   string
	Task   *asynq.Task
	Unique time.Duration
}

// Entries lists the recurring jobs. Cron specs are read in the scheduler's
// timezone.
func Entries() ([]Entry, error) {
	digest, err := NewDailyDigestTask(DailyDigestPayload{})
	if err != nil {
		return nil, err
	}
	return []Entry{
		{Spec: "@every 1m", Task: NewSweepLocksTask(), Unique: 55 * time.Second},
		{Spec: "*/5 * * * *", Task: NewAppointmentRemindersTask(), Unique: 4 * time.Minute},
		{Spec: "0 7 * * *", Task: digest, Unique: time.Hour},
	}, nil
}

// Periodic enqueues the recurring jobs on their schedule.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	opt, err := redisOpt(cfg)
	if err != nil {
		return nil, err
	}

	loc := cfg.GetTimezone()
	if loc == nil {
		loc = time.UTC
	}
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: loc})

	entries, err := Entries()
	if err != nil {
		return nil, err
	}
	queue := queueName(cfg)
	for _, e := range entries {
		id, err := scheduler.Register(e.Spec, e.Task, asynq.Queue(queue), asynq.Unique(e.Unique))
		if err != nil {
			return nil, err
		}
		log.Info("periodic job registered", "task", e.Task.Type(), "spec", e.Spec, "entryId", id)
	}

	return &Periodic{scheduler: scheduler, log: log}, nil
}

func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}
	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler failed to start", "error", err)
		return
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
}
