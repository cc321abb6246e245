package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSweepLocks = "leads.sweep_locks"

const TaskAppointmentReminders = "appointments.remind"

const TaskDailyDigest = "reports.daily_digest"

// DailyDigestPayload names the report day as YYYY-MM-DD. Empty means yesterday.
type DailyDigestPayload struct {
	Date string `json:"date,omitempty"`
}

func NewSweepLocksTask() *asynq.Task {
	return asynq.NewTask(TaskSweepLocks, nil)
}

func NewAppointmentRemindersTask() *asynq.Task {
	return asynq.NewTask(TaskAppointmentReminders, nil)
}

func NewDailyDigestTask(payload DailyDigestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDailyDigest, data), nil
}

func ParseDailyDigestPayload(task *asynq.Task) (DailyDigestPayload, error) {
	var payload DailyDigestPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DailyDigestPayload{}, err
	}
	return payload, nil
}
