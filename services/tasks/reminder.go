package tasks

import (
	"encoding/json"
	"time"

	"bookline/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// ReminderQueue is the dedicated asynq queue for appointment reminders.
const ReminderQueue = "reminders"

// NewReminderTask builds the delayed reminder job for one appointment.
// The task id is derived from the appointment id so the broker itself
// rejects a duplicate enqueue for the same appointment.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.Queue(ReminderQueue),
		asynq.TaskID("reminder:" + payload.AppointmentID),
		asynq.MaxRetry(5),
	}

	return task, opts, nil
}
