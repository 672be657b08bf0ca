package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"bookline/config"
	appointmentRepo "bookline/database/repository/appointment"
	contactRepo "bookline/database/repository/contact"
	reminderRepo "bookline/database/repository/reminder"
	"bookline/models"
	"bookline/services/notification"
	"bookline/services/tasks"
	"bookline/utils"

	"github.com/hibiken/asynq"
)

// ReminderWorkerDeps is everything the worker needs to deliver a reminder.
type ReminderWorkerDeps struct {
	Appointments appointmentRepo.AppointmentRepository
	Contacts     contactRepo.ContactRepository
	Reminders    reminderRepo.ReminderRepository
	Notifier     notification.NotificationService
	Clock        utils.Clock
}

// InitReminderWorker runs the async worker in background.
func InitReminderWorker(deps ReminderWorkerDeps) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.ReminderQueue: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(deps))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[ReminderWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// handleReminderTask delivers the 24h-before email for one appointment. An
// appointment that disappeared or left the confirmed state since the job was
// enqueued completes silently; transport failures are returned so asynq
// retries them.
func handleReminderTask(deps ReminderWorkerDeps) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		appt, err := deps.Appointments.GetByID(ctx, p.AppointmentID)
		if err != nil {
			return err
		}
		if appt == nil {
			log.Printf("[ReminderHandler] ⚠️ Appointment %s gone, dropping reminder", p.AppointmentID)
			return nil
		}
		if appt.Status != models.StatusConfirmed {
			log.Printf("[ReminderHandler] ⚠️ Appointment %s is %s, skipping reminder", appt.ID, appt.Status)
			return nil
		}

		contact, err := deps.Contacts.GetByID(ctx, appt.ContactID)
		if err != nil {
			return err
		}
		if contact == nil {
			log.Printf("[ReminderHandler] ⚠️ Contact %s gone, dropping reminder for %s", appt.ContactID, appt.ID)
			return nil
		}

		if err := deps.Notifier.SendReminder(ctx, contact, appt); err != nil {
			log.Printf("[ReminderHandler] ❌ Failed to send reminder for %s: %v", appt.ID, err)
			return err
		}

		if err := deps.Reminders.MarkSent(ctx, appt.ID, deps.Clock.Now()); err != nil {
			// Delivered but not recorded; do not retry and double-send.
			log.Printf("[ReminderHandler] ⚠️ Failed to mark reminder sent for %s: %v", appt.ID, err)
		}
		log.Printf("[ReminderHandler] ⏰ Reminder sent for appointment %s", appt.ID)
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := utils.NewReminderQueueClient()
	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[ReminderWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
