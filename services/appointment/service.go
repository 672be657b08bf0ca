// Package appointment implements the appointment lifecycle orchestrator:
// the state machine tying together validation rules, persistence, reminder
// coordination and notification dispatch.
package appointment

import (
	"context"
	"fmt"
	"time"

	appointmentRepo "bookline/database/repository/appointment"
	contactRepo "bookline/database/repository/contact"
	"bookline/models"
	"bookline/services/notification"
	"bookline/services/reminder"
	"bookline/services/token"
	"bookline/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CreateRequest carries a public appointment request.
type CreateRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone"`
	ConsentGiven bool   `json:"consentGiven"`
	RequestedAt  string `json:"requestedAt" binding:"required"`
	Timezone     string `json:"timezone" binding:"required"`
}

// TransitionResult is the outcome of a lifecycle operation. The transition
// itself has committed whenever the error return is nil; NotificationIssue
// and ReminderIssue report best-effort side effects that failed after the
// commit. They degrade the response, they never roll it back.
type TransitionResult struct {
	Appointment       *models.Appointment `json:"appointment"`
	NotificationIssue string              `json:"notificationIssue,omitempty"`
	ReminderIssue     string              `json:"reminderIssue,omitempty"`
}

// CancelCheck is the read-only answer to "can this still be cancelled".
type CancelCheck struct {
	Allowed        bool    `json:"allowed"`
	HoursRemaining float64 `json:"hoursRemaining"`
}

// AppointmentService is the lifecycle orchestrator's surface.
type AppointmentService interface {
	Create(ctx context.Context, req CreateRequest) (*TransitionResult, error)
	Get(ctx context.Context, id string) (*models.Appointment, error)
	Accept(ctx context.Context, id string) (*TransitionResult, error)
	Confirm(ctx context.Context, id string, scheduledAt time.Time) (*TransitionResult, error)
	ConfirmByToken(ctx context.Context, id, tok string) (*TransitionResult, error)
	CancelByToken(ctx context.Context, id, tok string) (*TransitionResult, error)
	CanCancel(ctx context.Context, id, tok string) (*CancelCheck, error)
	AcceptReschedule(ctx context.Context, id, tok string) (*TransitionResult, error)
	RejectReschedule(ctx context.Context, id, tok string) (*TransitionResult, error)

	// Admin operations; callers are authorized upstream.
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*TransitionResult, error)
	Reschedule(ctx context.Context, id string, newAt time.Time) (*TransitionResult, error)
	ProposeReschedule(ctx context.Context, id string, proposedAt time.Time) (*TransitionResult, error)
	Delete(ctx context.Context, id string) error
	SendReminderNow(ctx context.Context, id string) error
	List(ctx context.Context, status models.AppointmentStatus, limit, offset int64) ([]models.Appointment, error)
	Stats(ctx context.Context) (map[models.AppointmentStatus]int64, error)
	Upcoming(ctx context.Context, days int) ([]models.Appointment, error)
}

// DefaultAppointmentService is the production orchestrator. Every mutating
// operation serializes on the appointment id so the status transition and
// its reminder coordination are atomic to outside observers.
type DefaultAppointmentService struct {
	Appointments appointmentRepo.AppointmentRepository
	Contacts     contactRepo.ContactRepository
	Reminders    reminder.Coordinator
	Tokens       token.Registry
	Notifier     notification.NotificationService
	Clock        utils.Clock
	TZ           *utils.TimeZoneConverter
	BaseURL      string
	Cache        *redis.Client // optional stats cache; nil disables caching
	Logger       *zap.Logger

	locks *utils.KeyedMutex
}

func NewDefaultAppointmentService(
	appointments appointmentRepo.AppointmentRepository,
	contacts contactRepo.ContactRepository,
	reminders reminder.Coordinator,
	tokens token.Registry,
	notifier notification.NotificationService,
	clock utils.Clock,
	tz *utils.TimeZoneConverter,
	baseURL string,
	cache *redis.Client,
	logger *zap.Logger,
) *DefaultAppointmentService {
	return &DefaultAppointmentService{
		Appointments: appointments,
		Contacts:     contacts,
		Reminders:    reminders,
		Tokens:       tokens,
		Notifier:     notifier,
		Clock:        clock,
		TZ:           tz,
		BaseURL:      baseURL,
		Cache:        cache,
		Logger:       logger,
		locks:        utils.NewKeyedMutex(),
	}
}

// mustLoad fetches the appointment or reports NotFoundError.
// Get returns the appointment or a NotFoundError.
func (s *DefaultAppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	return s.mustLoad(ctx, id)
}

func (s *DefaultAppointmentService) mustLoad(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, NewNotFoundError(fmt.Sprintf("appointment %s not found", id))
	}
	return appt, nil
}

// contactFor loads the appointment's contact for notification purposes.
func (s *DefaultAppointmentService) contactFor(ctx context.Context, appt *models.Appointment) (*models.Contact, error) {
	contact, err := s.Contacts.GetByID(ctx, appt.ContactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, NewNotFoundError(fmt.Sprintf("contact %s not found", appt.ContactID))
	}
	return contact, nil
}

// notify runs one best-effort notification and returns the issue text for
// the transition result, empty on success.
func (s *DefaultAppointmentService) notify(send func() error, what, apptID string) string {
	if err := send(); err != nil {
		s.Logger.Warn("notification dispatch failed",
			zap.String("kind", what),
			zap.String("appointmentId", apptID),
			zap.Error(err))
		return fmt.Sprintf("failed to send %s notification", what)
	}
	return ""
}
