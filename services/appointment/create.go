package appointment

import (
	"context"
	"fmt"

	"bookline/models"
	"bookline/services/notification"
	"bookline/services/rules"
	"bookline/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Create registers a new public appointment request: it validates the
// booking horizon, upserts the contact, mints the appointment's token pair
// and persists it as pending. The admin is emailed single-use action links
// to accept, reject or propose another time.
func (s *DefaultAppointmentService) Create(ctx context.Context, req CreateRequest) (*TransitionResult, error) {
	if req.Timezone == "" {
		return nil, rules.NewInvalidDateError("timezone is required")
	}
	requestedAt, err := s.TZ.ParseInZone(req.RequestedAt, req.Timezone)
	if err != nil {
		return nil, rules.NewInvalidDateError(fmt.Sprintf("invalid requested date: %v", err))
	}
	now := s.Clock.Now()
	if err := rules.ValidateBookingHorizon(requestedAt, req.Timezone, now, s.TZ); err != nil {
		return nil, err
	}

	contact, err := s.Contacts.UpsertByEmail(ctx, &models.Contact{
		ID:           uuid.New().String(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		ConsentGiven: req.ConsentGiven,
	})
	if err != nil {
		return nil, err
	}

	confirmationToken, cancellationToken, err := utils.GenerateTokenPair()
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		ID:                uuid.New().String(),
		ContactID:         contact.ID,
		Status:            models.StatusPending,
		RequestedAt:       requestedAt,
		Timezone:          req.Timezone,
		ConfirmationToken: confirmationToken,
		CancellationToken: cancellationToken,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Appointments.Create(appt); err != nil {
		return nil, err
	}
	s.Logger.Info("appointment requested",
		zap.String("appointmentId", appt.ID),
		zap.String("contactId", contact.ID),
		zap.Time("requestedAt", requestedAt))

	result := &TransitionResult{Appointment: appt}
	result.NotificationIssue = s.notify(func() error {
		if err := s.Notifier.SendAppointmentRequested(ctx, contact, appt); err != nil {
			return err
		}
		links, err := s.adminActionLinks(ctx, appt.ID)
		if err != nil {
			return err
		}
		return s.Notifier.SendAdminActionRequest(ctx, contact, appt, links)
	}, "request", appt.ID)

	return result, nil
}

// adminActionLinks mints one single-use token per admin action and renders
// the URLs carried in the backoffice email.
func (s *DefaultAppointmentService) adminActionLinks(ctx context.Context, apptID string) (notification.ActionLinks, error) {
	var links notification.ActionLinks
	for _, a := range []struct {
		action string
		target *string
		path   string
	}{
		{models.ActionAccept, &links.Accept, "accept"},
		{models.ActionReject, &links.Reject, "reject"},
		{models.ActionReschedule, &links.Reschedule, "reschedule"},
	} {
		secret, err := s.Tokens.Create(ctx, models.EntityAppointment, apptID, a.action)
		if err != nil {
			return notification.ActionLinks{}, err
		}
		*a.target = fmt.Sprintf("%s/api/actions/%s?token=%s", s.BaseURL, a.path, secret)
	}
	return links, nil
}
