package notification

import (
	"context"
	"fmt"
	"time"

	"bookline/models"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// MailNotificationService sends transition emails over SMTP.
type MailNotificationService struct {
	Dialer     *gomail.Dialer
	From       string
	AdminEmail string
	BaseURL    string
	Logger     *zap.Logger
}

func NewMailNotificationService(dialer *gomail.Dialer, from, adminEmail, baseURL string, logger *zap.Logger) *MailNotificationService {
	return &MailNotificationService{
		Dialer:     dialer,
		From:       from,
		AdminEmail: adminEmail,
		BaseURL:    baseURL,
		Logger:     logger,
	}
}

// Send delivers one HTML email.
func (s *MailNotificationService) Send(_ context.Context, recipient, subject, bodyHTML string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", bodyHTML)

	if err := s.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", recipient, err)
	}
	s.Logger.Info("email sent", zap.String("recipient", recipient), zap.String("subject", subject))
	return nil
}

func (s *MailNotificationService) SendAppointmentRequested(ctx context.Context, contact *models.Contact, appt *models.Appointment) error {
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>We received your appointment request for %s. We will confirm a time slot shortly.</p>",
		contact.FirstName, formatSlot(appt.RequestedAt, appt.Timezone),
	)
	return s.Send(ctx, contact.Email, "Appointment request received", body)
}

// SendAdminActionRequest notifies the backoffice of a new request, with
// single-use accept/reject/propose links.
func (s *MailNotificationService) SendAdminActionRequest(ctx context.Context, contact *models.Contact, appt *models.Appointment, links ActionLinks) error {
	body := fmt.Sprintf(
		"<p>New appointment request from %s %s (%s) for %s.</p><p><a href=%q>Accept</a> &middot; <a href=%q>Reject</a> &middot; <a href=%q>Propose another time</a></p>",
		contact.FirstName, contact.LastName, contact.Email, formatSlot(appt.RequestedAt, appt.Timezone),
		links.Accept, links.Reject, links.Reschedule,
	)
	return s.Send(ctx, s.AdminEmail, "New appointment request", body)
}

func (s *MailNotificationService) SendAppointmentConfirmed(ctx context.Context, contact *models.Contact, appt *models.Appointment) error {
	cancelLink := fmt.Sprintf("%s/api/appointments/%s/cancel?token=%s", s.BaseURL, appt.ID, appt.CancellationToken)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your appointment is confirmed for %s.</p><p>Need to cancel? Use <a href=%q>this link</a> at least 24 hours in advance.</p>",
		contact.FirstName, formatSlot(*appt.ScheduledAt, appt.Timezone), cancelLink,
	)
	return s.Send(ctx, contact.Email, "Appointment confirmed", body)
}

func (s *MailNotificationService) SendAppointmentCancelled(ctx context.Context, contact *models.Contact, appt *models.Appointment) error {
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your appointment has been cancelled. Feel free to book a new one any time.</p>",
		contact.FirstName,
	)
	if err := s.Send(ctx, contact.Email, "Appointment cancelled", body); err != nil {
		return err
	}
	adminBody := fmt.Sprintf("<p>Appointment %s (%s %s) was cancelled.</p>", appt.ID, contact.FirstName, contact.LastName)
	return s.Send(ctx, s.AdminEmail, "Appointment cancelled", adminBody)
}

func (s *MailNotificationService) SendRescheduleProposed(ctx context.Context, contact *models.Contact, appt *models.Appointment) error {
	acceptLink := fmt.Sprintf("%s/api/appointments/%s/reschedule/accept?token=%s", s.BaseURL, appt.ID, appt.ConfirmationToken)
	rejectLink := fmt.Sprintf("%s/api/appointments/%s/reschedule/reject?token=%s", s.BaseURL, appt.ID, appt.CancellationToken)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>We propose to move your appointment to %s.</p><p><a href=%q>Accept the new time</a> or <a href=%q>decline and cancel</a>.</p>",
		contact.FirstName, formatSlot(*appt.ScheduledAt, appt.Timezone), acceptLink, rejectLink,
	)
	return s.Send(ctx, contact.Email, "New time proposed for your appointment", body)
}

func (s *MailNotificationService) SendReminder(ctx context.Context, contact *models.Contact, appt *models.Appointment) error {
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>A reminder: your appointment is tomorrow, %s.</p>",
		contact.FirstName, formatSlot(*appt.ScheduledAt, appt.Timezone),
	)
	return s.Send(ctx, contact.Email, "Appointment reminder", body)
}

func formatSlot(t time.Time, zone string) string {
	if loc, err := time.LoadLocation(zone); err == nil {
		t = t.In(loc)
	}
	return t.Format("Monday, 2 January 2006 at 15:04")
}
