package models

// ReminderPayload is the delayed-job payload. Only the appointment id is
// carried; everything else is reloaded at fire time so a reschedule between
// enqueue and fire cannot leak stale data into the email.
type ReminderPayload struct {
	AppointmentID string `json:"appointmentId"`
}
