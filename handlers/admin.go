package handlers

import (
	"net/http"
	"strconv"

	"bookline/models"
	"bookline/services/appointment"

	"github.com/gin-gonic/gin"
)

// AdminHandler encapsulates the backoffice operations on appointments.
type AdminHandler struct {
	Service appointment.AppointmentService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc appointment.AppointmentService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

// ListAppointmentsHandler returns appointments, optionally filtered by
// status, with limit/offset paging.
func (ah *AdminHandler) ListAppointmentsHandler(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)
	status := models.AppointmentStatus(c.Query("status"))

	appts, err := ah.Service.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// GetAppointmentHandler returns one appointment with its tokens hidden.
func (ah *AdminHandler) GetAppointmentHandler(c *gin.Context) {
	appt, err := ah.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// StatsHandler returns per-status appointment counts.
func (ah *AdminHandler) StatsHandler(c *gin.Context) {
	counts, err := ah.Service.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// UpcomingHandler returns confirmed appointments in the next N days.
func (ah *AdminHandler) UpcomingHandler(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	appts, err := ah.Service.Upcoming(c.Request.Context(), days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// UpdateStatusHandler drives the state machine directly. Confirming needs a
// scheduledAt in the payload; it is applied via Confirm so the reminder
// follows.
func (ah *AdminHandler) UpdateStatusHandler(c *gin.Context) {
	var input struct {
		Status      models.AppointmentStatus `json:"status" binding:"required"`
		ScheduledAt string                   `json:"scheduledAt"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	id := c.Param("id")
	if input.Status == models.StatusConfirmed && input.ScheduledAt != "" {
		at, ok := parseTimeField(c, input.ScheduledAt, "scheduledAt")
		if !ok {
			return
		}
		result, err := ah.Service.Confirm(c.Request.Context(), id, at)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	result, err := ah.Service.UpdateStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RescheduleHandler moves the appointment to a new slot without asking the
// client (pending or confirmed appointments only).
func (ah *AdminHandler) RescheduleHandler(c *gin.Context) {
	var input struct {
		NewAt string `json:"newAt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	at, ok := parseTimeField(c, input.NewAt, "newAt")
	if !ok {
		return
	}

	result, err := ah.Service.Reschedule(c.Request.Context(), c.Param("id"), at)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ProposeRescheduleHandler suggests a new slot to the client and waits for
// their accept/reject.
func (ah *AdminHandler) ProposeRescheduleHandler(c *gin.Context) {
	var input struct {
		ProposedAt string `json:"proposedAt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	at, ok := parseTimeField(c, input.ProposedAt, "proposedAt")
	if !ok {
		return
	}

	result, err := ah.Service.ProposeReschedule(c.Request.Context(), c.Param("id"), at)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteAppointmentHandler removes the appointment and its reminder.
func (ah *AdminHandler) DeleteAppointmentHandler(c *gin.Context) {
	if err := ah.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// SendReminderHandler pushes the reminder email immediately.
func (ah *AdminHandler) SendReminderHandler(c *gin.Context) {
	if err := ah.Service.SendReminderNow(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}
