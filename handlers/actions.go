package handlers

import (
	"net/http"

	"bookline/models"
	"bookline/services/appointment"
	"bookline/services/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ActionHandler executes the single-use links carried in admin emails.
// Every endpoint consumes its token atomically, so a second click on the
// same link reads as unauthorized.
type ActionHandler struct {
	Tokens  token.Registry
	Service appointment.AppointmentService
}

// NewActionHandler creates a new ActionHandler.
func NewActionHandler(reg token.Registry, svc appointment.AppointmentService) *ActionHandler {
	return &ActionHandler{Tokens: reg, Service: svc}
}

// VerifyTokenHandler is the read-only probe: it reports validity without
// consuming the token, and never discloses why an invalid one is invalid.
func (h *ActionHandler) VerifyTokenHandler(c *gin.Context) {
	result, err := h.Tokens.Verify(c.Request.Context(), c.Query("token"))
	if err != nil {
		zap.L().Error("Token verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// consume burns the token and checks it authorizes the named action on an
// appointment. A miss is reported as a generic invalid link.
func (h *ActionHandler) consume(c *gin.Context, action string) (string, bool) {
	record, err := h.Tokens.VerifyAndConsume(c.Request.Context(), c.Query("token"))
	if err != nil {
		zap.L().Error("Token consumption failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return "", false
	}
	if record == nil || record.EntityType != models.EntityAppointment || record.Action != action {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "invalidToken", "error": "this link is invalid or has already been used"})
		return "", false
	}
	return record.EntityID, true
}

// AcceptActionHandler confirms the appointment at the time on the table.
func (h *ActionHandler) AcceptActionHandler(c *gin.Context) {
	id, ok := h.consume(c, models.ActionAccept)
	if !ok {
		return
	}
	result, err := h.Service.Accept(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RejectActionHandler declines the request outright.
func (h *ActionHandler) RejectActionHandler(c *gin.Context) {
	id, ok := h.consume(c, models.ActionReject)
	if !ok {
		return
	}
	result, err := h.Service.UpdateStatus(c.Request.Context(), id, models.StatusRejected)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RescheduleActionHandler proposes another time. The new slot rides along
// as ?proposedAt= since the link itself only carries the token.
func (h *ActionHandler) RescheduleActionHandler(c *gin.Context) {
	raw := c.Query("proposedAt")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposedAt is required"})
		return
	}
	at, ok := parseTimeField(c, raw, "proposedAt")
	if !ok {
		return
	}

	id, ok := h.consume(c, models.ActionReschedule)
	if !ok {
		return
	}

	appt, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var result *appointment.TransitionResult
	if appt.Status == models.StatusPending {
		result, err = h.Service.Reschedule(c.Request.Context(), id, at)
	} else {
		result, err = h.Service.ProposeReschedule(c.Request.Context(), id, at)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
