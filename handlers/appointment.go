package handlers

import (
	"net/http"
	"time"

	"bookline/services/appointment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler exposes the public, token-authorized surface.
type AppointmentHandler struct {
	Service appointment.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(svc appointment.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{Service: svc}
}

// CreateAppointmentHandler registers a new appointment request.
func (ah *AppointmentHandler) CreateAppointmentHandler(c *gin.Context) {
	var req appointment.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result, err := ah.Service.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// tokenFromRequest reads the action secret from the query string or, for
// POSTed forms, the body. Links in emails carry it as ?token=.
func tokenFromRequest(c *gin.Context) string {
	if tok := c.Query("token"); tok != "" {
		return tok
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		return body.Token
	}
	return ""
}

// ConfirmAppointmentHandler confirms via the appointment's confirmation
// token, at the slot proposed earlier.
func (ah *AppointmentHandler) ConfirmAppointmentHandler(c *gin.Context) {
	result, err := ah.Service.ConfirmByToken(c.Request.Context(), c.Param("id"), tokenFromRequest(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CancelAppointmentHandler cancels via the appointment's cancellation token.
func (ah *AppointmentHandler) CancelAppointmentHandler(c *gin.Context) {
	result, err := ah.Service.CancelByToken(c.Request.Context(), c.Param("id"), tokenFromRequest(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CanCancelHandler is the read-only window check a client UI calls before
// offering the cancel button.
func (ah *AppointmentHandler) CanCancelHandler(c *gin.Context) {
	check, err := ah.Service.CanCancel(c.Request.Context(), c.Param("id"), c.Query("token"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

// AcceptRescheduleHandler lets the client accept a proposed new slot.
func (ah *AppointmentHandler) AcceptRescheduleHandler(c *gin.Context) {
	result, err := ah.Service.AcceptReschedule(c.Request.Context(), c.Param("id"), tokenFromRequest(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RejectRescheduleHandler lets the client decline a proposed new slot,
// which cancels the appointment.
func (ah *AppointmentHandler) RejectRescheduleHandler(c *gin.Context) {
	result, err := ah.Service.RejectReschedule(c.Request.Context(), c.Param("id"), tokenFromRequest(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// parseTimeField parses an RFC3339 instant from admin payloads.
func parseTimeField(c *gin.Context, raw, field string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		zap.L().Debug("Bad time field", zap.String("field", field), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": field + " must be RFC3339"})
		return time.Time{}, false
	}
	return t, true
}
