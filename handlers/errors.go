package handlers

import (
	"errors"
	"net/http"

	"bookline/services/appointment"
	"bookline/services/rules"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondServiceError translates the service error taxonomy to HTTP. The
// code field is stable for clients; the message is advisory.
func respondServiceError(c *gin.Context, err error) {
	var (
		notFound *appointment.NotFoundError
		badToken *appointment.InvalidTokenError
		badState *appointment.InvalidStateError
		noSlot   *appointment.MissingScheduleError
		badDate  *rules.InvalidDateError
		badSlot  *rules.SlotLegalityError
		window   *rules.CancellationWindowError
	)

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"code": notFound.Code, "error": notFound.Message})
	case errors.As(err, &badToken):
		c.JSON(http.StatusUnauthorized, gin.H{"code": badToken.Code, "error": badToken.Message})
	case errors.As(err, &badState):
		c.JSON(http.StatusConflict, gin.H{"code": badState.Code, "error": badState.Message})
	case errors.As(err, &window):
		c.JSON(http.StatusConflict, gin.H{"code": window.Code, "error": window.Message})
	case errors.As(err, &noSlot):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": noSlot.Code, "error": noSlot.Message})
	case errors.As(err, &badDate):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": badDate.Code, "error": badDate.Message})
	case errors.As(err, &badSlot):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": badSlot.Code, "error": badSlot.Message})
	default:
		zap.L().Error("Unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
