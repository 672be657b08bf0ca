package routes

import (
	"bookline/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAppointmentRoutes registers the public, token-authorized
// appointment endpoints. The surface is unauthenticated, so it sits behind
// the per-IP rate limiter.
func RegisterAppointmentRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.RateLimitMiddleware())
		api.POST("", hb.Appointments.CreateAppointmentHandler)
		api.GET("/:id/can-cancel", hb.Appointments.CanCancelHandler)

		// Registered for GET as well: these actions arrive as plain links
		// from email clients.
		for _, method := range []string{"GET", "POST"} {
			api.Handle(method, "/:id/confirm", hb.Appointments.ConfirmAppointmentHandler)
			api.Handle(method, "/:id/cancel", hb.Appointments.CancelAppointmentHandler)
			api.Handle(method, "/:id/reschedule/accept", hb.Appointments.AcceptRescheduleHandler)
			api.Handle(method, "/:id/reschedule/reject", hb.Appointments.RejectRescheduleHandler)
		}
	}
}

// RegisterActionRoutes registers the single-use email-link actions. These
// arrive as plain GETs from a mail client, token in the query string.
func RegisterActionRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/actions")
	{
		api.Use(middleware.RateLimitMiddleware())
		api.GET("/verify", hb.Actions.VerifyTokenHandler)
		api.GET("/accept", hb.Actions.AcceptActionHandler)
		api.GET("/reject", hb.Actions.RejectActionHandler)
		api.GET("/reschedule", hb.Actions.RescheduleActionHandler)
	}
}
