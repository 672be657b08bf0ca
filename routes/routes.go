package routes

import (
	"net/http"
	"time"

	"bookline/handlers"
	"bookline/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the handlers the router wires up.
type HandlerBundle struct {
	Appointments *handlers.AppointmentHandler
	Admin        *handlers.AdminHandler
	Actions      *handlers.ActionHandler
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAppointmentRoutes(r, hb)
	RegisterActionRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Bookline"})
	})
}

// RegisterAdminRoutes sets up endpoints for backoffice operations.
func RegisterAdminRoutes(r *gin.Engine, hb *HandlerBundle) {
	adminGroup := r.Group("/api/admin/appointments")
	{
		adminGroup.Use(middleware.JWTAuthAdminMiddleware())
		adminGroup.GET("", hb.Admin.ListAppointmentsHandler)
		adminGroup.GET("/stats", hb.Admin.StatsHandler)
		adminGroup.GET("/upcoming", hb.Admin.UpcomingHandler)
		adminGroup.GET("/:id", hb.Admin.GetAppointmentHandler)
		adminGroup.PUT("/:id/status", hb.Admin.UpdateStatusHandler)
		adminGroup.PUT("/:id/schedule", hb.Admin.RescheduleHandler)
		adminGroup.POST("/:id/propose", hb.Admin.ProposeRescheduleHandler)
		adminGroup.POST("/:id/send-reminder", hb.Admin.SendReminderHandler)
		adminGroup.DELETE("/:id", hb.Admin.DeleteAppointmentHandler)
	}
}
