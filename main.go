package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookline/config"
	"bookline/cron"
	"bookline/database"
	actionTokenRepo "bookline/database/repository/actiontoken"
	appointmentRepo "bookline/database/repository/appointment"
	contactRepo "bookline/database/repository/contact"
	reminderRepo "bookline/database/repository/reminder"
	"bookline/handlers"
	"bookline/routes"
	"bookline/services/appointment"
	"bookline/services/notification"
	"bookline/services/reminder"
	"bookline/services/token"
	"bookline/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gopkg.in/gomail.v2"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	tz, err := utils.NewTimeZoneConverter(config.AppConfig.ReferenceTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid reference timezone: %v", err)
	}
	clock := utils.SystemClock{}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()
	ctRepo := contactRepo.NewMongoContactRepo()
	remRepo := reminderRepo.NewMongoReminderRepo()
	tokRepo := actionTokenRepo.NewMongoActionTokenRepo()
	for name, ensure := range map[string]func() error{
		"appointments":  apptRepo.EnsureIndexes,
		"contacts":      ctRepo.EnsureIndexes,
		"reminders":     remRepo.EnsureIndexes,
		"action_tokens": tokRepo.EnsureIndexes,
	} {
		if err := ensure(); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure %s indexes: %v", name, err)
		}
	}

	// services.
	redisOpt := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}
	scheduler := reminder.NewAsynqScheduler(redisOpt)
	defer scheduler.Close()
	coordinator := reminder.NewDefaultCoordinator(remRepo, scheduler, clock, logger)

	registry := token.NewDefaultRegistry(tokRepo, clock,
		time.Duration(config.AppConfig.ActionTokenTTLHours)*time.Hour)

	dialer := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUser,
		config.AppConfig.SMTPPass,
	)
	notifier := notification.NewMailNotificationService(
		dialer,
		config.AppConfig.MailFrom,
		config.AppConfig.AdminEmail,
		config.AppConfig.PublicBaseURL,
		logger,
	)

	apptService := appointment.NewDefaultAppointmentService(
		apptRepo, ctRepo, coordinator, registry, notifier,
		clock, tz, config.AppConfig.PublicBaseURL,
		utils.GetCacheClient(), logger,
	)

	// Reminder delivery worker.
	cron.InitReminderWorker(cron.ReminderWorkerDeps{
		Appointments: apptRepo,
		Contacts:     ctRepo,
		Reminders:    remRepo,
		Notifier:     notifier,
		Clock:        clock,
	})

	// Assemble the handler bundle and register routes.
	handlerBundle := &routes.HandlerBundle{
		Appointments: handlers.NewAppointmentHandler(apptService),
		Admin:        handlers.NewAdminHandler(apptService),
		Actions:      handlers.NewActionHandler(registry, apptService),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
