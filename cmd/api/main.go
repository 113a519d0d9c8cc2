package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/config"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/database"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/handler"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/middleware"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/repository"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/router"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/service"
	cloud "github.com/AnasSAV/Quest-Learn-Backend/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Classroom{},
		&models.ClassroomMember{},
		&models.Assignment{},
		&models.Question{},
		&models.Attempt{},
		&models.Response{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(userRepo, service.TokenConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}, validate, logger)
	classroomService := service.NewClassroomService(classroomRepo, activityService, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, classroomRepo, activityService, validate, logger)
	questionService := service.NewQuestionService(questionRepo, assignmentRepo, classroomRepo, attemptRepo, uploader, validate, logger)
	attemptService := service.NewAttemptService(attemptRepo, assignmentRepo, questionRepo, classroomRepo, activityService, validate, logger)
	analyticsService := service.NewAnalyticsService(attemptRepo, assignmentRepo, questionRepo, classroomRepo, redisClient, cfg.AnalyticsCacheTTL, logger)
	exportService := service.NewExportService(attemptRepo, assignmentRepo, questionRepo, classroomRepo, userRepo, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	classroomHandler := handler.NewClassroomHandler(classroomService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	questionHandler := handler.NewQuestionHandler(questionService, cfg.MaxUploadMB, logger)
	attemptHandler := handler.NewAttemptHandler(attemptService, logger)
	resultHandler := handler.NewResultHandler(analyticsService, exportService, activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    cfg.MaxUploadMB * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		ClassroomHandler:  classroomHandler,
		AssignmentHandler: assignmentHandler,
		QuestionHandler:   questionHandler,
		AttemptHandler:    attemptHandler,
		ResultHandler:     resultHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
