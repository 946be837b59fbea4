package main

import (
	"context"
	"log"

	api "studysync-backend/cmd/api"
	authdomain "studysync-backend/internal/auth/domain"
	authRepo "studysync-backend/internal/auth/repository"
	authUsecase "studysync-backend/internal/auth/usecase"
	coursedomain "studysync-backend/internal/course/domain"
	courseRepo "studysync-backend/internal/course/repository"
	courseUsecase "studysync-backend/internal/course/usecase"
	notionUsecase "studysync-backend/internal/notionsync/usecase"
	"studysync-backend/internal/pipeline"
	summaryUsecase "studysync-backend/internal/summary/usecase"
	"studysync-backend/pkg/config"
	"studysync-backend/pkg/database"
	"studysync-backend/pkg/gemini"
	"studysync-backend/pkg/google"
	"studysync-backend/pkg/notion"

	"github.com/robfig/cron/v3"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &coursedomain.Course{}, &coursedomain.Material{}, &coursedomain.CalendarEvent{}, &coursedomain.Summary{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	courseRepository := courseRepo.NewCourseRepository(db)

	// Initialize external service clients
	googleService := google.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	geminiClient := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	notionClient := notion.NewClient(cfg.NotionClientID, cfg.NotionClientSecret, cfg.NotionRedirectURI)

	// Initialize use cases (dependency injection)
	authUc := authUsecase.NewAuthUsecase(userRepository, googleService, notionClient, cfg)
	courseUc := courseUsecase.NewCourseUsecase(userRepository, courseRepository, googleService, googleService, googleService)
	summarizerUc := summaryUsecase.NewSummarizerUsecase(userRepository, courseRepository, geminiClient)
	publisherUc := notionUsecase.NewPublisherUsecase(userRepository, courseRepository, notionClient)

	// Scheduled full-pipeline sync, if configured
	if cfg.SyncSchedule != "" {
		runner := pipeline.NewRunner(userRepository, courseUc, summarizerUc, publisherUc)
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.SyncSchedule, func() {
			runner.Run(context.Background())
		}); err != nil {
			log.Fatal("Invalid sync schedule:", err)
		}
		scheduler.Start()
		log.Printf("Scheduled sync enabled: %s", cfg.SyncSchedule)
	}

	// Initialize HTTP handler
	handler := api.NewHandler(authUc, courseUc, summarizerUc, publisherUc, cfg, db)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
