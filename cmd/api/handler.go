package api

import (
	authUsecase "studysync-backend/internal/auth/usecase"
	courseDelivery "studysync-backend/internal/course/delivery"
	courseUsecasePkg "studysync-backend/internal/course/usecase"
	notionDelivery "studysync-backend/internal/notionsync/delivery"
	notionUsecasePkg "studysync-backend/internal/notionsync/usecase"
	summaryDelivery "studysync-backend/internal/summary/delivery"
	summaryUsecasePkg "studysync-backend/internal/summary/usecase"
	"studysync-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	authUsecase    authUsecase.AuthUsecase
	config         *config.Config
	db             *gorm.DB
	courseHandler  *courseDelivery.CourseHandler
	summaryHandler *summaryDelivery.SummaryHandler
	notionHandler  *notionDelivery.NotionSyncHandler
}

func NewHandler(authUc authUsecase.AuthUsecase, courseUc courseUsecasePkg.CourseUsecase, summarizerUc summaryUsecasePkg.SummarizerUsecase, publisherUc notionUsecasePkg.PublisherUsecase, cfg *config.Config, db *gorm.DB) *Handler {
	return &Handler{
		authUsecase:    authUc,
		config:         cfg,
		db:             db,
		courseHandler:  courseDelivery.NewCourseHandler(courseUc),
		summaryHandler: summaryDelivery.NewSummaryHandler(summarizerUc),
		notionHandler:  notionDelivery.NewNotionSyncHandler(publisherUc),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h)

	return r.Run(addr)
}
