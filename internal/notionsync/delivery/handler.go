package delivery

import (
	"errors"
	"log"
	"net/http"

	authdelivery "studysync-backend/internal/auth/delivery"
	authusecase "studysync-backend/internal/auth/usecase"
	"studysync-backend/internal/notionsync/usecase"

	"github.com/gin-gonic/gin"
)

type NotionSyncHandler struct {
	publisher usecase.PublisherUsecase
}

func NewNotionSyncHandler(publisher usecase.PublisherUsecase) *NotionSyncHandler {
	return &NotionSyncHandler{publisher: publisher}
}

// CreateParentPage creates (or returns) the container page that all
// summary pages nest under.
func (h *NotionSyncHandler) CreateParentPage(c *gin.Context) {
	email := authdelivery.UserEmail(c)

	pageID, err := h.publisher.CreateParentPage(c.Request.Context(), email)
	if err != nil {
		switch {
		case errors.Is(err, authusecase.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, usecase.ErrNotionNotConnected):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Notion workspace not connected"})
		default:
			log.Printf("[Notion] parent page creation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create parent page"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"parent_page_id": pageID})
}

// PublishSummaries pushes all unsynced summaries to Notion.
func (h *NotionSyncHandler) PublishSummaries(c *gin.Context) {
	email := authdelivery.UserEmail(c)

	result, err := h.publisher.PublishSummaries(c.Request.Context(), email)
	if err != nil {
		switch {
		case errors.Is(err, authusecase.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, usecase.ErrNotionNotConnected):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Notion workspace not connected"})
		case errors.Is(err, usecase.ErrMissingParentPage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "parent page not created yet"})
		default:
			log.Printf("[Notion] publish failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish summaries"})
		}
		return
	}

	if result.AlreadySynced {
		c.JSON(http.StatusOK, gin.H{"message": "All summaries already synced!"})
		return
	}

	c.JSON(http.StatusOK, result)
}
