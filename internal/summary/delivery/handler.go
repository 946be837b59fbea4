package delivery

import (
	"errors"
	"log"
	"net/http"

	authdelivery "studysync-backend/internal/auth/delivery"
	authusecase "studysync-backend/internal/auth/usecase"
	"studysync-backend/internal/summary/usecase"

	"github.com/gin-gonic/gin"
)

type SummaryHandler struct {
	summarizer usecase.SummarizerUsecase
}

func NewSummaryHandler(summarizer usecase.SummarizerUsecase) *SummaryHandler {
	return &SummaryHandler{summarizer: summarizer}
}

// Generate runs summarization over all of the user's courses and reports
// the per-course outcomes.
func (h *SummaryHandler) Generate(c *gin.Context) {
	email := authdelivery.UserEmail(c)

	results, err := h.summarizer.GenerateSummaries(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, authusecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Printf("[Summarizer] generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate summaries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// List returns the user's courses with their accumulated summaries.
func (h *SummaryHandler) List(c *gin.Context) {
	email := authdelivery.UserEmail(c)

	courses, err := h.summarizer.ListSummaries(email)
	if err != nil {
		if errors.Is(err, authusecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch summaries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}
