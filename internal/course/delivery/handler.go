package delivery

import (
	"context"
	"errors"
	"log"
	"net/http"

	authdelivery "studysync-backend/internal/auth/delivery"
	authusecase "studysync-backend/internal/auth/usecase"
	coursedomain "studysync-backend/internal/course/domain"
	"studysync-backend/internal/course/usecase"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	courseUsecase usecase.CourseUsecase
}

func NewCourseHandler(courseUsecase usecase.CourseUsecase) *CourseHandler {
	return &CourseHandler{courseUsecase: courseUsecase}
}

// SyncCourses refreshes the user's course list from Classroom.
func (h *CourseHandler) SyncCourses(c *gin.Context) {
	h.runSync(c, "course sync", h.courseUsecase.SyncCourses)
}

// SyncMaterials re-extracts material text for every course.
func (h *CourseHandler) SyncMaterials(c *gin.Context) {
	h.runSync(c, "material sync", h.courseUsecase.SyncMaterials)
}

// SyncEvents refreshes upcoming calendar events for every course.
func (h *CourseHandler) SyncEvents(c *gin.Context) {
	h.runSync(c, "event sync", h.courseUsecase.SyncEvents)
}

// ListCourses returns the stored courses without touching Google.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	email := authdelivery.UserEmail(c)

	courses, err := h.courseUsecase.ListCourses(email)
	if err != nil {
		h.writeError(c, "course listing", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) runSync(c *gin.Context, op string, sync func(ctx context.Context, email string) ([]*coursedomain.Course, error)) {
	email := authdelivery.UserEmail(c)

	courses, err := sync(c.Request.Context(), email)
	if err != nil {
		h.writeError(c, op, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, authusecase.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, usecase.ErrMissingGoogleCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google account not connected"})
	default:
		log.Printf("[Course] %s failed: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync course data"})
	}
}
