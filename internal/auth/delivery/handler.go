package delivery

import (
	"errors"
	"log"
	"net/http"

	"studysync-backend/internal/auth/usecase"
	"studysync-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	config      *config.Config
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		config:      cfg,
	}
}

// GoogleLogin redirects the browser to the Google consent screen.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, h.authUsecase.GoogleAuthURL())
}

// GoogleCallback completes the OAuth flow, sets the session cookie and
// sends the browser back to the frontend.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	token, err := h.authUsecase.HandleGoogleCallback(c.Request.Context(), code)
	if err != nil {
		log.Printf("[Auth] google callback failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "OAuth failed"})
		return
	}

	maxAge := int(h.config.JWTExpiry.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.config.FrontendURL+"/data/google-classroom")
}

// NotionLogin redirects the browser to the Notion consent screen.
func (h *AuthHandler) NotionLogin(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, h.authUsecase.NotionAuthURL())
}

// NotionCallback stores the Notion workspace connection for the signed-in
// user. Requires an existing session.
func (h *AuthHandler) NotionCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	email := UserEmail(c)
	if err := h.authUsecase.HandleNotionCallback(c.Request.Context(), email, code); err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Printf("[Auth] notion callback failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Notion connection failed"})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.config.FrontendURL+"/settings")
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the current user's aggregate view.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUsecase.GetMe(UserEmail(c))
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":   user.Email,
		"name":    user.Name,
		"courses": user.Courses,
		"notion": gin.H{
			"connected":      user.HasNotionConnection(),
			"workspace_id":   user.NotionWorkspaceID,
			"workspace_name": user.NotionWorkspaceName,
			"parent_page_id": user.NotionParentPageID,
			"connected_at":   user.NotionConnectedAt,
		},
	})
}
