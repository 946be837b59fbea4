package usecase

import (
	"context"

	authdomain "studysync-backend/internal/auth/domain"
)

// AuthUsecase drives the Google/Notion OAuth flows and the session tokens
// protecting all data-access endpoints.
type AuthUsecase interface {
	// GoogleAuthURL returns the Google consent URL.
	GoogleAuthURL() string
	// HandleGoogleCallback exchanges the authorization code, upserts the
	// user and returns a signed session token for the cookie.
	HandleGoogleCallback(ctx context.Context, code string) (string, error)

	// NotionAuthURL returns the Notion consent URL.
	NotionAuthURL() string
	// HandleNotionCallback exchanges the authorization code and stores the
	// workspace connection on the user.
	HandleNotionCallback(ctx context.Context, email, code string) error

	// ValidateToken verifies a session token and returns the subject email.
	ValidateToken(tokenString string) (string, error)

	// GetMe returns the user's aggregate view with courses preloaded.
	GetMe(email string) (*authdomain.User, error)
}
