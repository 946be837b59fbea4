package domain

import (
	"time"

	coursedomain "studysync-backend/internal/course/domain"
)

// User is identified by email. Created on the first successful Google
// OAuth callback, updated on every re-auth and token refresh.
type User struct {
	ID    string `json:"id" gorm:"primaryKey"`
	Email string `json:"email" gorm:"uniqueIndex;not null"`
	Name  string `json:"name,omitempty"`

	// Google OAuth credentials.
	GoogleAccessToken  string    `json:"-"`
	GoogleRefreshToken string    `json:"-"`
	GoogleTokenType    string    `json:"-"`
	GoogleScope        string    `json:"-"`
	GoogleTokenExpiry  time.Time `json:"-"`

	// Notion OAuth state and workspace metadata.
	NotionAccessToken   string     `json:"-"`
	NotionBotID         string     `json:"notion_bot_id,omitempty"`
	NotionWorkspaceID   string     `json:"notion_workspace_id,omitempty"`
	NotionWorkspaceName string     `json:"notion_workspace_name,omitempty"`
	NotionParentPageID  string     `json:"notion_parent_page_id,omitempty"`
	NotionConnectedAt   *time.Time `json:"notion_connected_at,omitempty"`

	Courses []coursedomain.Course `json:"courses,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// HasGoogleCredentials reports whether the user holds usable Google tokens.
// An expired access token still counts when a refresh token is present.
func (u *User) HasGoogleCredentials() bool {
	if u.GoogleAccessToken == "" {
		return false
	}
	if u.GoogleRefreshToken == "" && time.Now().After(u.GoogleTokenExpiry) {
		return false
	}
	return true
}

// HasNotionConnection reports whether the Notion workspace is linked.
func (u *User) HasNotionConnection() bool {
	return u.NotionAccessToken != ""
}
