package repository

import authdomain "studysync-backend/internal/auth/domain"

// UserRepository defines persistence operations for users and their
// OAuth credentials.
type UserRepository interface {
	Create(user *authdomain.User) error
	FindByEmail(email string) (*authdomain.User, error)
	// FindByEmailWithCourses preloads courses, materials, events and summaries.
	FindByEmailWithCourses(email string) (*authdomain.User, error)
	Update(user *authdomain.User) error
	// ListWithCredentials returns users holding both Google and Notion
	// credentials, for the scheduled pipeline.
	ListWithCredentials() ([]*authdomain.User, error)
}
