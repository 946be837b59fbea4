package usecase

import (
	"context"
	"errors"

	coursedomain "studysync-backend/internal/course/domain"
	"studysync-backend/pkg/google"
)

// ErrMissingGoogleCredentials signals the user has no usable Google
// tokens; this is a caller error, never retried internally.
var ErrMissingGoogleCredentials = errors.New("missing google credentials")

// CourseUsecase covers course, material and calendar synchronization.
type CourseUsecase interface {
	// SyncCourses refreshes the stored course list from Classroom.
	SyncCourses(ctx context.Context, email string) ([]*coursedomain.Course, error)
	// ListCourses reads the stored course list.
	ListCourses(email string) ([]*coursedomain.Course, error)
	// SyncMaterials lists course-work materials for every stored course,
	// resolves attached Drive files and extracts their text content.
	SyncMaterials(ctx context.Context, email string) ([]*coursedomain.Course, error)
	// SyncEvents refreshes calendar events for every course with a
	// calendar id.
	SyncEvents(ctx context.Context, email string) ([]*coursedomain.Course, error)
}

// ClassroomGateway is the slice of the Classroom API the usecase needs.
type ClassroomGateway interface {
	ListActiveCourses(ctx context.Context, creds google.Credentials) ([]*coursedomain.Course, error)
	ListMaterialFiles(ctx context.Context, creds google.Credentials, courseID string) ([]google.DriveFileRef, error)
}

// DriveGateway is the slice of the Drive API the usecase needs.
type DriveGateway interface {
	ResolveFile(ctx context.Context, creds google.Credentials, fileID string) (*google.DriveFile, error)
	ExportPlainText(ctx context.Context, creds google.Credentials, fileID string) (string, error)
	Download(ctx context.Context, creds google.Credentials, fileID string) ([]byte, error)
}

// CalendarGateway is the slice of the Calendar API the usecase needs.
type CalendarGateway interface {
	ListUpcomingEvents(ctx context.Context, creds google.Credentials, calendarID string) ([]coursedomain.CalendarEvent, error)
}
