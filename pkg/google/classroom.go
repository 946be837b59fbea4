package google

import (
	"context"
	"fmt"
	"log"
	"time"

	coursedomain "studysync-backend/internal/course/domain"
)

// Credentials bundles a user's stored Google tokens with the callback
// that persists refreshed access tokens.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	OnRefresh    TokenUpdateFunc
}

// DriveFileRef is a course-work attachment reference from Classroom.
type DriveFileRef struct {
	ID    string
	Title string
}

// ListActiveCourses fetches the user's ACTIVE courses together with each
// course's Drive folder link. A failed per-course detail fetch drops that
// course from the result rather than failing the listing.
func (s *Service) ListActiveCourses(ctx context.Context, creds Credentials) ([]*coursedomain.Course, error) {
	srv, err := s.Classroom(ctx, creds.AccessToken, creds.RefreshToken, creds.Expiry, creds.OnRefresh)
	if err != nil {
		return nil, err
	}

	if err := s.WaitClassroom(ctx); err != nil {
		return nil, err
	}
	resp, err := srv.Courses.List().CourseStates("ACTIVE").PageSize(100).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list courses: %w", err)
	}

	courses := make([]*coursedomain.Course, 0, len(resp.Courses))
	for _, c := range resp.Courses {
		if err := s.WaitClassroom(ctx); err != nil {
			return nil, err
		}
		detail, err := srv.Courses.Get(c.Id).Context(ctx).Do()
		if err != nil {
			log.Printf("[Classroom] error fetching folder for course %s: %v", c.Id, err)
			continue
		}

		folderLink := ""
		if detail.TeacherFolder != nil {
			folderLink = detail.TeacherFolder.AlternateLink
		}

		courses = append(courses, &coursedomain.Course{
			CourseID:        c.Id,
			Name:            c.Name,
			Section:         c.Section,
			OwnerID:         c.OwnerId,
			AlternateLink:   c.AlternateLink,
			CalendarID:      c.CalendarId,
			DriveFolderLink: folderLink,
		})
	}

	return courses, nil
}

// ListMaterialFiles flattens a course's course-work materials into Drive
// file references. Non-Drive attachments (links, YouTube videos, forms)
// are ignored.
func (s *Service) ListMaterialFiles(ctx context.Context, creds Credentials, courseID string) ([]DriveFileRef, error) {
	srv, err := s.Classroom(ctx, creds.AccessToken, creds.RefreshToken, creds.Expiry, creds.OnRefresh)
	if err != nil {
		return nil, err
	}

	if err := s.WaitClassroom(ctx); err != nil {
		return nil, err
	}
	resp, err := srv.Courses.CourseWorkMaterials.List(courseID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list course-work materials: %w", err)
	}

	var refs []DriveFileRef
	for _, material := range resp.CourseWorkMaterial {
		for _, m := range material.Materials {
			if m.DriveFile == nil || m.DriveFile.DriveFile == nil {
				continue
			}
			refs = append(refs, DriveFileRef{
				ID:    m.DriveFile.DriveFile.Id,
				Title: m.DriveFile.DriveFile.Title,
			})
		}
	}
	return refs, nil
}
