package usecase

import (
	"context"
	"log"

	authdomain "studysync-backend/internal/auth/domain"
	authrepo "studysync-backend/internal/auth/repository"
	authusecase "studysync-backend/internal/auth/usecase"
	coursedomain "studysync-backend/internal/course/domain"
	"studysync-backend/internal/course/repository"
	"studysync-backend/pkg/google"
	"studysync-backend/pkg/pdftext"

	"golang.org/x/oauth2"
)

// courseUsecase implements CourseUsecase.
type courseUsecase struct {
	userRepo   authrepo.UserRepository
	courseRepo repository.CourseRepository
	classroom  ClassroomGateway
	drive      DriveGateway
	calendar   CalendarGateway

	// pdfExtract is swappable in tests.
	pdfExtract func([]byte) (string, error)
}

func NewCourseUsecase(
	userRepo authrepo.UserRepository,
	courseRepo repository.CourseRepository,
	classroom ClassroomGateway,
	drive DriveGateway,
	calendar CalendarGateway,
) CourseUsecase {
	return &courseUsecase{
		userRepo:   userRepo,
		courseRepo: courseRepo,
		classroom:  classroom,
		drive:      drive,
		calendar:   calendar,
		pdfExtract: pdftext.Extract,
	}
}

// requireUser loads the user and checks Google credentials.
func (u *courseUsecase) requireUser(email string) (*authdomain.User, error) {
	user, err := u.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authusecase.ErrUserNotFound
	}
	if !user.HasGoogleCredentials() {
		return nil, ErrMissingGoogleCredentials
	}
	return user, nil
}

// credentials builds the gateway credentials for a user, persisting any
// refreshed access token back onto the user record.
func (u *courseUsecase) credentials(user *authdomain.User) google.Credentials {
	return google.Credentials{
		AccessToken:  user.GoogleAccessToken,
		RefreshToken: user.GoogleRefreshToken,
		Expiry:       user.GoogleTokenExpiry,
		OnRefresh: func(token *oauth2.Token) error {
			user.GoogleAccessToken = token.AccessToken
			user.GoogleTokenExpiry = token.Expiry
			if token.RefreshToken != "" {
				user.GoogleRefreshToken = token.RefreshToken
			}
			return u.userRepo.Update(user)
		},
	}
}

func (u *courseUsecase) SyncCourses(ctx context.Context, email string) ([]*coursedomain.Course, error) {
	user, err := u.requireUser(email)
	if err != nil {
		return nil, err
	}

	fetched, err := u.classroom.ListActiveCourses(ctx, u.credentials(user))
	if err != nil {
		return nil, err
	}

	if err := u.courseRepo.UpsertCourses(user.ID, fetched); err != nil {
		return nil, err
	}
	return u.courseRepo.ListByUser(user.ID)
}

func (u *courseUsecase) ListCourses(email string) ([]*coursedomain.Course, error) {
	user, err := u.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authusecase.ErrUserNotFound
	}
	return u.courseRepo.ListByUser(user.ID)
}

func (u *courseUsecase) SyncMaterials(ctx context.Context, email string) ([]*coursedomain.Course, error) {
	user, err := u.requireUser(email)
	if err != nil {
		return nil, err
	}
	creds := u.credentials(user)

	courses, err := u.courseRepo.ListByUser(user.ID)
	if err != nil {
		return nil, err
	}

	byCourse := make(map[string][]coursedomain.Material, len(courses))
	for _, course := range courses {
		refs, err := u.classroom.ListMaterialFiles(ctx, creds, course.CourseID)
		if err != nil {
			// Leave the course's stored materials untouched so a listing
			// failure cannot blank out previously extracted content.
			log.Printf("[Extractor] listing materials for course %s failed: %v", course.Name, err)
			continue
		}

		materials := make([]coursedomain.Material, 0, len(refs))
		for _, ref := range refs {
			materials = append(materials, u.extractMaterial(ctx, creds, ref))
		}
		byCourse[course.ID] = materials
	}

	// Single bulk save after processing all courses.
	if err := u.courseRepo.ReplaceAllMaterials(byCourse); err != nil {
		return nil, err
	}
	return u.courseRepo.ListByUser(user.ID)
}

// extractMaterial resolves one Drive file and extracts its text. Every
// failure is contained to this file: the material is stored with null
// content and processing moves on.
func (u *courseUsecase) extractMaterial(ctx context.Context, creds google.Credentials, ref google.DriveFileRef) coursedomain.Material {
	material := coursedomain.Material{
		FileID: ref.ID,
		Name:   ref.Title,
	}

	file, err := u.drive.ResolveFile(ctx, creds, ref.ID)
	if err != nil {
		log.Printf("[Extractor] resolving file %s failed: %v", ref.ID, err)
		return material
	}
	material.MimeType = file.MimeType
	material.Link = file.WebViewLink
	if file.Name != "" {
		material.Name = file.Name
	}

	var content string
	switch file.MimeType {
	case google.MimeTypeGoogleDoc, google.MimeTypeGoogleSlides:
		content, err = u.drive.ExportPlainText(ctx, creds, ref.ID)
	case google.MimeTypePDF:
		var data []byte
		data, err = u.drive.Download(ctx, creds, ref.ID)
		if err == nil {
			content, err = u.pdfExtract(data)
		}
	default:
		// Unsupported MIME type: explicit null content, not an error.
		return material
	}

	if err != nil {
		log.Printf("[Extractor] extracting file %s (%s) failed: %v", ref.ID, file.MimeType, err)
		return material
	}

	material.Content = &content
	return material
}

func (u *courseUsecase) SyncEvents(ctx context.Context, email string) ([]*coursedomain.Course, error) {
	user, err := u.requireUser(email)
	if err != nil {
		return nil, err
	}
	creds := u.credentials(user)

	courses, err := u.courseRepo.ListByUser(user.ID)
	if err != nil {
		return nil, err
	}

	byCourse := make(map[string][]coursedomain.CalendarEvent, len(courses))
	for _, course := range courses {
		if course.CalendarID == "" {
			continue
		}
		events, err := u.calendar.ListUpcomingEvents(ctx, creds, course.CalendarID)
		if err != nil {
			log.Printf("[Calendar] listing events for course %s failed: %v", course.Name, err)
			continue
		}
		byCourse[course.ID] = events
	}

	if err := u.courseRepo.ReplaceAllEvents(byCourse); err != nil {
		return nil, err
	}
	return u.courseRepo.ListByUser(user.ID)
}
