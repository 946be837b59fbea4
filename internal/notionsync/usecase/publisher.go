package usecase

import (
	"context"
	"errors"
	"log"

	authrepo "studysync-backend/internal/auth/repository"
	authusecase "studysync-backend/internal/auth/usecase"
	coursedomain "studysync-backend/internal/course/domain"
	"studysync-backend/internal/course/repository"
)

var (
	ErrNotionNotConnected = errors.New("notion workspace not connected")
	ErrMissingParentPage  = errors.New("notion parent page not created")
)

// PagePublisher is the slice of the Notion client the publisher needs.
type PagePublisher interface {
	CreateParentPage(ctx context.Context, token string) (string, error)
	CreateSummaryPage(ctx context.Context, token, parentPageID, courseName string, summary *coursedomain.Summary) (string, error)
}

// PublishResult reports the outcome of one publishing run.
type PublishResult struct {
	// AlreadySynced is true when every summary already had a Notion page,
	// so no API calls were made.
	AlreadySynced bool            `json:"already_synced"`
	Pages         []PublishedPage `json:"pages,omitempty"`
	Failed        []PublishError  `json:"failed,omitempty"`
}

type PublishedPage struct {
	CourseName   string `json:"course_name"`
	SummaryID    string `json:"summary_id"`
	NotionPageID string `json:"notion_page_id"`
}

type PublishError struct {
	CourseName string `json:"course_name"`
	SummaryID  string `json:"summary_id"`
	Message    string `json:"message"`
}

// PublisherUsecase pushes unsynced summaries to the user's Notion
// workspace.
type PublisherUsecase interface {
	CreateParentPage(ctx context.Context, email string) (string, error)
	PublishSummaries(ctx context.Context, email string) (*PublishResult, error)
}

type publisherUsecase struct {
	userRepo   authrepo.UserRepository
	courseRepo repository.CourseRepository
	publisher  PagePublisher
}

func NewPublisherUsecase(userRepo authrepo.UserRepository, courseRepo repository.CourseRepository, publisher PagePublisher) PublisherUsecase {
	return &publisherUsecase{
		userRepo:   userRepo,
		courseRepo: courseRepo,
		publisher:  publisher,
	}
}

// CreateParentPage creates the workspace-level container page and stores
// its id on the user. Idempotent: an existing id is returned as is.
func (u *publisherUsecase) CreateParentPage(ctx context.Context, email string) (string, error) {
	user, err := u.userRepo.FindByEmail(email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", authusecase.ErrUserNotFound
	}
	if !user.HasNotionConnection() {
		return "", ErrNotionNotConnected
	}
	if user.NotionParentPageID != "" {
		return user.NotionParentPageID, nil
	}

	pageID, err := u.publisher.CreateParentPage(ctx, user.NotionAccessToken)
	if err != nil {
		return "", err
	}

	user.NotionParentPageID = pageID
	if err := u.userRepo.Update(user); err != nil {
		return "", err
	}
	return pageID, nil
}

// PublishSummaries creates one Notion page per unsynced summary. The
// parent page must exist before any page is created. Page-creation
// failures are contained per summary; sync state is persisted in one
// bulk write at the end so a crash never marks an unpublished summary.
func (u *publisherUsecase) PublishSummaries(ctx context.Context, email string) (*PublishResult, error) {
	user, err := u.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authusecase.ErrUserNotFound
	}
	if !user.HasNotionConnection() {
		return nil, ErrNotionNotConnected
	}
	if user.NotionParentPageID == "" {
		return nil, ErrMissingParentPage
	}

	courses, err := u.courseRepo.ListByUser(user.ID)
	if err != nil {
		return nil, err
	}

	result := &PublishResult{}
	var updates []repository.SyncUpdate
	pending := 0

	for _, course := range courses {
		for i := range course.Summaries {
			summary := &course.Summaries[i]
			if summary.IsSyncedToNotion {
				continue
			}
			pending++

			pageID, err := u.publisher.CreateSummaryPage(ctx, user.NotionAccessToken, user.NotionParentPageID, course.Name, summary)
			if err != nil {
				log.Printf("[Notion] page creation failed for course %s: %v", course.Name, err)
				result.Failed = append(result.Failed, PublishError{
					CourseName: course.Name,
					SummaryID:  summary.ID,
					Message:    err.Error(),
				})
				continue
			}

			updates = append(updates, repository.SyncUpdate{
				SummaryID:    summary.ID,
				NotionPageID: pageID,
			})
			result.Pages = append(result.Pages, PublishedPage{
				CourseName:   course.Name,
				SummaryID:    summary.ID,
				NotionPageID: pageID,
			})
		}
	}

	if pending == 0 {
		result.AlreadySynced = true
		return result, nil
	}

	if len(updates) > 0 {
		if err := u.courseRepo.MarkSummariesSynced(updates); err != nil {
			return nil, err
		}
	}

	return result, nil
}
