package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	authdomain "studysync-backend/internal/auth/domain"
	coursedomain "studysync-backend/internal/course/domain"
	notionusecase "studysync-backend/internal/notionsync/usecase"
	summaryusecase "studysync-backend/internal/summary/usecase"
)

// userLister exposes the users eligible for scheduled runs: those with
// both Google and Notion credentials on file.
type userLister interface {
	ListWithCredentials() ([]*authdomain.User, error)
}

type courseSyncer interface {
	SyncCourses(ctx context.Context, email string) ([]*coursedomain.Course, error)
	SyncMaterials(ctx context.Context, email string) ([]*coursedomain.Course, error)
	SyncEvents(ctx context.Context, email string) ([]*coursedomain.Course, error)
}

type summarizer interface {
	GenerateSummaries(ctx context.Context, email string) ([]summaryusecase.CourseResult, error)
}

type publisher interface {
	PublishSummaries(ctx context.Context, email string) (*notionusecase.PublishResult, error)
}

// Runner executes the full sync pipeline for every eligible user. It is
// invoked from the cron scheduler.
type Runner struct {
	users      userLister
	courses    courseSyncer
	summarizer summarizer
	publisher  publisher

	// PerUserTimeout bounds one user's full pipeline run.
	PerUserTimeout time.Duration
}

func NewRunner(users userLister, courses courseSyncer, summarizer summarizer, publisher publisher) *Runner {
	return &Runner{
		users:          users,
		courses:        courses,
		summarizer:     summarizer,
		publisher:      publisher,
		PerUserTimeout: 10 * time.Minute,
	}
}

// Run processes all eligible users. A failure for one user is logged and
// does not stop the run.
func (r *Runner) Run(ctx context.Context) {
	users, err := r.users.ListWithCredentials()
	if err != nil {
		log.Printf("[Pipeline] listing users failed: %v", err)
		return
	}

	log.Printf("[Pipeline] starting scheduled run for %d user(s)", len(users))
	for _, user := range users {
		if ctx.Err() != nil {
			log.Printf("[Pipeline] run cancelled: %v", ctx.Err())
			return
		}
		if err := r.runUser(ctx, user.Email); err != nil {
			log.Printf("[Pipeline] run failed for %s: %v", user.Email, err)
		}
	}
	log.Printf("[Pipeline] scheduled run complete")
}

// runUser executes courses -> materials -> events -> summaries -> publish
// for one user. Publishing is skipped, not failed, when the user has no
// parent page yet.
func (r *Runner) runUser(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, r.PerUserTimeout)
	defer cancel()

	if _, err := r.courses.SyncCourses(ctx, email); err != nil {
		return err
	}
	if _, err := r.courses.SyncMaterials(ctx, email); err != nil {
		return err
	}
	if _, err := r.courses.SyncEvents(ctx, email); err != nil {
		// Events are auxiliary data: log and keep going.
		log.Printf("[Pipeline] event sync failed for %s: %v", email, err)
	}

	results, err := r.summarizer.GenerateSummaries(ctx, email)
	if err != nil {
		return err
	}
	for _, res := range results {
		if res.Error != nil {
			log.Printf("[Pipeline] summarization failed for course %s (%s): %s", res.CourseName, email, res.Error.Message)
		}
	}

	result, err := r.publisher.PublishSummaries(ctx, email)
	if err != nil {
		if errors.Is(err, notionusecase.ErrMissingParentPage) || errors.Is(err, notionusecase.ErrNotionNotConnected) {
			log.Printf("[Pipeline] skipping Notion publish for %s: %v", email, err)
			return nil
		}
		return err
	}
	if !result.AlreadySynced {
		log.Printf("[Pipeline] published %d page(s) for %s (%d failed)", len(result.Pages), email, len(result.Failed))
	}
	return nil
}
