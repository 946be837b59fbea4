package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	authrepo "studysync-backend/internal/auth/repository"
	authusecase "studysync-backend/internal/auth/usecase"
	coursedomain "studysync-backend/internal/course/domain"
	"studysync-backend/internal/course/repository"
	"studysync-backend/pkg/gemini"
)

// SummaryGenerator is the slice of the Gemini client the summarizer needs.
type SummaryGenerator interface {
	GenerateCourseSummary(ctx context.Context, courseName, materialText string) (*gemini.SummaryPayload, string, error)
}

// CourseResult is the per-course outcome of one summarization run. A
// course yields either a summary or an error entry, never both.
type CourseResult struct {
	CourseID   string                     `json:"course_id"`
	CourseName string                     `json:"course_name"`
	Summary    *coursedomain.Summary      `json:"summary,omitempty"`
	Error      *coursedomain.SummaryError `json:"error,omitempty"`
}

// SummarizerUsecase turns extracted material text into structured summaries.
type SummarizerUsecase interface {
	GenerateSummaries(ctx context.Context, email string) ([]CourseResult, error)
	ListSummaries(email string) ([]*coursedomain.Course, error)
}

type summarizerUsecase struct {
	userRepo   authrepo.UserRepository
	courseRepo repository.CourseRepository
	generator  SummaryGenerator
}

func NewSummarizerUsecase(userRepo authrepo.UserRepository, courseRepo repository.CourseRepository, generator SummaryGenerator) SummarizerUsecase {
	return &summarizerUsecase{
		userRepo:   userRepo,
		courseRepo: courseRepo,
		generator:  generator,
	}
}

func (u *summarizerUsecase) GenerateSummaries(ctx context.Context, email string) ([]CourseResult, error) {
	user, err := u.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authusecase.ErrUserNotFound
	}

	courses, err := u.courseRepo.ListByUser(user.ID)
	if err != nil {
		return nil, err
	}

	results := make([]CourseResult, 0, len(courses))
	for _, course := range courses {
		combined := combineMaterialText(course.Materials)
		if combined == "" {
			// No materials or no text content: skipped silently, the
			// provider is never called.
			log.Printf("[Summarizer] skipping course %s - no text content", course.Name)
			continue
		}

		log.Printf("[Summarizer] processing course: %s", course.Name)
		result := u.summarizeCourse(ctx, course, combined)
		results = append(results, result)
	}

	return results, nil
}

// summarizeCourse runs one provider call for a course. Failures are
// contained to the course: an error entry is recorded and processing
// continues with the next course.
func (u *summarizerUsecase) summarizeCourse(ctx context.Context, course *coursedomain.Course, combined string) CourseResult {
	result := CourseResult{
		CourseID:   course.CourseID,
		CourseName: course.Name,
	}

	payload, raw, err := u.generator.GenerateCourseSummary(ctx, course.Name, combined)
	if err != nil {
		summaryErr := &coursedomain.SummaryError{
			Message:    "Error calling Gemini API: " + err.Error(),
			OccurredAt: time.Now(),
		}
		if errors.Is(err, gemini.ErrNotJSON) {
			summaryErr.Message = "Response is not valid JSON"
			summaryErr.RawResponse = raw
		}
		if storeErr := u.courseRepo.SetSummaryError(course.ID, summaryErr); storeErr != nil {
			log.Printf("[Summarizer] recording error for course %s failed: %v", course.Name, storeErr)
		}
		result.Error = summaryErr
		return result
	}

	summary := payloadToSummary(payload, course.Name)
	// Single write: the summary is appended in its final shape, with no
	// intermediate skeleton state.
	if err := u.courseRepo.AppendSummary(course.ID, summary); err != nil {
		summaryErr := &coursedomain.SummaryError{
			Message:    "Failed to persist summary: " + err.Error(),
			OccurredAt: time.Now(),
		}
		result.Error = summaryErr
		return result
	}

	result.Summary = summary
	return result
}

func (u *summarizerUsecase) ListSummaries(email string) ([]*coursedomain.Course, error) {
	user, err := u.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authusecase.ErrUserNotFound
	}
	return u.courseRepo.ListByUser(user.ID)
}

// combineMaterialText joins all non-blank material contents. Returns ""
// when the course has nothing to summarize.
func combineMaterialText(materials []coursedomain.Material) string {
	parts := make([]string, 0, len(materials))
	for _, m := range materials {
		if m.Content == nil {
			continue
		}
		if strings.TrimSpace(*m.Content) == "" {
			continue
		}
		parts = append(parts, *m.Content)
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// payloadToSummary maps the parsed provider payload onto the domain
// summary, applying the enum defaults from the stored schema.
func payloadToSummary(payload *gemini.SummaryPayload, courseName string) *coursedomain.Summary {
	title := payload.Title
	if title == "" {
		title = courseName
	}

	summary := &coursedomain.Summary{
		Title:            title,
		SummaryText:      payload.Summary,
		KeyPoints:        payload.KeyPoints,
		IsSyncedToNotion: false,
	}

	for _, entry := range payload.Roadmap {
		summary.Roadmap = append(summary.Roadmap, coursedomain.RoadmapEntry{
			Week:        entry.Week,
			Focus:       entry.Focus,
			Description: entry.Description,
		})
	}

	for _, q := range payload.ModelQuestions {
		kind := coursedomain.QuestionKind(strings.ToLower(q.Type))
		switch kind {
		case coursedomain.QuestionShort, coursedomain.QuestionLong, coursedomain.QuestionMCQ:
		default:
			kind = coursedomain.QuestionShort
		}
		summary.ModelQuestions = append(summary.ModelQuestions, coursedomain.ModelQuestion{
			Question:      q.Question,
			Type:          kind,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}

	for _, a := range payload.ActionPlan {
		priority := coursedomain.Priority(strings.ToLower(a.Priority))
		switch priority {
		case coursedomain.PriorityHigh, coursedomain.PriorityMedium, coursedomain.PriorityLow:
		default:
			priority = coursedomain.PriorityMedium
		}
		summary.ActionPlan = append(summary.ActionPlan, coursedomain.ActionItem{
			Task:     a.Task,
			Priority: priority,
		})
	}

	return summary
}
