package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "studysync-backend/internal/auth/domain"
	authusecase "studysync-backend/internal/auth/usecase"
	coursedomain "studysync-backend/internal/course/domain"
	"studysync-backend/internal/course/repository"
	"studysync-backend/pkg/gemini"
)

type fakeUserRepo struct {
	users map[string]*authdomain.User
}

func newFakeUserRepo(users ...*authdomain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*authdomain.User)}
	for _, u := range users {
		repo.users[u.Email] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(user *authdomain.User) error { return nil }

func (r *fakeUserRepo) FindByEmail(email string) (*authdomain.User, error) {
	return r.users[email], nil
}

func (r *fakeUserRepo) FindByEmailWithCourses(email string) (*authdomain.User, error) {
	return r.users[email], nil
}

func (r *fakeUserRepo) Update(user *authdomain.User) error { return nil }

func (r *fakeUserRepo) ListWithCredentials() ([]*authdomain.User, error) { return nil, nil }

type fakeCourseRepo struct {
	courses []*coursedomain.Course

	appended        []*coursedomain.Summary
	appendedCourses []string
	errorsSet       map[string]*coursedomain.SummaryError
}

func (r *fakeCourseRepo) ListByUser(userID string) ([]*coursedomain.Course, error) {
	return r.courses, nil
}

func (r *fakeCourseRepo) UpsertCourses(userID string, fetched []*coursedomain.Course) error {
	return nil
}

func (r *fakeCourseRepo) ReplaceAllMaterials(byCourse map[string][]coursedomain.Material) error {
	return nil
}

func (r *fakeCourseRepo) ReplaceAllEvents(byCourse map[string][]coursedomain.CalendarEvent) error {
	return nil
}

func (r *fakeCourseRepo) AppendSummary(courseID string, summary *coursedomain.Summary) error {
	r.appended = append(r.appended, summary)
	r.appendedCourses = append(r.appendedCourses, courseID)
	return nil
}

func (r *fakeCourseRepo) SetSummaryError(courseID string, summaryErr *coursedomain.SummaryError) error {
	if r.errorsSet == nil {
		r.errorsSet = make(map[string]*coursedomain.SummaryError)
	}
	r.errorsSet[courseID] = summaryErr
	return nil
}

func (r *fakeCourseRepo) MarkSummariesSynced(updates []repository.SyncUpdate) error { return nil }

type fakeGenerator struct {
	payloads map[string]*gemini.SummaryPayload
	raws     map[string]string
	errs     map[string]error

	calls []string
	texts map[string]string
}

func (g *fakeGenerator) GenerateCourseSummary(ctx context.Context, courseName, materialText string) (*gemini.SummaryPayload, string, error) {
	g.calls = append(g.calls, courseName)
	if g.texts == nil {
		g.texts = make(map[string]string)
	}
	g.texts[courseName] = materialText
	if err := g.errs[courseName]; err != nil {
		return nil, g.raws[courseName], err
	}
	return g.payloads[courseName], g.raws[courseName], nil
}

func str(s string) *string { return &s }

func testUser() *authdomain.User {
	return &authdomain.User{ID: "user-1", Email: "student@example.com"}
}

func TestGenerateSummaries_SkipsCoursesWithoutText(t *testing.T) {
	courseRepo := &fakeCourseRepo{courses: []*coursedomain.Course{
		{ID: "c1", CourseID: "ext-1", Name: "Empty Course"},
		{ID: "c2", CourseID: "ext-2", Name: "Blank Course", Materials: []coursedomain.Material{
			{FileID: "f1", Content: nil},
			{FileID: "f2", Content: str("   \n")},
		}},
	}}
	generator := &fakeGenerator{}
	uc := NewSummarizerUsecase(newFakeUserRepo(testUser()), courseRepo, generator)

	results, err := uc.GenerateSummaries(context.Background(), "student@example.com")
	require.NoError(t, err)

	// Skipped silently: no results, no provider calls, no error records.
	assert.Empty(t, results)
	assert.Empty(t, generator.calls)
	assert.Empty(t, courseRepo.errorsSet)
	assert.Empty(t, courseRepo.appended)
}

func TestGenerateSummaries_Success(t *testing.T) {
	courseRepo := &fakeCourseRepo{courses: []*coursedomain.Course{
		{ID: "c1", CourseID: "ext-1", Name: "Algo 101", Materials: []coursedomain.Material{
			{FileID: "f1", Content: str("lecture one")},
			{FileID: "f2", Content: nil},
			{FileID: "f3", Content: str("lecture two")},
		}},
	}}
	generator := &fakeGenerator{
		payloads: map[string]*gemini.SummaryPayload{
			"Algo 101": {
				Title:   "Algo 101",
				Summary: "Sorting fundamentals.",
				Roadmap: []gemini.RoadmapEntry{
					{Week: 1, Focus: "Sorting", Description: "Comparison sorts"},
				},
				KeyPoints: []string{"Big-O"},
				ModelQuestions: []gemini.Question{
					{Question: "Explain quicksort", Type: "LONG"},
				},
				ActionPlan: []gemini.Action{
					{Task: "Implement mergesort", Priority: "high"},
					{Task: "Review notes", Priority: "urgent"},
				},
			},
		},
	}
	uc := NewSummarizerUsecase(newFakeUserRepo(testUser()), courseRepo, generator)

	results, err := uc.GenerateSummaries(context.Background(), "student@example.com")
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Only the non-blank contents reach the prompt, joined by blank lines.
	assert.Equal(t, "lecture one\n\nlecture two", generator.texts["Algo 101"])

	require.NotNil(t, results[0].Summary)
	assert.Nil(t, results[0].Error)

	require.Len(t, courseRepo.appended, 1)
	saved := courseRepo.appended[0]
	assert.Equal(t, "c1", courseRepo.appendedCourses[0])
	assert.Equal(t, "Algo 101", saved.Title)
	assert.Len(t, saved.Roadmap, 1)
	assert.False(t, saved.IsSyncedToNotion)

	// Enum normalization: case folded, unknown values take the default.
	assert.Equal(t, coursedomain.QuestionLong, saved.ModelQuestions[0].Type)
	assert.Equal(t, coursedomain.PriorityHigh, saved.ActionPlan[0].Priority)
	assert.Equal(t, coursedomain.PriorityMedium, saved.ActionPlan[1].Priority)
}

func TestGenerateSummaries_TitleFallsBackToCourseName(t *testing.T) {
	courseRepo := &fakeCourseRepo{courses: []*coursedomain.Course{
		{ID: "c1", CourseID: "ext-1", Name: "Physics", Materials: []coursedomain.Material{
			{FileID: "f1", Content: str("kinematics")},
		}},
	}}
	generator := &fakeGenerator{
		payloads: map[string]*gemini.SummaryPayload{
			"Physics": {Summary: "Motion basics."},
		},
	}
	uc := NewSummarizerUsecase(newFakeUserRepo(testUser()), courseRepo, generator)

	_, err := uc.GenerateSummaries(context.Background(), "student@example.com")
	require.NoError(t, err)

	require.Len(t, courseRepo.appended, 1)
	assert.Equal(t, "Physics", courseRepo.appended[0].Title)
}

func TestGenerateSummaries_ProseResponseRecordsError(t *testing.T) {
	courseRepo := &fakeCourseRepo{courses: []*coursedomain.Course{
		{ID: "c1", CourseID: "ext-1", Name: "Algo 101", Materials: []coursedomain.Material{
			{FileID: "f1", Content: str("lecture notes")},
		}},
	}}
	generator := &fakeGenerator{
		errs: map[string]error{"Algo 101": gemini.ErrNotJSON},
		raws: map[string]string{"Algo 101": "Sorry, I cannot summarize this."},
	}
	uc := NewSummarizerUsecase(newFakeUserRepo(testUser()), courseRepo, generator)

	results, err := uc.GenerateSummaries(context.Background(), "student@example.com")
	require.NoError(t, err)
	require.Len(t, results, 1)

	// No summary is stored; the error record keeps the raw output.
	assert.Empty(t, courseRepo.appended)
	require.NotNil(t, results[0].Error)
	assert.Nil(t, results[0].Summary)

	stored := courseRepo.errorsSet["c1"]
	require.NotNil(t, stored)
	assert.Equal(t, "Response is not valid JSON", stored.Message)
	assert.Equal(t, "Sorry, I cannot summarize this.", stored.RawResponse)
	assert.WithinDuration(t, time.Now(), stored.OccurredAt, time.Minute)
}

func TestGenerateSummaries_ProviderErrorIsolatedPerCourse(t *testing.T) {
	courseRepo := &fakeCourseRepo{courses: []*coursedomain.Course{
		{ID: "c1", CourseID: "ext-1", Name: "Broken", Materials: []coursedomain.Material{
			{FileID: "f1", Content: str("notes")},
		}},
		{ID: "c2", CourseID: "ext-2", Name: "Healthy", Materials: []coursedomain.Material{
			{FileID: "f2", Content: str("more notes")},
		}},
	}}
	generator := &fakeGenerator{
		errs: map[string]error{"Broken": errors.New("status 500")},
		payloads: map[string]*gemini.SummaryPayload{
			"Healthy": {Title: "Healthy", Summary: "Fine."},
		},
	}
	uc := NewSummarizerUsecase(newFakeUserRepo(testUser()), courseRepo, generator)

	results, err := uc.GenerateSummaries(context.Background(), "student@example.com")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Each eligible course ends with exactly one summary or one error.
	require.NotNil(t, results[0].Error)
	assert.Contains(t, results[0].Error.Message, "Error calling Gemini API")
	assert.Nil(t, results[0].Summary)

	require.NotNil(t, results[1].Summary)
	assert.Nil(t, results[1].Error)

	require.Len(t, courseRepo.appended, 1)
	assert.Equal(t, "c2", courseRepo.appendedCourses[0])
	assert.NotNil(t, courseRepo.errorsSet["c1"])
	_, hasHealthyErr := courseRepo.errorsSet["c2"]
	assert.False(t, hasHealthyErr)
}

func TestGenerateSummaries_UnknownUser(t *testing.T) {
	uc := NewSummarizerUsecase(newFakeUserRepo(), &fakeCourseRepo{}, &fakeGenerator{})

	_, err := uc.GenerateSummaries(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, authusecase.ErrUserNotFound)
}
