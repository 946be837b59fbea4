package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "studysync-backend/internal/auth/domain"
	authusecase "studysync-backend/internal/auth/usecase"
	coursedomain "studysync-backend/internal/course/domain"
	"studysync-backend/internal/course/repository"
)

type fakeUserRepo struct {
	users   map[string]*authdomain.User
	updated []*authdomain.User
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

func (r *fakeUserRepo) Update(user *authdomain.User) error {
	r.updated = append(r.updated, user)
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) ListWithCredentials() ([]*authdomain.User, error) { return nil, nil }

type fakeCourseRepo struct {
	courses     []*coursedomain.Course
	syncUpdates [][]repository.SyncUpdate
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
	return nil
}

func (r *fakeCourseRepo) SetSummaryError(courseID string, summaryErr *coursedomain.SummaryError) error {
	return nil
}

func (r *fakeCourseRepo) MarkSummariesSynced(updates []repository.SyncUpdate) error {
	r.syncUpdates = append(r.syncUpdates, updates)
	// Mirror the write back so a second run sees the synced state.
	byID := make(map[string]string, len(updates))
	for _, u := range updates {
		byID[u.SummaryID] = u.NotionPageID
	}
	for _, course := range r.courses {
		for i := range course.Summaries {
			if pageID, ok := byID[course.Summaries[i].ID]; ok {
				course.Summaries[i].IsSyncedToNotion = true
				course.Summaries[i].NotionPageID = pageID
			}
		}
	}
	return nil
}

type fakePublisher struct {
	parentPages   int
	createdPages  []string // course names, in creation order
	pageErrs      map[string]error
	parentPageErr error
}

func (p *fakePublisher) CreateParentPage(ctx context.Context, token string) (string, error) {
	p.parentPages++
	if p.parentPageErr != nil {
		return "", p.parentPageErr
	}
	return "parent-1", nil
}

func (p *fakePublisher) CreateSummaryPage(ctx context.Context, token, parentPageID, courseName string, summary *coursedomain.Summary) (string, error) {
	if err := p.pageErrs[courseName]; err != nil {
		return "", err
	}
	p.createdPages = append(p.createdPages, courseName)
	return "page-" + summary.ID, nil
}

func connectedUser() *authdomain.User {
	return &authdomain.User{
		ID:                 "user-1",
		Email:              "student@example.com",
		NotionAccessToken:  "notion-token",
		NotionParentPageID: "parent-1",
	}
}

func TestCreateParentPage(t *testing.T) {
	user := connectedUser()
	user.NotionParentPageID = ""
	userRepo := newFakeUserRepo(user)
	publisher := &fakePublisher{}
	uc := NewPublisherUsecase(userRepo, &fakeCourseRepo{}, publisher)

	pageID, err := uc.CreateParentPage(context.Background(), "student@example.com")
	require.NoError(t, err)

	assert.Equal(t, "parent-1", pageID)
	assert.Equal(t, "parent-1", user.NotionParentPageID)
	require.Len(t, userRepo.updated, 1)

	// A second call returns the stored id without touching the API.
	pageID, err = uc.CreateParentPage(context.Background(), "student@example.com")
	require.NoError(t, err)
	assert.Equal(t, "parent-1", pageID)
	assert.Equal(t, 1, publisher.parentPages)
}

func TestCreateParentPage_NotConnected(t *testing.T) {
	user := connectedUser()
	user.NotionAccessToken = ""
	uc := NewPublisherUsecase(newFakeUserRepo(user), &fakeCourseRepo{}, &fakePublisher{})

	_, err := uc.CreateParentPage(context.Background(), "student@example.com")
	assert.ErrorIs(t, err, ErrNotionNotConnected)
}

func TestPublishSummaries(t *testing.T) {
	courseRepo := &fakeCourseRepo{courses: []*coursedomain.Course{
		{ID: "c1", Name: "Algo 101", Summaries: []coursedomain.Summary{
			{ID: "s1", Title: "Algo 101"},
			{ID: "s2", Title: "Algo 101 v2", IsSyncedToNotion: true, NotionPageID: "page-old"},
		}},
		{ID: "c2", Name: "Physics", Summaries: []coursedomain.Summary{
			{ID: "s3", Title: "Physics"},
		}},
	}}
	publisher := &fakePublisher{}
	uc := NewPublisherUsecase(newFakeUserRepo(connectedUser()), courseRepo, publisher)

	result, err := uc.PublishSummaries(context.Background(), "student@example.com")
	require.NoError(t, err)

	assert.False(t, result.AlreadySynced)
	assert.Len(t, result.Pages, 2)
	assert.Empty(t, result.Failed)

	// Only the unsynced summaries got pages.
	assert.Equal(t, []string{"Algo 101", "Physics"}, publisher.createdPages)

	// Sync state lands in one bulk write.
	require.Len(t, courseRepo.syncUpdates, 1)
	assert.Len(t, courseRepo.syncUpdates[0], 2)
}

func TestPublishSummaries_SecondRunIsIdempotent(t *testing.T) {
	courseRepo := &fakeCourseRepo{courses: []*coursedomain.Course{
		{ID: "c1", Name: "Algo 101", Summaries: []coursedomain.Summary{
			{ID: "s1", Title: "Algo 101"},
		}},
	}}
	publisher := &fakePublisher{}
	uc := NewPublisherUsecase(newFakeUserRepo(connectedUser()), courseRepo, publisher)

	first, err := uc.PublishSummaries(context.Background(), "student@example.com")
	require.NoError(t, err)
	assert.Len(t, first.Pages, 1)

	second, err := uc.PublishSummaries(context.Background(), "student@example.com")
	require.NoError(t, err)

	// Nothing left to publish: no new pages, distinct already-synced result.
	assert.True(t, second.AlreadySynced)
	assert.Empty(t, second.Pages)
	assert.Len(t, publisher.createdPages, 1)
	assert.Len(t, courseRepo.syncUpdates, 1)
}

func TestPublishSummaries_MissingParentPage(t *testing.T) {
	user := connectedUser()
	user.NotionParentPageID = ""
	courseRepo := &fakeCourseRepo{courses: []*coursedomain.Course{
		{ID: "c1", Name: "Algo 101", Summaries: []coursedomain.Summary{{ID: "s1"}}},
	}}
	publisher := &fakePublisher{}
	uc := NewPublisherUsecase(newFakeUserRepo(user), courseRepo, publisher)

	_, err := uc.PublishSummaries(context.Background(), "student@example.com")
	assert.ErrorIs(t, err, ErrMissingParentPage)

	// The failure happens before any page creation is attempted.
	assert.Empty(t, publisher.createdPages)
	assert.Empty(t, courseRepo.syncUpdates)
}

func TestPublishSummaries_PerSummaryFailureIsolation(t *testing.T) {
	courseRepo := &fakeCourseRepo{courses: []*coursedomain.Course{
		{ID: "c1", Name: "Broken", Summaries: []coursedomain.Summary{{ID: "s1"}}},
		{ID: "c2", Name: "Healthy", Summaries: []coursedomain.Summary{{ID: "s2"}}},
	}}
	publisher := &fakePublisher{pageErrs: map[string]error{"Broken": errors.New("api down")}}
	uc := NewPublisherUsecase(newFakeUserRepo(connectedUser()), courseRepo, publisher)

	result, err := uc.PublishSummaries(context.Background(), "student@example.com")
	require.NoError(t, err)

	assert.Len(t, result.Pages, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "Broken", result.Failed[0].CourseName)

	// Only the successful page gets its sync flag persisted.
	require.Len(t, courseRepo.syncUpdates, 1)
	require.Len(t, courseRepo.syncUpdates[0], 1)
	assert.Equal(t, "s2", courseRepo.syncUpdates[0][0].SummaryID)
}

func TestPublishSummaries_UnknownUser(t *testing.T) {
	uc := NewPublisherUsecase(newFakeUserRepo(), &fakeCourseRepo{}, &fakePublisher{})

	_, err := uc.PublishSummaries(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, authusecase.ErrUserNotFound)
}
