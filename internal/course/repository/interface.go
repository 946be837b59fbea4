package repository

import coursedomain "studysync-backend/internal/course/domain"

// SyncUpdate records a successful Notion page creation for one summary.
type SyncUpdate struct {
	SummaryID    string
	NotionPageID string
}

// CourseRepository defines persistence operations for courses and their
// embedded materials, events and summaries.
type CourseRepository interface {
	// ListByUser returns the user's courses with materials, events and
	// summaries preloaded.
	ListByUser(userID string) ([]*coursedomain.Course, error)

	// UpsertCourses reconciles the fetched course list against the stored
	// one, keyed by external course id. Scalar fields are updated in place
	// so accumulated materials and summaries survive; stored courses absent
	// from the fetched set are deleted.
	UpsertCourses(userID string, fetched []*coursedomain.Course) error

	// ReplaceAllMaterials overwrites the material list of each listed
	// course in a single transaction. Keys are internal course ids.
	ReplaceAllMaterials(byCourse map[string][]coursedomain.Material) error

	// ReplaceAllEvents overwrites the event list of each listed course in
	// a single transaction. Keys are internal course ids.
	ReplaceAllEvents(byCourse map[string][]coursedomain.CalendarEvent) error

	// AppendSummary appends one summary to a course and clears the
	// course's summary-error diagnostic in the same transaction.
	AppendSummary(courseID string, summary *coursedomain.Summary) error

	// SetSummaryError records a failed summarization attempt for a course.
	SetSummaryError(courseID string, summaryErr *coursedomain.SummaryError) error

	// MarkSummariesSynced persists sync state for all listed summaries in
	// one bulk write.
	MarkSummariesSynced(updates []SyncUpdate) error
}
