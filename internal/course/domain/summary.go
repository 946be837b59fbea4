package domain

import "time"

// Priority represents an action-plan priority level.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// QuestionKind classifies a model question.
type QuestionKind string

const (
	QuestionShort QuestionKind = "short"
	QuestionLong  QuestionKind = "long"
	QuestionMCQ   QuestionKind = "mcq"
)

// RoadmapEntry is a week-numbered study plan item.
type RoadmapEntry struct {
	Week        int    `json:"week"`
	Focus       string `json:"focus"`
	Description string `json:"description"`
}

// ModelQuestion is a practice question derived from course content.
type ModelQuestion struct {
	Question      string       `json:"question"`
	Type          QuestionKind `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
}

// ActionItem is a prioritized task derived from course content.
type ActionItem struct {
	Task     string   `json:"task"`
	Priority Priority `json:"priority"`
}

// Summary is one structured AI-generated summary of a course. A course
// accumulates summaries over time; the list is append-only.
type Summary struct {
	ID             string          `json:"id" gorm:"primaryKey"`
	CourseRef      string          `json:"-" gorm:"index;not null"`
	Title          string          `json:"title"`
	SummaryText    string          `json:"summary_text" gorm:"type:text"`
	Roadmap        []RoadmapEntry  `json:"roadmap,omitempty" gorm:"type:jsonb;serializer:json"`
	KeyPoints      []string        `json:"key_points,omitempty" gorm:"type:jsonb;serializer:json"`
	ModelQuestions []ModelQuestion `json:"model_questions,omitempty" gorm:"type:jsonb;serializer:json"`
	ActionPlan     []ActionItem    `json:"action_plan,omitempty" gorm:"type:jsonb;serializer:json"`

	// IsSyncedToNotion flips to true only after Notion confirms the page
	// for this exact summary was created.
	IsSyncedToNotion bool   `json:"is_synced_to_notion" gorm:"default:false"`
	NotionPageID     string `json:"notion_page_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Summary) TableName() string {
	return "summaries"
}

// SummaryError is the diagnostic record kept when summarization for a
// course fails. The raw provider output is preserved for inspection.
type SummaryError struct {
	Message     string    `json:"message"`
	RawResponse string    `json:"raw_response,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
