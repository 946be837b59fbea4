package domain

import "time"

// Course is a Classroom course stored for one user. Courses are keyed by
// the external course id and upserted on each refresh, so accumulated
// summaries survive a re-fetch of the course list.
type Course struct {
	ID              string `json:"id" gorm:"primaryKey"`
	UserID          string `json:"user_id" gorm:"index;uniqueIndex:idx_user_course;not null"`
	CourseID        string `json:"course_id" gorm:"uniqueIndex:idx_user_course;not null"` // external Classroom id
	Name            string `json:"name"`
	Section         string `json:"section,omitempty"`
	OwnerID         string `json:"owner_id,omitempty"`
	AlternateLink   string `json:"alternate_link,omitempty"`
	CalendarID      string `json:"calendar_id,omitempty"`
	DriveFolderLink string `json:"drive_folder_link,omitempty"`

	Materials []Material      `json:"materials,omitempty" gorm:"foreignKey:CourseRef;constraint:OnDelete:CASCADE"`
	Events    []CalendarEvent `json:"events,omitempty" gorm:"foreignKey:CourseRef;constraint:OnDelete:CASCADE"`
	Summaries []Summary       `json:"summaries,omitempty" gorm:"foreignKey:CourseRef;constraint:OnDelete:CASCADE"`

	// LastSummaryError records the most recent failed summarization attempt
	// for this course. Cleared when a summary is appended successfully.
	LastSummaryError *SummaryError `json:"last_summary_error,omitempty" gorm:"type:jsonb;serializer:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

// Material is one course-work attachment resolved through Drive.
// Content is null when extraction failed or the MIME type is unsupported.
type Material struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CourseRef string    `json:"-" gorm:"index;not null"`
	FileID    string    `json:"file_id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mime_type"`
	Link      string    `json:"link,omitempty"`
	Content   *string   `json:"content,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

func (Material) TableName() string {
	return "materials"
}

// CalendarEvent is a denormalized Calendar event, replaced wholesale on
// each fetch.
type CalendarEvent struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	CourseRef    string     `json:"-" gorm:"index;not null"`
	EventID      string     `json:"event_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Location     string     `json:"location,omitempty"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	CreatorEmail string     `json:"creator_email,omitempty"`
	CreatorName  string     `json:"creator_name,omitempty"`
	Attendees    []Attendee `json:"attendees,omitempty" gorm:"type:jsonb;serializer:json"`
	Link         string     `json:"link,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}

// Attendee is one invitee on a calendar event.
type Attendee struct {
	Email          string `json:"email"`
	DisplayName    string `json:"display_name,omitempty"`
	ResponseStatus string `json:"response_status,omitempty"`
}
