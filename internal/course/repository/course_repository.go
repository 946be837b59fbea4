package repository

import (
	"time"

	coursedomain "studysync-backend/internal/course/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// courseRepository implements CourseRepository on GORM.
type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{
		db: db,
	}
}

func (r *courseRepository) ListByUser(userID string) ([]*coursedomain.Course, error) {
	var courses []*coursedomain.Course
	err := r.db.
		Preload("Materials").
		Preload("Events").
		Preload("Summaries").
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) UpsertCourses(userID string, fetched []*coursedomain.Course) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing []coursedomain.Course
		if err := tx.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
			return err
		}

		byExternalID := make(map[string]*coursedomain.Course, len(existing))
		for i := range existing {
			byExternalID[existing[i].CourseID] = &existing[i]
		}

		now := time.Now()
		seen := make(map[string]bool, len(fetched))
		for _, course := range fetched {
			seen[course.CourseID] = true

			if stored, ok := byExternalID[course.CourseID]; ok {
				stored.Name = course.Name
				stored.Section = course.Section
				stored.OwnerID = course.OwnerID
				stored.AlternateLink = course.AlternateLink
				stored.CalendarID = course.CalendarID
				stored.DriveFolderLink = course.DriveFolderLink
				stored.UpdatedAt = now
				if err := tx.Save(stored).Error; err != nil {
					return err
				}
				continue
			}

			course.ID = uuid.New().String()
			course.UserID = userID
			course.CreatedAt = now
			course.UpdatedAt = now
			if err := tx.Create(course).Error; err != nil {
				return err
			}
		}

		// Courses no longer returned by Classroom are removed; their
		// materials, events and summaries cascade.
		for externalID, stored := range byExternalID {
			if !seen[externalID] {
				if err := tx.Delete(&coursedomain.Course{}, "id = ?", stored.ID).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

func (r *courseRepository) ReplaceAllMaterials(byCourse map[string][]coursedomain.Material) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for courseID, materials := range byCourse {
			if err := tx.Where("course_ref = ?", courseID).Delete(&coursedomain.Material{}).Error; err != nil {
				return err
			}
			for i := range materials {
				materials[i].ID = uuid.New().String()
				materials[i].CourseRef = courseID
				materials[i].CreatedAt = now
				if err := tx.Create(&materials[i]).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *courseRepository) ReplaceAllEvents(byCourse map[string][]coursedomain.CalendarEvent) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for courseID, events := range byCourse {
			if err := tx.Where("course_ref = ?", courseID).Delete(&coursedomain.CalendarEvent{}).Error; err != nil {
				return err
			}
			for i := range events {
				events[i].ID = uuid.New().String()
				events[i].CourseRef = courseID
				events[i].CreatedAt = now
				if err := tx.Create(&events[i]).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *courseRepository) AppendSummary(courseID string, summary *coursedomain.Summary) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		summary.ID = uuid.New().String()
		summary.CourseRef = courseID
		summary.CreatedAt = now
		summary.UpdatedAt = now
		if err := tx.Create(summary).Error; err != nil {
			return err
		}
		return tx.Model(&coursedomain.Course{}).
			Where("id = ?", courseID).
			Update("last_summary_error", nil).Error
	})
}

func (r *courseRepository) SetSummaryError(courseID string, summaryErr *coursedomain.SummaryError) error {
	return r.db.Model(&coursedomain.Course{}).
		Where("id = ?", courseID).
		Update("last_summary_error", summaryErr).Error
}

func (r *courseRepository) MarkSummariesSynced(updates []SyncUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			err := tx.Model(&coursedomain.Summary{}).
				Where("id = ?", update.SummaryID).
				Updates(map[string]interface{}{
					"is_synced_to_notion": true,
					"notion_page_id":      update.NotionPageID,
					"updated_at":          time.Now(),
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
