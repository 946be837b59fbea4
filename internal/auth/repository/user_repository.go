package repository

import (
	"errors"
	"time"

	authdomain "studysync-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// userRepository implements UserRepository on GORM.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(user *authdomain.User) error {
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return r.db.Create(user).Error
}

func (r *userRepository) FindByEmail(email string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmailWithCourses(email string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.
		Preload("Courses").
		Preload("Courses.Materials").
		Preload("Courses.Events").
		Preload("Courses.Summaries").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *authdomain.User) error {
	user.UpdatedAt = time.Now()
	return r.db.Save(user).Error
}

func (r *userRepository) ListWithCredentials() ([]*authdomain.User, error) {
	var users []*authdomain.User
	err := r.db.
		Where("google_access_token <> '' AND notion_access_token <> ''").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
