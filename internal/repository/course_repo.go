package repository

import (
	"context"

	"gorm.io/gorm"

	"visa-consultancy/backend/internal/model"
)

// CourseRepository course data access
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	ListByUniversity(ctx context.Context, universityID string) ([]model.Course, error)
	CountByUniversity(ctx context.Context, universityID string) (int64, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string) error
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo creates a CourseRepository
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit("University").Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) ListByUniversity(ctx context.Context, universityID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Where("university_id = ?", universityID).
		Order("name ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) CountByUniversity(ctx context.Context, universityID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("university_id = ?", universityID).
		Count(&n).Error
	return n, err
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return updateVersioned(r.db.WithContext(ctx), course, "course_id", course.CourseID, &course.Version)
}

func (r *courseRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("course_id = ?", id).
		Delete(&model.Course{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
