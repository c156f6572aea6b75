package repository

import (
	"context"

	"gorm.io/gorm"

	"visa-consultancy/backend/internal/model"
)

// UniversityRepository university data access
type UniversityRepository interface {
	Create(ctx context.Context, university *model.University) error
	GetByID(ctx context.Context, id string) (*model.University, error)
	List(ctx context.Context, filter ListFilter) ([]model.University, int64, error)
	Update(ctx context.Context, university *model.University) error
	Delete(ctx context.Context, id string) error
}

type universityRepo struct {
	db *gorm.DB
}

// NewUniversityRepo creates a UniversityRepository
func NewUniversityRepo(db *gorm.DB) UniversityRepository {
	return &universityRepo{db: db}
}

func (r *universityRepo) Create(ctx context.Context, university *model.University) error {
	return r.db.WithContext(ctx).Omit("Courses").Create(university).Error
}

func (r *universityRepo) GetByID(ctx context.Context, id string) (*model.University, error) {
	var university model.University
	err := r.db.WithContext(ctx).
		Preload("Courses", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("university_id = ?", id).
		First(&university).Error
	if err != nil {
		return nil, err
	}
	return &university, nil
}

func (r *universityRepo) List(ctx context.Context, filter ListFilter) ([]model.University, int64, error) {
	var universities []model.University
	var total int64

	db := r.db.WithContext(ctx).Model(&model.University{})
	if filter.Search != "" {
		db = db.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := filter.page(db).
		Order("ranking ASC, name ASC").
		Find(&universities).Error
	if err != nil {
		return nil, 0, err
	}
	return universities, total, nil
}

func (r *universityRepo) Update(ctx context.Context, university *model.University) error {
	return updateVersioned(r.db.WithContext(ctx), university, "university_id", university.UniversityID, &university.Version)
}

// Delete removes the university and its courses. Fails while applications reference it.
func (r *universityRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("university_id = ?", id).
		Delete(&model.University{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
