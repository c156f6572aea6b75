package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"visa-consultancy/backend/internal/model"
)

// ApplicationRepository application data access
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	// NameExists reports whether a row already carries the display name
	NameExists(ctx context.Context, name string) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Application, error)
	GetByIDForUpdate(ctx context.Context, id string) (*model.Application, error)
	List(ctx context.Context, filter ListFilter) ([]model.Application, int64, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Update(ctx context.Context, app *model.Application) error
	Delete(ctx context.Context, id string) error
}

type applicationRepo struct {
	db *gorm.DB
}

// NewApplicationRepo creates an ApplicationRepository
func NewApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) Create(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(app).Error
}

func (r *applicationRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Application{}).Where("name = ?", name).Count(&n).Error
	return n > 0, err
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("University").
		Preload("Course").
		Preload("Consultant").
		Where("application_id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByIDForUpdate loads the row with SELECT ... FOR UPDATE; call inside a transaction
func (r *applicationRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) scope(ctx context.Context, filter ListFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Application{})
	if filter.Search != "" {
		db = db.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.State != "" {
		db = db.Where("state = ?", filter.State)
	}
	if filter.StudentID != "" {
		db = db.Where("student_id = ?", filter.StudentID)
	}
	if filter.UniversityID != "" {
		db = db.Where("university_id = ?", filter.UniversityID)
	}
	if filter.ConsultantID != "" {
		db = db.Where("consultant_id = ?", filter.ConsultantID)
	}
	return db
}

func (r *applicationRepo) List(ctx context.Context, filter ListFilter) ([]model.Application, int64, error) {
	var apps []model.Application
	var total int64

	db := r.scope(ctx, filter)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := filter.page(db.Preload("Student").Preload("University").Preload("Course")).
		Order(filter.order("application_date")).
		Find(&apps).Error
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *applicationRepo) Count(ctx context.Context, filter ListFilter) (int64, error) {
	var total int64
	err := r.scope(ctx, filter).Count(&total).Error
	return total, err
}

func (r *applicationRepo) Update(ctx context.Context, app *model.Application) error {
	return updateVersioned(r.db.WithContext(ctx), app, "application_id", app.ApplicationID, &app.Version)
}

// Delete removes the application; documents and payments linked to it go with it
func (r *applicationRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("application_id = ?", id).
		Delete(&model.Application{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
