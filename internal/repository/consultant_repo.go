package repository

import (
	"context"

	"gorm.io/gorm"

	"visa-consultancy/backend/internal/model"
)

// ConsultantRepository consultant data access
type ConsultantRepository interface {
	Create(ctx context.Context, consultant *model.Consultant) error
	GetByID(ctx context.Context, id string) (*model.Consultant, error)
	List(ctx context.Context, filter ListFilter) ([]model.Consultant, int64, error)
	Update(ctx context.Context, consultant *model.Consultant) error
	Delete(ctx context.Context, id string) error
	Metrics(ctx context.Context, id string) (model.ConsultantMetrics, error)
}

type consultantRepo struct {
	db *gorm.DB
}

// NewConsultantRepo creates a ConsultantRepository
func NewConsultantRepo(db *gorm.DB) ConsultantRepository {
	return &consultantRepo{db: db}
}

func (r *consultantRepo) Create(ctx context.Context, consultant *model.Consultant) error {
	return r.db.WithContext(ctx).Create(consultant).Error
}

func (r *consultantRepo) GetByID(ctx context.Context, id string) (*model.Consultant, error) {
	var consultant model.Consultant
	err := r.db.WithContext(ctx).
		Where("consultant_id = ?", id).
		First(&consultant).Error
	if err != nil {
		return nil, err
	}
	return &consultant, nil
}

func (r *consultantRepo) List(ctx context.Context, filter ListFilter) ([]model.Consultant, int64, error) {
	var consultants []model.Consultant
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Consultant{})
	if filter.Search != "" {
		db = db.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := filter.page(db).
		Order("name ASC").
		Find(&consultants).Error
	if err != nil {
		return nil, 0, err
	}
	return consultants, total, nil
}

func (r *consultantRepo) Update(ctx context.Context, consultant *model.Consultant) error {
	return updateVersioned(r.db.WithContext(ctx), consultant, "consultant_id", consultant.ConsultantID, &consultant.Version)
}

// Delete removes the consultant; students and applications keep a NULL consultant
func (r *consultantRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("consultant_id = ?", id).
		Delete(&model.Consultant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Metrics counts the consultant's students, applications and approved applications
func (r *consultantRepo) Metrics(ctx context.Context, id string) (model.ConsultantMetrics, error) {
	var m model.ConsultantMetrics
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Student{}).
		Where("consultant_id = ?", id).
		Count(&m.TotalStudents).Error; err != nil {
		return m, err
	}
	if err := db.Model(&model.Application{}).
		Where("consultant_id = ?", id).
		Count(&m.TotalApplications).Error; err != nil {
		return m, err
	}
	if err := db.Model(&model.Application{}).
		Where("consultant_id = ? AND state = ?", id, model.ApplicationVisaApproved).
		Count(&m.ApprovedApplications).Error; err != nil {
		return m, err
	}
	return m, nil
}
