package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"visa-consultancy/backend/internal/model"
)

// DocumentRepository document data access
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	GetByID(ctx context.Context, id string) (*model.Document, error)
	List(ctx context.Context, filter ListFilter) ([]model.Document, int64, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Update(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, id string) error
	// StatesByApplication the state of every document linked to the application
	StatesByApplication(ctx context.Context, applicationID string) ([]model.DocumentState, error)
}

type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepo creates a DocumentRepository
func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(doc).Error
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("document_id = ?", id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) scope(ctx context.Context, filter ListFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Document{})
	if filter.Search != "" {
		db = db.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.State != "" {
		db = db.Where("state = ?", filter.State)
	}
	if filter.StudentID != "" {
		db = db.Where("student_id = ?", filter.StudentID)
	}
	if filter.ApplicationID != "" {
		db = db.Where("application_id = ?", filter.ApplicationID)
	}
	return db
}

func (r *documentRepo) List(ctx context.Context, filter ListFilter) ([]model.Document, int64, error) {
	var docs []model.Document
	var total int64

	db := r.scope(ctx, filter)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := filter.page(db.Preload("Student")).
		Order(filter.order("created_at")).
		Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *documentRepo) Count(ctx context.Context, filter ListFilter) (int64, error) {
	var total int64
	err := r.scope(ctx, filter).Count(&total).Error
	return total, err
}

func (r *documentRepo) Update(ctx context.Context, doc *model.Document) error {
	return updateVersioned(r.db.WithContext(ctx), doc, "document_id", doc.DocumentID, &doc.Version)
}

func (r *documentRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("document_id = ?", id).
		Delete(&model.Document{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *documentRepo) StatesByApplication(ctx context.Context, applicationID string) ([]model.DocumentState, error) {
	var states []model.DocumentState
	err := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("application_id = ?", applicationID).
		Pluck("state", &states).Error
	return states, err
}
