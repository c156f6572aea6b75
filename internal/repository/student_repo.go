package repository

import (
	"context"

	"gorm.io/gorm"

	"visa-consultancy/backend/internal/model"
)

// StudentRepository student data access
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByEmail(ctx context.Context, email string) (*model.Student, error)
	GetByPassport(ctx context.Context, passport string) (*model.Student, error)
	List(ctx context.Context, filter ListFilter) ([]model.Student, int64, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter ListFilter) (int64, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo creates a StudentRepository
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Omit("Consultant").Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("Consultant").
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByPassport(ctx context.Context, passport string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("passport_number = ?", passport).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) scope(ctx context.Context, filter ListFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Student{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("(name ILIKE ? OR email ILIKE ? OR phone ILIKE ?)", like, like, like)
	}
	if filter.State != "" {
		db = db.Where("state = ?", filter.State)
	}
	if filter.StudentID != "" {
		db = db.Where("student_id = ?", filter.StudentID)
	}
	if filter.ConsultantID != "" {
		db = db.Where("consultant_id = ?", filter.ConsultantID)
	}
	return db
}

func (r *studentRepo) List(ctx context.Context, filter ListFilter) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.scope(ctx, filter)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := filter.page(db.Preload("Consultant")).
		Order(filter.order("created_at")).
		Find(&students).Error
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *studentRepo) Count(ctx context.Context, filter ListFilter) (int64, error) {
	var total int64
	err := r.scope(ctx, filter).Count(&total).Error
	return total, err
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return updateVersioned(r.db.WithContext(ctx), student, "student_id", student.StudentID, &student.Version)
}

// Delete removes the student; applications, documents and payments go with it (ON DELETE CASCADE)
func (r *studentRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		Delete(&model.Student{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
