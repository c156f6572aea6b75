package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"visa-consultancy/backend/internal/model"
)

// PaymentRepository payment data access
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	// NameExists reports whether a row already carries the display name
	NameExists(ctx context.Context, name string) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	GetByIDForUpdate(ctx context.Context, id string) (*model.Payment, error)
	List(ctx context.Context, filter ListFilter) ([]model.Payment, int64, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Update(ctx context.Context, payment *model.Payment) error
	Delete(ctx context.Context, id string) error
	// SumPaid total amount of paid payments matching filter
	SumPaid(ctx context.Context, filter ListFilter) (float64, error)
}

type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepo creates a PaymentRepository
func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(payment).Error
}

func (r *paymentRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Payment{}).Where("name = ?", name).Count(&n).Error
	return n > 0, err
}

func (r *paymentRepo) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("payment_id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByIDForUpdate loads the row with SELECT ... FOR UPDATE; call inside a transaction
func (r *paymentRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("payment_id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) scope(ctx context.Context, filter ListFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Payment{})
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

func (r *paymentRepo) List(ctx context.Context, filter ListFilter) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	db := r.scope(ctx, filter)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := filter.page(db.Preload("Student")).
		Order(filter.order("payment_date")).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *paymentRepo) Count(ctx context.Context, filter ListFilter) (int64, error) {
	var total int64
	err := r.scope(ctx, filter).Count(&total).Error
	return total, err
}

func (r *paymentRepo) Update(ctx context.Context, payment *model.Payment) error {
	return updateVersioned(r.db.WithContext(ctx), payment, "payment_id", payment.PaymentID, &payment.Version)
}

func (r *paymentRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("payment_id = ?", id).
		Delete(&model.Payment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *paymentRepo) SumPaid(ctx context.Context, filter ListFilter) (float64, error) {
	var sum float64
	filter.State = string(model.PaymentPaid)
	err := r.scope(ctx, filter).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}
