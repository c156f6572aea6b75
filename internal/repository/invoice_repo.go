package repository

import (
	"context"

	"gorm.io/gorm"

	"visa-consultancy/backend/internal/model"
	pkgerrors "visa-consultancy/backend/pkg/errors"
)

// InvoiceRepository invoice and invoice line data access
type InvoiceRepository interface {
	// Create inserts the invoice together with its Lines
	Create(ctx context.Context, invoice *model.Invoice) error
	// NameExists reports whether a row already carries the display name
	NameExists(ctx context.Context, name string) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]model.Invoice, int64, error)
	// Update writes the header columns; lines are written through the line methods
	Update(ctx context.Context, invoice *model.Invoice) error
	Delete(ctx context.Context, id string) error

	CreateLine(ctx context.Context, line *model.InvoiceLine) error
	GetLine(ctx context.Context, id string) (*model.InvoiceLine, error)
	UpdateLine(ctx context.Context, line *model.InvoiceLine) error
	DeleteLine(ctx context.Context, id string) error
}

type invoiceRepo struct {
	db *gorm.DB
}

// NewInvoiceRepo creates an InvoiceRepository
func NewInvoiceRepo(db *gorm.DB) InvoiceRepository {
	return &invoiceRepo{db: db}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC, created_at ASC")
}

func (r *invoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	return r.db.WithContext(ctx).Omit("Student").Create(invoice).Error
}

func (r *invoiceRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).Where("name = ?", name).Count(&n).Error
	return n > 0, err
}

func (r *invoiceRepo) GetByID(ctx context.Context, id string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Lines", orderedLines).
		Where("invoice_id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepo) List(ctx context.Context, filter ListFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Invoice{})
	if filter.Search != "" {
		db = db.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.State != "" {
		db = db.Where("state = ?", filter.State)
	}
	if filter.StudentID != "" {
		db = db.Where("student_id = ?", filter.StudentID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := filter.page(db.Preload("Student")).
		Order(filter.order("invoice_date")).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *invoiceRepo) Update(ctx context.Context, invoice *model.Invoice) error {
	oldVersion := invoice.Version
	result := r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("invoice_id = ? AND version = ?", invoice.InvoiceID, oldVersion).
		Updates(map[string]interface{}{
			"invoice_date": invoice.InvoiceDate,
			"due_date":     invoice.DueDate,
			"state":        invoice.State,
			"subtotal":     invoice.Subtotal,
			"tax_amount":   invoice.TaxAmount,
			"total_amount": invoice.TotalAmount,
			"notes":        invoice.Notes,
			"updated_by":   invoice.UpdatedBy,
			"updated_at":   gorm.Expr("NOW()"),
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	invoice.Version = oldVersion + 1
	return nil
}

// Delete removes the invoice and its lines; a linked payment keeps a NULL invoice
func (r *invoiceRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("invoice_id = ?", id).
		Delete(&model.Invoice{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ── lines ──

func (r *invoiceRepo) CreateLine(ctx context.Context, line *model.InvoiceLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *invoiceRepo) GetLine(ctx context.Context, id string) (*model.InvoiceLine, error) {
	var line model.InvoiceLine
	err := r.db.WithContext(ctx).
		Where("invoice_line_id = ?", id).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *invoiceRepo) UpdateLine(ctx context.Context, line *model.InvoiceLine) error {
	return r.db.WithContext(ctx).
		Model(&model.InvoiceLine{}).
		Where("invoice_line_id = ?", line.InvoiceLineID).
		Updates(map[string]interface{}{
			"sequence":       line.Sequence,
			"description":    line.Description,
			"quantity":       line.Quantity,
			"unit_price":     line.UnitPrice,
			"tax_percentage": line.TaxPercentage,
			"subtotal":       line.Subtotal,
			"tax_amount":     line.TaxAmount,
			"total":          line.Total,
			"updated_at":     gorm.Expr("NOW()"),
		}).Error
}

func (r *invoiceRepo) DeleteLine(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("invoice_line_id = ?", id).
		Delete(&model.InvoiceLine{}).Error
}
