package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgerrors "visa-consultancy/backend/pkg/errors"
)

// Repository aggregates every entity repository over one connection or transaction
type Repository struct {
	db *gorm.DB

	Student     StudentRepository
	University  UniversityRepository
	Course      CourseRepository
	Consultant  ConsultantRepository
	Application ApplicationRepository
	Document    DocumentRepository
	Payment     PaymentRepository
	Invoice     InvoiceRepository
	Sequence    SequenceRepository
	Dashboard   DashboardRepository
}

// NewRepository builds the aggregate on db
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		Student:     NewStudentRepo(db),
		University:  NewUniversityRepo(db),
		Course:      NewCourseRepo(db),
		Consultant:  NewConsultantRepo(db),
		Application: NewApplicationRepo(db),
		Document:    NewDocumentRepo(db),
		Payment:     NewPaymentRepo(db),
		Invoice:     NewInvoiceRepo(db),
		Sequence:    NewSequenceRepo(db),
		Dashboard:   NewDashboardRepo(db),
	}
}

// BeginTx opens a transaction. Returns a nil tx when the aggregate has no
// connection (in-memory repositories in tests).
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx rebinds every repository onto tx
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// RunInTx runs fn in one transaction: commit when fn returns nil, rollback otherwise
func (r *Repository) RunInTx(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// ReadSnapshot runs fn in a read-only REPEATABLE READ transaction so every
// query inside sees the same snapshot
func (r *Repository) ReadSnapshot(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

// ListFilter shared list options. Each repository reads the fields that apply to it.
type ListFilter struct {
	Search        string
	State         string
	StudentID     string
	ApplicationID string
	UniversityID  string
	ConsultantID  string
	SortBy        string // date | name
	Offset        int
	Limit         int
}

// order maps SortBy onto an ORDER BY clause; date is newest first
func (f ListFilter) order(dateColumn string) string {
	if f.SortBy == "name" {
		return "name ASC"
	}
	return dateColumn + " DESC, created_at DESC"
}

func (f ListFilter) page(db *gorm.DB) *gorm.DB {
	if f.Limit > 0 {
		db = db.Limit(f.Limit)
	}
	if f.Offset > 0 {
		db = db.Offset(f.Offset)
	}
	return db
}

// updateVersioned writes every column of value if its stored version still
// equals *version, then bumps *version
func updateVersioned(db *gorm.DB, value interface{}, pkColumn, id string, version *int) error {
	old := *version
	*version = old + 1
	result := db.Model(value).
		Where(pkColumn+" = ? AND version = ?", id, old).
		Select("*").
		Omit("created_at", "created_by", clause.Associations).
		Updates(value)
	if result.Error != nil {
		*version = old
		return result.Error
	}
	if result.RowsAffected == 0 {
		*version = old
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
