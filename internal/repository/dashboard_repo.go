package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"visa-consultancy/backend/internal/model"
)

const dashboardAnchorName = "Visa Dashboard"

// DashboardRepository aggregate queries behind the dashboard
type DashboardRepository interface {
	// Anchor returns the single dashboard row, creating it on first use
	Anchor(ctx context.Context) (*model.Dashboard, error)
	// Counts fills every figure except SuccessRate
	Counts(ctx context.Context, monthStart, today time.Time) (*model.DashboardStatistics, error)
}

type dashboardRepo struct {
	db *gorm.DB
}

// NewDashboardRepo creates a DashboardRepository
func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db: db}
}

func (r *dashboardRepo) Anchor(ctx context.Context) (*model.Dashboard, error) {
	var d model.Dashboard
	err := r.db.WithContext(ctx).
		Order("dashboard_id ASC").
		Where(model.Dashboard{Name: dashboardAnchorName}).
		FirstOrCreate(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type stateCount struct {
	State string
	Count int64
}

func (r *dashboardRepo) Counts(ctx context.Context, monthStart, today time.Time) (*model.DashboardStatistics, error) {
	s := &model.DashboardStatistics{}
	db := r.db.WithContext(ctx)

	// ── students / applications ──
	if err := db.Model(&model.Student{}).Count(&s.TotalStudents).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Student{}).
		Where("created_at >= ?", monthStart).
		Count(&s.StudentsThisMonth).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Application{}).Count(&s.TotalApplications).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Application{}).
		Where("created_at >= ?", monthStart).
		Count(&s.ApplicationsThisMonth).Error; err != nil {
		return nil, err
	}

	// ── revenue ──
	if err := db.Model(&model.Payment{}).
		Where("state = ?", model.PaymentPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&s.TotalRevenue).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Payment{}).
		Where("state = ? AND payment_date >= ?", model.PaymentPaid, monthStart).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&s.RevenueThisMonth).Error; err != nil {
		return nil, err
	}

	// ── documents / payments ──
	if err := db.Model(&model.Document{}).
		Where("state IN ?", []model.DocumentState{model.DocumentPending, model.DocumentReceived}).
		Count(&s.PendingDocuments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Payment{}).
		Where("due_date < ? AND state <> ?", today, model.PaymentPaid).
		Count(&s.OverduePayments).Error; err != nil {
		return nil, err
	}

	// ── applications per state ──
	var rows []stateCount
	if err := db.Model(&model.Application{}).
		Select("state, COUNT(*) AS count").
		Group("state").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		switch model.ApplicationState(row.State) {
		case model.ApplicationDraft:
			s.DraftApplications = row.Count
		case model.ApplicationInProgress:
			s.InProgressApplications = row.Count
		case model.ApplicationVisaApproved:
			s.ApprovedApplications = row.Count
		case model.ApplicationRejected:
			s.RejectedApplications = row.Count
		}
	}

	return s, nil
}
