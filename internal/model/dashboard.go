package model

import "time"

// Dashboard anchor row. Statistics are computed on every read and never stored.
type Dashboard struct {
	DashboardID int       `gorm:"primaryKey"                        json:"dashboard_id"`
	Name        string    `gorm:"type:varchar(64);not null"         json:"name"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Dashboard) TableName() string { return "dashboards" }

// DashboardStatistics one snapshot of the aggregate figures
type DashboardStatistics struct {
	TotalStudents          int64   `json:"total_students"`
	StudentsThisMonth      int64   `json:"students_this_month"`
	TotalApplications      int64   `json:"total_applications"`
	ApplicationsThisMonth  int64   `json:"applications_this_month"`
	TotalRevenue           float64 `json:"total_revenue"`
	RevenueThisMonth       float64 `json:"revenue_this_month"`
	PendingDocuments       int64   `json:"pending_documents"`
	OverduePayments        int64   `json:"overdue_payments"`
	SuccessRate            float64 `json:"success_rate"`
	DraftApplications      int64   `json:"draft_applications"`
	InProgressApplications int64   `json:"in_progress_applications"`
	ApprovedApplications   int64   `json:"approved_applications"` // visa_approved
	RejectedApplications   int64   `json:"rejected_applications"`
}

// ComputeSuccessRate 100 * approved / (approved + rejected), 0 with no decided applications
func ComputeSuccessRate(approved, rejected int64) float64 {
	if approved+rejected == 0 {
		return 0
	}
	return 100 * float64(approved) / float64(approved+rejected)
}
