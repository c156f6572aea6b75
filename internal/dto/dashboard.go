package dto

import "visa-consultancy/backend/internal/model"

// DashboardResponse the statistics snapshot under the dashboard anchor
type DashboardResponse struct {
	DashboardID int    `json:"dashboard_id"`
	Name        string `json:"name"`
	GeneratedAt string `json:"generated_at"`
	model.DashboardStatistics
}

// PortalHomeResponse record counts on the portal home page
type PortalHomeResponse struct {
	StudentCount     int64 `json:"student_count"`
	ApplicationCount int64 `json:"application_count"`
	DocumentCount    int64 `json:"document_count"`
	PaymentCount     int64 `json:"payment_count"`
}

// LogoutResponse result of revoking the presented token
type LogoutResponse struct {
	Revoked bool `json:"revoked"`
}
