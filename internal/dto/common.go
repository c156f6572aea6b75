package dto

import "time"

// DateLayout wire format of calendar dates
const DateLayout = "2006-01-02"

// PortalPageSize page size of portal lists
const PortalPageSize = 20

// PaginationRequest common paging parameters
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage page number with default
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize page size with default
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset row offset of the page
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ListQuery search, filter and sort parameters shared by list endpoints
type ListQuery struct {
	PaginationRequest
	Search        string `form:"search"`
	FilterBy      string `form:"filterby"` // a state, or "all"
	SortBy        string `form:"sortby"         binding:"omitempty,oneof=date name"`
	StudentID     string `form:"student_id"     binding:"omitempty,uuid"`
	ApplicationID string `form:"application_id" binding:"omitempty,uuid"`
	UniversityID  string `form:"university_id"  binding:"omitempty,uuid"`
	ConsultantID  string `form:"consultant_id"  binding:"omitempty,uuid"`
}

// State the state filter; empty for "all"
func (q *ListQuery) State() string {
	if q.FilterBy == "all" {
		return ""
	}
	return q.FilterBy
}

// ParseDate parses an optional YYYY-MM-DD value; empty yields nil
func ParseDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// FormatDate renders an optional date; nil yields ""
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
