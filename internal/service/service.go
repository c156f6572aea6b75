package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/model"
	"visa-consultancy/backend/internal/repository"
	"visa-consultancy/backend/pkg/clock"
	pkgerrors "visa-consultancy/backend/pkg/errors"
	"visa-consultancy/backend/pkg/metrics"
	"visa-consultancy/backend/pkg/notify"
)

// ErrInvalidDate a date field that is not YYYY-MM-DD
var ErrInvalidDate = fmt.Errorf("%w: dates must use the YYYY-MM-DD format", pkgerrors.ErrValidation)

// Service aggregates every service
type Service struct {
	Auth        AuthService
	Student     StudentService
	University  UniversityService
	Consultant  ConsultantService
	Application ApplicationService
	Document    DocumentService
	Payment     PaymentService
	Invoice     InvoiceService
	Dashboard   DashboardService
	Export      ExportService
	Calendar    CalendarService
}

// Deps collaborators shared by the services
type Deps struct {
	Repo     *repository.Repository
	Clock    clock.Clock
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Revoker  TokenRevoker // nil when redis is unavailable
	Logger   *zap.Logger
}

// NewService wires every service onto deps
func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	if d.Notifier == nil {
		d.Notifier = notify.NewLogNotifier(d.Logger)
	}
	return &Service{
		Auth:        NewAuthService(d.Revoker, d.Logger),
		Student:     NewStudentService(d.Repo, d.Clock, d.Metrics, d.Logger),
		University:  NewUniversityService(d.Repo, d.Logger),
		Consultant:  NewConsultantService(d.Repo, d.Clock, d.Logger),
		Application: NewApplicationService(d.Repo, d.Clock, d.Notifier, d.Metrics, d.Logger),
		Document:    NewDocumentService(d.Repo, d.Clock, d.Metrics, d.Logger),
		Payment:     NewPaymentService(d.Repo, d.Clock, d.Metrics, d.Logger),
		Invoice:     NewInvoiceService(d.Repo, d.Clock, d.Notifier, d.Metrics, d.Logger),
		Dashboard:   NewDashboardService(d.Repo, d.Clock, d.Logger),
		Export:      NewExportService(d.Repo, d.Clock, d.Logger),
		Calendar:    NewCalendarService(d.Repo, d.Clock, d.Logger),
	}
}

// ── shared helpers ──

// isNotFound reports a missing row
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// actorRef audit value for callerID; nil when the caller is anonymous
func actorRef(callerID string) *string {
	if callerID == "" {
		return nil
	}
	return &callerID
}

// parseDate parses an optional date field
func parseDate(s string) (*time.Time, error) {
	t, ok := dto.ParseDate(s)
	if !ok {
		return nil, ErrInvalidDate
	}
	return t, nil
}

// parseDateOr parses s, falling back to def when s is empty
func parseDateOr(s string, def time.Time) (time.Time, error) {
	t, err := parseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return def, nil
	}
	return *t, nil
}

// listFilter turns list query parameters into a repository filter
func listFilter(q *dto.ListQuery) repository.ListFilter {
	if q == nil {
		return repository.ListFilter{}
	}
	return repository.ListFilter{
		Search:        q.Search,
		State:         q.State(),
		StudentID:     q.StudentID,
		ApplicationID: q.ApplicationID,
		UniversityID:  q.UniversityID,
		ConsultantID:  q.ConsultantID,
		SortBy:        q.SortBy,
		Offset:        q.GetOffset(),
		Limit:         q.GetPageSize(),
	}
}

// outcomeOf maps an action error onto a transition metric outcome
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, pkgerrors.ErrGuardViolation):
		return metrics.OutcomeGuard
	default:
		return metrics.OutcomeError
	}
}

// maxNameDraws bounds how many counter values assignName skips past
// names that callers supplied by hand.
const maxNameDraws = 50

// nameLookup reports whether a display name is already in use
type nameLookup func(ctx context.Context, name string) (bool, error)

// assignName returns supplied, or draws the next value of namespace when
// supplied is empty or the placeholder. Drawn values already taken by a
// supplied name are skipped so the counter keeps moving. Call with the
// repository of the transaction that inserts the record.
func assignName(ctx context.Context, tx *repository.Repository, m *metrics.Metrics, namespace, supplied string, taken nameLookup) (string, error) {
	if !model.NeedsName(supplied) {
		used, err := taken(ctx, supplied)
		if err != nil {
			return "", fmt.Errorf("check %s name: %w", namespace, err)
		}
		if used {
			return "", ErrNameTaken
		}
		return supplied, nil
	}
	for i := 0; i < maxNameDraws; i++ {
		name, err := tx.Sequence.Next(ctx, namespace)
		if err != nil {
			return "", fmt.Errorf("draw %s number: %w", namespace, err)
		}
		m.SequenceIssued(namespace)
		used, err := taken(ctx, name)
		if err != nil {
			return "", fmt.Errorf("check %s name: %w", namespace, err)
		}
		if !used {
			return name, nil
		}
	}
	return "", fmt.Errorf("draw %s number: %d consecutive values already taken", namespace, maxNameDraws)
}
