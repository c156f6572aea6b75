package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"visa-consultancy/backend/internal/model"
	"visa-consultancy/backend/internal/repository"
	"visa-consultancy/backend/pkg/clock"
)

const calendarProductID = "-//Visa Consultancy//Student Calendar//EN"

// CalendarService iCalendar feeds of the dates a student has to keep in mind
type CalendarService interface {
	// StudentCalendar payment due dates, document expiries and intake starts
	// of one student as an RFC 5545 calendar
	StudentCalendar(ctx context.Context, studentID string) (string, error)
}

type calendarService struct {
	repo   *repository.Repository
	clock  clock.Clock
	logger *zap.Logger
}

// NewCalendarService creates a CalendarService
func NewCalendarService(repo *repository.Repository, clk clock.Clock, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, clock: clk, logger: logger}
}

func (s *calendarService) StudentCalendar(ctx context.Context, studentID string) (string, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if isNotFound(err) {
			return "", ErrStudentNotFound
		}
		s.logger.Error("get student failed", zap.String("id", studentID), zap.Error(err))
		return "", err
	}

	scope := repository.ListFilter{StudentID: studentID}
	payments, _, err := s.repo.Payment.List(ctx, scope)
	if err != nil {
		s.logger.Error("list student payments failed", zap.String("id", studentID), zap.Error(err))
		return "", err
	}
	docs, _, err := s.repo.Document.List(ctx, scope)
	if err != nil {
		s.logger.Error("list student documents failed", zap.String("id", studentID), zap.Error(err))
		return "", err
	}
	apps, _, err := s.repo.Application.List(ctx, scope)
	if err != nil {
		s.logger.Error("list student applications failed", zap.String("id", studentID), zap.Error(err))
		return "", err
	}

	stamp := s.clock.Now()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(student.Name)

	addDay := func(uid string, day time.Time, summary, description string) {
		e := cal.AddEvent(uid)
		e.SetDtStampTime(stamp)
		e.SetAllDayStartAt(day)
		e.SetAllDayEndAt(day.AddDate(0, 0, 1))
		e.SetSummary(summary)
		e.SetDescription(description)
	}

	for i := range payments {
		p := &payments[i]
		if p.DueDate == nil || p.State == model.PaymentPaid || p.State == model.PaymentCancelled {
			continue
		}
		addDay("payment-"+p.PaymentID, *p.DueDate,
			fmt.Sprintf("Payment %s due", p.Name),
			fmt.Sprintf("%s of %.2f is due.", p.PaymentType.Label(), p.Amount))
	}

	for i := range docs {
		d := &docs[i]
		if d.ExpiryDate == nil {
			continue
		}
		addDay("document-"+d.DocumentID, *d.ExpiryDate,
			fmt.Sprintf("%s expires", d.Name),
			fmt.Sprintf("Document %s (%s) expires on this day.", d.Name, d.DocumentType))
	}

	for i := range apps {
		a := &apps[i]
		if a.State == model.ApplicationCancelled || a.State == model.ApplicationRejected {
			continue
		}
		start, ok := intakeStart(a)
		if !ok {
			continue
		}
		university := ""
		if a.University != nil {
			university = a.University.Name
		}
		addDay("intake-"+a.ApplicationID, start,
			fmt.Sprintf("Intake %s %s", a.Intake, a.IntakeYear),
			fmt.Sprintf("Application %s to %s starts with this intake.", a.Name, university))
	}

	return cal.Serialize(), nil
}

// intakeStart first day of the application's intake month
func intakeStart(app *model.Application) (time.Time, bool) {
	m := app.Intake.Month()
	year, err := strconv.Atoi(app.IntakeYear)
	if m == 0 || err != nil {
		return time.Time{}, false
	}
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC), true
}
