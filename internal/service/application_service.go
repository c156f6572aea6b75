package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/model"
	"visa-consultancy/backend/internal/repository"
	"visa-consultancy/backend/internal/workflow"
	"visa-consultancy/backend/pkg/clock"
	pkgerrors "visa-consultancy/backend/pkg/errors"
	"visa-consultancy/backend/pkg/metrics"
	"visa-consultancy/backend/pkg/notify"
)

// ── application errors ──

var (
	ErrApplicationNotFound = fmt.Errorf("%w: application not found", pkgerrors.ErrNotFound)
	ErrCourseMismatch      = fmt.Errorf("%w: course does not belong to the selected university", pkgerrors.ErrValidation)
	ErrNameTaken           = fmt.Errorf("%w: this number is already in use", pkgerrors.ErrValidation)
)

// ApplicationService application records and the application lifecycle
type ApplicationService interface {
	Create(ctx context.Context, req *dto.CreateApplicationRequest, callerID string) (*dto.ApplicationResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ApplicationResponse, error)
	List(ctx context.Context, q *dto.ListQuery) ([]dto.ApplicationResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateApplicationRequest, callerID string) (*dto.ApplicationResponse, error)
	Delete(ctx context.Context, id string) error
	// Duplicate copies the application into a new draft with a fresh number and no dates
	Duplicate(ctx context.Context, id string, callerID string) (*dto.ApplicationResponse, error)
	// Act runs one lifecycle action; the write and its cascades commit together
	Act(ctx context.Context, id string, action workflow.ApplicationAction, callerID string) (*dto.ApplicationResponse, error)
}

type applicationService struct {
	repo     *repository.Repository
	clock    clock.Clock
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewApplicationService creates an ApplicationService
func NewApplicationService(repo *repository.Repository, clk clock.Clock, notifier notify.Notifier, m *metrics.Metrics, logger *zap.Logger) ApplicationService {
	return &applicationService{repo: repo, clock: clk, notifier: notifier, metrics: m, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *applicationService) Create(ctx context.Context, req *dto.CreateApplicationRequest, callerID string) (*dto.ApplicationResponse, error) {
	appDate, err := parseDateOr(req.ApplicationDate, clock.Today(s.clock))
	if err != nil {
		return nil, err
	}

	app := &model.Application{
		StudentID:       req.StudentID,
		UniversityID:    req.UniversityID,
		CourseID:        req.CourseID,
		ConsultantID:    req.ConsultantID,
		Intake:          model.Intake(req.Intake),
		IntakeYear:      req.IntakeYear,
		ApplicationDate: appDate,
		State:           model.ApplicationDraft,
		ServiceFee:      req.ServiceFee,
		UniversityFee:   req.UniversityFee,
		Outcome:         model.OutcomePending,
		Priority:        req.Priority,
		Notes:           req.Notes,
	}
	if app.Priority == "" {
		app.Priority = "0"
	}
	app.RecomputeTotalFee()
	app.CreatedBy = actorRef(callerID)
	app.UpdatedBy = actorRef(callerID)

	if err := s.checkReferences(ctx, app); err != nil {
		return nil, err
	}

	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		name, err := assignName(ctx, tx, s.metrics, model.SequenceApplication, req.Name, tx.Application.NameExists)
		if err != nil {
			return err
		}
		app.Name = name
		return tx.Application.Create(ctx, app)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrNameTaken) {
			return nil, ErrNameTaken
		}
		s.logger.Error("create application failed", zap.String("student_id", app.StudentID), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, app.ApplicationID)
}

// checkReferences student and university exist and the course belongs to the university
func (s *applicationService) checkReferences(ctx context.Context, app *model.Application) error {
	if _, err := s.repo.Student.GetByID(ctx, app.StudentID); err != nil {
		if isNotFound(err) {
			return ErrStudentNotFound
		}
		s.logger.Error("get student failed", zap.String("id", app.StudentID), zap.Error(err))
		return err
	}
	if _, err := s.repo.University.GetByID(ctx, app.UniversityID); err != nil {
		if isNotFound(err) {
			return ErrUniversityNotFound
		}
		s.logger.Error("get university failed", zap.String("id", app.UniversityID), zap.Error(err))
		return err
	}
	if app.CourseID == nil {
		return nil
	}
	course, err := s.repo.Course.GetByID(ctx, *app.CourseID)
	if err != nil {
		if isNotFound(err) {
			return ErrCourseNotFound
		}
		s.logger.Error("get course failed", zap.String("id", *app.CourseID), zap.Error(err))
		return err
	}
	if course.UniversityID != app.UniversityID {
		return ErrCourseMismatch
	}
	return nil
}

// ────────────────────── Read ──────────────────────

func (s *applicationService) GetByID(ctx context.Context, id string) (*dto.ApplicationResponse, error) {
	app, err := s.repo.Application.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("get application failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := &dto.ApplicationResponse{Application: app}
	scope := repository.ListFilter{ApplicationID: id}
	if resp.DocumentCount, err = s.repo.Document.Count(ctx, scope); err != nil {
		s.logger.Error("count application documents failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if resp.PaymentCount, err = s.repo.Payment.Count(ctx, scope); err != nil {
		s.logger.Error("count application payments failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

func (s *applicationService) List(ctx context.Context, q *dto.ListQuery) ([]dto.ApplicationResponse, int64, error) {
	apps, total, err := s.repo.Application.List(ctx, listFilter(q))
	if err != nil {
		s.logger.Error("list applications failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		result = append(result, dto.ApplicationResponse{Application: &apps[i]})
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *applicationService) Update(ctx context.Context, id string, req *dto.UpdateApplicationRequest, callerID string) (*dto.ApplicationResponse, error) {
	app, err := s.repo.Application.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("get application failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	refsChanged := req.UniversityID != nil || req.CourseID != nil
	if req.UniversityID != nil {
		app.UniversityID = *req.UniversityID
	}
	if req.CourseID != nil {
		app.CourseID = req.CourseID
	}
	if req.ConsultantID != nil {
		app.ConsultantID = req.ConsultantID
	}
	if req.Intake != nil {
		app.Intake = model.Intake(*req.Intake)
	}
	if req.IntakeYear != nil {
		app.IntakeYear = *req.IntakeYear
	}
	if req.ApplicationDate != nil {
		if app.ApplicationDate, err = parseDateOr(*req.ApplicationDate, app.ApplicationDate); err != nil {
			return nil, err
		}
	}
	if req.ServiceFee != nil {
		app.ServiceFee = *req.ServiceFee
	}
	if req.UniversityFee != nil {
		app.UniversityFee = *req.UniversityFee
	}
	if req.Outcome != nil {
		app.Outcome = model.ApplicationOutcome(*req.Outcome)
	}
	if req.RejectionReason != nil {
		app.RejectionReason = *req.RejectionReason
	}
	if req.Priority != nil {
		app.Priority = *req.Priority
	}
	if req.Notes != nil {
		app.Notes = *req.Notes
	}
	app.RecomputeTotalFee()
	app.UpdatedBy = actorRef(callerID)
	clearApplicationRefs(app)

	if refsChanged {
		if err := s.checkReferences(ctx, app); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Application.Update(ctx, app); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update application failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

// Delete removes the application; documents and payments that reference it go with it
func (s *applicationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Application.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrApplicationNotFound
		}
		s.logger.Error("delete application failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Duplicate ──────────────────────

func (s *applicationService) Duplicate(ctx context.Context, id string, callerID string) (*dto.ApplicationResponse, error) {
	src, err := s.repo.Application.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("get application failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	cp := &model.Application{
		StudentID:       src.StudentID,
		UniversityID:    src.UniversityID,
		CourseID:        src.CourseID,
		ConsultantID:    src.ConsultantID,
		Intake:          src.Intake,
		IntakeYear:      src.IntakeYear,
		ApplicationDate: clock.Today(s.clock),
		State:           model.ApplicationDraft,
		ServiceFee:      src.ServiceFee,
		UniversityFee:   src.UniversityFee,
		Outcome:         model.OutcomePending,
		Priority:        src.Priority,
		Notes:           src.Notes,
	}
	cp.RecomputeTotalFee()
	cp.CreatedBy = actorRef(callerID)
	cp.UpdatedBy = actorRef(callerID)

	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		name, err := assignName(ctx, tx, s.metrics, model.SequenceApplication, "", tx.Application.NameExists)
		if err != nil {
			return err
		}
		cp.Name = name
		return tx.Application.Create(ctx, cp)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrNameTaken) {
			return nil, ErrNameTaken
		}
		s.logger.Error("duplicate application failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, cp.ApplicationID)
}

// ────────────────────── Act ──────────────────────

func (s *applicationService) Act(ctx context.Context, id string, action workflow.ApplicationAction, callerID string) (*dto.ApplicationResponse, error) {
	today := clock.Today(s.clock)

	var app *model.Application
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		var err error
		app, err = tx.Application.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		states, err := tx.Document.StatesByApplication(ctx, id)
		if err != nil {
			return err
		}

		t, err := workflow.NextApplication(app.State, action, workflow.ApplicationFacts{DocumentStates: states})
		if err != nil {
			return err
		}
		t.Apply(app, today)
		app.UpdatedBy = actorRef(callerID)
		clearApplicationRefs(app)
		if err := tx.Application.Update(ctx, app); err != nil {
			return err
		}

		if t.CompleteStudent {
			return completeStudent(ctx, tx, app.StudentID, callerID)
		}
		return nil
	})
	s.metrics.Transition(workflow.EntityApplication, string(action), outcomeOf(err))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrApplicationNotFound
		}
		if !errors.Is(err, pkgerrors.ErrGuardViolation) &&
			!errors.Is(err, pkgerrors.ErrValidation) &&
			!errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("application action failed",
				zap.String("id", id), zap.String("action", string(action)), zap.Error(err))
		}
		return nil, err
	}

	resp, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifyOutcome(ctx, resp.Application)
	return resp, nil
}

// completeStudent moves the owning student to completed whatever its current state
func completeStudent(ctx context.Context, tx *repository.Repository, studentID, callerID string) error {
	student, err := tx.Student.GetByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load student %s: %w", studentID, err)
	}
	student.State = model.StudentCompleted
	student.UpdatedBy = actorRef(callerID)
	student.Consultant = nil
	return tx.Student.Update(ctx, student)
}

var outcomeSubjects = map[model.ApplicationState]string{
	model.ApplicationOfferReceived: "Offer received for application %s",
	model.ApplicationVisaApproved:  "Visa approved for application %s",
	model.ApplicationRejected:      "Update on application %s",
}

// notifyOutcome tells the student about offers, visa approvals and rejections
func (s *applicationService) notifyOutcome(ctx context.Context, app *model.Application) {
	subject, ok := outcomeSubjects[app.State]
	if !ok || app.Student == nil || app.Student.Email == "" {
		return
	}

	university := ""
	if app.University != nil {
		university = app.University.Name
	}
	s.notifier.Notify(ctx, notify.Message{
		ToName:    app.Student.Name,
		ToAddress: app.Student.Email,
		Subject:   fmt.Sprintf(subject, app.Name),
		Body: fmt.Sprintf("Dear %s,\n\nyour application %s to %s is now %s.\n",
			app.Student.Name, app.Name, university, app.State),
	})
}

// clearApplicationRefs drops preloaded associations before a write
func clearApplicationRefs(app *model.Application) {
	app.Student = nil
	app.University = nil
	app.Course = nil
	app.Consultant = nil
}
