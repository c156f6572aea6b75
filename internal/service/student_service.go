package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/model"
	"visa-consultancy/backend/internal/repository"
	"visa-consultancy/backend/internal/workflow"
	"visa-consultancy/backend/pkg/clock"
	pkgerrors "visa-consultancy/backend/pkg/errors"
	applogger "visa-consultancy/backend/pkg/logger"
	"visa-consultancy/backend/pkg/metrics"
)

// ── student errors ──

var (
	ErrStudentNotFound     = fmt.Errorf("%w: student not found", pkgerrors.ErrNotFound)
	ErrStudentEmailInvalid = fmt.Errorf("%w: please enter a valid email address", pkgerrors.ErrValidation)
	ErrPassportExpired     = fmt.Errorf("%w: passport has expired, please renew it", pkgerrors.ErrValidation)
	ErrStudentEmailTaken   = fmt.Errorf("%w: a student with this email already exists", pkgerrors.ErrValidation)
	ErrPassportTaken       = fmt.Errorf("%w: a student with this passport number already exists", pkgerrors.ErrValidation)
	ErrStudentDuplicate    = fmt.Errorf("%w: email or passport number already registered", pkgerrors.ErrValidation)
)

// StudentService student business operations
type StudentService interface {
	Create(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.StudentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.StudentResponse, error)
	List(ctx context.Context, q *dto.ListQuery) ([]dto.StudentResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudentRequest, callerID string) (*dto.StudentResponse, error)
	Delete(ctx context.Context, id string) error
	Act(ctx context.Context, id string, action workflow.StudentAction, callerID string) (*dto.StudentResponse, error)
}

type studentService struct {
	repo    *repository.Repository
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewStudentService creates a StudentService
func NewStudentService(repo *repository.Repository, clk clock.Clock, m *metrics.Metrics, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, clock: clk, metrics: m, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.StudentResponse, error) {
	student := &model.Student{
		Name:                 req.Name,
		Email:                strings.TrimSpace(req.Email),
		Phone:                req.Phone,
		Mobile:               req.Mobile,
		Gender:               req.Gender,
		Street:               req.Street,
		Street2:              req.Street2,
		City:                 req.City,
		Province:             req.Province,
		Zip:                  req.Zip,
		Country:              req.Country,
		PassportCountry:      req.PassportCountry,
		HighestQualification: req.HighestQualification,
		Percentage:           req.Percentage,
		YearOfPassing:        req.YearOfPassing,
		EnglishTest:          req.EnglishTest,
		OverallScore:         req.OverallScore,
		ConsultantID:         req.ConsultantID,
		State:                model.StudentInquiry,
		Notes:                req.Notes,
	}
	if student.EnglishTest == "" {
		student.EnglishTest = "none"
	}
	if req.PassportNumber != "" {
		passport := strings.TrimSpace(req.PassportNumber)
		student.PassportNumber = &passport
	}

	var err error
	if student.DateOfBirth, err = parseDate(req.DateOfBirth); err != nil {
		return nil, err
	}
	if student.PassportIssueDate, err = parseDate(req.PassportIssueDate); err != nil {
		return nil, err
	}
	if student.PassportExpiryDate, err = parseDate(req.PassportExpiryDate); err != nil {
		return nil, err
	}
	if student.TestDate, err = parseDate(req.TestDate); err != nil {
		return nil, err
	}

	if err := s.validate(ctx, student, true); err != nil {
		return nil, err
	}

	student.CreatedBy = actorRef(callerID)
	student.UpdatedBy = actorRef(callerID)

	if err := s.repo.Student.Create(ctx, student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrStudentDuplicate
		}
		s.logger.Error("create student failed", applogger.Email(student.Email), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, student.StudentID)
}

// validate field rules plus email and passport uniqueness. The expiry rule
// applies only when checkExpiry is set, so a stored past expiry does not
// lock the rest of the record.
func (s *studentService) validate(ctx context.Context, student *model.Student, checkExpiry bool) error {
	if !strings.Contains(student.Email, "@") {
		return ErrStudentEmailInvalid
	}
	if checkExpiry && student.PassportExpiryDate != nil && student.PassportExpiryDate.Before(clock.Today(s.clock)) {
		return ErrPassportExpired
	}

	existing, err := s.repo.Student.GetByEmail(ctx, student.Email)
	if err == nil && existing.StudentID != student.StudentID {
		return ErrStudentEmailTaken
	}
	if err != nil && !isNotFound(err) {
		s.logger.Error("check student email failed", applogger.Email(student.Email), zap.Error(err))
		return err
	}

	if student.PassportNumber != nil {
		existing, err := s.repo.Student.GetByPassport(ctx, *student.PassportNumber)
		if err == nil && existing.StudentID != student.StudentID {
			return ErrPassportTaken
		}
		if err != nil && !isNotFound(err) {
			s.logger.Error("check student passport failed", applogger.Passport(*student.PassportNumber), zap.Error(err))
			return err
		}
	}
	return nil
}

// ────────────────────── GetByID ──────────────────────

func (s *studentService) GetByID(ctx context.Context, id string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("get student failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := s.toStudentResponse(student)
	scope := repository.ListFilter{StudentID: id}
	if resp.ApplicationCount, err = s.repo.Application.Count(ctx, scope); err != nil {
		s.logger.Error("count student applications failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if resp.DocumentCount, err = s.repo.Document.Count(ctx, scope); err != nil {
		s.logger.Error("count student documents failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if resp.TotalPaid, err = s.repo.Payment.SumPaid(ctx, scope); err != nil {
		s.logger.Error("sum student payments failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context, q *dto.ListQuery) ([]dto.StudentResponse, int64, error) {
	students, total, err := s.repo.Student.List(ctx, listFilter(q))
	if err != nil {
		s.logger.Error("list students failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, *s.toStudentResponse(&students[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, id string, req *dto.UpdateStudentRequest, callerID string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("get student failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if err := applyStudentUpdate(student, req); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, student, req.PassportExpiryDate != nil); err != nil {
		return nil, err
	}

	student.UpdatedBy = actorRef(callerID)
	student.Consultant = nil

	if err := s.repo.Student.Update(ctx, student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrStudentDuplicate
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update student failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	return s.GetByID(ctx, id)
}

func applyStudentUpdate(student *model.Student, req *dto.UpdateStudentRequest) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&student.Name, req.Name)
	if req.Email != nil {
		student.Email = strings.TrimSpace(*req.Email)
	}
	setString(&student.Phone, req.Phone)
	setString(&student.Mobile, req.Mobile)
	setString(&student.Gender, req.Gender)
	setString(&student.Street, req.Street)
	setString(&student.Street2, req.Street2)
	setString(&student.City, req.City)
	setString(&student.Province, req.Province)
	setString(&student.Zip, req.Zip)
	setString(&student.Country, req.Country)
	setString(&student.PassportCountry, req.PassportCountry)
	setString(&student.HighestQualification, req.HighestQualification)
	setString(&student.YearOfPassing, req.YearOfPassing)
	setString(&student.EnglishTest, req.EnglishTest)
	setString(&student.Notes, req.Notes)
	if req.Percentage != nil {
		student.Percentage = *req.Percentage
	}
	if req.OverallScore != nil {
		student.OverallScore = *req.OverallScore
	}
	if req.ConsultantID != nil {
		student.ConsultantID = req.ConsultantID
	}
	if req.PassportNumber != nil {
		if p := strings.TrimSpace(*req.PassportNumber); p != "" {
			student.PassportNumber = &p
		} else {
			student.PassportNumber = nil
		}
	}

	dates := []struct {
		src *string
		dst **time.Time
	}{
		{req.DateOfBirth, &student.DateOfBirth},
		{req.PassportIssueDate, &student.PassportIssueDate},
		{req.PassportExpiryDate, &student.PassportExpiryDate},
		{req.TestDate, &student.TestDate},
	}
	for _, d := range dates {
		if d.src == nil {
			continue
		}
		t, err := parseDate(*d.src)
		if err != nil {
			return err
		}
		*d.dst = t
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

// Delete removes the student together with its applications, documents and payments
func (s *studentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Student.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrStudentNotFound
		}
		s.logger.Error("delete student failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Act ──────────────────────

func (s *studentService) Act(ctx context.Context, id string, action workflow.StudentAction, callerID string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("get student failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	next, err := workflow.NextStudent(student.State, action)
	if err != nil {
		s.metrics.Transition(workflow.EntityStudent, string(action), outcomeOf(err))
		return nil, err
	}

	student.State = next
	student.UpdatedBy = actorRef(callerID)
	student.Consultant = nil
	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.metrics.Transition(workflow.EntityStudent, string(action), outcomeOf(err))
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update student state failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	s.metrics.Transition(workflow.EntityStudent, string(action), metrics.OutcomeOK)

	return s.GetByID(ctx, id)
}

func (s *studentService) toStudentResponse(student *model.Student) *dto.StudentResponse {
	return &dto.StudentResponse{
		Student: student,
		Age:     student.Age(clock.Today(s.clock)),
	}
}
