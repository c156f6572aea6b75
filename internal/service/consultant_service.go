package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/model"
	"visa-consultancy/backend/internal/repository"
	"visa-consultancy/backend/pkg/clock"
	pkgerrors "visa-consultancy/backend/pkg/errors"
)

var (
	ErrConsultantNotFound = fmt.Errorf("%w: consultant not found", pkgerrors.ErrNotFound)
	ErrJoiningDateFuture  = fmt.Errorf("%w: joining date cannot be in the future", pkgerrors.ErrValidation)
)

// ConsultantService consultant records and their performance figures
type ConsultantService interface {
	Create(ctx context.Context, req *dto.ConsultantRequest, callerID string) (*dto.ConsultantResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ConsultantResponse, error)
	List(ctx context.Context, q *dto.ListQuery) ([]dto.ConsultantResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.ConsultantRequest, callerID string) (*dto.ConsultantResponse, error)
	Delete(ctx context.Context, id string) error
}

type consultantService struct {
	repo   *repository.Repository
	clock  clock.Clock
	logger *zap.Logger
}

// NewConsultantService creates a ConsultantService
func NewConsultantService(repo *repository.Repository, clk clock.Clock, logger *zap.Logger) ConsultantService {
	return &consultantService{repo: repo, clock: clk, logger: logger}
}

func (s *consultantService) Create(ctx context.Context, req *dto.ConsultantRequest, callerID string) (*dto.ConsultantResponse, error) {
	consultant := &model.Consultant{Active: true, ExpertiseLevel: "junior"}
	if err := applyConsultantRequest(consultant, req); err != nil {
		return nil, err
	}
	if consultant.JoiningDate != nil && consultant.JoiningDate.After(clock.Today(s.clock)) {
		return nil, ErrJoiningDateFuture
	}
	consultant.CreatedBy = actorRef(callerID)
	consultant.UpdatedBy = actorRef(callerID)

	if err := s.repo.Consultant.Create(ctx, consultant); err != nil {
		s.logger.Error("create consultant failed", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, consultant.ConsultantID)
}

func (s *consultantService) GetByID(ctx context.Context, id string) (*dto.ConsultantResponse, error) {
	consultant, err := s.repo.Consultant.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrConsultantNotFound
		}
		s.logger.Error("get consultant failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toConsultantResponse(ctx, consultant)
}

func (s *consultantService) List(ctx context.Context, q *dto.ListQuery) ([]dto.ConsultantResponse, int64, error) {
	consultants, total, err := s.repo.Consultant.List(ctx, listFilter(q))
	if err != nil {
		s.logger.Error("list consultants failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ConsultantResponse, 0, len(consultants))
	for i := range consultants {
		resp, err := s.toConsultantResponse(ctx, &consultants[i])
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *resp)
	}
	return result, total, nil
}

func (s *consultantService) Update(ctx context.Context, id string, req *dto.ConsultantRequest, callerID string) (*dto.ConsultantResponse, error) {
	consultant, err := s.repo.Consultant.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrConsultantNotFound
		}
		s.logger.Error("get consultant failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if err := applyConsultantRequest(consultant, req); err != nil {
		return nil, err
	}
	if consultant.JoiningDate != nil && consultant.JoiningDate.After(clock.Today(s.clock)) {
		return nil, ErrJoiningDateFuture
	}
	consultant.UpdatedBy = actorRef(callerID)

	if err := s.repo.Consultant.Update(ctx, consultant); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update consultant failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *consultantService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Consultant.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrConsultantNotFound
		}
		s.logger.Error("delete consultant failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func applyConsultantRequest(c *model.Consultant, req *dto.ConsultantRequest) error {
	joining, err := parseDate(req.JoiningDate)
	if err != nil {
		return err
	}
	c.Name = req.Name
	c.UserID = req.UserID
	c.Email = req.Email
	c.Phone = req.Phone
	c.Mobile = req.Mobile
	c.EmployeeID = req.EmployeeID
	c.JoiningDate = joining
	c.Department = req.Department
	c.SpecializationCountries = datatypes.JSONSlice[string](append([]string{}, req.SpecializationCountries...))
	if req.ExpertiseLevel != "" {
		c.ExpertiseLevel = req.ExpertiseLevel
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	c.Notes = req.Notes
	return nil
}

func (s *consultantService) toConsultantResponse(ctx context.Context, c *model.Consultant) (*dto.ConsultantResponse, error) {
	m, err := s.repo.Consultant.Metrics(ctx, c.ConsultantID)
	if err != nil {
		s.logger.Error("consultant metrics failed", zap.String("id", c.ConsultantID), zap.Error(err))
		return nil, err
	}
	return &dto.ConsultantResponse{
		Consultant:        c,
		TotalStudents:     m.TotalStudents,
		TotalApplications: m.TotalApplications,
		SuccessRate:       m.SuccessRate(),
	}, nil
}
