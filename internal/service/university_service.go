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
	pkgerrors "visa-consultancy/backend/pkg/errors"
)

// ── university errors ──

var (
	ErrUniversityNotFound = fmt.Errorf("%w: university not found", pkgerrors.ErrNotFound)
	ErrUniversityInUse    = fmt.Errorf("%w: university still has applications", pkgerrors.ErrValidation)
	ErrTuitionRange       = fmt.Errorf("%w: minimum tuition fee exceeds the maximum", pkgerrors.ErrValidation)
	ErrCourseNotFound     = fmt.Errorf("%w: course not found", pkgerrors.ErrNotFound)
)

// UniversityService university and course catalogue
type UniversityService interface {
	Create(ctx context.Context, req *dto.UniversityRequest, callerID string) (*dto.UniversityResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UniversityResponse, error)
	List(ctx context.Context, q *dto.ListQuery) ([]dto.UniversityResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UniversityRequest, callerID string) (*dto.UniversityResponse, error)
	Delete(ctx context.Context, id string) error

	CreateCourse(ctx context.Context, universityID string, req *dto.CourseRequest, callerID string) (*model.Course, error)
	ListCourses(ctx context.Context, universityID string) ([]model.Course, error)
	UpdateCourse(ctx context.Context, id string, req *dto.CourseRequest, callerID string) (*model.Course, error)
	DeleteCourse(ctx context.Context, id string) error
}

type universityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUniversityService creates a UniversityService
func NewUniversityService(repo *repository.Repository, logger *zap.Logger) UniversityService {
	return &universityService{repo: repo, logger: logger}
}

// ────────────────────── University ──────────────────────

func (s *universityService) Create(ctx context.Context, req *dto.UniversityRequest, callerID string) (*dto.UniversityResponse, error) {
	university := &model.University{Active: true}
	if err := applyUniversityRequest(university, req); err != nil {
		return nil, err
	}
	university.CreatedBy = actorRef(callerID)
	university.UpdatedBy = actorRef(callerID)

	if err := s.repo.University.Create(ctx, university); err != nil {
		s.logger.Error("create university failed", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, university.UniversityID)
}

func (s *universityService) GetByID(ctx context.Context, id string) (*dto.UniversityResponse, error) {
	university, err := s.repo.University.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUniversityNotFound
		}
		s.logger.Error("get university failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toUniversityResponse(ctx, university)
}

func (s *universityService) List(ctx context.Context, q *dto.ListQuery) ([]dto.UniversityResponse, int64, error) {
	universities, total, err := s.repo.University.List(ctx, listFilter(q))
	if err != nil {
		s.logger.Error("list universities failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UniversityResponse, 0, len(universities))
	for i := range universities {
		resp, err := s.toUniversityResponse(ctx, &universities[i])
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *resp)
	}
	return result, total, nil
}

func (s *universityService) Update(ctx context.Context, id string, req *dto.UniversityRequest, callerID string) (*dto.UniversityResponse, error) {
	university, err := s.repo.University.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUniversityNotFound
		}
		s.logger.Error("get university failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if err := applyUniversityRequest(university, req); err != nil {
		return nil, err
	}
	university.UpdatedBy = actorRef(callerID)
	university.Courses = nil

	if err := s.repo.University.Update(ctx, university); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update university failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the university and its courses; refused while applications reference it
func (s *universityService) Delete(ctx context.Context, id string) error {
	n, err := s.repo.Application.Count(ctx, repository.ListFilter{UniversityID: id})
	if err != nil {
		s.logger.Error("count university applications failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if n > 0 {
		return ErrUniversityInUse
	}

	if err := s.repo.University.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrUniversityNotFound
		}
		s.logger.Error("delete university failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func applyUniversityRequest(u *model.University, req *dto.UniversityRequest) error {
	if req.TuitionFeeMax > 0 && req.TuitionFeeMin > req.TuitionFeeMax {
		return ErrTuitionRange
	}
	u.Name = req.Name
	u.Code = req.Code
	u.Country = req.Country
	u.City = req.City
	u.Website = req.Website
	u.Email = req.Email
	u.Phone = req.Phone
	u.Ranking = req.Ranking
	u.Type = req.Type
	u.EstablishedYear = req.EstablishedYear
	u.MinIELTS = req.MinIELTS
	u.MinTOEFL = req.MinTOEFL
	u.MinPercentage = req.MinPercentage
	u.ApplicationFee = req.ApplicationFee
	u.TuitionFeeMin = req.TuitionFeeMin
	u.TuitionFeeMax = req.TuitionFeeMax
	u.Intakes = datatypes.JSONSlice[string](append([]string{}, req.Intakes...))
	u.IsPartner = req.IsPartner
	if req.Active != nil {
		u.Active = *req.Active
	}
	u.Notes = req.Notes
	return nil
}

func (s *universityService) toUniversityResponse(ctx context.Context, u *model.University) (*dto.UniversityResponse, error) {
	resp := &dto.UniversityResponse{University: u}

	var err error
	if resp.CourseCount, err = s.repo.Course.CountByUniversity(ctx, u.UniversityID); err != nil {
		s.logger.Error("count courses failed", zap.String("id", u.UniversityID), zap.Error(err))
		return nil, err
	}
	if resp.ApplicationCount, err = s.repo.Application.Count(ctx, repository.ListFilter{UniversityID: u.UniversityID}); err != nil {
		s.logger.Error("count university applications failed", zap.String("id", u.UniversityID), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// ────────────────────── Course ──────────────────────

func (s *universityService) CreateCourse(ctx context.Context, universityID string, req *dto.CourseRequest, callerID string) (*model.Course, error) {
	if _, err := s.repo.University.GetByID(ctx, universityID); err != nil {
		if isNotFound(err) {
			return nil, ErrUniversityNotFound
		}
		s.logger.Error("get university failed", zap.String("id", universityID), zap.Error(err))
		return nil, err
	}

	course := &model.Course{UniversityID: universityID, Active: true}
	applyCourseRequest(course, req)
	course.CreatedBy = actorRef(callerID)
	course.UpdatedBy = actorRef(callerID)

	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("create course failed", zap.String("university_id", universityID), zap.Error(err))
		return nil, err
	}
	return course, nil
}

func (s *universityService) ListCourses(ctx context.Context, universityID string) ([]model.Course, error) {
	courses, err := s.repo.Course.ListByUniversity(ctx, universityID)
	if err != nil {
		s.logger.Error("list courses failed", zap.String("university_id", universityID), zap.Error(err))
		return nil, err
	}
	return courses, nil
}

func (s *universityService) UpdateCourse(ctx context.Context, id string, req *dto.CourseRequest, callerID string) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("get course failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	applyCourseRequest(course, req)
	course.UpdatedBy = actorRef(callerID)
	course.University = nil

	if err := s.repo.Course.Update(ctx, course); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update course failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return course, nil
}

func (s *universityService) DeleteCourse(ctx context.Context, id string) error {
	if err := s.repo.Course.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrCourseNotFound
		}
		s.logger.Error("delete course failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func applyCourseRequest(c *model.Course, req *dto.CourseRequest) {
	c.Name = req.Name
	c.Code = req.Code
	c.Level = req.Level
	c.Duration = req.Duration
	c.Intake = model.Intake(req.Intake)
	c.RequiredPercentage = req.RequiredPercentage
	c.RequiredIELTS = req.RequiredIELTS
	c.TuitionFee = req.TuitionFee
	if req.Active != nil {
		c.Active = *req.Active
	}
	c.Description = req.Description
}
