package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/model"
	"visa-consultancy/backend/internal/repository"
	"visa-consultancy/backend/internal/workflow"
	"visa-consultancy/backend/pkg/clock"
	pkgerrors "visa-consultancy/backend/pkg/errors"
	"visa-consultancy/backend/pkg/metrics"
)

// ── document errors ──

var (
	ErrDocumentNotFound        = fmt.Errorf("%w: document not found", pkgerrors.ErrNotFound)
	ErrDocumentStudentMismatch = fmt.Errorf("%w: the application belongs to a different student", pkgerrors.ErrValidation)
)

// DocumentService supporting documents and their verification status
type DocumentService interface {
	Create(ctx context.Context, req *dto.CreateDocumentRequest, callerID string) (*dto.DocumentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DocumentResponse, error)
	List(ctx context.Context, q *dto.ListQuery) ([]dto.DocumentResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateDocumentRequest, callerID string) (*dto.DocumentResponse, error)
	Delete(ctx context.Context, id string) error
	// Act runs one verification action; verify records callerID as the verifier
	Act(ctx context.Context, id string, action workflow.DocumentAction, callerID string) (*dto.DocumentResponse, error)
}

type documentService struct {
	repo    *repository.Repository
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewDocumentService creates a DocumentService
func NewDocumentService(repo *repository.Repository, clk clock.Clock, m *metrics.Metrics, logger *zap.Logger) DocumentService {
	return &documentService{repo: repo, clock: clk, metrics: m, logger: logger}
}

func (s *documentService) Create(ctx context.Context, req *dto.CreateDocumentRequest, callerID string) (*dto.DocumentResponse, error) {
	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		Name:          req.Name,
		StudentID:     req.StudentID,
		ApplicationID: req.ApplicationID,
		DocumentType:  model.DocumentType(req.DocumentType),
		FileName:      req.FileName,
		State:         model.DocumentPending,
		ExpiryDate:    expiry,
		IsMandatory:   true,
		Notes:         req.Notes,
	}
	if req.IsMandatory != nil {
		doc.IsMandatory = *req.IsMandatory
	}
	doc.CreatedBy = actorRef(callerID)
	doc.UpdatedBy = actorRef(callerID)

	if err := s.checkReferences(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.repo.Document.Create(ctx, doc); err != nil {
		s.logger.Error("create document failed", zap.String("student_id", doc.StudentID), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, doc.DocumentID)
}

// checkReferences the student exists and a linked application is the same student's
func (s *documentService) checkReferences(ctx context.Context, doc *model.Document) error {
	if _, err := s.repo.Student.GetByID(ctx, doc.StudentID); err != nil {
		if isNotFound(err) {
			return ErrStudentNotFound
		}
		s.logger.Error("get student failed", zap.String("id", doc.StudentID), zap.Error(err))
		return err
	}
	if doc.ApplicationID == nil {
		return nil
	}
	app, err := s.repo.Application.GetByID(ctx, *doc.ApplicationID)
	if err != nil {
		if isNotFound(err) {
			return ErrApplicationNotFound
		}
		s.logger.Error("get application failed", zap.String("id", *doc.ApplicationID), zap.Error(err))
		return err
	}
	if app.StudentID != doc.StudentID {
		return ErrDocumentStudentMismatch
	}
	return nil
}

func (s *documentService) GetByID(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	doc, err := s.repo.Document.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDocumentNotFound
		}
		s.logger.Error("get document failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toDocumentResponse(doc), nil
}

func (s *documentService) List(ctx context.Context, q *dto.ListQuery) ([]dto.DocumentResponse, int64, error) {
	docs, total, err := s.repo.Document.List(ctx, listFilter(q))
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		result = append(result, *s.toDocumentResponse(&docs[i]))
	}
	return result, total, nil
}

func (s *documentService) Update(ctx context.Context, id string, req *dto.UpdateDocumentRequest, callerID string) (*dto.DocumentResponse, error) {
	doc, err := s.repo.Document.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDocumentNotFound
		}
		s.logger.Error("get document failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		doc.Name = *req.Name
	}
	if req.DocumentType != nil {
		doc.DocumentType = model.DocumentType(*req.DocumentType)
	}
	if req.FileName != nil {
		doc.FileName = *req.FileName
	}
	if req.ExpiryDate != nil {
		if doc.ExpiryDate, err = parseDate(*req.ExpiryDate); err != nil {
			return nil, err
		}
	}
	if req.RejectionReason != nil {
		doc.RejectionReason = *req.RejectionReason
	}
	if req.IsMandatory != nil {
		doc.IsMandatory = *req.IsMandatory
	}
	if req.Notes != nil {
		doc.Notes = *req.Notes
	}
	if req.ApplicationID != nil {
		doc.ApplicationID = req.ApplicationID
		if err := s.checkReferences(ctx, doc); err != nil {
			return nil, err
		}
	}
	doc.UpdatedBy = actorRef(callerID)
	doc.Student = nil

	if err := s.repo.Document.Update(ctx, doc); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update document failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Document.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrDocumentNotFound
		}
		s.logger.Error("delete document failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *documentService) Act(ctx context.Context, id string, action workflow.DocumentAction, callerID string) (*dto.DocumentResponse, error) {
	doc, err := s.repo.Document.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDocumentNotFound
		}
		s.logger.Error("get document failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	t, err := workflow.NextDocument(doc.State, action)
	if err != nil {
		s.metrics.Transition(workflow.EntityDocument, string(action), outcomeOf(err))
		return nil, err
	}
	t.Apply(doc, clock.Today(s.clock), callerID)
	doc.UpdatedBy = actorRef(callerID)
	doc.Student = nil

	err = s.repo.Document.Update(ctx, doc)
	s.metrics.Transition(workflow.EntityDocument, string(action), outcomeOf(err))
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("document action failed",
				zap.String("id", id), zap.String("action", string(action)), zap.Error(err))
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *documentService) toDocumentResponse(doc *model.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Document:  doc,
		IsExpired: doc.IsExpired(clock.Today(s.clock)),
	}
}
