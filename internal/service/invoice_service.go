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

// ── invoice errors ──

var (
	ErrInvoiceNotFound     = fmt.Errorf("%w: invoice not found", pkgerrors.ErrNotFound)
	ErrInvoiceLineNotFound = fmt.Errorf("%w: invoice line not found", pkgerrors.ErrNotFound)
)

// InvoiceService invoices, their lines and the invoice lifecycle
type InvoiceService interface {
	Create(ctx context.Context, req *dto.CreateInvoiceRequest, callerID string) (*model.Invoice, error)
	GetByID(ctx context.Context, id string) (*model.Invoice, error)
	List(ctx context.Context, q *dto.ListQuery) ([]model.Invoice, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateInvoiceRequest, callerID string) (*model.Invoice, error)
	Delete(ctx context.Context, id string) error

	// Line mutations are only accepted on drafts; totals are recomputed in the same transaction
	AddLine(ctx context.Context, invoiceID string, req *dto.InvoiceLineRequest, callerID string) (*model.Invoice, error)
	UpdateLine(ctx context.Context, invoiceID, lineID string, req *dto.InvoiceLineRequest, callerID string) (*model.Invoice, error)
	RemoveLine(ctx context.Context, invoiceID, lineID string, callerID string) (*model.Invoice, error)

	Act(ctx context.Context, id string, action workflow.InvoiceAction, callerID string) (*model.Invoice, error)
}

type invoiceService struct {
	repo     *repository.Repository
	clock    clock.Clock
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewInvoiceService creates an InvoiceService
func NewInvoiceService(repo *repository.Repository, clk clock.Clock, notifier notify.Notifier, m *metrics.Metrics, logger *zap.Logger) InvoiceService {
	return &invoiceService{repo: repo, clock: clk, notifier: notifier, metrics: m, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *invoiceService) Create(ctx context.Context, req *dto.CreateInvoiceRequest, callerID string) (*model.Invoice, error) {
	invDate, err := parseDateOr(req.InvoiceDate, clock.Today(s.clock))
	if err != nil {
		return nil, err
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Student.GetByID(ctx, req.StudentID); err != nil {
		if isNotFound(err) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("get student failed", zap.String("id", req.StudentID), zap.Error(err))
		return nil, err
	}

	inv := &model.Invoice{
		StudentID:     req.StudentID,
		ApplicationID: req.ApplicationID,
		InvoiceDate:   invDate,
		DueDate:       due,
		State:         model.InvoiceDraft,
		Notes:         req.Notes,
	}
	for i := range req.Lines {
		inv.Lines = append(inv.Lines, newInvoiceLine("", &req.Lines[i], i))
	}
	inv.RecomputeTotals()
	inv.CreatedBy = actorRef(callerID)
	inv.UpdatedBy = actorRef(callerID)

	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		name, err := assignName(ctx, tx, s.metrics, model.SequenceInvoice, req.Name, tx.Invoice.NameExists)
		if err != nil {
			return err
		}
		inv.Name = name
		return tx.Invoice.Create(ctx, inv)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrNameTaken) {
			return nil, ErrNameTaken
		}
		s.logger.Error("create invoice failed", zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, inv.InvoiceID)
}

// newInvoiceLine builds a line; a zero sequence is placed after the pos-th line
func newInvoiceLine(invoiceID string, req *dto.InvoiceLineRequest, pos int) model.InvoiceLine {
	line := model.InvoiceLine{
		InvoiceID:     invoiceID,
		Sequence:      req.Sequence,
		Description:   req.Description,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		TaxPercentage: req.TaxPercentage,
	}
	if line.Sequence == 0 {
		line.Sequence = (pos + 1) * 10
	}
	if line.Quantity == 0 {
		line.Quantity = 1
	}
	line.Recompute()
	return line
}

// ────────────────────── Read ──────────────────────

func (s *invoiceService) GetByID(ctx context.Context, id string) (*model.Invoice, error) {
	inv, err := s.repo.Invoice.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvoiceNotFound
		}
		s.logger.Error("get invoice failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) List(ctx context.Context, q *dto.ListQuery) ([]model.Invoice, int64, error) {
	invoices, total, err := s.repo.Invoice.List(ctx, listFilter(q))
	if err != nil {
		s.logger.Error("list invoices failed", zap.Error(err))
		return nil, 0, err
	}
	return invoices, total, nil
}

// ────────────────────── Update / Delete ──────────────────────

func (s *invoiceService) Update(ctx context.Context, id string, req *dto.UpdateInvoiceRequest, callerID string) (*model.Invoice, error) {
	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.InvoiceDate != nil {
		if inv.InvoiceDate, err = parseDateOr(*req.InvoiceDate, inv.InvoiceDate); err != nil {
			return nil, err
		}
	}
	if req.DueDate != nil {
		if inv.DueDate, err = parseDate(*req.DueDate); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		inv.Notes = *req.Notes
	}
	inv.RecomputeTotals()
	inv.UpdatedBy = actorRef(callerID)

	if err := s.repo.Invoice.Update(ctx, inv); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update invoice failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the invoice and its lines; a payment linked to it keeps no invoice
func (s *invoiceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Invoice.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrInvoiceNotFound
		}
		s.logger.Error("delete invoice failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Lines ──────────────────────

func (s *invoiceService) AddLine(ctx context.Context, invoiceID string, req *dto.InvoiceLineRequest, callerID string) (*model.Invoice, error) {
	return s.mutateLines(ctx, invoiceID, callerID, func(tx *repository.Repository, inv *model.Invoice) error {
		line := newInvoiceLine(inv.InvoiceID, req, len(inv.Lines))
		if err := tx.Invoice.CreateLine(ctx, &line); err != nil {
			return err
		}
		inv.Lines = append(inv.Lines, line)
		return nil
	})
}

func (s *invoiceService) UpdateLine(ctx context.Context, invoiceID, lineID string, req *dto.InvoiceLineRequest, callerID string) (*model.Invoice, error) {
	return s.mutateLines(ctx, invoiceID, callerID, func(tx *repository.Repository, inv *model.Invoice) error {
		idx := lineIndex(inv, lineID)
		if idx < 0 {
			return ErrInvoiceLineNotFound
		}
		line := newInvoiceLine(inv.InvoiceID, req, idx)
		line.InvoiceLineID = lineID
		if req.Sequence == 0 {
			line.Sequence = inv.Lines[idx].Sequence
		}
		if err := tx.Invoice.UpdateLine(ctx, &line); err != nil {
			return err
		}
		inv.Lines[idx] = line
		return nil
	})
}

func (s *invoiceService) RemoveLine(ctx context.Context, invoiceID, lineID string, callerID string) (*model.Invoice, error) {
	return s.mutateLines(ctx, invoiceID, callerID, func(tx *repository.Repository, inv *model.Invoice) error {
		idx := lineIndex(inv, lineID)
		if idx < 0 {
			return ErrInvoiceLineNotFound
		}
		if err := tx.Invoice.DeleteLine(ctx, lineID); err != nil {
			return err
		}
		inv.Lines = append(inv.Lines[:idx], inv.Lines[idx+1:]...)
		return nil
	})
}

// mutateLines runs fn on a draft invoice and writes the recomputed totals in the same transaction
func (s *invoiceService) mutateLines(ctx context.Context, invoiceID, callerID string, fn func(tx *repository.Repository, inv *model.Invoice) error) (*model.Invoice, error) {
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		inv, err := tx.Invoice.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := workflow.CheckLinesEditable(inv.State); err != nil {
			return err
		}
		if err := fn(tx, inv); err != nil {
			return err
		}
		inv.RecomputeTotals()
		inv.UpdatedBy = actorRef(callerID)
		return tx.Invoice.Update(ctx, inv)
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvoiceNotFound
		}
		if !errors.Is(err, pkgerrors.ErrGuardViolation) &&
			!errors.Is(err, pkgerrors.ErrNotFound) &&
			!errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("invoice line change failed", zap.String("invoice_id", invoiceID), zap.Error(err))
		}
		return nil, err
	}
	return s.GetByID(ctx, invoiceID)
}

func lineIndex(inv *model.Invoice, lineID string) int {
	for i := range inv.Lines {
		if inv.Lines[i].InvoiceLineID == lineID {
			return i
		}
	}
	return -1
}

// ────────────────────── Act ──────────────────────

func (s *invoiceService) Act(ctx context.Context, id string, action workflow.InvoiceAction, callerID string) (*model.Invoice, error) {
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		inv, err := tx.Invoice.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next, err := workflow.NextInvoice(inv.State, action)
		if err != nil {
			return err
		}
		inv.State = next
		inv.UpdatedBy = actorRef(callerID)
		return tx.Invoice.Update(ctx, inv)
	})
	s.metrics.Transition(workflow.EntityInvoice, string(action), outcomeOf(err))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvoiceNotFound
		}
		if !errors.Is(err, pkgerrors.ErrValidation) && !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("invoice action failed",
				zap.String("id", id), zap.String("action", string(action)), zap.Error(err))
		}
		return nil, err
	}

	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if action == workflow.ActionSendInvoice {
		s.deliver(ctx, inv)
	}
	return inv, nil
}

// deliver e-mails the invoice summary to the student
func (s *invoiceService) deliver(ctx context.Context, inv *model.Invoice) {
	if inv.Student == nil || inv.Student.Email == "" {
		return
	}
	due := dto.FormatDate(inv.DueDate)
	if due == "" {
		due = "on receipt"
	}
	s.notifier.Notify(ctx, notify.Message{
		ToName:    inv.Student.Name,
		ToAddress: inv.Student.Email,
		Subject:   "Invoice " + inv.Name,
		Body: fmt.Sprintf("Dear %s,\n\ninvoice %s dated %s totals %.2f (tax %.2f), due %s.\n",
			inv.Student.Name, inv.Name, inv.InvoiceDate.Format(dto.DateLayout),
			inv.TotalAmount, inv.TaxAmount, due),
	})
}
