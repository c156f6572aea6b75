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
)

// ── payment errors ──

var (
	ErrPaymentNotFound        = fmt.Errorf("%w: payment not found", pkgerrors.ErrNotFound)
	ErrPaymentStudentMismatch = fmt.Errorf("%w: the application belongs to a different student", pkgerrors.ErrValidation)
)

// PaymentService payments and invoice generation from payments
type PaymentService interface {
	Create(ctx context.Context, req *dto.CreatePaymentRequest, callerID string) (*dto.PaymentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PaymentResponse, error)
	List(ctx context.Context, q *dto.ListQuery) ([]dto.PaymentResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdatePaymentRequest, callerID string) (*dto.PaymentResponse, error)
	Delete(ctx context.Context, id string) error
	// Act runs one payment action. Invoice generation and the paid cascade
	// commit in the same transaction as the payment write.
	Act(ctx context.Context, id string, action workflow.PaymentAction, callerID string) (*dto.PaymentResponse, error)
}

type paymentService struct {
	repo    *repository.Repository
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPaymentService creates a PaymentService
func NewPaymentService(repo *repository.Repository, clk clock.Clock, m *metrics.Metrics, logger *zap.Logger) PaymentService {
	return &paymentService{repo: repo, clock: clk, metrics: m, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *paymentService) Create(ctx context.Context, req *dto.CreatePaymentRequest, callerID string) (*dto.PaymentResponse, error) {
	payDate, err := parseDateOr(req.PaymentDate, clock.Today(s.clock))
	if err != nil {
		return nil, err
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		StudentID:     req.StudentID,
		ApplicationID: req.ApplicationID,
		PaymentType:   model.PaymentType(req.PaymentType),
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		PaymentDate:   payDate,
		DueDate:       due,
		State:         model.PaymentDraft,
		BankName:      req.BankName,
		TransactionID: req.TransactionID,
		ChequeNumber:  req.ChequeNumber,
		Notes:         req.Notes,
	}
	if payment.PaymentType == "" {
		payment.PaymentType = model.PaymentServiceFee
	}
	payment.CreatedBy = actorRef(callerID)
	payment.UpdatedBy = actorRef(callerID)

	if err := s.checkReferences(ctx, payment); err != nil {
		return nil, err
	}

	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		name, err := assignName(ctx, tx, s.metrics, model.SequencePayment, req.Name, tx.Payment.NameExists)
		if err != nil {
			return err
		}
		payment.Name = name
		return tx.Payment.Create(ctx, payment)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrNameTaken) {
			return nil, ErrNameTaken
		}
		s.logger.Error("create payment failed", zap.String("student_id", payment.StudentID), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, payment.PaymentID)
}

func (s *paymentService) checkReferences(ctx context.Context, p *model.Payment) error {
	if _, err := s.repo.Student.GetByID(ctx, p.StudentID); err != nil {
		if isNotFound(err) {
			return ErrStudentNotFound
		}
		s.logger.Error("get student failed", zap.String("id", p.StudentID), zap.Error(err))
		return err
	}
	if p.ApplicationID == nil {
		return nil
	}
	app, err := s.repo.Application.GetByID(ctx, *p.ApplicationID)
	if err != nil {
		if isNotFound(err) {
			return ErrApplicationNotFound
		}
		s.logger.Error("get application failed", zap.String("id", *p.ApplicationID), zap.Error(err))
		return err
	}
	if app.StudentID != p.StudentID {
		return ErrPaymentStudentMismatch
	}
	return nil
}

// ────────────────────── Read ──────────────────────

func (s *paymentService) GetByID(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	payment, err := s.repo.Payment.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPaymentNotFound
		}
		s.logger.Error("get payment failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

func (s *paymentService) List(ctx context.Context, q *dto.ListQuery) ([]dto.PaymentResponse, int64, error) {
	payments, total, err := s.repo.Payment.List(ctx, listFilter(q))
	if err != nil {
		s.logger.Error("list payments failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		result = append(result, *toPaymentResponse(&payments[i]))
	}
	return result, total, nil
}

// ────────────────────── Update / Delete ──────────────────────

func (s *paymentService) Update(ctx context.Context, id string, req *dto.UpdatePaymentRequest, callerID string) (*dto.PaymentResponse, error) {
	payment, err := s.repo.Payment.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPaymentNotFound
		}
		s.logger.Error("get payment failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.PaymentType != nil {
		payment.PaymentType = model.PaymentType(*req.PaymentType)
	}
	if req.Amount != nil {
		payment.Amount = *req.Amount
	}
	if req.PaymentMethod != nil {
		payment.PaymentMethod = *req.PaymentMethod
	}
	if req.PaymentDate != nil {
		if payment.PaymentDate, err = parseDateOr(*req.PaymentDate, payment.PaymentDate); err != nil {
			return nil, err
		}
	}
	if req.DueDate != nil {
		if payment.DueDate, err = parseDate(*req.DueDate); err != nil {
			return nil, err
		}
	}
	if req.BankName != nil {
		payment.BankName = *req.BankName
	}
	if req.TransactionID != nil {
		payment.TransactionID = *req.TransactionID
	}
	if req.ChequeNumber != nil {
		payment.ChequeNumber = *req.ChequeNumber
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}
	if req.ApplicationID != nil {
		payment.ApplicationID = req.ApplicationID
		if err := s.checkReferences(ctx, payment); err != nil {
			return nil, err
		}
	}
	payment.UpdatedBy = actorRef(callerID)
	payment.Student = nil

	if err := s.repo.Payment.Update(ctx, payment); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update payment failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the payment; a generated invoice is kept
func (s *paymentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Payment.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrPaymentNotFound
		}
		s.logger.Error("delete payment failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Act ──────────────────────

func (s *paymentService) Act(ctx context.Context, id string, action workflow.PaymentAction, callerID string) (*dto.PaymentResponse, error) {
	generated := false
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		payment, err := tx.Payment.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		t, err := workflow.NextPayment(payment.State, action, workflow.PaymentFacts{HasInvoice: payment.InvoiceID != nil})
		if err != nil {
			return err
		}
		t.Apply(payment)

		if t.GenerateInvoice {
			inv, err := s.generateInvoice(ctx, tx, payment, callerID)
			if err != nil {
				return err
			}
			payment.InvoiceID = &inv.InvoiceID
			generated = true
		}
		if t.CascadeInvoicePaid {
			if err := markInvoicePaid(ctx, tx, *payment.InvoiceID, callerID); err != nil {
				return err
			}
		}

		payment.UpdatedBy = actorRef(callerID)
		payment.Student = nil
		return tx.Payment.Update(ctx, payment)
	})
	s.metrics.Transition(workflow.EntityPayment, string(action), outcomeOf(err))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPaymentNotFound
		}
		if !errors.Is(err, pkgerrors.ErrGuardViolation) &&
			!errors.Is(err, pkgerrors.ErrValidation) &&
			!errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("payment action failed",
				zap.String("id", id), zap.String("action", string(action)), zap.Error(err))
		}
		return nil, err
	}
	if generated {
		s.metrics.InvoiceGenerated()
	}

	return s.GetByID(ctx, id)
}

// generateInvoice creates the draft invoice and its single line for payment
func (s *paymentService) generateInvoice(ctx context.Context, tx *repository.Repository, payment *model.Payment, callerID string) (*model.Invoice, error) {
	inv := workflow.InvoiceFromPayment(payment)
	name, err := assignName(ctx, tx, s.metrics, model.SequenceInvoice, "", tx.Invoice.NameExists)
	if err != nil {
		return nil, err
	}
	inv.Name = name
	inv.CreatedBy = actorRef(callerID)
	inv.UpdatedBy = actorRef(callerID)

	if err := tx.Invoice.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invoice for payment %s: %w", payment.PaymentID, err)
	}
	return inv, nil
}

// markInvoicePaid cascades a paid payment onto its invoice. An invoice that
// no longer exists has nothing to cascade to.
func markInvoicePaid(ctx context.Context, tx *repository.Repository, invoiceID, callerID string) error {
	inv, err := tx.Invoice.GetByID(ctx, invoiceID)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load invoice %s: %w", invoiceID, err)
	}
	inv.State = model.InvoicePaid
	inv.UpdatedBy = actorRef(callerID)
	inv.Student = nil
	return tx.Invoice.Update(ctx, inv)
}

func toPaymentResponse(p *model.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		Payment:          p,
		PaymentTypeLabel: p.PaymentType.Label(),
	}
}
