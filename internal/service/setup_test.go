package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/pkg/clock"
	"visa-consultancy/backend/pkg/notify"
)

// ── test helpers ──

var testNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

const testCaller = "user-001"

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}

func setupTestServices() (*Service, *memStore, *recordingNotifier) {
	repo, st := newMockRepository()
	n := &recordingNotifier{}
	svc := NewService(Deps{
		Repo:     repo,
		Clock:    clock.Fixed(testNow),
		Notifier: n,
		Logger:   zap.NewNop(),
	})
	return svc, st, n
}

func seedStudent(t *testing.T, svc *Service, email string) string {
	t.Helper()
	resp, err := svc.Student.Create(context.Background(), &dto.CreateStudentRequest{
		Name:  "Asha Patel",
		Email: email,
		Phone: "+91 98000 00000",
	}, testCaller)
	if err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return resp.StudentID
}

func seedUniversity(t *testing.T, svc *Service) string {
	t.Helper()
	resp, err := svc.University.Create(context.Background(), &dto.UniversityRequest{
		Name:    "University of Toronto",
		Country: "CA",
		Intakes: []string{"september"},
	}, testCaller)
	if err != nil {
		t.Fatalf("seed university: %v", err)
	}
	return resp.UniversityID
}

func seedApplication(t *testing.T, svc *Service, studentID, universityID string) string {
	t.Helper()
	resp, err := svc.Application.Create(context.Background(), &dto.CreateApplicationRequest{
		StudentID:     studentID,
		UniversityID:  universityID,
		Intake:        "september",
		IntakeYear:    "2024",
		ServiceFee:    1500,
		UniversityFee: 250,
	}, testCaller)
	if err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return resp.ApplicationID
}

func seedDocument(t *testing.T, svc *Service, studentID, applicationID string) string {
	t.Helper()
	resp, err := svc.Document.Create(context.Background(), &dto.CreateDocumentRequest{
		Name:          "Passport scan",
		StudentID:     studentID,
		ApplicationID: &applicationID,
		DocumentType:  "passport",
	}, testCaller)
	if err != nil {
		t.Fatalf("seed document: %v", err)
	}
	return resp.DocumentID
}

func seedPayment(t *testing.T, svc *Service, studentID string, amount float64) string {
	t.Helper()
	resp, err := svc.Payment.Create(context.Background(), &dto.CreatePaymentRequest{
		StudentID:     studentID,
		Amount:        amount,
		PaymentMethod: "bank_transfer",
	}, testCaller)
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return resp.PaymentID
}
